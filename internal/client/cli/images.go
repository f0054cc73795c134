package cli

import (
	"context"
	"fmt"
	"os"
)

// List prints the user's images, optionally filtered by a title substring.
func (a *App) List(ctx context.Context, search string) error {
	images, err := a.client.ListImages(ctx, search)
	if err != nil {
		printlnFn("List failed:", err.Error())
		return err
	}

	if len(images) == 0 {
		printlnFn("No images found.")
		return nil
	}

	for _, img := range images {
		printlnFn(fmt.Sprintf("%s  %-30s  %8d bytes  %s",
			img.ID, img.Title, img.FileSize, img.FileURL))
	}
	return nil
}

// Upload prompts for a title and a local file path and uploads the image.
func (a *App) Upload(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}

	path, err := getSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		return err
	}

	img, err := a.client.UploadImage(ctx, title, path)
	if err != nil {
		printlnFn("Upload failed:", err.Error())
		return err
	}

	printlnFn("Uploaded:", img.FileURL)
	return nil
}

// Delete removes an image by id.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.client.DeleteImage(ctx, id); err != nil {
		printlnFn("Delete failed:", err.Error())
		return err
	}
	printlnFn("Deleted.")
	return nil
}
