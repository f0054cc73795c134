// Package api is the HTTP client for the PixKeep server API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Session mirrors the login response.
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Image mirrors the image resource returned by the server.
type Image struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileURL   string    `json:"file_url"`
	FileSize  int64     `json:"file_size"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

type apiError struct {
	Message string `json:"error"`
}

type Client struct {
	baseURL string
	hc      *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// SetToken installs the session token sent with authenticated requests.
func (c *Client) SetToken(token string) { c.token = token }

// ClearToken drops the session token, e.g. on logout or idle expiry.
func (c *Client) ClearToken() { c.token = "" }

func (c *Client) do(ctx context.Context, method, path string, body io.Reader,
	contentType string, out any) error {

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Message != "" {
			return fmt.Errorf("server: %s", e.Message)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) Register(ctx context.Context, email, password, username string) error {
	in := map[string]string{"email": email, "password": password, "username": username}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", in, nil)
}

// Login authenticates by username or email and stores the session token on
// the client for subsequent calls.
func (c *Client) Login(ctx context.Context, identifier, password string) (*Session, error) {
	in := map[string]string{"identifier": identifier, "password": password}
	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", in, &session); err != nil {
		return nil, err
	}
	c.token = session.Token
	return &session, nil
}

func (c *Client) ListImages(ctx context.Context, search string) ([]Image, error) {
	path := "/api/images"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var out struct {
		Images []Image `json:"images"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Images, nil
}

// UploadImage sends the file at filePath as a multipart form together with
// the title. The content type is inferred from the file extension.
func (c *Client) UploadImage(ctx context.Context, title, filePath string) (*Image, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(filePath)
	contentType := contentTypeForFile(fileName)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		return nil, err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var img Image
	if err := c.do(ctx, http.MethodPost, "/api/images", &buf, mw.FormDataContentType(), &img); err != nil {
		return nil, err
	}
	return &img, nil
}

func (c *Client) DeleteImage(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/images/"+id, nil, nil)
}

func (c *Client) UpdateUsername(ctx context.Context, username string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/account/username", map[string]string{"username": username}, nil)
}

func (c *Client) ChangeEmail(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/account/email", map[string]string{"email": email}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, password string) error {
	return c.doJSON(ctx, http.MethodPatch, "/api/account/password", map[string]string{"password": password}, nil)
}

// ConfirmEmail completes a staged email change using the mailed token.
func (c *Client) ConfirmEmail(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/confirm-email", map[string]string{"token": token}, nil)
}

func (c *Client) DeleteAccount(ctx context.Context, confirmation string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/account", map[string]string{"confirmation": confirmation}, nil)
}

func contentTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
