// Package images contains the image metadata repository.
package images

import (
	"context"

	"github.com/pixkeep/pixkeep/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	GetByID(ctx context.Context, id string) (*models.Image, error)

	// SelectByUser returns the user's images newest-first. A non-empty
	// titleFilter narrows the result to titles containing the substring,
	// case-insensitively.
	SelectByUser(ctx context.Context, userID, titleFilter string) ([]*models.Image, error)

	// ExistsByStorageKey reports whether any record references the given
	// object-storage key. Used by the orphan sweeper.
	ExistsByStorageKey(ctx context.Context, key string) (bool, error)

	Delete(ctx context.Context, id string) error
}
