package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/logging"
	"github.com/pixkeep/pixkeep/internal/server/models"
	"github.com/pixkeep/pixkeep/internal/server/objectstore"
	"github.com/pixkeep/pixkeep/internal/server/repositories/repomanager"
)

// MaxUploadSize caps a single upload at 10 MiB. Exactly 10 MiB is allowed.
const MaxUploadSize = 10 * 1024 * 1024

// AssetService coordinates the two stores behind an image asset: the
// binary object store and the metadata record. Create is strict (object
// first, no overwrite, metadata last); Delete is permissive (best-effort
// object removal, metadata authoritative). The asymmetry is deliberate: an
// orphaned object is recoverable clutter, a metadata record without its
// object is a broken user-visible link.
type AssetService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	store  objectstore.Store
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewAssetService(db *sql.DB, repos repomanager.RepositoryManager,
	store objectstore.Store, logger logging.Logger) *AssetService {
	return &AssetService{
		db:     db,
		repos:  repos,
		store:  store,
		logger: logger.With("module", "assets"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// storageKey derives the object key for an upload. The millisecond
// timestamp makes keys unique per owner without a coordination step; a
// same-millisecond collision is caught by the store's no-overwrite put.
func (s *AssetService) storageKey(ownerID, fileName string) string {
	return fmt.Sprintf("%s/%d-%s", ownerID, s.now().UnixMilli(), fileName)
}

func validateUpload(title string, data []byte, fileName, contentType string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if fileName == "" {
		return fmt.Errorf("%w: file name must not be empty", common.ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: only image uploads are accepted", common.ErrValidation)
	}
	if len(data) > MaxUploadSize {
		return fmt.Errorf("%w: file exceeds %d bytes", common.ErrValidation, MaxUploadSize)
	}
	return nil
}

// Create uploads an image: object write first (no overwrite), then the
// public URL derivation, then the metadata insert. A failed object write
// aborts with no metadata touched; a failed metadata insert leaves the
// already-written object as an orphan for the sweeper rather than
// attempting a rollback.
func (s *AssetService) Create(ctx context.Context, ownerID, title string,
	data []byte, fileName, contentType string) (*models.Image, error) {

	if err := validateUpload(title, data, fileName, contentType); err != nil {
		return nil, err
	}

	key := s.storageKey(ownerID, fileName)

	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorageWriteFailed, err)
	}

	image := &models.Image{
		ID:         s.newID(),
		UserID:     ownerID,
		Title:      title,
		StorageKey: key,
		FileURL:    s.store.PublicURL(key),
		FileSize:   int64(len(data)),
		FileType:   contentType,
	}

	created, err := s.repos.Images(s.db).Create(ctx, image)
	if err != nil {
		// The object stays behind as an orphan; the sweeper reclaims it.
		s.logger.Warn(ctx, "metadata insert failed after object write",
			"storage_key", key, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataWriteFailed, err)
	}

	s.logger.Info(ctx, "image created", "image_id", created.ID, "owner", ownerID)
	return created, nil
}

// Delete removes an asset owned by requesterID. The object removal is
// best-effort: an unreachable object store must not block the user from
// removing the record they see. The metadata delete is authoritative and
// a retry is safe.
func (s *AssetService) Delete(ctx context.Context, assetID, requesterID string) error {
	repo := s.repos.Images(s.db)

	image, err := repo.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrAlreadyDeleted
		}
		return fmt.Errorf("error loading image: %v", err)
	}

	if image.UserID != requesterID {
		return common.ErrForbidden
	}

	if key, err := s.store.KeyFromURL(image.FileURL); err != nil {
		s.logger.Warn(ctx, "storage key not recoverable from url",
			"image_id", assetID, "error", err.Error())
	} else if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn(ctx, "object removal failed, record delete continues",
			"image_id", assetID, "storage_key", key, "error", err.Error())
	}

	if err := repo.Delete(ctx, assetID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrAlreadyDeleted
		}
		return fmt.Errorf("%w: %v", common.ErrMetadataDeleteFailed, err)
	}

	s.logger.Info(ctx, "image deleted", "image_id", assetID)
	return nil
}

// List returns the owner's images newest-first, optionally filtered by a
// title substring.
func (s *AssetService) List(ctx context.Context, ownerID, titleFilter string) ([]*models.Image, error) {
	result, err := s.repos.Images(s.db).SelectByUser(ctx, ownerID, titleFilter)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %v", err)
	}
	return result, nil
}
