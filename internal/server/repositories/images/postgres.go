package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/dbx"
	"github.com/pixkeep/pixkeep/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (id, user_id, title, storage_key, file_url, file_size, file_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		image.ID, image.UserID, image.Title, image.StorageKey,
		image.FileURL, image.FileSize, image.FileType).Scan(&image.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	query :=
		`SELECT id, user_id, title, storage_key, file_url, file_size, file_type, created_at FROM images
		 WHERE id = $1
		 `

	image := &models.Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID, &image.UserID, &image.Title, &image.StorageKey,
		&image.FileURL, &image.FileSize, &image.FileType, &image.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return image, nil
}

func (r *PostgresRepository) SelectByUser(ctx context.Context, userID, titleFilter string) ([]*models.Image, error) {
	query :=
		`SELECT id, user_id, title, storage_key, file_url, file_size, file_type, created_at FROM images
		 WHERE user_id = $1 AND ($2 = '' OR title ILIKE '%' || $2 || '%')
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, titleFilter)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Image
	for rows.Next() {
		image := &models.Image{}
		if err := rows.Scan(
			&image.ID, &image.UserID, &image.Title, &image.StorageKey,
			&image.FileURL, &image.FileSize, &image.FileType, &image.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, image)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM images WHERE storage_key = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM images
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
