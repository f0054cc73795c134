package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pixkeep/pixkeep/internal/common"
	"github.com/pixkeep/pixkeep/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleImage() *models.Image {
	return &models.Image{
		ID:         "img-1",
		UserID:     "u-1",
		Title:      "sunset",
		StorageKey: "u-1/1700000000000-sunset.png",
		FileURL:    "http://127.0.0.1:9000/images/u-1/1700000000000-sunset.png",
		FileSize:   2048,
		FileType:   "image/png",
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	img := sampleImage()
	created := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+images\s*\(id,\s*user_id,\s*title,\s*storage_key,\s*file_url,\s*file_size,\s*file_type\)`).
		WithArgs(img.ID, img.UserID, img.Title, img.StorageKey, img.FileURL, img.FileSize, img.FileType).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Create(context.Background(), img)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+images`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), sampleImage())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	img := sampleImage()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "storage_key", "file_url", "file_size", "file_type", "created_at"}).
		AddRow(img.ID, img.UserID, img.Title, img.StorageKey, img.FileURL, img.FileSize, img.FileType, time.Now())
	mock.ExpectQuery(`SELECT\s+id,\s*user_id,\s*title,\s*storage_key`).
		WithArgs("img-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.UserID != "u-1" || got.StorageKey != img.StorageKey {
		t.Fatalf("unexpected image: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*user_id`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSelectByUser_WithFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	img := sampleImage()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "storage_key", "file_url", "file_size", "file_type", "created_at"}).
		AddRow(img.ID, img.UserID, img.Title, img.StorageKey, img.FileURL, img.FileSize, img.FileType, time.Now())
	mock.ExpectQuery(`(?s)SELECT\s+id,.*WHERE\s+user_id\s*=\s*\$1.*ILIKE.*ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u-1", "sun").
		WillReturnRows(rows)

	got, err := repo.SelectByUser(context.Background(), "u-1", "sun")
	if err != nil {
		t.Fatalf("SelectByUser error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "sunset" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSelectByUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).
		WithArgs("u-2", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "storage_key", "file_url", "file_size", "file_type", "created_at"}))

	got, err := repo.SelectByUser(context.Background(), "u-2", "")
	if err != nil {
		t.Fatalf("SelectByUser error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestExistsByStorageKey(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+EXISTS`).
		WithArgs("u-1/123-a.png").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByStorageKey(context.Background(), "u-1/123-a.png")
	if err != nil {
		t.Fatalf("ExistsByStorageKey error: %v", err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(`DELETE\s+FROM\s+images`).
			WithArgs("img-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		if err := repo.Delete(context.Background(), "img-1"); err != nil {
			t.Fatalf("Delete error: %v", err)
		}
	})

	t.Run("already gone", func(t *testing.T) {
		mock.ExpectExec(`DELETE\s+FROM\s+images`).
			WithArgs("img-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.Delete(context.Background(), "img-1")
		if !errors.Is(err, common.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
