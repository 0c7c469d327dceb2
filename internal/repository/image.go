package repository

import (
	"database/sql"
	"errors"

	"github.com/dwellist/dwellist/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrImageNotFound = errors.New("image not found")
)

type ImageRepository interface {
	Create(image *model.Image) error
	ByID(id string) (*model.Image, error)
	ByUser(userID string) ([]*model.Image, error)
	Delete(id string) error
}

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(image *model.Image) error {
	query := `INSERT INTO images (id, user_id, filename, original_name, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		image.ID,
		image.UserID,
		image.Filename,
		image.OriginalName,
		image.MimeType,
		image.Size,
		image.StoragePath,
		image.CreatedAt,
	)

	return err
}

func (r *imageRepository) ByID(id string) (*model.Image, error) {
	image := &model.Image{}
	query := `SELECT * FROM images WHERE id = $1`

	err := r.db.Get(image, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrImageNotFound
	}

	return image, err
}

func (r *imageRepository) ByUser(userID string) ([]*model.Image, error) {
	var images []*model.Image
	query := `SELECT * FROM images WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&images, query, userID)
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (r *imageRepository) Delete(id string) error {
	query := `DELETE FROM images WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrImageNotFound
	}

	return nil
}
