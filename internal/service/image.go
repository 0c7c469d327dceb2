package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"time"

	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrNotImageOwner = errors.New("you can only manage your own images")
)

type ImageService struct {
	imageRepository repository.ImageRepository
	storage         storage.Storage
}

func NewImageService(imageRepository repository.ImageRepository, storage storage.Storage) *ImageService {
	return &ImageService{
		imageRepository: imageRepository,
		storage:         storage,
	}
}

// Upload stores the file and records it. Validation (type, size,
// content) is the caller's job.
func (s *ImageService) Upload(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*model.Image, error) {
	ext := filepath.Ext(header.Filename)
	filename := uuid.New().String() + ext
	storagePath := path.Join("images", userID, filename)

	err := s.storage.Save(ctx, storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	image := &model.Image{
		ID:           uuid.New().String(),
		UserID:       userID,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.imageRepository.Create(image)
	if err != nil {
		// DB insert failed, clean up the uploaded object
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete image from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	slog.Info("image uploaded", "image_id", image.ID, "user_id", userID, "size", image.Size)
	return image, nil
}

func (s *ImageService) ByID(id string) (*model.Image, error) {
	return s.imageRepository.ByID(id)
}

func (s *ImageService) UserImages(userID string) ([]*model.Image, error) {
	return s.imageRepository.ByUser(userID)
}

// Delete removes an image from storage and the database. Only the
// owner may delete it.
func (s *ImageService) Delete(ctx context.Context, userID, imageID string) error {
	image, err := s.imageRepository.ByID(imageID)
	if err != nil {
		return err
	}
	if image.UserID != userID {
		return ErrNotImageOwner
	}

	delErr := s.storage.Delete(ctx, image.StoragePath)
	if delErr != nil {
		// Physical object may already be gone; the record still goes
		slog.Warn("failed to delete image from storage", "error", delErr, "path", image.StoragePath)
	}

	err = s.imageRepository.Delete(imageID)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	slog.Info("image deleted", "image_id", imageID, "user_id", userID)
	return nil
}

func (s *ImageService) DeleteAllUserImagesFromStorage(userID string) error {
	images, err := s.imageRepository.ByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to get user images: %w", err)
	}

	ctx := context.Background()
	for _, image := range images {
		err = s.storage.Delete(ctx, image.StoragePath)
		if err != nil {
			slog.Warn("failed to delete image from storage", "storage_path", image.StoragePath, "error", err)
		}
	}

	return nil
}

// View resolves the client-facing shape including the storage URL.
func (s *ImageService) View(image *model.Image) model.ImageView {
	return model.ImageView{
		ID:           image.ID,
		URL:          s.storage.URL(image.StoragePath),
		OriginalName: image.OriginalName,
		MimeType:     image.MimeType,
		Size:         image.Size,
		CreatedAt:    image.CreatedAt,
	}
}
