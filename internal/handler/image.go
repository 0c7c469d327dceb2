package handler

import (
	"errors"
	"net/http"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/service"
	"github.com/dwellist/dwellist/internal/validation"
)

const maxUploadMemory = 10 << 20 // 10MB

type imageHandler struct {
	imageService *service.ImageService
}

func NewImageHandler(imageService *service.ImageService) *imageHandler {
	return &imageHandler{imageService: imageService}
}

func (h *imageHandler) Upload(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())

	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		return apperror.BadRequest("invalid multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return apperror.BadRequest("image file is required")
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return apperror.BadRequest(err.Error())
	}

	image, err := h.imageService.Upload(r.Context(), user.ID, file, header)
	if err != nil {
		return err
	}

	return respond(w, http.StatusCreated, h.imageService.View(image))
}

func (h *imageHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())

	err := h.imageService.Delete(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrImageNotFound):
			return apperror.NotFound("Image not found")
		case errors.Is(err, service.ErrNotImageOwner):
			return apperror.Unauthorized("You can only delete your own images!")
		}
		return err
	}

	return respond(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Image deleted successfully",
	})
}

func (h *imageHandler) UserImages(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())
	if user.ID != r.PathValue("id") {
		return apperror.Unauthorized("You can only view your own images!")
	}

	images, err := h.imageService.UserImages(user.ID)
	if err != nil {
		return err
	}

	views := make([]model.ImageView, 0, len(images))
	for _, image := range images {
		views = append(views, h.imageService.View(image))
	}

	return respond(w, http.StatusOK, map[string]any{
		"success": true,
		"images":  views,
		"total":   len(views),
	})
}

func (h *imageHandler) Get(w http.ResponseWriter, r *http.Request) error {
	image, err := h.imageService.ByID(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return apperror.NotFound("Image not found")
		}
		return err
	}

	return respond(w, http.StatusOK, map[string]any{
		"success": true,
		"image":   h.imageService.View(image),
	})
}
