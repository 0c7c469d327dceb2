package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/service"
	"github.com/dwellist/dwellist/internal/validation"
)

type userHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *userHandler {
	return &userHandler{
		userService: userService,
		authService: authService,
	}
}

func (h *userHandler) Health(w http.ResponseWriter, r *http.Request) error {
	return respond(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "User routes working!",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *userHandler) Update(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())
	if user.ID != r.PathValue("id") {
		return apperror.Unauthorized("You can only update your own account!")
	}

	var body struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Avatar   *string `json:"avatar"`
	}
	err := decode(r, &body)
	if err != nil {
		return err
	}

	if body.Username != nil && *body.Username != "" {
		err = validation.ValidateUsername(*body.Username)
		if err != nil {
			return apperror.BadRequest(err.Error())
		}
	}
	if body.Email != nil && *body.Email != "" {
		err = validation.ValidateEmail(*body.Email)
		if err != nil {
			return apperror.BadRequest(err.Error())
		}
	}

	updated, err := h.userService.UpdateProfile(user.ID, service.ProfileUpdate{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Avatar:   body.Avatar,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.NotFound("User not found")
		}
		return err
	}

	return respond(w, http.StatusOK, updated.View())
}

func (h *userHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())
	if user.ID != r.PathValue("id") {
		return apperror.Unauthorized("You can only delete your own account!")
	}

	err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		return err
	}

	h.authService.ClearSessionCookie(w)
	return respond(w, http.StatusOK, "User has been deleted!")
}

func (h *userHandler) Listings(w http.ResponseWriter, r *http.Request) error {
	user := ctxkeys.User(r.Context())
	if user.ID != r.PathValue("id") {
		return apperror.Unauthorized("You can only view your own listings!")
	}

	listings, err := h.userService.Listings(user.ID)
	if err != nil {
		return err
	}

	return respond(w, http.StatusOK, listings)
}
