package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
)

type UserService struct {
	userRepository    repository.UserRepository
	listingRepository repository.ListingRepository
	imageService      *ImageService
	authService       *AuthService
}

func NewUserService(
	userRepository repository.UserRepository,
	listingRepository repository.ListingRepository,
	imageService *ImageService,
	authService *AuthService,
) *UserService {
	return &UserService{
		userRepository:    userRepository,
		listingRepository: listingRepository,
		imageService:      imageService,
		authService:       authService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.userRepository.ByID(id)
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave
// unchanged".
type ProfileUpdate struct {
	Username *string
	Email    *string
	Password *string
	Avatar   *string
}

func (s *UserService) UpdateProfile(userID string, update ProfileUpdate) (*model.User, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil && *update.Username != "" {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Email != nil && *update.Email != "" {
		user.Email = strings.TrimSpace(strings.ToLower(*update.Email))
	}
	if update.Password != nil && *update.Password != "" {
		hash, err := s.authService.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if update.Avatar != nil && *update.Avatar != "" {
		user.Avatar = *update.Avatar
	}

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, err
	}

	slog.Info("profile updated", "user_id", userID)
	return user, nil
}

// DeleteAccount removes the user record. Uploaded images are deleted
// from storage first; DB rows cascade with the user row.
func (s *UserService) DeleteAccount(userID string) error {
	err := s.imageService.DeleteAllUserImagesFromStorage(userID)
	if err != nil {
		// Orphaned files are better than a failed deletion
		slog.Warn("failed to delete user images from storage", "user_id", userID, "error", err)
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("account deleted", "user_id", userID)
	return nil
}

func (s *UserService) Listings(userID string) ([]*model.Listing, error) {
	return s.listingRepository.ByUser(userID)
}
