package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrNotListingOwner = errors.New("you can only manage your own listings")
	ErrInvalidListing  = errors.New("invalid listing")
)

type ListingService struct {
	listingRepository repository.ListingRepository
}

func NewListingService(listingRepository repository.ListingRepository) *ListingService {
	return &ListingService{listingRepository: listingRepository}
}

// ListingInput carries the client-supplied listing fields.
type ListingInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Address       string           `json:"address"`
	RegularPrice  int64            `json:"regularPrice"`
	DiscountPrice int64            `json:"discountPrice"`
	Bathrooms     int              `json:"bathrooms"`
	Bedrooms      int              `json:"bedrooms"`
	Furnished     bool             `json:"furnished"`
	Parking       bool             `json:"parking"`
	Type          string           `json:"type"`
	Offer         bool             `json:"offer"`
	ImageURLs     model.StringList `json:"imageUrls"`
}

func (in *ListingInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidListing)
	}
	if in.Type != model.ListingTypeRent && in.Type != model.ListingTypeSale {
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidListing, model.ListingTypeRent, model.ListingTypeSale)
	}
	if in.Offer && in.DiscountPrice > in.RegularPrice {
		return fmt.Errorf("%w: discount price must not exceed regular price", ErrInvalidListing)
	}
	return nil
}

func (in *ListingInput) apply(listing *model.Listing) {
	listing.Name = in.Name
	listing.Description = in.Description
	listing.Address = in.Address
	listing.RegularPrice = in.RegularPrice
	listing.DiscountPrice = in.DiscountPrice
	listing.Bathrooms = in.Bathrooms
	listing.Bedrooms = in.Bedrooms
	listing.Furnished = in.Furnished
	listing.Parking = in.Parking
	listing.Type = in.Type
	listing.Offer = in.Offer
	listing.ImageURLs = in.ImageURLs
	if listing.ImageURLs == nil {
		listing.ImageURLs = model.StringList{}
	}
}

func (s *ListingService) Create(userID string, input ListingInput) (*model.Listing, error) {
	err := input.validate()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing := &model.Listing{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.apply(listing)

	err = s.listingRepository.Create(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	slog.Info("listing created", "listing_id", listing.ID, "user_id", userID)
	return listing, nil
}

func (s *ListingService) ByID(id string) (*model.Listing, error) {
	return s.listingRepository.ByID(id)
}

func (s *ListingService) Search(filter repository.SearchFilter) ([]*model.Listing, error) {
	return s.listingRepository.Search(filter)
}

func (s *ListingService) Update(userID, listingID string, input ListingInput) (*model.Listing, error) {
	err := input.validate()
	if err != nil {
		return nil, err
	}

	listing, err := s.listingRepository.ByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrNotListingOwner
	}

	input.apply(listing)

	err = s.listingRepository.Update(listing)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	slog.Info("listing updated", "listing_id", listingID, "user_id", userID)
	return listing, nil
}

func (s *ListingService) Delete(userID, listingID string) error {
	listing, err := s.listingRepository.ByID(listingID)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return ErrNotListingOwner
	}

	err = s.listingRepository.Delete(listingID)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	slog.Info("listing deleted", "listing_id", listingID, "user_id", userID)
	return nil
}
