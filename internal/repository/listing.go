package repository

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/dwellist/dwellist/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

// SearchFilter mirrors the query parameters of the listing search
// endpoint. Nil booleans mean "either".
type SearchFilter struct {
	SearchTerm string
	Offer      *bool
	Furnished  *bool
	Parking    *bool
	Type       string // "rent", "sale" or "" for both
	Sort       string // column: created_at or regular_price
	Order      string // "asc" or "desc"
	Limit      int
	StartIndex int
}

type ListingRepository interface {
	Create(listing *model.Listing) error
	ByID(id string) (*model.Listing, error)
	ByUser(userID string) ([]*model.Listing, error)
	Search(filter SearchFilter) ([]*model.Listing, error)
	Update(listing *model.Listing) error
	Delete(id string) error
}

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(listing *model.Listing) error {
	query := `INSERT INTO listings (id, user_id, name, description, address, regular_price, discount_price,
	                                bathrooms, bedrooms, furnished, parking, type, offer, image_urls, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(query,
		listing.ID,
		listing.UserID,
		listing.Name,
		listing.Description,
		listing.Address,
		listing.RegularPrice,
		listing.DiscountPrice,
		listing.Bathrooms,
		listing.Bedrooms,
		listing.Furnished,
		listing.Parking,
		listing.Type,
		listing.Offer,
		listing.ImageURLs,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	return err
}

func (r *listingRepository) ByID(id string) (*model.Listing, error) {
	listing := &model.Listing{}
	query := `SELECT * FROM listings WHERE id = $1`

	err := r.db.Get(listing, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrListingNotFound
	}

	return listing, err
}

func (r *listingRepository) ByUser(userID string) ([]*model.Listing, error) {
	var listings []*model.Listing
	query := `SELECT * FROM listings WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&listings, query, userID)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *listingRepository) Search(filter SearchFilter) ([]*model.Listing, error) {
	query := `SELECT * FROM listings WHERE name LIKE $1`
	args := []any{"%" + filter.SearchTerm + "%"}

	addBool := func(column string, value *bool) {
		if value == nil {
			return
		}
		n := len(args) + 1
		query += ` AND ` + column + ` = $` + strconv.Itoa(n)
		args = append(args, *value)
	}
	addBool("offer", filter.Offer)
	addBool("furnished", filter.Furnished)
	addBool("parking", filter.Parking)

	if filter.Type == model.ListingTypeRent || filter.Type == model.ListingTypeSale {
		n := len(args) + 1
		query += ` AND type = $` + strconv.Itoa(n)
		args = append(args, filter.Type)
	}

	// Sort column and direction are validated here, never interpolated
	// from raw input.
	sort := "created_at"
	if filter.Sort == "regular_price" {
		sort = "regular_price"
	}
	order := "DESC"
	if filter.Order == "asc" {
		order = "ASC"
	}
	query += ` ORDER BY ` + sort + ` ` + order

	limit := filter.Limit
	if limit <= 0 {
		limit = 9
	}
	query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, filter.StartIndex)

	var listings []*model.Listing
	err := r.db.Select(&listings, query, args...)
	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *listingRepository) Update(listing *model.Listing) error {
	listing.UpdatedAt = time.Now()
	query := `UPDATE listings
	          SET name = $1, description = $2, address = $3, regular_price = $4, discount_price = $5,
	              bathrooms = $6, bedrooms = $7, furnished = $8, parking = $9, type = $10, offer = $11,
	              image_urls = $12, updated_at = $13
	          WHERE id = $14`

	result, err := r.db.Exec(query,
		listing.Name,
		listing.Description,
		listing.Address,
		listing.RegularPrice,
		listing.DiscountPrice,
		listing.Bathrooms,
		listing.Bedrooms,
		listing.Furnished,
		listing.Parking,
		listing.Type,
		listing.Offer,
		listing.ImageURLs,
		listing.UpdatedAt,
		listing.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}

	return nil
}

func (r *listingRepository) Delete(id string) error {
	query := `DELETE FROM listings WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}

	return nil
}

