package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	ListingTypeRent = "rent"
	ListingTypeSale = "sale"
)

type Listing struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userRef"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	Address       string     `db:"address" json:"address"`
	RegularPrice  int64      `db:"regular_price" json:"regularPrice"`
	DiscountPrice int64      `db:"discount_price" json:"discountPrice"`
	Bathrooms     int        `db:"bathrooms" json:"bathrooms"`
	Bedrooms      int        `db:"bedrooms" json:"bedrooms"`
	Furnished     bool       `db:"furnished" json:"furnished"`
	Parking       bool       `db:"parking" json:"parking"`
	Type          string     `db:"type" json:"type"`
	Offer         bool       `db:"offer" json:"offer"`
	ImageURLs     StringList `db:"image_urls" json:"imageUrls"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// StringList stores a list of URLs as a JSON-encoded TEXT column so the
// schema stays identical across sqlite and postgres.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}
