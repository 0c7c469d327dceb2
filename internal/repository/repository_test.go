package repository

import (
	"testing"
	"time"

	"github.com/dwellist/dwellist/internal/db"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestDB opens an in-memory sqlite database with migrations applied.
// The pool is pinned to one connection so every query sees the same
// in-memory database.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })
	return database
}

func testUser(username, email string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Avatar:       model.DefaultAvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testListing(userID, name string) *model.Listing {
	now := time.Now().UTC()
	return &model.Listing{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         name,
		RegularPrice: 1000,
		Type:         model.ListingTypeRent,
		ImageURLs:    model.StringList{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
