package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := testUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(user))

	byID, err := repo.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.ByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepositoryNotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.ByID("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.ByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.Delete("missing"), ErrUserNotFound)
}

func TestUserRepositoryDuplicate(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	require.NoError(t, repo.Create(testUser("alice", "alice@example.com")))

	err := repo.Create(testUser("alice", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser, "duplicate username")

	err = repo.Create(testUser("other", "alice@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateUser, "duplicate email")
}

func TestUserRepositoryUpdate(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := testUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(user))

	externalID := "provider-uid-1"
	verified := true
	user.ExternalID = &externalID
	user.EmailVerified = &verified
	user.Avatar = "https://example.com/alice.png"
	require.NoError(t, repo.Update(user))

	got, err := repo.ByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "provider-uid-1", *got.ExternalID)
	require.NotNil(t, got.EmailVerified)
	assert.True(t, *got.EmailVerified)
	assert.Equal(t, "https://example.com/alice.png", got.Avatar)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestUserDeleteCascadesListings(t *testing.T) {
	database := newTestDB(t)
	users := NewUserRepository(database)
	listings := NewListingRepository(database)

	user := testUser("alice", "alice@example.com")
	require.NoError(t, users.Create(user))
	listing := testListing(user.ID, "Cozy cottage")
	require.NoError(t, listings.Create(listing))

	require.NoError(t, users.Delete(user.ID))

	_, err := listings.ByID(listing.ID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}
