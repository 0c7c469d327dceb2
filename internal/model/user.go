package model

import (
	"time"
)

// DefaultAvatarURL is the placeholder assigned to accounts that never
// uploaded or linked a picture. Reconciliation only replaces the avatar
// while it still equals this value.
const DefaultAvatarURL = "https://static.thenounproject.com/png/363640-200.png"

type User struct {
	ID            string    `db:"id"`
	Username      string    `db:"username"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	Avatar        string    `db:"avatar"`
	ExternalID    *string   `db:"external_id"` // Identity provider uid, nullable
	EmailVerified *bool     `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (u *User) HasExternalIdentity() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}

func (u *User) HasDefaultAvatar() bool {
	return u.Avatar == "" || u.Avatar == DefaultAvatarURL
}

// UserView is the client-facing shape of a user record. The password
// hash is deliberately absent.
type UserView struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Avatar        string    `json:"avatar"`
	ExternalID    string    `json:"externalId,omitempty"`
	EmailVerified *bool     `json:"emailVerified,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) View() UserView {
	view := UserView{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
	if u.ExternalID != nil {
		view.ExternalID = *u.ExternalID
	}
	return view
}
