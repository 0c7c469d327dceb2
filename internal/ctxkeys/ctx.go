package ctxkeys

import (
	"context"

	"github.com/dwellist/dwellist/internal/identity"
	"github.com/dwellist/dwellist/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey  contextKey = "user"
	ClaimKey contextKey = "claim"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Claim(ctx context.Context) *identity.Claim {
	claim, _ := ctx.Value(ClaimKey).(*identity.Claim)
	return claim
}

func WithClaim(ctx context.Context, claim *identity.Claim) context.Context {
	return context.WithValue(ctx, ClaimKey, claim)
}
