package token

import (
	"context"
	"time"
)

// Token is a persisted opaque token: a refresh token or a password reset
// token, told apart by Kind.
type Token struct {
	Token     string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	DeleteByUser(ctx context.Context, userID, kind string) (int64, error)
}
