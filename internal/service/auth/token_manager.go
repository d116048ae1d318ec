package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindRefresh = "refresh"
	kindReset   = "reset"
)

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// tokenManager signs stateless access tokens and stores opaque refresh tokens.
type tokenManager struct {
	repo   tokenrepo.Repository
	secret []byte
	now    func() time.Time
}

func newTokenManager(repo tokenrepo.Repository, secret []byte, now func() time.Time) *tokenManager {
	return &tokenManager{repo: repo, secret: secret, now: now}
}

func (m *tokenManager) IssueAccess(u domain.User, ttl time.Duration) (string, error) {
	now := m.now()
	claims := accessClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseAccess returns the user id carried by a valid access token.
func (m *tokenManager) ParseAccess(raw string) (string, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (m *tokenManager) IssueRefresh(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	return m.issue(ctx, userID, kindRefresh, ttl)
}

// ValidateRefresh returns the stored refresh token. Expired tokens are
// deleted on sight.
func (m *tokenManager) ValidateRefresh(ctx context.Context, token string) (*tokenrepo.Token, error) {
	return m.validate(ctx, token, kindRefresh)
}

// IssueReset stores a single-use password reset token.
func (m *tokenManager) IssueReset(ctx context.Context, userID string, ttl time.Duration) (string, time.Time, error) {
	token, err := m.issue(ctx, userID, kindReset, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, m.now().Add(ttl), nil
}

func (m *tokenManager) ValidateReset(ctx context.Context, token string) (*tokenrepo.Token, error) {
	return m.validate(ctx, token, kindReset)
}

// RevokeAll deletes every token of kind held by userID.
func (m *tokenManager) RevokeAll(ctx context.Context, userID, kind string) (int64, error) {
	return m.repo.DeleteByUser(ctx, userID, kind)
}

func (m *tokenManager) issue(ctx context.Context, userID, kind string, ttl time.Duration) (string, error) {
	expiresAt := m.now().Add(ttl)
	for i := 0; i < 5; i++ {
		token, err := randomToken()
		if err != nil {
			return "", err
		}
		err = m.repo.Create(ctx, tokenrepo.Token{
			Token:     token,
			UserID:    userID,
			Kind:      kind,
			ExpiresAt: expiresAt,
		})
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", err
	}
	return "", errors.New("token collision")
}

func (m *tokenManager) validate(ctx context.Context, token, kind string) (*tokenrepo.Token, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	meta, err := m.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load %s token: %w", kind, err)
	}
	if meta.Kind != kind || meta.UserID == "" {
		return nil, ErrInvalidToken
	}
	if m.now().After(meta.ExpiresAt) {
		_ = m.repo.Delete(ctx, token)
		return nil, ErrInvalidToken
	}
	return meta, nil
}

func (m *tokenManager) Revoke(ctx context.Context, token string) error {
	err := m.repo.Delete(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrInvalidToken
	}
	return err
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
