// Package auth handles storefront accounts: signup, sign-in with access and
// refresh tokens, sign-out, password reset, and resolution of an access
// token into a session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	"storefront/internal/service/identity"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrResetUnavailable is returned when no reset notifier is configured.
	ErrResetUnavailable = errors.New("password reset is not available")
)

// SessionPublisher receives sign-in and sign-out events. *identity.Hub
// satisfies it.
type SessionPublisher interface {
	Publish(userID string, s identity.Session)
	Forget(userID string)
}

// ResetNotifier delivers a password reset token to its owner.
// *events.Publisher satisfies it.
type ResetNotifier interface {
	PublishPasswordReset(ctx context.Context, userID, email, token string, expiresAt time.Time) error
}

type Options struct {
	Secret      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	ResetTTL    time.Duration
	AdminEmails []string
	// Resets is optional; without it password reset requests fail with
	// ErrResetUnavailable.
	Resets ResetNotifier
}

// Service handles account signup, sign-in and token flows.
type Service struct {
	users       userrepo.Repository
	tokens      *tokenManager
	sessions    SessionPublisher
	logger      *log.Logger
	accessTTL   time.Duration
	refreshTTL  time.Duration
	resetTTL    time.Duration
	resets      ResetNotifier
	admins      map[string]struct{}
	passwordMin int
}

// New creates a Service. Zero TTLs fall back to one hour (access), thirty
// days (refresh) and one hour (reset).
func New(users userrepo.Repository, tokens tokenrepo.Repository, sessions SessionPublisher, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = time.Hour
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 30 * 24 * time.Hour
	}
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	admins := make(map[string]struct{}, len(opts.AdminEmails))
	for _, e := range opts.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{
		users:       users,
		tokens:      newTokenManager(tokens, opts.Secret, time.Now),
		sessions:    sessions,
		logger:      logger,
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		resetTTL:    opts.ResetTTL,
		resets:      opts.Resets,
		admins:      admins,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Tokens is the credential pair handed to a signed-in client.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
}

// Signup registers a new account. Emails on the admin list get the admin
// role; everyone else is a customer.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, domain.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		PasswordHash: string(hashed),
		Role:         s.roleFor(email, domain.RoleNone),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("auth: signup user_id=%s role=%s", created.ID, created.Role)
	return created, nil
}

// SignIn validates credentials and returns the user with a fresh token pair.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, Tokens, error) {
	password = strings.TrimSpace(password)
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, Tokens{}, ErrInvalidCredentials
		}
		return nil, Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, Tokens{}, ErrInvalidCredentials
	}
	u.Role = s.roleFor(u.Email, u.Role)

	access, err := s.tokens.IssueAccess(*u, s.accessTTL)
	if err != nil {
		return nil, Tokens{}, err
	}
	refresh, err := s.tokens.IssueRefresh(ctx, u.ID, s.refreshTTL)
	if err != nil {
		return nil, Tokens{}, err
	}

	if s.sessions != nil {
		s.sessions.Publish(u.ID, identity.SignedIn(*u))
	}
	s.logger.Printf("auth: signin user_id=%s role=%s", u.ID, u.Role)
	return u, Tokens{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.AccessTTLSeconds()}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	meta, err := s.tokens.ValidateRefresh(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		return Tokens{}, err
	}
	u, err := s.users.GetByID(ctx, meta.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Tokens{}, ErrInvalidToken
		}
		return Tokens{}, err
	}
	u.Role = s.roleFor(u.Email, u.Role)
	access, err := s.tokens.IssueAccess(*u, s.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, ExpiresIn: s.AccessTTLSeconds()}, nil
}

// SignOut revokes refreshToken and announces the sign-out of its owner.
// The remembered session is then forgotten so a later subscriber does not
// replay the sign-out.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	meta, err := s.tokens.ValidateRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}
	if s.sessions != nil {
		s.sessions.Publish(meta.UserID, identity.Anonymous())
		s.sessions.Forget(meta.UserID)
	}
	s.logger.Printf("auth: signout user_id=%s", meta.UserID)
	return nil
}

// RequestPasswordReset issues a reset token for email and hands it to the
// notifier. Unknown emails succeed silently so responses do not reveal which
// accounts exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resets == nil {
		return ErrResetUnavailable
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Printf("auth: reset requested for unknown email")
			return nil
		}
		return err
	}
	token, expiresAt, err := s.tokens.IssueReset(ctx, u.ID, s.resetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.resets.PublishPasswordReset(ctx, u.ID, u.Email, token, expiresAt); err != nil {
		_ = s.tokens.Revoke(ctx, token)
		return fmt.Errorf("deliver reset token: %w", err)
	}
	s.logger.Printf("auth: reset requested user_id=%s", u.ID)
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// single use, and every refresh token of the account is revoked, which
// signs the user out everywhere once their access tokens expire.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	resetToken = strings.TrimSpace(resetToken)
	meta, err := s.tokens.ValidateReset(ctx, resetToken)
	if err != nil {
		return err
	}
	password := strings.TrimSpace(newPassword)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, meta.UserID, string(hashed)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if err := s.tokens.Revoke(ctx, resetToken); err != nil && !errors.Is(err, ErrInvalidToken) {
		return err
	}
	n, err := s.tokens.RevokeAll(ctx, meta.UserID, kindRefresh)
	if err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	if s.sessions != nil {
		s.sessions.Publish(meta.UserID, identity.Anonymous())
		s.sessions.Forget(meta.UserID)
	}
	s.logger.Printf("auth: password reset user_id=%s revoked=%d", meta.UserID, n)
	return nil
}

// Resolve turns an access token into a session. Missing, malformed and
// expired tokens resolve to the anonymous session; a failing user store
// yields a failed session.
func (s *Service) Resolve(ctx context.Context, accessToken string) identity.Session {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return identity.Anonymous()
	}
	userID, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return identity.Anonymous()
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return identity.Anonymous()
		}
		s.logger.Printf("auth: resolve user_id=%s error=%v", userID, err)
		return identity.Failed(fmt.Errorf("resolve session: %w", err))
	}
	u.Role = s.roleFor(u.Email, u.Role)
	return identity.SignedIn(*u)
}

// PurgeExpiredTokens deletes refresh tokens that expired before now.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.tokens.repo.DeleteExpired(ctx, s.tokens.now())
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	if n > 0 {
		s.logger.Printf("auth: purged expired tokens count=%d", n)
	}
	return n, nil
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

// roleFor keeps a stored role and derives one from the admin list otherwise.
func (s *Service) roleFor(email string, stored domain.Role) domain.Role {
	if stored.Valid() {
		return stored
	}
	if _, ok := s.admins[normalizeEmail(email)]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
