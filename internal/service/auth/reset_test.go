package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
)

type sentReset struct {
	userID, email, token string
	expiresAt            time.Time
}

type recordingNotifier struct {
	sent []sentReset
	err  error
}

func (n *recordingNotifier) PublishPasswordReset(_ context.Context, userID, email, token string, expiresAt time.Time) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentReset{userID, email, token, expiresAt})
	return nil
}

func newResetService(t *testing.T) (*Service, *memoryTokenRepo, *recordingNotifier, *recordingPublisher) {
	t.Helper()
	users := newMemoryRepo()
	tokens := newMemoryTokenRepo()
	pub := &recordingPublisher{}
	notifier := &recordingNotifier{}
	svc := New(users, tokens, pub, Options{Secret: []byte("test-secret"), Resets: notifier}, nil)
	if _, err := svc.Signup(context.Background(), SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	return svc, tokens, notifier, pub
}

func TestPasswordReset_Flow(t *testing.T) {
	svc, tokens, notifier, pub := newResetService(t)
	ctx := context.Background()

	_, session, err := svc.SignIn(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, " USER@example.com "); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].email != "user@example.com" || notifier.sent[0].token == "" {
		t.Fatalf("unexpected notifications %+v", notifier.sent)
	}
	reset := notifier.sent[0].token
	if tokens.tokens[reset].Kind != kindReset {
		t.Fatalf("expected a stored reset token, got %+v", tokens.tokens[reset])
	}

	if err := svc.ResetPassword(ctx, reset, "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected weak password rejected, got %v", err)
	}
	if err := svc.ResetPassword(ctx, reset, "NewPassw0rd"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "user@example.com", "Abcdefg1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "user@example.com", "NewPassw0rd"); err != nil {
		t.Fatalf("new password: %v", err)
	}
	if _, err := svc.Refresh(ctx, session.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh tokens issued before the reset must be revoked, got %v", err)
	}
	if err := svc.ResetPassword(ctx, reset, "Another1Pass"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset token must be single use, got %v", err)
	}

	signedOut := false
	for _, ev := range pub.events {
		if ev.forget {
			signedOut = true
		}
	}
	if !signedOut {
		t.Fatalf("expected a sign-out announcement, got %+v", pub.events)
	}
}

func TestPasswordReset_RefreshTokenIsNotAResetToken(t *testing.T) {
	svc, _, _, _ := newResetService(t)
	ctx := context.Background()
	_, session, err := svc.SignIn(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if err := svc.ResetPassword(ctx, session.RefreshToken, "NewPassw0rd"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordReset_ExpiredToken(t *testing.T) {
	svc, _, notifier, _ := newResetService(t)
	ctx := context.Background()
	if err := svc.RequestPasswordReset(ctx, "user@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := svc.ResetPassword(ctx, notifier.sent[0].token, "NewPassw0rd"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, tokens, notifier, _ := newResetService(t)
	before := len(tokens.tokens)
	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(notifier.sent) != 0 || len(tokens.tokens) != before {
		t.Fatalf("unknown email must not issue tokens")
	}
	if err := svc.RequestPasswordReset(context.Background(), "not-an-email"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRequestPasswordReset_DeliveryFailureRevokesToken(t *testing.T) {
	svc, tokens, notifier, _ := newResetService(t)
	notifier.err = errors.New("queue down")
	if err := svc.RequestPasswordReset(context.Background(), "user@example.com"); err == nil {
		t.Fatalf("expected delivery error")
	}
	for _, tok := range tokens.tokens {
		if tok.Kind == kindReset {
			t.Fatalf("undelivered reset token left behind")
		}
	}
}

func TestRequestPasswordReset_Unavailable(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.RequestPasswordReset(context.Background(), "user@example.com"); !errors.Is(err, ErrResetUnavailable) {
		t.Fatalf("expected ErrResetUnavailable, got %v", err)
	}
}
