package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
)

func TestSignupHandler_Created(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/auth/signup", "", `{"email":"user@example.com","password":"Abcdefg1","displayName":"U"}`)
	expectStatus(t, rec, http.StatusCreated)
	if !strings.Contains(rec.Body.String(), `"email":"user@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestSignupHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	expectStatus(t, env.do(http.MethodPost, "/auth/signup", "", `{"email":"not-an-email","password":"x"}`), http.StatusBadRequest)

	env.auth.signupErr = domain.ErrAlreadyExists
	expectStatus(t, env.do(http.MethodPost, "/auth/signup", "", `{"email":"user@example.com","password":"Abcdefg1"}`), http.StatusConflict)
}

func TestSigninHandler(t *testing.T) {
	env := newTestEnv(t)
	env.auth.user = &customerUser
	env.auth.tokens = auth.Tokens{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600}

	rec := env.do(http.MethodPost, "/auth/signin", "", `{"email":"shopper@shop.test","password":"Abcdefg1"}`)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"accessToken":"a"`) || !strings.Contains(rec.Body.String(), `"role":"customer"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	env.auth.signinErr = auth.ErrInvalidCredentials
	expectStatus(t, env.do(http.MethodPost, "/auth/signin", "", `{"email":"shopper@shop.test","password":"bad"}`), http.StatusUnauthorized)
}

func TestRefreshAndSignout(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodPost, "/auth/refresh", "", `{"refreshToken":"refresh-ok"}`)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"accessToken":"fresh"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	expectStatus(t, env.do(http.MethodPost, "/auth/refresh", "", `{"refreshToken":"nope"}`), http.StatusUnauthorized)
	expectStatus(t, env.do(http.MethodPost, "/auth/refresh", "", `{}`), http.StatusBadRequest)

	expectStatus(t, env.do(http.MethodPost, "/auth/signout", "", `{"refreshToken":"refresh-ok"}`), http.StatusNoContent)
	if len(env.auth.signedOut) != 1 || env.auth.signedOut[0] != "refresh-ok" {
		t.Fatalf("unexpected sign-outs %v", env.auth.signedOut)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/auth/me", "admin-token", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"role":"admin"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestForgotPassword(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(http.MethodPost, "/auth/password/forgot", "", `{"email":"shopper@shop.test"}`), http.StatusAccepted)
	if len(env.auth.resetFor) != 1 || env.auth.resetFor[0] != "shopper@shop.test" {
		t.Fatalf("unexpected reset requests %v", env.auth.resetFor)
	}
	expectStatus(t, env.do(http.MethodPost, "/auth/password/forgot", "", `{"email":"nope"}`), http.StatusBadRequest)

	env.auth.resetErr = auth.ErrResetUnavailable
	expectStatus(t, env.do(http.MethodPost, "/auth/password/forgot", "", `{"email":"shopper@shop.test"}`), http.StatusServiceUnavailable)
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(http.MethodPost, "/auth/password/reset", "", `{"token":"reset-ok","password":"NewSecret9"}`), http.StatusNoContent)
	if env.auth.passwords["reset-ok"] != "NewSecret9" {
		t.Fatalf("password not reset: %v", env.auth.passwords)
	}
	expectStatus(t, env.do(http.MethodPost, "/auth/password/reset", "", `{"token":"stale","password":"NewSecret9"}`), http.StatusUnauthorized)
	expectStatus(t, env.do(http.MethodPost, "/auth/password/reset", "", `{"token":"reset-ok","password":"short"}`), http.StatusBadRequest)
	expectStatus(t, env.do(http.MethodPost, "/auth/password/reset", "", `{"password":"NewSecret9"}`), http.StatusBadRequest)
}
