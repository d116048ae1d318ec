package httpserver

import (
	"context"
	"log"
	"net/http"
	"strings"

	"storefront/internal/service/guard"
	"storefront/internal/service/identity"

	"github.com/gin-gonic/gin"
)

type ctxKey string

const sessionCtxKey ctxKey = "session"

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string) identity.Session
}

// sessionMiddleware resolves the caller's session once per request and
// stores it in the request context. Requests without a resolver are
// anonymous.
func sessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := identity.Anonymous()
		if resolver != nil {
			s = resolver.Resolve(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		}
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, s)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) identity.Session {
	if s, ok := c.Request.Context().Value(sessionCtxKey).(identity.Session); ok {
		return s
	}
	return identity.Anonymous()
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireRole runs a fresh access guard per request against the resolved
// session. Only authorized states reach the handler; the others are answered
// with the guard's redirect, or 503 when the identity source failed.
func requireRole(cfg guard.Config, logger *log.Logger) (gin.HandlerFunc, error) {
	if _, err := guard.New(cfg, nil); err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		var target string
		g, err := guard.New(cfg, guard.NavigatorFunc(func(to string) { target = to }))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		g.Watch(identity.Resolved(sessionFrom(c)))()

		d := g.Decision()
		switch {
		case d.Render:
			c.Next()
		case g.Condition() == guard.ProviderUnavailable:
			logger.Printf("guard: identity unavailable path=%s error=%v", c.FullPath(), g.Err())
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "identity provider unavailable"})
		case target != "":
			c.Header("Location", target)
			c.AbortWithStatusJSON(http.StatusSeeOther, gin.H{"error": d.State.String(), "redirectTo": target})
		default:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session not resolved"})
		}
	}, nil
}
