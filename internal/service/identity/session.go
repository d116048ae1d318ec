// Package identity defines the session contract consumed by the cart
// registry and the access guard, plus an in-process hub that fans session
// changes out to subscribers.
package identity

import "storefront/internal/domain"

// Session is one resolution of "who is the current user". Err is set when the
// identity source could not be reached; User and Role are then meaningless.
type Session struct {
	User *domain.User
	Role domain.Role
	Err  error
}

// Anonymous is the resolved "no user" session.
func Anonymous() Session {
	return Session{}
}

// SignedIn builds a session for u, taking the role from the user record.
func SignedIn(u domain.User) Session {
	return Session{User: &u, Role: u.Role}
}

// Failed wraps an identity source failure.
func Failed(err error) Session {
	return Session{Err: err}
}

// Authenticated reports whether a user is present and resolution succeeded.
func (s Session) Authenticated() bool {
	return s.Err == nil && s.User != nil
}

// UserID returns the id of the signed-in user, or "".
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// Provider delivers session changes. Implementations call onChange at least
// once per session, including the "no user" case.
type Provider interface {
	Subscribe(onChange func(Session)) (unsubscribe func())
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(onChange func(Session)) (unsubscribe func())

func (f ProviderFunc) Subscribe(onChange func(Session)) func() {
	return f(onChange)
}

// Resolved returns a Provider that delivers s once, synchronously, to every
// subscriber. It is used for request-scoped resolution where the session is
// already known.
func Resolved(s Session) Provider {
	return ProviderFunc(func(onChange func(Session)) func() {
		onChange(s)
		return func() {}
	})
}
