// Package guard decides whether a protected resource may be served for the
// current session and where to send the caller otherwise.
package guard

import (
	"errors"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/service/identity"
)

const (
	DefaultRedirect      = "/auth/signin"
	UnauthorizedRedirect = "/unauthorized"
	AdminLanding         = "/admin"
)

// ErrConflictingRequirements is returned by New when a guard is asked to
// require both roles at once.
var ErrConflictingRequirements = errors.New("guard: requireAdmin and requireCustomer are mutually exclusive")

type State int

const (
	Loading State = iota
	Unauthenticated
	AuthorizedCustomer
	AuthorizedAdmin
	Forbidden
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case AuthorizedCustomer:
		return "authorized_customer"
	case AuthorizedAdmin:
		return "authorized_admin"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Condition qualifies Loading: still waiting for a first session, or stuck
// because the identity source failed.
type Condition int

const (
	Waiting Condition = iota
	ProviderUnavailable
	Settled
)

func (c Condition) String() string {
	switch c {
	case Waiting:
		return "waiting"
	case ProviderUnavailable:
		return "provider_unavailable"
	default:
		return "settled"
	}
}

type Config struct {
	RequireAdmin    bool
	RequireCustomer bool
	RedirectTo      string
}

// Navigator performs a redirect. It is fire-and-forget.
type Navigator interface {
	Navigate(to string)
}

type NavigatorFunc func(to string)

func (f NavigatorFunc) Navigate(to string) { f(to) }

// Decision is what the caller should do for the current state.
type Decision struct {
	State      State
	Render     bool
	RedirectTo string
}

// Guard is a state machine driven by session events. Redirects are attached
// to state entries: re-applying a session that lands in the current state
// never navigates again.
type Guard struct {
	mu          sync.Mutex
	cfg         Config
	nav         Navigator
	state       State
	target      string
	providerErr error
}

func New(cfg Config, nav Navigator) (*Guard, error) {
	if cfg.RequireAdmin && cfg.RequireCustomer {
		return nil, ErrConflictingRequirements
	}
	if strings.TrimSpace(cfg.RedirectTo) == "" {
		cfg.RedirectTo = DefaultRedirect
	}
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Guard{cfg: cfg, nav: nav, state: Loading}, nil
}

// Apply feeds one session event into the machine and returns the resulting
// decision. The navigator is called, outside the guard's lock, only when the
// event moves the guard into a state that carries a redirect.
func (g *Guard) Apply(s identity.Session) Decision {
	g.mu.Lock()

	var next State
	var target string
	if s.Err != nil {
		g.providerErr = s.Err
		next = Loading
	} else {
		g.providerErr = nil
		next, target = g.classify(s)
	}

	fire := next != g.state && target != ""
	g.state = next
	g.target = target
	d := g.decision()
	g.mu.Unlock()

	if fire {
		g.nav.Navigate(target)
	}
	return d
}

// Watch subscribes the guard to p. The returned func stops watching.
func (g *Guard) Watch(p identity.Provider) (unsubscribe func()) {
	return p.Subscribe(func(s identity.Session) {
		g.Apply(s)
	})
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision()
}

// Condition distinguishes a guard that has not heard from its provider yet
// from one whose provider reported a failure.
func (g *Guard) Condition() Condition {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch {
	case g.providerErr != nil:
		return ProviderUnavailable
	case g.state == Loading:
		return Waiting
	default:
		return Settled
	}
}

// Err returns the last identity failure, cleared by the next good session.
func (g *Guard) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.providerErr
}

func (g *Guard) decision() Decision {
	return Decision{
		State:      g.state,
		Render:     g.state == AuthorizedAdmin || g.state == AuthorizedCustomer,
		RedirectTo: g.target,
	}
}

func (g *Guard) classify(s identity.Session) (State, string) {
	if s.User == nil {
		return Unauthenticated, g.cfg.RedirectTo
	}
	switch s.Role {
	case domain.RoleAdmin:
		if g.cfg.RequireCustomer {
			return Forbidden, AdminLanding
		}
		return AuthorizedAdmin, ""
	case domain.RoleCustomer:
		if g.cfg.RequireAdmin {
			return Forbidden, UnauthorizedRedirect
		}
		return AuthorizedCustomer, ""
	default:
		// Stricter than a plain "signed in" check: a user without a
		// resolvable role never reaches protected content, even when the
		// guard requires no particular role.
		return Forbidden, UnauthorizedRedirect
	}
}
