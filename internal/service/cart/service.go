package cart

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/identity"

	"golang.org/x/sync/singleflight"
)

// Persister stores cart contents outside the process. It is optional; a
// Service without one keeps carts only for the lifetime of the process.
type Persister interface {
	Load(ctx context.Context, userID string) ([]domain.LineItem, error)
	Save(ctx context.Context, userID string, items []domain.LineItem) error
}

// SessionSource hands out a per-user session provider so carts can follow
// sign-in and sign-out.
type SessionSource interface {
	For(userID string) identity.Provider
}

type entry struct {
	store  *Store
	cancel []func()
}

// Service owns one Store per shopper.
type Service struct {
	mu          sync.Mutex
	stores      map[string]*entry
	loads       singleflight.Group
	persister   Persister
	sessions    SessionSource
	logger      *log.Logger
	saveTimeout time.Duration
}

func New(persister Persister, sessions SessionSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		stores:      make(map[string]*entry),
		persister:   persister,
		sessions:    sessions,
		logger:      logger,
		saveTimeout: 5 * time.Second,
	}
}

// Get returns the store of userID, creating it on first use. A new store is
// hydrated from the persister and saved back on every change. Loads run
// outside the service lock; concurrent first loads of one user share a
// single persister call.
func (s *Service) Get(ctx context.Context, userID string) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("cart: user id required: %w", domain.ErrInvalidInput)
	}
	if store, ok := s.lookup(userID); ok {
		return store, nil
	}

	v, err, _ := s.loads.Do(userID, func() (any, error) {
		return s.open(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (s *Service) lookup(userID string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.stores[userID]; ok {
		return e.store, true
	}
	return nil, false
}

func (s *Service) open(ctx context.Context, userID string) (*Store, error) {
	if store, ok := s.lookup(userID); ok {
		return store, nil
	}

	var items []domain.LineItem
	if s.persister != nil {
		loaded, err := s.persister.Load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		items = loaded
	}

	store := NewStore(items...)
	e := &entry{store: store}
	if s.persister != nil {
		e.cancel = append(e.cancel, store.Subscribe(s.saver(userID)))
	}

	s.mu.Lock()
	if existing, ok := s.stores[userID]; ok {
		s.mu.Unlock()
		for _, cancel := range e.cancel {
			cancel()
		}
		return existing.store, nil
	}
	s.stores[userID] = e
	s.mu.Unlock()

	s.logger.Printf("cart: opened user_id=%s lines=%d", userID, len(items))

	// The provider may deliver synchronously and a sign-out delivery
	// re-enters Evict, so this runs without the lock.
	if s.sessions != nil {
		cancel := s.sessions.For(userID).Subscribe(func(sess identity.Session) {
			if sess.Err == nil && sess.User == nil {
				s.Evict(userID)
			}
		})
		s.mu.Lock()
		current, ok := s.stores[userID]
		if ok && current == e {
			e.cancel = append(e.cancel, cancel)
			cancel = nil
		}
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
	return store, nil
}

// Evict drops the in-memory store of userID. Persisted contents stay.
func (s *Service) Evict(userID string) {
	s.mu.Lock()
	e, ok := s.stores[userID]
	delete(s.stores, userID)
	s.mu.Unlock()

	if !ok {
		return
	}
	for _, cancel := range e.cancel {
		cancel()
	}
	s.logger.Printf("cart: evicted user_id=%s", userID)
}

// Open returns the number of carts currently held in memory.
func (s *Service) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

func (s *Service) saver(userID string) func(Snapshot) {
	return func(snap Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		defer cancel()
		if err := s.persister.Save(ctx, userID, snap.Items); err != nil {
			s.logger.Printf("cart: save user_id=%s error=%v", userID, err)
		}
	}
}
