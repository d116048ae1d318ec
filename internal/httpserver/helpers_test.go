package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	"storefront/internal/service/hero"
	"storefront/internal/service/identity"
	"storefront/internal/service/media"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var (
	adminUser    = domain.User{ID: "admin-1", Email: "boss@shop.test", Role: domain.RoleAdmin}
	customerUser = domain.User{ID: "cust-1", Email: "shopper@shop.test", Role: domain.RoleCustomer}
)

// stubAuthSvc resolves fixed bearer tokens to sessions.
type stubAuthSvc struct {
	user      *domain.User
	tokens    auth.Tokens
	signupErr error
	signinErr error
	signedOut []string
	resetFor  []string
	resetErr  error
	passwords map[string]string
}

func (s *stubAuthSvc) Signup(_ context.Context, in auth.SignupInput) (*domain.User, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	return &domain.User{ID: "new-1", Email: in.Email, DisplayName: in.DisplayName, Role: domain.RoleCustomer}, nil
}

func (s *stubAuthSvc) SignIn(_ context.Context, _, _ string) (*domain.User, auth.Tokens, error) {
	return s.user, s.tokens, s.signinErr
}

func (s *stubAuthSvc) Refresh(_ context.Context, token string) (auth.Tokens, error) {
	if token != "refresh-ok" {
		return auth.Tokens{}, auth.ErrInvalidToken
	}
	return auth.Tokens{AccessToken: "fresh", ExpiresIn: 3600}, nil
}

func (s *stubAuthSvc) SignOut(_ context.Context, token string) error {
	s.signedOut = append(s.signedOut, token)
	return nil
}

func (s *stubAuthSvc) RequestPasswordReset(_ context.Context, email string) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resetFor = append(s.resetFor, email)
	return nil
}

func (s *stubAuthSvc) ResetPassword(_ context.Context, token, password string) error {
	if token != "reset-ok" {
		return auth.ErrInvalidToken
	}
	if len(password) < 8 {
		return fmt.Errorf("password too short: %w", domain.ErrInvalidInput)
	}
	if s.passwords == nil {
		s.passwords = map[string]string{}
	}
	s.passwords[token] = password
	return nil
}

func (s *stubAuthSvc) Resolve(_ context.Context, token string) identity.Session {
	switch token {
	case "admin-token":
		return identity.SignedIn(adminUser)
	case "customer-token":
		return identity.SignedIn(customerUser)
	case "roleless-token":
		return identity.Session{User: &domain.User{ID: "x"}}
	case "broken-token":
		return identity.Failed(errors.New("user store down"))
	default:
		return identity.Anonymous()
	}
}

type stubProductService struct {
	products map[string]domain.Product
	created  []domain.Product
	err      error
}

func newStubProducts() *stubProductService {
	return &stubProductService{products: map[string]domain.Product{
		"p-tee": {ID: "p-tee", Key: "tee", Name: "Tee", Price: decimal.NewFromInt(100), Category: "men", Sizes: []string{"S", "M"}},
		"p-cap": {ID: "p-cap", Key: "cap", Name: "Cap", Price: decimal.NewFromInt(60), Category: "men"},
	}}
}

func (s *stubProductService) List(_ context.Context, category string) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Product
	for _, p := range s.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProductService) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = "p-" + p.Key
	s.created = append(s.created, p)
	s.products[p.ID] = p
	return &p, nil
}

func (s *stubProductService) Update(_ context.Context, id string, p domain.Product) (*domain.Product, error) {
	if _, ok := s.products[id]; !ok {
		return nil, domain.ErrNotFound
	}
	p.ID = id
	s.products[id] = p
	return &p, nil
}

func (s *stubProductService) Delete(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

type stubCategoryService struct{}

func (stubCategoryService) List(context.Context) ([]domain.Category, error) {
	return []domain.Category{{Name: "men", ProductCount: 2}}, nil
}

type stubOrders struct {
	submitted []domain.Order
}

func (s *stubOrders) SubmitOrder(_ context.Context, o domain.Order) (string, error) {
	s.submitted = append(s.submitted, o)
	return "order-1", nil
}

func (s *stubOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range s.submitted {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrders) ListAll(context.Context) ([]domain.Order, error) {
	return s.submitted, nil
}

type stubMedia struct {
	names   []string
	deleted []string
	err     error
}

func (s *stubMedia) Delete(_ context.Context, publicID string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, publicID)
	return nil
}

func (s *stubMedia) Upload(_ context.Context, r io.Reader, filename string, size int64) (*media.Image, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.names = append(s.names, filename)
	return &media.Image{PublicID: "products/" + filename, URL: "https://cdn.test/" + filename, Bytes: int(size)}, nil
}

// memoryHeroStore keeps hero settings in memory.
type memoryHeroStore struct {
	settings *domain.HeroSettings
}

func (m *memoryHeroStore) HeroImages(context.Context) (*domain.HeroSettings, error) {
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	out := *m.settings
	out.Images = append([]domain.HeroImage{}, m.settings.Images...)
	return &out, nil
}

func (m *memoryHeroStore) SaveHeroImages(_ context.Context, images []domain.HeroImage) (*domain.HeroSettings, error) {
	m.settings = &domain.HeroSettings{Images: append([]domain.HeroImage{}, images...), UpdatedAt: time.Now()}
	return m.HeroImages(context.Background())
}

type testEnv struct {
	router   *gin.Engine
	auth     *stubAuthSvc
	products *stubProductService
	carts    *cart.Service
	orders   *stubOrders
	media    *stubMedia
	hero     *memoryHeroStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		auth:     &stubAuthSvc{},
		products: newStubProducts(),
		carts:    cart.New(nil, nil, nil),
		orders:   &stubOrders{},
		media:    &stubMedia{},
		hero:     &memoryHeroStore{},
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		AuthSvc:     env.auth,
		ProductSvc:  env.products,
		CategorySvc: stubCategoryService{},
		CartSvc:     env.carts,
		CheckoutSvc: checkout.New(env.carts, env.orders, nil, decimal.RequireFromString("0.10"), nil),
		MediaSvc:    env.media,
		HeroSvc:     hero.New(env.hero, env.media, nil),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	env.router = router
	return env
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d body=%s", want, rec.Code, rec.Body.String())
	}
}

