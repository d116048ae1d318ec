package httpserver

import (
	"context"
	"io"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
	"storefront/internal/service/cart"
	"storefront/internal/service/checkout"
	"storefront/internal/service/guard"
	"storefront/internal/service/hero"
	"storefront/internal/service/identity"
	"storefront/internal/service/media"
	"storefront/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, auth.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (auth.Tokens, error)
	SignOut(ctx context.Context, refreshToken string) error
	Resolve(ctx context.Context, accessToken string) identity.Session
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type ProductService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type CartService interface {
	Get(ctx context.Context, userID string) (*cart.Store, error)
}

type CheckoutService interface {
	Quote(snap cart.Snapshot) (subtotal, tax, shipping, total decimal.Decimal)
	PlaceOrder(ctx context.Context, userID string, d checkout.Details) (*domain.Order, error)
	Orders(ctx context.Context, userID string) ([]domain.Order, error)
	AllOrders(ctx context.Context) ([]domain.Order, error)
}

type MediaService interface {
	Upload(ctx context.Context, r io.Reader, filename string, size int64) (*media.Image, error)
	Delete(ctx context.Context, publicID string) error
}

type HeroService interface {
	List(ctx context.Context) (*domain.HeroSettings, error)
	Add(ctx context.Context, files []hero.File) (*domain.HeroSettings, error)
	Replace(ctx context.Context, images []domain.HeroImage) (*domain.HeroSettings, error)
	Remove(ctx context.Context, index int) (*domain.HeroSettings, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	AuthSvc     AuthService
	ProductSvc  ProductService
	CategorySvc CategoryService
	CartSvc     CartService
	CheckoutSvc CheckoutService
	MediaSvc    MediaService
	HeroSvc     HeroService
	Validator   *validatorv10.Validate
	CORSOrigins []string
}

var (
	customerOnly = guard.Config{RequireCustomer: true}
	adminOnly    = guard.Config{RequireAdmin: true}
	signedIn     = guard.Config{}
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Location"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	h := &handlers{deps: deps, logger: logger}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.Use(sessionMiddleware(deps.AuthSvc))

	authGroup := router.Group("/auth")
	authGroup.POST("/signup", h.signup)
	authGroup.POST("/signin", h.signin)
	authGroup.GET("/signin", h.signinLanding)
	authGroup.POST("/refresh", h.refresh)
	authGroup.POST("/signout", h.signout)
	authGroup.POST("/password/forgot", h.forgotPassword)
	authGroup.POST("/password/reset", h.resetPassword)

	router.GET("/unauthorized", h.unauthorized)
	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)
	router.GET("/categories", h.listCategories)
	router.GET("/hero-images", h.listHeroImages)

	me, err := requireRole(signedIn, logger)
	if err != nil {
		return nil, err
	}
	router.GET("/auth/me", me, h.me)

	customer, err := requireRole(customerOnly, logger)
	if err != nil {
		return nil, err
	}
	shop := router.Group("/", customer)
	shop.GET("/cart", h.getCart)
	shop.POST("/cart/items", h.addCartItem)
	shop.PATCH("/cart/items/:id", h.updateCartItem)
	shop.DELETE("/cart/items/:id", h.removeCartItem)
	shop.DELETE("/cart", h.clearCart)
	shop.POST("/checkout", h.checkout)
	shop.GET("/orders", h.listOrders)

	admin, err := requireRole(adminOnly, logger)
	if err != nil {
		return nil, err
	}
	adminGroup := router.Group("/admin", admin)
	adminGroup.GET("", h.adminLanding)
	adminGroup.POST("/products", h.createProduct)
	adminGroup.PUT("/products/:id", h.updateProduct)
	adminGroup.DELETE("/products/:id", h.deleteProduct)
	adminGroup.GET("/orders", h.listAllOrders)
	adminGroup.POST("/images", h.uploadImage)
	adminGroup.DELETE("/images/*publicID", h.deleteImage)
	adminGroup.POST("/hero-images", h.addHeroImages)
	adminGroup.PUT("/hero-images", h.replaceHeroImages)
	adminGroup.DELETE("/hero-images/:index", h.removeHeroImage)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
