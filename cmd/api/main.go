package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	settingsrepo "storefront/internal/repository/settings"
	tokenrepo "storefront/internal/repository/token"
	userrepo "storefront/internal/repository/user"
	authsvc "storefront/internal/service/auth"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	checkoutsvc "storefront/internal/service/checkout"
	herosvc "storefront/internal/service/hero"
	"storefront/internal/service/identity"
	mediasvc "storefront/internal/service/media"
	productsvc "storefront/internal/service/product"
	"storefront/internal/validation"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	hub := identity.NewHub()

	// Order and password reset events share the queue; interfaces stay nil
	// when it is not configured.
	var (
		publisher checkoutsvc.EventPublisher
		resets    authsvc.ResetNotifier
	)
	if cfg.OrderEventsQueueURL != "" {
		client, err := events.NewSQSClient(ctx, cfg.AWSRegion)
		if err != nil {
			logger.Fatalf("init sqs: %v", err)
		}
		p := events.NewPublisher(client, cfg.OrderEventsQueueURL, logger)
		publisher, resets = p, p
		logger.Printf("events enabled queue=%s", cfg.OrderEventsQueueURL)
	} else {
		logger.Printf("ORDER_EVENTS_QUEUE_URL not set, password reset disabled")
	}

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	authService := authsvc.New(userRepo, tokenRepo, hub, authsvc.Options{
		Secret:      []byte(cfg.JWTSecret),
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
		ResetTTL:    cfg.ResetTokenTTL,
		AdminEmails: cfg.AdminEmails,
		Resets:      resets,
	}, logger)

	productService := productsvc.New(productrepo.NewPostgres(dbpool, logger), logger)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool, logger), hub, logger)

	checkoutService := checkoutsvc.New(cartService, orderrepo.NewPostgres(dbpool, logger), publisher, cfg.TaxRate, logger)

	mediaService, err := mediasvc.NewFromURL(cfg.CloudinaryURL, cfg.CloudinaryFolder, logger)
	if err != nil {
		logger.Fatalf("init media: %v", err)
	}
	if !mediaService.Enabled() {
		logger.Printf("CLOUDINARY_URL not set, image uploads disabled")
	}
	heroService := herosvc.New(settingsrepo.NewPostgres(dbpool, logger), mediaService, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:     authService,
		ProductSvc:  productService,
		CategorySvc: categoryService,
		CartSvc:     cartService,
		CheckoutSvc: checkoutService,
		MediaSvc:    mediaService,
		HeroSvc:     heroService,
		Validator:   validation.New(),
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go purgeTokens(janitorCtx, authService, time.Hour, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped open_carts=%d", cartService.Open())
	}
}

func purgeTokens(ctx context.Context, svc *authsvc.Service, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PurgeExpiredTokens(ctx); err != nil {
				logger.Printf("token purge: %v", err)
			}
		}
	}
}
