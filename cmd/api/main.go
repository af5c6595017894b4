package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NYTimes/gziphandler"

	"partshub-backend/config"
	"partshub-backend/internal/delivery/http/middleware"
	v1 "partshub-backend/internal/delivery/http/v1"
	"partshub-backend/internal/infrastructure/cache"
	"partshub-backend/internal/infrastructure/notify"
	"partshub-backend/internal/infrastructure/paymongo"
	"partshub-backend/internal/infrastructure/session"
	"partshub-backend/internal/repository/postgres"
	"partshub-backend/internal/usecase"
	"partshub-backend/internal/domain"
	"partshub-backend/pkg/logger"
	"partshub-backend/pkg/storage"
	"partshub-backend/pkg/utils"
)

func main() {
	cfg := config.LoadConfig()
	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// JWT validation secret for the auth middleware
	utils.SetSecret(cfg.JWTSecret)

	// Database
	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	couponRepo := postgres.NewCouponRepository(pgxPool)
	productRepo := postgres.NewProductRepository(pgxPool)
	addressRepo := postgres.NewAddressRepository(pgxPool)
	outboxRepo := postgres.NewFulfillmentOutbox(pgxPool)

	// Session store: carts and flash messages live here for the session TTL
	cartStore := session.NewStore(cfg.SessionTTL, time.Hour)

	// Read cache for the related-products strip
	memCache := cache.NewMemoryCache(cfg.RelatedCacheTTL, time.Hour)

	// Payment Gateway
	gateway := paymongo.NewClient(cfg.GatewayURL, cfg.GatewaySecretKey, cfg.GatewayTimeout)

	// Notifications (invoice emails go through the RabbitMQ worker)
	amqpConn, err := notify.Dial(cfg.AmqpURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}
	notifier, err := notify.NewPublisher(amqpConn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up notification publisher")
	}

	// Invoice Archive (R2) — optional, enabled when credentials are set
	var archiver *storage.InvoiceArchive
	if cfg.R2AccountID != "" {
		archiver, err = storage.NewInvoiceArchive(
			context.Background(),
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize invoice archive")
		}
	} else {
		log.Warn().Msg("R2 not configured; invoice archival disabled")
	}

	// --- Modules Initialization ---

	cartUC := usecase.NewCartUsecase(cartStore, productRepo, cfg.TaxRate, cfg.RushDeliveryFee)
	couponUC := usecase.NewCouponUsecase(cartStore, couponRepo, cfg.TaxRate, cfg.RushDeliveryFee)
	addressUC := usecase.NewAddressUsecase(cartStore, addressRepo)
	catalogUC := usecase.NewCatalogUsecase(cartStore, productRepo, memCache, cfg.RelatedCacheTTL)

	successURL := cfg.FrontendURL + "/payment/success"
	cancelURL := cfg.FrontendURL + "/payment/failed"

	// Avoid a typed-nil archiver sneaking into the interface
	var archiverIface domain.InvoiceArchiver
	if archiver != nil {
		archiverIface = archiver
	}
	checkoutUC := usecase.NewCheckoutUsecase(
		cartStore,
		addressRepo,
		gateway,
		notifier,
		archiverIface,
		outboxRepo,
		cfg.TaxRate,
		cfg.RushDeliveryFee,
		cfg.Currency,
		successURL,
		cancelURL,
		cfg.GatewayTimeout,
	)

	cartHandler := v1.NewCartHandler(cartUC, couponUC)
	checkoutHandler := v1.NewCheckoutHandler(checkoutUC)
	addressHandler := v1.NewAddressHandler(addressUC)
	catalogHandler := v1.NewCatalogHandler(catalogUC)

	// Router
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}

	// Cart
	mux.Handle("GET /api/v1/cart", authed(cartHandler.GetCart))
	mux.Handle("POST /api/v1/cart/items", authed(cartHandler.AddItem))
	mux.Handle("PUT /api/v1/cart/items/{productId}", authed(cartHandler.UpdateQuantity))
	mux.Handle("DELETE /api/v1/cart/items/{productId}", authed(cartHandler.RemoveItem))
	mux.Handle("POST /api/v1/cart/coupon", authed(cartHandler.ApplyCoupon))
	mux.Handle("PUT /api/v1/cart/shipping-option", authed(cartHandler.SetShippingOption))
	mux.Handle("PUT /api/v1/cart/payment-method", authed(cartHandler.SetPaymentMethod))
	mux.Handle("GET /api/v1/cart/related", authed(catalogHandler.RelatedProducts))
	mux.Handle("GET /api/v1/cart/flash", authed(cartHandler.GetFlash))

	// Checkout + payment gateway redirects
	mux.Handle("POST /api/v1/checkout", authed(checkoutHandler.Checkout))
	mux.Handle("GET /payment/success", authed(checkoutHandler.PaymentSuccess))
	mux.Handle("GET /payment/failed", authed(checkoutHandler.PaymentFailed))

	// Addresses
	mux.Handle("GET /api/v1/user/addresses", authed(addressHandler.ListAddresses))
	mux.Handle("POST /api/v1/user/addresses", authed(addressHandler.AddAddress))
	mux.Handle("PUT /api/v1/user/addresses/{id}/select", authed(addressHandler.SelectAddress))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Rate Limiter: 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	// CORS, Request Logger, Rate Limit, Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	notifier.Close()
	amqpConn.Close()
	pgxPool.Close()

	log.Info().Msg("Server exited properly")
}
