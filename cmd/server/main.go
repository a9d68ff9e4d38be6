package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/squiirlabs/marketplace/internal/accounts"
	"github.com/squiirlabs/marketplace/internal/auth"
	"github.com/squiirlabs/marketplace/internal/cart"
	"github.com/squiirlabs/marketplace/internal/catalog"
	"github.com/squiirlabs/marketplace/internal/checkout"
	"github.com/squiirlabs/marketplace/internal/contacts"
	"github.com/squiirlabs/marketplace/internal/messaging"
	"github.com/squiirlabs/marketplace/internal/notifier"
	"github.com/squiirlabs/marketplace/internal/orders"
	"github.com/squiirlabs/marketplace/internal/storage"
	"github.com/squiirlabs/marketplace/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracing(ctx, "marketplace", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMetrics, err := telemetry.InitMetrics("marketplace", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMetrics(ctx) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		logger.Error("AUTH_SECRET environment variable is required")
		os.Exit(1)
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// The cache, the broker and the mailer are all optional: without them the
	// server still serves every route, just slower or quieter.
	var cartCache cart.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = client.Close() }()
		cartCache = cart.NewRedisCache(client)
	}

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.TopicOrderPlaced)
		defer func() { _ = producer.Close() }()
	}

	var mailer *notifier.Mailer
	if emailServiceURL := os.Getenv("EMAIL_SERVICE_URL"); emailServiceURL != "" {
		mailer = notifier.NewMailer(emailServiceURL, &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		})
	}

	blobs, err := openBlobStore(ctx, logger)
	if err != nil {
		logger.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenService(authSecret, "marketplace")
	authn := auth.NewMiddleware(tokens)

	userRepo := accounts.NewUserRepository(db)
	productRepo := catalog.NewProductRepository(db)
	cartRepo := cart.NewCartRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	contactRepo := contacts.NewContactRepository(db)

	checkoutSvc := checkout.NewService(
		cart.NewCheckoutStore(cartRepo, cartCache),
		productRepo, userRepo, orderRepo, eventPublisher(producer), logger,
	)
	reportSvc := orders.NewSellerReportService(productRepo, orderRepo, userRepo)

	mux := newMux(serverHandlers{
		accounts: accounts.NewHandler(userRepo, tokens, emailSender(mailer), blobs, baseURL, logger),
		catalog:  catalog.NewHandler(productRepo, blobs, logger),
		cart:     cart.NewHandler(cartRepo, productRepo, cartCache, logger),
		checkout: checkout.NewHandler(checkoutSvc, logger),
		orders:   orders.NewHandler(orderRepo, reportSvc, logger),
		contacts: contacts.NewHandler(contactRepo, userRepo, emailSender(mailer), logger),
		authn:    authn,
		metrics:  metricsHandler,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "marketplace",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting marketplace server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

type serverHandlers struct {
	accounts *accounts.Handler
	catalog  *catalog.Handler
	cart     *cart.Handler
	checkout *checkout.Handler
	orders   *orders.Handler
	contacts *contacts.Handler
	authn    *auth.Middleware
	metrics  http.Handler
}

func newMux(h serverHandlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", telemetry.WithRoute(h.accounts.HandleRegister))
	mux.HandleFunc("GET /verify-email", telemetry.WithRoute(h.accounts.HandleVerifyEmail))
	mux.HandleFunc("POST /login", telemetry.WithRoute(h.accounts.HandleLogin))
	mux.HandleFunc("GET /profile", telemetry.WithRoute(h.authn.Require(h.accounts.HandleGetProfile)))
	mux.HandleFunc("PUT /profile", telemetry.WithRoute(h.authn.Require(h.accounts.HandleUpdateProfile)))

	mux.HandleFunc("GET /products", telemetry.WithRoute(h.catalog.HandleList))
	mux.HandleFunc("POST /products", telemetry.WithRoute(h.authn.Require(h.catalog.HandleCreate)))
	mux.HandleFunc("GET /products/mine", telemetry.WithRoute(h.authn.Require(h.catalog.HandleListMine)))
	mux.HandleFunc("GET /products/recent", telemetry.WithRoute(h.authn.Require(h.catalog.HandleListRecent)))
	mux.HandleFunc("PUT /products/{id}", telemetry.WithRoute(h.authn.Require(h.catalog.HandleUpdate)))
	mux.HandleFunc("DELETE /products/{id}", telemetry.WithRoute(h.authn.Require(h.catalog.HandleDelete)))

	mux.HandleFunc("GET /cart", telemetry.WithRoute(h.authn.Require(h.cart.HandleList)))
	mux.HandleFunc("POST /cart", telemetry.WithRoute(h.authn.Require(h.cart.HandleAdd)))
	mux.HandleFunc("DELETE /cart/{productId}", telemetry.WithRoute(h.authn.Require(h.cart.HandleRemove)))

	mux.HandleFunc("POST /checkout", telemetry.WithRoute(h.authn.Require(h.checkout.HandleCheckout)))
	mux.HandleFunc("GET /orders", telemetry.WithRoute(h.authn.Require(h.orders.HandleListMine)))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithRoute(h.authn.Require(h.orders.HandleGet)))
	mux.HandleFunc("GET /seller-orders", telemetry.WithRoute(h.authn.Require(h.orders.HandleSellerReport)))

	mux.HandleFunc("POST /contact", telemetry.WithRoute(h.contacts.HandleCreate))
	mux.HandleFunc("GET /contacts/recent", telemetry.WithRoute(h.authn.Require(h.contacts.HandleListRecent)))
	mux.HandleFunc("POST /contacts/{id}/read", telemetry.WithRoute(h.authn.Require(h.contacts.HandleMarkRead)))

	mux.Handle("GET /metrics", h.metrics)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// openBlobStore returns an S3-backed store when a bucket is configured and an
// in-memory one otherwise, so local development needs no object storage.
func openBlobStore(ctx context.Context, logger *slog.Logger) (storage.BlobStore, error) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		logger.Warn("S3_BUCKET not set, uploads are kept in memory")
		return storage.NewStub(), nil
	}

	return storage.NewS3Store(ctx, storage.S3Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    os.Getenv("S3_REGION"),
		Bucket:    bucket,
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
	})
}

// eventPublisher keeps the nil producer from becoming a typed non-nil
// interface value inside the checkout service.
func eventPublisher(p *messaging.Producer) checkout.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func emailSender(m *notifier.Mailer) accounts.EmailSender {
	if m == nil {
		return nil
	}
	return m
}
