package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storvbox-be/internal/analytics"
	"storvbox-be/internal/auth"
	"storvbox-be/internal/background"
	"storvbox-be/internal/cart"
	"storvbox-be/internal/category"
	"storvbox-be/internal/commerce"
	"storvbox-be/internal/config"
	"storvbox-be/internal/content"
	"storvbox-be/internal/db"
	"storvbox-be/internal/handler"
	"storvbox-be/internal/logger"
	"storvbox-be/internal/media"
	"storvbox-be/internal/metrics"
	"storvbox-be/internal/middleware"
	"storvbox-be/internal/notify"
	"storvbox-be/internal/order"
	"storvbox-be/internal/payment"
	"storvbox-be/internal/product"
	"storvbox-be/internal/quote"
	"storvbox-be/internal/user"
	"storvbox-be/internal/utils"

	"cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const shutdownTimeout = 25 * time.Second

var initDBFunc = db.InitDB

// startServerFunc serves until ctx is cancelled, then drains open connections.
var startServerFunc = func(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupRouter installs the global middleware chain, the health probe and
// mounts the REST API. uploads may be nil when files live in Cloud Storage.
func setupRouter(cfg *config.Config, api http.Handler, uploads http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSFor(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "OK",
			"metrics": metrics.Default.Snapshot(),
		})
	})

	r.Mount("/api", api)

	if uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))
	}

	return r
}

func newMediaStore(ctx context.Context, cfg *config.Config) (media.Store, http.Handler, error) {
	if cfg.GCSBucket == "" {
		local := media.NewLocalStore(cfg.UploadDir, "/uploads")
		return local, http.FileServer(http.Dir(local.Dir())), nil
	}

	var opts []option.ClientOption
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return media.NewGCSStore(client, cfg.GCSBucket, "products"), nil, nil
}

// newServer wires repositories, services and side channels into the HTTP router.
func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, queue *background.Queue) (http.Handler, error) {
	log := logger.L()

	authManager := auth.NewManager(auth.Options{
		Secret:        cfg.JWTSecret,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		SecureCookies: cfg.IsProduction(),
	})

	mailer := notify.New(cfg.SendGridAPIKey, cfg.MailFrom)
	tracker := analytics.NewClient(analytics.Options{
		URL:     cfg.AnalyticsURL,
		Token:   cfg.AnalyticsToken,
		Timeout: cfg.UpstreamTimeout,
	}, queue)

	commerceClient := commerce.NewClient(commerce.Options{
		BaseURL:        cfg.CommerceBaseURL,
		PublishableKey: cfg.CommercePublishableKey,
		AdminToken:     cfg.CommerceAdminToken,
		Currency:       cfg.CommerceCurrency,
		Timeout:        cfg.UpstreamTimeout,
	})
	var publisher product.Publisher
	if cfg.CommerceAdminToken != "" {
		publisher = commerceClient
	}

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo,
		product.NewSource(cfg.CatalogSource, productRepo, commerceClient),
		publisher,
	)

	userSvc := user.NewService(user.NewRepository(database), authManager)

	cartSvc := cart.NewService(cart.NewRepository(database), productSvc, cart.Options{
		TTL:     cfg.CartTTL,
		Tracker: tracker,
	})

	orderSvc := order.NewService(order.NewRepository(database), cartSvc, order.Options{
		Bank: payment.BankAccount{
			IBAN:        cfg.BankIBAN,
			Beneficiary: cfg.BankBeneficiary,
			BankName:    cfg.BankName,
			Currency:    cfg.CommerceCurrency,
		},
		Mailer:     mailer,
		Queue:      queue,
		Tracker:    tracker,
		StaffEmail: cfg.StaffEmail,
	})

	quoteSvc := quote.NewService(quote.NewRepository(database), quote.Options{
		Mailer:     mailer,
		Queue:      queue,
		Tracker:    tracker,
		StaffEmail: cfg.StaffEmail,
	})

	cms := content.NewClient(content.Options{
		ProjectID:  cfg.CMSProjectID,
		Dataset:    cfg.CMSDataset,
		APIVersion: cfg.CMSAPIVersion,
		Token:      cfg.CMSToken,
		UseCDN:     cfg.IsProduction(),
		Timeout:    cfg.UpstreamTimeout,
	})

	store, uploads, err := newMediaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	api := &handler.Handler{
		Auth:        authManager,
		Limiter:     middleware.NewLimiter(ctx),
		Tracker:     tracker,
		UserSvc:     userSvc,
		CartSvc:     cartSvc,
		ProductSvc:  productSvc,
		CategorySvc: category.NewService(category.NewRepository(database)),
		OrderSvc:    orderSvc,
		QuoteSvc:    quoteSvc,
		Content:     cms,
		Uploader:    media.NewUploader(store),
	}

	log.Info("services wired",
		zap.String("catalog_source", productSvc.SourceName()),
		zap.Bool("gcs", cfg.GCSBucket != ""),
		zap.Bool("mail", cfg.SendGridAPIKey != ""),
	)

	return setupRouter(cfg, api.Routes(), uploads), nil
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.AdminPassword == "" {
		logger.L().Warn("ADMIN_PASSWORD is empty, admin login is disabled")
	}

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := background.NewQueue(background.Options{Timeout: cfg.UpstreamTimeout})

	router, err := newServer(ctx, cfg, database, queue)
	if err != nil {
		return err
	}

	logger.L().Info("http server listening", zap.String("port", cfg.AppPort))
	serveErr := startServerFunc(ctx, ":"+cfg.AppPort, router)

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := queue.Shutdown(drainCtx); err != nil {
		logger.L().Warn("background queue did not drain", zap.Error(err))
	}

	return serveErr
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
