package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sharefile/internal/auth"
	"sharefile/internal/config"
	"sharefile/internal/handler"
	"sharefile/internal/preview"
	"sharefile/internal/repository"
	"sharefile/internal/service"
	"sharefile/internal/service/payment"
	"sharefile/internal/service/s3"
)

func connectWithRetry(cfg *config.Config, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	dsn := cfg.Database.GetDSN()

	// Сначала подключаемся к системной базе postgres, чтобы при
	// необходимости создать рабочую базу
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Database.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Database.Name)
		_, err = pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectWithRetry(appConfig, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Проверка токенов внешнего auth-сервиса
	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}
	auth.InitVerifier(authConfig)

	// Платежная платформа
	paymentConfig, err := payment.NewConfig(".stripe.env")
	if err != nil {
		log.Fatalf("Failed to load payment config: %v", err)
	}
	paymentClient := payment.NewClient(paymentConfig, appConfig.Server.BaseURL)

	// Инициализация репозиториев
	itemRepo := repository.NewItemRepository(db)
	accountRepo := repository.NewAccountRepository(db)

	// Инициализация сервисов
	itemService := service.NewItemService(itemRepo, accountRepo, s3Client)
	accessService := service.NewAccessService(itemRepo, accountRepo, paymentClient)
	billingService := service.NewBillingService(accountRepo, paymentClient, paymentConfig)
	previewService := preview.NewService(s3Client)

	// Периодическая чистка превью, оставшихся от удаленных файлов
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				err := previewService.CleanupStale(cleanupCtx, func(ctx context.Context, id uuid.UUID) (bool, error) {
					if _, err := itemRepo.GetByID(ctx, id); err != nil {
						if errors.Is(err, repository.ErrNotFound) {
							return false, nil
						}
						return false, err
					}
					return true, nil
				})
				if err != nil {
					log.Printf("[Preview] Cleanup failed: %v", err)
				}
			}
		}
	}()

	// Инициализация хендлеров
	itemHandler := handler.NewItemHandler(itemService)
	shareHandler := handler.NewShareHandler(accessService, previewService)
	billingHandler := handler.NewBillingHandler(billingService)
	webhookHandler := handler.NewWebhookHandler(billingService, paymentClient)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTTP маршруты
	r.Route("/v1", func(r chi.Router) {
		r.Post("/items", itemHandler.UploadItem)
		r.Get("/items", itemHandler.ListItems)

		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Get("/", itemHandler.GetItem)
			r.Put("/", itemHandler.UpdateItem)
			r.Delete("/", itemHandler.DeleteItem)
		})

		r.Route("/share/{itemID}", func(r chi.Router) {
			r.Get("/", shareHandler.GetShare)
			r.Post("/password", shareHandler.SetPassword)
			r.Post("/checkout", shareHandler.StartCheckout)
			r.Get("/preview", shareHandler.GetPreview)
		})

		r.Route("/billing", func(r chi.Router) {
			r.Get("/plan", billingHandler.GetPlan)
			r.Post("/upgrade", billingHandler.UpgradePlan)
			r.Post("/connect", billingHandler.ConnectAccount)
		})

		r.Post("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	cancelCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}
