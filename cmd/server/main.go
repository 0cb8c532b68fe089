package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vendora/backend/docs"
	"github.com/vendora/backend/internal/auth"
	"github.com/vendora/backend/internal/config"
	"github.com/vendora/backend/internal/database"
	"github.com/vendora/backend/internal/handlers"
	"github.com/vendora/backend/internal/logger"
	mW "github.com/vendora/backend/internal/middleware"
	"github.com/vendora/backend/internal/services"
	"go.uber.org/zap"
)

// @title Vending Machine API
// @version 1.0
// @description Buyers deposit coins and purchase products; sellers manage their products.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type store interface {
	services.UserRepository
	services.AccountRepository
	services.ProductRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = hostOf(cfg.Server.PublicURL)

	var repo store
	switch cfg.Storage {
	case config.StorageMemory:
		zl.Warn("using in-memory storage, data is lost on restart")
		repo = database.NewMemoryStore()
	default:
		db, err := database.OpenPostgres(ctx, cfg.Database, zl)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		repo = database.NewPostgresStore(db)
	}

	var (
		sessions  auth.SessionStore
		publisher services.PurchasePublisher
	)
	if redisClient := database.InitRedis(ctx, cfg.Redis, zl); redisClient != nil {
		defer redisClient.Close()
		sessions = auth.NewRedisSessionStore(redisClient)
		publisher = database.NewRedisPurchaseQueue(redisClient)
	} else {
		zl.Warn("sessions are kept in memory and purchase events are not published")
		sessions = auth.NewMemorySessionStore()
	}

	denominations, err := services.NewDenominations(cfg.Engine.Denominations)
	if err != nil {
		return err
	}

	engine := services.NewEngine(repo, repo, publisher, services.EngineConfig{
		Denominations:      denominations,
		MaxConflictRetries: cfg.Engine.MaxConflictRetries,
	}, zl)

	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := auth.NewPasswordHasher(auth.Argon2Params{
		Time:       cfg.Argon2.Time,
		Memory:     cfg.Argon2.Memory,
		Threads:    cfg.Argon2.Threads,
		KeyLength:  cfg.Argon2.KeyLength,
		SaltLength: cfg.Argon2.SaltLength,
	})
	authService := services.NewAuthService(repo, engine.Ledger, hasher, tokens, sessions, zl)
	qrService := services.NewQRService(engine.Catalog, cfg.Server.PublicURL)

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		SwaggerURL:     cfg.Server.PublicURL + "/swagger/doc.json",
	}, handlers.Router{
		Users:         handlers.NewUserHandler(authService, engine, zl),
		Products:      handlers.NewProductHandler(engine, zl),
		QR:            handlers.NewQRHandler(qrService, zl),
		Authenticator: mW.NewAuthenticator(tokens, sessions, zl),
	}, zl)

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage),
			zap.Stringer("denominations", denominations))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	zl.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	zl.Info("server stopped")
	return nil
}

func hostOf(publicURL string) string {
	if u, err := url.Parse(publicURL); err == nil && u.Host != "" {
		return u.Host
	}
	return publicURL
}
