package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/paylith/cardvault/internal/adapter/http"
	"github.com/paylith/cardvault/internal/adapter/http/handler"
	"github.com/paylith/cardvault/internal/adapter/http/middleware"
	postgresRepo "github.com/paylith/cardvault/internal/adapter/repository/postgres"
	redisRepo "github.com/paylith/cardvault/internal/adapter/repository/redis"
	"github.com/paylith/cardvault/internal/infrastructure/auth"
	"github.com/paylith/cardvault/internal/infrastructure/config"
	"github.com/paylith/cardvault/internal/infrastructure/crypto"
	"github.com/paylith/cardvault/internal/infrastructure/logger"
	"github.com/paylith/cardvault/internal/infrastructure/metrics"
	"github.com/paylith/cardvault/internal/infrastructure/postgres"
	"github.com/paylith/cardvault/internal/infrastructure/redis"
	"github.com/paylith/cardvault/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	cardCipher, err := crypto.NewAESCardCipher(cfg.CardCipherKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize card cipher")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(appMetrics)
	cardRepo := postgresRepo.NewCardRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	authorizer := usecase.NewTransferAuthorizer()
	transferUC := usecase.NewTransferUseCase(txManager, retrier, cardRepo, transferRepo, authorizer, idGen, appMetrics)
	cardUC := usecase.NewCardUseCase(txManager, cardRepo, userRepo, cardCipher, cache, idGen, appMetrics)
	userUC := usecase.NewUserUseCase(userRepo, idGen)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userUC, jwtManager)
	cardHandler := handler.NewCardHandler(cardUC)
	transferHandler := handler.NewTransferHandler(transferUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:     authHandler,
		CardHandler:     cardHandler,
		TransferHandler: transferHandler,
		HealthHandler:   healthHandler,
		JWTManager:      jwtManager,
		Metrics:         appMetrics,
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, appMetrics),
		Logger:          log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
