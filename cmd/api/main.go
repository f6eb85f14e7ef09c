package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-wallet-api/config"
	httpHandler "social-wallet-api/internal/adapter/http/handler"
	"social-wallet-api/internal/adapter/http/middleware"
	"social-wallet-api/internal/adapter/ledger"
	"social-wallet-api/internal/adapter/ledger/hedera"
	"social-wallet-api/internal/adapter/ledger/stellar"
	"social-wallet-api/internal/adapter/metrics"
	pgStorage "social-wallet-api/internal/adapter/storage/postgres"
	redisStorage "social-wallet-api/internal/adapter/storage/redis"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/internal/service"
	"social-wallet-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty, "social-wallet-api")
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Social Wallet API")

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(cfg.Database.MigrateURL(), log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	userRepo := pgStorage.NewUserRepo(pool)
	profileRepo := pgStorage.NewProfileRepo(pool)
	walletRepo := pgStorage.NewWalletAccountRepo(pool)
	paymentRepo := pgStorage.NewPaymentRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	lockStore := redisStorage.NewLockStore(rdb)
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	m := metrics.New()
	healthCheckers := []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
	}

	adapters := make(map[domain.Network]ports.LedgerAdapter)
	funding := make(map[domain.Network]domain.FundingPolicy)

	if cfg.Hedera.Enabled {
		initial, err := cfg.Hedera.InitialBalanceHbar()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid hedera initial balance")
		}
		maxFee, err := cfg.Hedera.MaxTxFeeHbar()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid hedera max transaction fee")
		}
		client, err := hedera.NewClient(cfg.Hedera, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize hedera client")
		}
		defer client.Close()

		mirror := hedera.NewMirrorClient(cfg.Hedera.MirrorNodeURL, cfg.Hedera.RequestTimeout)
		adapter := hedera.NewAdapter(
			hedera.NewSDKGateway(client, maxFee),
			mirror,
			ledger.NewRateLimiter(cfg.Hedera.RatePerSecond, cfg.Hedera.Burst),
			log,
		)
		adapters[domain.NetworkHedera] = ledger.Instrument(adapter, m)
		funding[domain.NetworkHedera] = domain.FundingPolicy{InitialBalance: initial}
		healthCheckers = append(healthCheckers, hedera.NewHealthCheck(mirror))
		log.Info().Str("network", cfg.Hedera.Network).Msg("Hedera ledger enabled")
	}

	if cfg.Stellar.Enabled {
		horizon := stellar.NewHorizonClient(cfg.Stellar)
		var faucet stellar.Faucet
		if cfg.Stellar.FriendbotURL != "" {
			faucet = stellar.NewFriendbot(cfg.Stellar.FriendbotURL, cfg.Stellar.RequestTimeout)
		}
		adapter := stellar.NewAdapter(
			horizon,
			faucet,
			cfg.Stellar,
			ledger.NewRateLimiter(cfg.Stellar.RatePerSecond, cfg.Stellar.Burst),
			log,
		)
		adapters[domain.NetworkStellar] = ledger.Instrument(adapter, m)
		healthCheckers = append(healthCheckers, stellar.NewHealthCheck(horizon))
		log.Info().Str("horizon", cfg.Stellar.HorizonURL).Msg("Stellar ledger enabled")
	}

	if len(adapters) == 0 {
		log.Warn().Msg("No ledger enabled; wallet endpoints will report unsupported networks")
	}

	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc, err := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc)
	profileSvc := service.NewProfileService(profileRepo, userRepo, transactor)
	resolver := service.NewRecipientResolver(adapters, userRepo, profileRepo, walletRepo)
	walletSvc := service.NewWalletService(
		adapters,
		walletRepo,
		paymentRepo,
		resolver,
		encSvc,
		lockStore,
		idempotencyCache,
		service.WalletOptions{
			LockTTL:             cfg.Wallet.LockTTL,
			LockWait:            cfg.Wallet.LockWait,
			IdempotencyTTL:      cfg.Wallet.IdempotencyTTL,
			DefaultHistoryLimit: cfg.Wallet.DefaultHistoryLimit,
			MaxHistoryLimit:     cfg.Wallet.MaxHistoryLimit,
			Funding:             funding,
		},
		log,
	)
	auditSvc := service.NewAuditService(auditRepo, log)

	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		ProfileSvc:     profileSvc,
		WalletSvc:      walletSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRules: middleware.RateLimitRules(
			cfg.RateLimit.AuthPerMinute,
			cfg.RateLimit.WalletPerMinute,
			cfg.RateLimit.PaymentPerMinute,
		),
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Metrics:        m,
		MaxBodySize:    cfg.Server.MaxBodySize,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
