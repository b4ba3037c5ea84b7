package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/snapedit/backend/docs"
	"github.com/snapedit/backend/internal/audit"
	"github.com/snapedit/backend/internal/config"
	"github.com/snapedit/backend/internal/database"
	"github.com/snapedit/backend/internal/database/migrations"
	"github.com/snapedit/backend/internal/handlers"
	"github.com/snapedit/backend/internal/kv"
	"github.com/snapedit/backend/internal/kv/memory"
	kvpostgres "github.com/snapedit/backend/internal/kv/postgres"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/logger"
	"github.com/snapedit/backend/internal/metrics"
	mW "github.com/snapedit/backend/internal/middleware"
	"github.com/snapedit/backend/internal/services"
	"github.com/snapedit/backend/internal/session"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title SnapEdit Credits API
// @version 1.0
// @description Accounts, approval and credit ledger for the image editing service
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")
	viper.BindEnv("auth.max_failed_logins", "AUTH_MAX_FAILED_LOGINS")
	viper.BindEnv("auth.lockout_window", "AUTH_LOCKOUT_WINDOW")
	viper.BindEnv("ratelimit.rps", "RATELIMIT_RPS")
	viper.BindEnv("ratelimit.burst", "RATELIMIT_BURST")

	viper.BindEnv("ledger.admin_username", "LEDGER_ADMIN_USERNAME")
	viper.BindEnv("ledger.admin_password", "LEDGER_ADMIN_PASSWORD")
	viper.BindEnv("ledger.admin_balance", "LEDGER_ADMIN_BALANCE")
	viper.BindEnv("ledger.welcome_bonus", "LEDGER_WELCOME_BONUS")
	viper.BindEnv("ledger.generation_cost", "LEDGER_GENERATION_COST")
	viper.BindEnv("ledger.max_amount", "LEDGER_MAX_AMOUNT")
	viper.BindEnv("ledger.min_password_length", "LEDGER_MIN_PASSWORD_LENGTH")
	viper.BindEnv("ledger.deposit_address", "LEDGER_DEPOSIT_ADDRESS")
	viper.BindEnv("ledger.deposit_network", "LEDGER_DEPOSIT_NETWORK")

	viper.BindEnv("store.backend", "STORE_BACKEND")
	viper.BindEnv("log.json", "LOG_JSON")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("port", "PORT")

	viper.SetDefault("store.backend", "postgres")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("port", "8080")

	configErr := viper.ReadInConfig()

	log := logger.New(viper.GetBool("log.json"))
	if level, err := zerolog.ParseLevel(viper.GetString("log.level")); err == nil {
		log = log.Level(level)
	}
	if configErr != nil {
		log.Info().Err(configErr).Msg("config file not found, using defaults")
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Host = "localhost:" + viper.GetString("port")

	ledgerCfg, err := config.LoadLedgerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid ledger configuration")
	}
	authCfg := config.LoadAuthConfig()
	if authCfg.JWTSecret == "" {
		log.Fatal().Msg("jwt.secret_key must be set")
	}

	ctx := context.Background()

	store, err := openStore(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer store.Close()

	redisClient := database.InitRedis(ctx, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	rec := metrics.New()
	ledgerSvc := ledger.NewService(store, ledger.NewArgon2Hasher(authCfg.Argon2), *ledgerCfg,
		ledger.WithAuditLogger(audit.NewAuditLogger(log)),
		ledger.WithMetrics(rec),
		ledger.WithLogger(log),
	)
	if err := ledgerSvc.SeedAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}

	sessions := session.NewManager(authCfg.JWTSecret, authCfg.TokenTTL, redisClient, log)
	guard := session.NewLoginGuard(redisClient, authCfg.MaxFailedLogins, authCfg.LockoutWindow)

	authService := services.NewAuthService(ledgerSvc, sessions, guard)
	accountService := services.NewAccountService(ledgerSvc, ledgerCfg.GenerationCost)
	adminService := services.NewAdminService(ledgerSvc)
	depositAddress := handlers.NewDepositAddressHandler(ledgerCfg.DepositAddress, ledgerCfg.DepositNetwork)

	stopCleanup := make(chan struct{})
	limiter := mW.NewRateLimiter(authCfg.RateLimitRPS, authCfg.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute, stopCleanup)
	requireAuth := mW.AuthMiddleware(sessions)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mW.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(mW.SecurityHeaders)
	r.Use(mW.Metrics(rec))
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := store.View(r.Context(), func(tx kv.Tx) error { return nil }); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	r.Handle("/metrics", rec.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Handler)

		services.Mount(r, authService, accountService, adminService, requireAuth)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/deposits/address", depositAddress.GetAddress)
			r.Get("/deposits/address.png", depositAddress.GetQRCode)
		})
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + viper.GetString("port"),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	close(stopCleanup)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// openStore selects the key-value backend from store.backend
func openStore(ctx context.Context, log zerolog.Logger) (kv.Store, error) {
	switch backend := viper.GetString("store.backend"); backend {
	case "memory":
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		return memory.New(), nil
	case "postgres":
		db, err := database.InitDB(ctx, database.GetConfig(), log)
		if err != nil {
			return nil, err
		}
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return kvpostgres.New(db, log), nil
	default:
		return nil, fmt.Errorf("unknown store.backend %q", backend)
	}
}
