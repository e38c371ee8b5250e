package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/primefinance/backend/docs"
	"github.com/primefinance/backend/internal/audit"
	"github.com/primefinance/backend/internal/config"
	"github.com/primefinance/backend/internal/database"
	"github.com/primefinance/backend/internal/events"
	"github.com/primefinance/backend/internal/events/kafka"
	"github.com/primefinance/backend/internal/handlers"
	"github.com/primefinance/backend/internal/ledger"
	"github.com/primefinance/backend/internal/logging"
	mW "github.com/primefinance/backend/internal/middleware"
	"github.com/primefinance/backend/internal/models"
	"github.com/primefinance/backend/internal/notify"
	"github.com/primefinance/backend/internal/scheduler"
	"github.com/primefinance/backend/internal/services"
	"github.com/primefinance/backend/internal/storage/memory"
	"github.com/primefinance/backend/internal/storage/postgres"
)

// @title Prime Finance Backend API
// @version 1.0
// @description Personal finance ledger: accounts, transfers, deposits, loans and investment plans
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
	viper.BindEnv("internal.api_key", "INTERNAL_API_KEY")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.SetDefault("log.level", "info")

	configErr := viper.ReadInConfig()

	log := logging.New(viper.GetString("log.level"))
	if configErr != nil {
		log.WithError(configErr).Info("Config file not found, using environment and defaults")
	} else {
		viper.OnConfigChange(func(e fsnotify.Event) {
			level := viper.GetString("log.level")
			if !logging.SetLevel(log, level) {
				log.WithField("level", level).Warn("Unknown log level in reloaded config, using info")
			}
			log.WithField("file", e.Name).Info("Config reloaded")
		})
		viper.WatchConfig()
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "Prime Finance Backend API"
	docs.SwaggerInfo.Description = "Personal finance ledger: accounts, transfers, deposits, loans and investment plans"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	ledgerCfg := config.LoadLedgerConfig()
	kafkaCfg := config.LoadKafkaConfig()
	smtpCfg := config.LoadSMTPConfig()

	ctx := context.Background()

	// Users live in Postgres regardless of where ledger books are stored.
	db, err := database.InitDB(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	store, plans := initLedgerStore(ctx, ledgerCfg, db, log)

	redisClient := database.InitRedis(ctx, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	authService := services.NewAuthService(db, redisClient, log)

	var sinks []events.Sink
	if kafkaCfg.Enabled() {
		publisher := kafka.NewPublisher(kafkaCfg.Brokers, kafkaCfg.Topic)
		defer publisher.Close()
		sinks = append(sinks, publisher)
		log.WithField("topic", kafkaCfg.Topic).Info("Publishing ledger events to Kafka")
	}
	if smtpCfg.Enabled() {
		sinks = append(sinks, notify.NewSender(smtpCfg, authService, log))
	}

	ldgr := ledger.New(store, plans,
		ledger.WithLogger(log),
		ledger.WithAuditor(audit.NewAuditLogger(log)),
		ledger.WithPublisher(events.NewFanout(sinks...)),
	)

	onboarding := services.NewOnboarding(ldgr, ledgerCfg.SeedAccounts, log)
	authService.OnAuthStateChange(onboarding.HandleAuthStateChange)

	ledgerService := services.NewLedgerService(ldgr, log)

	var voucherHandler *handlers.VoucherHandler
	if redisClient != nil {
		voucherService := services.NewVoucherService(redisClient, ldgr, ledgerCfg.VoucherTTL, ledgerCfg.VoucherCodeLength, log)
		voucherHandler = handlers.NewVoucherHandler(voucherService)
	}

	maturityJob := scheduler.NewMaturityJob(ldgr, log)
	if err := maturityJob.Schedule(ledgerCfg.MaturityCron); err != nil {
		log.WithError(err).Fatal("Failed to schedule investment maturity")
	}
	maturityJob.Start()
	defer maturityJob.Stop()

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Internal-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)
		r.Get("/plans", ledgerService.ListPlans)
		r.Post("/plans/{planId}/estimate", ledgerService.EstimatePlan)
		r.Post("/loans/schedule", ledgerService.LoanSchedule)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/me", authService.Me)

			r.Get("/accounts", ledgerService.ListAccounts)
			r.Post("/accounts", ledgerService.OpenAccount)
			r.Get("/summary", ledgerService.Summary)

			r.Post("/transfers", ledgerService.Transfer)
			r.Post("/deposits", ledgerService.Deposit)
			r.Get("/transactions", ledgerService.ListTransactions)

			r.Get("/loans", ledgerService.ListLoans)
			r.Post("/loans", ledgerService.ApplyForLoan)
			r.Post("/loans/{loanId}/approve", ledgerService.ApproveLoan)
			r.Post("/loans/{loanId}/reject", ledgerService.RejectLoan)

			r.Get("/investments", ledgerService.ListInvestments)
			r.Post("/investments", ledgerService.Invest)

			// Vouchers need Redis
			if voucherHandler != nil {
				r.Post("/vouchers", voucherHandler.IssueVoucher)
				r.Post("/vouchers/redeem", voucherHandler.RedeemVoucher)
			}
		})

		// Repayment flow callbacks
		r.Group(func(r chi.Router) {
			r.Use(mW.InternalAuth)

			r.Post("/internal/loans/{loanId}/repaid", ledgerService.MarkLoanRepaid)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// initLedgerStore picks the ledger store for STORAGE_DRIVER and loads the
// plan table, seeding the built-in plans on first start.
func initLedgerStore(ctx context.Context, cfg *config.LedgerConfig, db *sql.DB, log *logrus.Logger) (ledger.Store, []models.InvestmentPlan) {
	if cfg.StorageDriver == "memory" {
		log.Warn("Using in-memory ledger store, balances are lost on restart")
		return memory.NewStore(config.SeedPlans()), config.SeedPlans()
	}

	store := postgres.NewStore(db, log)
	if err := store.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("Failed to migrate ledger schema")
	}
	if err := store.SeedPlans(ctx, config.SeedPlans()); err != nil {
		log.WithError(err).Fatal("Failed to seed investment plans")
	}

	plans, err := store.ListPlans(ctx)
	if err != nil || len(plans) == 0 {
		log.WithError(err).Warn("Could not load investment plans, using built-in table")
		plans = config.SeedPlans()
	}
	return store, plans
}
