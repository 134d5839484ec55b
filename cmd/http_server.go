package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/auditlog"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
	"github.com/frahmantamala/tbcpay/internal/core/events"
	"github.com/frahmantamala/tbcpay/internal/gateway"
	"github.com/frahmantamala/tbcpay/internal/payment"
	paymentpostgres "github.com/frahmantamala/tbcpay/internal/payment/postgres"
	"github.com/frahmantamala/tbcpay/internal/transport"
	"github.com/frahmantamala/tbcpay/internal/transport/rest"
	"github.com/frahmantamala/tbcpay/internal/transport/swagger"
	"github.com/frahmantamala/tbcpay/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server handling payment starts, bank callbacks and reconciliation`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	// Table names come from configuration, applied before any store exists.
	transaction.SetTableName(config.TBC.TransactionsTable)
	auditlog.SetTableName(config.TBC.LogsTable)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	gatewayClient, err := gateway.NewClient(gateway.Config{
		MerchantURL:     config.TBC.MerchantURL,
		CertificatePath: config.TBC.Certificate.Path,
		CertificatePass: config.TBC.Certificate.Pass,
		Timeout:         config.TBC.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway client: %w", err)
	}

	bus := events.NewEventBus(log)
	bus.Subscribe(events.EventTypePaymentReconciled, logReconciliation(log))
	bus.Subscribe(events.EventTypePaymentDeclined, logReconciliation(log))

	ledger := payment.NewLedger(paymentpostgres.NewTransactionRepository(gormDB), log)
	audit := payment.NewAuditTrail(paymentpostgres.NewAuditLogRepository(gormDB), config.TBC.Debug, log)

	paymentService := payment.NewService(gatewayClient, ledger, audit, bus, payment.Config{
		AmountUnit:      config.TBC.AmountUnit,
		DefaultCurrency: config.TBC.DefaultCurrency,
		DefaultMessage:  config.TBC.DefaultMessage,
		DefaultLanguage: config.TBC.DefaultLanguage,
	}, log)

	paymentHandler := payment.NewHandler(transport.NewBaseHandler(log), paymentService, config.TBC.FormURL, log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, paymentHandler, log)

	// A broken served spec should surface at boot, not in the swagger UI.
	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		log.Warn("openapi spec validation failed", "error", err)
	}

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: log,
	}, nil
}

func logReconciliation(log *slog.Logger) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		log.Info("payment lifecycle event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
