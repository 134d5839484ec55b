package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/tbcpay/internal"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/auditlog"
	"github.com/frahmantamala/tbcpay/internal/core/datamodel/transaction"
	"github.com/frahmantamala/tbcpay/internal/gateway"
	"github.com/frahmantamala/tbcpay/internal/payment"
	paymentpostgres "github.com/frahmantamala/tbcpay/internal/payment/postgres"
	"github.com/frahmantamala/tbcpay/pkg/logger"
)

// Close-day settles the day's transactions with the acquiring bank. Run once
// per business day by an operator or a scheduler.
var closeDayCmd = &cobra.Command{
	Use:   "close-day",
	Short: "Close TBC's business day",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCloseDay(); err != nil {
			fmt.Fprintf(os.Stderr, "close day failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Business day closed successfully")
	},
}

func runCloseDay() error {
	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	transaction.SetTableName(cfg.TBC.TransactionsTable)
	auditlog.SetTableName(cfg.TBC.LogsTable)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open gorm over db connection: %w", err)
	}

	gatewayClient, err := gateway.NewClient(gateway.Config{
		MerchantURL:     cfg.TBC.MerchantURL,
		CertificatePath: cfg.TBC.Certificate.Path,
		CertificatePass: cfg.TBC.Certificate.Pass,
		Timeout:         cfg.TBC.Timeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to build gateway client: %w", err)
	}

	ledger := payment.NewLedger(paymentpostgres.NewTransactionRepository(gormDB), log)
	audit := payment.NewAuditTrail(paymentpostgres.NewAuditLogRepository(gormDB), cfg.TBC.Debug, log)

	svc := payment.NewService(gatewayClient, ledger, audit, nil, payment.Config{
		AmountUnit:      cfg.TBC.AmountUnit,
		DefaultCurrency: cfg.TBC.DefaultCurrency,
		DefaultMessage:  cfg.TBC.DefaultMessage,
		DefaultLanguage: cfg.TBC.DefaultLanguage,
	}, log)

	ctx, cancel := internal.WithTimeout(context.Background(), cfg.TBC.Timeout)
	defer cancel()

	// The command runs on the merchant host itself.
	result, err := svc.Close(ctx, "127.0.0.1")
	if err != nil {
		return err
	}

	log.Info("business day closed", "result", map[string]string(result))
	return nil
}
