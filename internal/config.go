package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	TBC           TBCConfig           `mapstructure:"tbc"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TBCConfig mirrors the merchant-side knobs of the ECOMM gateway: the
// mutual-TLS identity, the two bank endpoints, the minor-unit multiplier and
// the debug audit switch.
type TBCConfig struct {
	Debug             bool              `mapstructure:"debug"`
	TransactionsTable string            `mapstructure:"transactions_table"`
	LogsTable         string            `mapstructure:"logs_table"`
	AmountUnit        int64             `mapstructure:"amount_unit"`
	Certificate       CertificateConfig `mapstructure:"certificate"`
	MerchantURL       string            `mapstructure:"merchant_url"`
	FormURL           string            `mapstructure:"form_url"`
	DefaultCurrency   int               `mapstructure:"default_currency_code"`
	DefaultMessage    string            `mapstructure:"default_message"`
	DefaultLanguage   string            `mapstructure:"default_language"`
	Timeout           time.Duration     `mapstructure:"timeout"`
}

type CertificateConfig struct {
	Path string `mapstructure:"path"`
	Pass string `mapstructure:"pass"`
}

const (
	DefaultMerchantURL = "https://securepay.ufc.ge:18443/ecomm2/MerchantHandler"
	DefaultFormURL     = "https://securepay.ufc.ge/ecomm2/ClientHandler"

	// GEL, ISO 4217 numeric.
	DefaultCurrencyCode = 981
)

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration purely from environment
// variables for containerized deployments.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Source:          getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		TBC: TBCConfig{
			Debug:             getEnvAsBool("TBCPAY_DEBUG", false),
			TransactionsTable: getEnv("TBCPAY_TRANSACTIONS_TABLE", "tbc_transactions"),
			LogsTable:         getEnv("TBCPAY_LOGS_TABLE", "tbc_logs"),
			AmountUnit:        int64(getEnvAsInt("TBCPAY_AMOUNT_UNIT", 1)),
			Certificate: CertificateConfig{
				Path: getEnv("TBCPAY_CERTIFICATE_PATH", ""),
				Pass: getEnv("TBCPAY_CERTIFICATE_PASS", ""),
			},
			MerchantURL:     getEnv("TBCPAY_MERCHANT_URL", DefaultMerchantURL),
			FormURL:         getEnv("TBCPAY_FORM_URL", DefaultFormURL),
			DefaultCurrency: getEnvAsInt("TBCPAY_DEFAULT_CURRENCY", DefaultCurrencyCode),
			DefaultMessage:  getEnv("TBCPAY_DEFAULT_MESSAGE", "Website payment"),
			DefaultLanguage: getEnv("TBCPAY_DEFAULT_LANGUAGE", "ka"),
			Timeout:         30 * time.Second,
		},
	}
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.TBC.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("tbc config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *TBCConfig) Validate() error {
	if c.AmountUnit <= 0 {
		return errors.New("amount_unit must be a positive integer")
	}
	if c.MerchantURL == "" {
		return errors.New("merchant_url is required")
	}
	if _, err := url.Parse(c.MerchantURL); err != nil {
		return fmt.Errorf("invalid merchant_url: %w", err)
	}
	if c.FormURL == "" {
		return errors.New("form_url is required")
	}
	if c.DefaultCurrency <= 0 {
		return errors.New("default_currency_code is required")
	}
	return nil
}
