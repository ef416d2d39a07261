package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"releve/internal/core"
)

// Sink names accepted in RENDER_SINKS.
const (
	SinkFile   = "file"
	SinkMemory = "memory"
	SinkSQLite = "sqlite"
	SinkSheets = "sheets"
	SinkGCS    = "gcs"
	SinkAMQP   = "amqp"
)

var validSinks = []string{SinkFile, SinkMemory, SinkSQLite, SinkSheets, SinkGCS, SinkAMQP}

type Config struct {
	// Statement header
	BankName      string
	AccountNumber string

	// Generation
	CatalogFile          string
	StartPeriod          string
	EndPeriod            string
	TransactionsPerMonth int
	OpeningBalance       string
	Seed                 uint64
	MaxDraws             int

	// Rendering
	RenderSinks []string
	OutputDir   string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Google Cloud Storage
	GCSBucket string
	GCSPrefix string

	// Observability
	MetricsTextfile string
	LogLevel        string
	LogFormat       string
}

func Load() *Config {
	return &Config{
		BankName:      getEnv("BANK_NAME", "Banque Horizon"),
		AccountNumber: getEnv("ACCOUNT_NUMBER", "FR76 1234 5678 9012"),

		CatalogFile:          getEnv("CATALOG_FILE", ""),
		StartPeriod:          getEnv("START_PERIOD", "2024-01"),
		EndPeriod:            getEnv("END_PERIOD", "2024-12"),
		TransactionsPerMonth: getEnvInt("TRANSACTIONS_PER_MONTH", 40),
		OpeningBalance:       getEnv("OPENING_BALANCE", "0"),
		Seed:                 getEnvUint("SEED", 0),
		MaxDraws:             getEnvInt("MAX_DRAWS", 0),

		RenderSinks: SplitList(getEnv("RENDER_SINKS", SinkFile)),
		OutputDir:   getEnv("OUTPUT_DIR", "output"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/releve.db"),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "releve"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "statements"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Statements"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		GCSBucket: getEnv("GCS_BUCKET", ""),
		GCSPrefix: getEnv("GCS_PREFIX", "statements"),

		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// HasSink reports whether name is among the configured sinks.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.RenderSinks, name)
}

// Periods parses the configured start and end periods.
func (c *Config) Periods() (from, to core.Period, err error) {
	if from, err = core.ParsePeriod(c.StartPeriod); err != nil {
		return from, to, fmt.Errorf("start period: %w", err)
	}
	if to, err = core.ParsePeriod(c.EndPeriod); err != nil {
		return from, to, fmt.Errorf("end period: %w", err)
	}
	return from, to, nil
}

// Opening parses the opening balance.
func (c *Config) Opening() (core.Money, error) {
	return core.ParseMoney(c.OpeningBalance)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.BankName) == "" {
		errors = append(errors, "bank name cannot be empty")
	}
	if strings.TrimSpace(c.AccountNumber) == "" {
		errors = append(errors, "account number cannot be empty")
	}

	// Validate period range
	from, err := core.ParsePeriod(c.StartPeriod)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid start period '%s': must be YYYY-MM", c.StartPeriod))
	}
	to, err2 := core.ParsePeriod(c.EndPeriod)
	if err2 != nil {
		errors = append(errors, fmt.Sprintf("invalid end period '%s': must be YYYY-MM", c.EndPeriod))
	}
	if err == nil && err2 == nil && to.Before(from) {
		errors = append(errors, fmt.Sprintf("invalid period range: end %s is before start %s", c.EndPeriod, c.StartPeriod))
	}

	if c.TransactionsPerMonth < 0 || c.TransactionsPerMonth > core.MaxTransactionsPerPeriod {
		errors = append(errors, fmt.Sprintf("invalid transactions per month %d: must be between 0 and %d", c.TransactionsPerMonth, core.MaxTransactionsPerPeriod))
	}
	if c.MaxDraws < 0 {
		errors = append(errors, fmt.Sprintf("invalid max draws %d: must not be negative", c.MaxDraws))
	}
	if _, err := core.ParseMoney(c.OpeningBalance); err != nil {
		errors = append(errors, fmt.Sprintf("invalid opening balance '%s': must be a decimal amount", c.OpeningBalance))
	}

	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("catalog file does not exist: %s", c.CatalogFile))
		}
	}

	// Validate sinks
	if len(c.RenderSinks) == 0 {
		errors = append(errors, fmt.Sprintf("no render sinks configured: must be some of %v", validSinks))
	}
	for _, s := range c.RenderSinks {
		if !slices.Contains(validSinks, s) {
			errors = append(errors, fmt.Sprintf("invalid render sink '%s': must be one of %v", s, validSinks))
		}
	}

	if c.HasSink(SinkFile) && strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty when using file sink")
	}

	// Validate SQLite configuration if sink is sqlite
	if c.HasSink(SinkSQLite) {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite sink")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP configuration if sink is amqp
	if c.HasSink(SinkAMQP) {
		if c.AMQPURL == "" {
			errors = append(errors, "AMQP URL is required when using amqp sink")
		} else if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when using amqp sink")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when using amqp sink")
		}
	}

	// Validate Google Sheets configuration if sink is sheets
	if c.HasSink(SinkSheets) {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets sink")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets sink")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets sink")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.HasSink(SinkGCS) && c.GCSBucket == "" {
		errors = append(errors, "GCS bucket is required when using gcs sink")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// SplitList splits a comma separated list, trimming blanks and dropping duplicates.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if u, err := strconv.ParseUint(value, 10, 64); err == nil {
			return u
		}
	}
	return defaultValue
}
