package backend

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"releve/internal/config"
)

// Config holds what the factory needs to open each sink.
type Config struct {
	Sinks []SinkType

	// File sink
	OutputDir string

	// SQLite sink
	SQLiteDBPath string

	// AMQP sink
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Google Sheets sink
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// GCS sink
	GCSBucket string
	GCSPrefix string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	sinks := make([]SinkType, 0, len(appConfig.RenderSinks))
	for _, name := range appConfig.RenderSinks {
		st := SinkType(name)
		if !st.IsValid() {
			return Config{}, fmt.Errorf("invalid sink type in config: %s", name)
		}
		sinks = append(sinks, st)
	}

	return Config{
		Sinks: sinks,

		OutputDir:    appConfig.OutputDir,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPRoutingKey: appConfig.AMQPRoutingKey,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,

		GCSBucket: appConfig.GCSBucket,
		GCSPrefix: appConfig.GCSPrefix,
	}, nil
}

// Has reports whether st is among the requested sinks.
func (c Config) Has(st SinkType) bool {
	return slices.Contains(c.Sinks, st)
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Sinks) == 0 {
		return errors.New("at least one sink is required")
	}

	var errs []error
	seen := make(map[SinkType]bool, len(c.Sinks))
	for _, st := range c.Sinks {
		if !st.IsValid() {
			errs = append(errs, fmt.Errorf("invalid sink type: %s", st))
			continue
		}
		if seen[st] {
			errs = append(errs, fmt.Errorf("sink %s listed twice", st))
			continue
		}
		seen[st] = true

		switch st {
		case FileSink:
			if strings.TrimSpace(c.OutputDir) == "" {
				errs = append(errs, errors.New("output directory is required for file sink"))
			}
		case SQLiteSink:
			if strings.TrimSpace(c.SQLiteDBPath) == "" {
				errs = append(errs, errors.New("SQLite database path is required for sqlite sink"))
			}
		case SheetsSink:
			if c.GoogleSpreadsheetID == "" {
				errs = append(errs, errors.New("Google Spreadsheet ID is required for sheets sink"))
			}
			if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
				errs = append(errs, errors.New("either GoogleServiceAccountFile or GoogleServiceAccountJSON must be provided for sheets sink"))
			}
		case GCSSink:
			if c.GCSBucket == "" {
				errs = append(errs, errors.New("GCS bucket is required for gcs sink"))
			}
		case AMQPSink:
			if c.AMQPURL == "" {
				errs = append(errs, errors.New("AMQP URL is required for amqp sink"))
			}
			if c.AMQPExchange == "" || c.AMQPRoutingKey == "" {
				errs = append(errs, errors.New("AMQP exchange and routing key are required for amqp sink"))
			}
		case MemorySink:
			// nothing to check
		}
	}
	return errors.Join(errs...)
}

// GetSinkTypes returns all valid sink types
func GetSinkTypes() []SinkType {
	return []SinkType{FileSink, MemorySink, SQLiteSink, SheetsSink, GCSSink, AMQPSink}
}

// GetSinkTypeStrings returns all valid sink type strings
func GetSinkTypeStrings() []string {
	types := GetSinkTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
