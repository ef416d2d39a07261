package backend

import (
	"context"

	"releve/internal/render"
	"releve/internal/storage"
)

// CleanupFunc releases whatever the sinks hold open.
type CleanupFunc func() error

// Result contains the assembled sinks and their cleanup function.
type Result struct {
	Fanout *render.Fanout

	// Repository is set when the sqlite sink was requested.
	Repository *storage.SQLiteRepository

	Cleanup CleanupFunc
}

// Factory creates rendering sinks based on configuration
type Factory interface {
	CreateSinks(ctx context.Context, config Config) (*Result, error)
}

// SinkType names one rendering destination.
type SinkType string

const (
	FileSink   SinkType = "file"
	MemorySink SinkType = "memory"
	SQLiteSink SinkType = "sqlite"
	SheetsSink SinkType = "sheets"
	GCSSink    SinkType = "gcs"
	AMQPSink   SinkType = "amqp"
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is known
func (st SinkType) IsValid() bool {
	switch st {
	case FileSink, MemorySink, SQLiteSink, SheetsSink, GCSSink, AMQPSink:
		return true
	default:
		return false
	}
}
