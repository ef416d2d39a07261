package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"releve/internal/amqp"
	"releve/internal/archive/gcs"
	"releve/internal/log"
	"releve/internal/render"
	"releve/internal/render/html"
	"releve/internal/render/memory"
	gsheet "releve/internal/sheets/google"
	"releve/internal/storage"
)

// sink is one built renderer plus whatever must be closed after the run.
type sink struct {
	renderer render.Renderer
	closer   io.Closer
}

type builder func(ctx context.Context, config Config) (sink, error)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger   *log.Logger
	builders map[SinkType]builder
}

// NewFactory creates a new sink factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Nop()
	}
	f := &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
	f.builders = map[SinkType]builder{
		FileSink:   f.createFileSink,
		MemorySink: f.createMemorySink,
		SQLiteSink: f.createSQLiteSink,
		SheetsSink: f.createSheetsSink,
		GCSSink:    f.createGCSSink,
		AMQPSink:   f.createAMQPSink,
	}
	return f
}

// CreateSinks implements Factory.CreateSinks. Sinks are registered in the order
// config lists them. When one fails, the ones already opened are closed.
func (f *DefaultFactory) CreateSinks(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sink configuration: %w", err)
	}

	fanout := render.NewFanout(f.logger)
	res := &Result{Fanout: fanout}
	var closers []io.Closer

	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for _, st := range config.Sinks {
		build, ok := f.builders[st]
		if !ok {
			cleanup()
			return nil, fmt.Errorf("unsupported sink type: %s", st)
		}
		s, err := build(ctx, config)
		if err != nil {
			if cerr := cleanup(); cerr != nil {
				f.logger.Warn("Cleanup after failed sink creation", log.FieldError, cerr)
			}
			return nil, fmt.Errorf("%s sink: %w", st, err)
		}
		if s.closer != nil {
			closers = append(closers, s.closer)
		}
		if repo, ok := s.renderer.(*storage.SQLiteRepository); ok {
			res.Repository = repo
		}
		fanout.Add(s.renderer)
		f.logger.Info("Initialized sink", log.FieldSink, st.String())
	}

	res.Cleanup = cleanup
	return res, nil
}

func (f *DefaultFactory) createFileSink(_ context.Context, config Config) (sink, error) {
	r, err := html.NewFileRenderer(config.OutputDir)
	if err != nil {
		return sink{}, err
	}
	f.logger.Debug("File sink ready", log.FieldPath, config.OutputDir)
	return sink{renderer: r}, nil
}

func (f *DefaultFactory) createMemorySink(context.Context, Config) (sink, error) {
	return sink{renderer: memory.New()}, nil
}

func (f *DefaultFactory) createSQLiteSink(_ context.Context, config Config) (sink, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return sink{}, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	repo.SetLogger(f.logger)
	f.logger.Debug("SQLite sink ready", log.FieldPath, config.SQLiteDBPath)
	return sink{renderer: repo, closer: repo}, nil
}

func (f *DefaultFactory) createSheetsSink(ctx context.Context, config Config) (sink, error) {
	cli, err := gsheet.NewFromOptions(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return sink{}, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	cli.SetLogger(f.logger)
	return sink{renderer: cli}, nil
}

func (f *DefaultFactory) createGCSSink(ctx context.Context, config Config) (sink, error) {
	a, err := gcs.NewFromADC(ctx, config.GCSBucket, config.GCSPrefix)
	if err != nil {
		return sink{}, fmt.Errorf("failed to initialize GCS archiver: %w", err)
	}
	a.SetLogger(f.logger)
	return sink{renderer: a, closer: a}, nil
}

func (f *DefaultFactory) createAMQPSink(_ context.Context, config Config) (sink, error) {
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		return sink{}, fmt.Errorf("failed to initialize AMQP client: %w", err)
	}
	client.SetLogger(f.logger)
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return sink{renderer: amqp.NewNotifier(client), closer: client}, nil
}
