// Package gcs archives rendered statements in a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"releve/internal/core"
	"releve/internal/log"
	"releve/internal/render/html"
)

const (
	Name        = "gcs"
	contentType = "text/html; charset=utf-8"
	uploadLimit = 2 * time.Minute
)

// ObjectStore is the slice of a storage client the archiver needs.
type ObjectStore interface {
	Put(ctx context.Context, bucket, object, contentType string, r io.Reader) error
	Get(ctx context.Context, bucket, object string) ([]byte, error)
}

// clientStore adapts *storage.Client to ObjectStore.
type clientStore struct {
	client *storage.Client
}

func (s clientStore) Put(ctx context.Context, bucket, object, ct string, r io.Reader) error {
	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = ct
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func (s clientStore) Get(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

type Archiver struct {
	store  ObjectStore
	closer io.Closer
	bucket string
	prefix string
	logger *log.Logger
}

// New archives through an existing client. The caller keeps ownership of client.
func New(client *storage.Client, bucket, prefix string) *Archiver {
	return NewWithStore(clientStore{client: client}, bucket, prefix)
}

func NewWithStore(store ObjectStore, bucket, prefix string) *Archiver {
	return &Archiver{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: log.Nop().WithComponent(log.ComponentGCS),
	}
}

// NewFromADC creates a storage client from Application Default Credentials. Close
// releases it.
func NewFromADC(ctx context.Context, bucket, prefix string) (*Archiver, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("missing GCS bucket")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	a := New(client, bucket, prefix)
	a.closer = client
	return a, nil
}

func (a *Archiver) SetLogger(l *log.Logger) {
	if l != nil {
		a.logger = l.WithComponent(log.ComponentGCS)
	}
}

func (a *Archiver) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archiver) Name() string { return Name }

// ObjectName returns "<prefix>/<statement file name>", or just the file name for an
// empty prefix.
func ObjectName(prefix string, st core.Statement) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return html.FileName(st)
	}
	return path.Join(prefix, html.FileName(st))
}

// Render uploads the HTML statement and returns its gs:// URI.
func (a *Archiver) Render(ctx context.Context, st core.Statement) (string, error) {
	var buf bytes.Buffer
	if err := html.Encode(&buf, st); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadLimit)
	defer cancel()

	object := ObjectName(a.prefix, st)
	if err := a.store.Put(ctx, a.bucket, object, contentType, &buf); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	uri := fmt.Sprintf("gs://%s/%s", a.bucket, object)
	a.logger.DebugContext(ctx, "statement archived", log.FieldPeriod, st.Batch.Period.String(), log.FieldRef, uri)
	return uri, nil
}

// Fetch downloads an archived statement by its gs:// URI.
func (a *Archiver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return a.store.Get(ctx, bucket, object)
}

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
