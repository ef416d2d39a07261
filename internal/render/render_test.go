package render

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"releve/internal/core"
)

type stubRenderer struct {
	name  string
	ref   string
	err   error
	delay time.Duration
	calls atomic.Int32
	done  atomic.Bool
}

func (s *stubRenderer) Name() string { return s.name }

func (s *stubRenderer) Render(ctx context.Context, _ core.Statement) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	s.done.Store(true)
	return s.ref, s.err
}

func stmt() core.Statement {
	return core.Statement{RunID: "r", Batch: core.Batch{Period: core.NewPeriod(2024, 4)}}
}

func TestFanout_RefsInRegistrationOrder(t *testing.T) {
	slow := &stubRenderer{name: "slow", ref: "a", delay: 20 * time.Millisecond}
	fast := &stubRenderer{name: "fast", ref: "b"}
	silent := &stubRenderer{name: "silent"}
	f := NewFanout(nil, slow, silent, fast)

	refs, err := f.RenderAll(context.Background(), stmt())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(refs, ",") != "a,b" {
		t.Fatalf("refs = %v", refs)
	}
	if strings.Join(f.Names(), ",") != "slow,silent,fast" || f.Len() != 3 {
		t.Fatalf("names = %v", f.Names())
	}
}

func TestFanout_ErrorNamesSinkAndCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	slow := &stubRenderer{name: "slow", ref: "a", delay: 5 * time.Second}
	bad := &stubRenderer{name: "sqlite", err: boom}
	f := NewFanout(nil, slow)
	f.Add(bad)

	start := time.Now()
	refs, err := f.RenderAll(context.Background(), stmt())
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "sqlite sink") {
		t.Fatalf("unexpected error: %v", err)
	}
	if refs != nil {
		t.Fatalf("refs = %v", refs)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("slow renderer was not cancelled")
	}
}

func TestFanout_Empty(t *testing.T) {
	refs, err := NewFanout(nil).RenderAll(context.Background(), stmt())
	if err != nil || len(refs) != 0 {
		t.Fatalf("RenderAll() = %v, %v", refs, err)
	}
}

// notifyRenderer runs in StageNotify and records whether store had finished first.
type notifyRenderer struct {
	stubRenderer
	store       *stubRenderer
	storeDone   bool
	storeCalled bool
}

func (n *notifyRenderer) Stage() Stage { return StageNotify }

func (n *notifyRenderer) Render(ctx context.Context, st core.Statement) (string, error) {
	n.storeCalled = n.store.calls.Load() == 1
	n.storeDone = n.store.done.Load()
	return n.stubRenderer.Render(ctx, st)
}

func TestFanout_NotifyStageRunsAfterStore(t *testing.T) {
	store := &stubRenderer{name: "sqlite", ref: "sqlite:statements/1", delay: 30 * time.Millisecond}
	notify := &notifyRenderer{stubRenderer: stubRenderer{name: "amqp", ref: "amqp:x"}, store: store}
	// Registered first, still rendered last.
	f := NewFanout(nil, notify, store)

	refs, err := f.RenderAll(context.Background(), stmt())
	if err != nil {
		t.Fatal(err)
	}
	if !notify.storeCalled || !notify.storeDone {
		t.Fatal("notification ran before the store sink finished")
	}
	if strings.Join(refs, ",") != "amqp:x,sqlite:statements/1" {
		t.Fatalf("refs should keep registration order, got %v", refs)
	}
}

func TestFanout_StoreFailureSkipsNotify(t *testing.T) {
	boom := errors.New("disk full")
	store := &stubRenderer{name: "sqlite", err: boom}
	notify := &notifyRenderer{stubRenderer: stubRenderer{name: "amqp", ref: "amqp:x"}, store: store}

	_, err := NewFanout(nil, store, notify).RenderAll(context.Background(), stmt())
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if notify.calls.Load() != 0 {
		t.Fatal("notification sent for a statement that was not stored")
	}
}
