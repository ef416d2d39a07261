package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"releve/internal/catalog"
	"releve/internal/core"
)

type recordingSink struct {
	statements []core.Statement
	failAt     int // 1-based statement index that fails, 0 = never
}

func (s *recordingSink) RenderAll(_ context.Context, st core.Statement) ([]string, error) {
	s.statements = append(s.statements, st)
	if s.failAt == len(s.statements) {
		return nil, errors.New("disk full")
	}
	return []string{fmt.Sprintf("ref-%s", st.Batch.Period.Key())}, nil
}

type recordingObserver struct {
	samples []SampleStats
	batches []core.Batch
}

func (o *recordingObserver) ObserveSample(_ core.Period, s SampleStats) {
	o.samples = append(o.samples, s)
}
func (o *recordingObserver) ObserveBatch(b core.Batch) { o.batches = append(o.batches, b) }

func TestRunChainsPeriods(t *testing.T) {
	sink := &recordingSink{}
	obs := &recordingObserver{}
	account := core.Account{Bank: "Banque Horizon", Number: "FR76 1234 5678 9012"}
	r := NewRunner(NewSampler(catalog.Default(), NewRand(3)), sink,
		WithObserver(obs), WithAccount(account), WithRunID("run-1"))

	res, err := r.Run(context.Background(), RunRequest{
		From:      core.NewPeriod(2024, 11),
		To:        core.NewPeriod(2025, 2),
		PerPeriod: 40,
		Opening:   core.Cents(0),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.State() != StateDone {
		t.Errorf("state = %v", r.State())
	}
	if res.RunID != "run-1" || len(res.Periods) != 4 || len(sink.statements) != 4 || len(obs.batches) != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}

	wantPeriods := []string{"11/2024", "12/2024", "01/2025", "02/2025"}
	for i, pr := range res.Periods {
		if pr.Period.String() != wantPeriods[i] {
			t.Errorf("period %d = %s", i, pr.Period)
		}
		if pr.Count != 40 {
			t.Errorf("period %d count = %d", i, pr.Count)
		}
		if i > 0 && pr.Opening != res.Periods[i-1].Closing {
			t.Errorf("period %d opening %s != previous closing %s", i, pr.Opening, res.Periods[i-1].Closing)
		}
		st := sink.statements[i]
		if st.RunID != "run-1" || st.Account != account || st.Batch.Closing != pr.Closing {
			t.Errorf("statement %d mismatch", i)
		}
	}
	if res.Closing != res.Periods[3].Closing {
		t.Error("run closing is not the last period's closing")
	}
	if strings.Join(res.Artifacts, ",") != "ref-2024-11,ref-2024-12,ref-2025-01,ref-2025-02" {
		t.Errorf("artifacts = %v", res.Artifacts)
	}
}

func TestRunFixedScenario(t *testing.T) {
	c := mustCatalog(t, fixed("A", 10, core.Credit, 2), fixed("B", 5, core.Debit, 3))
	sink := &recordingSink{}
	r := NewRunner(NewSampler(c, NewRand(11)), sink)

	res, err := r.Run(context.Background(), RunRequest{
		From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 1), PerPeriod: 5, Opening: core.Cents(10000),
	})
	if err != nil {
		t.Fatal(err)
	}
	batch := sink.statements[0].Batch
	counts := batch.Counts()
	if counts["A"] != 2 || counts["B"] != 3 {
		t.Errorf("counts = %v", counts)
	}
	for i := 1; i < len(batch.Transactions); i++ {
		if batch.Transactions[i].Date.Before(batch.Transactions[i-1].Date.Time) {
			t.Fatal("batch is not sorted by date")
		}
	}
	if res.Closing.Cents != 10500 {
		t.Errorf("closing = %s, want 105.00", res.Closing)
	}
}

func TestRunGeneratesRunID(t *testing.T) {
	r := NewRunner(NewSampler(catalog.Default(), NewRand(1)), nil)
	req := RunRequest{From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 1)}
	a, err := r.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := r.Run(context.Background(), req)
	if len(a.RunID) != 36 || a.RunID == b.RunID {
		t.Fatalf("run ids %q and %q", a.RunID, b.RunID)
	}
}

func TestRunInsufficientCapacity(t *testing.T) {
	c := mustCatalog(t, fixed("A", 10, core.Credit, 1))
	sink := &recordingSink{}
	obs := &recordingObserver{}
	r := NewRunner(NewSampler(c, &countingRand{}), sink, WithObserver(obs))

	_, err := r.Run(context.Background(), RunRequest{
		From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 12), PerPeriod: 2,
	})
	if !errors.Is(err, core.ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
	if len(sink.statements) != 0 || len(obs.samples) != 0 {
		t.Fatal("a batch was produced")
	}
	if r.State() != StateFailed {
		t.Errorf("state = %v", r.State())
	}
}

func TestRunZeroTarget(t *testing.T) {
	sink := &recordingSink{}
	r := NewRunner(NewSampler(catalog.Default(), NewRand(5)), sink)
	res, err := r.Run(context.Background(), RunRequest{
		From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 3), PerPeriod: 0, Opening: core.Cents(777),
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, st := range sink.statements {
		if len(st.Batch.Transactions) != 0 || st.Batch.Closing.Cents != 777 {
			t.Fatalf("period %s not empty: %+v", st.Batch.Period, st.Batch)
		}
	}
	if res.Closing.Cents != 777 {
		t.Errorf("closing = %s", res.Closing)
	}
}

func TestRunRejectsReversedRange(t *testing.T) {
	r := NewRunner(NewSampler(catalog.Default(), NewRand(1)), nil)
	_, err := r.Run(context.Background(), RunRequest{From: core.NewPeriod(2024, 5), To: core.NewPeriod(2024, 4), PerPeriod: 1})
	if !errors.Is(err, core.ErrInvalidPeriodRange) {
		t.Fatalf("expected ErrInvalidPeriodRange, got %v", err)
	}
	_, err = r.Run(context.Background(), RunRequest{From: core.NewPeriod(2024, 0), To: core.NewPeriod(2024, 4)})
	if !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestRunRejectsOutOfRangeCount(t *testing.T) {
	for _, count := range []int{-3, core.MaxTransactionsPerPeriod + 1, math.MaxInt} {
		sink := &recordingSink{}
		rng := &countingRand{}
		r := NewRunner(NewSampler(catalog.Default(), rng), sink)
		_, err := r.Run(context.Background(), RunRequest{
			From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 2), PerPeriod: count,
		})
		if !errors.Is(err, core.ErrInvalidCount) {
			t.Fatalf("count %d: expected ErrInvalidCount, got %v", count, err)
		}
		if rng.calls != 0 || len(sink.statements) != 0 {
			t.Fatalf("count %d: run produced output", count)
		}
	}
}

func TestRunSinkFailureNamesPeriod(t *testing.T) {
	sink := &recordingSink{failAt: 2}
	r := NewRunner(NewSampler(catalog.Default(), NewRand(8)), sink)
	res, err := r.Run(context.Background(), RunRequest{
		From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 6), PerPeriod: 10,
	})
	if err == nil || !strings.Contains(err.Error(), "02/2024") || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Periods) != 1 || len(sink.statements) != 2 {
		t.Fatalf("run did not stop at the failing period: %d periods, %d statements", len(res.Periods), len(sink.statements))
	}
	if r.State() != StateFailed {
		t.Errorf("state = %v", r.State())
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &recordingSink{}
	r := NewRunner(NewSampler(catalog.Default(), NewRand(1)), sink)
	_, err := r.Run(ctx, RunRequest{From: core.NewPeriod(2024, 1), To: core.NewPeriod(2024, 2), PerPeriod: 1})
	if !errors.Is(err, context.Canceled) || len(sink.statements) != 0 {
		t.Fatalf("expected cancellation before first period, got %v (%d statements)", err, len(sink.statements))
	}
}

func TestStateString(t *testing.T) {
	if StateIdle.String() != "idle" || StateDone.String() != "done" || State(9).String() != "state(9)" {
		t.Fatal("unexpected state names")
	}
}
