package generator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"releve/internal/core"
	"releve/internal/log"
)

// State is the lifecycle of a Runner.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var ErrRunnerBusy = errors.New("runner is already running")

// StatementSink receives each finished statement and returns the references of
// whatever it produced (file paths, row ids, object names).
type StatementSink interface {
	RenderAll(ctx context.Context, st core.Statement) ([]string, error)
}

// Observer is told about every sample and every sequenced batch.
type Observer interface {
	ObserveSample(period core.Period, stats SampleStats)
	ObserveBatch(batch core.Batch)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) ObserveSample(core.Period, SampleStats) {}
func (NopObserver) ObserveBatch(core.Batch)                {}

type RunRequest struct {
	From      core.Period
	To        core.Period // inclusive
	PerPeriod int
	Opening   core.Money
}

func (r RunRequest) Validate() error {
	if err := r.From.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := r.To.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: end %s is before start %s", core.ErrInvalidPeriodRange, r.To, r.From)
	}
	if err := CheckCount(r.PerPeriod); err != nil {
		return fmt.Errorf("transactions per period: %w", err)
	}
	return nil
}

type PeriodResult struct {
	Period  core.Period
	Opening core.Money
	Closing core.Money
	Count   int
	Refs    []string
}

type RunResult struct {
	RunID     string
	Closing   core.Money
	Periods   []PeriodResult
	Artifacts []string
}

// Runner generates a contiguous range of periods, one after the other.
type Runner struct {
	sampler  *Sampler
	sink     StatementSink
	observer Observer
	logger   *log.Logger
	account  core.Account
	newRunID func() string
	state    atomic.Int32
}

type RunnerOption func(*Runner)

func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithAccount sets the bank and account number stamped on every statement.
func WithAccount(a core.Account) RunnerOption {
	return func(r *Runner) {
		r.account = a
	}
}

// WithRunID fixes the run identifier instead of generating a UUID.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.newRunID = func() string { return id }
	}
}

// NewRunner builds a runner. A nil sink is allowed; statements are then only returned
// through the observer and the result.
func NewRunner(sampler *Sampler, sink StatementSink, opts ...RunnerOption) *Runner {
	r := &Runner{
		sampler:  sampler,
		sink:     sink,
		observer: NopObserver{},
		logger:   log.Nop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent(log.ComponentGenerator)
	return r
}

func (r *Runner) State() State {
	return State(r.state.Load())
}

// Run generates every period in [req.From, req.To]. The closing balance of each
// period is the opening balance of the next. Any failure stops the run; periods
// already handed to the sink stay there.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if State(r.state.Swap(int32(StateRunning))) == StateRunning {
		return RunResult{}, ErrRunnerBusy
	}

	res, err := r.run(ctx, req)
	if err != nil {
		r.state.Store(int32(StateFailed))
		return res, err
	}
	r.state.Store(int32(StateDone))
	return res, nil
}

func (r *Runner) run(ctx context.Context, req RunRequest) (RunResult, error) {
	res := RunResult{RunID: r.newRunID(), Closing: req.Opening}
	logger := r.logger.With(log.FieldRunID, res.RunID)

	if err := req.Validate(); err != nil {
		return res, err
	}
	if err := r.sampler.Catalog().CheckCapacity(req.PerPeriod); err != nil {
		return res, err
	}

	total := core.MonthsBetween(req.From, req.To)
	res.Periods = make([]PeriodResult, 0, total)
	logger.Info("run started",
		log.FieldFrom, req.From.String(),
		log.FieldTo, req.To.String(),
		log.FieldCount, req.PerPeriod,
		log.FieldOpening, req.Opening.String())

	start := time.Now()
	current := req.Opening
	for p, i := req.From, 0; i < total; p, i = p.Next(), i+1 {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("period %s: %w", p, err)
		}

		pr, err := r.period(ctx, res.RunID, p, req.PerPeriod, current)
		if err != nil {
			logger.Error("period failed", log.NewFields().WithPeriod(p.String()).WithError(err).ToSlice()...)
			return res, fmt.Errorf("period %s: %w", p, err)
		}
		res.Periods = append(res.Periods, pr)
		res.Artifacts = append(res.Artifacts, pr.Refs...)
		res.Closing = pr.Closing
		current = pr.Closing

		logger.Debug("period generated",
			log.NewFields().WithPeriod(p.String()).WithBalances(pr.Opening.String(), pr.Closing.String()).ToSlice()...)
	}

	logger.Info("run finished",
		log.FieldCount, len(res.Periods),
		log.FieldClosing, res.Closing.String(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return res, nil
}

func (r *Runner) period(ctx context.Context, runID string, p core.Period, count int, opening core.Money) (PeriodResult, error) {
	txs, stats, err := r.sampler.Sample(p, count)
	r.observer.ObserveSample(p, stats)
	if err != nil {
		return PeriodResult{}, err
	}

	batch := Sequence(p, opening, txs)
	r.observer.ObserveBatch(batch)

	pr := PeriodResult{
		Period:  p,
		Opening: batch.Opening,
		Closing: batch.Closing,
		Count:   len(batch.Transactions),
	}
	if r.sink == nil {
		return pr, nil
	}

	refs, err := r.sink.RenderAll(ctx, core.Statement{RunID: runID, Account: r.account, Batch: batch})
	if err != nil {
		return PeriodResult{}, err
	}
	pr.Refs = refs
	return pr, nil
}
