// Package worker checks published statement notifications against the statements
// the sqlite sink stored.
package worker

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"releve/internal/amqp"
	"releve/internal/core"
	"releve/internal/log"
	"releve/internal/storage"
)

// StatementLookup is implemented by storage.SQLiteRepository.
type StatementLookup interface {
	FindStatement(ctx context.Context, account, runID string, p core.Period) (storage.StatementRow, bool, error)
}

type Verdict string

const (
	VerdictMatch    Verdict = "match"
	VerdictMismatch Verdict = "mismatch"
	VerdictMissing  Verdict = "missing"
)

// AuditResult is the outcome for one message.
type AuditResult struct {
	RunID   string
	Account string
	Period  core.Period
	Verdict Verdict
	Detail  string
}

// AuditWorker compares each StatementMessage with the stored header of the same run,
// account and month.
type AuditWorker struct {
	store  StatementLookup
	logger *log.Logger

	mu      sync.Mutex
	counts  map[Verdict]int
	results []AuditResult
}

func NewAuditWorker(store StatementLookup, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Nop()
	}
	return &AuditWorker{
		store:  store,
		logger: logger.WithComponent(log.ComponentAMQP),
		counts: make(map[Verdict]int),
	}
}

// HandleStatementMessage audits one message. Lookup failures are returned so the
// message is requeued; a missing or different statement is recorded, not retried.
// Messages without a run id cannot be matched and are dropped.
func (w *AuditWorker) HandleStatementMessage(ctx context.Context, msg *amqp.StatementMessage) error {
	if msg.RunID == "" {
		return amqp.Permanent(fmt.Errorf("statement message %s without run id", msg.Period()))
	}
	p := msg.Period()
	w.logger.DebugContext(ctx, "Processing statement message",
		log.FieldRunID, msg.RunID,
		log.FieldPeriod, p.String())

	row, ok, err := w.store.FindStatement(ctx, msg.Account, msg.RunID, p)
	if err != nil {
		return fmt.Errorf("look up statement: %w", err)
	}

	res := AuditResult{RunID: msg.RunID, Account: msg.Account, Period: p, Verdict: VerdictMatch}
	switch {
	case !ok:
		res.Verdict = VerdictMissing
		res.Detail = "no stored statement for this run"
	case row.Opening.Cents != msg.OpeningCents:
		res.Verdict = VerdictMismatch
		res.Detail = fmt.Sprintf("opening %s stored, %s published", row.Opening, core.Cents(msg.OpeningCents))
	case row.Closing.Cents != msg.ClosingCents:
		res.Verdict = VerdictMismatch
		res.Detail = fmt.Sprintf("closing %s stored, %s published", row.Closing, core.Cents(msg.ClosingCents))
	case row.Count != msg.Count:
		res.Verdict = VerdictMismatch
		res.Detail = fmt.Sprintf("%d lines stored, %d published", row.Count, msg.Count)
	}
	w.record(res)

	fields := log.NewFields().
		WithRunID(msg.RunID).
		WithPeriod(p.String()).
		WithBalances(core.Cents(msg.OpeningCents).String(), core.Cents(msg.ClosingCents).String()).
		ToSlice()
	if res.Verdict == VerdictMatch {
		w.logger.InfoContext(ctx, "Statement verified", fields...)
	} else {
		w.logger.WarnContext(ctx, "Statement audit failed", append(fields, "verdict", string(res.Verdict), "detail", res.Detail)...)
	}
	return nil
}

func (w *AuditWorker) record(res AuditResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[res.Verdict]++
	w.results = append(w.results, res)
}

// Counts returns how many messages got each verdict.
func (w *AuditWorker) Counts() map[Verdict]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.counts)
}

// Results returns every audit outcome in arrival order.
func (w *AuditWorker) Results() []AuditResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]AuditResult(nil), w.results...)
}
