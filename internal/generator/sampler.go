// Package generator turns a category catalog into chained monthly statements:
// the sampler draws a constrained random set of transactions, the sequencer
// orders them and computes running balances, and the runner walks a range of
// periods carrying each closing balance into the next opening one.
package generator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"releve/internal/catalog"
	"releve/internal/core"
)

// drawsPerSlot scales the default draw budget: len(catalog) * (count+1) * drawsPerSlot.
const drawsPerSlot = 64

// SampleStats reports how much work one Sample call did.
type SampleStats struct {
	Draws    int // total category draws, accepted and rejected
	Rejected int // draws that hit an exhausted category
}

type Sampler struct {
	catalog  *catalog.Catalog
	rng      Rand
	maxDraws int
}

type SamplerOption func(*Sampler)

// WithMaxDraws caps the number of category draws per Sample call. Zero or less keeps
// the derived budget.
func WithMaxDraws(n int) SamplerOption {
	return func(s *Sampler) {
		if n > 0 {
			s.maxDraws = n
		}
	}
}

func NewSampler(cat *catalog.Catalog, rng Rand, opts ...SamplerOption) *Sampler {
	s := &Sampler{catalog: cat, rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the sampler draws from.
func (s *Sampler) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Sampler) budget(count int) int {
	if s.maxDraws > 0 {
		return s.maxDraws
	}
	if count >= math.MaxInt/drawsPerSlot {
		return math.MaxInt
	}
	perCategory := drawsPerSlot * (count + 1)
	if s.catalog.Len() > math.MaxInt/perCategory {
		return math.MaxInt
	}
	return perCategory * s.catalog.Len()
}

// CheckCount reports ErrInvalidCount for a negative count or one above
// core.MaxTransactionsPerPeriod.
func CheckCount(count int) error {
	if count < 0 || count > core.MaxTransactionsPerPeriod {
		return fmt.Errorf("%w: %d must be between 0 and %d", core.ErrInvalidCount, count, core.MaxTransactionsPerPeriod)
	}
	return nil
}

// Sample draws exactly count transactions for period.
//
// Categories are picked uniformly over the whole catalog; a pick whose occurrence
// cap is already reached is rejected and redrawn. The result is unordered and has
// no balances. ErrInsufficientCapacity is returned before any draw when the caps
// cannot add up to count; ErrInvalidCount when count is out of range.
func (s *Sampler) Sample(period core.Period, count int) ([]core.Transaction, SampleStats, error) {
	var stats SampleStats
	if err := period.Validate(); err != nil {
		return nil, stats, err
	}
	if err := CheckCount(count); err != nil {
		return nil, stats, err
	}
	if err := s.catalog.CheckCapacity(count); err != nil {
		return nil, stats, err
	}

	// Pointers in the result share this per-call copy, never the catalog itself.
	cats := s.catalog.Categories()
	counters := make([]int, len(cats))
	out := make([]core.Transaction, 0, count)
	limit := s.budget(count)

	for len(out) < count {
		if stats.Draws >= limit {
			return nil, stats, fmt.Errorf("%w: %d draws for %d/%d transactions",
				core.ErrDrawLimitExceeded, stats.Draws, len(out), count)
		}
		stats.Draws++

		i := s.rng.IntN(len(cats))
		cat := &cats[i]
		if counters[i] >= cat.MaxPerPeriod {
			stats.Rejected++
			continue
		}

		day := 1 + s.rng.IntN(core.MaxDay)
		amount := s.magnitude(cat)
		amount.Cents *= cat.Direction.Sign()

		out = append(out, core.Transaction{
			Date:     period.Date(day),
			Category: cat,
			Amount:   amount,
		})
		counters[i]++
	}
	return out, stats, nil
}

// magnitude draws a value uniformly in [Min, Max] and rounds it to the cent.
func (s *Sampler) magnitude(cat *core.Category) core.Money {
	lo, hi := cat.Min.Decimal(), cat.Max.Decimal()
	v := lo.Add(hi.Sub(lo).Mul(decimal.NewFromFloat(s.rng.Float64())))
	m := core.MoneyFromDecimal(v)
	if m.Cents > cat.Max.Cents {
		m = cat.Max
	}
	return m
}
