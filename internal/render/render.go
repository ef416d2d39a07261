// Package render delivers finished statements to one or more sinks.
package render

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"releve/internal/core"
	"releve/internal/log"
)

// Renderer writes one statement somewhere and returns a reference to the result
// (a path, a row id, an object URL).
type Renderer interface {
	Name() string
	Render(ctx context.Context, st core.Statement) (ref string, err error)
}

// Fanout renders a statement into every renderer, concurrently within each Stage.
type Fanout struct {
	renderers []Renderer
	logger    *log.Logger
}

func NewFanout(logger *log.Logger, renderers ...Renderer) *Fanout {
	if logger == nil {
		logger = log.Nop()
	}
	return &Fanout{
		renderers: renderers,
		logger:    logger.WithComponent(log.ComponentRender),
	}
}

// Add appends a renderer. Not safe to call while RenderAll runs.
func (f *Fanout) Add(r Renderer) {
	f.renderers = append(f.renderers, r)
}

func (f *Fanout) Len() int {
	return len(f.renderers)
}

// Names lists the renderers in registration order.
func (f *Fanout) Names() []string {
	names := make([]string, len(f.renderers))
	for i, r := range f.renderers {
		names[i] = r.Name()
	}
	return names
}

// Stage groups renderers. Every renderer of a stage finishes before the next stage
// starts; renderers within a stage run concurrently.
type Stage int

const (
	StageStore Stage = iota
	StageNotify
)

// Staged is implemented by renderers that do not belong to StageStore, such as
// notifications pointing at statements other sinks store.
type Staged interface {
	Stage() Stage
}

func stageOf(r Renderer) Stage {
	if s, ok := r.(Staged); ok {
		return s.Stage()
	}
	return StageStore
}

// RenderAll renders st with every renderer, stage by stage, and returns their
// non-empty references in registration order. The first failure cancels the rest of
// its stage, skips later stages and is returned with the sink name.
func (f *Fanout) RenderAll(ctx context.Context, st core.Statement) ([]string, error) {
	refs := make([]string, len(f.renderers))

	stages := make([]Stage, 0, 2)
	for _, r := range f.renderers {
		if s := stageOf(r); !slices.Contains(stages, s) {
			stages = append(stages, s)
		}
	}
	slices.Sort(stages)

	for _, stage := range stages {
		if err := f.renderStage(ctx, stage, st, refs); err != nil {
			return nil, err
		}
	}

	out := refs[:0]
	for _, ref := range refs {
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (f *Fanout) renderStage(ctx context.Context, stage Stage, st core.Statement, refs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range f.renderers {
		if stageOf(r) != stage {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			ref, err := r.Render(gctx, st)
			if err != nil {
				return fmt.Errorf("%s sink: %w", r.Name(), err)
			}
			refs[i] = ref
			fields := log.NewFields().
				WithRunID(st.RunID).
				WithPeriod(st.Batch.Period.String()).
				WithSink(r.Name(), ref)
			fields[log.FieldDuration] = time.Since(start).Milliseconds()
			f.logger.DebugContext(gctx, "statement rendered", fields.ToSlice()...)
			return nil
		})
	}
	return g.Wait()
}
