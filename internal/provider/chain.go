package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maegy2011/orchids-tube-sub000/internal/errs"
)

// Stage is one adapter invocation in a chain: an input, a result or an
// error. Usable results stop the chain.
type Stage[I, O any] struct {
	Name string
	Run  func(ctx context.Context, in I) (O, error)
}

// Chain executes stages in order until one produces a usable result.
// Every stage invocation is failure-isolated: errors and panics are
// logged and treated as "no result", never propagated. Only when every
// stage fails does the caller get an aggregate failure.
//
// The same combinator serves search, detail, and download resolution.
type Chain[I, O any] struct {
	op     string
	stages []Stage[I, O]
	usable func(O) bool
	log    zerolog.Logger
}

// NewChain builds a chain named op. usable decides whether a stage's
// result counts as a success (e.g. a non-empty page).
func NewChain[I, O any](op string, log zerolog.Logger, usable func(O) bool, stages ...Stage[I, O]) *Chain[I, O] {
	return &Chain[I, O]{
		op:     op,
		stages: stages,
		usable: usable,
		log:    log.With().Str("chain", op).Logger(),
	}
}

// Execute runs the chain. It returns the winning result, the name of the
// stage that produced it, or an *errs.AggregateError when every stage
// failed or produced nothing usable.
func (c *Chain[I, O]) Execute(ctx context.Context, in I) (O, string, error) {
	var zero O
	var lastErr error
	attempted := make([]string, 0, len(c.stages))

	for _, st := range c.stages {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		attempted = append(attempted, st.Name)

		out, err := c.runIsolated(ctx, st, in)
		if err != nil {
			c.log.Warn().Str("provider", st.Name).Err(err).Msg("provider failed, trying next")
			lastErr = errs.Provider(st.Name, err)
			continue
		}
		if !c.usable(out) {
			c.log.Debug().Str("provider", st.Name).Msg("provider returned nothing usable")
			lastErr = errs.Provider(st.Name, fmt.Errorf("empty result"))
			continue
		}
		return out, st.Name, nil
	}

	return zero, "", &errs.AggregateError{Op: c.op, Stages: attempted, Last: lastErr}
}

// runIsolated converts a panicking adapter into an ordinary error so one
// misbehaving parser cannot take the request down.
func (c *Chain[I, O]) runIsolated(ctx context.Context, st Stage[I, O], in I) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return st.Run(ctx, in)
}
