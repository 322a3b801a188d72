package provider

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// newBreaker returns a circuit breaker tuned for flaky upstream APIs:
// trip after 5 consecutive failures, probe again after 30 seconds.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// WithBreaker wraps a stage in a circuit breaker. An open breaker reads
// as an ordinary stage failure, so the chain just moves to the next
// provider instead of hammering a known-dead one.
func WithBreaker[I, O any](st Stage[I, O]) Stage[I, O] {
	cb := newBreaker(st.Name)
	return Stage[I, O]{
		Name: st.Name,
		Run: func(ctx context.Context, in I) (O, error) {
			var zero O
			res, err := cb.Execute(func() (interface{}, error) {
				return st.Run(ctx, in)
			})
			if err != nil {
				return zero, err
			}
			return res.(O), nil
		},
	}
}
