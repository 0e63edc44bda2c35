// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pdiddy/apt-engine/internal/logging"
	"github.com/pdiddy/apt-engine/pkg/types"
)

// breakerOpenFor keeps a tripped breaker open for the rest of a batch.
const breakerOpenFor = 24 * time.Hour

// guarded wraps a Provider with a circuit breaker. After a number of
// consecutive failures the provider is skipped, returning
// ErrProviderUnavailable immediately, instead of timing out on every
// remaining artist. No-match results and caller cancellation do not count
// as failures.
type guarded struct {
	Provider
	cb *gobreaker.CircuitBreaker[Contribution]
}

// WithBreaker wraps p so it trips after failures consecutive failures.
func WithBreaker(p Provider, failures int) Provider {
	if failures < 1 {
		failures = 1
	}
	name := string(p.Name())
	cb := gobreaker.NewCircuitBreaker[Contribution](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNoMatch) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).
				Msg("provider circuit breaker state change")
		},
	})
	return &guarded{Provider: p, cb: cb}
}

func (g *guarded) Lookup(ctx context.Context, name string) (Contribution, error) {
	c, err := g.cb.Execute(func() (Contribution, error) {
		return g.Provider.Lookup(ctx, name)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Contribution{}, fmt.Errorf("%w: %s skipped: %v", ErrProviderUnavailable, g.Provider.Name(), err)
	}
	return c, err
}

// Name returns the wrapped provider's source.
func (g *guarded) Name() types.Source {
	return g.Provider.Name()
}
