// Package ratelimit bounds the frequency of cart mutations per user and
// operation class with windowed counters on a shared counter store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var throttledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_rate_limit_throttled_total",
		Help: "Total number of cart operations rejected by the rate limiter",
	},
	[]string{"class"},
)

// Class is the rate-limited category of a cart mutation.
type Class string

const (
	ClassAdd     Class = "add"
	ClassUpdate  Class = "update"
	ClassRemove  Class = "remove"
	ClassGeneral Class = "general"
)

// Limits holds per-window ceilings by operation class.
type Limits struct {
	Add     int
	Update  int
	Remove  int
	General int
	Window  time.Duration
}

// DefaultLimits returns the product-default ceilings: add is the tightest
// because it is the highest-value operation to throttle.
func DefaultLimits() Limits {
	return Limits{
		Add:     10,
		Update:  20,
		Remove:  15,
		General: 30,
		Window:  time.Minute,
	}
}

func (l Limits) ceiling(class Class) int {
	switch class {
	case ClassAdd:
		return l.Add
	case ClassUpdate:
		return l.Update
	case ClassRemove:
		return l.Remove
	default:
		return l.General
	}
}

// LimitError reports that a user exceeded the ceiling for an operation class.
type LimitError struct {
	Class      Class
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Class, e.RetryAfter)
}

// CounterStore is the windowed counter backend.
type CounterStore interface {
	// Incr increments the counter for key, starting a fresh window of the
	// given length if none is running. It returns the count after the
	// increment and the time remaining in the current window.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)

	// Reset clears the counter, ending its window.
	Reset(ctx context.Context, key string) error
}

// Limiter gates cart mutations per (user, operation class).
type Limiter struct {
	counters CounterStore
	limits   Limits
	logger   zerolog.Logger
}

func New(counters CounterStore, limits Limits, logger zerolog.Logger) *Limiter {
	if limits.Window <= 0 {
		limits.Window = time.Minute
	}
	return &Limiter{counters: counters, limits: limits, logger: logger}
}

// Allow counts one attempt and returns a *LimitError once the attempt count
// exceeds the class ceiling within the current window. Counter store failures
// fail open: an unreachable backend must not block cart mutations.
func (l *Limiter) Allow(ctx context.Context, userID string, class Class) error {
	count, remaining, err := l.counters.Incr(ctx, counterKey(userID, class), l.limits.Window)
	if err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Str("class", string(class)).
			Msg("rate limit counter unavailable, allowing request")
		return nil
	}

	ceiling := l.limits.ceiling(class)
	if count > int64(ceiling) {
		throttledTotal.WithLabelValues(string(class)).Inc()
		retryAfter := remaining
		if retryAfter <= 0 {
			retryAfter = l.limits.Window
		}
		l.logger.Debug().Str("user_id", userID).Str("class", string(class)).
			Int64("attempts", count).Int("ceiling", ceiling).
			Msg("rate limit exceeded")
		return &LimitError{Class: class, RetryAfter: retryAfter}
	}
	return nil
}

// OnSuccess rewards a successful non-add operation with a fresh window.
// Add counters are deliberately left running: repeated successful adds still
// count toward the ceiling.
func (l *Limiter) OnSuccess(ctx context.Context, userID string, class Class) {
	if class == ClassAdd {
		return
	}
	if err := l.counters.Reset(ctx, counterKey(userID, class)); err != nil {
		l.logger.Warn().Err(err).Str("user_id", userID).Str("class", string(class)).
			Msg("rate limit counter reset failed")
	}
}

func counterKey(userID string, class Class) string {
	return fmt.Sprintf("ratelimit:%s:%s", userID, class)
}
