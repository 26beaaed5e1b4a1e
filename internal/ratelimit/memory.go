package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryCounters implements CounterStore in process; used by unit tests and
// as the fallback when no Redis address is configured.
type MemoryCounters struct {
	mu       sync.Mutex
	counters map[string]*memoryCounter
	now      func() time.Time
}

type memoryCounter struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounters() *MemoryCounters {
	return &MemoryCounters{
		counters: make(map[string]*memoryCounter),
		now:      time.Now,
	}
}

// WithClock overrides the time source; tests use it to roll windows forward.
func (m *MemoryCounters) WithClock(now func() time.Time) *MemoryCounters {
	m.now = now
	return m
}

func (m *MemoryCounters) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	counter, ok := m.counters[key]
	if !ok || !now.Before(counter.windowEnd) {
		counter = &memoryCounter{windowEnd: now.Add(window)}
		m.counters[key] = counter
	}
	counter.count++
	return counter.count, counter.windowEnd.Sub(now), nil
}

func (m *MemoryCounters) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counters, key)
	return nil
}
