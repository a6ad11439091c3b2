// Package sequence provides monotonic counters for human-readable
// identifiers. Counters are keyed by name and an optional period so a
// sequence can restart each day.
package sequence

import (
	"context"
	"sync"
)

// Generator reserves the next value of a named counter. Period scopes the
// counter; use "" for a global sequence or a date string for a daily one.
type Generator interface {
	Next(ctx context.Context, name, period string) (int64, error)
}

// Memory is an in-process Generator for tests and single-node dev runs.
type Memory struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]int64)}
}

func (m *Memory) Next(_ context.Context, name, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := name + "|" + period
	m.values[key]++
	return m.values[key], nil
}

// Set primes a counter, for seeding alongside fixture data.
func (m *Memory) Set(name, period string, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name+"|"+period] = value
}
