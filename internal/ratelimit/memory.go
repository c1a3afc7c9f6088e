package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local sliding window limiter.
type Memory struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory returns a limiter admitting max events per window per key and
// starts a background sweep of idle keys. Call Stop to end it.
func NewMemory(max int, window time.Duration) *Memory {
	m := newMemory(max, window, time.Now)
	go m.cleanupLoop(window)
	return m
}

func newMemory(max int, window time.Duration, now func() time.Time) *Memory {
	return &Memory{
		max:     max,
		window:  window,
		now:     now,
		clients: make(map[string][]time.Time),
		stop:    make(chan struct{}),
	}
}

// Allow records an event for key if the window has room.
func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	ts := prune(m.clients[key], now.Add(-m.window))
	if len(ts) >= m.max {
		m.clients[key] = ts
		return Result{
			Limit:      m.max,
			RetryAfter: ts[0].Add(m.window).Sub(now),
		}, nil
	}
	ts = append(ts, now)
	m.clients[key] = ts
	return Result{Allowed: true, Limit: m.max, Remaining: m.max - len(ts)}, nil
}

// Reset forgets every event recorded for key.
func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, key)
	return nil
}

// prune drops timestamps at or before windowStart, reusing the backing array.
func prune(ts []time.Time, windowStart time.Time) []time.Time {
	valid := ts[:0]
	for _, t := range ts {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (m *Memory) cleanupLoop(every time.Duration) {
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Memory) sweep() {
	windowStart := m.now().Add(-m.window)
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, ts := range m.clients {
		ts = prune(ts, windowStart)
		if len(ts) == 0 {
			delete(m.clients, key)
			continue
		}
		m.clients[key] = ts
	}
}

// Stop ends the background sweep.
func (m *Memory) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}
