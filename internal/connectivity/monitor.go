// Package connectivity watches whether the transaction server is reachable
// and notifies listeners on every transition. Everything that changes
// behavior offline (queue drains, kitchen tickets) hangs off this signal.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/poslite/kiosk/internal/metrics"
)

// DefaultInterval is how often the probe runs.
const DefaultInterval = 30 * time.Second

// Listener receives the new online state after a transition.
type Listener func(online bool)

// Monitor probes the backend status endpoint on a fixed interval. The probed
// endpoint is the transaction server itself: reaching an arbitrary host says
// nothing about whether uploads will succeed.
type Monitor struct {
	http     *http.Client
	url      string
	auth     string
	interval time.Duration

	mu        sync.Mutex
	online    bool
	listeners []Listener
}

func NewMonitor(baseURL, auth string, interval time.Duration) *Monitor {
	return &Monitor{
		http:     &http.Client{Timeout: 10 * time.Second},
		url:      baseURL + "/Others/status",
		auth:     auth,
		interval: interval,
		online:   true,
	}
}

// Online returns the last probed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a listener and immediately delivers the current state.
func (m *Monitor) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	online := m.online
	m.mu.Unlock()
	l(online)
}

// Run probes until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	online := m.check(ctx)
	if online {
		metrics.Online.Set(1)
	} else {
		metrics.Online.Set(0)
	}

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	listeners := m.listeners
	m.mu.Unlock()

	if !changed {
		return
	}
	slog.Info("Connectivity changed", "online", online)
	for _, l := range listeners {
		l(online)
	}
}

func (m *Monitor) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url, nil)
	if err != nil {
		return false
	}
	if m.auth != "" {
		req.Header.Set("Authorization", m.auth)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
