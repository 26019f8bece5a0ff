package lifecycle

import (
	"context"
	"sync"
	"time"
)

// Prober reads a session's current status and last activity time. It is
// called from the monitor goroutine; implementations must be safe for
// concurrent use.
type Prober interface {
	Probe(ctx context.Context, sessionID string) (Status, time.Time, error)
}

// MonitorConfig tunes how monitors detect abandonment.
type MonitorConfig struct {
	InactivityTimeout time.Duration
	Tick              time.Duration
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		InactivityTimeout: 30 * time.Minute,
		Tick:              time.Minute,
	}
}

// Monitor runs one goroutine per watched session and cancels it when the
// session reaches a terminal state or exceeds the inactivity timeout.
// OnAbandon performs the actual transition; the monitor never mutates
// session state itself.
type Monitor struct {
	prober    Prober
	onAbandon func(ctx context.Context, sessionID string)
	cfg       MonitorConfig

	mu       sync.Mutex
	watchers map[string]*watcher
}

type watcher struct {
	cancel context.CancelFunc
}

func NewMonitor(prober Prober, onAbandon func(ctx context.Context, sessionID string), cfg MonitorConfig) *Monitor {
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = 30 * time.Minute
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Minute
	}
	return &Monitor{
		prober:    prober,
		onAbandon: onAbandon,
		cfg:       cfg,
		watchers:  make(map[string]*watcher),
	}
}

// Watch starts a monitor goroutine for the session. Watching an already
// watched session restarts its monitor.
func (m *Monitor) Watch(sessionID string) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{cancel: cancel}

	m.mu.Lock()
	if prev, ok := m.watchers[sessionID]; ok {
		prev.cancel()
	}
	m.watchers[sessionID] = w
	m.mu.Unlock()

	go m.run(ctx, sessionID, w)
}

// Stop cancels the session's monitor if one is running.
func (m *Monitor) Stop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.watchers[sessionID]; ok {
		w.cancel()
		delete(m.watchers, sessionID)
	}
}

// StopAll cancels every monitor; used on shutdown.
func (m *Monitor) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, w := range m.watchers {
		w.cancel()
		delete(m.watchers, id)
	}
}

// Watching reports how many sessions currently have a monitor.
func (m *Monitor) Watching() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}

func (m *Monitor) run(ctx context.Context, sessionID string, w *watcher) {
	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()
	defer func() {
		// Only remove our own registration; a restart may have
		// replaced it already.
		m.mu.Lock()
		if m.watchers[sessionID] == w {
			delete(m.watchers, sessionID)
		}
		m.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, lastActivity, err := m.prober.Probe(ctx, sessionID)
			if err != nil {
				continue // transient read failure, retry next tick
			}
			if status.Terminal() {
				return
			}
			if time.Since(lastActivity) >= m.cfg.InactivityTimeout {
				m.onAbandon(ctx, sessionID)
				return
			}
		}
	}
}
