package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeProber struct {
	mu           sync.Mutex
	status       Status
	lastActivity time.Time
}

func (p *fakeProber) Probe(ctx context.Context, sessionID string) (Status, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.lastActivity, nil
}

func (p *fakeProber) set(status Status, lastActivity time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	p.lastActivity = lastActivity
}

func TestMonitorAbandonsInactiveSession(t *testing.T) {
	prober := &fakeProber{
		status:       StatusInProgress,
		lastActivity: time.Now().Add(-time.Hour),
	}

	abandoned := make(chan string, 1)
	m := NewMonitor(prober, func(ctx context.Context, sessionID string) {
		abandoned <- sessionID
	}, MonitorConfig{InactivityTimeout: 10 * time.Millisecond, Tick: 5 * time.Millisecond})

	m.Watch("session-1")

	select {
	case id := <-abandoned:
		if id != "session-1" {
			t.Fatalf("abandoned %q, want session-1", id)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for abandonment")
	}
}

func TestMonitorActiveSessionIsNotAbandoned(t *testing.T) {
	prober := &fakeProber{
		status:       StatusInProgress,
		lastActivity: time.Now().Add(time.Hour), // always recent
	}

	abandoned := make(chan string, 1)
	m := NewMonitor(prober, func(ctx context.Context, sessionID string) {
		abandoned <- sessionID
	}, MonitorConfig{InactivityTimeout: time.Hour, Tick: 5 * time.Millisecond})

	m.Watch("session-1")
	defer m.StopAll()

	select {
	case <-abandoned:
		t.Fatal("active session was abandoned")
	case <-time.After(50 * time.Millisecond):
	}
	if m.Watching() != 1 {
		t.Fatalf("Watching = %d, want 1", m.Watching())
	}
}

func TestMonitorStopsOnTerminalStatus(t *testing.T) {
	prober := &fakeProber{
		status:       StatusInProgress,
		lastActivity: time.Now(),
	}

	abandoned := make(chan string, 1)
	m := NewMonitor(prober, func(ctx context.Context, sessionID string) {
		abandoned <- sessionID
	}, MonitorConfig{InactivityTimeout: time.Hour, Tick: 5 * time.Millisecond})

	m.Watch("session-1")
	prober.set(StatusCompleted, time.Now())

	deadline := time.Now().Add(time.Second)
	for m.Watching() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("monitor did not stop after terminal status")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-abandoned:
		t.Fatal("terminal session must not be abandoned")
	default:
	}
}

func TestMonitorStopCancelsWatcher(t *testing.T) {
	prober := &fakeProber{status: StatusInProgress, lastActivity: time.Now()}
	m := NewMonitor(prober, func(ctx context.Context, sessionID string) {},
		MonitorConfig{InactivityTimeout: time.Hour, Tick: time.Millisecond})

	m.Watch("session-1")
	if m.Watching() != 1 {
		t.Fatalf("Watching = %d, want 1", m.Watching())
	}

	m.Stop("session-1")
	if m.Watching() != 0 {
		t.Fatalf("Watching = %d after Stop, want 0", m.Watching())
	}
}

func TestMonitorRewatchReplacesWatcher(t *testing.T) {
	prober := &fakeProber{status: StatusInProgress, lastActivity: time.Now()}
	m := NewMonitor(prober, func(ctx context.Context, sessionID string) {},
		MonitorConfig{InactivityTimeout: time.Hour, Tick: time.Millisecond})

	m.Watch("session-1")
	m.Watch("session-1")

	// Give the replaced goroutine time to exit; it must not remove the
	// new registration on its way out.
	time.Sleep(20 * time.Millisecond)
	if m.Watching() != 1 {
		t.Fatalf("Watching = %d, want 1", m.Watching())
	}
	m.StopAll()
}
