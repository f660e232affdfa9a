// Package netmon observes connectivity to the remote wardrobe service and
// exposes a debounced online/offline signal with edge-triggered subscriptions.
//
// The monitor polls a Prober on a fixed interval. A newly observed state must
// hold for the debounce interval before it is committed and reported, so a
// flapping link never triggers redundant sync cycles.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/lv-asc/vangarments-app-sub017/internal/config"
	"github.com/lv-asc/vangarments-app-sub017/internal/logger"
)

// Prober answers whether the remote service is currently reachable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// ProberFunc adapts a plain function to the Prober interface.
type ProberFunc func(ctx context.Context) bool

func (f ProberFunc) Probe(ctx context.Context) bool { return f(ctx) }

// TransitionFunc receives the new committed state: true for offline→online,
// false for online→offline. Fired exactly once per observed edge.
type TransitionFunc func(online bool)

// Monitor is the connectivity monitor. The zero value is not usable; construct
// with New. Monitors start offline and report the first online edge once the
// prober has succeeded for a full debounce window.
type Monitor struct {
	prober        Prober
	probeInterval time.Duration
	debounce      time.Duration
	logger        *logger.Logger

	mu          sync.Mutex
	online      bool
	observed    bool
	observedAt  time.Time
	subscribers map[int]TransitionFunc
	nextSubID   int
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New constructs a Monitor. Zero intervals fall back to the package defaults.
func New(cfg config.Netmon, prober Prober, log *logger.Logger) *Monitor {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = config.DefaultProbeInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = config.DefaultDebounce
	}

	return &Monitor{
		prober:        prober,
		probeInterval: cfg.ProbeInterval,
		debounce:      cfg.Debounce,
		logger:        log,
		subscribers:   make(map[int]TransitionFunc),
	}
}

// IsOnline returns the current committed connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnTransition registers fn to be called once per committed state edge. The
// returned function removes the subscription; calling it more than once is a
// no-op.
func (m *Monitor) OnTransition(fn TransitionFunc) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
		})
	}
}

// Start launches the polling goroutine. It stops any previously running loop
// first, so Start is safe to call repeatedly. The goroutine exits when ctx is
// cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		t := time.NewTicker(m.probeInterval)
		defer t.Stop()

		// Probe immediately so a freshly started engine does not wait a full
		// interval to learn it is online.
		m.observe(loopCtx, m.prober.Probe(loopCtx))

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				m.observe(loopCtx, m.prober.Probe(loopCtx))
			}
		}
	}()
}

// Stop cancels the polling goroutine and blocks until it has exited. Safe to
// call when the monitor is not running.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// observe feeds one probe result into the debounce state machine and fires
// subscribers outside the lock when an edge commits.
func (m *Monitor) observe(ctx context.Context, online bool) {
	now := time.Now()

	m.mu.Lock()
	if online != m.observed {
		m.observed = online
		m.observedAt = now
	}

	commit := m.observed != m.online && now.Sub(m.observedAt) >= m.debounce
	var fns []TransitionFunc
	if commit {
		m.online = m.observed
		online = m.online
		fns = make([]TransitionFunc, 0, len(m.subscribers))
		for _, fn := range m.subscribers {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	if !commit || ctx.Err() != nil {
		return
	}

	m.logger.Info().Bool("online", online).Msg("connectivity transition")
	for _, fn := range fns {
		fn(online)
	}
}
