package tempo

import (
	"time"

	"github.com/charmbracelet/log"
)

// TimeSource supplies wall-clock time to Ticker.Tick. Tests swap in a fake.
type TimeSource interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// Frame describes one delivered tick.
type Frame struct {
	// Time is the lag-smoothed time in seconds since the ticker started.
	Time float64
	// Delta is the time in seconds since the previous delivered frame.
	Delta float64
	// Index counts delivered frames, starting at 1.
	Index int
	// Manual is true when the tick was forced through Tick(true).
	Manual bool
}

// TickFunc is called once per delivered frame.
type TickFunc func(Frame)

// Listener is a registered per-frame callback. The pointer is its identity,
// so the same Listener can be removed and re-added.
type Listener struct {
	fn TickFunc
}

// NewListener wraps fn in a Listener handle.
func NewListener(fn TickFunc) *Listener {
	return &Listener{fn: fn}
}

// Ticker is the global clock. It turns wall-clock (Tick) or synthetic
// (Advance) time into frames and delivers them to its listeners in
// registration order. The listener list is snapshotted per frame; adds and
// removes made during delivery apply from the next frame.
type Ticker struct {
	source TimeSource
	log    *log.Logger

	listeners  []*Listener
	snapshot   []*Listener
	delivering bool

	awake      bool
	started    bool
	lastUpdate time.Time

	time     float64
	lastTime float64
	nextTime float64
	frame    int

	gap          float64
	lagThreshold float64
	adjustedLag  float64
}

// NewTicker creates a sleeping ticker with default lag smoothing (0.5s
// threshold, 0.033s adjusted lag) and no frame-rate cap.
func NewTicker(source TimeSource, logger *log.Logger) *Ticker {
	if source == nil {
		source = systemTime{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Ticker{
		source:       source,
		log:          logger,
		lagThreshold: 0.5,
		adjustedLag:  0.033,
	}
}

// --- Listeners ---

// Add registers fn and returns its handle. Adding a listener wakes the ticker.
func (t *Ticker) Add(fn TickFunc) *Listener {
	l := NewListener(fn)
	t.AddListener(l, false)
	return l
}

// AddListener registers l. Registering an already registered listener is a
// no-op. Prioritized listeners run before the others.
func (t *Ticker) AddListener(l *Listener, prioritize bool) {
	if l == nil || l.fn == nil || t.Has(l) {
		return
	}
	if prioritize {
		t.listeners = append([]*Listener{l}, t.listeners...)
	} else {
		t.listeners = append(t.listeners, l)
	}
	t.Wake()
}

// Remove unregisters l. The ticker sleeps once no listeners remain.
func (t *Ticker) Remove(l *Listener) {
	for i, cur := range t.listeners {
		if cur == l {
			copy(t.listeners[i:], t.listeners[i+1:])
			t.listeners[len(t.listeners)-1] = nil
			t.listeners = t.listeners[:len(t.listeners)-1]
			break
		}
	}
	if len(t.listeners) == 0 {
		t.Sleep()
	}
}

// Has reports whether l is registered.
func (t *Ticker) Has(l *Listener) bool {
	for _, cur := range t.listeners {
		if cur == l {
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners.
func (t *Ticker) Len() int { return len(t.listeners) }

// --- Configuration ---

// SetFPS caps delivered frames at fps per second. 0 removes the cap.
func (t *Ticker) SetFPS(fps int) {
	if fps <= 0 {
		t.gap = 0
		t.nextTime = t.time
		return
	}
	t.gap = 1 / float64(fps)
	t.nextTime = t.time + t.gap
}

// LagSmoothing clamps any single elapsed step above threshold to adjusted.
// A threshold <= 0 disables smoothing.
func (t *Ticker) LagSmoothing(threshold, adjusted float64) {
	t.lagThreshold = threshold
	t.adjustedLag = min(adjusted, threshold)
	if threshold <= 0 {
		t.adjustedLag = 0
	}
}

// --- Sleep ---

// Awake reports whether the ticker delivers frames.
func (t *Ticker) Awake() bool { return t.awake }

// Sleep stops frame delivery until Wake.
func (t *Ticker) Sleep() { t.awake = false }

// Wake resumes frame delivery. Wall-clock time spent asleep is not counted.
func (t *Ticker) Wake() {
	if t.awake {
		return
	}
	t.awake = true
	if t.started {
		t.lastUpdate = t.source.Now()
	}
}

// --- Time ---

// Time returns the current lag-smoothed time in seconds.
func (t *Ticker) Time() float64 { return t.time }

// Frame returns the number of delivered frames.
func (t *Ticker) Frame() int { return t.frame }

// Tick samples the time source and delivers a frame if one is due. Manual
// ticks always deliver. It returns whether a frame was delivered.
func (t *Ticker) Tick(manual bool) bool {
	now := t.source.Now()
	if !t.started {
		t.started = true
		t.lastUpdate = now
	}
	elapsed := now.Sub(t.lastUpdate).Seconds()
	t.lastUpdate = now
	return t.step(elapsed, manual)
}

// Advance moves the clock by dt seconds and delivers a frame if one is due.
// It is the deterministic entry point used by hosts and tests.
func (t *Ticker) Advance(dt float64) bool {
	return t.step(dt, false)
}

func (t *Ticker) step(elapsed float64, manual bool) bool {
	if !t.awake {
		return false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if t.lagThreshold > 0 && elapsed > t.lagThreshold {
		elapsed = t.adjustedLag
	}
	t.time += elapsed
	overlap := t.time - t.nextTime
	if overlap <= 0 && !manual {
		return false
	}
	if t.gap > 0 {
		if overlap >= t.gap {
			t.nextTime = t.time + t.gap
		} else {
			t.nextTime += t.gap
		}
	} else {
		t.nextTime = t.time
	}
	t.frame++
	f := Frame{Time: t.time, Delta: t.time - t.lastTime, Index: t.frame, Manual: manual}
	t.lastTime = t.time
	t.dispatch(f)
	return true
}

func (t *Ticker) dispatch(f Frame) {
	var snap []*Listener
	if t.delivering {
		snap = append([]*Listener(nil), t.listeners...)
	} else {
		t.snapshot = append(t.snapshot[:0], t.listeners...)
		snap = t.snapshot
		t.delivering = true
		defer func() {
			t.delivering = false
			clear(t.snapshot)
		}()
	}
	for _, l := range snap {
		safeCall(t.log, "ticker listener", func() { l.fn(f) })
	}
}
