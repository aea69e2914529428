package tempo

import (
	"math"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// Engine owns the clock, the registries and the root timeline. Every
// animation belongs to exactly one engine. An Engine is not safe for
// concurrent use; drive it from one goroutine.
type Engine struct {
	cfg     Config
	log     *log.Logger
	ticker  *Ticker
	eases   *EaseRegistry
	setters *SetterRegistry
	tracker *VelocityTracker
	root    *Timeline
	sink    EventSink

	listener  *Listener
	timeScale float64
	lazy      []*Tween
	idle      int
	ids       map[string]int
	source    TimeSource
}

// EngineOption configures New.
type EngineOption func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) EngineOption { return func(e *Engine) { e.cfg = cfg } }

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) EngineOption { return func(e *Engine) { e.log = l } }

// WithTimeSource replaces the wall clock used by Ticker.Tick.
func WithTimeSource(src TimeSource) EngineOption { return func(e *Engine) { e.source = src } }

// WithEventSink forwards lifecycle events to sink.
func WithEventSink(sink EventSink) EngineOption { return func(e *Engine) { e.sink = sink } }

// New creates an engine with the built-in eases and setters and an awake
// ticker driving the root timeline.
func New(opts ...EngineOption) *Engine {
	e := &Engine{cfg: DefaultConfig(), ids: make(map[string]int)}
	for _, opt := range opts {
		opt(e)
	}
	cfg, notes := e.cfg.Normalize()
	e.cfg = cfg
	if e.log == nil {
		e.log = NewLogger(nil, cfg.LogLevel)
	}
	for _, n := range notes {
		e.log.Warn("config value replaced", "note", n)
	}

	e.eases = NewEaseRegistry(e.log)
	if cfg.DefaultEase != "" {
		e.eases.SetDefault(cfg.DefaultEase)
	}
	e.setters = NewSetterRegistry()
	e.ticker = NewTicker(e.source, e.log)
	e.ticker.SetFPS(cfg.FPS)
	e.ticker.LagSmoothing(cfg.LagThreshold, cfg.AdjustedLag)
	e.timeScale = cfg.TimeScale

	e.root = e.newTimeline(&settings{id: "root"})
	e.root.root = true
	e.root.autoRemove = true
	e.root.smoothChildTiming = true
	e.root.dur = math.Inf(1)

	e.tracker = newVelocityTracker(e.ticker, e.setters, e.log)
	e.listener = e.ticker.Add(e.update)
	return e
}

// Config returns the normalized configuration.
func (e *Engine) Config() Config { return e.cfg }

// Logger returns the engine's logger.
func (e *Engine) Logger() *log.Logger { return e.log }

// Ticker returns the engine's clock.
func (e *Engine) Ticker() *Ticker { return e.ticker }

// Eases returns the ease registry.
func (e *Engine) Eases() *EaseRegistry { return e.eases }

// Setters returns the property setter registry.
func (e *Engine) Setters() *SetterRegistry { return e.setters }

// Tracker returns the velocity tracker.
func (e *Engine) Tracker() *VelocityTracker { return e.tracker }

// Root returns the root timeline. New animations start on it at its current
// time; completed children are removed from it.
func (e *Engine) Root() *Timeline { return e.root }

// SetEventSink replaces the lifecycle event sink; nil disables it.
func (e *Engine) SetEventSink(sink EventSink) { e.sink = sink }

// RegisterEase adds a named ease.
func (e *Engine) RegisterEase(name string, fn EaseFunc) { e.eases.Register(name, fn) }

// RegisterPlugin adds a property plugin.
func (e *Engine) RegisterPlugin(name string, fn Resolver) { e.setters.RegisterPlugin(name, fn) }

// TimeScale returns the global time scale.
func (e *Engine) TimeScale() float64 { return e.timeScale }

// SetTimeScale scales every frame delta fed to the root timeline.
func (e *Engine) SetTimeScale(s float64) {
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		e.log.Warn("invalid global time scale rejected", "timeScale", s)
		return
	}
	e.timeScale = s
}

// Tick advances the engine by dt seconds of wall time.
func (e *Engine) Tick(dt float64) bool {
	return e.ticker.Advance(dt)
}

// --- Creation ---

// To animates targets from their current values to props.
func (e *Engine) To(targets any, props Props, duration float64, opts ...Option) *Tween {
	return e.start(modeTo, targets, nil, props, duration, opts)
}

// From animates targets from props to their current values. The start
// values are written immediately.
func (e *Engine) From(targets any, props Props, duration float64, opts ...Option) *Tween {
	return e.start(modeFrom, targets, props, nil, duration, opts)
}

// FromTo animates targets between explicit values.
func (e *Engine) FromTo(targets any, from, to Props, duration float64, opts ...Option) *Tween {
	return e.start(modeFromTo, targets, from, to, duration, opts)
}

// Set assigns props through the setter pipeline. Without a delay the values
// are written immediately.
func (e *Engine) Set(targets any, props Props, opts ...Option) *Tween {
	return e.start(modeSet, targets, nil, props, 0, opts)
}

// DelayedCall runs fn after delay seconds.
func (e *Engine) DelayedCall(delay float64, fn func(), opts ...Option) *Tween {
	opts = append([]Option{Delay(delay), OnComplete(func(Event) {
		if fn != nil {
			fn()
		}
	})}, opts...)
	return e.start(modeCall, nil, nil, nil, 0, opts)
}

// Timeline creates a timeline on the root.
func (e *Engine) Timeline(opts ...Option) *Timeline {
	s := newSettings(opts)
	tl := e.newTimeline(s)
	e.root.insert(tl, e.root.time+tl.delay)
	return tl
}

func (e *Engine) start(mode tweenMode, targets any, from, to Props, duration float64, opts []Option) *Tween {
	s := newSettings(opts)
	tw := e.newTween(mode, targets, from, to, duration, s)
	if s.hasPosition {
		e.log.Debug("position ignored for a root animation", "id", tw.id, "position", s.position)
	}
	e.applyOverwriteAll(tw)
	e.root.insert(tw, e.root.time+tw.delay)

	immediate := mode == modeFrom || mode == modeFromTo || (mode == modeSet && tw.delay == 0)
	if s.immediate != nil {
		immediate = *s.immediate
	}
	// A tween whose properties all failed completes right away.
	if mode != modeCall && len(tw.props) == 0 && len(propKeys(from, to)) > 0 {
		immediate = true
	}
	if immediate {
		tw.render(0, false, true)
	}
	return tw
}

func (e *Engine) nextID(kind string) string {
	e.ids[kind]++
	return kind + "-" + strconv.Itoa(e.ids[kind])
}

func (e *Engine) logSettings(id string, s *settings) {
	for _, w := range s.warnings {
		e.log.Warn(w, "id", id)
	}
}

// --- Frame update ---

func (e *Engine) update(f Frame) {
	var begin time.Time
	if e.cfg.Debug {
		begin = time.Now()
	}
	root := e.root
	root.render(root.tTime+f.Delta*e.timeScale, false, false)
	flushed := e.flushLazy()

	if e.cfg.Debug {
		e.debugLog(tickStats{
			frame:    f.Index,
			elapsed:  time.Since(begin),
			children: len(root.children),
			lazy:     flushed,
		})
	}

	if len(root.children) == 0 && e.ticker.Len() == 1 && e.cfg.AutoSleep > 0 {
		e.idle++
		if e.idle >= e.cfg.AutoSleep {
			e.idle = 0
			e.ticker.Sleep()
		}
	} else {
		e.idle = 0
	}
}

func (e *Engine) wake() {
	e.idle = 0
	e.ticker.Wake()
}

func (e *Engine) queueLazy(tw *Tween) {
	e.lazy = append(e.lazy, tw)
}

// flushLazy performs deferred first writes. It returns how many ran.
func (e *Engine) flushLazy() int {
	n := 0
	for len(e.lazy) > 0 {
		queue := e.lazy
		e.lazy = nil
		for _, tw := range queue {
			if !tw.lazyPending || tw.killed {
				continue
			}
			tw.writeProps()
			n++
		}
	}
	return n
}

// --- Queries ---

// TweensOf returns the tweens animating target anywhere under the root.
// With onlyActive, only tweens whose playhead is inside them are returned.
func (e *Engine) TweensOf(target any, onlyActive bool) []*Tween {
	var out []*Tween
	e.walk(e.root, func(tw *Tween) {
		if tw.hasTarget(target) && (!onlyActive || tw.IsActive()) {
			out = append(out, tw)
		}
	})
	return out
}

// IsTweening reports whether an active tween animates target.
func (e *Engine) IsTweening(target any) bool {
	return len(e.TweensOf(target, true)) > 0
}

// KillTweensOf kills the tweens of target. With props, only those properties
// stop; a tween left without properties is killed.
func (e *Engine) KillTweensOf(target any, props ...string) {
	for _, tw := range e.TweensOf(target, false) {
		if len(props) == 0 || !tw.killProps(target, props) {
			tw.Kill()
		}
	}
}

func (e *Engine) walk(tl *Timeline, fn func(*Tween)) {
	for _, c := range tl.Children() {
		switch n := c.(type) {
		case *Tween:
			fn(n)
		case *Timeline:
			e.walk(n, fn)
		}
	}
}

// --- Overwrite ---

func (e *Engine) applyOverwriteAll(tw *Tween) {
	if tw.overwrite != OverwriteAll {
		return
	}
	for _, target := range tw.targets {
		for _, other := range e.TweensOf(target, false) {
			if other != tw {
				other.Kill()
			}
		}
	}
}

// overwriteAuto strips the properties tw animates from other active tweens
// of the same targets.
func (e *Engine) overwriteAuto(tw *Tween) {
	for _, p := range tw.props {
		for _, other := range e.TweensOf(p.target, true) {
			if other == tw {
				continue
			}
			if !other.killProps(p.target, []string{p.name}) {
				other.Kill()
			}
		}
	}
}
