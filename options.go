package tempo

import (
	"fmt"
	"math"
)

// Option configures a tween or timeline at creation.
type Option func(*settings)

// settings is the resolved option set of one creation call.
type settings struct {
	id          string
	delay       float64
	ease        EaseFunc
	easeName    string
	yoyoEase    EaseFunc
	yoyoName    string
	repeat      int
	repeatDelay float64
	yoyo        bool
	paused      bool

	onStart           Callback
	onUpdate          Callback
	onRepeat          Callback
	onComplete        Callback
	onReverseComplete Callback
	scope             any

	position    any
	hasPosition bool
	lazy        bool
	immediate   *bool
	stagger     *Stagger
	overwrite   OverwriteMode
	colorSpace  ColorSpace

	autoRemove *bool
	smooth     *bool

	warnings []string
}

func (s *settings) warn(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ID names the animation. Unnamed animations get "tween-N"/"timeline-N".
func ID(id string) Option { return func(s *settings) { s.id = id } }

// Delay postpones the start by d seconds.
func Delay(d float64) Option {
	return func(s *settings) {
		if d < 0 || math.IsNaN(d) {
			s.warn("invalid delay %v ignored", d)
			return
		}
		s.delay = d
	}
}

// Ease selects a registered ease by name.
func Ease(name string) Option { return func(s *settings) { s.easeName = name } }

// EaseWith uses fn directly.
func EaseWith(fn EaseFunc) Option { return func(s *settings) { s.ease = fn } }

// YoyoEase selects the ease used on mirrored yoyo iterations. Setting it
// implies Yoyo(true).
func YoyoEase(name string) Option {
	return func(s *settings) {
		s.yoyoName = name
		s.yoyo = true
	}
}

// Repeat sets the repeat count; RepeatInfinite repeats forever.
func Repeat(n int) Option {
	return func(s *settings) {
		if n < RepeatInfinite {
			s.warn("invalid repeat %d ignored", n)
			return
		}
		s.repeat = n
	}
}

// RepeatDelay inserts d seconds between iterations.
func RepeatDelay(d float64) Option {
	return func(s *settings) {
		if d < 0 || math.IsNaN(d) {
			s.warn("invalid repeat delay %v ignored", d)
			return
		}
		s.repeatDelay = d
	}
}

// Yoyo plays every other iteration backward.
func Yoyo(yoyo bool) Option { return func(s *settings) { s.yoyo = yoyo } }

// Paused creates the animation paused.
func Paused(paused bool) Option { return func(s *settings) { s.paused = paused } }

func OnStart(fn Callback) Option           { return func(s *settings) { s.onStart = fn } }
func OnUpdate(fn Callback) Option          { return func(s *settings) { s.onUpdate = fn } }
func OnRepeat(fn Callback) Option          { return func(s *settings) { s.onRepeat = fn } }
func OnComplete(fn Callback) Option        { return func(s *settings) { s.onComplete = fn } }
func OnReverseComplete(fn Callback) Option { return func(s *settings) { s.onReverseComplete = fn } }

// CallbackScope is handed to every callback as Event.Scope.
func CallbackScope(scope any) Option { return func(s *settings) { s.scope = scope } }

// At positions a child created through a timeline's chaining methods. See
// Timeline.Add for the accepted forms. Root-level animations start at the
// current time and ignore it.
func At(position any) Option {
	return func(s *settings) {
		s.position = position
		s.hasPosition = true
	}
}

// Lazy defers a tween's first write to the end of the tick.
func Lazy(lazy bool) Option { return func(s *settings) { s.lazy = lazy } }

// ImmediateRender renders the start state at creation. From, FromTo and
// root-level Set tweens default to true.
func ImmediateRender(on bool) Option { return func(s *settings) { s.immediate = &on } }

// WithColorSpace selects how colors blend.
func WithColorSpace(space ColorSpace) Option { return func(s *settings) { s.colorSpace = space } }

// AutoRemoveChildren makes a timeline drop children once they complete.
func AutoRemoveChildren(on bool) Option { return func(s *settings) { s.autoRemove = &on } }

// SmoothChildTiming makes a timeline re-align a child's start time when the
// child is seeked, resumed or re-scaled, so its playhead does not jump.
func SmoothChildTiming(on bool) Option { return func(s *settings) { s.smooth = &on } }

// --- Stagger ---

// StaggerFrom names the target the stagger radiates from.
type StaggerFrom uint8

const (
	StaggerStart StaggerFrom = iota
	StaggerEnd
	StaggerCenter
	StaggerEdges
)

// Stagger offsets each target's start within one tween by Each seconds.
type Stagger struct {
	Each float64
	From StaggerFrom
}

// WithStagger staggers the tween's targets.
func WithStagger(st Stagger) Option { return func(s *settings) { s.stagger = &st } }

func (st Stagger) offsets(n int) []float64 {
	out := make([]float64, n)
	if n == 0 || st.Each == 0 {
		return out
	}
	mid := float64(n-1) / 2
	for i := range out {
		fi := float64(i)
		var d float64
		switch st.From {
		case StaggerEnd:
			d = float64(n-1) - fi
		case StaggerCenter:
			d = math.Abs(fi - mid)
		case StaggerEdges:
			d = mid - math.Abs(fi-mid)
		default:
			d = fi
		}
		out[i] = d * math.Abs(st.Each)
	}
	return out
}

func parseStaggerFrom(name string) (StaggerFrom, bool) {
	switch name {
	case "", "start":
		return StaggerStart, true
	case "end":
		return StaggerEnd, true
	case "center":
		return StaggerCenter, true
	case "edges":
		return StaggerEdges, true
	}
	return StaggerStart, false
}

// --- Overwrite ---

// OverwriteMode controls how a new tween treats other tweens of its targets.
type OverwriteMode uint8

const (
	// OverwriteNone leaves other tweens alone.
	OverwriteNone OverwriteMode = iota
	// OverwriteAll kills every other tween of the same targets on creation.
	OverwriteAll
	// OverwriteAuto removes only the overlapping properties of active tweens
	// when this tween first renders.
	OverwriteAuto
)

// Overwrite selects the overwrite mode.
func Overwrite(mode OverwriteMode) Option { return func(s *settings) { s.overwrite = mode } }

// --- Declarative vars ---

// Vars is the declarative form of the options, used by scripts and config
// files.
type Vars struct {
	ID          string   `yaml:"id,omitempty" json:"id,omitempty"`
	Duration    *float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
	Delay       float64  `yaml:"delay,omitempty" json:"delay,omitempty"`
	Ease        string   `yaml:"ease,omitempty" json:"ease,omitempty"`
	YoyoEase    string   `yaml:"yoyoEase,omitempty" json:"yoyoEase,omitempty"`
	Repeat      float64  `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	RepeatDelay float64  `yaml:"repeatDelay,omitempty" json:"repeatDelay,omitempty"`
	Yoyo        bool     `yaml:"yoyo,omitempty" json:"yoyo,omitempty"`
	Paused      bool     `yaml:"paused,omitempty" json:"paused,omitempty"`
	Lazy        bool     `yaml:"lazy,omitempty" json:"lazy,omitempty"`
	Position    any      `yaml:"position,omitempty" json:"position,omitempty"`
	Stagger     float64  `yaml:"stagger,omitempty" json:"stagger,omitempty"`
	StaggerFrom string   `yaml:"staggerFrom,omitempty" json:"staggerFrom,omitempty"`
	Overwrite   string   `yaml:"overwrite,omitempty" json:"overwrite,omitempty"`
	ColorSpace  string   `yaml:"colorSpace,omitempty" json:"colorSpace,omitempty"`
}

// Options converts the vars. Invalid values (a non-integral repeat, an
// unknown stagger origin) become warnings logged when the animation is
// created, and the default is kept.
func (v Vars) Options() []Option {
	var opts []Option
	if v.ID != "" {
		opts = append(opts, ID(v.ID))
	}
	if v.Delay != 0 {
		opts = append(opts, Delay(v.Delay))
	}
	if v.Ease != "" {
		opts = append(opts, Ease(v.Ease))
	}
	if v.YoyoEase != "" {
		opts = append(opts, YoyoEase(v.YoyoEase))
	}
	if v.Repeat != 0 {
		r := v.Repeat
		if r != math.Trunc(r) {
			opts = append(opts, func(s *settings) { s.warn("non-integral repeat %v ignored", r) })
		} else {
			opts = append(opts, Repeat(int(r)))
		}
	}
	if v.RepeatDelay != 0 {
		opts = append(opts, RepeatDelay(v.RepeatDelay))
	}
	if v.Yoyo {
		opts = append(opts, Yoyo(true))
	}
	if v.Paused {
		opts = append(opts, Paused(true))
	}
	if v.Lazy {
		opts = append(opts, Lazy(true))
	}
	if v.Position != nil {
		opts = append(opts, At(v.Position))
	}
	if v.Stagger != 0 || v.StaggerFrom != "" {
		from, ok := parseStaggerFrom(v.StaggerFrom)
		name := v.StaggerFrom
		if !ok {
			opts = append(opts, func(s *settings) { s.warn("unknown stagger origin %q, using start", name) })
		}
		opts = append(opts, WithStagger(Stagger{Each: v.Stagger, From: from}))
	}
	switch v.Overwrite {
	case "":
	case "all", "true":
		opts = append(opts, Overwrite(OverwriteAll))
	case "auto":
		opts = append(opts, Overwrite(OverwriteAuto))
	case "none", "false":
		opts = append(opts, Overwrite(OverwriteNone))
	default:
		mode := v.Overwrite
		opts = append(opts, func(s *settings) { s.warn("unknown overwrite mode %q ignored", mode) })
	}
	switch v.ColorSpace {
	case "", "rgb":
	case "lab":
		opts = append(opts, WithColorSpace(ColorLab))
	case "hcl":
		opts = append(opts, WithColorSpace(ColorHCL))
	default:
		space := v.ColorSpace
		opts = append(opts, func(s *settings) { s.warn("unknown color space %q, using rgb", space) })
	}
	return opts
}

// DurationOr returns the declared duration or def.
func (v Vars) DurationOr(def float64) float64 {
	if v.Duration == nil {
		return def
	}
	return *v.Duration
}
