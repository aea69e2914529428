package tempo

import "math"

// RepeatInfinite repeats an animation forever.
const RepeatInfinite = -1

// Props maps property names to end (or start, for From) values.
type Props map[string]any

// ValueFunc computes a per-target value when a tween is created. i is the
// target's index within the tween's target list.
type ValueFunc func(i int, target any) any

// --- Value kinds ---

// Kind classifies how a property value is interpolated.
type Kind uint8

const (
	// KindAuto lets the setter registry classify from the current value.
	KindAuto Kind = iota
	// KindNumber is a plain numeric value written back in its Go type.
	KindNumber
	// KindUnit is a number with a unit suffix such as "px", "deg" or "%".
	KindUnit
	// KindCompound is a string with several embedded numbers.
	KindCompound
	// KindColor is a hex color string or a colorful.Color.
	KindColor
	// KindDiscrete values snap from start to end at ratio 1.
	KindDiscrete
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindNumber:
		return "number"
	case KindUnit:
		return "unit"
	case KindCompound:
		return "compound"
	case KindColor:
		return "color"
	case KindDiscrete:
		return "discrete"
	}
	return "unknown"
}

// --- Animation state ---

// AnimationState is the lifecycle state of an animation node.
type AnimationState uint8

const (
	// StateIdle: created, playhead at the start, never rendered past it.
	StateIdle AnimationState = iota
	// StateActive: playhead inside the animation, or waiting to be reached.
	StateActive
	// StatePaused: frozen by Pause; its parent skips it.
	StatePaused
	// StateCompleted: playhead at the end (or at 0 when playing backward).
	StateCompleted
	// StateKilled: removed and inert.
	StateKilled
)

func (s AnimationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateKilled:
		return "killed"
	}
	return "unknown"
}

// --- Events ---

// EventType identifies a lifecycle callback.
type EventType uint8

const (
	EventStart EventType = iota
	EventUpdate
	EventRepeat
	EventComplete
	EventReverseComplete
	EventKill
)

func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventUpdate:
		return "update"
	case EventRepeat:
		return "repeat"
	case EventComplete:
		return "complete"
	case EventReverseComplete:
		return "reverseComplete"
	case EventKill:
		return "kill"
	}
	return "unknown"
}

// Event is passed to callbacks and to the EventSink.
type Event struct {
	Type      EventType
	Animation Animation
	// Scope is the value given with CallbackScope, nil otherwise.
	Scope any
	// TotalTime is the animation's total time when the event fired.
	TotalTime float64
	// Iteration is the animation's current iteration.
	Iteration int
}

// Callback receives lifecycle events.
type Callback func(Event)

// EventSink receives lifecycle events (start, repeat, complete, reverse
// complete, kill) of every animation owned by an engine. The ecs module
// implements it on top of a Donburi world.
type EventSink interface {
	EmitEvent(event Event)
}

// --- Helpers ---

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round4 rounds to four decimals, the precision used when numbers are
// formatted into strings.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
