package tempo

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
)

// TrackOption configures one tracked property.
type TrackOption func(*trackedProp)

// Modulus wraps deltas into (-m/2, m/2], for angles (360) or radians (2π).
func Modulus(m float64) TrackOption {
	return func(p *trackedProp) { p.modulus = math.Abs(m) }
}

type trackedProp struct {
	target  any
	prop    string
	acc     Accessor
	modulus float64

	// the two most recent samples; index 1 is the newer
	values  [2]float64
	times   [2]float64
	samples int
}

func (p *trackedProp) sample(t float64) {
	v, _, ok := numeric(p.acc.Get(), 0)
	if !ok {
		return
	}
	p.values[0], p.times[0] = p.values[1], p.times[1]
	p.values[1], p.times[1] = v, t
	if p.samples < 2 {
		p.samples++
	}
}

func (p *trackedProp) velocity() float64 {
	if p.samples < 2 {
		return 0
	}
	dt := p.times[1] - p.times[0]
	if dt <= 0 {
		return 0
	}
	d := p.values[1] - p.values[0]
	if p.modulus > 0 {
		d = math.Mod(d, p.modulus)
		if d > p.modulus/2 {
			d -= p.modulus
		} else if d <= -p.modulus/2 {
			d += p.modulus
		}
	}
	return d / dt
}

// VelocityTracker samples numeric properties once per frame and reports their
// instantaneous velocity in units per second.
type VelocityTracker struct {
	ticker   *Ticker
	setters  *SetterRegistry
	log      *log.Logger
	listener *Listener
	tracks   []*trackedProp
}

func newVelocityTracker(t *Ticker, setters *SetterRegistry, logger *log.Logger) *VelocityTracker {
	vt := &VelocityTracker{ticker: t, setters: setters, log: logger}
	vt.listener = NewListener(vt.sample)
	return vt
}

// Track starts sampling prop on target. Tracking an already tracked property
// only applies the options.
func (vt *VelocityTracker) Track(target any, prop string, opts ...TrackOption) error {
	if p := vt.find(target, prop); p != nil {
		for _, opt := range opts {
			opt(p)
		}
		return nil
	}
	acc, err := vt.setters.Resolve(target, prop)
	if err != nil {
		return err
	}
	if _, _, ok := numeric(acc.Get(), 0); !ok {
		return fmt.Errorf("%w: %q", ErrNotNumeric, prop)
	}
	p := &trackedProp{target: target, prop: prop, acc: acc}
	for _, opt := range opts {
		opt(p)
	}
	p.sample(vt.ticker.Time())
	vt.tracks = append(vt.tracks, p)
	vt.ticker.AddListener(vt.listener, false)
	return nil
}

// Untrack stops sampling the named properties of target, or all of them.
func (vt *VelocityTracker) Untrack(target any, props ...string) {
	kept := vt.tracks[:0]
	for _, p := range vt.tracks {
		if sameTarget(p.target, target) && (len(props) == 0 || contains(props, p.prop)) {
			continue
		}
		kept = append(kept, p)
	}
	clear(vt.tracks[len(kept):])
	vt.tracks = kept
	if len(vt.tracks) == 0 {
		vt.ticker.Remove(vt.listener)
	}
}

// IsTracking reports whether prop on target is sampled.
func (vt *VelocityTracker) IsTracking(target any, prop string) bool {
	return vt.find(target, prop) != nil
}

// Velocity returns the latest velocity of a tracked property, 0 when it is
// not tracked or has fewer than two samples.
func (vt *VelocityTracker) Velocity(target any, prop string) float64 {
	if p := vt.find(target, prop); p != nil {
		return p.velocity()
	}
	return 0
}

func (vt *VelocityTracker) find(target any, prop string) *trackedProp {
	for _, p := range vt.tracks {
		if p.prop == prop && sameTarget(p.target, target) {
			return p
		}
	}
	return nil
}

func (vt *VelocityTracker) sample(f Frame) {
	for _, p := range vt.tracks {
		p.sample(f.Time)
	}
}
