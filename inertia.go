package tempo

import (
	"fmt"
	"math"
)

// InertiaOption configures Engine.Inertia.
type InertiaOption func(*inertiaConfig)

type inertiaConfig struct {
	velocity    *float64
	resistance  float64
	minDuration float64
	maxDuration float64
	bounds      *[2]float64
	snap        func(end float64) float64
	tweenOpts   []Option
}

// Velocity seeds the motion with v instead of the tracked velocity.
func Velocity(v float64) InertiaOption {
	return func(c *inertiaConfig) { c.velocity = &v }
}

// Resistance is the deceleration in units per second squared. Default 100.
func Resistance(r float64) InertiaOption {
	return func(c *inertiaConfig) {
		if r > 0 {
			c.resistance = r
		}
	}
}

// Bounds keeps the resting value inside [lo, hi].
func Bounds(lo, hi float64) InertiaOption {
	if lo > hi {
		lo, hi = hi, lo
	}
	return func(c *inertiaConfig) { c.bounds = &[2]float64{lo, hi} }
}

// DurationRange clamps the motion's duration. Default [0.2, 3].
func DurationRange(lo, hi float64) InertiaOption {
	if lo > hi {
		lo, hi = hi, lo
	}
	return func(c *inertiaConfig) {
		c.minDuration = math.Max(0, lo)
		c.maxDuration = math.Max(0, hi)
	}
}

// Snap adjusts the natural resting value, e.g. to the nearest grid cell.
func Snap(fn func(end float64) float64) InertiaOption {
	return func(c *inertiaConfig) { c.snap = fn }
}

// WithTweenOptions passes options to the generated tween.
func WithTweenOptions(opts ...Option) InertiaOption {
	return func(c *inertiaConfig) { c.tweenOpts = append(c.tweenOpts, opts...) }
}

// SnapTo returns a Snap function rounding to the nearest multiple of step.
func SnapTo(step float64) func(float64) float64 {
	return func(v float64) float64 {
		if step <= 0 {
			return v
		}
		return math.Round(v/step) * step
	}
}

// Inertia glides prop on target to rest from its current velocity under
// constant deceleration. The velocity comes from the tracker unless given
// with Velocity. A quad.out ease over d = |v|/resistance seconds covering
// v*d/2 units keeps the initial speed continuous.
func (e *Engine) Inertia(target any, prop string, opts ...InertiaOption) (*Tween, error) {
	cfg := inertiaConfig{resistance: 100, minDuration: 0.2, maxDuration: 3}
	for _, opt := range opts {
		opt(&cfg)
	}
	acc, err := e.setters.Resolve(target, prop)
	if err != nil {
		return nil, err
	}
	cur, _, ok := numeric(acc.Get(), 0)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, prop)
	}

	v := e.tracker.Velocity(target, prop)
	if cfg.velocity != nil {
		v = *cfg.velocity
	}
	d := clamp(math.Abs(v)/cfg.resistance, cfg.minDuration, cfg.maxDuration)
	end := cur + v*d/2
	natural := end
	if cfg.snap != nil {
		end = cfg.snap(end)
	}
	if cfg.bounds != nil {
		end = clamp(end, cfg.bounds[0], cfg.bounds[1])
	}
	if end != natural && v != 0 {
		// Keep the initial speed: covering Δ at constant deceleration from v
		// takes 2Δ/v.
		if t := 2 * (end - cur) / v; t > 0 {
			d = clamp(t, cfg.minDuration, cfg.maxDuration)
		}
	}

	tweenOpts := append([]Option{Ease("quad.out"), Overwrite(OverwriteAuto)}, cfg.tweenOpts...)
	return e.To(target, Props{prop: end}, d, tweenOpts...), nil
}
