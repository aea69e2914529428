package tempo

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/log"
	"github.com/tanema/gween/ease"
)

// EaseFunc maps linear progress in [0,1] to eased progress. f(0) must be 0
// and f(1) must be 1; values in between may overshoot.
type EaseFunc func(t float64) float64

// Linear is the identity ease.
func Linear(t float64) float64 { return t }

// --- Combinators ---

// Invert turns an ease-in curve into its ease-out mirror.
func Invert(in EaseFunc) EaseFunc {
	return func(t float64) float64 { return 1 - in(1-t) }
}

// InOut runs in for the first half and its mirror for the second half.
func InOut(in EaseFunc) EaseFunc {
	return func(t float64) float64 {
		if t < 0.5 {
			return in(t*2) / 2
		}
		return 1 - in((1-t)*2)/2
	}
}

// Power returns the ease-in curve t^n.
func Power(n float64) EaseFunc {
	return func(t float64) float64 { return math.Pow(t, n) }
}

// FromGween adapts a gween easing function.
func FromGween(fn ease.TweenFunc) EaseFunc {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return float64(fn(float32(t), 0, 1, 1))
	}
}

// Steps jumps in n equal increments.
func Steps(n int) EaseFunc {
	if n < 1 {
		n = 1
	}
	return func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		if t <= 0 {
			return 0
		}
		return math.Floor(t*float64(n)) / float64(n)
	}
}

// CubicBezier returns a curve matching CSS cubic-bezier(). The control points
// (x1,y1) and (x2,y2) shape a curve running from (0,0) to (1,1).
func CubicBezier(x1, y1, x2, y2 float64) EaseFunc {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		for range 8 {
			x := bezierSample(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return bezierSample(y1, y2, clamp(u, 0, 1))
			}
			dx := bezierSlope(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Newton stalled: bisect.
		lo, hi := 0.0, 1.0
		u = clamp(u, 0, 1)
		for range 20 {
			x := bezierSample(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}
		return bezierSample(y1, y2, u)
	}
}

func bezierSample(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func bezierSlope(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

const (
	springFPS      = 120
	springMaxSteps = springFPS * 10
	springRest     = 1e-4
)

// Spring samples a damped spring released from 0 toward 1 and stretches the
// motion over [0,1]. Underdamped springs (damping < 1) overshoot.
func Spring(angularFrequency, damping float64) EaseFunc {
	s := harmonica.NewSpring(harmonica.FPS(springFPS), angularFrequency, damping)
	samples := []float64{0}
	pos, vel := 0.0, 0.0
	for range springMaxSteps {
		pos, vel = s.Update(pos, vel, 1)
		samples = append(samples, pos)
		if math.Abs(pos-1) < springRest && math.Abs(vel) < springRest {
			break
		}
	}
	samples[len(samples)-1] = 1
	n := len(samples) - 1
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		x := t * float64(n)
		i := int(x)
		f := x - float64(i)
		return samples[i] + (samples[i+1]-samples[i])*f
	}
}

// --- Registry ---

// EaseRegistry maps ease names to functions. Names are case-insensitive.
type EaseRegistry struct {
	eases       map[string]EaseFunc
	names       []string
	defaultName string
	log         *log.Logger
}

// NewEaseRegistry returns a registry holding the built-in eases with "linear"
// as the default.
func NewEaseRegistry(logger *log.Logger) *EaseRegistry {
	if logger == nil {
		logger = log.Default()
	}
	r := &EaseRegistry{eases: make(map[string]EaseFunc), log: logger, defaultName: "linear"}
	r.registerBuiltins()
	return r
}

func (r *EaseRegistry) registerBuiltins() {
	r.Register("none", Linear)
	r.Register("linear", Linear)
	r.Register("power0", Linear)
	for n := 1; n <= 4; n++ {
		r.RegisterFamily("power"+strconv.Itoa(n), Power(float64(n+1)))
	}

	gweenFamilies := []struct {
		name                 string
		in, out, inOut, outIn ease.TweenFunc
	}{
		{"quad", ease.InQuad, ease.OutQuad, ease.InOutQuad, ease.OutInQuad},
		{"cubic", ease.InCubic, ease.OutCubic, ease.InOutCubic, ease.OutInCubic},
		{"quart", ease.InQuart, ease.OutQuart, ease.InOutQuart, ease.OutInQuart},
		{"quint", ease.InQuint, ease.OutQuint, ease.InOutQuint, ease.OutInQuint},
		{"sine", ease.InSine, ease.OutSine, ease.InOutSine, ease.OutInSine},
		{"expo", ease.InExpo, ease.OutExpo, ease.InOutExpo, ease.OutInExpo},
		{"circ", ease.InCirc, ease.OutCirc, ease.InOutCirc, ease.OutInCirc},
		{"elastic", ease.InElastic, ease.OutElastic, ease.InOutElastic, ease.OutInElastic},
		{"back", ease.InBack, ease.OutBack, ease.InOutBack, ease.OutInBack},
		{"bounce", ease.InBounce, ease.OutBounce, ease.InOutBounce, ease.OutInBounce},
	}
	for _, f := range gweenFamilies {
		out := FromGween(f.out)
		r.Register(f.name, out)
		r.Register(f.name+".in", FromGween(f.in))
		r.Register(f.name+".out", out)
		r.Register(f.name+".inOut", FromGween(f.inOut))
		r.Register(f.name+".outIn", FromGween(f.outIn))
	}

	r.Register("ease", CubicBezier(0.25, 0.1, 0.25, 1.0))
	r.Register("ease-in", CubicBezier(0.42, 0, 1, 1))
	r.Register("ease-out", CubicBezier(0, 0, 0.58, 1))
	r.Register("ease-in-out", CubicBezier(0.42, 0, 0.58, 1))
	r.Register("spring", Spring(6, 0.5))
}

// Register adds or replaces a named ease.
func (r *EaseRegistry) Register(name string, fn EaseFunc) {
	if fn == nil || name == "" {
		return
	}
	key := strings.ToLower(name)
	if _, ok := r.eases[key]; !ok {
		r.names = append(r.names, name)
	}
	r.eases[key] = fn
}

// RegisterFamily registers name.in (the given curve), name.out, name.inOut
// and the bare name, which resolves to the out variant.
func (r *EaseRegistry) RegisterFamily(name string, in EaseFunc) {
	out := Invert(in)
	r.Register(name, out)
	r.Register(name+".in", in)
	r.Register(name+".out", out)
	r.Register(name+".inOut", InOut(in))
}

// Lookup resolves a name, including the parametric forms steps(n) and
// cubicBezier(x1,y1,x2,y2) (also spelled cubic-bezier).
func (r *EaseRegistry) Lookup(name string) (EaseFunc, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if fn, ok := r.eases[key]; ok {
		return fn, true
	}
	return parametricEase(key)
}

// Get resolves a name, falling back to the default ease with a warning.
func (r *EaseRegistry) Get(name string) EaseFunc {
	if name == "" {
		return r.Default()
	}
	if fn, ok := r.Lookup(name); ok {
		return fn
	}
	r.log.Warn("unknown ease, using default", "ease", name, "default", r.defaultName)
	return r.Default()
}

// Default returns the ease applied when a tween names none.
func (r *EaseRegistry) Default() EaseFunc {
	if fn, ok := r.Lookup(r.defaultName); ok {
		return fn
	}
	return Linear
}

// DefaultName returns the name of the default ease.
func (r *EaseRegistry) DefaultName() string { return r.defaultName }

// SetDefault changes the default ease. Unknown names are logged and ignored.
func (r *EaseRegistry) SetDefault(name string) bool {
	if _, ok := r.Lookup(name); !ok {
		r.log.Warn("unknown default ease ignored", "ease", name)
		return false
	}
	r.defaultName = name
	return true
}

// Names returns the registered names in sorted order.
func (r *EaseRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	sort.Strings(out)
	return out
}

func parametricEase(key string) (EaseFunc, bool) {
	open := strings.IndexByte(key, '(')
	if open < 0 || !strings.HasSuffix(key, ")") {
		return nil, false
	}
	fname := key[:open]
	var args []float64
	for _, part := range strings.Split(key[open+1:len(key)-1], ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false
		}
		args = append(args, v)
	}
	switch fname {
	case "steps":
		if len(args) != 1 || args[0] < 1 {
			return nil, false
		}
		return Steps(int(args[0])), true
	case "cubicbezier", "cubic-bezier":
		if len(args) != 4 {
			return nil, false
		}
		return CubicBezier(args[0], args[1], args[2], args[3]), true
	case "spring":
		if len(args) != 2 {
			return nil, false
		}
		return Spring(args[0], args[1]), true
	}
	return nil, false
}
