package tempo

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSpace selects how KindColor values are blended.
type ColorSpace uint8

const (
	ColorRGB ColorSpace = iota
	ColorLab
	ColorHCL
)

// propTween interpolates one property of one target. Values at ratio 0 and 1
// are written verbatim from startRaw/endRaw.
type propTween struct {
	target any
	name   string
	index  int
	acc    Accessor

	// value given by the caller, resolved at creation (ValueFunc applied)
	toVal   any
	fromVal any

	kind     Kind
	startRaw any
	endRaw   any

	// numeric and unit kinds
	start, change float64
	unit          string
	asString      bool
	write         func(float64) any

	// compound kind
	tmpl         compound
	starts, ends []float64

	// color kind
	c0, c1   colorful.Color
	space    ColorSpace
	colorHex bool

	// stagger offset of this target within the tween
	offset float64
	dead   bool
}

// setup captures start and end values. start and end may be relative
// strings; they resolve against current.
func (p *propTween) setup(start, end, current any) error {
	kind := p.acc.Kind
	if kind == KindAuto {
		kind = classify(current)
	}
	p.kind = kind
	switch kind {
	case KindNumber, KindUnit:
		if err := p.setupNumeric(start, end, current); err != nil {
			p.setupDiscrete(start, end, current)
			return err
		}
	case KindCompound:
		if err := p.setupCompound(start, end, current); err != nil {
			p.setupDiscrete(start, end, current)
			return err
		}
	case KindColor:
		if err := p.setupColor(start, end, current); err != nil {
			p.setupDiscrete(start, end, current)
			return err
		}
	default:
		p.setupDiscrete(start, end, current)
	}
	return nil
}

// numeric parses v as a number, optionally with a unit or a relative prefix.
func numeric(v any, base float64) (float64, string, bool) {
	if f, ok := toFloat(v); ok {
		return f, "", true
	}
	s, ok := v.(string)
	if !ok {
		return 0, "", false
	}
	op, rest, rel := splitRelative(s)
	f, unit, ok := splitUnit(rest)
	if !ok {
		return 0, "", false
	}
	if rel {
		f = applyRelative(op, base, f)
	}
	return f, unit, true
}

func (p *propTween) setupNumeric(start, end, current any) error {
	base, curUnit, ok := numeric(current, 0)
	if !ok {
		return fmt.Errorf("%w: %q current value %v", ErrNotNumeric, p.name, current)
	}
	s, sUnit, ok := numeric(start, base)
	if !ok {
		return fmt.Errorf("%w: %q start value %v", ErrNotNumeric, p.name, start)
	}
	e, eUnit, ok := numeric(end, base)
	if !ok {
		return fmt.Errorf("%w: %q end value %v", ErrNotNumeric, p.name, end)
	}
	p.start, p.change = s, e-s
	p.unit = firstNonEmpty(eUnit, sUnit, curUnit, p.acc.Unit)

	_, p.asString = current.(string)
	if p.asString {
		p.write = func(v float64) any { return formatNumber(v) + p.unit }
		p.startRaw = rawOrFormat(start, s, p.unit, p.write)
		p.endRaw = rawOrFormat(end, e, p.unit, p.write)
		return nil
	}
	p.write = numberWriter(current)
	p.startRaw = p.write(s)
	p.endRaw = p.write(e)
	return nil
}

// rawOrFormat keeps an absolute string value that already carries the unit,
// so ratio 0 and 1 write exactly what the caller passed.
func rawOrFormat(v any, f float64, unit string, write func(float64) any) any {
	if s, ok := v.(string); ok {
		if _, _, rel := splitRelative(s); !rel {
			if _, u, ok := splitUnit(s); ok && u == unit {
				return s
			}
		}
	}
	return write(f)
}

func (p *propTween) setupCompound(start, end, current any) error {
	ss, ok1 := start.(string)
	es, ok2 := end.(string)
	if !ok1 || !ok2 {
		return fmt.Errorf("tempo: %q compound values must be strings", p.name)
	}
	a, b := parseCompound(ss), parseCompound(es)
	if len(a.nums) != len(b.nums) {
		return fmt.Errorf("tempo: %q compound values have %d and %d numbers", p.name, len(a.nums), len(b.nums))
	}
	p.tmpl = b
	p.starts, p.ends = a.nums, b.nums
	p.startRaw, p.endRaw = ss, es
	return nil
}

func (p *propTween) setupColor(start, end, current any) error {
	c0, ok := parseColor(start)
	if !ok {
		return fmt.Errorf("tempo: %q start value %v is not a color", p.name, start)
	}
	c1, ok := parseColor(end)
	if !ok {
		return fmt.Errorf("tempo: %q end value %v is not a color", p.name, end)
	}
	p.c0, p.c1 = c0, c1
	_, p.colorHex = current.(string)
	p.startRaw = colorRaw(start, c0, p.colorHex)
	p.endRaw = colorRaw(end, c1, p.colorHex)
	return nil
}

func colorRaw(v any, c colorful.Color, hex bool) any {
	if hex {
		if s, ok := v.(string); ok {
			return s
		}
		return c.Hex()
	}
	return c
}

func (p *propTween) setupDiscrete(start, end, current any) {
	p.kind = KindDiscrete
	p.startRaw = start
	p.endRaw = end
	if s, ok := end.(string); ok {
		if _, _, rel := splitRelative(s); rel {
			p.endRaw = current
		}
	}
}

// render writes the value for an eased ratio.
func (p *propTween) render(ratio float64) {
	if p.dead {
		return
	}
	switch {
	case ratio == 0:
		p.acc.Set(p.startRaw)
		return
	case ratio == 1:
		p.acc.Set(p.endRaw)
		return
	}
	switch p.kind {
	case KindNumber, KindUnit:
		p.acc.Set(p.write(p.start + p.change*ratio))
	case KindCompound:
		nums := make([]float64, len(p.starts))
		for i := range nums {
			nums[i] = p.starts[i] + (p.ends[i]-p.starts[i])*ratio
		}
		p.acc.Set(p.tmpl.format(nums))
	case KindColor:
		c := p.blend(ratio)
		if p.colorHex {
			p.acc.Set(c.Clamped().Hex())
		} else {
			p.acc.Set(c)
		}
	default:
		if ratio < 1 {
			p.acc.Set(p.startRaw)
		} else {
			p.acc.Set(p.endRaw)
		}
	}
}

func (p *propTween) blend(ratio float64) colorful.Color {
	switch p.space {
	case ColorLab:
		return p.c0.BlendLab(p.c1, ratio)
	case ColorHCL:
		return p.c0.BlendHcl(p.c1, ratio)
	}
	return p.c0.BlendRgb(p.c1, ratio)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
