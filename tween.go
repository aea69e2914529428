package tempo

import (
	"fmt"
	"math"
	"sort"
)

type tweenMode uint8

const (
	modeTo tweenMode = iota
	modeFrom
	modeFromTo
	modeSet
	modeCall
)

// Tween interpolates properties of one or more targets over its duration.
type Tween struct {
	core
	mode    tweenMode
	targets []any
	props   []*propTween

	ease     EaseFunc
	yoyoEase EaseFunc
	// each is the per-target duration; it equals the duration unless the
	// tween is staggered.
	each      float64
	overwrite OverwriteMode

	lazy        bool
	lazyPending bool
}

func (tw *Tween) base() *core {
	if tw == nil {
		return nil
	}
	return &tw.core
}

// Targets returns the tween's targets.
func (tw *Tween) Targets() []any {
	out := make([]any, len(tw.targets))
	copy(out, tw.targets)
	return out
}

// Properties returns the names of the properties the tween still animates
// on target.
func (tw *Tween) Properties(target any) []string {
	var out []string
	for _, p := range tw.props {
		if !p.dead && sameTarget(p.target, target) {
			out = append(out, p.name)
		}
	}
	return out
}

// newTween builds a tween without attaching it to a timeline. Properties that
// cannot be resolved are dropped with a warning.
func (e *Engine) newTween(mode tweenMode, targets any, from, to Props, duration float64, s *settings) *Tween {
	tw := &Tween{mode: mode}
	tw.setup(e, tw, tw, s, "tween")
	e.logSettings(tw.id, s)

	if duration < 0 || math.IsNaN(duration) {
		e.log.Warn("invalid duration rejected", "id", tw.id, "duration", duration, "using", e.cfg.DefaultDuration)
		duration = e.cfg.DefaultDuration
	}

	tw.ease = s.ease
	if tw.ease == nil {
		tw.ease = e.eases.Get(s.easeName)
	}
	if s.yoyoName != "" {
		tw.yoyoEase = e.eases.Get(s.yoyoName)
	}
	tw.lazy = s.lazy
	tw.overwrite = s.overwrite

	if mode != modeCall {
		tw.targets = flattenTargets(targets)
		keys := propKeys(from, to)
		for i, target := range tw.targets {
			for _, k := range keys {
				acc, err := e.setters.Resolve(target, k)
				if err != nil {
					e.log.Warn("property dropped", "id", tw.id, "prop", k, "target", fmt.Sprintf("%T", target), "err", err)
					continue
				}
				p := &propTween{target: target, name: k, index: i, acc: acc, space: s.colorSpace}
				p.toVal = resolveValue(to, k, i, target)
				p.fromVal = resolveValue(from, k, i, target)
				tw.props = append(tw.props, p)
			}
		}
		if len(keys) > 0 && len(tw.props) == 0 {
			e.log.Warn("no property could be resolved, tween completes immediately", "id", tw.id)
			duration = 0
		}
	}

	tw.each = duration
	maxOffset := 0.0
	if s.stagger != nil && len(tw.props) > 0 {
		offsets := s.stagger.offsets(len(tw.targets))
		for _, p := range tw.props {
			p.offset = offsets[p.index]
			maxOffset = math.Max(maxOffset, p.offset)
		}
	}
	tw.dur = duration + maxOffset
	return tw
}

func propKeys(from, to Props) []string {
	seen := make(map[string]bool, len(to)+len(from))
	var keys []string
	for _, m := range []Props{to, from} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func resolveValue(m Props, key string, i int, target any) any {
	if m == nil {
		return nil
	}
	v, ok := m[key]
	if !ok {
		return nil
	}
	if fn, ok := v.(ValueFunc); ok {
		return fn(i, target)
	}
	if fn, ok := v.(func(int, any) any); ok {
		return fn(i, target)
	}
	return v
}

// init captures start and end values. It runs on the first render and again
// after Invalidate.
func (tw *Tween) init() {
	tw.initted = true
	if tw.overwrite == OverwriteAuto {
		tw.eng.overwriteAuto(tw)
	}
	for _, p := range tw.props {
		if p.dead {
			continue
		}
		cur := p.acc.Get()
		start, end := cur, cur
		switch tw.mode {
		case modeTo, modeSet:
			if p.toVal != nil {
				end = p.toVal
			}
		case modeFrom:
			if p.fromVal != nil {
				start = p.fromVal
			}
		case modeFromTo:
			if p.fromVal != nil {
				start = p.fromVal
			}
			if p.toVal != nil {
				end = p.toVal
			}
		}
		if err := p.setup(start, end, cur); err != nil {
			tw.eng.log.Warn("property falls back to a discrete switch", "id", tw.id, "prop", p.name, "err", err)
		}
	}
}

func (tw *Tween) render(totalTime float64, suppress, force bool) {
	c := &tw.core
	if c.killed || !c.enter(totalTime, suppress, force) {
		return
	}
	defer c.leave()

	tDur := c.TotalDuration()
	beforeStart := totalTime < 0
	tt := clamp(totalTime, 0, tDur)
	pos := positionFor(tt, tDur, beforeStart)
	if c.initted && !force && !tw.lazyPending && tt == c.tTime && pos == c.pos {
		return
	}
	deferWrites := false
	if !c.initted {
		if beforeStart && !force {
			return
		}
		tw.init()
		deferWrites = tw.lazy && !force
	}

	prevTT, prevPos, prevIteration := c.tTime, c.pos, c.iteration
	c.tTime = tt
	c.time, c.iteration = c.cycle(tt)
	c.pos = pos
	if deferWrites {
		tw.lazyPending = true
		tw.eng.queueLazy(tw)
	} else {
		tw.writeProps()
	}
	c.emitStart(prevPos, suppress)
	c.emitProgress(prevPos, prevTT, prevIteration, suppress)
}

// writeProps applies the current playhead to every property.
func (tw *Tween) writeProps() {
	tw.lazyPending = false
	for _, p := range tw.props {
		p.render(tw.ratio(p.offset))
	}
}

// ratio is the eased progress of a target whose window starts at offset.
func (tw *Tween) ratio(offset float64) float64 {
	c := &tw.core
	if tw.each <= 0 {
		if c.pos == atStart || c.time < offset {
			return 0
		}
		return 1
	}
	p := clamp((c.time-offset)/tw.each, 0, 1)
	if tw.yoyoEase != nil && c.yoyo && c.iteration&1 == 1 {
		return 1 - tw.yoyoEase(1-p)
	}
	return tw.ease(p)
}

func (tw *Tween) syncDuration() {}

func (tw *Tween) setDuration(d float64) {
	if tw.dur > 0 {
		f := d / tw.dur
		tw.each *= f
		for _, p := range tw.props {
			p.offset *= f
		}
		tw.dur = d
		return
	}
	maxOffset := 0.0
	for _, p := range tw.props {
		maxOffset = math.Max(maxOffset, p.offset)
	}
	tw.each = d
	tw.dur = d + maxOffset
}

func (tw *Tween) resolveTime(position any) (float64, bool) {
	return numberPosition(position)
}

func (tw *Tween) invalidate() {
	tw.initted = false
	tw.lazyPending = false
}

func (tw *Tween) kill() {
	tw.lazyPending = false
}

// killProps stops animating the named properties of target (all properties
// when none are named). It reports whether any live property remains.
func (tw *Tween) killProps(target any, props []string) bool {
	alive := false
	for _, p := range tw.props {
		if p.dead {
			continue
		}
		if sameTarget(p.target, target) && (len(props) == 0 || contains(props, p.name)) {
			p.dead = true
			continue
		}
		alive = true
	}
	return alive
}

func (tw *Tween) hasTarget(target any) bool {
	for _, t := range tw.targets {
		if sameTarget(t, target) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
