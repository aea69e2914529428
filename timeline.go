package tempo

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Timeline sequences child animations on its own local time. Children are
// kept sorted by start time.
type Timeline struct {
	core
	children []Animation
	snap     []Animation
	labels   map[string]float64
	recent   Animation
	dirty    bool

	autoRemove        bool
	smoothChildTiming bool
}

func (tl *Timeline) base() *core {
	if tl == nil {
		return nil
	}
	return &tl.core
}

func (e *Engine) newTimeline(s *settings) *Timeline {
	tl := &Timeline{labels: make(map[string]float64)}
	tl.setup(e, tl, tl, s, "timeline")
	e.logSettings(tl.id, s)
	if s.autoRemove != nil {
		tl.autoRemove = *s.autoRemove
	}
	if s.smooth != nil {
		tl.smoothChildTiming = *s.smooth
	}
	return tl
}

// --- Children ---

// Add inserts child at position. Accepted positions: a number of seconds,
// nil (the end), "label", "label+=1", "+=1" / "-=1" (relative to the end),
// "<" / ">" (start / end of the most recently added child, optionally
// followed by an offset such as "<0.5" or ">-0.2"). An unknown label is
// created at the end. The child's delay is added to the resolved position.
func (tl *Timeline) Add(child Animation, position any) error {
	if child == nil || isNilInterface(child) {
		return ErrNilChild
	}
	if tl.killed {
		return fmt.Errorf("%w: timeline %q", ErrKilled, tl.id)
	}
	cc := child.base()
	if cc.killed {
		return fmt.Errorf("%w: %q", ErrKilled, cc.id)
	}
	if ct, ok := child.(*Timeline); ok && isAncestor(ct, tl) {
		return fmt.Errorf("%w: %q into %q", ErrCycle, ct.id, tl.id)
	}
	start, err := tl.resolvePosition(position)
	if err != nil {
		return err
	}
	cc.home = nil
	tl.insert(child, start+cc.delay)
	return nil
}

func isNilInterface(a Animation) bool {
	rv := reflect.ValueOf(a)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// isAncestor reports whether candidate is tl or one of its ancestors.
func isAncestor(candidate, tl *Timeline) bool {
	for p := tl; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// insert places child at start, detaching it from any previous parent.
func (tl *Timeline) insert(child Animation, start float64) {
	cc := child.base()
	if cc.parent != nil {
		cc.parent.detach(child)
	}
	cc.parent = tl
	cc.start = start
	i := sort.Search(len(tl.children), func(i int) bool {
		return tl.children[i].base().start > start
	})
	tl.children = append(tl.children, nil)
	copy(tl.children[i+1:], tl.children[i:])
	tl.children[i] = child
	tl.recent = child
	tl.markDirty()

	// A finished timeline that grows plays again.
	if tl.parent == nil && tl.home != nil {
		tl.reattach()
		tl.alignPlayhead(tl.tTime)
	}
	if tl.root {
		tl.eng.wake()
	}
	if tl.eng.cfg.Debug {
		debugCheckTreeDepth(tl.eng.log, child)
		debugCheckChildCount(tl.eng.log, tl)
	}
}

// detach removes child without killing it.
func (tl *Timeline) detach(child Animation) {
	for i, c := range tl.children {
		if c == child {
			copy(tl.children[i:], tl.children[i+1:])
			tl.children[len(tl.children)-1] = nil
			tl.children = tl.children[:len(tl.children)-1]
			break
		}
	}
	if cc := child.base(); cc.parent == tl {
		cc.parent = nil
	}
	if tl.recent == child {
		tl.recent = nil
	}
	tl.markDirty()
}

// reposition restores sort order after child's start time changed.
func (tl *Timeline) reposition(child Animation) {
	for i, c := range tl.children {
		if c == child {
			copy(tl.children[i:], tl.children[i+1:])
			tl.children = tl.children[:len(tl.children)-1]
			break
		}
	}
	start := child.base().start
	i := sort.Search(len(tl.children), func(i int) bool {
		return tl.children[i].base().start > start
	})
	tl.children = append(tl.children, nil)
	copy(tl.children[i+1:], tl.children[i:])
	tl.children[i] = child
	tl.markDirty()
}

// Remove detaches child from the timeline. It does not kill it.
func (tl *Timeline) Remove(child Animation) {
	if child == nil || isNilInterface(child) || child.base().parent != tl {
		return
	}
	child.base().home = nil
	tl.detach(child)
}

// Clear removes every child and label.
func (tl *Timeline) Clear() {
	for _, c := range tl.children {
		cc := c.base()
		cc.parent = nil
		cc.home = nil
	}
	clear(tl.children)
	tl.children = tl.children[:0]
	tl.labels = make(map[string]float64)
	tl.recent = nil
	tl.markDirty()
}

// Children returns a copy of the children in start-time order.
func (tl *Timeline) Children() []Animation {
	out := make([]Animation, len(tl.children))
	copy(out, tl.children)
	return out
}

// NumChildren returns the number of direct children.
func (tl *Timeline) NumChildren() int { return len(tl.children) }

// markDirty flags the duration for recompute here and in every ancestor.
func (tl *Timeline) markDirty() {
	for p := tl; p != nil && !p.root; p = p.parent {
		p.dirty = true
	}
}

func (tl *Timeline) syncDuration() {
	if tl.root {
		tl.dur = math.Inf(1)
		return
	}
	if !tl.dirty {
		return
	}
	tl.dirty = false
	end := 0.0
	for _, c := range tl.children {
		end = math.Max(end, c.base().endTime())
	}
	tl.dur = end
}

// setDuration stretches the timeline by changing its time scale.
func (tl *Timeline) setDuration(d float64) {
	cur := tl.Duration()
	if cur == 0 || d == 0 || tl.root {
		tl.eng.log.Warn("timeline duration can only be scaled between non-zero values", "id", tl.id, "duration", d)
		return
	}
	tl.SetTimeScale(tl.ts * cur / d)
}

// --- Labels ---

// AddLabel records a named time. position accepts the forms of Add.
func (tl *Timeline) AddLabel(name string, position any) error {
	if name == "" {
		return fmt.Errorf("%w: empty label name", ErrInvalidPosition)
	}
	t, err := tl.resolvePosition(position)
	if err != nil {
		return err
	}
	tl.labels[name] = t
	return nil
}

// RemoveLabel forgets a label.
func (tl *Timeline) RemoveLabel(name string) {
	delete(tl.labels, name)
}

// LabelTime returns the time of a label.
func (tl *Timeline) LabelTime(name string) (float64, bool) {
	t, ok := tl.labels[name]
	return t, ok
}

// Labels returns a copy of the label table.
func (tl *Timeline) Labels() map[string]float64 {
	out := make(map[string]float64, len(tl.labels))
	for k, v := range tl.labels {
		out[k] = v
	}
	return out
}

// --- Chaining ---

// To appends a To tween. Use At to position it; by default it goes at the end.
func (tl *Timeline) To(targets any, props Props, duration float64, opts ...Option) *Timeline {
	tl.addTween(modeTo, targets, nil, props, duration, opts)
	return tl
}

// From appends a From tween.
func (tl *Timeline) From(targets any, props Props, duration float64, opts ...Option) *Timeline {
	tl.addTween(modeFrom, targets, props, nil, duration, opts)
	return tl
}

// FromTo appends a FromTo tween.
func (tl *Timeline) FromTo(targets any, from, to Props, duration float64, opts ...Option) *Timeline {
	tl.addTween(modeFromTo, targets, from, to, duration, opts)
	return tl
}

// Set appends a zero-length tween that assigns props when reached.
func (tl *Timeline) Set(targets any, props Props, opts ...Option) *Timeline {
	tl.addTween(modeSet, targets, nil, props, 0, opts)
	return tl
}

// Call appends a zero-length callback.
func (tl *Timeline) Call(fn func(), opts ...Option) *Timeline {
	opts = append([]Option{OnComplete(func(Event) {
		if fn != nil {
			fn()
		}
	})}, opts...)
	tl.addTween(modeCall, nil, nil, nil, 0, opts)
	return tl
}

// Tween appends a To tween and returns it instead of the timeline.
func (tl *Timeline) Tween(targets any, props Props, duration float64, opts ...Option) *Tween {
	return tl.addTween(modeTo, targets, nil, props, duration, opts)
}

func (tl *Timeline) addTween(mode tweenMode, targets any, from, to Props, duration float64, opts []Option) *Tween {
	s := newSettings(opts)
	tw := tl.eng.newTween(mode, targets, from, to, duration, s)
	var pos any
	if s.hasPosition {
		pos = s.position
	}
	if err := tl.Add(tw, pos); err != nil {
		tl.eng.log.Warn("tween not added to timeline", "timeline", tl.id, "tween", tw.id, "err", err)
		return tw
	}
	tl.eng.applyOverwriteAll(tw)
	immediate := mode == modeFrom || mode == modeFromTo
	if s.immediate != nil {
		immediate = *s.immediate
	}
	if immediate {
		tw.render(0, true, true)
	}
	return tw
}

// TweenTo pauses the timeline and returns a linear tween of its time to
// position, lasting as long as the distance at the current time scale.
func (tl *Timeline) TweenTo(position any, opts ...Option) *Tween {
	target, ok := tl.resolveTime(position)
	if !ok {
		tl.eng.log.Warn("invalid tweenTo position", "id", tl.id, "position", position)
		target = tl.time
	}
	tl.Pause()
	scale := math.Abs(tl.ts)
	if scale == 0 {
		scale = 1
	}
	d := math.Abs(target-tl.time) / scale
	opts = append([]Option{EaseWith(Linear)}, opts...)
	return tl.eng.To(tl, Props{"time": target}, d, opts...)
}

// --- Render ---

func (tl *Timeline) render(totalTime float64, suppress, force bool) {
	c := &tl.core
	if c.killed || !c.enter(totalTime, suppress, force) {
		return
	}
	defer c.leave()

	tDur := c.TotalDuration()
	beforeStart := totalTime < 0
	tt := clamp(totalTime, 0, tDur)
	pos := positionFor(tt, tDur, beforeStart)
	if c.initted && !force && tt == c.tTime && pos == c.pos {
		return
	}
	first := !c.initted
	c.initted = true

	prevTT, prevPos, prevIteration, prevTime := c.tTime, c.pos, c.iteration, c.time
	time, iteration := c.cycle(tt)
	c.tTime, c.time, c.iteration, c.pos = tt, time, iteration, pos
	c.emitStart(prevPos, suppress)

	if iteration != prevIteration && !first {
		forward := tt > prevTT
		exit := c.cycleEdge(prevIteration, forward, true)
		tl.renderChildren(prevTime, exit, suppress, force)
		prevTime = c.cycleEdge(iteration, forward, false)
		tl.renderChildren(exit, prevTime, true, force)
	}
	tl.renderChildren(prevTime, time, suppress, force)
	c.emitProgress(prevPos, prevTT, prevIteration, suppress)
}

// renderChildren moves the children from local time from to local time to.
// Forward passes visit children in start order, backward passes in reverse.
func (tl *Timeline) renderChildren(from, to float64, suppress, force bool) {
	if from == to && !force {
		return
	}
	snap := append(tl.snap[:0], tl.children...)
	tl.snap = nil
	defer func() {
		clear(snap)
		tl.snap = snap[:0]
	}()

	if to >= from {
		for _, child := range snap {
			if child.base().start > to {
				break
			}
			tl.renderChild(child, to, suppress, force)
		}
		return
	}
	for i := len(snap) - 1; i >= 0; i-- {
		tl.renderChild(snap[i], to, suppress, force)
	}
}

func (tl *Timeline) renderChild(child Animation, t float64, suppress, force bool) {
	cc := child.base()
	if cc.parent != tl || cc.paused || cc.killed || cc.ts == 0 {
		return
	}
	var local float64
	if cc.ts > 0 {
		local = (t - cc.start) * cc.ts
	} else {
		local = cc.TotalDuration() + (t-cc.start)*cc.ts
	}
	cc.impl.render(local, suppress, force)
	if tl.autoRemove && cc.parent == tl && cc.finished() {
		tl.detach(child)
		cc.home = tl
	}
}

func (tl *Timeline) invalidate() {
	for _, c := range tl.children {
		c.Invalidate()
	}
}

func (tl *Timeline) kill() {}

// resolveTime resolves a seek position: a number, a label, or a label with a
// relative offset.
func (tl *Timeline) resolveTime(position any) (float64, bool) {
	if t, ok := numberPosition(position); ok {
		return t, true
	}
	s, ok := position.(string)
	if !ok {
		return 0, false
	}
	name, offset, ok := splitLabel(s)
	if !ok {
		return 0, false
	}
	t, ok := tl.labels[name]
	return t + offset, ok
}
