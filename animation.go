package tempo

import (
	"math"
	"strconv"
	"strings"
)

// Animation is implemented by *Tween and *Timeline. Every node carries the
// same timing model: a start time on its parent, a duration, repeats with an
// optional repeat delay and yoyo, and a signed time scale.
type Animation interface {
	Play()
	Pause()
	Resume()
	Reverse()
	Restart(includeDelay bool)
	Seek(position any)
	Kill()
	Invalidate()

	Progress() float64
	SetProgress(ratio float64)
	TotalProgress() float64
	SetTotalProgress(ratio float64)
	Time() float64
	SetTime(t float64)
	TotalTime() float64
	SetTotalTime(t float64)
	TimeScale() float64
	SetTimeScale(s float64)
	Duration() float64
	SetDuration(d float64)
	TotalDuration() float64
	Delay() float64
	SetDelay(d float64)
	Repeat() int
	SetRepeat(n int)
	RepeatDelay() float64
	SetRepeatDelay(d float64)
	Yoyo() bool
	SetYoyo(yoyo bool)

	Iteration() int
	StartTime() float64
	State() AnimationState
	IsActive() bool
	Paused() bool
	Reversed() bool
	Parent() *Timeline
	ID() string

	base() *core
}

// renderer is the per-variant half of a node.
type renderer interface {
	render(totalTime float64, suppressEvents, force bool)
	syncDuration()
	setDuration(d float64)
	resolveTime(position any) (float64, bool)
	invalidate()
	kill()
}

type playhead uint8

const (
	atStart playhead = iota
	inside
	atEnd
)

type deferredRender struct {
	totalTime float64
	suppress  bool
	force     bool
}

// core is the timing state shared by tweens and timelines.
type core struct {
	impl renderer
	self Animation
	eng  *Engine
	id   string

	parent *Timeline
	// home is the timeline that auto-removed this node on completion; playing
	// the node again re-inserts it there.
	home *Timeline
	root bool

	start  float64
	delay  float64
	dur    float64
	repeat int
	rDelay float64
	yoyo   bool
	ts     float64
	paused bool
	killed bool

	time      float64
	tTime     float64
	iteration int
	pos       playhead
	initted   bool

	rendering bool
	replaying bool
	pending   *deferredRender

	onStart           Callback
	onUpdate          Callback
	onRepeat          Callback
	onComplete        Callback
	onReverseComplete Callback
	scope             any
}

func (c *core) setup(e *Engine, self Animation, impl renderer, s *settings, kind string) {
	c.eng = e
	c.self = self
	c.impl = impl
	c.ts = 1
	c.id = s.id
	if c.id == "" {
		c.id = e.nextID(kind)
	}
	c.delay = s.delay
	c.repeat = s.repeat
	c.rDelay = s.repeatDelay
	c.yoyo = s.yoyo
	c.paused = s.paused
	c.onStart = s.onStart
	c.onUpdate = s.onUpdate
	c.onRepeat = s.onRepeat
	c.onComplete = s.onComplete
	c.onReverseComplete = s.onReverseComplete
	c.scope = s.scope
}

// --- Identity & structure ---

func (c *core) ID() string           { return c.id }
func (c *core) Parent() *Timeline    { return c.parent }
func (c *core) StartTime() float64   { return c.start }
func (c *core) Delay() float64       { return c.delay }
func (c *core) Repeat() int          { return c.repeat }
func (c *core) RepeatDelay() float64 { return c.rDelay }
func (c *core) Yoyo() bool           { return c.yoyo }
func (c *core) SetYoyo(yoyo bool)    { c.yoyo = yoyo }
func (c *core) Time() float64        { return c.time }
func (c *core) TotalTime() float64   { return c.tTime }
func (c *core) Iteration() int       { return c.iteration }
func (c *core) TimeScale() float64   { return c.ts }
func (c *core) Reversed() bool       { return c.ts < 0 }
func (c *core) Paused() bool         { return c.paused }

// setStart moves the node on its parent and keeps the parent sorted.
func (c *core) setStart(start float64) {
	if start == c.start {
		return
	}
	c.start = start
	if c.parent != nil {
		c.parent.reposition(c.self)
	}
}

// changed tells the parent chain that this node's extent may have changed.
func (c *core) changed() {
	if c.parent != nil {
		c.parent.markDirty()
	}
}

// --- Durations ---

// Duration returns the length of one iteration.
func (c *core) Duration() float64 {
	c.impl.syncDuration()
	return c.dur
}

// SetDuration changes the length of one iteration. Negative values are
// rejected and the prior duration kept.
func (c *core) SetDuration(d float64) {
	if d < 0 || math.IsNaN(d) {
		c.eng.log.Warn("invalid duration rejected", "id", c.id, "duration", d, "kept", c.dur)
		return
	}
	c.impl.setDuration(d)
	c.changed()
}

// TotalDuration is duration*(repeat+1) + repeatDelay*repeat, or +Inf for
// infinite repeats.
func (c *core) TotalDuration() float64 {
	d := c.Duration()
	switch {
	case c.repeat < 0:
		if d+c.rDelay <= 0 {
			return 0
		}
		return math.Inf(1)
	case c.repeat == 0:
		return d
	}
	return d*float64(c.repeat+1) + c.rDelay*float64(c.repeat)
}

// SetDelay shifts the node's start time by the change in delay.
func (c *core) SetDelay(d float64) {
	if d < 0 || math.IsNaN(d) {
		c.eng.log.Warn("invalid delay rejected", "id", c.id, "delay", d, "kept", c.delay)
		return
	}
	shift := d - c.delay
	c.delay = d
	c.setStart(c.start + shift)
}

// SetRepeat sets the repeat count; RepeatInfinite repeats forever. Counts
// below RepeatInfinite are rejected.
func (c *core) SetRepeat(n int) {
	if n < RepeatInfinite {
		c.eng.log.Warn("invalid repeat rejected", "id", c.id, "repeat", n, "kept", c.repeat)
		return
	}
	c.repeat = n
	c.changed()
}

func (c *core) SetRepeatDelay(d float64) {
	if d < 0 || math.IsNaN(d) {
		c.eng.log.Warn("invalid repeat delay rejected", "id", c.id, "repeatDelay", d, "kept", c.rDelay)
		return
	}
	c.rDelay = d
	c.changed()
}

// endTime is where the node ends on its parent's timeline.
func (c *core) endTime() float64 {
	scale := math.Abs(c.ts)
	if scale == 0 {
		scale = 1
	}
	return c.start + c.TotalDuration()/scale
}

// --- Time mapping ---

// cycle folds a clamped total time into local time and iteration. A total
// time exactly on a cycle boundary belongs to the end of the earlier
// iteration. Odd yoyo iterations mirror local time.
func (c *core) cycle(tt float64) (float64, int) {
	dur := c.dur
	if c.repeat == 0 {
		return math.Min(tt, dur), 0
	}
	period := dur + c.rDelay
	if period <= 0 {
		return 0, 0
	}
	iteration := int(math.Floor(tt / period))
	t := tt - float64(iteration)*period
	if iteration > 0 && t == 0 {
		iteration--
		t = dur
	}
	if c.repeat > 0 && iteration > c.repeat {
		iteration = c.repeat
		t = dur
	}
	t = clamp(t, 0, dur)
	if c.yoyo && iteration&1 == 1 {
		t = dur - t
	}
	return t, iteration
}

// cycleEdge is the local time at which iteration is entered or exited when
// moving in the given direction.
func (c *core) cycleEdge(iteration int, forward, exiting bool) float64 {
	t := 0.0
	if forward == exiting {
		t = c.dur
	}
	if c.yoyo && iteration&1 == 1 {
		t = c.dur - t
	}
	return t
}

func positionFor(tt, tDur float64, beforeStart bool) playhead {
	switch {
	case tDur == 0:
		if beforeStart {
			return atStart
		}
		return atEnd
	case tt <= 0:
		return atStart
	case tt >= tDur:
		return atEnd
	}
	return inside
}

// finished reports whether the playhead rests at the end it is moving toward.
func (c *core) finished() bool {
	return (c.pos == atEnd && c.ts > 0) || (c.pos == atStart && c.ts < 0 && c.initted)
}

// --- Getters & setters in time units ---

// Progress is the local time over the duration, in [0,1]. On mirrored yoyo
// iterations it reports the mirrored local time.
func (c *core) Progress() float64 {
	d := c.Duration()
	if d > 0 {
		return math.Min(1, c.time/d)
	}
	if c.pos == atEnd {
		return 1
	}
	return 0
}

// SetProgress seeks within the current iteration.
func (c *core) SetProgress(ratio float64) {
	d := c.Duration()
	if d == 0 {
		c.seekZero(ratio)
		return
	}
	c.SetTime(clamp(ratio, 0, 1) * d)
}

func (c *core) TotalProgress() float64 {
	tDur := c.TotalDuration()
	switch {
	case math.IsInf(tDur, 1):
		return 0
	case tDur > 0:
		return c.tTime / tDur
	case c.pos == atEnd:
		return 1
	}
	return 0
}

func (c *core) SetTotalProgress(ratio float64) {
	tDur := c.TotalDuration()
	switch {
	case math.IsInf(tDur, 1):
		c.eng.log.Warn("total progress of an infinitely repeating animation cannot be set", "id", c.id)
	case tDur == 0:
		c.seekZero(ratio)
	default:
		c.SetTotalTime(clamp(ratio, 0, 1) * tDur)
	}
}

// seekZero renders a zero-length node on one side of its only instant.
func (c *core) seekZero(ratio float64) {
	if ratio > 0 {
		c.SetTotalTime(0)
		return
	}
	if c.killed {
		return
	}
	c.reattach()
	c.impl.render(-1e-9, false, false)
}

// SetTime seeks to local time t within the current iteration.
func (c *core) SetTime(t float64) {
	d := c.Duration()
	t = clamp(t, 0, d)
	if c.yoyo && c.iteration&1 == 1 {
		t = d - t
	}
	c.SetTotalTime(float64(c.iteration)*(d+c.rDelay) + t)
}

// SetTotalTime seeks to total time t and renders.
func (c *core) SetTotalTime(t float64) {
	c.seek(t, false)
}

// Seek moves the playhead to a time, or for timelines also to a label or a
// relative position such as "intro+=0.5".
func (c *core) Seek(position any) {
	t, ok := c.impl.resolveTime(position)
	if !ok {
		c.eng.log.Warn("invalid seek position ignored", "id", c.id, "position", position)
		return
	}
	c.SetTotalTime(t)
}

func (c *core) seek(tt float64, suppress bool) {
	if c.killed || math.IsNaN(tt) {
		return
	}
	c.reattach()
	c.alignPlayhead(tt)
	c.impl.render(tt, suppress, false)
}

// alignPlayhead moves the start time so that the parent's current time maps
// onto tt. Only parents with smooth child timing re-align.
func (c *core) alignPlayhead(tt float64) {
	p := c.parent
	if p == nil || !p.smoothChildTiming || c.ts == 0 {
		return
	}
	var offset float64
	if c.ts > 0 {
		offset = tt / c.ts
	} else {
		offset = (c.TotalDuration() - tt) / -c.ts
	}
	if math.IsInf(offset, 0) || math.IsNaN(offset) {
		return
	}
	c.setStart(p.time - offset)
}

// --- Playback ---

// Play resumes playback in the forward direction.
func (c *core) Play() {
	if c.killed {
		return
	}
	if c.ts < 0 {
		c.SetTimeScale(-c.ts)
	}
	c.unpause()
}

func (c *core) Pause() {
	if c.killed {
		return
	}
	c.paused = true
}

// Resume continues in the current direction from the frozen playhead.
func (c *core) Resume() {
	if c.killed {
		return
	}
	c.unpause()
}

func (c *core) unpause() {
	c.paused = false
	c.reattach()
	c.alignPlayhead(c.tTime)
}

// Reverse flips the direction of playback and resumes.
func (c *core) Reverse() {
	if c.killed {
		return
	}
	c.SetTimeScale(-c.ts)
	c.unpause()
}

// Restart rewinds to the start (or to before the delay) and plays forward.
func (c *core) Restart(includeDelay bool) {
	if c.killed {
		return
	}
	if c.ts < 0 {
		c.ts = -c.ts
		c.changed()
	}
	c.paused = false
	tt := 0.0
	if includeDelay {
		tt = -c.delay
	}
	c.seek(tt, true)
}

// SetTimeScale changes the playback rate. Negative rates play backward. The
// playhead stays where it is.
func (c *core) SetTimeScale(s float64) {
	if c.killed || math.IsNaN(s) || s == c.ts {
		return
	}
	tt := c.tTime
	c.ts = s
	c.reattach()
	c.alignPlayhead(tt)
	c.changed()
}

// Kill removes the node from its parent and makes it inert.
func (c *core) Kill() {
	if c.killed {
		return
	}
	if c.parent != nil {
		c.parent.detach(c.self)
	}
	c.killed = true
	c.home = nil
	c.pending = nil
	c.impl.kill()
	c.emit(EventKill)
}

// Invalidate clears recorded start values so they are captured again on the
// next render.
func (c *core) Invalidate() {
	c.impl.invalidate()
}

// reattach puts a node that was auto-removed on completion back into the
// timeline it finished in.
func (c *core) reattach() {
	if c.parent != nil || c.home == nil || c.killed {
		return
	}
	h := c.home
	c.home = nil
	h.insert(c.self, c.start)
}

// --- State ---

func (c *core) State() AnimationState {
	switch {
	case c.killed:
		return StateKilled
	case c.paused:
		return StatePaused
	case c.finished():
		return StateCompleted
	case c.pos == atStart && c.ts >= 0:
		return StateIdle
	}
	return StateActive
}

// IsActive reports whether the playhead is inside the node and it is playing.
func (c *core) IsActive() bool {
	return !c.killed && !c.paused && c.pos == inside
}

// --- Render guard ---

// enter marks the node as rendering. A render requested while one is in
// progress is queued and applied once when the outer render returns.
func (c *core) enter(tt float64, suppress, force bool) bool {
	if c.rendering {
		c.pending = &deferredRender{totalTime: tt, suppress: suppress, force: force}
		return false
	}
	c.rendering = true
	return true
}

func (c *core) leave() {
	c.rendering = false
	p := c.pending
	c.pending = nil
	if p == nil || c.killed {
		return
	}
	if c.replaying {
		c.eng.log.Debug("nested render dropped", "id", c.id, "totalTime", p.totalTime)
		return
	}
	c.replaying = true
	c.impl.render(p.totalTime, p.suppress, p.force)
	c.replaying = false
}

// --- Events ---

func (c *core) emitStart(prev playhead, suppress bool) {
	if !suppress && prev == atStart && c.pos != atStart {
		c.fire(EventStart, c.onStart)
	}
}

func (c *core) emitProgress(prev playhead, prevTT float64, prevIteration int, suppress bool) {
	if suppress {
		return
	}
	if c.tTime != prevTT || c.pos != prev {
		c.fire(EventUpdate, c.onUpdate)
	}
	if c.iteration != prevIteration {
		c.fire(EventRepeat, c.onRepeat)
	}
	if c.pos == atEnd && prev != atEnd {
		c.fire(EventComplete, c.onComplete)
	}
	if c.pos == atStart && prev != atStart {
		c.fire(EventReverseComplete, c.onReverseComplete)
	}
}

func (c *core) event(typ EventType) Event {
	return Event{Type: typ, Animation: c.self, Scope: c.scope, TotalTime: c.tTime, Iteration: c.iteration}
}

func (c *core) fire(typ EventType, cb Callback) {
	if cb != nil {
		ev := c.event(typ)
		safeCall(c.eng.log, "on"+typ.String()+" "+c.id, func() { cb(ev) })
	}
	if typ != EventUpdate {
		c.emit(typ)
	}
}

func (c *core) emit(typ EventType) {
	if c.root || c.eng.sink == nil {
		return
	}
	ev := c.event(typ)
	safeCall(c.eng.log, "event sink", func() { c.eng.sink.EmitEvent(ev) })
}

// --- Positions ---

// parseOffset reads a plain or relative number: "1.5", "+=1", "-=0.5".
func parseOffset(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if op, rest, ok := splitRelative(s); ok {
		v, err := strconv.ParseFloat(rest, 64)
		if err != nil || op == '*' {
			return 0, false
		}
		if op == '-' {
			v = -v
		}
		return v, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// numberPosition resolves absolute numeric positions.
func numberPosition(position any) (float64, bool) {
	if f, ok := toFloat(position); ok {
		return f, true
	}
	if s, ok := position.(string); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return v, err == nil
	}
	return 0, false
}
