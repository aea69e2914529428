package tempo

import (
	"errors"
	"testing"
)

func TestTimelineSequence(t *testing.T) {
	e := quietEngine()
	a, b := &sprite{}, &sprite{}
	tl := e.Timeline()
	tl.To(a, Props{"X": 100}, 1).To(b, Props{"X": 100}, 1)

	kids := tl.Children()
	if len(kids) != 2 || kids[0].StartTime() != 0 || kids[1].StartTime() != 1 {
		t.Fatalf("children start at %v, %v", kids[0].StartTime(), kids[1].StartTime())
	}
	if tl.Duration() != 2 {
		t.Errorf("Duration = %v, want 2", tl.Duration())
	}
	advance(e, 6, 0.25)
	if a.X != 100 || b.X != 50 {
		t.Errorf("a.X, b.X = %v, %v; want 100, 50", a.X, b.X)
	}
}

func TestTimelineSharedStart(t *testing.T) {
	e := quietEngine()
	a := map[string]any{"opacity": 1.0}
	b := map[string]any{"opacity": 1.0}
	tl := e.Timeline(Paused(true))
	tl.To(a, Props{"opacity": 0}, 1).To(b, Props{"opacity": 0}, 1, At("<"))

	for _, c := range tl.Children() {
		if c.StartTime() != 0 {
			t.Errorf("%s starts at %v, want 0", c.ID(), c.StartTime())
		}
	}
	tl.SetTotalTime(0.5)
	if a["opacity"] != 0.5 || b["opacity"] != 0.5 {
		t.Errorf("opacity = %v, %v; want 0.5, 0.5", a["opacity"], b["opacity"])
	}
}

func TestTimelineNesting(t *testing.T) {
	e := quietEngine()
	a, b := &sprite{}, &sprite{}
	parent := e.Timeline(Paused(true))
	parent.To(a, Props{"X": 1}, 3)

	child := e.Timeline()
	child.To(b, Props{"X": 10}, 2)
	if err := parent.Add(child, "+=2"); err != nil {
		t.Fatal(err)
	}
	if child.StartTime() != 5 || child.Parent() != parent {
		t.Fatalf("child start = %v, parent = %v", child.StartTime(), child.Parent())
	}
	if parent.Duration() != 7 {
		t.Errorf("parent Duration = %v, want 7", parent.Duration())
	}

	parent.SetTotalTime(4)
	if child.TotalTime() != 0 || b.X != 0 {
		t.Errorf("before the child starts: local %v, X %v", child.TotalTime(), b.X)
	}
	parent.SetTotalTime(6)
	if child.TotalTime() != 1 || b.X != 5 {
		t.Errorf("local time = %v, X = %v; want 1, 5", child.TotalTime(), b.X)
	}
}

func TestResolvePosition(t *testing.T) {
	e := quietEngine()
	tl := e.Timeline(Paused(true))
	tl.To(&sprite{}, Props{"X": 1}, 2, At(1))

	tests := []struct {
		pos  any
		want float64
	}{
		{nil, 3},
		{"", 3},
		{0.5, 0.5},
		{2, 2},
		{"+=1", 4},
		{"-=0.5", 2.5},
		{"<", 1},
		{">", 3},
		{"<0.5", 1.5},
		{">-1", 2},
		{"2.5", 2.5},
		{"intro", 3},
		{"intro+=1", 4},
		{"intro-=0.5", 2.5},
	}
	for _, tt := range tests {
		got, err := tl.resolvePosition(tt.pos)
		if err != nil {
			t.Errorf("%v: %v", tt.pos, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v: got %v, want %v", tt.pos, got, tt.want)
		}
	}
	if at, ok := tl.LabelTime("intro"); !ok || at != 3 {
		t.Errorf("unknown label not created at the end: %v, %v", at, ok)
	}

	for _, bad := range []any{"<abc", "+=x", struct{}{}} {
		if _, err := tl.resolvePosition(bad); !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("%v: err = %v, want ErrInvalidPosition", bad, err)
		}
	}
}

func TestTimelineLabels(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline(Paused(true))
	tl.To(s, Props{"X": 100}, 2)
	if err := tl.AddLabel("mid", 1); err != nil {
		t.Fatal(err)
	}
	if err := tl.AddLabel("", 1); err == nil {
		t.Error("empty label accepted")
	}

	tl.Seek("mid+=0.5")
	if tl.TotalTime() != 1.5 || s.X != 75 {
		t.Errorf("TotalTime, X = %v, %v; want 1.5, 75", tl.TotalTime(), s.X)
	}
	tl.Seek("nowhere")
	if tl.TotalTime() != 1.5 {
		t.Error("unknown label moved the playhead")
	}

	tw := tl.Tween(&sprite{}, Props{"Y": 1}, 1, At("mid"))
	if tw.StartTime() != 1 {
		t.Errorf("tween at label starts at %v, want 1", tw.StartTime())
	}

	labels := tl.Labels()
	labels["mid"] = 99
	if at, _ := tl.LabelTime("mid"); at != 1 {
		t.Error("Labels returned the live table")
	}
	tl.RemoveLabel("mid")
	if _, ok := tl.LabelTime("mid"); ok {
		t.Error("label not removed")
	}
}

func TestTimelineAddErrors(t *testing.T) {
	e := quietEngine()
	outer := e.Timeline()
	inner := e.Timeline()

	if err := outer.Add(nil, 0); !errors.Is(err, ErrNilChild) {
		t.Errorf("nil: %v", err)
	}
	var nilTween *Tween
	if err := outer.Add(nilTween, 0); !errors.Is(err, ErrNilChild) {
		t.Errorf("typed nil: %v", err)
	}
	if err := outer.Add(outer, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("self: %v", err)
	}
	if err := outer.Add(inner, 0); err != nil {
		t.Fatal(err)
	}
	if err := inner.Add(outer, 0); !errors.Is(err, ErrCycle) {
		t.Errorf("ancestor: %v", err)
	}

	dead := e.To(&sprite{}, Props{"X": 1}, 1)
	dead.Kill()
	if err := outer.Add(dead, 0); !errors.Is(err, ErrKilled) {
		t.Errorf("killed child: %v", err)
	}
	if err := outer.Add(e.To(&sprite{}, Props{"X": 1}, 1), "<abc"); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("bad position: %v", err)
	}
}

func TestTimelineReverseSymmetry(t *testing.T) {
	e := quietEngine()
	build := func() *Timeline {
		tl := e.Timeline()
		tl.To(&sprite{}, Props{"X": 100}, 2)
		return tl
	}
	forward := build()
	backward := build()
	backward.SetTotalProgress(1)
	backward.Reverse()

	for range 5 {
		e.Tick(0.25)
		if sum := forward.Progress() + backward.Progress(); !near(sum, 1) {
			t.Fatalf("progress %v + %v != 1", forward.Progress(), backward.Progress())
		}
	}
	if forward.Progress() != 0.625 {
		t.Errorf("forward progress = %v, want 0.625", forward.Progress())
	}
}

func TestTimelineRepeatYoyo(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	repeats := 0
	tl := e.Timeline(Repeat(1), Yoyo(true), OnRepeat(func(Event) { repeats++ }))
	tl.To(s, Props{"X": 100}, 1)
	if tl.TotalDuration() != 2 {
		t.Fatalf("TotalDuration = %v, want 2", tl.TotalDuration())
	}

	want := []float64{50, 100, 50, 0}
	for i, w := range want {
		e.Tick(0.5)
		if s.X != w {
			t.Errorf("frame %d: X = %v, want %v", i, s.X, w)
		}
	}
	if repeats != 1 {
		t.Errorf("repeats = %d, want 1", repeats)
	}
}

func TestTimelineSeekIntoSecondIteration(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline(Repeat(1), Yoyo(true), Paused(true))
	tl.To(s, Props{"X": 100}, 1)
	tl.SetTotalTime(1.25)
	if tl.Iteration() != 1 || tl.Time() != 0.75 || s.X != 75 {
		t.Errorf("iteration, time, X = %d, %v, %v; want 1, 0.75, 75", tl.Iteration(), tl.Time(), s.X)
	}
}

func TestParentCommitsTimeBeforeChildren(t *testing.T) {
	e := quietEngine()
	tl := e.Timeline()
	seen := -1.0
	tl.To(&sprite{}, Props{"X": 1}, 1, OnStart(func(Event) { seen = tl.TotalTime() }))
	e.Tick(0.25)
	if seen != 0.25 {
		t.Errorf("parent time seen by child = %v, want 0.25", seen)
	}
}

func TestChildOrderFollowsDirection(t *testing.T) {
	e := quietEngine()
	tl := e.Timeline(Paused(true))
	var order []string
	mark := func(name string) Option {
		return OnReverseComplete(func(Event) { order = append(order, name+"-") })
	}
	for i, name := range []string{"a", "b", "c"} {
		tl.Call(func() { order = append(order, name) }, At(float64(i)*0.5+0.5), mark(name))
	}

	tl.SetTotalTime(2)
	tl.SetTotalTime(0)
	want := []string{"a", "b", "c", "c-", "b-", "a-"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCallbackKillsLaterSibling(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline(Paused(true))
	var victim *Tween
	tl.Call(func() { victim.Kill() }, At(1))
	victim = tl.Tween(s, Props{"X": 100}, 1, At(1))

	tl.SetTotalTime(1.5)
	if victim.State() != StateKilled || s.X != 0 {
		t.Errorf("state, X = %v, %v; want killed, 0", victim.State(), s.X)
	}
	if tl.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", tl.NumChildren())
	}
}

func TestAutoRemoveChildren(t *testing.T) {
	e := quietEngine()
	tl := e.Timeline(AutoRemoveChildren(true))
	tl.To(&sprite{}, Props{"X": 1}, 0.5).To(&sprite{}, Props{"X": 1}, 1)
	e.Tick(0.75)
	if tl.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", tl.NumChildren())
	}
}

func TestRemoveAndClear(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline()
	tw := tl.Tween(s, Props{"X": 100}, 1)
	tl.Remove(tw)
	if tw.Parent() != nil || tl.NumChildren() != 0 {
		t.Fatal("Remove did not detach")
	}
	if tw.State() == StateKilled {
		t.Error("Remove killed the child")
	}

	tl.To(s, Props{"Y": 1}, 1).To(s, Props{"Y": 2}, 1)
	_ = tl.AddLabel("x", 1)
	tl.Clear()
	if tl.NumChildren() != 0 || len(tl.Labels()) != 0 || tl.Duration() != 0 {
		t.Errorf("Clear left %d children, %d labels, duration %v", tl.NumChildren(), len(tl.Labels()), tl.Duration())
	}
}

func TestTimelineKill(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline()
	tl.To(s, Props{"X": 100}, 1)
	e.Tick(0.5)
	tl.Kill()
	advance(e, 2, 0.25)
	if s.X != 50 || tl.State() != StateKilled {
		t.Errorf("X, State = %v, %v; want 50, killed", s.X, tl.State())
	}
	if err := tl.Add(e.To(s, Props{"Y": 1}, 1), nil); !errors.Is(err, ErrKilled) {
		t.Errorf("Add on killed timeline: %v", err)
	}
}

func TestTweenTo(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline()
	tl.To(s, Props{"X": 100}, 2)
	tw := tl.TweenTo(1)
	if !tl.Paused() || tw.Duration() != 1 {
		t.Fatalf("paused = %v, duration = %v", tl.Paused(), tw.Duration())
	}
	advance(e, 2, 0.5)
	if tl.Time() != 1 || s.X != 50 {
		t.Errorf("time, X = %v, %v; want 1, 50", tl.Time(), s.X)
	}
}

func TestTimelineSetDurationScalesTime(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline()
	tl.To(s, Props{"X": 100}, 2)
	tl.SetDuration(1)
	if tl.TimeScale() != 2 {
		t.Fatalf("TimeScale = %v, want 2", tl.TimeScale())
	}
	e.Tick(0.5)
	if s.X != 50 {
		t.Errorf("X = %v, want 50", s.X)
	}
}

func TestFinishedTimelineGrowsAgain(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline()
	e.Tick(0.25)
	if tl.Parent() != nil {
		t.Fatal("empty timeline was not removed after completing")
	}
	tl.To(s, Props{"X": 100}, 1)
	if tl.Parent() != e.Root() {
		t.Fatal("growing timeline not re-attached")
	}
	e.Tick(0.5)
	if s.X != 50 {
		t.Errorf("X = %v, want 50", s.X)
	}
}

func TestTimelineAnimatesItsProgress(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	tl := e.Timeline(Paused(true))
	tl.To(s, Props{"X": 100}, 1)
	e.To(tl, Props{"progress": 1}, 1)
	e.Tick(0.25)
	if s.X != 25 {
		t.Errorf("X = %v, want 25", s.X)
	}
}
