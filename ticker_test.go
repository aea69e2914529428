package tempo

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func quietTicker(src TimeSource) *Ticker {
	return NewTicker(src, NewLogger(io.Discard, "error"))
}

func TestTickerStartsAsleep(t *testing.T) {
	tk := quietTicker(nil)
	if tk.Awake() {
		t.Fatal("new ticker is awake")
	}
	if tk.Advance(0.1) {
		t.Error("sleeping ticker delivered a frame")
	}
	tk.Add(func(Frame) {})
	if !tk.Awake() {
		t.Error("Add did not wake the ticker")
	}
}

func TestTickerAdvance(t *testing.T) {
	tk := quietTicker(nil)
	var frames []Frame
	tk.Add(func(f Frame) { frames = append(frames, f) })

	tk.Advance(0.25)
	tk.Advance(0.25)
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[1].Time != 0.5 || frames[1].Delta != 0.25 || frames[1].Index != 2 {
		t.Errorf("frame = %+v", frames[1])
	}
	if tk.Frame() != 2 || tk.Time() != 0.5 {
		t.Errorf("Frame, Time = %d, %v", tk.Frame(), tk.Time())
	}
}

func TestTickerFPS(t *testing.T) {
	tk := quietTicker(nil)
	var frames []Frame
	tk.Add(func(f Frame) { frames = append(frames, f) })
	tk.SetFPS(8)

	for range 3 {
		tk.Advance(0.0625)
	}
	if len(frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(frames))
	}
	if frames[0].Delta != 0.1875 {
		t.Errorf("Delta = %v, want 0.1875", frames[0].Delta)
	}

	tk.Advance(0.0625)
	tk.Advance(0.0625)
	if len(frames) != 2 || frames[1].Delta != 0.125 {
		t.Errorf("second frame: %d frames, %+v", len(frames), frames[len(frames)-1])
	}

	tk.SetFPS(0)
	tk.Advance(0.0625)
	if len(frames) != 3 {
		t.Errorf("uncapped ticker skipped a frame")
	}
}

func TestTickerLagSmoothing(t *testing.T) {
	tk := quietTicker(nil)
	tk.Add(func(Frame) {})

	tk.Advance(2)
	if tk.Time() != 0.033 {
		t.Errorf("Time = %v, want 0.033", tk.Time())
	}

	tk.LagSmoothing(0, 0)
	tk.Advance(2)
	if !near(tk.Time(), 2.033) {
		t.Errorf("Time = %v, want 2.033", tk.Time())
	}
}

func TestTickerPriority(t *testing.T) {
	tk := quietTicker(nil)
	var order []string
	tk.Add(func(Frame) { order = append(order, "a") })
	tk.Add(func(Frame) { order = append(order, "b") })
	tk.AddListener(NewListener(func(Frame) { order = append(order, "first") }), true)

	tk.Advance(0.1)
	if strings.Join(order, ",") != "first,a,b" {
		t.Errorf("order = %v", order)
	}
}

func TestTickerRemoveDuringDelivery(t *testing.T) {
	tk := quietTicker(nil)
	calls := map[string]int{}
	var b *Listener
	tk.Add(func(Frame) {
		calls["a"]++
		tk.Remove(b)
	})
	b = tk.Add(func(Frame) { calls["b"]++ })

	tk.Advance(0.1)
	tk.Advance(0.1)
	if calls["a"] != 2 || calls["b"] != 1 {
		t.Errorf("calls = %v, want a:2 b:1", calls)
	}
	if tk.Has(b) || tk.Len() != 1 {
		t.Error("listener still registered")
	}
}

func TestTickerAddDuringDelivery(t *testing.T) {
	tk := quietTicker(nil)
	late := 0
	added := false
	tk.Add(func(Frame) {
		if !added {
			added = true
			tk.Add(func(Frame) { late++ })
		}
	})

	tk.Advance(0.1)
	if late != 0 {
		t.Fatal("listener added during delivery ran in the same frame")
	}
	tk.Advance(0.1)
	if late != 1 {
		t.Errorf("late = %d, want 1", late)
	}
}

func TestTickerDuplicateListener(t *testing.T) {
	tk := quietTicker(nil)
	n := 0
	l := NewListener(func(Frame) { n++ })
	tk.AddListener(l, false)
	tk.AddListener(l, true)
	tk.Advance(0.1)
	if n != 1 || tk.Len() != 1 {
		t.Errorf("calls = %d, listeners = %d", n, tk.Len())
	}
}

func TestTickerSleepsWhenEmpty(t *testing.T) {
	tk := quietTicker(nil)
	l := tk.Add(func(Frame) {})
	tk.Remove(l)
	if tk.Awake() {
		t.Error("ticker awake without listeners")
	}
	if tk.Advance(0.1) {
		t.Error("frame delivered while asleep")
	}
}

func TestTickerWallClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	tk := quietTicker(clock)
	var frames []Frame
	tk.Add(func(f Frame) { frames = append(frames, f) })

	if tk.Tick(false) {
		t.Fatal("first tick with no elapsed time delivered a frame")
	}
	clock.advance(100 * time.Millisecond)
	if !tk.Tick(false) {
		t.Fatal("no frame after 100ms")
	}

	tk.Sleep()
	clock.advance(10 * time.Second)
	tk.Wake()
	clock.advance(100 * time.Millisecond)
	tk.Tick(false)
	if !near(tk.Time(), 0.2) {
		t.Errorf("Time = %v, want 0.2; sleep was counted", tk.Time())
	}

	if !tk.Tick(true) {
		t.Error("manual tick did not deliver")
	}
	if last := frames[len(frames)-1]; !last.Manual || last.Delta != 0 {
		t.Errorf("manual frame = %+v", last)
	}
}

func TestTickerListenerPanic(t *testing.T) {
	var buf bytes.Buffer
	tk := NewTicker(nil, NewLogger(&buf, "error"))
	ran := false
	tk.Add(func(Frame) { panic("boom") })
	tk.Add(func(Frame) { ran = true })

	tk.Advance(0.1)
	if !ran {
		t.Error("listener after a panicking one did not run")
	}
	if !strings.Contains(buf.String(), "recovered panic") {
		t.Errorf("log = %q", buf.String())
	}
}
