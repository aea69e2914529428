package tempo

import (
	"errors"
	"testing"
)

func TestVelocityTracking(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	vt := e.Tracker()
	if err := vt.Track(s, "X"); err != nil {
		t.Fatal(err)
	}
	if v := vt.Velocity(s, "X"); v != 0 {
		t.Errorf("velocity with one sample = %v", v)
	}

	s.X = 10
	e.Tick(0.25)
	if v := vt.Velocity(s, "X"); v != 40 {
		t.Errorf("velocity = %v, want 40", v)
	}
	e.Tick(0.25)
	if v := vt.Velocity(s, "X"); v != 0 {
		t.Errorf("velocity at rest = %v, want 0", v)
	}
}

func TestVelocityModulus(t *testing.T) {
	e := quietEngine()
	s := &sprite{Angle: 350}
	if err := e.Tracker().Track(s, "Angle", Modulus(360)); err != nil {
		t.Fatal(err)
	}
	s.Angle = 10
	e.Tick(0.5)
	if v := e.Tracker().Velocity(s, "Angle"); v != 40 {
		t.Errorf("velocity = %v, want 40 across the wrap", v)
	}
}

func TestVelocityFollowsTween(t *testing.T) {
	e := quietEngine()
	s := &sprite{}
	_ = e.Tracker().Track(s, "X")
	e.To(s, Props{"X": 100}, 1)
	e.Tick(0.25)
	e.Tick(0.25)
	if v := e.Tracker().Velocity(s, "X"); !near(v, 100) {
		t.Errorf("velocity = %v, want 100", v)
	}
}

func TestTrackErrors(t *testing.T) {
	vt := quietEngine().Tracker()
	s := &sprite{}
	if err := vt.Track(s, "Label"); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("string property: %v", err)
	}
	if err := vt.Track(s, "Nope"); !errors.Is(err, ErrUnknownProperty) {
		t.Errorf("missing property: %v", err)
	}
}

func TestUntrack(t *testing.T) {
	e := quietEngine()
	vt := e.Tracker()
	s := &sprite{}
	_ = vt.Track(s, "X")
	_ = vt.Track(s, "Y")
	_ = vt.Track(s, "X", Modulus(360))
	listeners := e.Ticker().Len()

	vt.Untrack(s, "X")
	if vt.IsTracking(s, "X") || !vt.IsTracking(s, "Y") {
		t.Fatal("Untrack removed the wrong property")
	}
	vt.Untrack(s)
	if vt.IsTracking(s, "Y") {
		t.Error("Untrack without props kept a property")
	}
	if e.Ticker().Len() != listeners-1 {
		t.Errorf("listeners = %d, want %d", e.Ticker().Len(), listeners-1)
	}
	if v := vt.Velocity(s, "X"); v != 0 {
		t.Errorf("untracked velocity = %v", v)
	}
}
