package tempo

import (
	"bytes"
	"strings"
	"testing"
)

func debugEngine(buf *bytes.Buffer, debug bool) *Engine {
	cfg := DefaultConfig()
	cfg.Debug = debug
	return New(WithConfig(cfg), WithLogger(NewLogger(buf, "debug")))
}

func TestDebugMode_TickStats(t *testing.T) {
	var buf bytes.Buffer
	e := debugEngine(&buf, true)
	e.To(&sprite{}, Props{"X": 1}, 1)
	e.Tick(0.25)

	out := buf.String()
	if !strings.Contains(out, "tick") || !strings.Contains(out, "root children") {
		t.Errorf("debug tick log missing, got: %s", out)
	}
}

func TestDebugMode_OffIsSilent(t *testing.T) {
	var buf bytes.Buffer
	e := debugEngine(&buf, false)
	e.To(&sprite{}, Props{"X": 1}, 1)
	e.Tick(0.25)

	if strings.Contains(buf.String(), "root children") {
		t.Errorf("tick stats logged without debug mode: %s", buf.String())
	}
}

func TestDebugMode_DeepNesting(t *testing.T) {
	var buf bytes.Buffer
	e := debugEngine(&buf, true)
	cur := e.Timeline()
	for range debugMaxTreeDepth {
		next := e.Timeline()
		if err := cur.Add(next, 0); err != nil {
			t.Fatal(err)
		}
		cur = next
	}
	if !strings.Contains(buf.String(), "timeline nesting exceeds threshold") {
		t.Errorf("expected nesting warning, got: %s", buf.String())
	}
}

func TestDebugMode_ShallowNestingIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	e := debugEngine(&buf, true)
	outer := e.Timeline()
	inner := e.Timeline()
	_ = outer.Add(inner, 0)
	if strings.Contains(buf.String(), "nesting") {
		t.Errorf("unexpected nesting warning: %s", buf.String())
	}
}

func TestDebugMode_ChildCount(t *testing.T) {
	var buf bytes.Buffer
	e := debugEngine(&buf, true)
	tl := e.Timeline()
	for range debugMaxChildCount + 1 {
		tl.Call(nil)
	}
	if !strings.Contains(buf.String(), "timeline child count exceeds threshold") {
		t.Error("expected child count warning")
	}

	buf.Reset()
	quiet := debugEngine(&buf, false)
	tl = quiet.Timeline()
	for range debugMaxChildCount + 1 {
		tl.Call(nil)
	}
	if strings.Contains(buf.String(), "child count") {
		t.Error("child count checked without debug mode")
	}
}
