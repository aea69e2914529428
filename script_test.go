package tempo

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScript(t *testing.T) {
	s, err := LoadScript([]byte(`
steps:
  - {action: to, targets: [box], props: {x: 10}, duration: 2, ease: power2.out, repeat: 1}
  - {action: tick, frames: 3}
`))
	require.NoError(t, err)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "script", s.Name)
	assert.InDelta(t, 1.0/60, s.DT, 1e-12)

	st := s.Steps[0]
	assert.Equal(t, "to", st.Action)
	assert.Equal(t, []string{"box"}, st.Targets)
	assert.Equal(t, "power2.out", st.Ease)
	assert.Equal(t, 1.0, st.Repeat)
	assert.Equal(t, 2.0, st.DurationOr(0.5))
	assert.Equal(t, 3, s.Steps[1].Frames)
}

func TestLoadScript_JSON(t *testing.T) {
	s, err := LoadScript([]byte(`{"name": "j", "dt": 0.1, "steps": [{"action": "tick", "frames": 2}]}`))
	require.NoError(t, err)
	assert.Equal(t, "j", s.Name)
	assert.Equal(t, 0.1, s.DT)
}

func TestLoadScript_Errors(t *testing.T) {
	cases := map[string]string{
		"invalid":   `steps: [`,
		"empty":     `steps: []`,
		"no action": `steps: [{frames: 1}]`,
		"unknown":   `steps: [{action: tick, bogus: 1}]`,
		"negative":  `{dt: -1, steps: [{action: tick}]}`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScript([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestScriptGolden(t *testing.T) {
	data, err := os.ReadFile("testdata/demo.yaml")
	require.NoError(t, err)
	s, err := LoadScript(data)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, s.Run(quietEngine(), &out))

	g := goldie.New(t)
	g.Assert(t, "demo", out.Bytes())
}

func TestScriptRun_Expect(t *testing.T) {
	s, err := LoadScript([]byte(`
dt: 0.5
targets:
  box: {x: 0, label: idle}
steps:
  - {action: to, targets: [box], props: {x: 10, label: done}, duration: 1}
  - {action: tick}
  - {action: expect, values: [box.x], value: 5}
  - {action: expect, values: [box.label], value: idle}
  - {action: tick}
  - {action: expect, values: [box.label], value: done}
`))
	require.NoError(t, err)
	require.NoError(t, s.Run(quietEngine(), io.Discard))
}

func TestScriptRun_ExpectFails(t *testing.T) {
	s, err := LoadScript([]byte(`
targets:
  box: {x: 0}
steps:
  - {action: expect, values: [box.x], value: 1}
`))
	require.NoError(t, err)
	err = s.Run(quietEngine(), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "box.x = 0, want 1")
}

func TestScriptRun_Playback(t *testing.T) {
	s, err := LoadScript([]byte(`
dt: 0.25
targets:
  box: {x: 0}
steps:
  - {action: to, id: slide, targets: [box], props: {x: 100}, duration: 1}
  - {action: progress, anim: slide, value: 0.5}
  - {action: expect, values: [box.x], value: 50}
  - {action: pause}
  - {action: tick, frames: 4}
  - {action: expect, values: [box.x], value: 50}
  - {action: resume}
  - {action: tick}
  - {action: expect, values: [box.x], value: 25}
  - {action: kill, anim: slide}
  - {action: tick}
  - {action: expect, values: [box.x], value: 25}
`))
	require.NoError(t, err)
	require.NoError(t, s.Run(quietEngine(), io.Discard))
}

func TestScriptRun_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown target":     `steps: [{action: to, targets: [ghost], props: {x: 1}}]`,
		"unknown anim":       `steps: [{action: pause, anim: ghost}]`,
		"unknown action":     `steps: [{action: fly}]`,
		"bad progress":       `steps: [{action: progress, value: half}]`,
		"bad sample ref":     `steps: [{action: sample, values: [nodot]}]`,
		"expect without ref": `steps: [{action: expect, value: 1}]`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScript([]byte(src))
			require.NoError(t, err)
			assert.Error(t, s.Run(quietEngine(), io.Discard))
		})
	}
}
