package tempo

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a scenario script.
type scriptStep struct {
	Action string `yaml:"action"`
	// Anim names the animation a playback action applies to: a tween or
	// timeline id. Empty means the script timeline.
	Anim    string         `yaml:"anim,omitempty"`
	Targets []string       `yaml:"targets,omitempty"`
	Props   map[string]any `yaml:"props,omitempty"`
	From    map[string]any `yaml:"from,omitempty"`
	Label   string         `yaml:"label,omitempty"`
	Frames  int            `yaml:"frames,omitempty"`
	DT      float64        `yaml:"dt,omitempty"`
	Value   any            `yaml:"value,omitempty"`
	Values  []string       `yaml:"values,omitempty"`

	Vars `yaml:",inline"`
}

// Script is a scenario: named property maps plus a list of steps that build
// a timeline, drive the clock and print property samples. YAML and JSON are
// both accepted.
type Script struct {
	Name    string                    `yaml:"name"`
	DT      float64                   `yaml:"dt"`
	Targets map[string]map[string]any `yaml:"targets"`
	Steps   []scriptStep              `yaml:"steps"`
}

// LoadScript parses a scenario script.
func LoadScript(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	if s.DT == 0 {
		s.DT = 1.0 / 60
	}
	if s.DT < 0 {
		return nil, fmt.Errorf("parse script: negative dt %v", s.DT)
	}
	if s.Name == "" {
		s.Name = "script"
	}
	for i, st := range s.Steps {
		if st.Action == "" {
			return nil, fmt.Errorf("parse script: step %d has no action", i)
		}
	}
	return &s, nil
}

// scriptRun is the state of one Run.
type scriptRun struct {
	script  *Script
	engine  *Engine
	out     io.Writer
	objects map[string]map[string]any
	anims   map[string]Animation
	tl      *Timeline
}

// Run executes the script on e, writing sample lines and call markers to w.
// Each run works on fresh copies of the script's targets.
func (s *Script) Run(e *Engine, w io.Writer) error {
	r := &scriptRun{
		script:  s,
		engine:  e,
		out:     w,
		objects: make(map[string]map[string]any, len(s.Targets)),
		anims:   make(map[string]Animation),
	}
	for name, props := range s.Targets {
		obj := make(map[string]any, len(props))
		for k, v := range props {
			if f, ok := toFloat(v); ok {
				v = f
			}
			obj[k] = v
		}
		r.objects[name] = obj
	}
	r.tl = e.Timeline(ID(s.Name))
	r.anims[s.Name] = r.tl

	for i, st := range s.Steps {
		if err := r.step(st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
	}
	return nil
}

func (r *scriptRun) step(st scriptStep) error {
	switch st.Action {
	case "to", "from", "fromTo", "set":
		return r.tween(st)
	case "label":
		return r.tl.AddLabel(st.Label, st.Position)
	case "call":
		label := st.Label
		opts := []Option{}
		if st.Position != nil {
			opts = append(opts, At(st.Position))
		}
		r.tl.Call(func() {
			fmt.Fprintf(r.out, "call %s t=%.3f\n", label, r.tl.TotalTime())
		}, opts...)
		return nil
	case "tick":
		frames := max(st.Frames, 1)
		dt := r.script.DT
		if st.DT > 0 {
			dt = st.DT
		}
		for range frames {
			r.engine.Tick(dt)
		}
		return nil
	case "sample":
		return r.sample(st.Values)
	case "expect":
		return r.expect(st)
	}

	a, err := r.anim(st.Anim)
	if err != nil {
		return err
	}
	switch st.Action {
	case "play":
		a.Play()
	case "pause":
		a.Pause()
	case "resume":
		a.Resume()
	case "reverse":
		a.Reverse()
	case "restart":
		a.Restart(false)
	case "kill":
		a.Kill()
	case "seek":
		a.Seek(st.Value)
	case "progress", "totalProgress", "timescale":
		v, ok := toFloat(st.Value)
		if !ok {
			return fmt.Errorf("value %v is not a number", st.Value)
		}
		switch st.Action {
		case "progress":
			a.SetProgress(v)
		case "totalProgress":
			a.SetTotalProgress(v)
		default:
			a.SetTimeScale(v)
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func (r *scriptRun) tween(st scriptStep) error {
	targets := make([]any, 0, len(st.Targets))
	for _, name := range st.Targets {
		obj, ok := r.objects[name]
		if !ok {
			return fmt.Errorf("unknown target %q", name)
		}
		targets = append(targets, obj)
	}
	var (
		mode     tweenMode
		from, to Props
	)
	duration := st.DurationOr(r.engine.cfg.DefaultDuration)
	switch st.Action {
	case "to":
		mode, to = modeTo, Props(st.Props)
	case "from":
		mode, from = modeFrom, Props(st.Props)
	case "fromTo":
		mode, from, to = modeFromTo, Props(st.From), Props(st.Props)
	case "set":
		mode, to, duration = modeSet, Props(st.Props), 0
	}
	tw := r.tl.addTween(mode, targets, from, to, duration, st.Options())
	r.anims[tw.ID()] = tw
	return nil
}

func (r *scriptRun) anim(id string) (Animation, error) {
	if id == "" {
		return r.tl, nil
	}
	a, ok := r.anims[id]
	if !ok {
		return nil, fmt.Errorf("unknown animation %q", id)
	}
	return a, nil
}

// lookup reads "target.prop".
func (r *scriptRun) lookup(ref string) (any, error) {
	name, prop, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, fmt.Errorf("value %q must be target.prop", ref)
	}
	obj, ok := r.objects[name]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", name)
	}
	v, ok := obj[prop]
	if !ok {
		return nil, fmt.Errorf("unknown property %q", ref)
	}
	return v, nil
}

func (r *scriptRun) sample(refs []string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "t=%.3f", r.tl.TotalTime())
	for _, ref := range refs {
		v, err := r.lookup(ref)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, " %s=%s", ref, formatSample(v))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *scriptRun) expect(st scriptStep) error {
	if len(st.Values) != 1 {
		return fmt.Errorf("expect needs exactly one value reference")
	}
	got, err := r.lookup(st.Values[0])
	if err != nil {
		return err
	}
	gf, gok := toFloat(got)
	wf, wok := toFloat(st.Value)
	if gok && wok {
		if math.Abs(gf-wf) > 1e-6 {
			return fmt.Errorf("%s = %s, want %s", st.Values[0], formatSample(got), formatSample(st.Value))
		}
		return nil
	}
	if fmt.Sprint(got) != fmt.Sprint(st.Value) {
		return fmt.Errorf("%s = %v, want %v", st.Values[0], got, st.Value)
	}
	return nil
}

func formatSample(v any) string {
	if f, ok := toFloat(v); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(v)
}
