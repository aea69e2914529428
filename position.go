package tempo

import (
	"fmt"
	"strings"
)

// resolvePosition turns an Add/AddLabel position into a local start time.
// Unknown labels are created at the current end.
func (tl *Timeline) resolvePosition(position any) (float64, error) {
	end := tl.Duration()
	if position == nil {
		return end, nil
	}
	if t, ok := toFloat(position); ok {
		return t, nil
	}
	s, ok := position.(string)
	if !ok {
		return 0, fmt.Errorf("%w: %v (%T)", ErrInvalidPosition, position, position)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return end, nil
	}

	switch s[0] {
	case '<', '>':
		base := end
		if r := tl.recent; r != nil && r.base().parent == tl {
			rc := r.base()
			if s[0] == '<' {
				base = rc.start
			} else {
				base = rc.endTime()
			}
		} else if s[0] == '<' {
			base = 0
		}
		off, ok := parseOffset(s[1:])
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
		}
		return base + off, nil
	}

	if _, _, rel := splitRelative(s); rel {
		off, ok := parseOffset(s)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
		}
		return end + off, nil
	}
	if t, ok := numberPosition(s); ok {
		return t, nil
	}

	name, off, ok := splitLabel(s)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	t, known := tl.labels[name]
	if !known {
		tl.eng.log.Info("label created at the end", "timeline", tl.id, "label", name, "time", end)
		tl.labels[name] = end
		t = end
	}
	return t + off, nil
}

// splitLabel splits "intro+=0.5" into "intro" and 0.5.
func splitLabel(s string) (string, float64, bool) {
	s = strings.TrimSpace(s)
	for _, sep := range []string{"+=", "-="} {
		if i := strings.Index(s, sep); i > 0 {
			off, ok := parseOffset(s[i:])
			if !ok {
				return "", 0, false
			}
			return strings.TrimSpace(s[:i]), off, true
		}
	}
	if s == "" {
		return "", 0, false
	}
	return s, 0, true
}
