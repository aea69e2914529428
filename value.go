package tempo

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
	unitPattern   = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)([a-zA-Z%]*)$`)
	hexPattern    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	colorType     = reflect.TypeOf(colorful.Color{})
)

// toFloat converts any Go numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

// numberWriter returns a function converting a float64 back into the Go type
// of sample. Integer types are rounded.
func numberWriter(sample any) func(float64) any {
	switch sample.(type) {
	case float64:
		return func(v float64) any { return v }
	case float32:
		return func(v float64) any { return float32(v) }
	case int:
		return func(v float64) any { return int(math.Round(v)) }
	case int64:
		return func(v float64) any { return int64(math.Round(v)) }
	case int32:
		return func(v float64) any { return int32(math.Round(v)) }
	}
	rv := reflect.ValueOf(sample)
	if !rv.IsValid() {
		return func(v float64) any { return v }
	}
	t := rv.Type()
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return func(v float64) any { return reflect.ValueOf(v).Convert(t).Interface() }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v float64) any {
			if v < 0 && rv.Kind() >= reflect.Uint {
				v = 0
			}
			return reflect.ValueOf(math.Round(v)).Convert(t).Interface()
		}
	}
	return func(v float64) any { return v }
}

// formatNumber prints v with at most four decimals and no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(round4(v), 'f', -1, 64)
}

// splitUnit parses "12.5px" into 12.5 and "px".
func splitUnit(s string) (float64, string, bool) {
	m := unitPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	return v, m[2], true
}

// splitRelative splits "+=10px" into '+' and "10px".
func splitRelative(s string) (byte, string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[1] == '=' && (s[0] == '+' || s[0] == '-' || s[0] == '*') {
		return s[0], strings.TrimSpace(s[2:]), true
	}
	return 0, s, false
}

func applyRelative(op byte, base, v float64) float64 {
	switch op {
	case '+':
		return base + v
	case '-':
		return base - v
	case '*':
		return base * v
	}
	return v
}

func isHexColor(s string) bool {
	return hexPattern.MatchString(strings.TrimSpace(s))
}

// parseColor accepts hex strings and colorful.Color values.
func parseColor(v any) (colorful.Color, bool) {
	switch c := v.(type) {
	case colorful.Color:
		return c, true
	case *colorful.Color:
		if c != nil {
			return *c, true
		}
	case string:
		if isHexColor(c) {
			col, err := colorful.Hex(strings.TrimSpace(c))
			if err == nil {
				return col, true
			}
		}
	}
	return colorful.Color{}, false
}

// classify infers a Kind from a current property value.
func classify(v any) Kind {
	if _, ok := toFloat(v); ok {
		return KindNumber
	}
	switch s := v.(type) {
	case colorful.Color, *colorful.Color:
		return KindColor
	case string:
		switch {
		case isHexColor(s):
			return KindColor
		case unitPattern.MatchString(strings.TrimSpace(s)):
			return KindUnit
		case len(numberPattern.FindAllStringIndex(s, -1)) > 0:
			return KindCompound
		}
	}
	return KindDiscrete
}

// compound is a string split around its embedded numbers:
// chunks[0] nums[0] chunks[1] ... nums[n-1] chunks[n].
type compound struct {
	chunks []string
	nums   []float64
}

func parseCompound(s string) compound {
	idx := numberPattern.FindAllStringIndex(s, -1)
	c := compound{chunks: make([]string, 0, len(idx)+1), nums: make([]float64, 0, len(idx))}
	prev := 0
	for _, m := range idx {
		v, err := strconv.ParseFloat(s[m[0]:m[1]], 64)
		if err != nil {
			continue
		}
		c.chunks = append(c.chunks, s[prev:m[0]])
		c.nums = append(c.nums, v)
		prev = m[1]
	}
	c.chunks = append(c.chunks, s[prev:])
	return c
}

func (c compound) format(nums []float64) string {
	var b strings.Builder
	for i, chunk := range c.chunks {
		b.WriteString(chunk)
		if i < len(nums) {
			b.WriteString(formatNumber(nums[i]))
		}
	}
	return b.String()
}
