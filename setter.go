package tempo

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Accessor reads and writes one property of one target. Set receives values
// of the same Go type Get returns (numbers are converted back before
// writing), so Set(Get()) is always a no-op round trip.
type Accessor struct {
	Get func() any
	Set func(any)
	// Unit is the default unit for unit-kind values whose end value omits one.
	Unit string
	// Kind selects the interpolation strategy. KindAuto classifies from Get.
	Kind Kind
}

// Resolver builds an Accessor for prop on target. Plugins and per-type
// resolvers share this signature.
type Resolver func(target any, prop string) (Accessor, error)

// PropertyTarget lets a type expose named properties without reflection.
type PropertyTarget interface {
	Prop(name string) (any, bool)
	SetProp(name string, value any)
}

// SetterRegistry resolves (target, property) pairs to accessors. Resolution
// order: plugin registered for the property name, resolver registered for the
// target's type, then the built-ins (PropertyTarget, maps, animations,
// struct pointers).
type SetterRegistry struct {
	plugins map[string]Resolver
	types   map[reflect.Type]Resolver
}

// NewSetterRegistry returns a registry with only the built-in strategies.
func NewSetterRegistry() *SetterRegistry {
	return &SetterRegistry{
		plugins: make(map[string]Resolver),
		types:   make(map[reflect.Type]Resolver),
	}
}

// RegisterPlugin handles every property called name, whatever the target.
func (r *SetterRegistry) RegisterPlugin(name string, fn Resolver) {
	if fn == nil {
		delete(r.plugins, name)
		return
	}
	r.plugins[name] = fn
}

// RegisterResolver handles every target with the same dynamic type as sample.
func (r *SetterRegistry) RegisterResolver(sample any, fn Resolver) {
	t := reflect.TypeOf(sample)
	if t == nil {
		return
	}
	if fn == nil {
		delete(r.types, t)
		return
	}
	r.types[t] = fn
}

// Resolve returns the accessor for prop on target.
func (r *SetterRegistry) Resolve(target any, prop string) (Accessor, error) {
	if target == nil {
		return Accessor{}, fmt.Errorf("%w: nil", ErrUnsupportedTarget)
	}
	var (
		acc Accessor
		err error
	)
	if fn, ok := r.plugins[prop]; ok {
		acc, err = fn(target, prop)
	} else if fn, ok := r.types[reflect.TypeOf(target)]; ok {
		acc, err = fn(target, prop)
	} else {
		acc, err = builtinAccessor(target, prop)
	}
	if err != nil {
		return Accessor{}, err
	}
	if acc.Get == nil || acc.Set == nil {
		return Accessor{}, fmt.Errorf("%w: %q has no getter or setter", ErrUnknownProperty, prop)
	}
	if acc.Kind == KindAuto {
		acc.Kind = classify(acc.Get())
		if acc.Kind == KindNumber && acc.Unit != "" {
			acc.Kind = KindUnit
		}
	}
	return acc, nil
}

func builtinAccessor(target any, prop string) (Accessor, error) {
	switch t := target.(type) {
	case PropertyTarget:
		if _, ok := t.Prop(prop); !ok {
			return Accessor{}, fmt.Errorf("%w: %q", ErrUnknownProperty, prop)
		}
		return Accessor{
			Get: func() any { v, _ := t.Prop(prop); return v },
			Set: func(v any) { t.SetProp(prop, v) },
		}, nil
	case map[string]any:
		if _, ok := t[prop]; !ok {
			return Accessor{}, fmt.Errorf("%w: %q", ErrUnknownProperty, prop)
		}
		return Accessor{
			Get: func() any { return t[prop] },
			Set: func(v any) { t[prop] = v },
		}, nil
	case map[string]float64:
		if _, ok := t[prop]; !ok {
			return Accessor{}, fmt.Errorf("%w: %q", ErrUnknownProperty, prop)
		}
		return Accessor{
			Get: func() any { return t[prop] },
			Set: func(v any) {
				if f, ok := toFloat(v); ok {
					t[prop] = f
				}
			},
			Kind: KindNumber,
		}, nil
	case Animation:
		return animationAccessor(t, prop)
	}
	return reflectAccessor(target, prop)
}

func animationAccessor(a Animation, prop string) (Accessor, error) {
	var (
		get func() float64
		set func(float64)
	)
	switch prop {
	case "progress":
		get, set = a.Progress, a.SetProgress
	case "totalProgress":
		get, set = a.TotalProgress, a.SetTotalProgress
	case "time":
		get, set = a.Time, a.SetTime
	case "totalTime":
		get, set = a.TotalTime, a.SetTotalTime
	case "timeScale":
		get, set = a.TimeScale, a.SetTimeScale
	default:
		return Accessor{}, fmt.Errorf("%w: animation has no %q", ErrUnknownProperty, prop)
	}
	return Accessor{
		Get: func() any { return get() },
		Set: func(v any) {
			if f, ok := toFloat(v); ok {
				set(f)
			}
		},
		Kind: KindNumber,
	}, nil
}

// reflectAccessor walks a struct pointer along a dotted path. Each segment
// matches an exported field by name, by `tempo:"name"` tag, or by
// case-insensitive name, in that order.
func reflectAccessor(target any, prop string) (Accessor, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return Accessor{}, fmt.Errorf("%w: %T", ErrUnsupportedTarget, target)
	}
	v := rv.Elem()
	for _, seg := range strings.Split(prop, ".") {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return Accessor{}, fmt.Errorf("%w: nil pointer on path %q", ErrUnknownProperty, prop)
			}
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return Accessor{}, fmt.Errorf("%w: %q is not a struct path", ErrUnknownProperty, prop)
		}
		f, ok := structField(v, seg)
		if !ok {
			return Accessor{}, fmt.Errorf("%w: %q on %T", ErrUnknownProperty, prop, target)
		}
		v = f
	}
	if !v.CanSet() {
		return Accessor{}, fmt.Errorf("%w: %q", ErrNotAddressable, prop)
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String, reflect.Bool:
	case reflect.Struct:
		if v.Type() != colorType {
			return Accessor{}, fmt.Errorf("%w: %q has unsupported type %s", ErrUnknownProperty, prop, v.Type())
		}
	default:
		return Accessor{}, fmt.Errorf("%w: %q has unsupported type %s", ErrUnknownProperty, prop, v.Type())
	}
	field := v
	return Accessor{
		Get: func() any { return field.Interface() },
		Set: func(val any) { assign(field, val) },
	}, nil
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	if sf, ok := t.FieldByName(name); ok && sf.IsExported() {
		return v.FieldByIndex(sf.Index), true
	}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(sf.Tag.Get("tempo"), ","); tag == name {
			return v.Field(i), true
		}
	}
	for i := range t.NumField() {
		sf := t.Field(i)
		if sf.IsExported() && strings.EqualFold(sf.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// assign writes val into field, converting between numeric types.
func assign(field reflect.Value, val any) {
	src := reflect.ValueOf(val)
	if !src.IsValid() {
		return
	}
	if src.Type() == field.Type() {
		field.Set(src)
		return
	}
	if f, ok := toFloat(val); ok {
		switch field.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			field.SetInt(int64(math.Round(f)))
			return
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			field.SetUint(uint64(math.Max(0, math.Round(f))))
			return
		case reflect.Float32, reflect.Float64:
			field.SetFloat(f)
			return
		}
	}
	if src.Type().ConvertibleTo(field.Type()) && field.Kind() == src.Kind() {
		field.Set(src.Convert(field.Type()))
	}
}

// --- Target identity ---

// targetKey returns a comparable identity for target. Reference types
// compare by pointer so maps and slices can be used as targets.
func targetKey(target any) any {
	rv := reflect.ValueOf(target)
	switch rv.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return struct {
			t reflect.Type
			p uintptr
		}{rv.Type(), rv.Pointer()}
	}
	if rv.IsValid() && rv.Type().Comparable() {
		return target
	}
	return nil
}

func sameTarget(a, b any) bool {
	ka, kb := targetKey(a), targetKey(b)
	return ka != nil && ka == kb
}

// flattenTargets expands slices and arrays of targets into a list.
func flattenTargets(targets any) []any {
	if targets == nil {
		return nil
	}
	switch t := targets.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, v := range t {
			if v != nil {
				out = append(out, v)
			}
		}
		return out
	case map[string]any, map[string]float64:
		return []any{t}
	}
	rv := reflect.ValueOf(targets)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, 0, rv.Len())
		for i := range rv.Len() {
			e := rv.Index(i)
			if e.Kind() == reflect.Struct && e.CanAddr() {
				out = append(out, e.Addr().Interface())
				continue
			}
			if (e.Kind() == reflect.Pointer || e.Kind() == reflect.Interface || e.Kind() == reflect.Map) && e.IsNil() {
				continue
			}
			out = append(out, e.Interface())
		}
		return out
	}
	return []any{targets}
}
