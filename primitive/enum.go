package primitive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// maxDerivedEnumValues bounds the scan of integer enums named only by String().
const maxDerivedEnumValues = 1024

// EnumInfo holds the textual names of a registered enum type.
type EnumInfo struct {
	Type   reflect.Type
	byName map[string]reflect.Value
	names  map[any]string
}

// Parse resolves name case-insensitively.
func (e *EnumInfo) Parse(name string) (reflect.Value, bool) {
	v, ok := e.byName[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Name returns the registered name of v.
func (e *EnumInfo) Name(v reflect.Value) (string, bool) {
	name, ok := e.names[v.Interface()]
	return name, ok
}

// RegisterEnum records the names of enum type t. Registering again replaces the
// previous names. Cached conversions involving t are dropped.
func (r *Registry) RegisterEnum(t reflect.Type, values map[string]reflect.Value) error {
	info := &EnumInfo{
		Type:   t,
		byName: make(map[string]reflect.Value, len(values)),
		names:  make(map[any]string, len(values)),
	}

	for name, v := range values {
		if v.Type() != t {
			return fmt.Errorf("enum %s: value %q has type %s", t, name, v.Type())
		}

		lower := strings.ToLower(name)
		if _, dup := info.byName[lower]; dup {
			return fmt.Errorf("enum %s: duplicate name %q", t, name)
		}

		info.byName[lower] = v
		info.names[v.Interface()] = name
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.enums[t] = info

	for key := range r.cache {
		if key.Src == t || key.Dst == t {
			delete(r.cache, key)
		}
	}

	return nil
}

// Enum returns the registration for t, or nil.
func (r *Registry) Enum(t reflect.Type) *EnumInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.enums[t]
}

func (r *Registry) enumConversion(src, dst reflect.Type, srcKind, dstKind KindEnum) Func {
	pair := ConversionPair{srcKind, dstKind}
	if !r.allowed.Allows(pair) {
		return nil
	}

	switch {
	case srcKind.IsInteger() || dstKind.IsInteger():
		// integral <-> enum goes through the numeric representation
		if src.ConvertibleTo(dst) && BaseKind(src).IsInteger() && BaseKind(dst).IsInteger() {
			return func(v reflect.Value) (reflect.Value, error) {
				return v.Convert(dst), nil
			}
		}

		return nil

	case srcKind == KindString:
		return r.enumParser(dst)

	case dstKind == KindString:
		name := r.enumNamer(src)
		if name == nil {
			return nil
		}

		return func(v reflect.Value) (reflect.Value, error) {
			s, err := name(v)
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(s).Convert(dst), nil
		}

	case srcKind == KindPrimitiveEnum && dstKind == KindPrimitiveEnum:
		// by name first; integer enums whose names do not line up fall back
		// to the numeric value
		name, parse := r.enumNamer(src), r.enumParser(dst)
		numeric := BaseKind(src).IsInteger() && BaseKind(dst).IsInteger()

		if name == nil || parse == nil {
			if numeric {
				return func(v reflect.Value) (reflect.Value, error) {
					return v.Convert(dst), nil
				}
			}

			return nil
		}

		return func(v reflect.Value) (reflect.Value, error) {
			s, err := name(v)
			if err == nil {
				var out reflect.Value
				if out, err = parse(reflect.ValueOf(s)); err == nil {
					return out, nil
				}
			}

			if numeric {
				return v.Convert(dst), nil
			}

			return reflect.Value{}, err
		}
	}

	return nil
}

// enumNamer renders an enum value as text: registered name, String(), or the raw
// string for string-based enums.
func (r *Registry) enumNamer(t reflect.Type) func(reflect.Value) (string, error) {
	if info := r.Enum(t); info != nil {
		return func(v reflect.Value) (string, error) {
			if name, ok := info.Name(v); ok {
				return name, nil
			}

			return "", fmt.Errorf("value %v is not a registered %s", v.Interface(), t)
		}
	}

	switch {
	case t.Implements(stringerType):
		return func(v reflect.Value) (string, error) {
			return v.Interface().(fmt.Stringer).String(), nil
		}
	case t.Kind() == reflect.String:
		return func(v reflect.Value) (string, error) {
			return v.String(), nil
		}
	}

	return nil
}

// enumParser builds a string -> enum conversion: registered names first (case
// insensitive), then encoding.TextUnmarshaler, then the names an integer enum
// reports through String(), then a direct conversion for string-based enums
// validated through IsValid when available.
func (r *Registry) enumParser(t reflect.Type) Func {
	if info := r.Enum(t); info != nil {
		return info.parser()
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return textConversion(reflect.TypeFor[string](), t)
	}

	if info := r.derivedEnum(t); info != nil {
		return info.parser()
	}

	if t.Kind() != reflect.String {
		return nil
	}

	return func(v reflect.Value) (reflect.Value, error) {
		out := reflect.ValueOf(v.String()).Convert(t)
		if validator, ok := out.Interface().(interface{ IsValid() bool }); ok && !validator.IsValid() {
			return reflect.Value{}, fmt.Errorf("%q is not a valid %s", v.String(), t)
		}

		return out, nil
	}
}

func (e *EnumInfo) parser() Func {
	return func(v reflect.Value) (reflect.Value, error) {
		out, ok := e.Parse(v.String())
		if !ok {
			return reflect.Value{}, fmt.Errorf("%q is not a valid %s", v.String(), e.Type)
		}

		return out, nil
	}
}

// derivedEnum returns the names of the integer enum t as reported by its
// String method, computed once per registry.
func (r *Registry) derivedEnum(t reflect.Type) *EnumInfo {
	r.mu.RLock()
	info, ok := r.derived[t]
	r.mu.RUnlock()

	if ok {
		return info
	}

	info = deriveEnumNames(t)

	r.mu.Lock()
	r.derived[t] = info
	r.mu.Unlock()

	return info
}

// deriveEnumNames walks the values 0, 1, 2... of t and records what String()
// returns. The walk stops at the first value String() cannot name: a panic, an
// empty string, the numeric fallback ("3" or "Level(3)"), or a name that was
// already returned for a lower value. A repeated name is the type's catch-all
// text ("unknown") and is dropped.
func deriveEnumNames(t reflect.Type) *EnumInfo {
	if !t.Implements(stringerType) {
		return nil
	}

	info := &EnumInfo{
		Type:   t,
		byName: make(map[string]reflect.Value),
		names:  make(map[any]string),
	}

	for n := range maxDerivedEnumValues {
		v := reflect.New(t).Elem()

		switch {
		case v.CanInt():
			v.SetInt(int64(n))
		case v.CanUint():
			v.SetUint(uint64(n))
		default:
			return nil
		}

		name, ok := stringOf(v)
		if !ok || name == "" || isFallbackName(name, n) {
			break
		}

		lower := strings.ToLower(name)
		if prev, dup := info.byName[lower]; dup {
			delete(info.byName, lower)
			delete(info.names, prev.Interface())

			break
		}

		info.byName[lower] = v
		info.names[v.Interface()] = name
	}

	if len(info.byName) == 0 {
		return nil
	}

	return info
}

func stringOf(v reflect.Value) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return v.Interface().(fmt.Stringer).String(), true
}

func isFallbackName(name string, n int) bool {
	num := strconv.Itoa(n)

	return name == num || strings.HasSuffix(name, "("+num+")")
}
