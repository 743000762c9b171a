package primitive

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ErrNotConvertible is returned when no conversion exists between two leaf types.
var ErrNotConvertible = errors.New("types are not convertible")

// Func converts a leaf value into the destination type it was looked up for.
type Func func(src reflect.Value) (reflect.Value, error)

// ConversionKey identifies a cached lookup.
type ConversionKey struct {
	Src, Dst reflect.Type
}

// Registry resolves and caches leaf conversions. A Registry is owned by one
// mapper; negative lookups are cached so unsupported pairs are tried once.
type Registry struct {
	allowed CategoryEnum

	mu      sync.RWMutex
	cache   map[ConversionKey]Func
	enums   map[reflect.Type]*EnumInfo
	derived map[reflect.Type]*EnumInfo // names read from String(), nil when none
}

// NewRegistry creates a Registry restricted to the allowed conversion categories.
func NewRegistry(allowed CategoryEnum) *Registry {
	return &Registry{
		allowed: allowed,
		cache:   make(map[ConversionKey]Func),
		enums:   make(map[reflect.Type]*EnumInfo),
		derived: make(map[reflect.Type]*EnumInfo),
	}
}

// Allowed returns the categories this registry may use.
func (r *Registry) Allowed() CategoryEnum {
	return r.allowed
}

// KindOf classifies t, taking registered enums into account.
func (r *Registry) KindOf(t reflect.Type) KindEnum {
	if r.Enum(t) != nil {
		return KindPrimitiveEnum
	}

	return FromReflectType(t)
}

// IsEnum reports whether t is an enum, either registered or recognized by shape.
func (r *Registry) IsEnum(t reflect.Type) bool {
	return r.KindOf(t) == KindPrimitiveEnum
}

// Lookup returns the conversion from src to dst. The second result is false when
// the pair is not convertible; that answer is cached.
func (r *Registry) Lookup(src, dst reflect.Type) (Func, bool) {
	key := ConversionKey{Src: src, Dst: dst}

	r.mu.RLock()
	fn, cached := r.cache[key]
	r.mu.RUnlock()

	if cached {
		return fn, fn != nil
	}

	fn = r.resolve(src, dst)

	r.mu.Lock()
	if existing, ok := r.cache[key]; ok {
		fn = existing
	} else {
		r.cache[key] = fn
	}
	r.mu.Unlock()

	return fn, fn != nil
}

// Convert is a convenience wrapper around Lookup for one-off conversions.
func (r *Registry) Convert(src reflect.Value, dst reflect.Type) (reflect.Value, error) {
	fn, ok := r.Lookup(src.Type(), dst)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s -> %s", ErrNotConvertible, src.Type(), dst)
	}

	return fn(src)
}

func (r *Registry) resolve(src, dst reflect.Type) Func {
	if src == dst {
		return identity
	}

	// a ToX method on the source is an explicit statement of intent and wins
	// over the generic table
	if fn := methodConversion(src, dst); fn != nil {
		return fn
	}

	srcKind, dstKind := r.KindOf(src), r.KindOf(dst)
	if srcKind == KindPrimitiveEnum || dstKind == KindPrimitiveEnum {
		return r.enumConversion(src, dst, srcKind, dstKind)
	}

	if srcKind != 0 && srcKind == dstKind && src.ConvertibleTo(dst) {
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(dst), nil
		}
	}

	if srcKind != 0 && dstKind != 0 && r.allowed.Allows(ConversionPair{srcKind, dstKind}) {
		if fn := tableConversion(srcKind, dstKind, dst); fn != nil {
			return fn
		}
	}

	return textConversion(src, dst)
}

func identity(src reflect.Value) (reflect.Value, error) {
	return src, nil
}

// methodConversion looks for a `To<Dst>()` method on src returning dst, optionally
// paired with an error.
func methodConversion(src, dst reflect.Type) Func {
	name := dst.Name()
	if name == "" {
		return nil
	}

	method, ok := src.MethodByName("To" + strings.ToUpper(name[:1]) + name[1:])
	if !ok {
		return nil
	}

	mt := method.Type
	if mt.NumIn() != 1 || mt.NumOut() == 0 || mt.NumOut() > 2 || mt.Out(0) != dst {
		return nil
	}

	if mt.NumOut() == 2 && !mt.Out(1).Implements(errorType) {
		return nil
	}

	index := method.Index

	return func(v reflect.Value) (reflect.Value, error) {
		out := v.Method(index).Call(nil)
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}

		return out[0], nil
	}
}

var errorType = reflect.TypeFor[error]()
