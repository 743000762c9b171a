package primitive

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
)

// Caster is a user supplied conversion function inspected through reflection.
type Caster struct {
	Src, Dst reflect.Type
	Name     string
	HasBool  bool
	HasErr   bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
//
// A false bool result means "no value": the target keeps its zero value.
func ParseCaster(fn any) (Caster, error) {
	if fn == nil {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return Caster{}, ErrCasterIsNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Pointer && src.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Pointer && dst.Elem().Kind() == reflect.Pointer {
		return Caster{}, ErrDoublePointer
	}

	caster := Caster{
		Src:  src,
		Dst:  dst,
		Name: funcName(fnVal),
		fn:   fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case last.Implements(errorType):
			caster.HasErr = true
		}
		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !terr.Implements(errorType) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true
		return caster, nil
	}
}

// Call invokes the caster. ok is false when the caster reported "no value".
func (c Caster) Call(src reflect.Value) (dst reflect.Value, ok bool, err error) {
	if !src.IsValid() {
		src = reflect.Zero(c.Src)
	}

	out := c.fn.Call([]reflect.Value{src})
	dst, ok = out[0], true

	if c.HasBool {
		ok = out[1].Bool()
	}

	if c.HasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return reflect.Value{}, false, fmt.Errorf("%s: %w", c.Name, e.Interface().(error))
		}
	}

	return dst, ok, nil
}

// Func adapts the caster to the leaf conversion signature.
func (c Caster) Func() Func {
	return func(src reflect.Value) (reflect.Value, error) {
		dst, ok, err := c.Call(src)
		if err != nil {
			return reflect.Value{}, err
		}

		if !ok {
			return reflect.Zero(c.Dst), nil
		}

		return dst, nil
	}
}

func funcName(fn reflect.Value) string {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return "caster"
	}

	// "example.com/pkg.Func" -> "pkg.Func"
	_, name := path.Split(rf.Name())

	return strings.TrimSuffix(name, "-fm")
}
