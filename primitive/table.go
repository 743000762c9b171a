package primitive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// tableConversion returns the runtime conversion for a kind pair already allowed
// by the registry's categories.
func tableConversion(srcKind, dstKind KindEnum, dst reflect.Type) Func {
	switch {
	case srcKind.IsNumber() && dstKind.IsNumber(), srcKind == dstKind:
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(dst), nil
		}

	case srcKind.IsNumber() && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			s, err := cast.ToStringE(numberOf(v, srcKind))
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(s).Convert(dst), nil
		}

	case srcKind == KindString && dstKind.IsNumber():
		return func(v reflect.Value) (reflect.Value, error) {
			return parseNumber(strings.TrimSpace(v.String()), dstKind, dst)
		}

	case srcKind.IsInteger() && dstKind == KindBool:
		return func(v reflect.Value) (reflect.Value, error) {
			b, err := cast.ToBoolE(numberOf(v, srcKind))
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(b).Convert(dst), nil
		}

	case srcKind == KindBool && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			n := int64(0)
			if v.Bool() {
				n = 1
			}

			return reflect.ValueOf(n).Convert(dst), nil
		}

	case srcKind == KindString && dstKind == KindBool:
		return func(v reflect.Value) (reflect.Value, error) {
			b, err := parseBool(v.String())
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(b).Convert(dst), nil
		}

	case srcKind == KindBool && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(strconv.FormatBool(v.Bool())).Convert(dst), nil
		}

	case srcKind == KindString && dstKind == KindTime:
		return func(v reflect.Value) (reflect.Value, error) {
			t, err := cast.ToTimeE(v.String())
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(t), nil
		}

	case srcKind == KindTime && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			t := v.Interface().(time.Time)
			return reflect.ValueOf(t.Format(time.RFC3339Nano)).Convert(dst), nil
		}

	case srcKind.IsInteger() && dstKind == KindTime:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Unix(integerOf(v, srcKind), 0).UTC()), nil
		}

	case srcKind == KindTime && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Interface().(time.Time).Unix()).Convert(dst), nil
		}

	case srcKind == KindString && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			d, err := cast.ToDurationE(v.String())
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(d), nil
		}

	case srcKind == KindDuration && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).String()).Convert(dst), nil
		}

	case srcKind.IsInteger() && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(integerOf(v, srcKind))), nil
		}

	case srcKind == KindDuration && dstKind.IsInteger():
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Int()).Convert(dst), nil
		}

	case srcKind.IsFloat() && dstKind == KindDuration:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Float() * float64(time.Second))), nil
		}

	case srcKind == KindDuration && dstKind.IsFloat():
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).Seconds()).Convert(dst), nil
		}

	case srcKind == KindString && dstKind == KindUUID:
		return func(v reflect.Value) (reflect.Value, error) {
			id, err := uuid.Parse(strings.TrimSpace(v.String()))
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(id), nil
		}

	case srcKind == KindUUID && dstKind == KindString:
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Interface().(uuid.UUID).String()).Convert(dst), nil
		}
	}

	return nil
}

// numberOf extracts a numeric value as a builtin type regardless of the source's name.
func numberOf(v reflect.Value, kind KindEnum) any {
	switch {
	case kind.IsSigned():
		return v.Int()
	case kind.IsUnsigned():
		return v.Uint()
	default:
		return v.Float()
	}
}

func integerOf(v reflect.Value, kind KindEnum) int64 {
	if kind.IsUnsigned() {
		return int64(v.Uint())
	}

	return v.Int()
}

func parseNumber(s string, kind KindEnum, dst reflect.Type) (reflect.Value, error) {
	switch {
	case kind.IsSigned():
		n, err := strconv.ParseInt(s, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(n).Convert(dst), nil

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(n).Convert(dst), nil

	default:
		f, err := strconv.ParseFloat(s, kind.Bits())
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(f).Convert(dst), nil
	}
}

// parseBool accepts yes/no and on/off on top of what cast understands.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off", "":
		return false, nil
	}

	b, err := cast.ToBoolE(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q: %w", s, err)
	}

	return b, nil
}

// textConversion bridges leaf and non-leaf types through their textual forms.
func textConversion(src, dst reflect.Type) Func {
	switch {
	case dst.Kind() == reflect.String && src.Implements(textMarshalerType):
		return func(v reflect.Value) (reflect.Value, error) {
			text, err := v.Interface().(interface{ MarshalText() ([]byte, error) }).MarshalText()
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(string(text)).Convert(dst), nil
		}

	case dst.Kind() == reflect.String && src.Implements(stringerType):
		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Interface().(fmt.Stringer).String()).Convert(dst), nil
		}

	case src.Kind() == reflect.String && reflect.PointerTo(dst).Implements(textUnmarshalerType):
		return func(v reflect.Value) (reflect.Value, error) {
			out := reflect.New(dst)
			err := out.Interface().(interface{ UnmarshalText([]byte) error }).UnmarshalText([]byte(v.String()))
			if err != nil {
				return reflect.Value{}, err
			}

			return out.Elem(), nil
		}
	}

	return nil
}
