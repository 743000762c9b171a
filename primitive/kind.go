package primitive

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// KindEnum classifies leaf types the conversion table knows about.
type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindUUID
	KindPrimitiveEnum // named integer or string type with a textual representation

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var kindNames = [...]string{
	KindInt:           "KindInt",
	KindInt8:          "KindInt8",
	KindInt16:         "KindInt16",
	KindInt32:         "KindInt32",
	KindInt64:         "KindInt64",
	KindUint:          "KindUint",
	KindUint8:         "KindUint8",
	KindUint16:        "KindUint16",
	KindUint32:        "KindUint32",
	KindUint64:        "KindUint64",
	KindFloat32:       "KindFloat32",
	KindFloat64:       "KindFloat64",
	KindBool:          "KindBool",
	KindString:        "KindString",
	KindTime:          "KindTime",
	KindDuration:      "KindDuration",
	KindUUID:          "KindUUID",
	KindPrimitiveEnum: "KindPrimitiveEnum",
}

func (k KindEnum) String() string {
	if k <= 0 || int(k) >= KindTotal {
		return fmt.Sprintf("KindEnum(%d)", int(k))
	}

	return kindNames[k]
}

func (k KindEnum) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

func (k KindEnum) IsInteger() bool {
	return k.IsSigned() || k.IsUnsigned()
}

func (k KindEnum) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	}
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	case KindInt64, KindUint64, KindFloat64:
		return 64
	}
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()

	stringerType        = reflect.TypeFor[fmt.Stringer]()
	validatorType       = reflect.TypeFor[interface{ IsValid() bool }]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// FromReflectType reports the leaf kind of rtype, or 0 when rtype is not a leaf.
//
// Named integer types implementing fmt.Stringer and named string types with an
// IsValid method are reported as KindPrimitiveEnum; any other named type falls
// back to the kind of its underlying representation.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	case uuidType:
		return KindUUID
	}

	base := BaseKind(rtype)
	if base == 0 || rtype.PkgPath() == "" {
		return base
	}

	switch {
	case base.IsInteger() && rtype.Implements(stringerType):
		return KindPrimitiveEnum
	case base == KindString && rtype.Implements(validatorType):
		return KindPrimitiveEnum
	}

	return base
}

// BaseKind reports the kind of rtype's underlying representation, ignoring its name.
func BaseKind(rtype reflect.Type) KindEnum {
	switch rtype.Kind() {
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	default:
		return 0
	}
}

// IsLeaf reports whether rtype is handled by the conversion table rather than by
// member-wise mapping.
func IsLeaf(rtype reflect.Type) bool {
	return FromReflectType(rtype) != 0
}
