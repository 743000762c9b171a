package meta

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/common"
)

// MemberKind tells how a member is accessed.
type MemberKind int

const (
	MemberKindUnknown MemberKind = iota
	MemberKindField
	MemberKindAccessor
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberKindField:
		return "field"
	case MemberKindAccessor:
		return "accessor"
	default:
		return common.UnknownStr
	}
}

// Member describes one readable and/or writable member of Owner.
type Member struct {
	Name  string       // field name, or getter (setter when write-only) method name
	Type  reflect.Type // value type read or written
	Kind  MemberKind
	Owner reflect.Type // struct or interface type declaring or promoting the member
	Index []int        // field index path, for fields
	Tag   reflect.StructTag
	Depth int // embedding depth, 0 for declared members

	Getter string // accessor getter method name
	Setter string // accessor setter method name

	Readable bool
	Writable bool
}

// String renders the member as Owner.Name.
func (m Member) String() string {
	return fmt.Sprintf("%s.%s", common.TypeName(m.Owner), m.Name)
}

// Declared reports whether the member is declared on Owner itself.
func (m Member) Declared() bool {
	return m.Depth == 0
}

// Get reads the member from holder, which may be the owner value, a pointer to it
// or an interface holding it. The second result is false when holder or an
// embedded pointer on the way is nil.
func (m Member) Get(holder reflect.Value) (reflect.Value, bool) {
	if !m.Readable {
		return reflect.Value{}, false
	}

	holder, ok := indirect(holder)
	if !ok {
		return reflect.Value{}, false
	}

	switch m.Kind {
	case MemberKindField:
		v, err := holder.FieldByIndexErr(m.Index)
		if err != nil {
			return reflect.Value{}, false
		}

		return v, true

	case MemberKindAccessor:
		out := receiver(holder).MethodByName(m.Getter).Call(nil)
		return out[0], true
	}

	return reflect.Value{}, false
}

// Set writes v into holder. holder must be a non-nil pointer to the owner or an
// addressable owner value; nil embedded pointers on a field path are allocated.
func (m Member) Set(holder reflect.Value, v reflect.Value) error {
	if !m.Writable {
		return fmt.Errorf("member %s is not writable", m)
	}

	holder, ok := indirect(holder)
	if !ok {
		return fmt.Errorf("set %s: nil holder", m)
	}

	if !v.IsValid() {
		v = reflect.Zero(m.Type)
	}

	switch m.Kind {
	case MemberKindField:
		field, err := m.fieldForWrite(holder)
		if err != nil {
			return err
		}

		field.Set(v)
		return nil

	case MemberKindAccessor:
		if !holder.CanAddr() {
			return fmt.Errorf("set %s: holder is not addressable", m)
		}

		holder.Addr().MethodByName(m.Setter).Call([]reflect.Value{v})
		return nil
	}

	return fmt.Errorf("set %s: %s members are not writable", m, m.Kind)
}

// fieldForWrite returns the settable field value, allocating nil embedded pointers.
func (m Member) fieldForWrite(holder reflect.Value) (reflect.Value, error) {
	v := holder
	for i, x := range m.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("set %s: cannot allocate embedded %s", m, v.Type())
				}

				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	if !v.CanSet() {
		return reflect.Value{}, fmt.Errorf("set %s: field is not settable", m)
	}

	return v, nil
}

// indirect follows pointers and interfaces down to the owner value.
func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}

		v = v.Elem()
	}

	return v, v.IsValid()
}

// receiver returns a value whose method set includes pointer receiver methods.
func receiver(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		return v
	}

	if v.CanAddr() {
		return v.Addr()
	}

	p := reflect.New(v.Type())
	p.Elem().Set(v)

	return p
}

// accessor method names excluded from member discovery
var skipMethods = map[string]struct{}{
	"String":   {},
	"GoString": {},
	"Error":    {},
	"IsValid":  {},
}

const (
	getPrefix = "Get"
	setPrefix = "Set"
)

// setterTarget returns the member name a setter method writes, e.g. SetName -> Name.
func setterTarget(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, setPrefix)
	if !ok || rest == "" || !isUpper(rest[0]) {
		return "", false
	}

	return rest, true
}

// getterBase returns the bare name of a getter, e.g. GetName -> Name.
func getterBase(name string) string {
	if rest, ok := strings.CutPrefix(name, getPrefix); ok && rest != "" && isUpper(rest[0]) {
		return rest
	}

	return name
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
