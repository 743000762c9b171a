package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var ErrEmptyPath = errors.New("member path is empty")

// Path is a non-empty chain of members for nested access, e.g. Customer.Name.
type Path []Member

// NewPath validates that members chain: each member's type owns the next one.
func NewPath(members ...Member) (Path, error) {
	if len(members) == 0 {
		return nil, ErrEmptyPath
	}

	for i := 1; i < len(members); i++ {
		prev, next := Deref(members[i-1].Type), members[i].Owner
		if prev != next {
			return nil, fmt.Errorf("member %s does not belong to %s", members[i], prev)
		}
	}

	return Path(members), nil
}

// Type returns the terminal member's type.
func (p Path) Type() reflect.Type {
	return p[len(p)-1].Type
}

// Terminal returns the last member.
func (p Path) Terminal() Member {
	return p[len(p)-1]
}

// String renders the path in dotted form.
func (p Path) String() string {
	names := make([]string, len(p))
	for i, m := range p {
		names[i] = m.Name
	}

	return strings.Join(names, ".")
}

// Readable reports whether every member on the path can be read.
func (p Path) Readable() bool {
	for _, m := range p {
		if !m.Readable {
			return false
		}
	}

	return true
}

// Writable reports whether the path can be written: the terminal member is
// writable, and intermediate members can be read, and written too when they
// hold values that have to be copied back.
func (p Path) Writable() bool {
	for i, m := range p {
		if i == len(p)-1 {
			return m.Writable
		}

		if !m.Readable {
			return false
		}

		if m.Kind == MemberKindAccessor && !m.Writable {
			return false
		}

		if m.Kind == MemberKindField && !m.Writable && m.Type.Kind() != reflect.Pointer {
			return false
		}
	}

	return false
}

// Get reads the terminal value. Any nil on the way yields the zero value of the
// terminal type and false.
func (p Path) Get(obj reflect.Value) (reflect.Value, bool) {
	cur := obj
	for _, m := range p {
		v, ok := m.Get(cur)
		if !ok {
			return reflect.Zero(p.Type()), false
		}

		cur = v
	}

	return cur, true
}

// Set writes v at the end of the path, allocating nil intermediate pointers.
// Struct values returned by accessors are modified on a copy and written back.
func (p Path) Set(obj reflect.Value, v reflect.Value) error {
	return setPath(obj, p, v)
}

func setPath(holder reflect.Value, p Path, v reflect.Value) error {
	m := p[0]
	if len(p) == 1 {
		return m.Set(holder, v)
	}

	rest := p[1:]

	holder, ok := indirect(holder)
	if !ok {
		return fmt.Errorf("set %s: nil holder", m)
	}

	if m.Kind == MemberKindField {
		field, err := m.fieldForWrite(holder)
		if err != nil {
			return err
		}

		switch field.Kind() {
		case reflect.Pointer:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}

			return setPath(field, rest, v)
		case reflect.Struct:
			return setPath(field, rest, v)
		case reflect.Interface:
			if field.IsNil() {
				return fmt.Errorf("set %s: cannot materialize interface %s", m, field.Type())
			}

			return setPath(field.Elem(), rest, v)
		}

		return fmt.Errorf("set %s: %s has no members", m, field.Type())
	}

	cur, _ := m.Get(holder)

	switch cur.Kind() {
	case reflect.Pointer:
		if !cur.IsNil() {
			return setPath(cur, rest, v)
		}

		fresh := reflect.New(cur.Type().Elem())
		if err := setPath(fresh, rest, v); err != nil {
			return err
		}

		return m.Set(holder, fresh)

	case reflect.Struct:
		cp := reflect.New(cur.Type()).Elem()
		cp.Set(cur)

		if err := setPath(cp, rest, v); err != nil {
			return err
		}

		return m.Set(holder, cp)
	}

	return fmt.Errorf("set %s: %s has no members", m, m.Type)
}
