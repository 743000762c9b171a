package meta

import (
	"reflect"

	"object-mapper/internal/common"
	"object-mapper/primitive"
)

// Category is the closed classification of a type used for runtime dispatch.
// Go has no abstract classes: a type is either concrete or an interface.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryConcrete
	CategoryInterface
)

// String returns a human-readable representation of the Category.
func (c Category) String() string {
	switch c {
	case CategoryConcrete:
		return "concrete"
	case CategoryInterface:
		return "interface"
	default:
		return common.UnknownStr
	}
}

// AnyType is the universal ancestor of every type.
var AnyType = reflect.TypeFor[any]()

// CategoryOf classifies t.
func CategoryOf(t reflect.Type) Category {
	switch {
	case t == nil:
		return CategoryUnknown
	case t.Kind() == reflect.Interface:
		return CategoryInterface
	default:
		return CategoryConcrete
	}
}

// Deref returns the element type of pointer t, or t itself.
func Deref(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

// IsReference reports pointers to non-leaf structs: objects with identity that
// the reference tracker follows.
func IsReference(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && IsStruct(t.Elem())
}

// IsStruct reports struct value types that are not leaves (time.Time is a leaf).
func IsStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && !primitive.IsLeaf(t)
}

// IsCollection reports slices, arrays and maps.
func IsCollection(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

// IsNullable reports a pointer to anything but a non-leaf struct: an optional value.
func IsNullable(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && !IsStruct(t.Elem())
}

// IsPlain reports types whose values can be copied with a plain assignment
// without sharing mutable state: leaves, and arrays and structs made of them.
func IsPlain(t reflect.Type) bool {
	return isPlain(t, map[reflect.Type]bool{})
}

func isPlain(t reflect.Type, seen map[reflect.Type]bool) bool {
	if primitive.IsLeaf(t) {
		return true
	}

	if plain, ok := seen[t]; ok {
		return plain
	}

	// recursive types always go through a pointer, which is not plain
	seen[t] = false

	var plain bool

	switch t.Kind() {
	case reflect.Bool, reflect.String, reflect.Complex64, reflect.Complex128,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		plain = true
	case reflect.Array:
		plain = isPlain(t.Elem(), seen)
	case reflect.Struct:
		plain = true
		for i := range t.NumField() {
			if !isPlain(t.Field(i).Type, seen) {
				plain = false
				break
			}
		}
	}

	seen[t] = plain

	return plain
}

// Assignable reports whether t can stand in for ancestor: ancestor is any, t is
// assignable to it (identity or interface implementation), or t embeds ancestor.
// Pointer types compare their elements when both sides are pointers, and a
// pointer to a struct stands in for the struct itself.
func Assignable(t, ancestor reflect.Type) bool {
	if ancestor == AnyType || t == ancestor {
		return true
	}

	if t.AssignableTo(ancestor) {
		return true
	}

	if t.Kind() == reflect.Pointer {
		switch ancestor.Kind() {
		case reflect.Pointer:
			return Embeds(t.Elem(), ancestor.Elem())
		case reflect.Struct:
			return Assignable(t.Elem(), ancestor)
		}
	}

	return Embeds(t, ancestor)
}

// Embeds reports whether struct t embeds ancestor directly or transitively.
func Embeds(t, ancestor reflect.Type) bool {
	return embeds(t, ancestor, map[reflect.Type]struct{}{})
}

func embeds(t, ancestor reflect.Type, seen map[reflect.Type]struct{}) bool {
	if t.Kind() != reflect.Struct {
		return false
	}

	if _, ok := seen[t]; ok {
		return false
	}

	seen[t] = struct{}{}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}

		ft := Deref(f.Type)
		if ft == ancestor || embeds(ft, ancestor, seen) {
			return true
		}
	}

	return false
}
