// Package common holds small helpers shared by the mapper internals.
package common

import (
	"fmt"
	"reflect"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// TypeName returns a package-qualified name for t, suitable for messages and keys.
// Unnamed composite types fall back to reflect's own rendering.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	return t.String()
}

// TypeKey returns a string uniquely identifying t within the process.
// Two distinct types never share a key, even when TypeName collides.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	return fmt.Sprintf("%p", t)
}
