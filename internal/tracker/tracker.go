// Package tracker remembers which target was produced for which source object
// during one mapping call, so shared and cyclic references map to shared and
// cyclic targets.
//
// A Tracker is not safe for concurrent use.
package tracker

import (
	"errors"
	"reflect"
	"unsafe"
)

// ErrCollision is returned when a different target is added for a tracked key.
var ErrCollision = errors.New("reference tracker already holds a different target")

// Key identifies a tracked source object for one target type. The source type is
// part of the key: a struct and its first field share an address.
type Key struct {
	Source     unsafe.Pointer
	SourceType reflect.Type
	TargetType reflect.Type
}

// KeyOf returns the key of src for targetType. Only non-nil pointers have identity.
func KeyOf(src reflect.Value, targetType reflect.Type) (Key, bool) {
	if !src.IsValid() || src.Kind() != reflect.Pointer || src.IsNil() {
		return Key{}, false
	}

	return Key{Source: src.UnsafePointer(), SourceType: src.Type(), TargetType: targetType}, true
}

// Tracker maps source identities to the targets created for them.
type Tracker struct {
	entries map[Key]reflect.Value
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{entries: make(map[Key]reflect.Value)}
}

// Lookup returns the target tracked for src and targetType.
func (t *Tracker) Lookup(src reflect.Value, targetType reflect.Type) (reflect.Value, bool) {
	key, ok := KeyOf(src, targetType)
	if !ok {
		return reflect.Value{}, false
	}

	dst, ok := t.entries[key]

	return dst, ok
}

// Add tracks dst as the target of src. The first target added for a key wins;
// adding the same target again is a no-op, adding another one fails with ErrCollision.
// Sources without identity are ignored.
func (t *Tracker) Add(src, dst reflect.Value) error {
	key, ok := KeyOf(src, dst.Type())
	if !ok {
		return nil
	}

	if existing, found := t.entries[key]; found {
		if sameTarget(existing, dst) {
			return nil
		}

		return ErrCollision
	}

	t.entries[key] = dst

	return nil
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Reset forgets every entry.
func (t *Tracker) Reset() {
	clear(t.entries)
}

func sameTarget(a, b reflect.Value) bool {
	if a.Kind() == reflect.Pointer && b.Kind() == reflect.Pointer {
		return a.UnsafePointer() == b.UnsafePointer()
	}

	return a.Equal(b)
}
