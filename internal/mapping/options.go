package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/common"
	"object-mapper/primitive"
)

// CollectionStrategy selects how a source collection is applied to an existing target.
type CollectionStrategy int

const (
	CollectionInherit CollectionStrategy = iota // take the strategy of the enclosing configuration
	CollectionReset                             // clear the target, then add every source element
	CollectionMerge                             // add source elements, keep existing ones
	CollectionUpdate                            // match elements, update matches, add new, remove missing
)

var collectionNames = map[CollectionStrategy]string{
	CollectionInherit: "inherit",
	CollectionReset:   "reset",
	CollectionMerge:   "merge",
	CollectionUpdate:  "update",
}

// String returns a human-readable representation of the CollectionStrategy.
func (s CollectionStrategy) String() string {
	if name, ok := collectionNames[s]; ok {
		return name
	}

	return common.UnknownStr
}

// MarshalText implements encoding.TextMarshaler.
func (s CollectionStrategy) MarshalText() ([]byte, error) {
	if _, ok := collectionNames[s]; !ok {
		return nil, fmt.Errorf("invalid collection strategy %d", int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, case-insensitively.
func (s *CollectionStrategy) UnmarshalText(text []byte) error {
	for strategy, name := range collectionNames {
		if strings.EqualFold(name, string(text)) {
			*s = strategy
			return nil
		}
	}

	return fmt.Errorf("invalid collection strategy %q (expected reset, merge, update or inherit)", text)
}

// ReferenceBehavior selects what happens to an existing target reference.
type ReferenceBehavior int

const (
	ReferenceInherit     ReferenceBehavior = iota // take the behavior of the enclosing configuration
	ReferenceCreateNew                            // always allocate a new target instance
	ReferenceReuseTarget                          // keep a non-nil target instance and map into it
)

var referenceNames = map[ReferenceBehavior]string{
	ReferenceInherit:     "inherit",
	ReferenceCreateNew:   "create_new",
	ReferenceReuseTarget: "reuse_target",
}

// String returns a human-readable representation of the ReferenceBehavior.
func (b ReferenceBehavior) String() string {
	if name, ok := referenceNames[b]; ok {
		return name
	}

	return common.UnknownStr
}

// MarshalText implements encoding.TextMarshaler.
func (b ReferenceBehavior) MarshalText() ([]byte, error) {
	if _, ok := referenceNames[b]; !ok {
		return nil, fmt.Errorf("invalid reference behavior %d", int(b))
	}

	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, case-insensitively.
func (b *ReferenceBehavior) UnmarshalText(text []byte) error {
	for behavior, name := range referenceNames {
		if strings.EqualFold(name, string(text)) {
			*b = behavior
			return nil
		}
	}

	return fmt.Errorf("invalid reference behavior %q (expected create_new, reuse_target or inherit)", text)
}

// Constructor allocates target instances of Type.
type Constructor struct {
	Type reflect.Type
	New  func() (reflect.Value, error)
}

// Comparer tells whether a source element corresponds to a target element.
type Comparer struct {
	Source reflect.Type
	Target reflect.Type
	Equal  func(src, dst reflect.Value) bool
}

// Options are the per pair (or per member) settings. Zero values inherit.
type Options struct {
	Collection  CollectionStrategy
	Reference   ReferenceBehavior
	Tracking    *bool
	Constructor *Constructor
	Converter   *primitive.Caster
	Comparer    *Comparer
}

// Inherit fills the unset fields of o from parent. Typed callbacks are taken
// only when they can serve pair.
func (o Options) Inherit(parent Options, pair TypePair) Options {
	if o.Collection == CollectionInherit {
		o.Collection = parent.Collection
	}

	if o.Reference == ReferenceInherit {
		o.Reference = parent.Reference
	}

	if o.Tracking == nil {
		o.Tracking = parent.Tracking
	}

	if o.Constructor == nil && parent.Constructor != nil && parent.Constructor.Type.AssignableTo(pair.Target) {
		o.Constructor = parent.Constructor
	}

	if o.Converter == nil && parent.Converter != nil && pair.Source.AssignableTo(parent.Converter.Src) && parent.Converter.Dst.AssignableTo(pair.Target) {
		o.Converter = parent.Converter
	}

	if o.Comparer == nil && parent.Comparer != nil && parent.Comparer.Source == pair.Source && parent.Comparer.Target == pair.Target {
		o.Comparer = parent.Comparer
	}

	return o
}

// TrackingEnabled reports the tracking switch, on when unset.
func (o Options) TrackingEnabled() bool {
	return o.Tracking == nil || *o.Tracking
}

// DefaultOptions are held by the root of every tree unless replaced.
func DefaultOptions() Options {
	tracking := true

	return Options{
		Collection: CollectionReset,
		Reference:  ReferenceReuseTarget,
		Tracking:   &tracking,
	}
}
