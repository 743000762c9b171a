package match

import (
	"reflect"

	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means no plan can map the source onto the target.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsTransform means a member-wise, element-wise or dynamic plan is needed.
	TypeNeedsTransform
	// TypeConvertible means a leaf conversion exists.
	TypeConvertible
	// TypeAssignable means the source value can be assigned to the target as is.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical      = "identical"
	VerdictAssignable     = "assignable"
	VerdictConvertible    = "convertible"
	VerdictNeedsTransform = "needs_transform"
	VerdictIncompatible   = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsTransform:
		return VerdictNeedsTransform
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

// Score returns a weight in [0, 1] used when ranking candidates.
func (c TypeCompatibility) Score() float64 {
	switch c {
	case TypeIdentical:
		return 1.0
	case TypeAssignable:
		return 0.9
	case TypeConvertible:
		return 0.7
	case TypeNeedsTransform:
		return 0.4
	default:
		return 0
	}
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string
	SourceType    reflect.Type
	TargetType    reflect.Type
}

// Converter answers whether a leaf conversion exists. *primitive.Registry implements it.
type Converter interface {
	Lookup(src, dst reflect.Type) (primitive.Func, bool)
}

// Checker scores type pairs against the conversions a mapper can perform.
type Checker struct {
	conv Converter
}

// NewChecker creates a Checker backed by conv.
func NewChecker(conv Converter) *Checker {
	return &Checker{conv: conv}
}

// maxDepth bounds the walk through element types of self-referencing collections.
const maxDepth = 16

// Score determines the compatibility between a source and target type.
func (c *Checker) Score(source, target reflect.Type) TypeCompatibilityResult {
	compat, reason := c.score(source, target, 0)

	return TypeCompatibilityResult{
		Compatibility: compat,
		Reason:        reason,
		SourceType:    source,
		TargetType:    target,
	}
}

func (c *Checker) score(source, target reflect.Type, depth int) (TypeCompatibility, string) {
	switch {
	case source == target:
		return TypeIdentical, "types are identical"
	case source.AssignableTo(target):
		return TypeAssignable, "source is assignable to target"
	case depth > maxDepth:
		return TypeNeedsTransform, "nesting too deep to verify"
	}

	if primitive.IsLeaf(source) && primitive.IsLeaf(target) {
		if _, ok := c.conv.Lookup(source, target); ok {
			return TypeConvertible, "leaf conversion available"
		}

		return TypeIncompatible, "no leaf conversion"
	}

	switch {
	case source.Kind() == reflect.Interface || target.Kind() == reflect.Interface:
		return TypeNeedsTransform, "resolved from runtime types"

	case meta.IsNullable(source) || meta.IsNullable(target):
		inner, _ := c.score(nullableElem(source), nullableElem(target), depth+1)
		if inner == TypeIncompatible {
			return TypeIncompatible, "optional value types are not compatible"
		}

		return TypeNeedsTransform, "optional value wrap or unwrap"

	case isObject(source) && isObject(target):
		return TypeNeedsTransform, "member-wise mapping"

	case meta.IsCollection(source) && meta.IsCollection(target):
		return c.scoreCollection(source, target, depth)
	}

	return TypeIncompatible, "types are not compatible"
}

func (c *Checker) scoreCollection(source, target reflect.Type, depth int) (TypeCompatibility, string) {
	if (source.Kind() == reflect.Map) != (target.Kind() == reflect.Map) {
		return TypeIncompatible, "map and sequence are not compatible"
	}

	if source.Kind() == reflect.Map {
		if key, _ := c.score(source.Key(), target.Key(), depth+1); key == TypeIncompatible {
			return TypeIncompatible, "map keys are not compatible"
		}
	}

	if elem, _ := c.score(source.Elem(), target.Elem(), depth+1); elem == TypeIncompatible {
		return TypeIncompatible, "elements are not compatible"
	}

	return TypeNeedsTransform, "element-wise mapping"
}

// isObject reports structs and pointers to structs that are not leaves.
func isObject(t reflect.Type) bool {
	return meta.IsStruct(meta.Deref(t))
}

func nullableElem(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}
