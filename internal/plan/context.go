package plan

import (
	"reflect"

	"object-mapper/internal/mapping"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

// Context carries what a builder needs to know about the pair it builds.
type Context struct {
	Pair    mapping.TypePair
	Mapping *mapping.TypeMapping
	Options mapping.Options // effective options of the pair, member overrides included

	session *session
}

// Primitives returns the leaf conversion registry.
func (c *Context) Primitives() *primitive.Registry {
	return c.session.compiler.prims
}

// Resolve returns the shared plan of a nested pair.
func (c *Context) Resolve(pair mapping.TypePair) (*Node, error) {
	return c.session.resolve(pair)
}

// Nested returns the plan of an inner pair of a container (optional value,
// element, map value). A converter of the container that fits the inner pair
// is carried down to it.
func (c *Context) Nested(pair mapping.TypePair) (*Node, error) {
	if conv := c.Options.Converter; conv != nil && converterFits(conv, pair) {
		return c.session.buildWith(pair, mapping.Options{Converter: conv})
	}

	return c.session.resolve(pair)
}

// Members compiles the member mappings of the pair.
func (c *Context) Members() ([]Member, error) {
	mms, err := c.session.compiler.tree.Members(c.Mapping)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(mms))

	for _, mm := range mms {
		n, err := c.session.member(mm)
		if err != nil {
			return nil, mapping.AtMember(err, mm.Target.String())
		}

		members = append(members, Member{Mapping: mm, Plan: n})
	}

	return members, nil
}

// Comparer returns the element comparer for an element pair: the one set on the
// container or member first, then the one of the element pair itself.
func (c *Context) Comparer(elem mapping.TypePair) *mapping.Comparer {
	if cmp := c.Options.Comparer; cmp != nil && comparerFits(cmp, elem) {
		return cmp
	}

	tree := c.session.compiler.tree
	if cmp := tree.Effective(tree.Get(elem)).Comparer; cmp != nil && comparerFits(cmp, elem) {
		return cmp
	}

	return nil
}

func comparerFits(cmp *mapping.Comparer, elem mapping.TypePair) bool {
	return meta.Deref(cmp.Source) == meta.Deref(elem.Source) && meta.Deref(cmp.Target) == meta.Deref(elem.Target)
}

// casterFits reports whether conv accepts values of the pair source and
// produces values the pair target can hold.
func casterFits(conv *primitive.Caster, pair mapping.TypePair) bool {
	return pair.Source.AssignableTo(conv.Src) && conv.Dst.AssignableTo(pair.Target)
}

// converterFits reports whether conv serves pair or, for containers, one of
// the pairs inside it.
func converterFits(conv *primitive.Caster, pair mapping.TypePair) bool {
	if casterFits(conv, pair) {
		return true
	}

	inner, ok := innerPair(pair)

	return ok && converterFits(conv, inner)
}

// innerPair returns the pair one container level down: optional values,
// sequence elements and map values.
func innerPair(pair mapping.TypePair) (mapping.TypePair, bool) {
	src, dst := pair.Source, pair.Target

	switch {
	case isOptionalPair(src, dst):
		return mapping.PairOf(unwrap(src), unwrap(dst)), true
	case isSequence(src) && isSequence(dst):
		return mapping.PairOf(src.Elem(), dst.Elem()), true
	case src.Kind() == reflect.Map && dst.Kind() == reflect.Map:
		return mapping.PairOf(src.Elem(), dst.Elem()), true
	}

	return mapping.TypePair{}, false
}

// isOptionalPair reports a pair with an optional value on at least one side;
// two references are mapped as objects instead.
func isOptionalPair(src, dst reflect.Type) bool {
	srcPtr, dstPtr := src.Kind() == reflect.Pointer, dst.Kind() == reflect.Pointer
	if !srcPtr && !dstPtr {
		return false
	}

	return !meta.IsReference(src) || !meta.IsReference(dst)
}

func unwrap(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

func isSequence(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}
