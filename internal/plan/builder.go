package plan

import (
	"errors"
	"fmt"
	"reflect"

	"object-mapper/internal/mapping"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

var (
	// ErrUnsupportedPair is returned when no builder can handle a pair.
	ErrUnsupportedPair = errors.New("no plan builder handles the type pair")
	// ErrStrategyUnsupported is returned when the target collection cannot honor the strategy.
	ErrStrategyUnsupported = errors.New("collection strategy is not supported by the target")
	// ErrComparerRequired is returned when update needs to match elements without a comparer.
	ErrComparerRequired = errors.New("update strategy needs an element comparer")
	// ErrConverterMismatch is returned when a member converter fits neither the member nor its elements.
	ErrConverterMismatch = errors.New("converter does not fit the member types")
)

// Builder compiles the pairs it can handle into plan nodes.
type Builder interface {
	Name() string
	CanHandle(ctx *Context) bool
	Build(ctx *Context) (*Node, error)
}

// DefaultBuilders returns the builder chain in priority order.
func DefaultBuilders() []Builder {
	return []Builder{
		CustomBuilder{},
		DynamicBuilder{},
		CopyBuilder{},
		ConvertBuilder{},
		NullableBuilder{},
		EnumBuilder{},
		StructBuilder{},
		ReferenceBuilder{},
		CollectionBuilder{},
		DictionaryBuilder{},
	}
}

// CustomBuilder applies the converter function configured for the pair.
type CustomBuilder struct{}

func (CustomBuilder) Name() string { return "custom" }

func (CustomBuilder) CanHandle(ctx *Context) bool {
	return ctx.Options.Converter != nil && casterFits(ctx.Options.Converter, ctx.Pair)
}

func (CustomBuilder) Build(ctx *Context) (*Node, error) {
	return &Node{kind: KindCustom, pair: ctx.Pair, caster: ctx.Options.Converter}, nil
}

// DynamicBuilder defers pairs with an interface side to the runtime types of the values.
type DynamicBuilder struct{}

func (DynamicBuilder) Name() string { return "dynamic" }

func (DynamicBuilder) CanHandle(ctx *Context) bool {
	return meta.CategoryOf(ctx.Pair.Source) == meta.CategoryInterface ||
		meta.CategoryOf(ctx.Pair.Target) == meta.CategoryInterface
}

func (DynamicBuilder) Build(ctx *Context) (*Node, error) {
	n := &Node{kind: KindDynamic, pair: ctx.Pair, behavior: ctx.Options.Reference}

	if c := ctx.Options.Constructor; c != nil && meta.CategoryOf(c.Type) == meta.CategoryConcrete {
		n.constructor = c
	}

	return n, nil
}

// CopyBuilder assigns values of identical plain types.
type CopyBuilder struct{}

func (CopyBuilder) Name() string { return "copy" }

func (CopyBuilder) CanHandle(ctx *Context) bool {
	src, dst := ctx.Pair.Source, ctx.Pair.Target
	if src != dst {
		return false
	}

	switch src.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}

	return meta.IsPlain(src)
}

func (CopyBuilder) Build(ctx *Context) (*Node, error) {
	return &Node{kind: KindCopy, pair: ctx.Pair}, nil
}

// ConvertBuilder converts leaf values that are not enums, and values with a
// conversion method towards or from a leaf.
type ConvertBuilder struct{}

func (ConvertBuilder) Name() string { return "convert" }

func (ConvertBuilder) CanHandle(ctx *Context) bool {
	src, dst := ctx.Pair.Source, ctx.Pair.Target
	reg := ctx.Primitives()

	srcLeaf, dstLeaf := primitive.IsLeaf(src), primitive.IsLeaf(dst)

	switch {
	case srcLeaf && dstLeaf:
		return !reg.IsEnum(src) && !reg.IsEnum(dst)
	case srcLeaf || dstLeaf:
		if isComposite(src) || isComposite(dst) {
			return false
		}

		_, ok := reg.Lookup(src, dst)

		return ok
	}

	return false
}

func (ConvertBuilder) Build(ctx *Context) (*Node, error) {
	fn, ok := ctx.Primitives().Lookup(ctx.Pair.Source, ctx.Pair.Target)
	if !ok {
		return nil, &mapping.ConversionError{Pair: ctx.Pair, Err: primitive.ErrNotConvertible}
	}

	return &Node{kind: KindConvert, pair: ctx.Pair, convert: fn}, nil
}

// isComposite reports types mapped through their parts rather than converted.
func isComposite(t reflect.Type) bool {
	if primitive.IsLeaf(t) {
		return false
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return true
	}

	return meta.IsCollection(t)
}

// NullableBuilder unwraps optional sources and wraps optional targets around
// the plan of the inner pair.
type NullableBuilder struct{}

func (NullableBuilder) Name() string { return "nullable" }

func (NullableBuilder) CanHandle(ctx *Context) bool {
	return isOptionalPair(ctx.Pair.Source, ctx.Pair.Target)
}

func (NullableBuilder) Build(ctx *Context) (*Node, error) {
	inner := mapping.PairOf(unwrap(ctx.Pair.Source), unwrap(ctx.Pair.Target))

	elem, err := ctx.Nested(inner)
	if err != nil {
		return nil, err
	}

	return &Node{kind: KindNullable, pair: ctx.Pair, elem: elem, behavior: ctx.Options.Reference}, nil
}

// EnumBuilder converts between enums and their integer or string forms.
type EnumBuilder struct{}

func (EnumBuilder) Name() string { return "enum" }

func (EnumBuilder) CanHandle(ctx *Context) bool {
	src, dst := ctx.Pair.Source, ctx.Pair.Target
	reg := ctx.Primitives()

	return primitive.IsLeaf(src) && primitive.IsLeaf(dst) && (reg.IsEnum(src) || reg.IsEnum(dst))
}

func (EnumBuilder) Build(ctx *Context) (*Node, error) {
	fn, ok := ctx.Primitives().Lookup(ctx.Pair.Source, ctx.Pair.Target)
	if !ok {
		return nil, &mapping.ConversionError{Pair: ctx.Pair, Err: primitive.ErrNotConvertible}
	}

	return &Node{kind: KindEnum, pair: ctx.Pair, convert: fn}, nil
}

// StructBuilder maps struct values member by member.
type StructBuilder struct{}

func (StructBuilder) Name() string { return "struct" }

func (StructBuilder) CanHandle(ctx *Context) bool {
	return meta.IsStruct(ctx.Pair.Source) && meta.IsStruct(ctx.Pair.Target)
}

func (StructBuilder) Build(ctx *Context) (*Node, error) {
	members, err := ctx.Members()
	if err != nil {
		return nil, err
	}

	return &Node{kind: KindStruct, pair: ctx.Pair, members: members}, nil
}

// ReferenceBuilder maps pointers to structs, keeping object identity through
// the reference tracker.
type ReferenceBuilder struct{}

func (ReferenceBuilder) Name() string { return "reference" }

func (ReferenceBuilder) CanHandle(ctx *Context) bool {
	return meta.IsReference(ctx.Pair.Source) && meta.IsReference(ctx.Pair.Target)
}

func (ReferenceBuilder) Build(ctx *Context) (*Node, error) {
	members, err := ctx.Members()
	if err != nil {
		return nil, err
	}

	n := &Node{
		kind:     KindReference,
		pair:     ctx.Pair,
		members:  members,
		behavior: ctx.Options.Reference,
		tracking: ctx.Options.TrackingEnabled(),
	}

	if c := ctx.Options.Constructor; c != nil && c.Type == ctx.Pair.Target {
		n.constructor = c
	}

	return n, nil
}

// CollectionBuilder maps slices and arrays element by element.
type CollectionBuilder struct{}

func (CollectionBuilder) Name() string { return "collection" }

func (CollectionBuilder) CanHandle(ctx *Context) bool {
	return isSequence(ctx.Pair.Source) && isSequence(ctx.Pair.Target)
}

func (CollectionBuilder) Build(ctx *Context) (*Node, error) {
	strategy := strategyOf(ctx.Options)
	if ctx.Pair.Target.Kind() == reflect.Array && strategy != mapping.CollectionReset {
		return nil, &mapping.ConfigurationError{
			Pair: ctx.Pair,
			Err:  fmt.Errorf("%w: %s has a fixed length, only reset applies", ErrStrategyUnsupported, strategy),
		}
	}

	elemPair := mapping.PairOf(ctx.Pair.Source.Elem(), ctx.Pair.Target.Elem())

	elem, err := ctx.Nested(elemPair)
	if err != nil {
		return nil, err
	}

	n := &Node{
		kind:     KindCollection,
		pair:     ctx.Pair,
		elem:     elem,
		strategy: strategy,
		comparer: ctx.Comparer(elemPair),
	}

	// leaf elements are matched by value unless a comparer says otherwise
	n.keyed = n.comparer != nil || !primitive.IsLeaf(meta.Deref(elemPair.Target))

	if strategy == mapping.CollectionUpdate && n.keyed && n.comparer == nil {
		return nil, &mapping.ConfigurationError{
			Pair: ctx.Pair,
			Err:  fmt.Errorf("%w for %s", ErrComparerRequired, elemPair),
		}
	}

	return n, nil
}

// DictionaryBuilder maps maps key by key.
type DictionaryBuilder struct{}

func (DictionaryBuilder) Name() string { return "dictionary" }

func (DictionaryBuilder) CanHandle(ctx *Context) bool {
	return ctx.Pair.Source.Kind() == reflect.Map && ctx.Pair.Target.Kind() == reflect.Map
}

func (DictionaryBuilder) Build(ctx *Context) (*Node, error) {
	key, err := ctx.Resolve(mapping.PairOf(ctx.Pair.Source.Key(), ctx.Pair.Target.Key()))
	if err != nil {
		return nil, err
	}

	elem, err := ctx.Nested(mapping.PairOf(ctx.Pair.Source.Elem(), ctx.Pair.Target.Elem()))
	if err != nil {
		return nil, err
	}

	return &Node{
		kind:     KindDictionary,
		pair:     ctx.Pair,
		key:      key,
		elem:     elem,
		strategy: strategyOf(ctx.Options),
	}, nil
}

func strategyOf(opts mapping.Options) mapping.CollectionStrategy {
	if opts.Collection == mapping.CollectionInherit {
		return mapping.CollectionReset
	}

	return opts.Collection
}
