package plan_test

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"object-mapper/internal/convention"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/internal/plan"
	"object-mapper/primitive"
)

type Color int

const (
	Red Color = iota
	Green
)

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	default:
		return "unknown"
	}
}

type Address struct {
	City string
	Zip  int
}

type AddressDTO struct {
	City string
	Zip  string
}

type Person struct {
	Name     string
	Age      int
	Address  *Address
	Favorite Color
	Tags     []string
}

type PersonDTO struct {
	Name     string
	Age      int64
	Address  *AddressDTO
	Favorite string
	Tags     []string
}

type Node struct {
	ID   int
	Next *Node
}

type NodeDTO struct {
	ID   string
	Next *NodeDTO
}

type Link struct {
	Left, Right *Node
}

type LinkDTO struct {
	Left, Right *NodeDTO
}

type Broken struct {
	Ch   chan int
	Next *Node
}

type BrokenDTO struct {
	Ch   int
	Next *NodeDTO
}

type fixture struct {
	tree     *mapping.Tree
	prims    *primitive.Registry
	compiler *plan.Compiler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	prims := primitive.NewRegistry(primitive.CategoryAll)
	provider := meta.NewReflectProvider(meta.DefaultFilter())
	rules := match.DefaultRules(match.NewChecker(prims))
	tree := mapping.NewTree(provider, convention.Direct{Provider: provider, Rules: rules}, mapping.Options{}, nil)

	return &fixture{
		tree:     tree,
		prims:    prims,
		compiler: plan.NewCompiler(tree, prims, nil),
	}
}

func (f *fixture) Plan(pair mapping.TypePair) (*plan.Node, error) {
	return f.compiler.Compile(pair)
}

func (f *fixture) ConcreteTarget(source, target reflect.Type) (reflect.Type, bool) {
	return f.tree.FindConcreteTarget(source, target)
}

func (f *fixture) configure(t *testing.T, pair mapping.TypePair, fn func(opts *mapping.Options)) {
	t.Helper()

	require.NoError(t, f.tree.Configure(pair, func(tm *mapping.TypeMapping) error {
		fn(&tm.Options)
		return nil
	}))
}

func pairOf[S, D any]() mapping.TypePair {
	return mapping.PairOf(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

// run maps src onto dst, the current target value, and returns the new target value.
func run[D any](t *testing.T, f *fixture, src any, dst D) (D, error) {
	t.Helper()

	var zero D

	n, err := f.Plan(mapping.PairOf(reflect.TypeOf(src), reflect.TypeFor[D]()))
	if err != nil {
		return zero, err
	}

	v, err := plan.NewExecutor(f, nil).Run(n, reflect.ValueOf(src), reflect.ValueOf(dst))
	if err != nil {
		return zero, err
	}

	return v.Interface().(D), nil
}

func TestCompile_Kinds(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		pair mapping.TypePair
		want plan.Kind
	}{
		{"identical leaves", pairOf[int, int](), plan.KindCopy},
		{"identical plain structs", pairOf[Address, Address](), plan.KindCopy},
		{"time", pairOf[time.Time, time.Time](), plan.KindCopy},
		{"leaf conversion", pairOf[int, string](), plan.KindConvert},
		{"uuid to string", pairOf[uuid.UUID, string](), plan.KindConvert},
		{"optional both sides", pairOf[*int, *string](), plan.KindNullable},
		{"optional source", pairOf[*int, int](), plan.KindNullable},
		{"optional time", pairOf[*time.Time, *time.Time](), plan.KindNullable},
		{"struct value to reference", pairOf[Address, *AddressDTO](), plan.KindNullable},
		{"enum to string", pairOf[Color, string](), plan.KindEnum},
		{"string to enum", pairOf[string, Color](), plan.KindEnum},
		{"struct", pairOf[Person, PersonDTO](), plan.KindStruct},
		{"reference", pairOf[*Node, *NodeDTO](), plan.KindReference},
		{"collection", pairOf[[]int, []string](), plan.KindCollection},
		{"array", pairOf[[2]int, []int](), plan.KindCollection},
		{"dictionary", pairOf[map[string]int, map[string]string](), plan.KindDictionary},
		{"interface", pairOf[any, string](), plan.KindDynamic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := f.compiler.Compile(tt.pair)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Kind(), "kind of %s", tt.pair)
			assert.Equal(t, tt.pair, n.Pair())
		})
	}
}

func TestCompile_Memoized(t *testing.T) {
	f := newFixture(t)
	pair := pairOf[Person, PersonDTO]()

	first, err := f.compiler.Compile(pair)
	require.NoError(t, err)

	second, err := f.compiler.Compile(pair)
	require.NoError(t, err)
	assert.Same(t, first, second)

	tm, ok := f.tree.Lookup(pair)
	require.True(t, ok)
	assert.True(t, tm.Compiled())

	// nested pairs are published with their owner
	nested, ok := f.tree.Lookup(pairOf[*Address, *AddressDTO]())
	require.True(t, ok)
	assert.True(t, nested.Compiled())
}

func TestCompile_RecursiveTypeMakesCyclicPlan(t *testing.T) {
	f := newFixture(t)

	n, err := f.compiler.Compile(pairOf[*Node, *NodeDTO]())
	require.NoError(t, err)
	require.Len(t, n.Members(), 2)

	next := n.Members()[1]
	assert.Equal(t, "Next", next.Mapping.Target.String())
	assert.Same(t, n, next.Plan)
}

func TestCompile_FailureRollsBack(t *testing.T) {
	f := newFixture(t)
	pair := pairOf[Broken, BrokenDTO]()

	require.NoError(t, f.tree.DeclareMember(pair, "Ch", "Ch", nil, mapping.Options{}))

	_, err := f.compiler.Compile(pair)

	var convErr *mapping.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "Ch", convErr.Member)
	require.ErrorIs(t, err, primitive.ErrNotConvertible)

	// the pair compiled on the way is not published
	tm, ok := f.tree.Lookup(pairOf[*Node, *NodeDTO]())
	require.True(t, ok)
	assert.False(t, tm.Compiled())

	// a failed pair fails again rather than half compiled
	_, err = f.compiler.Compile(pair)
	require.ErrorAs(t, err, &convErr)
}

func TestCompile_UnsupportedPair(t *testing.T) {
	f := newFixture(t)

	_, err := f.compiler.Compile(pairOf[[]int, map[int]int]())

	var cfgErr *mapping.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.ErrorIs(t, err, plan.ErrUnsupportedPair)
}

func TestExecutor_StructMapping(t *testing.T) {
	f := newFixture(t)

	src := Person{
		Name:     "Ada",
		Age:      36,
		Address:  &Address{City: "London", Zip: 1815},
		Favorite: Green,
		Tags:     []string{"math"},
	}

	got, err := run(t, f, src, PersonDTO{})
	require.NoError(t, err)

	assert.Equal(t, PersonDTO{
		Name:     "Ada",
		Age:      36,
		Address:  &AddressDTO{City: "London", Zip: "1815"},
		Favorite: "green",
		Tags:     []string{"math"},
	}, got)

	src.Tags[0] = "changed"
	assert.Equal(t, "math", got.Tags[0], "collections are copied")
}

func TestExecutor_NullPropagation(t *testing.T) {
	f := newFixture(t)

	got, err := run(t, f, Person{Name: "Bob"}, PersonDTO{Address: &AddressDTO{City: "stale"}})
	require.NoError(t, err)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.Tags)

	var missing *int

	ptr, err := run(t, f, missing, (*string)(nil))
	require.NoError(t, err)
	assert.Nil(t, ptr)

	value, err := run(t, f, missing, "")
	require.NoError(t, err)
	assert.Empty(t, value)

	seven := 7

	wrapped, err := run(t, f, &seven, (*string)(nil))
	require.NoError(t, err)
	require.NotNil(t, wrapped)
	assert.Equal(t, "7", *wrapped)
}

func TestExecutor_IdentityPreservation(t *testing.T) {
	f := newFixture(t)

	src := &Node{ID: 1}
	src.Next = src

	got, err := run(t, f, src, (*NodeDTO)(nil))
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.Same(t, got, got.Next)
}

func TestExecutor_SharedReferenceFanIn(t *testing.T) {
	f := newFixture(t)

	shared := &Node{ID: 2}

	got, err := run(t, f, Link{Left: shared, Right: shared}, LinkDTO{})
	require.NoError(t, err)
	require.NotNil(t, got.Left)
	assert.Same(t, got.Left, got.Right)
}

func TestExecutor_TrackingDisabled(t *testing.T) {
	f := newFixture(t)

	off := false
	f.configure(t, pairOf[*Node, *NodeDTO](), func(opts *mapping.Options) { opts.Tracking = &off })

	shared := &Node{ID: 2}

	got, err := run(t, f, Link{Left: shared, Right: shared}, LinkDTO{})
	require.NoError(t, err)
	assert.Equal(t, got.Left, got.Right)
	assert.NotSame(t, got.Left, got.Right)
}

func TestExecutor_ReferenceBehavior(t *testing.T) {
	existing := &AddressDTO{City: "old"}

	t.Run("reuse target", func(t *testing.T) {
		f := newFixture(t)

		got, err := run(t, f, &Address{City: "new"}, existing)
		require.NoError(t, err)
		assert.Same(t, existing, got)
		assert.Equal(t, "new", existing.City)
	})

	t.Run("create new instance", func(t *testing.T) {
		f := newFixture(t)
		f.configure(t, pairOf[*Address, *AddressDTO](), func(opts *mapping.Options) {
			opts.Reference = mapping.ReferenceCreateNew
		})

		kept := &AddressDTO{City: "kept"}

		got, err := run(t, f, &Address{City: "new"}, kept)
		require.NoError(t, err)
		assert.NotSame(t, kept, got)
		assert.Equal(t, "kept", kept.City)
		assert.Equal(t, "new", got.City)
	})

	t.Run("constructor", func(t *testing.T) {
		f := newFixture(t)
		f.configure(t, pairOf[*Address, *AddressDTO](), func(opts *mapping.Options) {
			opts.Constructor = &mapping.Constructor{
				Type: reflect.TypeFor[*AddressDTO](),
				New: func() (reflect.Value, error) {
					return reflect.ValueOf(&AddressDTO{Zip: "preset"}), nil
				},
			}
		})

		got, err := run(t, f, &Address{City: "Paris"}, (*AddressDTO)(nil))
		require.NoError(t, err)
		assert.Equal(t, &AddressDTO{City: "Paris", Zip: "0"}, got)
	})
}

func TestExecutor_ConversionFailure(t *testing.T) {
	f := newFixture(t)

	type Source struct{ Count string }

	type Target struct{ Count int }

	_, err := run(t, f, Source{Count: "many"}, Target{})

	var convErr *mapping.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "Count", convErr.Member)
}

func TestExecutor_StringToStringerEnum(t *testing.T) {
	f := newFixture(t)

	type Source struct{ Shade string }

	type Target struct{ Shade Color }

	got, err := run(t, f, Source{Shade: "GREEN"}, Target{})
	require.NoError(t, err)
	assert.Equal(t, Green, got.Shade)

	_, err = run(t, f, Source{Shade: "unknown"}, Target{})
	var convErr *mapping.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "Shade", convErr.Member)
}

func TestExecutor_MemberConverterOnElements(t *testing.T) {
	type Source struct{ Codes []int }

	type Target struct{ Codes []string }

	f := newFixture(t)

	caster, err := primitive.ParseCaster(func(v int) string { return "#" + strconv.Itoa(v) })
	require.NoError(t, err)
	require.NoError(t, f.tree.DeclareMember(pairOf[Source, Target](), "Codes", "Codes", &caster, mapping.Options{}))

	got, err := run(t, f, Source{Codes: []int{1, 2}}, Target{})
	require.NoError(t, err)
	assert.Equal(t, []string{"#1", "#2"}, got.Codes)
}

func TestExecutor_MemberConverterMismatch(t *testing.T) {
	type Source struct{ Codes []int }

	type Target struct{ Codes []string }

	f := newFixture(t)

	caster, err := primitive.ParseCaster(func(v bool) string { return fmt.Sprint(v) })
	require.NoError(t, err)
	require.NoError(t, f.tree.DeclareMember(pairOf[Source, Target](), "Codes", "Codes", &caster, mapping.Options{}))

	_, err = f.compiler.Compile(pairOf[Source, Target]())
	require.ErrorIs(t, err, plan.ErrConverterMismatch)
}

func TestExecutor_CustomConverterError(t *testing.T) {
	f := newFixture(t)

	caster, err := primitive.ParseCaster(func(s string) (int, error) {
		return 0, errors.New("boom")
	})
	require.NoError(t, err)

	f.configure(t, pairOf[string, int](), func(opts *mapping.Options) { opts.Converter = &caster })

	_, err = run(t, f, "x", 0)

	var convErr *mapping.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, err.Error(), "boom")
}
