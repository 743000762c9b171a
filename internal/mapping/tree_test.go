package mapping_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"object-mapper/internal/convention"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

type Animal struct {
	Name string
	Legs int
}

type AnimalDTO struct {
	Name string
	Legs int
	Kind string
}

type Dog struct {
	Animal
	Breed string
}

type DogDTO struct {
	AnimalDTO
	Breed string
}

type Tag struct {
	Name string
}

type Mutt struct {
	Animal
	Tag
}

type Describer interface {
	Describe() string
}

type DogView struct {
	Name string
}

func (v *DogView) Describe() string { return v.Name }

type Named interface {
	GetLabel() string
}

type Robot struct {
	Serial string
}

func (r Robot) GetLabel() string { return r.Serial }

type stubPlan struct {
	pair mapping.TypePair
}

func (p stubPlan) Pair() mapping.TypePair { return p.pair }

func newTree(t *testing.T, logger *zap.Logger) *mapping.Tree {
	t.Helper()

	provider := meta.NewReflectProvider(meta.DefaultFilter())
	rules := match.DefaultRules(match.NewChecker(primitive.NewRegistry(primitive.CategoryAll)))

	return mapping.NewTree(provider, convention.Direct{Provider: provider, Rules: rules}, mapping.Options{}, logger)
}

func pairOf[S, D any]() mapping.TypePair {
	return mapping.PairOf(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

func render(members []*mapping.MemberMapping) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.String()
	}

	return out
}

func TestTree_Root(t *testing.T) {
	tree := newTree(t, nil)

	root := tree.Root()
	require.NotNil(t, root)
	assert.True(t, root.Pair.IsRoot())
	assert.Nil(t, root.Parent)
	assert.Equal(t, 1, tree.Len())

	opts := tree.Effective(root)
	assert.Equal(t, mapping.CollectionReset, opts.Collection)
	assert.Equal(t, mapping.ReferenceReuseTarget, opts.Reference)
	assert.True(t, opts.TrackingEnabled())
}

func TestTree_RootMergedInPlace(t *testing.T) {
	tree := newTree(t, nil)
	before := tree.Root()

	got := tree.Add(&mapping.TypeMapping{
		Pair:    mapping.RootPair,
		Options: mapping.Options{Collection: mapping.CollectionMerge},
	})

	assert.Same(t, before, got)
	assert.Same(t, before, tree.Root())
	assert.Equal(t, 1, tree.Len())

	opts := tree.Effective(tree.Root())
	assert.Equal(t, mapping.CollectionMerge, opts.Collection)
	assert.Equal(t, mapping.ReferenceReuseTarget, opts.Reference)
}

func TestTree_DuplicateAddIsNoop(t *testing.T) {
	tree := newTree(t, nil)
	pair := pairOf[Animal, AnimalDTO]()

	first := tree.Add(mapping.NewTypeMapping(pair))
	second := tree.Add(mapping.NewTypeMapping(pair))

	assert.Same(t, first, second)
	assert.Equal(t, 2, tree.Len())
	assert.Same(t, first, tree.Get(pair))
}

func TestTree_InheritanceResolution(t *testing.T) {
	tree := newTree(t, nil)
	animal := pairOf[Animal, AnimalDTO]()

	require.NoError(t, tree.DeclareMember(animal, "Kind", "Name", nil, mapping.Options{}))
	require.NoError(t, tree.Configure(animal, func(tm *mapping.TypeMapping) error {
		tm.Options.Collection = mapping.CollectionMerge
		return nil
	}))

	dog := tree.Get(pairOf[Dog, AnimalDTO]())

	require.NotNil(t, dog.Parent)
	assert.Equal(t, animal, dog.Parent.Pair)
	assert.False(t, dog.Explicit)
	assert.Equal(t, mapping.CollectionMerge, tree.Effective(dog).Collection)

	members, err := tree.Members(dog)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Name -> Name (by_convention)",
		"Legs -> Legs (by_convention)",
		"Name -> Kind (explicit)",
	}, render(members))
}

func TestTree_MoreSpecificPairsAreReparented(t *testing.T) {
	tree := newTree(t, nil)

	dog := tree.Get(pairOf[Dog, DogDTO]())
	assert.Same(t, tree.Root(), dog.Parent)

	animal := tree.Get(pairOf[Animal, AnimalDTO]())

	assert.Same(t, animal, dog.Parent)
	assert.Same(t, tree.Root(), animal.Parent)
	assert.Equal(t, []*mapping.TypeMapping{dog}, animal.Children)
	assert.Equal(t, []*mapping.TypeMapping{animal}, tree.Root().Children)
	assert.Equal(t, 2, dog.Depth())
}

func TestTree_ConventionMembers(t *testing.T) {
	tree := newTree(t, nil)
	pair := pairOf[Dog, AnimalDTO]()

	t.Run("ignore drops convention members", func(t *testing.T) {
		require.NoError(t, tree.Ignore(pair, "Legs"))

		members, err := tree.Members(tree.Get(pair))
		require.NoError(t, err)
		assert.Equal(t, []string{"Name -> Name (by_convention)"}, render(members))
	})

	t.Run("explicit member replaces convention pair", func(t *testing.T) {
		require.NoError(t, tree.DeclareMember(pair, "Name", "Breed", nil, mapping.Options{}))

		members, err := tree.Members(tree.Get(pair))
		require.NoError(t, err)
		assert.Equal(t, []string{"Breed -> Name (explicit)"}, render(members))
	})
}

func TestTree_DeclareMemberErrors(t *testing.T) {
	tree := newTree(t, nil)
	pair := pairOf[Animal, AnimalDTO]()

	err := tree.DeclareMember(pair, "Kind", "Nam", nil, mapping.Options{})
	require.Error(t, err)

	var cfgErr *mapping.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Kind", cfgErr.Member)
	assert.Contains(t, err.Error(), "did you mean Name?")

	// the failed declaration is reported again when members are resolved
	_, err = tree.Members(tree.Get(pair))
	require.ErrorAs(t, err, &cfgErr)
}

func TestTree_InheritedMemberResolvedOnDescendant(t *testing.T) {
	tree := newTree(t, nil)

	named := pairOf[Named, AnimalDTO]()
	require.NoError(t, tree.DeclareMember(named, "Kind", "GetLabel", nil, mapping.Options{}))

	robot := tree.Get(pairOf[*Robot, AnimalDTO]())
	require.Same(t, tree.Get(named), robot.Parent)

	members, err := tree.Members(robot)
	require.NoError(t, err)
	assert.Equal(t, []string{"GetLabel -> Kind (explicit)"}, render(members))
}

func TestTree_InheritedMemberSkippedWhenUnresolvable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tree := newTree(t, zap.New(core))

	animal := pairOf[Animal, AnimalDTO]()
	require.NoError(t, tree.DeclareMember(animal, "Kind", "Name", nil, mapping.Options{}))

	// Mutt.Name is ambiguous between Animal and Tag
	mutt := tree.Get(pairOf[Mutt, AnimalDTO]())
	require.Same(t, tree.Get(animal), mutt.Parent)

	members, err := tree.Members(mutt)
	require.NoError(t, err)
	assert.Equal(t, []string{"Legs -> Legs (by_convention)"}, render(members))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "inherited member skipped", logs.All()[0].Message)
}

type Invoice struct {
	CustomerName string
	Total        float64
}

type InvoiceDTO struct {
	CustomerNme string
	Total       float64
	Extra       map[string]bool
}

type InvoiceView struct {
	CustomerNme string
	Total       float64
}

func TestTree_UnmappedMemberHints(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tree := newTree(t, zap.New(core))
	tree.EnableHints(match.NewChecker(primitive.NewRegistry(primitive.CategoryAll)))

	members, err := tree.Members(tree.Get(pairOf[Invoice, InvoiceDTO]()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Total -> Total (by_convention)"}, render(members))

	hints := logs.FilterMessage("target member unmapped").All()
	require.Len(t, hints, 1)

	fields := hints[0].ContextMap()
	assert.Equal(t, "CustomerNme", fields["member"])
	assert.Equal(t, "CustomerName", fields["closest"])
	assert.Equal(t, "identical", fields["compatibility"])
	assert.Equal(t, false, fields["ambiguous"])

	t.Run("ignored members are not reported", func(t *testing.T) {
		pair := pairOf[Invoice, InvoiceView]()
		require.NoError(t, tree.Ignore(pair, "CustomerNme"))

		_, err := tree.Members(tree.Get(pair))
		require.NoError(t, err)
		assert.Len(t, logs.FilterMessage("target member unmapped").All(), 1)
	})
}

func TestTree_HintsDisabledByDefault(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tree := newTree(t, zap.New(core))

	_, err := tree.Members(tree.Get(pairOf[Invoice, InvoiceDTO]()))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestTree_ConfigureAfterCompile(t *testing.T) {
	tree := newTree(t, nil)
	pair := pairOf[Animal, AnimalDTO]()

	tm := tree.Get(pair)
	tm.PublishPlan(stubPlan{pair})

	err := tree.Ignore(pair, "Legs")
	require.ErrorIs(t, err, mapping.ErrAlreadyCompiled)
}

func TestTree_PublishPlanFirstWins(t *testing.T) {
	tm := mapping.NewTypeMapping(pairOf[Animal, AnimalDTO]())

	first := stubPlan{tm.Pair}
	second := stubPlan{pairOf[Dog, DogDTO]()}

	assert.Equal(t, first, tm.PublishPlan(first))
	assert.Equal(t, first, tm.PublishPlan(second))
	assert.True(t, tm.Compiled())
}

func TestTree_FindConcreteTarget(t *testing.T) {
	tree := newTree(t, nil)
	describer := reflect.TypeFor[Describer]()

	_, ok := tree.FindConcreteTarget(reflect.TypeFor[*Dog](), describer)
	assert.False(t, ok)

	require.NoError(t, tree.Configure(pairOf[*Animal, *DogView](), nil))

	got, ok := tree.FindConcreteTarget(reflect.TypeFor[*Dog](), describer)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[*DogView](), got)

	got, ok = tree.FindConcreteTarget(reflect.TypeFor[*Animal](), describer)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[*DogView](), got)

	_, ok = tree.FindConcreteTarget(reflect.TypeFor[*Robot](), describer)
	assert.False(t, ok)
}

func TestTree_FindConcreteTarget_PointerToStructTarget(t *testing.T) {
	tree := newTree(t, nil)
	require.NoError(t, tree.Configure(pairOf[Dog, DogView](), nil))

	// only *DogView implements Describer
	got, ok := tree.FindConcreteTarget(reflect.TypeFor[*Dog](), reflect.TypeFor[Describer]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[*DogView](), got)
}

func TestTree_PointerPairInheritsValuePair(t *testing.T) {
	tree := newTree(t, nil)

	value := pairOf[Animal, AnimalDTO]()
	require.NoError(t, tree.DeclareMember(value, "Kind", "Name", nil, mapping.Options{}))

	ptr := tree.Get(pairOf[*Animal, *AnimalDTO]())
	require.Same(t, tree.Get(value), ptr.Parent)

	members, err := tree.Members(ptr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Name -> Name (by_convention)",
		"Legs -> Legs (by_convention)",
		"Name -> Kind (explicit)",
	}, render(members))
}

func TestTree_Walk(t *testing.T) {
	tree := newTree(t, nil)
	tree.Get(pairOf[Dog, DogDTO]())
	tree.Get(pairOf[Animal, AnimalDTO]())
	tree.Get(pairOf[string, int]())

	var visited []string

	tree.Walk(func(tm *mapping.TypeMapping) bool {
		visited = append(visited, tm.String())
		return true
	})

	assert.Equal(t, []string{
		"interface {} -> interface {}",
		"mapping_test.Animal -> mapping_test.AnimalDTO",
		"mapping_test.Dog -> mapping_test.DogDTO",
		"string -> int",
	}, visited)
}
