package engine_test

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"object-mapper/internal/convention"
	"object-mapper/internal/engine"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/internal/tracker"
	"object-mapper/primitive"
)

type Employee struct {
	Name    string
	Manager *Employee
	Self    *Employee
}

type EmployeeDTO struct {
	Name    string
	Manager *EmployeeDTO
	Self    *EmployeeDTO
}

type Point struct{ X, Y int }

type PointDTO struct{ X, Y string }

type Labeled interface{ Label() string }

type Tag struct{ Text string }

type TagDTO struct{ Text string }

func (t TagDTO) Label() string { return t.Text }

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()

	prims := primitive.NewRegistry(primitive.CategoryAll)
	provider := meta.NewReflectProvider(meta.DefaultFilter())
	rules := match.DefaultRules(match.NewChecker(prims))
	tree := mapping.NewTree(provider, convention.Direct{Provider: provider, Rules: rules}, mapping.Options{}, nil)

	return engine.New(tree, prims, nil)
}

func pairOf[S, D any]() mapping.TypePair {
	return mapping.PairOf(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

func TestMap_InvalidTarget(t *testing.T) {
	e := newEngine(t)

	for _, dst := range []any{nil, PointDTO{}, (*PointDTO)(nil)} {
		err := e.Map(nil, Point{}, dst)
		require.ErrorIs(t, err, mapping.ErrInvalidTarget, spew.Sdump(dst))
	}
}

func TestMap_ValueTarget(t *testing.T) {
	e := newEngine(t)

	var dst PointDTO
	require.NoError(t, e.Map(nil, Point{X: 1, Y: 2}, &dst))
	assert.Equal(t, PointDTO{X: "1", Y: "2"}, dst)
}

func TestMap_NilSourceZeroesTarget(t *testing.T) {
	e := newEngine(t)

	dst := PointDTO{X: "1"}
	require.NoError(t, e.Map(nil, nil, &dst))
	assert.Zero(t, dst)

	ref := EmployeeDTO{Name: "x"}
	require.NoError(t, e.Map(nil, (*Employee)(nil), &ref))
	assert.Zero(t, ref)
}

func TestMap_ReferenceInPlace(t *testing.T) {
	e := newEngine(t)

	boss := &Employee{Name: "boss"}
	boss.Self = boss
	src := &Employee{Name: "dev", Manager: boss}

	var dst EmployeeDTO
	require.NoError(t, e.Map(nil, src, &dst))

	assert.Equal(t, "dev", dst.Name)
	require.NotNil(t, dst.Manager)
	assert.Equal(t, "boss", dst.Manager.Name)
	assert.Same(t, dst.Manager, dst.Manager.Self)
}

func TestMap_TopLevelIsTracked(t *testing.T) {
	e := newEngine(t)

	src := &Employee{Name: "loop"}
	src.Self = src

	var dst EmployeeDTO
	require.NoError(t, e.Map(nil, src, &dst))
	assert.Same(t, &dst, dst.Self)
}

func TestMap_SharedTracker(t *testing.T) {
	e := newEngine(t)
	tr := tracker.New()

	shared := &Employee{Name: "shared"}

	var first, second EmployeeDTO
	require.NoError(t, e.Map(tr, &Employee{Name: "a", Manager: shared}, &first))
	require.NoError(t, e.Map(tr, &Employee{Name: "b", Manager: shared}, &second))

	assert.Same(t, first.Manager, second.Manager)
	assert.Equal(t, 3, tr.Len())
}

func TestMap_InterfaceTarget(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Tree().Configure(pairOf[Tag, TagDTO](), nil))

	var dst Labeled
	require.NoError(t, e.Map(nil, Tag{Text: "go"}, &dst))
	assert.Equal(t, TagDTO{Text: "go"}, dst)
}

func TestMapType(t *testing.T) {
	e := newEngine(t)

	v, err := e.MapType(nil, Point{X: 3}, reflect.TypeFor[PointDTO]())
	require.NoError(t, err)
	assert.Equal(t, PointDTO{X: "3", Y: "0"}, v)

	ref, err := e.MapType(nil, &Employee{Name: "n"}, reflect.TypeFor[*EmployeeDTO]())
	require.NoError(t, err)
	require.IsType(t, &EmployeeDTO{}, ref)
	assert.Equal(t, "n", ref.(*EmployeeDTO).Name)

	_, err = e.MapType(nil, Point{}, nil)
	require.ErrorIs(t, err, mapping.ErrInvalidTarget)
}

func TestPlan_ConcurrentCallsPublishOnePlan(t *testing.T) {
	e := newEngine(t)
	pair := pairOf[*Employee, *EmployeeDTO]()

	var (
		g     errgroup.Group
		plans [16]any
		fails atomic.Int32
	)

	for i := range plans {
		g.Go(func() error {
			n, err := e.Plan(pair)
			if err != nil {
				fails.Add(1)
				return err
			}

			plans[i] = n

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Zero(t, fails.Load())

	for _, p := range plans[1:] {
		assert.Same(t, plans[0], p)
	}
}

func TestDescribe(t *testing.T) {
	e := newEngine(t)

	out, err := e.Describe(pairOf[Point, PointDTO]())
	require.NoError(t, err)
	assert.Contains(t, out, "#1 struct engine_test.Point -> engine_test.PointDTO\n")
	assert.Contains(t, out, "convert int -> string")
}
