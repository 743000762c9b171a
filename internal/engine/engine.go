// Package engine runs mappings: it resolves the plan of the runtime type pair,
// compiling it on first use, and executes it with a reference tracker.
package engine

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"object-mapper/internal/mapping"
	"object-mapper/internal/meta"
	"object-mapper/internal/plan"
	"object-mapper/internal/tracker"
	"object-mapper/primitive"
)

// Engine owns the configuration tree of a mapper and the plans compiled from it.
// It is safe for concurrent use. Trackers are not: a tracker passed to Map must
// not be shared by concurrent calls.
type Engine struct {
	tree     *mapping.Tree
	prims    *primitive.Registry
	compiler *plan.Compiler
	logger   *zap.Logger

	mu    sync.Mutex // serializes compilation
	group singleflight.Group
}

// New creates an Engine over tree.
func New(tree *mapping.Tree, prims *primitive.Registry, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		tree:     tree,
		prims:    prims,
		compiler: plan.NewCompiler(tree, prims, logger.Named("plan")),
		logger:   logger,
	}
}

// Tree returns the configuration tree.
func (e *Engine) Tree() *mapping.Tree {
	return e.tree
}

// Primitives returns the leaf conversion registry.
func (e *Engine) Primitives() *primitive.Registry {
	return e.prims
}

// Plan returns the plan of pair, compiling it when no plan was published yet.
// Concurrent requests for the same pair share one compilation.
func (e *Engine) Plan(pair mapping.TypePair) (*plan.Node, error) {
	if tm, ok := e.tree.Lookup(pair); ok {
		if p := tm.Plan(); p != nil {
			return p.(*plan.Node), nil
		}
	}

	v, err, _ := e.group.Do(pair.Key(), func() (any, error) {
		e.mu.Lock()
		defer e.mu.Unlock()

		return e.compiler.Compile(pair)
	})
	if err != nil {
		return nil, err
	}

	return v.(*plan.Node), nil
}

// ConcreteTarget picks the concrete type an interface target is built as for source.
func (e *Engine) ConcreteTarget(source, target reflect.Type) (reflect.Type, bool) {
	return e.tree.FindConcreteTarget(source, target)
}

// Map maps src into the value dst points to, using tr to keep reference
// identity. A nil tr gets a tracker for this call only.
//
// The pair is resolved from the runtime type of src and the type dst points
// to. When both are references, the object dst points to is mapped in place
// and registered in the tracker before its members.
func (e *Engine) Map(tr *tracker.Tracker, src, dst any) error {
	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return &mapping.RuntimeMappingError{Err: fmt.Errorf("%w, got %T", mapping.ErrInvalidTarget, dst)}
	}

	if src == nil {
		target.Elem().SetZero()
		return nil
	}

	source := reflect.ValueOf(src)
	exec := plan.NewExecutor(e, tr)

	if meta.IsReference(source.Type()) && meta.IsStruct(target.Type().Elem()) {
		n, err := e.Plan(mapping.PairOf(source.Type(), target.Type()))
		if err != nil {
			return err
		}

		return exec.MapInto(n, source, target)
	}

	n, err := e.Plan(mapping.PairOf(source.Type(), target.Type().Elem()))
	if err != nil {
		return err
	}

	out, err := exec.Run(n, source, target.Elem())
	if err != nil {
		return err
	}

	target.Elem().Set(out)

	return nil
}

// MapType maps src onto a new value of type t.
func (e *Engine) MapType(tr *tracker.Tracker, src any, t reflect.Type) (any, error) {
	if t == nil {
		return nil, &mapping.RuntimeMappingError{Err: fmt.Errorf("%w, got no type", mapping.ErrInvalidTarget)}
	}

	out := reflect.New(t)
	if err := e.Map(tr, src, out.Interface()); err != nil {
		return nil, err
	}

	return out.Elem().Interface(), nil
}

// Describe compiles the plan of pair and renders it.
func (e *Engine) Describe(pair mapping.TypePair) (string, error) {
	n, err := e.Plan(pair)
	if err != nil {
		return "", err
	}

	return plan.Describe(n), nil
}
