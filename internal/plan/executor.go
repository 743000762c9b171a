package plan

import (
	"fmt"
	"reflect"

	"object-mapper/internal/mapping"
	"object-mapper/internal/tracker"
)

// Resolver supplies plans for runtime types while a plan runs.
type Resolver interface {
	Plan(pair mapping.TypePair) (*Node, error)
	ConcreteTarget(source, target reflect.Type) (reflect.Type, bool)
}

// Executor interprets plans for one top-level mapping call. It is not safe for
// concurrent use, like the tracker it writes to.
type Executor struct {
	resolver Resolver
	tracker  *tracker.Tracker
}

// NewExecutor creates an Executor. A nil tracker is replaced by a fresh one.
func NewExecutor(resolver Resolver, tr *tracker.Tracker) *Executor {
	if tr == nil {
		tr = tracker.New()
	}

	return &Executor{resolver: resolver, tracker: tr}
}

// Tracker returns the reference tracker of the executor.
func (e *Executor) Tracker() *tracker.Tracker {
	return e.tracker
}

// Run maps src with n and returns the target value. dst is the current target
// value, reused or merged into depending on the plan; it may be invalid.
func (e *Executor) Run(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	if !src.IsValid() {
		src = reflect.Zero(n.pair.Source)
	}

	switch n.kind {
	case KindCopy:
		return src, nil
	case KindConvert, KindEnum:
		return e.convert(n, src)
	case KindCustom:
		return e.custom(n, src)
	case KindNullable:
		return e.nullable(n, src, dst)
	case KindStruct:
		return e.structValue(n, src, dst)
	case KindReference:
		return e.reference(n, src, dst)
	case KindCollection:
		return e.collection(n, src, dst)
	case KindDictionary:
		return e.dictionary(n, src, dst)
	case KindDynamic:
		return e.dynamic(n, src, dst)
	}

	return reflect.Value{}, &mapping.RuntimeMappingError{Pair: n.pair, Err: fmt.Errorf("unexpected %s plan node", n.kind)}
}

// MapInto maps src into the object dst points to. The caller picked the target
// instance, so the reference behavior of the plan does not apply to it.
func (e *Executor) MapInto(n *Node, src, dst reflect.Value) error {
	if n.kind != KindReference {
		v, err := e.Run(n, src, dst)
		if err != nil {
			return err
		}

		switch {
		case v.IsNil():
			dst.Elem().SetZero()
		case v.Pointer() != dst.Pointer():
			dst.Elem().Set(v.Elem())
		}

		return nil
	}

	if src.IsNil() {
		dst.Elem().SetZero()
		return nil
	}

	if err := e.track(n, src, dst); err != nil {
		return err
	}

	return e.populate(n, src, dst)
}

func (e *Executor) convert(n *Node, src reflect.Value) (reflect.Value, error) {
	v, err := n.convert(src)
	if err != nil {
		return reflect.Value{}, &mapping.ConversionError{Pair: n.pair, Err: err}
	}

	return v, nil
}

func (e *Executor) custom(n *Node, src reflect.Value) (reflect.Value, error) {
	v, ok, err := n.caster.Call(src)
	if err != nil {
		return reflect.Value{}, &mapping.ConversionError{Pair: n.pair, Err: err}
	}

	if !ok {
		return n.zero(), nil
	}

	return assign(v, n.pair.Target), nil
}

func (e *Executor) nullable(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	inner := src
	if src.Kind() == reflect.Pointer {
		if src.IsNil() {
			return n.zero(), nil
		}

		inner = src.Elem()
	}

	target := n.pair.Target
	if target.Kind() != reflect.Pointer {
		return e.Run(n.elem, inner, dst)
	}

	reuse := reuses(n.behavior) && dst.IsValid() && !dst.IsNil()

	var current reflect.Value
	if reuse {
		current = dst.Elem()
	}

	v, err := e.Run(n.elem, inner, current)
	if err != nil {
		return reflect.Value{}, err
	}

	out := dst
	if !reuse {
		out = reflect.New(target.Elem())
	}

	out.Elem().Set(v)

	return out, nil
}

func (e *Executor) structValue(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	out := reflect.New(n.pair.Target)
	if dst.IsValid() {
		out.Elem().Set(dst)
	}

	if err := e.populate(n, src, out); err != nil {
		return reflect.Value{}, err
	}

	return out.Elem(), nil
}

func (e *Executor) reference(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	if src.IsNil() {
		return n.zero(), nil
	}

	if n.tracking {
		// a source already seen maps to the same target, even one still being populated
		if tracked, ok := e.tracker.Lookup(src, n.pair.Target); ok {
			return tracked, nil
		}
	}

	target, err := e.instance(n, dst)
	if err != nil {
		return reflect.Value{}, err
	}

	// registered before the members so back references find it
	if err := e.track(n, src, target); err != nil {
		return reflect.Value{}, err
	}

	if err := e.populate(n, src, target); err != nil {
		return reflect.Value{}, err
	}

	return target, nil
}

func (e *Executor) instance(n *Node, dst reflect.Value) (reflect.Value, error) {
	if reuses(n.behavior) && dst.IsValid() && !dst.IsNil() {
		return dst, nil
	}

	if c := n.constructor; c != nil {
		return construct(n.pair, c)
	}

	return reflect.New(n.pair.Target.Elem()), nil
}

func (e *Executor) track(n *Node, src, target reflect.Value) error {
	if !n.tracking {
		return nil
	}

	if err := e.tracker.Add(src, target); err != nil {
		return &mapping.RuntimeMappingError{Pair: n.pair, Err: err}
	}

	return nil
}

// populate writes every member of n from src into the object holder points to.
func (e *Executor) populate(n *Node, src, holder reflect.Value) error {
	for _, m := range n.members {
		mm := m.Mapping

		var out reflect.Value

		if v, ok := mm.Source.Get(src); ok {
			current, found := mm.Target.Get(holder)
			if !found {
				current = reflect.Value{}
			}

			var err error
			if out, err = e.Run(m.Plan, v, current); err != nil {
				return mapping.AtMember(err, mm.Target.String())
			}
		} else {
			// nil on the source path
			out = reflect.Zero(mm.Target.Type())
		}

		if err := mm.Target.Set(holder, out); err != nil {
			return &mapping.RuntimeMappingError{Pair: n.pair, Member: mm.Target.String(), Err: err}
		}
	}

	return nil
}

func (e *Executor) dynamic(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	if src.Kind() == reflect.Interface {
		if src.IsNil() {
			return n.zero(), nil
		}

		src = src.Elem()
	}

	if src.Kind() == reflect.Pointer && src.IsNil() {
		return n.zero(), nil
	}

	target := n.pair.Target
	concrete, current := target, dst

	if target.Kind() == reflect.Interface {
		var (
			ok  bool
			err error
		)

		concrete, current, ok, err = e.concrete(n, src.Type(), dst)
		if err != nil {
			return reflect.Value{}, err
		}

		if !ok {
			if src.Type().AssignableTo(target) {
				return assign(src, target), nil
			}

			return reflect.Value{}, &mapping.RuntimeMappingError{
				Pair: mapping.PairOf(src.Type(), target),
				Err:  mapping.ErrNoConcreteType,
			}
		}
	}

	p, err := e.resolver.Plan(mapping.PairOf(src.Type(), concrete))
	if err != nil {
		return reflect.Value{}, err
	}

	v, err := e.Run(p, src, current)
	if err != nil {
		return reflect.Value{}, err
	}

	return assign(v, target), nil
}

// concrete picks the runtime target type for an interface target: the
// configured constructor first, then an explicitly mapped pair. The current
// target value is kept when it already holds that type.
func (e *Executor) concrete(n *Node, source reflect.Type, dst reflect.Value) (reflect.Type, reflect.Value, bool, error) {
	if c := n.constructor; c != nil {
		v, err := construct(n.pair, c)
		return c.Type, v, err == nil, err
	}

	t, ok := e.resolver.ConcreteTarget(source, n.pair.Target)
	if !ok {
		return nil, reflect.Value{}, false, nil
	}

	var current reflect.Value
	if reuses(n.behavior) && dst.IsValid() && !dst.IsNil() && dst.Elem().Type() == t {
		current = dst.Elem()
	}

	return t, current, true, nil
}

func construct(pair mapping.TypePair, c *mapping.Constructor) (reflect.Value, error) {
	v, err := c.New()
	if err != nil {
		return reflect.Value{}, &mapping.RuntimeMappingError{Pair: pair, Err: fmt.Errorf("constructor: %w", err)}
	}

	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return reflect.Value{}, &mapping.RuntimeMappingError{Pair: pair, Err: fmt.Errorf("constructor returned no %s", c.Type)}
	}

	return v, nil
}

func reuses(b mapping.ReferenceBehavior) bool {
	return b != mapping.ReferenceCreateNew
}

// assign returns v as a value of type t, which v must be assignable to.
func assign(v reflect.Value, t reflect.Type) reflect.Value {
	if v.Type() == t {
		return v
	}

	out := reflect.New(t).Elem()
	out.Set(v)

	return out
}
