package plan

import (
	"fmt"
	"reflect"

	"object-mapper/internal/mapping"
)

// collection maps slices and arrays. Reset builds the target from the source
// elements only, merge appends them to the current elements and update matches
// them against the current elements.
func (e *Executor) collection(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	nilSource := src.Kind() == reflect.Slice && src.IsNil()
	current := elements(dst)

	var (
		items []reflect.Value
		err   error
	)

	switch n.strategy {
	case mapping.CollectionMerge:
		if nilSource {
			return orZero(n, dst), nil
		}

		items = append(items, current...)

		mapped, err := e.mapElements(n, src)
		if err != nil {
			return reflect.Value{}, err
		}

		items = append(items, mapped...)

	case mapping.CollectionUpdate:
		if items, err = e.update(n, src, current); err != nil {
			return reflect.Value{}, err
		}

	default:
		if nilSource && n.pair.Target.Kind() == reflect.Slice {
			return n.zero(), nil
		}

		if items, err = e.mapElements(n, src); err != nil {
			return reflect.Value{}, err
		}
	}

	return sequenceOf(n.pair.Target, items), nil
}

func (e *Executor) mapElements(n *Node, src reflect.Value) ([]reflect.Value, error) {
	items := make([]reflect.Value, 0, src.Len())

	for i := range src.Len() {
		v, err := e.Run(n.elem, src.Index(i), reflect.Value{})
		if err != nil {
			return nil, mapping.AtMember(err, fmt.Sprintf("[%d]", i))
		}

		items = append(items, v)
	}

	return items, nil
}

// update applies the source elements to the current ones. Without a comparer,
// leaf elements are added unless an equal value is present and nothing is
// removed. With a comparer, matches are mapped into, new ones added and current
// elements without a match removed. The result then follows the source order.
func (e *Executor) update(n *Node, src reflect.Value, current []reflect.Value) ([]reflect.Value, error) {
	length := 0
	if src.IsValid() {
		length = src.Len()
	}

	if !n.keyed {
		items := append([]reflect.Value(nil), current...)

		for i := range length {
			s := src.Index(i)

			v, err := e.Run(n.elem, s, reflect.Value{})
			if err != nil {
				return nil, mapping.AtMember(err, fmt.Sprintf("[%d]", i))
			}

			if !contains(v, items) {
				items = append(items, v)
			}
		}

		return items, nil
	}

	matched := make([]bool, len(current))
	items := make([]reflect.Value, 0, length)

	for i := range length {
		s := src.Index(i)

		var existing reflect.Value
		if j := indexOf(n.comparer, s, current, matched); j >= 0 {
			matched[j] = true
			existing = current[j]
		}

		v, err := e.Run(n.elem, s, existing)
		if err != nil {
			return nil, mapping.AtMember(err, fmt.Sprintf("[%d]", i))
		}

		items = append(items, v)
	}

	return items, nil
}

// contains tells whether a leaf element equal to mapped is already among items.
func contains(mapped reflect.Value, items []reflect.Value) bool {
	for _, item := range items {
		if sameValue(mapped, item) {
			return true
		}
	}

	return false
}

func indexOf(c *mapping.Comparer, src reflect.Value, current []reflect.Value, matched []bool) int {
	for j, item := range current {
		if !matched[j] && compare(c, src, item) {
			return j
		}
	}

	return -1
}

func compare(c *mapping.Comparer, src, dst reflect.Value) bool {
	s, ok := adapt(src, c.Source)
	if !ok {
		return false
	}

	d, ok := adapt(dst, c.Target)
	if !ok {
		return false
	}

	return c.Equal(s, d)
}

// adapt dereferences or addresses v to get a value of type t.
func adapt(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	switch {
	case v.Type() == t:
		return v, true
	case v.Kind() == reflect.Pointer && v.Type().Elem() == t:
		if v.IsNil() {
			return reflect.Value{}, false
		}

		return v.Elem(), true
	case t.Kind() == reflect.Pointer && t.Elem() == v.Type():
		p := reflect.New(v.Type())
		p.Elem().Set(v)

		return p, true
	}

	return reflect.Value{}, false
}

// sameValue compares leaf values, looking through optional pointers.
func sameValue(a, b reflect.Value) bool {
	if a.Kind() == reflect.Pointer {
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}

		return sameValue(a.Elem(), b.Elem())
	}

	return a.Equal(b)
}

func (e *Executor) dictionary(n *Node, src, dst reflect.Value) (reflect.Value, error) {
	if src.IsNil() {
		switch n.strategy {
		case mapping.CollectionMerge:
			return orZero(n, dst), nil
		case mapping.CollectionReset:
			return n.zero(), nil
		}
	}

	out := reflect.MakeMapWithSize(n.pair.Target, src.Len())

	if n.strategy != mapping.CollectionReset && dst.IsValid() && !dst.IsNil() {
		iter := dst.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
	}

	seen := make(map[any]struct{}, src.Len())

	iter := src.MapRange()
	for iter.Next() {
		k, err := e.Run(n.key, iter.Key(), reflect.Value{})
		if err != nil {
			return reflect.Value{}, mapping.AtMember(err, fmt.Sprintf("[%v]", iter.Key()))
		}

		var existing reflect.Value
		if n.strategy != mapping.CollectionReset {
			existing = out.MapIndex(k)
		}

		v, err := e.Run(n.elem, iter.Value(), existing)
		if err != nil {
			return reflect.Value{}, mapping.AtMember(err, fmt.Sprintf("[%v]", iter.Key()))
		}

		out.SetMapIndex(k, v)
		seen[k.Interface()] = struct{}{}
	}

	if n.strategy == mapping.CollectionUpdate {
		for _, k := range out.MapKeys() {
			if _, ok := seen[k.Interface()]; !ok {
				out.SetMapIndex(k, reflect.Value{})
			}
		}
	}

	return out, nil
}

// elements lists the elements of the current target sequence.
func elements(dst reflect.Value) []reflect.Value {
	if !dst.IsValid() || (dst.Kind() == reflect.Slice && dst.IsNil()) {
		return nil
	}

	items := make([]reflect.Value, dst.Len())
	for i := range items {
		items[i] = dst.Index(i)
	}

	return items
}

func sequenceOf(t reflect.Type, items []reflect.Value) reflect.Value {
	var out reflect.Value

	if t.Kind() == reflect.Array {
		out = reflect.New(t).Elem()
	} else {
		out = reflect.MakeSlice(t, len(items), len(items))
	}

	for i := range min(out.Len(), len(items)) {
		out.Index(i).Set(items[i])
	}

	return out
}

func orZero(n *Node, dst reflect.Value) reflect.Value {
	if dst.IsValid() {
		return dst
	}

	return n.zero()
}
