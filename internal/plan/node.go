package plan

import (
	"reflect"

	"object-mapper/internal/mapping"
	"object-mapper/primitive"
)

// Node is one step of a compiled plan. Which fields are set depends on Kind.
// A Node is immutable once its plan is published.
type Node struct {
	kind Kind
	pair mapping.TypePair

	convert primitive.Func    // convert, enum
	caster  *primitive.Caster // custom

	elem    *Node    // nullable inner value, collection element, dictionary value
	key     *Node    // dictionary key
	members []Member // struct, reference

	strategy mapping.CollectionStrategy
	comparer *mapping.Comparer
	keyed    bool // update matches by comparer and removes unmatched target elements

	behavior    mapping.ReferenceBehavior
	tracking    bool
	constructor *mapping.Constructor
}

var _ mapping.CompiledPlan = (*Node)(nil)

// Member is the plan of one member mapping.
type Member struct {
	Mapping *mapping.MemberMapping
	Plan    *Node
}

// Kind returns the variant of the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// Pair returns the type pair the node maps.
func (n *Node) Pair() mapping.TypePair {
	return n.pair
}

// Elem returns the inner node of nullable, collection and dictionary nodes.
func (n *Node) Elem() *Node {
	return n.elem
}

// Key returns the key node of a dictionary node.
func (n *Node) Key() *Node {
	return n.key
}

// Members returns the member plans of struct and reference nodes.
func (n *Node) Members() []Member {
	return n.members
}

// Strategy returns the collection strategy of collection and dictionary nodes.
func (n *Node) Strategy() mapping.CollectionStrategy {
	return n.strategy
}

// Tracking reports whether a reference node uses the reference tracker.
func (n *Node) Tracking() bool {
	return n.tracking
}

// Behavior returns the reference behavior of reference nodes.
func (n *Node) Behavior() mapping.ReferenceBehavior {
	return n.behavior
}

func (n *Node) zero() reflect.Value {
	return reflect.Zero(n.pair.Target)
}
