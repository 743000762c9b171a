package mapping

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"object-mapper/internal/common"
	"object-mapper/internal/convention"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

// TypePair identifies a mapping configuration. Equality is type identity.
type TypePair struct {
	Source reflect.Type
	Target reflect.Type
}

// PairOf is a shorthand for TypePair{Source: source, Target: target}.
func PairOf(source, target reflect.Type) TypePair {
	return TypePair{Source: source, Target: target}
}

// String renders the pair as "Source -> Target".
func (p TypePair) String() string {
	return fmt.Sprintf("%s -> %s", typeString(p.Source), typeString(p.Target))
}

// Key returns a process-unique key for the pair.
func (p TypePair) Key() string {
	return common.TypeKey(p.Source) + "|" + common.TypeKey(p.Target)
}

// IsRoot reports the (any, any) pair.
func (p TypePair) IsRoot() bool {
	return p.Source == meta.AnyType && p.Target == meta.AnyType
}

// Assignable reports whether p can stand in for ancestor on both sides.
func (p TypePair) Assignable(ancestor TypePair) bool {
	return meta.Assignable(p.Source, ancestor.Source) && meta.Assignable(p.Target, ancestor.Target)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// Origin tells how a member mapping was found.
type Origin int

const (
	OriginExplicit Origin = iota + 1
	OriginConvention
)

// String returns a human-readable representation of the Origin.
func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit"
	case OriginConvention:
		return "by_convention"
	default:
		return common.UnknownStr
	}
}

// MemberMapping feeds one target path from one source path.
type MemberMapping struct {
	Source meta.Path
	Target meta.Path
	Origin Origin

	// Converter replaces the plan of the member, or of each element when its
	// source type is the element type of a collection source.
	Converter *primitive.Caster

	// Options override the enclosing pair's options for this member.
	Options Options
}

// Pair returns the type pair of the member values.
func (m *MemberMapping) Pair() TypePair {
	return PairOf(m.Source.Type(), m.Target.Type())
}

// String renders "Source -> Target (origin)".
func (m *MemberMapping) String() string {
	return fmt.Sprintf("%s -> %s (%s)", m.Source, m.Target, m.Origin)
}

// CompiledPlan is the executable form of a TypeMapping, built by package plan.
type CompiledPlan interface {
	Pair() TypePair
}

type planBox struct {
	plan CompiledPlan
}

// TypeMapping holds everything known about a TypePair. Its structural fields are
// guarded by the owning Tree.
type TypeMapping struct {
	Pair     TypePair
	Parent   *TypeMapping
	Children []*TypeMapping

	Options    Options
	Convention convention.Convention // nil inherits
	Explicit   bool                  // declared by configuration rather than first use

	declared []*MemberMapping
	ignored  []string
	err      error // configuration problem found while declaring

	members  []*MemberMapping // resolved lazily
	resolved bool

	plan atomic.Pointer[planBox]
}

// NewTypeMapping creates an unattached TypeMapping for pair.
func NewTypeMapping(pair TypePair) *TypeMapping {
	return &TypeMapping{Pair: pair}
}

// Plan returns the compiled plan, or nil.
func (tm *TypeMapping) Plan() CompiledPlan {
	if box := tm.plan.Load(); box != nil {
		return box.plan
	}

	return nil
}

// PublishPlan stores the compiled plan. The first published plan wins and is returned.
func (tm *TypeMapping) PublishPlan(p CompiledPlan) CompiledPlan {
	if tm.plan.CompareAndSwap(nil, &planBox{plan: p}) {
		return p
	}

	return tm.Plan()
}

// Compiled reports whether a plan was published.
func (tm *TypeMapping) Compiled() bool {
	return tm.plan.Load() != nil
}

// Declared returns the explicitly declared member mappings of this pair only.
func (tm *TypeMapping) Declared() []*MemberMapping {
	return tm.declared
}

// Ignored returns the target paths excluded from this pair only.
func (tm *TypeMapping) Ignored() []string {
	return tm.ignored
}

// Err returns the first configuration problem recorded for the pair.
func (tm *TypeMapping) Err() error {
	return tm.err
}

// Depth returns the distance from the root.
func (tm *TypeMapping) Depth() int {
	depth := 0
	for p := tm.Parent; p != nil; p = p.Parent {
		depth++
	}

	return depth
}

// String renders the pair of the mapping.
func (tm *TypeMapping) String() string {
	return tm.Pair.String()
}
