package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"object-mapper/internal/convention"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

// RootPair is the (any, any) pair every tree is rooted at.
var RootPair = PairOf(meta.AnyType, meta.AnyType)

// Tree is the type-pair configuration store. Pairs are arranged by
// assignability: a pair sits under the most specific registered pair whose
// source and target types it can stand in for.
type Tree struct {
	mu    sync.RWMutex
	root  *TypeMapping
	index map[TypePair]*TypeMapping
	order []*TypeMapping // insertion order, root excluded

	provider meta.Provider
	hints    *match.Checker // nil disables unmapped member hints
	logger   *zap.Logger
}

// NewTree creates a tree whose root carries conv and opts on top of DefaultOptions.
func NewTree(provider meta.Provider, conv convention.Convention, opts Options, logger *zap.Logger) *Tree {
	if logger == nil {
		logger = zap.NewNop()
	}

	root := NewTypeMapping(RootPair)
	root.Options = opts.Inherit(DefaultOptions(), RootPair)
	root.Convention = conv
	root.Explicit = true

	return &Tree{
		root:     root,
		index:    map[TypePair]*TypeMapping{RootPair: root},
		provider: provider,
		logger:   logger,
	}
}

// EnableHints makes Members warn about every target member left unmapped that
// has a plausible source, ranked by name similarity and checker.
func (t *Tree) EnableHints(checker *match.Checker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.hints = checker
}

// Root returns the (any, any) mapping.
func (t *Tree) Root() *TypeMapping {
	return t.root
}

// Provider returns the member provider the tree resolves paths with.
func (t *Tree) Provider() meta.Provider {
	return t.provider
}

// Len returns the number of registered pairs, root included.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.index)
}

// Lookup returns the mapping registered for pair, without creating it.
func (t *Tree) Lookup(pair TypePair) (*TypeMapping, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	tm, ok := t.index[pair]

	return tm, ok
}

// Add registers tm and returns the canonical mapping for its pair. A pair that
// is already registered is left untouched and the existing mapping is returned.
// A root mapping is merged into the existing root in place.
func (t *Tree) Add(tm *TypeMapping) *TypeMapping {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm.Pair.IsRoot() {
		t.mergeRoot(tm)
		return t.root
	}

	if existing, ok := t.index[tm.Pair]; ok {
		return existing
	}

	t.insert(tm)

	return tm
}

// Get returns the mapping for pair, creating it below its nearest ancestor when absent.
func (t *Tree) Get(pair TypePair) *TypeMapping {
	t.mu.RLock()
	tm, ok := t.index[pair]
	t.mu.RUnlock()

	if ok {
		return tm
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.getLocked(pair)
}

func (t *Tree) getLocked(pair TypePair) *TypeMapping {
	if tm, ok := t.index[pair]; ok {
		return tm
	}

	tm := NewTypeMapping(pair)
	t.insert(tm)

	t.logger.Debug("type pair registered",
		zap.Stringer("pair", pair),
		zap.Stringer("parent", tm.Parent))

	return tm
}

// Configure runs fn on the mapping of pair, registering it as explicit. Pairs
// whose plan is already compiled cannot be reconfigured.
func (t *Tree) Configure(pair TypePair, fn func(tm *TypeMapping) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tm := t.getLocked(pair)
	if tm.Compiled() {
		return &ConfigurationError{Pair: pair, Err: ErrAlreadyCompiled}
	}

	tm.Explicit = true

	if fn != nil {
		if err := fn(tm); err != nil {
			return err
		}
	}

	invalidate(tm)

	return nil
}

// DeclareMember maps the target path from the source path on pair. A path that
// cannot be resolved is recorded on the mapping and reported again on compile.
func (t *Tree) DeclareMember(pair TypePair, target, source string, converter *primitive.Caster, opts Options) error {
	return t.Configure(pair, func(tm *TypeMapping) error {
		mm, err := t.resolveMember(pair, target, source)
		if err != nil {
			if tm.err == nil {
				tm.err = err
			}

			return err
		}

		mm.Converter = converter
		mm.Options = opts

		tm.declared = slices.DeleteFunc(tm.declared, func(m *MemberMapping) bool {
			return m.Target.String() == mm.Target.String()
		})
		tm.declared = append(tm.declared, mm)

		return nil
	})
}

func (t *Tree) resolveMember(pair TypePair, target, source string) (*MemberMapping, error) {
	dst, err := ResolvePath(t.provider, pair.Target, target, true)
	if err != nil {
		return nil, &ConfigurationError{Pair: pair, Member: target, Err: fmt.Errorf("target path: %w", err)}
	}

	src, err := ResolvePath(t.provider, pair.Source, source, false)
	if err != nil {
		return nil, &ConfigurationError{Pair: pair, Member: target, Err: fmt.Errorf("source path %q: %w", source, err)}
	}

	return &MemberMapping{Source: src, Target: dst, Origin: OriginExplicit}, nil
}

// Ignore excludes target paths from convention pairing on pair and its descendants.
func (t *Tree) Ignore(pair TypePair, targets ...string) error {
	return t.Configure(pair, func(tm *TypeMapping) error {
		for _, target := range targets {
			if _, err := ParsePath(target); err != nil {
				return &ConfigurationError{Pair: pair, Member: target, Err: err}
			}

			if !slices.Contains(tm.ignored, target) {
				tm.ignored = append(tm.ignored, target)
			}
		}

		return nil
	})
}

// Effective returns the options of tm with every unset field taken from its ancestors.
func (t *Tree) Effective(tm *TypeMapping) Options {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return effective(tm)
}

func effective(tm *TypeMapping) Options {
	opts := tm.Options
	for p := tm.Parent; p != nil; p = p.Parent {
		opts = opts.Inherit(p.Options, tm.Pair)
	}

	return opts
}

// Convention returns the nearest convention set on tm or its ancestors.
func (t *Tree) Convention(tm *TypeMapping) convention.Convention {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return conventionOf(tm)
}

func conventionOf(tm *TypeMapping) convention.Convention {
	for n := tm; n != nil; n = n.Parent {
		if n.Convention != nil {
			return n.Convention
		}
	}

	return nil
}

// Members resolves the member mappings of tm: convention pairs first, then the
// explicit ones inherited from ancestors and declared on tm. Explicit members
// run last so they win over a convention pair writing the same target.
func (t *Tree) Members(tm *TypeMapping) ([]*MemberMapping, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm.resolved {
		return tm.members, nil
	}

	chain := lineage(tm)

	for _, n := range chain {
		if n.err != nil {
			return nil, n.err
		}
	}

	explicit := t.explicitMembers(tm, chain)

	var ignored []string
	for _, n := range chain {
		ignored = append(ignored, n.ignored...)
	}

	byConvention, err := t.conventionMembers(tm, explicit, ignored)
	if err != nil {
		return nil, err
	}

	tm.members = append(byConvention, explicit...)
	tm.resolved = true

	if t.hints != nil {
		t.hintUnmapped(tm, ignored)
	}

	t.logger.Debug("type pair members resolved",
		zap.Stringer("pair", tm.Pair),
		zap.Int("convention", len(byConvention)),
		zap.Int("explicit", len(explicit)))

	return tm.members, nil
}

// explicitMembers collects declared members from the root down to tm, re-resolving
// inherited paths on tm's own types. Later declarations replace earlier ones per target.
func (t *Tree) explicitMembers(tm *TypeMapping, chain []*TypeMapping) []*MemberMapping {
	var members []*MemberMapping

	for _, n := range chain {
		for _, declared := range n.declared {
			mm := declared
			if n != tm {
				resolved, err := t.resolveMember(tm.Pair, declared.Target.String(), declared.Source.String())
				if err != nil {
					t.logger.Warn("inherited member skipped",
						zap.Stringer("pair", tm.Pair),
						zap.Stringer("from", n.Pair),
						zap.Stringer("member", declared),
						zap.Error(err))

					continue
				}

				resolved.Converter = declared.Converter
				resolved.Options = declared.Options
				mm = resolved
			}

			members = slices.DeleteFunc(members, func(m *MemberMapping) bool {
				return m.Target.String() == mm.Target.String()
			})
			members = append(members, mm)
		}
	}

	return members
}

func (t *Tree) conventionMembers(tm *TypeMapping, explicit []*MemberMapping, ignored []string) ([]*MemberMapping, error) {
	conv := conventionOf(tm)
	if conv == nil || !hasMembers(tm.Pair.Source) || !hasMembers(tm.Pair.Target) {
		return nil, nil
	}

	pairs, err := conv.Resolve(tm.Pair.Source, tm.Pair.Target)
	if err != nil {
		return nil, &ConfigurationError{Pair: tm.Pair, Err: fmt.Errorf("convention %s: %w", conv.Name(), err)}
	}

	covered := make(map[string]struct{}, len(explicit))
	for _, mm := range explicit {
		covered[mm.Target.String()] = struct{}{}
	}

	members := make([]*MemberMapping, 0, len(pairs))

	for _, p := range pairs {
		target := p.Target.String()
		if _, ok := covered[target]; ok || isIgnored(target, ignored) {
			continue
		}

		members = append(members, &MemberMapping{Source: p.Source, Target: p.Target, Origin: OriginConvention})
	}

	return members, nil
}

func (t *Tree) hintUnmapped(tm *TypeMapping, ignored []string) {
	if !hasMembers(tm.Pair.Source) || !hasMembers(tm.Pair.Target) {
		return
	}

	mapped := make(map[string]struct{}, len(tm.members))
	for _, mm := range tm.members {
		head, _, _ := strings.Cut(mm.Target.String(), ".")
		mapped[head] = struct{}{}
	}

	sources := t.provider.SourceMembers(tm.Pair.Source)

	for _, target := range t.provider.TargetMembers(tm.Pair.Target) {
		if _, ok := mapped[target.Name]; ok || isIgnored(target.Name, ignored) {
			continue
		}

		ranked := match.RankCandidates(target, sources, t.hints).AboveThreshold(match.DefaultMinScore)

		best := ranked.Best()
		if best == nil {
			continue
		}

		top := ranked.Top(3)
		names := make([]string, len(top))
		for i, c := range top {
			names[i] = c.Source.Name
		}

		t.logger.Warn("target member unmapped",
			zap.Stringer("pair", tm.Pair),
			zap.String("member", target.Name),
			zap.String("closest", best.Source.Name),
			zap.Stringer("compatibility", best.TypeCompat.Compatibility),
			zap.Strings("candidates", names),
			zap.Bool("ambiguous", ranked.IsAmbiguous(match.DefaultAmbiguityThreshold)))
	}
}

// isIgnored reports whether target or one of its parent paths is ignored.
func isIgnored(target string, ignored []string) bool {
	for _, ig := range ignored {
		if target == ig || strings.HasPrefix(target, ig+".") {
			return true
		}
	}

	return false
}

func hasMembers(t reflect.Type) bool {
	t = meta.Deref(t)

	return t.Kind() == reflect.Struct || (t.Kind() == reflect.Interface && t != meta.AnyType)
}

// Walk visits the tree depth first, parents before children, until fn returns false.
func (t *Tree) Walk(fn func(tm *TypeMapping) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	walk(t.root, fn)
}

func walk(tm *TypeMapping, fn func(tm *TypeMapping) bool) bool {
	if !fn(tm) {
		return false
	}

	for _, c := range tm.Children {
		if !walk(c, fn) {
			return false
		}
	}

	return true
}

// FindConcreteTarget picks a concrete target type for values of source when the
// declared target is the interface target. Explicit pairs with the exact source
// type are preferred over pairs whose source type source can stand in for. A
// struct target whose pointer implements target is offered as that pointer.
func (t *Tree) FindConcreteTarget(source, target reflect.Type) (reflect.Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var fallback reflect.Type

	for _, tm := range t.order {
		if !tm.Explicit {
			continue
		}

		dst, ok := concreteFor(tm.Pair.Target, target)
		if !ok {
			continue
		}

		if tm.Pair.Source == source {
			return dst, true
		}

		if fallback == nil && meta.Assignable(source, tm.Pair.Source) {
			fallback = dst
		}
	}

	return fallback, fallback != nil
}

func concreteFor(dst, target reflect.Type) (reflect.Type, bool) {
	if meta.CategoryOf(dst) != meta.CategoryConcrete {
		return nil, false
	}

	if dst.AssignableTo(target) {
		return dst, true
	}

	if dst.Kind() == reflect.Struct {
		if ptr := reflect.PointerTo(dst); ptr.AssignableTo(target) {
			return ptr, true
		}
	}

	return nil, false
}

func (t *Tree) insert(tm *TypeMapping) {
	parent := t.findParent(tm.Pair)

	// more specific pairs registered earlier move below tm
	var kept []*TypeMapping

	for _, c := range parent.Children {
		if c.Pair.Assignable(tm.Pair) {
			c.Parent = tm
			tm.Children = append(tm.Children, c)

			continue
		}

		kept = append(kept, c)
	}

	parent.Children = append(kept, tm)
	tm.Parent = parent

	t.index[tm.Pair] = tm
	t.order = append(t.order, tm)

	invalidate(tm)
}

// findParent descends from the root into the first child pair can stand in for.
func (t *Tree) findParent(pair TypePair) *TypeMapping {
	node := t.root

	for {
		next := (*TypeMapping)(nil)

		for _, c := range node.Children {
			if c.Pair != pair && pair.Assignable(c.Pair) {
				next = c
				break
			}
		}

		if next == nil {
			return node
		}

		node = next
	}
}

func (t *Tree) mergeRoot(tm *TypeMapping) {
	root := t.root

	root.Options = tm.Options.Inherit(root.Options, RootPair)
	if tm.Convention != nil {
		root.Convention = tm.Convention
	}

	root.declared = append(root.declared, tm.declared...)
	root.ignored = append(root.ignored, tm.ignored...)

	invalidate(root)

	t.logger.Debug("root mapping merged")
}

// invalidate drops resolved members of tm and its descendants that are not compiled yet.
func invalidate(tm *TypeMapping) {
	if !tm.Compiled() {
		tm.members = nil
		tm.resolved = false
	}

	for _, c := range tm.Children {
		invalidate(c)
	}
}

// lineage returns the path from the root to tm, root first.
func lineage(tm *TypeMapping) []*TypeMapping {
	var chain []*TypeMapping
	for n := tm; n != nil; n = n.Parent {
		chain = append(chain, n)
	}

	slices.Reverse(chain)

	return chain
}
