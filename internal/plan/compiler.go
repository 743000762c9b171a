package plan

import (
	"fmt"

	"go.uber.org/zap"

	"object-mapper/internal/mapping"
	"object-mapper/primitive"
)

// Compiler turns type pairs of a tree into plans. A Compiler is not safe for
// concurrent use: callers serialize Compile.
type Compiler struct {
	tree     *mapping.Tree
	prims    *primitive.Registry
	builders []Builder
	logger   *zap.Logger
}

// NewCompiler creates a Compiler over tree. Without builders, DefaultBuilders is used.
func NewCompiler(tree *mapping.Tree, prims *primitive.Registry, logger *zap.Logger, builders ...Builder) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(builders) == 0 {
		builders = DefaultBuilders()
	}

	return &Compiler{
		tree:     tree,
		prims:    prims,
		builders: builders,
		logger:   logger,
	}
}

// Compile returns the plan of pair, compiling it and every nested pair it needs.
// The new plans are published on their type mappings only when the whole
// compilation succeeds; on failure none of them is kept.
func (c *Compiler) Compile(pair mapping.TypePair) (*Node, error) {
	s := &session{compiler: c, pending: make(map[mapping.TypePair]*Node)}

	n, err := s.resolve(pair)
	if err != nil {
		c.logger.Debug("plan compilation failed",
			zap.Stringer("pair", pair),
			zap.Int("discarded", len(s.order)),
			zap.Error(err))

		return nil, err
	}

	for _, tm := range s.order {
		published := tm.PublishPlan(s.pending[tm.Pair])
		if tm.Pair == pair {
			n = published.(*Node)
		}
	}

	if len(s.order) > 0 {
		c.logger.Debug("plan compiled",
			zap.Stringer("pair", pair),
			zap.Stringer("kind", n.kind),
			zap.Int("pairs", len(s.order)))
	}

	return n, nil
}

// session is one compilation. Pending nodes stand for pairs being built: a
// nested request for such a pair gets the unfinished node, which is filled in
// once its builder returns.
type session struct {
	compiler *Compiler
	pending  map[mapping.TypePair]*Node
	order    []*mapping.TypeMapping
}

func (s *session) resolve(pair mapping.TypePair) (*Node, error) {
	tm := s.compiler.tree.Get(pair)

	if p := tm.Plan(); p != nil {
		return p.(*Node), nil
	}

	if n, ok := s.pending[pair]; ok {
		return n, nil
	}

	n := &Node{kind: KindUnknown, pair: pair}
	s.pending[pair] = n
	s.order = append(s.order, tm)

	built, err := s.build(tm, s.compiler.tree.Effective(tm))
	if err != nil {
		return nil, err
	}

	*n = *built

	return n, nil
}

// buildWith builds an unshared node for pair with overrides on top of the
// options of the pair.
func (s *session) buildWith(pair mapping.TypePair, overrides mapping.Options) (*Node, error) {
	tm := s.compiler.tree.Get(pair)

	return s.build(tm, overrides.Inherit(s.compiler.tree.Effective(tm), pair))
}

func (s *session) member(mm *mapping.MemberMapping) (*Node, error) {
	pair := mm.Pair()

	if mm.Converter == nil && mm.Options == (mapping.Options{}) {
		return s.resolve(pair)
	}

	if mm.Converter != nil && !converterFits(mm.Converter, pair) {
		return nil, &mapping.ConfigurationError{
			Pair: pair,
			Err:  fmt.Errorf("%w: %s is func(%s) %s", ErrConverterMismatch, mm.Converter.Name, mm.Converter.Src, mm.Converter.Dst),
		}
	}

	overrides := mm.Options
	overrides.Converter = mm.Converter

	return s.buildWith(pair, overrides)
}

func (s *session) build(tm *mapping.TypeMapping, opts mapping.Options) (*Node, error) {
	ctx := &Context{Pair: tm.Pair, Mapping: tm, Options: opts, session: s}

	for _, b := range s.compiler.builders {
		if !b.CanHandle(ctx) {
			continue
		}

		n, err := b.Build(ctx)
		if err != nil {
			return nil, err
		}

		return n, nil
	}

	return nil, unsupported(tm.Pair)
}

func unsupported(pair mapping.TypePair) error {
	if primitive.IsLeaf(pair.Source) || primitive.IsLeaf(pair.Target) {
		return &mapping.ConversionError{Pair: pair, Err: primitive.ErrNotConvertible}
	}

	return &mapping.ConfigurationError{Pair: pair, Err: ErrUnsupportedPair}
}
