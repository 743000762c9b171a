package mapper

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"object-mapper/internal/config"
	"object-mapper/internal/engine"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/primitive"
)

// Mapper maps values between type pairs. Configuration and mapping calls may
// run concurrently, but a pair can no longer be configured once it was mapped.
type Mapper struct {
	settings Settings
	logger   *zap.Logger
	prims    *primitive.Registry
	provider Provider
	rules    *RuleSet
	names    *mapping.Registry
	tree     *mapping.Tree
	engine   *engine.Engine
}

type options struct {
	settings   Settings
	logger     *zap.Logger
	provider   Provider
	rules      []func(*RuleSet)
	convention ConventionFunc
}

// Option configures a Mapper at construction.
type Option func(*options)

// WithLogger sets the logger. Mappers log plan compilation at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSettings replaces the default settings, usually ones read by LoadSettings.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithProvider replaces the reflection based member provider.
func WithProvider(p Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithRules edits the matching rules conventions use. fn receives the default
// rule set and may add, replace or declare categories.
func WithRules(fn func(rules *RuleSet)) Option {
	return func(o *options) {
		o.rules = append(o.rules, fn)
	}
}

// WithConvention sets the convention of the root pair, overriding the settings.
func WithConvention(fn ConventionFunc) Option {
	return func(o *options) {
		o.convention = fn
	}
}

// New creates a Mapper.
func New(opts ...Option) (*Mapper, error) {
	o := options{settings: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	categories, _ := o.settings.Categories()
	prims := primitive.NewRegistry(categories)

	if o.provider == nil {
		o.provider = meta.NewReflectProvider(meta.Filter{
			Fields:       o.settings.Members.Fields,
			Accessors:    o.settings.Members.Accessors,
			DeclaredOnly: o.settings.Members.DeclaredOnly,
		})
	}

	checker := match.NewChecker(prims)

	rules := defaultRules(checker, o.settings.IgnoreCase)
	for _, fn := range o.rules {
		fn(rules)
	}

	if err := rules.Validate(); err != nil {
		return nil, &ConfigurationError{Pair: mapping.RootPair, Err: err}
	}

	if o.convention == nil {
		o.convention = DirectConvention
		if o.settings.Convention == config.ConventionProjection {
			o.convention = ProjectionConvention
		}
	}

	tree := mapping.NewTree(o.provider, o.convention(o.provider, rules), o.settings.Options(), o.logger.Named("tree"))
	tree.EnableHints(checker)

	m := &Mapper{
		settings: o.settings,
		logger:   o.logger,
		prims:    prims,
		provider: o.provider,
		rules:    rules,
		names:    mapping.NewRegistry(),
		tree:     tree,
		engine:   engine.New(tree, prims, o.logger),
	}

	m.names.RegisterConvention(config.ConventionDirect, DirectConvention(o.provider, rules))
	m.names.RegisterConvention(config.ConventionProjection, ProjectionConvention(o.provider, rules))

	m.logger.Debug("mapper created",
		zap.String("convention", tree.Convention(tree.Root()).Name()),
		zap.Stringer("collection", o.settings.Collection),
		zap.Stringer("reference", o.settings.Reference),
		zap.Bool("tracking", o.settings.Tracking))

	return m, nil
}

func defaultRules(checker *match.Checker, ignoreCase bool) *RuleSet {
	if !ignoreCase {
		return match.DefaultRules(checker)
	}

	return match.NewRuleSet(
		match.ExactName{IgnoreCase: true},
		match.AccessorName{IgnoreCase: true},
		match.TypeRule{Checker: checker, Min: match.TypeNeedsTransform},
	)
}

// Settings returns the settings the mapper was created with.
func (m *Mapper) Settings() Settings {
	return m.settings
}

// Map maps src into the value dst points to. dst must be a non-nil pointer.
// When src is a pointer to a struct and dst points to a struct, the struct
// dst points to is updated in place.
func (m *Mapper) Map(src, dst any) error {
	return m.engine.Map(nil, src, dst)
}

// MapWithTracker is Map with a tracker shared between calls, so a source
// object mapped by an earlier call maps to the same target object again.
func (m *Mapper) MapWithTracker(tr *Tracker, src, dst any) error {
	if tr == nil {
		tr = NewTracker()
	}

	return m.engine.Map(tr, src, dst)
}

// MapType maps src onto a new value of type t.
func (m *Mapper) MapType(src any, t reflect.Type) (any, error) {
	return m.engine.MapType(nil, src, t)
}

// Describe renders the plan of the (src, dst) pair, compiling it if needed.
func (m *Mapper) Describe(src, dst reflect.Type) (string, error) {
	return m.engine.Describe(mapping.PairOf(src, dst))
}

// To maps src onto a new D.
func To[D any](m *Mapper, src any) (D, error) {
	var dst D

	err := m.Map(src, &dst)

	return dst, err
}

// MapStruct maps src onto a new struct value D.
func MapStruct[D any](m *Mapper, src any) (D, error) {
	var dst D

	if t := reflect.TypeFor[D](); t.Kind() != reflect.Struct {
		return dst, &RuntimeMappingError{Err: fmt.Errorf("%w, %s is not a struct", ErrInvalidTarget, t)}
	}

	err := m.Map(src, &dst)

	return dst, err
}
