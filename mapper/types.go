package mapper

import (
	"reflect"

	"object-mapper/internal/config"
	"object-mapper/internal/convention"
	"object-mapper/internal/mapping"
	"object-mapper/internal/match"
	"object-mapper/internal/meta"
	"object-mapper/internal/tracker"
	"object-mapper/primitive"
)

type (
	// CollectionStrategy selects how a source collection is applied to an existing target.
	CollectionStrategy = mapping.CollectionStrategy
	// ReferenceBehavior selects whether an existing target object is reused.
	ReferenceBehavior = mapping.ReferenceBehavior
	// Comparer tells whether a source element corresponds to a target element.
	Comparer = mapping.Comparer
	// Constructor allocates target instances.
	Constructor = mapping.Constructor
	// MappingFile is a parsed YAML declaration file.
	MappingFile = mapping.MappingFile
	// Tracker keeps the targets created for source objects during a mapping call.
	Tracker = tracker.Tracker

	// Provider lists the readable and writable members of a type.
	Provider = meta.Provider
	// Member is a field or accessor method seen through a Provider.
	Member = meta.Member
	// Filter selects the kinds of members a reflection provider exposes.
	Filter = meta.Filter
	// Convention pairs source and target members when no explicit mapping exists.
	Convention = convention.Convention
	// MemberPair is one source to target path pair found by a Convention.
	MemberPair = convention.MemberPair

	// Rule decides whether a source member may feed a target member.
	Rule = match.Rule
	// RuleSet groups rules by category. A pair is accepted when every
	// declared category has a rule that accepts it.
	RuleSet = match.RuleSet
	// RuleCategory names a group of alternative rules.
	RuleCategory = match.RuleCategory
	// ExactName accepts members with equal names.
	ExactName = match.ExactName
	// PrefixName accepts a target name equal to the source name with a prefix added or removed.
	PrefixName = match.PrefixName
	// SuffixName accepts a target name equal to the source name with a suffix added or removed.
	SuffixName = match.SuffixName
	// AccessorName matches GetX and SetX accessors against a plain X.
	AccessorName = match.AccessorName
	// TypeRule accepts pairs whose types are at least as compatible as its minimum.
	TypeRule = match.TypeRule
	// TypeChecker scores how well a source type maps onto a target type.
	TypeChecker = match.Checker
	// Compatibility is the level reported by a TypeChecker.
	Compatibility = match.TypeCompatibility
	// ConversionKind is a bit set of the primitive conversion categories a mapper allows.
	ConversionKind = primitive.CategoryEnum
)

// Collection strategies.
const (
	CollectionInherit = mapping.CollectionInherit
	CollectionReset   = mapping.CollectionReset
	CollectionMerge   = mapping.CollectionMerge
	CollectionUpdate  = mapping.CollectionUpdate

	// Reference behaviors.
	ReferenceInherit     = mapping.ReferenceInherit
	ReferenceCreateNew   = mapping.ReferenceCreateNew
	ReferenceReuseTarget = mapping.ReferenceReuseTarget

	// Built-in rule categories.
	RuleCategoryName = match.RuleCategoryName
	RuleCategoryType = match.RuleCategoryType
)

// Errors returned by mapping calls. Use errors.As with the error types and
// errors.Is with the sentinels.
type (
	// ConfigurationError reports an invalid declaration or an unmappable pair.
	ConfigurationError = mapping.ConfigurationError
	// ConversionError reports a leaf pair that has no conversion or whose conversion failed.
	ConversionError = mapping.ConversionError
	// RuntimeMappingError reports a failure while executing a plan.
	RuntimeMappingError = mapping.RuntimeMappingError
)

// Sentinel errors wrapped by the error types above.
var (
	ErrNoConcreteType  = mapping.ErrNoConcreteType
	ErrInvalidTarget   = mapping.ErrInvalidTarget
	ErrAlreadyCompiled = mapping.ErrAlreadyCompiled
	ErrNotConvertible  = primitive.ErrNotConvertible
	ErrTrackerConflict = tracker.ErrCollision
)

// NewTracker creates a tracker that can be shared by several Map calls to keep
// reference identity across them. It is not safe for concurrent use.
func NewTracker() *Tracker {
	return tracker.New()
}

// NewComparer wraps fn as an element comparer for source elements of type S
// and target elements of type D.
func NewComparer[S, D any](fn func(S, D) bool) *Comparer {
	return &Comparer{
		Source: reflect.TypeFor[S](),
		Target: reflect.TypeFor[D](),
		Equal: func(src, dst reflect.Value) bool {
			return fn(src.Interface().(S), dst.Interface().(D))
		},
	}
}

// NewConstructor wraps fn as a constructor of T targets. T is the target type
// as the plan sees it: *D for references, the concrete type for interfaces.
func NewConstructor[T any](fn func() (T, error)) *Constructor {
	return &Constructor{
		Type: reflect.TypeFor[T](),
		New: func() (reflect.Value, error) {
			v, err := fn()
			return reflect.ValueOf(&v).Elem(), err
		},
	}
}

// ConventionFunc builds a convention over the member provider and matching
// rules of a mapper.
type ConventionFunc func(p Provider, rules *RuleSet) Convention

// DirectConvention pairs members whose names and types the rules accept.
func DirectConvention(p Provider, rules *RuleSet) Convention {
	return convention.Direct{Provider: p, Rules: rules}
}

// ProjectionConvention extends DirectConvention with flattening and
// unflattening of camel case names, e.g. CustomerName onto Customer.Name.
func ProjectionConvention(p Provider, rules *RuleSet) Convention {
	return convention.Projection{Provider: p, Rules: rules, StripAccessors: true}
}

// Settings are the defaults a mapper starts from.
type Settings = config.Settings

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return config.Default()
}

// LoadSettings reads settings from a YAML file and OBJMAP_ environment
// variables. An empty path looks for objmap.yaml in the working directory.
func LoadSettings(path string) (Settings, error) {
	return config.Load(path)
}
