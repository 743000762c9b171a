package match

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"object-mapper/internal/common"
	"object-mapper/internal/meta"
)

var ErrEmptyRuleCategory = errors.New("matching rule category has no rules")

// RuleCategory groups rules: a member pair must satisfy at least one rule of
// every declared category.
type RuleCategory int

const (
	RuleCategoryUnknown RuleCategory = iota
	RuleCategoryName
	RuleCategoryType
)

// String returns a human-readable representation of the RuleCategory.
func (c RuleCategory) String() string {
	switch c {
	case RuleCategoryName:
		return "name"
	case RuleCategoryType:
		return "type"
	default:
		return common.UnknownStr
	}
}

// Rule decides whether a source member may feed a target member.
type Rule interface {
	Category() RuleCategory
	Match(source, target meta.Member) bool
}

// ExactName matches identical names.
type ExactName struct {
	IgnoreCase bool
}

func (ExactName) Category() RuleCategory { return RuleCategoryName }

func (r ExactName) Match(source, target meta.Member) bool {
	return equalNames(source.Name, target.Name, r.IgnoreCase)
}

// PrefixName matches names that are equal once one of Prefixes is removed from
// either side, e.g. "DtoName" and "Name" with prefix "Dto".
type PrefixName struct {
	Prefixes   []string
	IgnoreCase bool
}

func (PrefixName) Category() RuleCategory { return RuleCategoryName }

func (r PrefixName) Match(source, target meta.Member) bool {
	for _, prefix := range r.Prefixes {
		if equalNames(trimPrefix(source.Name, prefix, r.IgnoreCase), trimPrefix(target.Name, prefix, r.IgnoreCase), r.IgnoreCase) {
			return true
		}
	}

	return false
}

// SuffixName matches names that are equal once one of Suffixes is removed from
// either side, e.g. "NameField" and "Name" with suffix "Field".
type SuffixName struct {
	Suffixes   []string
	IgnoreCase bool
}

func (SuffixName) Category() RuleCategory { return RuleCategoryName }

func (r SuffixName) Match(source, target meta.Member) bool {
	for _, suffix := range r.Suffixes {
		if equalNames(trimSuffix(source.Name, suffix, r.IgnoreCase), trimSuffix(target.Name, suffix, r.IgnoreCase), r.IgnoreCase) {
			return true
		}
	}

	return false
}

// AccessorName matches names after removing accessor prefixes, so GetName, Name
// and SetName all correspond.
type AccessorName struct {
	IgnoreCase bool
}

func (AccessorName) Category() RuleCategory { return RuleCategoryName }

func (r AccessorName) Match(source, target meta.Member) bool {
	return equalNames(StripAccessorPrefix(source.Name), StripAccessorPrefix(target.Name), r.IgnoreCase)
}

// TypeRule accepts pairs whose compatibility is at least Min.
type TypeRule struct {
	Checker *Checker
	Min     TypeCompatibility
}

func (TypeRule) Category() RuleCategory { return RuleCategoryType }

func (r TypeRule) Match(source, target meta.Member) bool {
	return r.Checker.Score(source.Type, target.Type).Compatibility >= r.Min
}

// RuleSet evaluates rules: OR within a category, AND across categories.
type RuleSet struct {
	categories []RuleCategory
	rules      map[RuleCategory][]Rule
}

// NewRuleSet declares the categories of the given rules and adds them.
func NewRuleSet(rules ...Rule) *RuleSet {
	s := &RuleSet{rules: make(map[RuleCategory][]Rule)}
	for _, r := range rules {
		s.Add(r)
	}

	return s
}

// DefaultRules matches exact or accessor-normalized names of types a plan can map.
func DefaultRules(checker *Checker) *RuleSet {
	return NewRuleSet(
		ExactName{},
		AccessorName{},
		TypeRule{Checker: checker, Min: TypeNeedsTransform},
	)
}

// Declare adds category c, possibly without rules.
func (s *RuleSet) Declare(c RuleCategory) {
	if !slices.Contains(s.categories, c) {
		s.categories = append(s.categories, c)
	}
}

// Add appends r to its category, declaring the category if needed.
func (s *RuleSet) Add(r Rule) {
	s.Declare(r.Category())
	s.rules[r.Category()] = append(s.rules[r.Category()], r)
}

// Replace swaps all rules of category c.
func (s *RuleSet) Replace(c RuleCategory, rules ...Rule) {
	s.Declare(c)
	s.rules[c] = slices.Clone(rules)
}

// Categories returns the declared categories in declaration order.
func (s *RuleSet) Categories() []RuleCategory {
	return slices.Clone(s.categories)
}

// Validate fails when a declared category holds no rules.
func (s *RuleSet) Validate() error {
	if len(s.categories) == 0 {
		return fmt.Errorf("%w: no categories declared", ErrEmptyRuleCategory)
	}

	for _, c := range s.categories {
		if len(s.rules[c]) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyRuleCategory, c)
		}
	}

	return nil
}

// Match reports whether every category has at least one compliant rule.
func (s *RuleSet) Match(source, target meta.Member) bool {
	for _, c := range s.categories {
		ok := slices.ContainsFunc(s.rules[c], func(r Rule) bool {
			return r.Match(source, target)
		})
		if !ok {
			return false
		}
	}

	return len(s.categories) > 0
}

// Clone returns an independent copy sharing the rule values.
func (s *RuleSet) Clone() *RuleSet {
	c := &RuleSet{
		categories: slices.Clone(s.categories),
		rules:      make(map[RuleCategory][]Rule, len(s.rules)),
	}

	for k, v := range s.rules {
		c.rules[k] = slices.Clone(v)
	}

	return c
}

func equalNames(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}

	return a == b
}

func trimPrefix(s, prefix string, ignoreCase bool) string {
	if len(s) > len(prefix) && equalNames(s[:len(prefix)], prefix, ignoreCase) {
		return s[len(prefix):]
	}

	return s
}

func trimSuffix(s, suffix string, ignoreCase bool) string {
	if len(s) > len(suffix) && equalNames(s[len(s)-len(suffix):], suffix, ignoreCase) {
		return s[:len(s)-len(suffix)]
	}

	return s
}
