// Package convention pairs source and target members of a type pair without
// explicit configuration.
package convention

import (
	"fmt"
	"reflect"
	"strings"

	"object-mapper/internal/match"
	"object-mapper/internal/meta"
)

// MemberPair is one member correspondence found by a convention.
type MemberPair struct {
	Source meta.Path
	Target meta.Path
}

// String renders the pair as "Source -> Target".
func (p MemberPair) String() string {
	return fmt.Sprintf("%s -> %s", p.Source, p.Target)
}

// Convention resolves member pairs for a type pair.
type Convention interface {
	Name() string
	Resolve(source, target reflect.Type) ([]MemberPair, error)
}

// Direct pairs members of the same shape: for each source member in provider
// order, the first unpaired target member accepted by the rules.
type Direct struct {
	Provider meta.Provider
	Rules    *match.RuleSet
}

var _ Convention = Direct{}

func (Direct) Name() string { return "direct" }

func (c Direct) Resolve(source, target reflect.Type) ([]MemberPair, error) {
	if err := c.Rules.Validate(); err != nil {
		return nil, err
	}

	pairs, _, _ := direct(c.Provider, c.Rules, source, target)

	return pairs, nil
}

// direct also reports which source and target members got paired.
func direct(p meta.Provider, rules *match.RuleSet, source, target reflect.Type) ([]MemberPair, []bool, []bool) {
	sources := p.SourceMembers(source)
	targets := p.TargetMembers(target)

	srcPaired := make([]bool, len(sources))
	dstPaired := make([]bool, len(targets))

	var pairs []MemberPair

	for i, s := range sources {
		for j, t := range targets {
			if dstPaired[j] || !rules.Match(s, t) {
				continue
			}

			pairs = append(pairs, MemberPair{Source: meta.Path{s}, Target: meta.Path{t}})
			srcPaired[i], dstPaired[j] = true, true

			break
		}
	}

	return pairs, srcPaired, dstPaired
}

// Projection pairs members directly first, then flattens (target CustomerName
// reads source Customer.Name) and unflattens (source CustomerName writes target
// Customer.Name) the members left over.
type Projection struct {
	Provider meta.Provider
	Rules    *match.RuleSet
	// Splitter tokenizes member names; match.CamelCase when nil.
	Splitter match.Splitter
	// StripAccessors ignores Get/Set/Is prefixes of members met during a walk.
	StripAccessors bool
}

var _ Convention = Projection{}

func (Projection) Name() string { return "projection" }

func (c Projection) Resolve(source, target reflect.Type) ([]MemberPair, error) {
	if err := c.Rules.Validate(); err != nil {
		return nil, err
	}

	pairs, srcPaired, dstPaired := direct(c.Provider, c.Rules, source, target)

	sources := c.Provider.SourceMembers(source)
	targets := c.Provider.TargetMembers(target)

	// flattening: an unpaired target member read through a nested source path
	for j, t := range targets {
		if dstPaired[j] {
			continue
		}

		path, ok := c.walk(source, c.split(t.Name), c.Provider.SourceMembers, isSourceContainer)
		if !ok || len(path) < 2 || !path.Readable() {
			continue
		}

		renamed := path.Terminal()
		renamed.Name = t.Name

		if !c.Rules.Match(renamed, t) {
			continue
		}

		pairs = append(pairs, MemberPair{Source: path, Target: meta.Path{t}})
		dstPaired[j] = true
	}

	roots := make(map[string]struct{})
	for j, t := range targets {
		if dstPaired[j] {
			roots[t.Name] = struct{}{}
		}
	}

	// unflattening: an unpaired scalar source member written through a nested
	// target path whose root member is not already mapped
	written := make(map[string]struct{})

	for i, s := range sources {
		if srcPaired[i] || meta.IsStruct(meta.Deref(s.Type)) {
			continue
		}

		path, ok := c.walk(target, c.split(s.Name), c.Provider.TargetMembers, isTargetContainer)
		if !ok || len(path) < 2 || !path.Writable() {
			continue
		}

		if _, taken := roots[path[0].Name]; taken {
			continue
		}

		if _, dup := written[path.String()]; dup {
			continue
		}

		renamed := path.Terminal()
		renamed.Name = s.Name

		if !c.Rules.Match(s, renamed) {
			continue
		}

		pairs = append(pairs, MemberPair{Source: meta.Path{s}, Target: path})
		written[path.String()] = struct{}{}
	}

	return pairs, nil
}

func (c Projection) split(name string) []string {
	if c.StripAccessors {
		name = match.StripAccessorPrefix(name)
	}

	if c.Splitter != nil {
		return c.Splitter(name)
	}

	return match.CamelCase(name)
}

// walk consumes tokens member by member: each member's name must equal the
// concatenation of the next one or more tokens. The first complete walk wins.
func (c Projection) walk(
	typ reflect.Type,
	tokens []string,
	members func(reflect.Type) []meta.Member,
	container func(reflect.Type) bool,
) (meta.Path, bool) {
	if len(tokens) == 0 || !container(meta.Deref(typ)) {
		return nil, false
	}

	for _, m := range members(typ) {
		name := m.Name
		if c.StripAccessors {
			name = match.StripAccessorPrefix(name)
		}

		for k := 1; k <= len(tokens); k++ {
			if !strings.EqualFold(strings.Join(tokens[:k], ""), name) {
				continue
			}

			if k == len(tokens) {
				return meta.Path{m}, true
			}

			rest, ok := c.walk(m.Type, tokens[k:], members, container)
			if ok {
				return append(meta.Path{m}, rest...), true
			}
		}
	}

	return nil, false
}

func isSourceContainer(t reflect.Type) bool {
	return meta.IsStruct(t) || t.Kind() == reflect.Interface
}

func isTargetContainer(t reflect.Type) bool {
	return meta.IsStruct(t)
}
