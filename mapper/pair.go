package mapper

import (
	"reflect"

	"go.uber.org/multierr"

	"object-mapper/internal/mapping"
	"object-mapper/primitive"
)

// PairConfig configures one type pair. Settings apply to the pair and to the
// pairs that inherit from it. Problems are collected and reported by Err.
type PairConfig struct {
	m    *Mapper
	pair mapping.TypePair
	err  error
}

// Pair starts the configuration of the (S, D) pair and registers it.
func Pair[S, D any](m *Mapper) *PairConfig {
	return m.Pair(reflect.TypeFor[S](), reflect.TypeFor[D]())
}

// Pair starts the configuration of the (src, dst) pair and registers it.
func (m *Mapper) Pair(src, dst reflect.Type) *PairConfig {
	p := &PairConfig{m: m, pair: mapping.PairOf(src, dst)}

	return p.configure(nil)
}

func (p *PairConfig) configure(fn func(tm *mapping.TypeMapping) error) *PairConfig {
	p.err = multierr.Append(p.err, p.m.tree.Configure(p.pair, fn))
	return p
}

func (p *PairConfig) options(fn func(opts *mapping.Options)) *PairConfig {
	return p.configure(func(tm *mapping.TypeMapping) error {
		fn(&tm.Options)
		return nil
	})
}

// MemberOption adjusts one explicit member mapping.
type MemberOption func(*memberConfig) error

type memberConfig struct {
	converter *primitive.Caster
	opts      mapping.Options
}

// WithConverter converts the member with fn, a func(S) D with optional bool
// and error results. Collection members apply fn to each element.
func WithConverter(fn any) MemberOption {
	return func(c *memberConfig) error {
		caster, err := primitive.ParseCaster(fn)
		if err != nil {
			return err
		}

		c.converter = &caster

		return nil
	}
}

// WithCollection sets the collection strategy of a collection member.
func WithCollection(s CollectionStrategy) MemberOption {
	return func(c *memberConfig) error {
		c.opts.Collection = s
		return nil
	}
}

// WithComparer sets the element comparer of a collection member.
func WithComparer(cmp *Comparer) MemberOption {
	return func(c *memberConfig) error {
		c.opts.Comparer = cmp
		return nil
	}
}

// MapMember maps the target path from the source path, e.g.
// MapMember("Customer.Name", "CustomerName").
func (p *PairConfig) MapMember(target, source string, opts ...MemberOption) *PairConfig {
	var c memberConfig

	for _, opt := range opts {
		if err := opt(&c); err != nil {
			p.err = multierr.Append(p.err, &ConfigurationError{Pair: p.pair, Member: target, Err: err})
			return p
		}
	}

	p.err = multierr.Append(p.err, p.m.tree.DeclareMember(p.pair, target, source, c.converter, c.opts))

	return p
}

// MapMemberWith maps the target path from the source path through fn.
func (p *PairConfig) MapMemberWith(target, source string, fn any) *PairConfig {
	return p.MapMember(target, source, WithConverter(fn))
}

// Ignore leaves the target paths out of convention matching.
func (p *PairConfig) Ignore(targets ...string) *PairConfig {
	p.err = multierr.Append(p.err, p.m.tree.Ignore(p.pair, targets...))
	return p
}

// Collection sets the collection strategy.
func (p *PairConfig) Collection(s CollectionStrategy) *PairConfig {
	return p.options(func(opts *mapping.Options) { opts.Collection = s })
}

// Reference sets whether existing target objects are reused.
func (p *PairConfig) Reference(b ReferenceBehavior) *PairConfig {
	return p.options(func(opts *mapping.Options) { opts.Reference = b })
}

// Tracking switches reference tracking.
func (p *PairConfig) Tracking(on bool) *PairConfig {
	return p.options(func(opts *mapping.Options) { opts.Tracking = &on })
}

// Constructor sets the constructor of target instances.
func (p *PairConfig) Constructor(c *Constructor) *PairConfig {
	return p.options(func(opts *mapping.Options) { opts.Constructor = c })
}

// Converter maps values of the pair with fn instead of a plan.
func (p *PairConfig) Converter(fn any) *PairConfig {
	caster, err := primitive.ParseCaster(fn)
	if err != nil {
		p.err = multierr.Append(p.err, &ConfigurationError{Pair: p.pair, Err: err})
		return p
	}

	return p.options(func(opts *mapping.Options) { opts.Converter = &caster })
}

// Comparer sets the comparer matching elements under CollectionUpdate.
func (p *PairConfig) Comparer(c *Comparer) *PairConfig {
	return p.options(func(opts *mapping.Options) { opts.Comparer = c })
}

// Convention sets the convention that pairs members of this pair.
func (p *PairConfig) Convention(fn ConventionFunc) *PairConfig {
	conv := fn(p.m.provider, p.m.rules)

	return p.configure(func(tm *mapping.TypeMapping) error {
		tm.Convention = conv
		return nil
	})
}

// Err returns the problems met while configuring the pair.
func (p *PairConfig) Err() error {
	return p.err
}
