package mapping

import (
	"fmt"

	"go.uber.org/multierr"

	"object-mapper/internal/convention"
	"object-mapper/primitive"
)

// Apply registers the declarations of mf in tree, resolving names through reg.
// Every declaration is attempted; the problems found are combined with multierr.
func Apply(mf *MappingFile, tree *Tree, reg *Registry) error {
	var errs error

	if mf.Defaults != nil {
		errs = multierr.Append(errs, applyPair(tree, reg, RootPair, &PairDecl{Options: *mf.Defaults}))
	}

	for i := range mf.Mappings {
		pd := &mf.Mappings[i]

		pair, err := resolvePair(reg, pd)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		errs = multierr.Append(errs, applyPair(tree, reg, pair, pd))
	}

	return errs
}

func resolvePair(reg *Registry, pd *PairDecl) (TypePair, error) {
	src, err := reg.Type(pd.Source)
	if err != nil {
		return TypePair{}, fmt.Errorf("mapping %s -> %s: source: %w", pd.Source, pd.Target, err)
	}

	dst, err := reg.Type(pd.Target)
	if err != nil {
		return TypePair{}, fmt.Errorf("mapping %s -> %s: target: %w", pd.Source, pd.Target, err)
	}

	return PairOf(src, dst), nil
}

func applyPair(tree *Tree, reg *Registry, pair TypePair, pd *PairDecl) error {
	opts, conv, err := resolveOptions(reg, pd.Options)
	if err != nil {
		return &ConfigurationError{Pair: pair, Err: err}
	}

	err = tree.Configure(pair, func(tm *TypeMapping) error {
		tm.Options = opts.Inherit(tm.Options, pair)
		if conv != nil {
			tm.Convention = conv
		}

		return nil
	})
	if err != nil {
		return err
	}

	var errs error

	for _, md := range pd.Members {
		errs = multierr.Append(errs, applyMember(tree, reg, pair, md))
	}

	if len(pd.Ignore) > 0 {
		errs = multierr.Append(errs, tree.Ignore(pair, pd.Ignore...))
	}

	return errs
}

func applyMember(tree *Tree, reg *Registry, pair TypePair, md MemberDecl) error {
	opts := Options{Collection: md.Collection}

	if md.Comparer != "" {
		c, err := reg.Comparer(md.Comparer)
		if err != nil {
			return &ConfigurationError{Pair: pair, Member: md.Target, Err: err}
		}

		opts.Comparer = c
	}

	var caster *primitive.Caster

	if md.Converter != "" {
		c, err := reg.Converter(md.Converter)
		if err != nil {
			return &ConfigurationError{Pair: pair, Member: md.Target, Err: err}
		}

		caster = c
	}

	return tree.DeclareMember(pair, md.Target, md.Source, caster, opts)
}

func resolveOptions(reg *Registry, od OptionsDecl) (Options, convention.Convention, error) {
	opts := Options{
		Collection: od.Collection,
		Reference:  od.Reference,
		Tracking:   od.Tracking,
	}

	var (
		conv convention.Convention
		err  error
	)

	if od.Convention != "" {
		if conv, err = reg.Convention(od.Convention); err != nil {
			return Options{}, nil, err
		}
	}

	if od.Constructor != "" {
		if opts.Constructor, err = reg.Constructor(od.Constructor); err != nil {
			return Options{}, nil, err
		}
	}

	if od.Converter != "" {
		if opts.Converter, err = reg.Converter(od.Converter); err != nil {
			return Options{}, nil, err
		}
	}

	if od.Comparer != "" {
		if opts.Comparer, err = reg.Comparer(od.Comparer); err != nil {
			return Options{}, nil, err
		}
	}

	return opts, conv, nil
}
