package mapping

import (
	"maps"
	"slices"
)

// MappingFile represents the root of a YAML mapping declaration file.
type MappingFile struct {
	// Version of the declaration schema.
	Version string `yaml:"version,omitempty"`

	// Defaults are applied to the root (any -> any) pair.
	Defaults *OptionsDecl `yaml:"defaults,omitempty"`

	// Mappings declares type pairs.
	Mappings []PairDecl `yaml:"mappings"`
}

// PairDecl declares one type pair.
type PairDecl struct {
	// Source type name (e.g., "store.Order", "*store.Order" or a full import path).
	Source string `yaml:"source"`

	// Target type name.
	Target string `yaml:"target"`

	// OneToOne is the shorthand syntax: keys are source paths, values are target paths.
	// Entries here are overridden by Members declaring the same target.
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Members declares member mappings with full control.
	Members []MemberDecl `yaml:"members,omitempty"`

	// Ignore lists target paths excluded from convention pairing.
	Ignore StringOrArray `yaml:"ignore,omitempty"`

	// Options of the pair, inherited by descendant pairs.
	Options OptionsDecl `yaml:"options,omitempty"`
}

// MemberDecl maps one target path from one source path.
type MemberDecl struct {
	Target     string             `yaml:"target"`
	Source     string             `yaml:"source"`
	Converter  string             `yaml:"converter,omitempty"`
	Collection CollectionStrategy `yaml:"collection,omitempty"`
	Comparer   string             `yaml:"comparer,omitempty"`
}

// OptionsDecl is the declarative form of Options. Callbacks are referenced by
// the name they were registered under.
type OptionsDecl struct {
	Collection  CollectionStrategy `yaml:"collection,omitempty"`
	Reference   ReferenceBehavior  `yaml:"reference,omitempty"`
	Tracking    *bool              `yaml:"tracking,omitempty"`
	Convention  string             `yaml:"convention,omitempty"`
	Constructor string             `yaml:"constructor,omitempty"`
	Converter   string             `yaml:"converter,omitempty"`
	Comparer    string             `yaml:"comparer,omitempty"`
}

// IsZero reports an empty declaration, used by yaml omitempty.
func (o OptionsDecl) IsZero() bool {
	return o == OptionsDecl{}
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// NormalizePairDecl expands the 121 shorthand into Members entries placed first,
// so explicit Members entries for the same target win.
func NormalizePairDecl(pd *PairDecl) {
	if len(pd.OneToOne) == 0 {
		return
	}

	expanded := make([]MemberDecl, 0, len(pd.OneToOne))

	for _, source := range slices.Sorted(maps.Keys(pd.OneToOne)) {
		expanded = append(expanded, MemberDecl{Source: source, Target: pd.OneToOne[source]})
	}

	pd.Members = append(expanded, pd.Members...)
	pd.OneToOne = nil
}

// NormalizeMappingFile normalizes all pair declarations in a file.
func NormalizeMappingFile(mf *MappingFile) {
	for i := range mf.Mappings {
		NormalizePairDecl(&mf.Mappings[i])
	}
}
