package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"object-mapper/internal/match"
	"object-mapper/internal/meta"
)

// MemberPath is a parsed dotted member path such as "Customer.Name".
type MemberPath []string

// String returns the dotted form.
func (p MemberPath) String() string {
	return strings.Join(p, ".")
}

// ParsePath parses a member path string.
// Supports: "Name", "Customer.Name", "GetCustomer.Name".
func ParsePath(path string) (MemberPath, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var segments MemberPath

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if strings.HasSuffix(part, "[]") {
			return nil, fmt.Errorf("invalid path %q: element paths are not supported, configure the element pair instead", path)
		}

		if !isValidIdent(part) {
			return nil, fmt.Errorf("invalid path %q: invalid identifier %q", path, part)
		}

		segments = append(segments, part)
	}

	return segments, nil
}

// ResolvePath resolves path against typ. Source paths need readable members;
// target paths need a writable terminal and intermediates that can be descended.
func ResolvePath(provider meta.Provider, typ reflect.Type, path string, forWrite bool) (meta.Path, error) {
	segments, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	var (
		resolved meta.Path
		current  = typ
	)

	for i, name := range segments {
		last := i == len(segments)-1

		candidates := provider.SourceMembers(current)
		if forWrite && last {
			candidates = provider.TargetMembers(current)
		}

		m, ok := findMember(candidates, name)
		if !ok {
			return nil, memberNotFound(name, current, candidates)
		}

		resolved = append(resolved, m)
		current = m.Type
	}

	if forWrite && !resolved.Writable() {
		return nil, fmt.Errorf("path %q is not writable on %s", path, typ)
	}

	return resolved, nil
}

func findMember(members []meta.Member, name string) (meta.Member, bool) {
	for _, m := range members {
		if m.Name == name {
			return m, true
		}
	}

	return meta.Member{}, false
}

// MemberNotFoundError carries near matches for an unknown member name.
type MemberNotFoundError struct {
	Name        string
	Owner       reflect.Type
	OwnerName   string // used when Owner is unknown
	Suggestions []string
}

func (e *MemberNotFoundError) Error() string {
	owner := e.OwnerName
	if e.Owner != nil {
		owner = e.Owner.String()
	}

	msg := fmt.Sprintf("member %q not found on %s", e.Name, owner)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}

	return msg
}

func memberNotFound(name string, owner reflect.Type, candidates []meta.Member) error {
	names := make([]string, len(candidates))
	for i, m := range candidates {
		names[i] = m.Name
	}

	return &MemberNotFoundError{
		Name:        name,
		Owner:       owner,
		Suggestions: match.Suggest(name, names, 3),
	}
}

// isValidIdent checks if a string is a valid Go identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}

		return false
	}

	return true
}
