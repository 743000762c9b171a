package mapping

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoConcreteType is returned when an interface target cannot be instantiated.
	ErrNoConcreteType = errors.New("no concrete type or constructor for interface target")
	// ErrInvalidTarget is returned when Map is given something it cannot write into.
	ErrInvalidTarget = errors.New("target must be a non-nil pointer")
	// ErrAlreadyCompiled is returned when a pair is reconfigured after its plan was built.
	ErrAlreadyCompiled = errors.New("type pair is already compiled")
)

// ConfigurationError is raised while compiling a plan: an unusable rule set, an
// unresolvable member path or a collection strategy the target cannot honor.
type ConfigurationError struct {
	Pair   TypePair
	Member string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return formatError("configuration error", e.Pair, e.Member, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConversionError reports a leaf pair with neither a built-in nor a configured conversion,
// or a conversion that failed on a value.
type ConversionError struct {
	Pair   TypePair
	Member string
	Err    error
}

func (e *ConversionError) Error() string {
	return formatError("conversion error", e.Pair, e.Member, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// RuntimeMappingError reports a failure while executing a plan.
type RuntimeMappingError struct {
	Pair   TypePair
	Member string
	Err    error
}

func (e *RuntimeMappingError) Error() string {
	return formatError("mapping error", e.Pair, e.Member, e.Err)
}

func (e *RuntimeMappingError) Unwrap() error { return e.Err }

func formatError(kind string, pair TypePair, member string, err error) string {
	var b strings.Builder

	b.WriteString(kind)

	if pair.Source != nil || pair.Target != nil {
		fmt.Fprintf(&b, " [%s]", pair)
	}

	if member != "" {
		fmt.Fprintf(&b, " %s", member)
	}

	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}

	return b.String()
}

// AtMember places an error raised by a nested plan under member: the member
// path of the error is prefixed with it. The error is copied, never modified.
func AtMember(err error, member string) error {
	switch e := err.(type) {
	case *ConfigurationError:
		cp := *e
		cp.Member = joinMember(member, e.Member)

		return &cp
	case *ConversionError:
		cp := *e
		cp.Member = joinMember(member, e.Member)

		return &cp
	case *RuntimeMappingError:
		cp := *e
		cp.Member = joinMember(member, e.Member)

		return &cp
	}

	return err
}

func joinMember(parent, member string) string {
	switch {
	case member == "":
		return parent
	case strings.HasPrefix(member, "["):
		return parent + member
	default:
		return parent + "." + member
	}
}
