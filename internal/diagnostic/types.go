package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"object-mapper/internal/common"
)

// Severity orders diagnostics from informational to blocking.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return common.UnknownStr
	}

	return severityNames[s]
}

// Diagnostic is a single finding about a mapping declaration.
type Diagnostic struct {
	Severity Severity
	// Code is a stable identifier such as "invalid_source_path".
	Code    string
	Message string
	// Pair and Path locate the finding; both may be empty.
	Pair        string
	Path        string
	Suggestions []string
}

// Location renders "pair path", omitting empty parts.
func (d Diagnostic) Location() string {
	switch {
	case d.Pair == "":
		return d.Path
	case d.Path == "":
		return d.Pair
	default:
		return d.Pair + " " + d.Path
	}
}

func (d Diagnostic) String() string {
	var b strings.Builder

	switch {
	case d.Pair != "" && d.Path != "":
		fmt.Fprintf(&b, "[%s] %s: ", d.Pair, d.Path)
	case d.Pair != "":
		fmt.Fprintf(&b, "[%s]: ", d.Pair)
	case d.Path != "":
		fmt.Fprintf(&b, "%s: ", d.Path)
	}

	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	return b.String()
}

// Diagnostics collects findings while validating mapping declarations,
// bucketed by severity in the order they were added.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Add files d under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

func (d *Diagnostics) AddError(code, message, pair, path string) {
	d.Add(Diagnostic{Severity: SeverityError, Code: code, Message: message, Pair: pair, Path: path})
}

// AddErrorWithSuggestions adds an error carrying near matches for a misspelled name.
func (d *Diagnostics) AddErrorWithSuggestions(code, message, pair, path string, suggestions []string) {
	d.Add(Diagnostic{
		Severity:    SeverityError,
		Code:        code,
		Message:     message,
		Pair:        pair,
		Path:        path,
		Suggestions: suggestions,
	})
}

func (d *Diagnostics) AddWarning(code, message, pair, path string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Pair: pair, Path: path})
}

func (d *Diagnostics) AddInfo(code, message, pair, path string) {
	d.Add(Diagnostic{Severity: SeverityInfo, Code: code, Message: message, Pair: pair, Path: path})
}

// Merge appends everything other collected.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}

	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid reports whether nothing blocks applying the declarations.
func (d *Diagnostics) IsValid() bool {
	return !d.HasErrors()
}

// All returns errors, warnings and infos in that order.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// Error combines the error diagnostics, or returns nil if there are none.
// multierr.Errors recovers the individual diagnostics.
func (d *Diagnostics) Error() error {
	var err error
	for _, e := range d.Errors {
		err = multierr.Append(err, errors.New(e.String()))
	}

	return err
}
