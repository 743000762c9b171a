package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"object-mapper/internal/diagnostic"
)

// printer writes diagnostics with a colored severity label per line.
type printer struct {
	w       io.Writer
	error   *color.Color
	warning *color.Color
	info    *color.Color
	hint    *color.Color
	ok      *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:       w,
		error:   color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		info:    color.New(color.FgCyan),
		hint:    color.New(color.Faint),
		ok:      color.New(color.FgGreen, color.Bold),
	}

	if noColor {
		for _, c := range []*color.Color{p.error, p.warning, p.info, p.hint, p.ok} {
			c.DisableColor()
		}
	}

	return p
}

func (p *printer) diagnostics(d *diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		p.diagnostic(diag)
	}
}

func (p *printer) diagnostic(d diagnostic.Diagnostic) {
	label := p.info
	switch d.Severity {
	case diagnostic.SeverityError:
		label = p.error
	case diagnostic.SeverityWarning:
		label = p.warning
	}

	location := d.Location()
	if location != "" {
		location += ": "
	}

	fmt.Fprintf(p.w, "%s %s%s [%s]\n", label.Sprintf("%-8s", d.Severity.String()+":"), location, d.Message, d.Code)

	for _, s := range d.Suggestions {
		fmt.Fprintf(p.w, "         %s\n", p.hint.Sprintf("did you mean %s?", s))
	}
}

func (p *printer) summary(file string, d *diagnostic.Diagnostics) {
	counts := fmt.Sprintf("%s, %s", plural(len(d.Errors), "error"), plural(len(d.Warnings), "warning"))

	if d.HasErrors() {
		fmt.Fprintf(p.w, "%s %s: %s\n", p.error.Sprint("FAIL"), file, counts)
		return
	}

	fmt.Fprintf(p.w, "%s %s: %s\n", p.ok.Sprint("ok"), file, counts)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}

	return fmt.Sprintf("%d %ss", n, word)
}
