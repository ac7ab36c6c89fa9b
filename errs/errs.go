// Package errs provides the structured error taxonomy and accumulating
// diagnostic handler shared by the decoder, parser, validator and
// generator.
//
// Unlike a typical Go library, most of this package's consumers do not
// want the first error to abort the pass: a Handler collects every
// diagnostic it's given and the caller decides, at the end of the pass,
// whether the error count means the result is usable. This mirrors the
// accumulate-don't-unwind behavior the binary decoder and text parser both
// need (see Handler).
package errs

import (
	"fmt"
	"strings"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

// Kind categorizes the originating phase of a Diagnostic, matching the
// taxonomy of error sources: lexical and syntactic errors come from the
// text front end, binary-format errors from the binary front end,
// resolution errors from either, semantic errors from the validator, and
// advisory warnings from either decoder.
type Kind string

const (
	Lexical    Kind = "lexical"
	Syntactic  Kind = "syntactic"
	Binary     Kind = "binary"
	Resolution Kind = "resolution"
	Semantic   Kind = "semantic"
	Advisory   Kind = "advisory"
)

// Pos locates a diagnostic. For text input Line/Column are 1-based and
// Section is empty; for binary input Section/Entry identify the section
// and entry index and Line/Column are zero.
type Pos struct {
	Section string
	Line    int
	Column  int
	Entry   int
}

func (p Pos) String() string {
	if p.Section != "" {
		if p.Entry > 0 {
			return fmt.Sprintf("in %s section at entry %d", p.Section, p.Entry)
		}
		return fmt.Sprintf("in %s section", p.Section)
	}
	if p.Line == 0 {
		return ""
	}
	return fmt.Sprintf("line %d(%d)", p.Line, p.Column)
}

// Diagnostic is a single reported error or warning.
type Diagnostic struct {
	Pos     Pos
	Message string
	Kind    Kind
	Sev     Severity
}

func (d Diagnostic) String() string {
	pos := d.Pos.String()
	if pos == "" {
		return fmt.Sprintf("%s: %s", d.Sev, d.Message)
	}
	return fmt.Sprintf("%s at %s: %s", d.Sev, pos, d.Message)
}

// Handler accumulates diagnostics across a whole decode/parse/validate
// pass instead of stopping at the first problem, so that one pass over a
// malformed module surfaces every violation it contains rather than just
// the first. Emission (of binary, text, or C) should be suppressed
// whenever HasErrors is true.
type Handler struct {
	diags   []Diagnostic
	section string
	entry   int
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// SetSection records the section name used to prefix subsequent binary
// diagnostics until the next SetSection/ResetContext call.
func (h *Handler) SetSection(name string) {
	h.section = name
	h.entry = 0
}

// SetEntry records the entry index used to prefix subsequent binary
// diagnostics.
func (h *Handler) SetEntry(n int) {
	h.entry = n
}

// ResetContext clears the section/entry context (used between top-level
// module parses).
func (h *Handler) ResetContext() {
	h.section = ""
	h.entry = 0
}

// Errorf records an error at the current section/entry context.
func (h *Handler) Errorf(kind Kind, format string, args ...any) {
	h.diags = append(h.diags, Diagnostic{
		Kind:    kind,
		Sev:     Error,
		Pos:     Pos{Section: h.section, Entry: h.entry},
		Message: fmt.Sprintf(format, args...),
	})
}

// ErrorAt records an error at an explicit source line/column, for the
// text front end.
func (h *Handler) ErrorAt(kind Kind, line, column int, format string, args ...any) {
	h.diags = append(h.diags, Diagnostic{
		Kind:    kind,
		Sev:     Error,
		Pos:     Pos{Line: line, Column: column},
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning at the current section/entry context.
func (h *Handler) Warnf(kind Kind, format string, args ...any) {
	h.diags = append(h.diags, Diagnostic{
		Kind:    kind,
		Sev:     Warning,
		Pos:     Pos{Section: h.section, Entry: h.entry},
		Message: fmt.Sprintf(format, args...),
	})
}

// WarnAt records a warning at an explicit source line/column.
func (h *Handler) WarnAt(kind Kind, line, column int, format string, args ...any) {
	h.diags = append(h.diags, Diagnostic{
		Kind:    kind,
		Sev:     Warning,
		Pos:     Pos{Line: line, Column: column},
		Message: fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns every diagnostic recorded so far, in report order.
func (h *Handler) Diagnostics() []Diagnostic {
	return h.diags
}

// ErrorCount returns the number of Error-severity diagnostics.
func (h *Handler) ErrorCount() int {
	n := 0
	for _, d := range h.diags {
		if d.Sev == Error {
			n++
		}
	}
	return n
}

// WarningCount returns the number of Warning-severity diagnostics.
func (h *Handler) WarningCount() int {
	n := 0
	for _, d := range h.diags {
		if d.Sev == Warning {
			n++
		}
	}
	return n
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
func (h *Handler) HasErrors() bool {
	return h.ErrorCount() > 0
}

// Summary renders every diagnostic followed by a one-line count, matching
// the front-end's user-visible report format.
func (h *Handler) Summary() string {
	var b strings.Builder
	for _, d := range h.diags {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s)\n", h.ErrorCount(), h.WarningCount())
	return b.String()
}
