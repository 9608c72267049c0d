// Package diag defines the typed error and warning taxonomy shared across
// the pipeline (spec.md §7) and formats diagnostics with source-line and
// caret context, following the teacher's internal/errors.CompilerError.
package diag

import (
	"fmt"
	"strings"
)

// Location echoes source coordinates; it is carried for diagnostics only and
// never consulted for semantics (spec.md §3.1).
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Kind is one variant of the error taxonomy in spec.md §7. Kind values are
// compared by identity, never by matching on a formatted message string.
type Kind string

const (
	KindParseError          Kind = "ParseError"
	KindUnsupportedConstruct Kind = "UnsupportedConstruct"
	KindInvalidNodeShape     Kind = "InvalidNodeShape"
	KindScopeError           Kind = "ScopeError"
	KindTypeError            Kind = "TypeError"
	KindPatternError         Kind = "PatternError"
	KindUnsupportedForWasm   Kind = "UnsupportedForWasm"
	KindUnsupportedForLua    Kind = "UnsupportedForLua"
	KindUnsupportedForLLVM   Kind = "UnsupportedForLLVM"
	KindCancelled            Kind = "Cancelled"
	KindInternalError        Kind = "InternalError"
)

// Diagnostic is one error or warning produced by a pipeline stage.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Location Location
	Source   string // the full source text, for caret rendering; may be empty
	Warning  bool
}

// Error implements the error interface so a Diagnostic can be returned
// directly from a stage that fails fast.
func (d *Diagnostic) Error() string {
	return d.Format(false)
}

// Format renders the diagnostic with a source-line and caret indicator when
// Source is available, mirroring the teacher's CompilerError.Format.
func (d *Diagnostic) Format(color bool) string {
	var sb strings.Builder

	severity := "error"
	if d.Warning {
		severity = "warning"
	}
	fmt.Fprintf(&sb, "%s[%s] at %s\n", severity, d.Kind, d.Location)

	if line := sourceLine(d.Source, d.Location.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", d.Location.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := d.Location.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(d.Message)
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// New constructs a fatal Diagnostic of the given kind.
func New(kind Kind, loc Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Warningf constructs an advisory Diagnostic of the given kind.
func Warningf(kind Kind, loc Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...), Warning: true}
}

// FormatAll joins a batch of diagnostics the way the CLI reports them,
// mirroring the teacher's errors.FormatErrors.
func FormatAll(diags []*Diagnostic, color bool) string {
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.Format(color)
	}
	return strings.Join(parts, "\n")
}

// PromoteWarnings converts every warning in diags to a fatal diagnostic of
// the same Kind, implementing determinism.strict (SPEC_FULL.md §3).
func PromoteWarnings(diags []*Diagnostic) []*Diagnostic {
	out := make([]*Diagnostic, len(diags))
	for i, d := range diags {
		cp := *d
		cp.Warning = false
		out[i] = &cp
	}
	return out
}

// Split separates a mixed diagnostic batch into errors and warnings.
func Split(diags []*Diagnostic) (errs, warnings []*Diagnostic) {
	for _, d := range diags {
		if d.Warning {
			warnings = append(warnings, d)
		} else {
			errs = append(errs, d)
		}
	}
	return errs, warnings
}
