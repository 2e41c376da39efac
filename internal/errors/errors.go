// Package errors formats host-side diagnostics: JSON-AST decode failures
// and other errors that never become a language-level thrown value, with
// source-line context and a caret pointing at the offending code unit. It
// is distinct from a thrown JS exception (an ordinary runtime.Value routed
// through a Completion): this package serves the CLI and embedders, not
// the language.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Position is a 1-indexed line/column pair resolved from a byte offset
// into a source document.
type Position struct {
	Line   int
	Column int
}

// Diagnostic is a single host-side error tied to a span in an (optional)
// source document. Source is empty when the diagnostic has no associated
// text (e.g. an AST handed in with no accompanying original script), in
// which case Format falls back to a bare message.
type Diagnostic struct {
	Message string
	Source  string
	File    string
	Offset  int // byte offset into Source; ignored if Source == ""
}

// New builds a Diagnostic with no source context.
func New(format string, args ...any) *Diagnostic {
	return &Diagnostic{Message: fmt.Sprintf(format, args...)}
}

// WithSource attaches source text and a byte offset for caret formatting.
func (d *Diagnostic) WithSource(file, source string, offset int) *Diagnostic {
	d.File = file
	d.Source = source
	d.Offset = offset
	return d
}

func (d *Diagnostic) Error() string { return d.Format(false) }

// Format renders the diagnostic as a header, the offending source line,
// and a caret under the error column, driving color through
// github.com/fatih/color's sprint helpers instead of hand-written ANSI
// escapes.
func (d *Diagnostic) Format(useColor bool) string {
	var sb strings.Builder

	if d.Source == "" {
		if d.File != "" {
			fmt.Fprintf(&sb, "Error in %s: %s", d.File, d.Message)
		} else {
			sb.WriteString("Error: " + d.Message)
		}
		return sb.String()
	}

	pos := resolvePosition(d.Source, d.Offset)
	if d.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", d.File, pos.Line, pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at %d:%d\n", pos.Line, pos.Column)
	}

	lines := strings.Split(d.Source, "\n")
	if pos.Line >= 1 && pos.Line <= len(lines) {
		lineText := lines[pos.Line-1]
		prefix := fmt.Sprintf("%4d | ", pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(lineText)
		sb.WriteString("\n")
		caret := strings.Repeat(" ", len(prefix)+pos.Column-1) + "^"
		if useColor {
			caret = color.New(color.FgRed, color.Bold).Sprint(caret)
		}
		sb.WriteString(caret)
		sb.WriteString("\n")
	}

	msg := d.Message
	if useColor {
		msg = color.New(color.Bold).Sprint(msg)
	}
	sb.WriteString(msg)
	return sb.String()
}

func resolvePosition(source string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return Position{Line: line, Column: col}
}

// FormatAll renders a batch of diagnostics, numbering them when there is
// more than one.
func FormatAll(diags []*Diagnostic, useColor bool) string {
	if len(diags) == 0 {
		return ""
	}
	if len(diags) == 1 {
		return diags[0].Format(useColor)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s):\n\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(&sb, "[%d/%d] ", i+1, len(diags))
		sb.WriteString(d.Format(useColor))
		if i < len(diags)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
