package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/basicc-lang/basicc/internal/position"
)

const colorReset = "\033[0m"

// colorizeLevel adds color codes for terminal display
func colorizeLevel(level DiagnosticLevel) string {
	switch level {
	case DiagnosticError:
		return "\033[31m" // Red
	case DiagnosticWarning:
		return "\033[33m" // Yellow
	case DiagnosticInfo:
		return "\033[34m" // Blue
	case DiagnosticHint:
		return "\033[90m" // Gray
	default:
		return ""
	}
}

// Format renders d as text. When src is not nil the offending line is
// quoted with a caret under the span.
//
//	error[S0001]: variable "a" referenced before assignment
//	  --> prog.bas:1:7
//	   |
//	 1 | PRINT a
//	   |       ^
func Format(d Diagnostic, src *position.SourceFile, colorize bool) string {
	var result strings.Builder

	paint := func(s string) string {
		if !colorize {
			return s
		}
		return colorizeLevel(d.Level) + s + colorReset
	}

	header := d.Level.String()
	if d.Code != "" {
		header += "[" + d.Code + "]"
	}
	result.WriteString(paint(header))
	result.WriteString(": " + d.Message + "\n")

	if d.HasLocation() {
		result.WriteString("  --> " + location(d.Span.Start, src) + "\n")
		writeSnippet(&result, d.Span, src, paint)
	}

	for _, info := range d.RelatedInfo {
		result.WriteString(fmt.Sprintf("note: %s at %s\n", info.Message, location(info.Location.Start, src)))
	}
	for _, s := range d.Suggestions {
		result.WriteString("help: " + s + "\n")
	}

	return result.String()
}

// Render writes the text form of d to w.
func Render(w io.Writer, d Diagnostic, src *position.SourceFile, colorize bool) error {
	_, err := io.WriteString(w, Format(d, src, colorize))
	return err
}

// RenderJSON writes d as one JSON object followed by a newline.
func RenderJSON(w io.Writer, d Diagnostic) error {
	return json.NewEncoder(w).Encode(d)
}

func location(pos position.Position, src *position.SourceFile) string {
	if pos.Filename == "" && src != nil && src.Filename != "" {
		pos.Filename = src.Filename
	}
	return pos.String()
}

func writeSnippet(b *strings.Builder, span position.Span, src *position.SourceFile, paint func(string) string) {
	if src == nil || span.Start.Line < 1 || span.Start.Line > len(src.Lines) {
		return
	}
	line := src.GetLine(span.Start.Line)

	gutter := len(fmt.Sprint(span.Start.Line))
	pad := strings.Repeat(" ", gutter)

	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		width = span.End.Column - span.Start.Column
	}
	// a newline token has no visible width
	if span.Start.Column > len(line) {
		width = 1
	}

	fmt.Fprintf(b, " %s |\n", pad)
	fmt.Fprintf(b, " %d | %s\n", span.Start.Line, line)
	fmt.Fprintf(b, " %s | %s%s\n", pad, caretIndent(line, span.Start.Column), paint(strings.Repeat("^", width)))
}

// caretIndent keeps tabs so the caret lines up with the quoted line.
func caretIndent(line string, column int) string {
	var sb strings.Builder
	for i := 0; i < column-1; i++ {
		if i < len(line) && line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
