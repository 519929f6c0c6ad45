// Package colorout highlights needle occurrences and line numbers in a
// match report, the way the teacher's cmd/violations.go colors
// violation output - only engaged when the caller asks for it (--color),
// never by default.
package colorout

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	needleColor = color.New(color.FgRed, color.Bold)
	lineColor   = color.New(color.FgHiBlack)
	fileColor   = color.New(color.FgCyan, color.Bold)
)

// Highlight wraps every occurrence of needle in text in bold red.
func Highlight(text, needle string) string {
	if needle == "" {
		return text
	}

	var b strings.Builder
	rest := text
	for {
		i := strings.Index(rest, needle)
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		b.WriteString(needleColor.Sprint(needle))
		rest = rest[i+len(needle):]
	}
	return b.String()
}

// Line formats one "<file>:<line>: <text>" report line, coloring the
// file, line number, and needle occurrences within text.
func Line(file string, lineNum int, text, needle string) string {
	return fmt.Sprintf("%s:%s: %s",
		fileColor.Sprint(file),
		lineColor.Sprint(lineNum),
		Highlight(text, needle),
	)
}
