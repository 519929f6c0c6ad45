package parser

import "fmt"

// GrammarError is a fatal parse failure inside a production the parser
// has already committed to (e.g. an unterminated function body or a
// call expression that never closes). It is never raised for syntax the
// parser doesn't recognize in the first place — that syntax is silently
// skipped, per the tool's tolerant-parsing design.
type GrammarError struct {
	Token string
	Line  int
	Msg   string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("line %d: %s (at token %q)", e.Line+1, e.Msg, e.Token)
}
