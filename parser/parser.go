// Package parser implements a hand-written, tolerant recursive-descent
// parser over the lexer token stream. It produces a partial AST: it
// recognizes function declarations, arrow-function variable
// assignments, call/member expressions, object destructuring, and the
// require/module.exports idiom, and silently skips anything else one
// token at a time rather than failing the whole parse.
//
// The parser is NOT tolerant of grammar violations inside a production
// it has already committed to (an unterminated function body, a call
// expression that never closes) — those raise a *GrammarError.
package parser

import (
	"github.com/flanksource/reachgrep/jsast"
	"github.com/flanksource/reachgrep/lexer"
)

// Parser turns a token stream into a jsast.Program.
type Parser struct {
	lex  *lexer.Lexer
	curr lexer.Token
}

// New creates a Parser over src and primes it with the first token.
func New(src []byte) *Parser {
	lex := lexer.New(src)
	return &Parser{lex: lex, curr: lex.NextToken()}
}

// Parse parses the whole input and returns the Program root, or a
// *GrammarError if a committed production was malformed.
func Parse(src []byte) (prog *jsast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ge, ok := r.(*GrammarError); ok {
				err = ge
				return
			}
			panic(r)
		}
	}()

	p := New(src)
	prog = p.parseProgram()
	return prog, nil
}

func (p *Parser) line() int { return p.lex.Line() }

func (p *Parser) advance() {
	p.curr = p.lex.NextToken()
}

func (p *Parser) lookahead(distance int) lexer.Token {
	if distance == 0 {
		return p.curr
	}
	return p.lex.Lookahead(distance)
}

func (p *Parser) fatal(msg string) {
	panic(&GrammarError{Token: p.curr.String(), Line: p.line(), Msg: msg})
}

// eat asserts the current token has the given kind, then advances past
// it, returning the consumed token. It is fatal — the caller has always
// already committed to a production that requires this exact token.
func (p *Parser) eat(kind lexer.Kind) lexer.Token {
	if p.curr.Kind == lexer.EOF {
		p.fatal("unexpected end of input")
	}
	if p.curr.Kind != kind {
		p.fatal("unexpected token")
	}
	prev := p.curr
	p.advance()
	return prev
}

func (p *Parser) eatIdentifier() string {
	if p.curr.Kind != lexer.Identifier {
		p.fatal("expected an identifier")
	}
	name := p.curr.Text
	p.advance()
	return name
}

// skipUntil advances at least once, then keeps advancing until curr has
// the given kind. It mirrors the reference parser's naive
// advance-to-first-occurrence behavior (no nesting awareness) used to
// fast-forward through parameter lists whose contents aren't modeled.
// Reaching EOF first is a grammar violation: the caller already
// committed to a production that requires this token downstream.
func (p *Parser) skipUntil(kind lexer.Kind) {
	p.advance()
	for p.curr.Kind != kind {
		if p.curr.Kind == lexer.EOF {
			p.fatal("unexpected end of input")
		}
		p.advance()
	}
}

func (p *Parser) parseProgram() *jsast.Program {
	start := p.line()
	statements := p.statementList(lexer.EOF)
	return jsast.NewProgram(start, p.line(), statements)
}

// statementList collects statements until curr has the stop kind
// (lexer.EOF at the top level, lexer.CloseBraces inside a block).
func (p *Parser) statementList(stop lexer.Kind) []jsast.Node {
	var statements []jsast.Node
	for p.curr.Kind != stop && p.curr.Kind != lexer.EOF {
		if stmt := p.statement(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

func (p *Parser) statement() jsast.Node {
	switch p.curr.Kind {
	case lexer.OpenBraces:
		return p.blockStatement()
	case lexer.ForwardSlash:
		p.consumeComment()
		return nil
	case lexer.Identifier:
		switch p.curr.Text {
		case "function":
			return p.functionStatement()
		case "const", "var", "let":
			return p.variableStatement()
		case "module":
			return p.exportStatement()
		case "if":
			p.advance()
			return nil
		default:
			return p.identifierStatement(p.curr.Text)
		}
	default:
		p.advance()
		return nil
	}
}

// consumeComment handles both `//` line comments and `/* ... */` block
// comments. Any other forward-slash sequence is dropped as a single
// token, same as any other unrecognized construct.
func (p *Parser) consumeComment() {
	switch p.lookahead(1).Kind {
	case lexer.ForwardSlash:
		p.advance() // first '/'
		p.advance() // second '/'
		for p.curr.Kind != lexer.Newline && p.curr.Kind != lexer.EOF {
			p.advance()
		}
		if p.curr.Kind == lexer.Newline {
			p.advance()
		}
	case lexer.Asterisk:
		p.advance() // '/'
		p.advance() // '*'
		for {
			if p.curr.Kind == lexer.EOF {
				return
			}
			if p.curr.Kind == lexer.Asterisk && p.lookahead(1).Kind == lexer.ForwardSlash {
				p.advance() // '*'
				p.advance() // '/'
				return
			}
			p.advance()
		}
	default:
		p.advance()
	}
}

func (p *Parser) blockStatement() *jsast.BlockStatement {
	start := p.line()
	p.eat(lexer.OpenBraces)
	body := p.statementList(lexer.CloseBraces)
	p.eat(lexer.CloseBraces)
	return jsast.NewBlockStatement(start, p.line(), body)
}

func (p *Parser) functionStatement() *jsast.FunctionStatement {
	start := p.line()
	p.advance() // "function"
	name := p.eatIdentifier()
	p.skipUntil(lexer.OpenBraces) // skip the parameter list
	body := p.blockStatement()
	return jsast.NewFunctionStatement(start, p.line(), name, body)
}

// variableStatement parses `const|var|let <lhs> = <rhs>`. lhs is an
// Identifier or an ObjectPattern; rhs is recognized as an arrow
// function, an identifier/call/member chain, or dropped.
func (p *Parser) variableStatement() jsast.Node {
	start := p.line()
	p.advance() // const/var/let

	var lhs jsast.Node
	switch p.curr.Kind {
	case lexer.Identifier:
		name := p.curr.Text
		l := p.line()
		p.advance()
		lhs = jsast.NewIdentifier(l, l, name)
	case lexer.OpenBraces:
		lhs = p.objectPattern()
	default:
		p.fatal("expected an identifier or destructuring pattern")
	}

	p.eat(lexer.Equals)

	switch p.curr.Kind {
	case lexer.OpenParen:
		p.skipUntil(lexer.OpenBraces) // skip the arrow's parameter list
		body := p.blockStatement()
		name := ""
		if ident, ok := lhs.(*jsast.Identifier); ok {
			name = ident.Name
		}
		return jsast.NewFunctionStatement(start, p.line(), name, body)
	case lexer.Identifier:
		name := p.curr.Text
		identStart := p.line()
		p.advance()
		rhs := p.identifierChain(name, identStart)
		return jsast.NewVariableExpression(start, p.line(), lhs, rhs)
	default:
		return nil
	}
}

// objectPattern parses `{ key [: alias] [, ...] }`, tolerating
// newlines and commas interchangeably as separators.
func (p *Parser) objectPattern() *jsast.ObjectPattern {
	start := p.line()
	p.eat(lexer.OpenBraces)

	var props []jsast.Property
	for {
		for p.curr.Kind == lexer.Comma || p.curr.Kind == lexer.Newline {
			p.advance()
		}
		if p.curr.Kind == lexer.CloseBraces {
			break
		}

		key := p.eatIdentifier()
		value := key
		if p.curr.Kind == lexer.Colon {
			p.advance()
			value = p.eatIdentifier()
		}
		props = append(props, jsast.Property{Key: key, Value: value})
	}

	p.eat(lexer.CloseBraces)
	return jsast.NewObjectPattern(start, p.line(), props)
}

// exportStatement recognizes the exact sequence `module . exports =`
// followed by an ObjectPattern. Anything else starting with "module" is
// just an identifier expression (module is not a reserved word here).
func (p *Parser) exportStatement() jsast.Node {
	if p.lookahead(1).Kind == lexer.Dot &&
		p.lookahead(2).Kind == lexer.Identifier && p.lookahead(2).Text == "exports" &&
		p.lookahead(3).Kind == lexer.Equals {
		start := p.line()
		p.advance() // module
		p.advance() // .
		p.advance() // exports
		p.advance() // =
		pattern := p.objectPattern()
		return jsast.NewExportStatement(start, pattern.End(), pattern)
	}

	return p.identifierStatement("module")
}

// identifierStatement handles a bare statement-level identifier: it is
// only kept as an AST node when followed by `(` or `.` (a call or
// member chain); a lone identifier statement is dropped, same as the
// reference parser — the surrounding grep window still sweeps its
// source line regardless.
func (p *Parser) identifierStatement(name string) jsast.Node {
	start := p.line()
	switch p.lookahead(1).Kind {
	case lexer.OpenParen, lexer.Dot:
		p.advance()
		return p.identifierChain(name, start)
	default:
		p.advance()
		return nil
	}
}

// identifierChain builds a left-associative chain of member accesses
// and calls rooted at an already-named identifier. name has already
// been read; curr is whatever follows it.
func (p *Parser) identifierChain(name string, start int) jsast.Node {
	var node jsast.Node = jsast.NewIdentifier(start, start, name)

	for {
		switch p.curr.Kind {
		case lexer.OpenParen:
			node = p.callExpression(node, start)
		case lexer.Dot:
			p.advance()
			prop := p.eatIdentifier()
			node = jsast.NewMemberExpression(start, p.line(), node, prop)
		default:
			return node
		}
	}
}

// callExpression parses `base(...)`. The first token inside the parens
// is captured as FirstStringArg iff it is a string literal (all that's
// needed to recover require("./...") paths); everything else inside the
// parens is scanned past without nesting awareness, matching the
// reference parser.
func (p *Parser) callExpression(base jsast.Node, start int) *jsast.CallExpression {
	p.advance() // '('

	var firstArg *string
	if p.curr.Kind == lexer.String {
		s := p.curr.Text
		firstArg = &s
	}

	for p.curr.Kind != lexer.CloseParen {
		if p.curr.Kind == lexer.EOF {
			p.fatal("unterminated call expression")
		}
		p.advance()
	}
	p.eat(lexer.CloseParen)

	return jsast.NewCallExpression(start, p.line(), base, firstArg)
}
