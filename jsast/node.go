// Package jsast defines the partial abstract syntax tree the parser
// produces: a small, deliberately incomplete tagged union covering only
// the constructs reachability search depends on (function declarations,
// arrow-function assignments, call/member expressions, object
// destructuring, and the require/module.exports idiom).
package jsast

// Node is any AST node. Every variant carries a start/end line span;
// spans are 0-based and inclusive of the first and last line the
// production consumed, as emitted by the parser.
type Node interface {
	Start() int
	End() int
	node()
}

type span struct {
	StartLine int
	EndLine   int
}

func (s span) Start() int { return s.StartLine }
func (s span) End() int   { return s.EndLine }
func (span) node()        {}

// Program is the root of a parsed file: a flat, ordered sequence of
// top-level statements. It is never nested inside another Program.
type Program struct {
	span
	Statements []Node
}

// FunctionStatement is a named function, whether introduced by
// `function name() {...}` or by an arrow function assigned to a
// variable (`const name = (...) => {...}`) — the parser produces the
// same node shape for both, since reachability search only cares about
// the name and the body it can descend into.
type FunctionStatement struct {
	span
	Name string
	Body *BlockStatement
}

// BlockStatement is an ordered sequence of statements delimited by `{`
// and `}`.
type BlockStatement struct {
	span
	Statements []Node
}

// CallExpression is a call `base(...)`. Base is an Identifier or a
// MemberExpression, or a CallExpression when calls are chained directly
// as in `f()()`; it is never a literal. FirstStringArg
// is populated only when the very first token inside the parens is a
// string literal — which is all that's needed to recover
// `require("./path")` arguments; no other argument is retained.
type CallExpression struct {
	span
	Base           Node
	FirstStringArg *string
}

// Identifier is a bare name reference.
type Identifier struct {
	span
	Name string
}

// MemberExpression is a left-associative `.`-chain, e.g. `a.b.c`. Base
// holds the chain built so far (an Identifier, a MemberExpression, or a
// CallExpression interleaved into the chain); Property is the final
// `.name` segment this node adds.
type MemberExpression struct {
	span
	Base     Node
	Property string
}

// VariableExpression is `lhs = rhs` as produced by a variable statement
// whose right-hand side was not recognized as an arrow function (e.g.
// `const { a, b } = require("./m")` or `let x = y`).
type VariableExpression struct {
	span
	Lhs Node
	Rhs Node
}

// Property is one `key` or `key: alias` entry of an ObjectPattern.
// Value defaults to Key when no rename is present.
type Property struct {
	Key   string
	Value string
}

// ObjectPattern is a destructuring pattern `{ a, b: c }`.
type ObjectPattern struct {
	span
	Properties []Property
}

// ExportStatement wraps the right-hand side of `module.exports = {...}`.
type ExportStatement struct {
	span
	Exports *ObjectPattern
}

func newSpan(start, end int) span { return span{StartLine: start, EndLine: end} }

// NewProgram builds a Program node spanning [start, end].
func NewProgram(start, end int, statements []Node) *Program {
	return &Program{span: newSpan(start, end), Statements: statements}
}

// NewFunctionStatement builds a FunctionStatement node spanning [start, end].
func NewFunctionStatement(start, end int, name string, body *BlockStatement) *FunctionStatement {
	return &FunctionStatement{span: newSpan(start, end), Name: name, Body: body}
}

// NewBlockStatement builds a BlockStatement node spanning [start, end].
func NewBlockStatement(start, end int, statements []Node) *BlockStatement {
	return &BlockStatement{span: newSpan(start, end), Statements: statements}
}

// NewCallExpression builds a CallExpression node spanning [start, end].
func NewCallExpression(start, end int, base Node, firstStringArg *string) *CallExpression {
	return &CallExpression{span: newSpan(start, end), Base: base, FirstStringArg: firstStringArg}
}

// NewIdentifier builds an Identifier node spanning [start, end].
func NewIdentifier(start, end int, name string) *Identifier {
	return &Identifier{span: newSpan(start, end), Name: name}
}

// NewMemberExpression builds a MemberExpression node spanning [start, end].
func NewMemberExpression(start, end int, base Node, property string) *MemberExpression {
	return &MemberExpression{span: newSpan(start, end), Base: base, Property: property}
}

// NewVariableExpression builds a VariableExpression node spanning [start, end].
func NewVariableExpression(start, end int, lhs, rhs Node) *VariableExpression {
	return &VariableExpression{span: newSpan(start, end), Lhs: lhs, Rhs: rhs}
}

// NewObjectPattern builds an ObjectPattern node spanning [start, end].
func NewObjectPattern(start, end int, properties []Property) *ObjectPattern {
	return &ObjectPattern{span: newSpan(start, end), Properties: properties}
}

// NewExportStatement builds an ExportStatement node spanning [start, end].
func NewExportStatement(start, end int, exports *ObjectPattern) *ExportStatement {
	return &ExportStatement{span: newSpan(start, end), Exports: exports}
}
