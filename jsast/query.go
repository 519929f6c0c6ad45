package jsast

import "strings"

// FindTopLevelFunction linearly scans a Program's statements for a
// top-level FunctionStatement with the given name.
func FindTopLevelFunction(program *Program, name string) *FunctionStatement {
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*FunctionStatement); ok && fn.Name == name {
			return fn
		}
	}
	return nil
}

// isRequireCall reports whether node is a call to `require("./relative")`
// or `require("../relative")` — a relative path is mandatory; dynamic or
// bare-module requires are out of scope (spec Non-goals).
func isRequireCall(node Node) (path string, ok bool) {
	call, isCall := node.(*CallExpression)
	if !isCall || call.FirstStringArg == nil {
		return "", false
	}
	ident, isIdent := call.Base.(*Identifier)
	if !isIdent || ident.Name != "require" {
		return "", false
	}
	arg := *call.FirstStringArg
	if !strings.HasPrefix(arg, "./") && !strings.HasPrefix(arg, "../") {
		return "", false
	}
	return arg, true
}

// TryInterpretAsRequire returns the relative module path and the
// left-hand side node iff stmt is a VariableExpression whose
// right-hand side is a relative require() call, e.g.
// `const { a, b } = require("./m")` or `const m = require("./m")`.
func TryInterpretAsRequire(stmt Node) (relativePath string, lhs Node, ok bool) {
	ve, isVE := stmt.(*VariableExpression)
	if !isVE {
		return "", nil, false
	}
	path, isRequire := isRequireCall(ve.Rhs)
	if !isRequire {
		return "", nil, false
	}
	return path, ve.Lhs, true
}

// FindExportStatement returns the first ExportStatement at a Program's
// top level, if any.
func FindExportStatement(program *Program) *ExportStatement {
	for _, stmt := range program.Statements {
		if es, ok := stmt.(*ExportStatement); ok {
			return es
		}
	}
	return nil
}
