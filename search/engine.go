// Package search implements the reachability-guided visitor: given an
// entry file (and optionally a function to start from), it walks only
// the call graph actually reachable from that point — function bodies
// are descended into because they are called, never merely because
// they appear in the source — and reports every source line along the
// way that contains the needle.
//
// Between any two AST nodes the visitor actually walks, the full text
// in between is grepped too. A statement the parser silently dropped
// is not a statement the search misses: it still falls inside whatever
// grep window spans across it.
package search

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/flanksource/reachgrep/internal/cache"
	"github.com/flanksource/reachgrep/jsast"
	"github.com/flanksource/reachgrep/parser"
	"github.com/flanksource/reachgrep/scope"
)

// IOError is a fatal failure to read a source file the search needed —
// the entry file itself, or a require() target it resolved to. It is
// distinct both from an unresolved symbol (a call or require binding
// the engine simply can't follow, which is never an error) and from a
// *parser.GrammarError (a file that was read fine but failed to
// parse): this is the one failure mode the CLI layer branches on to
// pick a distinct exit code from either of those.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// wrapLoadError classifies a FileCache.Get failure: a grammar error is
// passed through as-is (the CLI branches on *parser.GrammarError
// directly), anything else — a missing or unreadable file — becomes an
// IOError.
func wrapLoadError(path string, err error) error {
	var ge *parser.GrammarError
	if errors.As(err, &ge) {
		return err
	}
	return &IOError{Path: path, Err: err}
}

// cycleKey identifies one function declaration by the file it lives in
// and the line its declaration starts on — the reference algorithm has no
// guard against recursive call chains, which makes a self-recursive or
// mutually-recursive target loop forever; this is the one behavior the
// engine adds beyond it.
type cycleKey struct {
	file  string
	start int
}

// Engine runs one reachability search over a needle.
type Engine struct {
	needle  string
	files   *cache.FileCache
	scope   *scope.ProgramScope
	line    int
	matches []Match
	active  map[cycleKey]bool
}

// New creates an Engine that will search for needle using files as its
// file cache (so repeated engines over the same process can still share
// already-parsed files).
func New(needle string, files *cache.FileCache) *Engine {
	return &Engine{
		needle: needle,
		files:  files,
		scope:  scope.NewProgramScope(),
		active: make(map[cycleKey]bool),
	}
}

// Search runs the visitor starting from entryPath. If functionName is
// non-empty, the walk starts at that top-level function's declaration
// instead of the top of the file (the file's top-level statements are
// still indexed first, so the starting function can call siblings and
// cross-file imports declared anywhere in the file). Matches are
// returned in the order they were discovered.
func (e *Engine) Search(entryPath, functionName string) ([]Match, error) {
	absEntry, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", entryPath, err)
	}

	entry, err := e.files.Get(absEntry)
	if err != nil {
		return nil, wrapLoadError(absEntry, err)
	}

	e.scope.PushFile(absEntry)

	if functionName == "" {
		e.line = entry.AST.Start()
		if err := e.visitNode(entry.AST); err != nil {
			return nil, err
		}
		return e.matches, nil
	}

	if err := e.indexBlock(absEntry, entry.AST.Statements); err != nil {
		return nil, err
	}
	fn := jsast.FindTopLevelFunction(entry.AST, functionName)
	if fn == nil {
		return nil, fmt.Errorf("function %q not found in %s", functionName, absEntry)
	}
	e.line = fn.Start()
	e.active[cycleKey{file: absEntry, start: fn.Start()}] = true
	if err := e.visitNode(fn); err != nil {
		return nil, err
	}
	return e.matches, nil
}

// grep scans file.Lines[from..until] inclusive for unrecorded lines
// containing the needle.
func (e *Engine) grep(from, until int) {
	cur := e.scope.Current()
	if cur == nil {
		return
	}
	file, ok := e.files.Peek(cur.Path)
	if !ok {
		return
	}

	for line := from; line <= until; line++ {
		if file.IsRecorded(line) {
			continue
		}
		text := file.Line(line)
		if strings.Contains(text, e.needle) {
			file.MarkRecorded(line)
			e.matches = append(e.matches, Match{
				File: cur.Path,
				Line: line,
				Text: strings.TrimSpace(text),
			})
		}
	}
}

// pushFileScope loads path (if not already cached), opens a FileScope
// for it, and indexes its top-level statements. By the time a call
// resolves to path, an earlier indexBlock already loaded it
// successfully once (that's how its symbol entered scope in the first
// place), so the load here always hits the cache; the one thing that
// can still fail is indexing path's own require statements the first
// time it's visited, which is the same missing-required-file class
// indexBlock already treats as fatal.
func (e *Engine) pushFileScope(path string) error {
	e.scope.PushFile(path)

	file, err := e.files.Get(path)
	if err != nil {
		return wrapLoadError(path, err)
	}

	return e.indexBlock(path, file.AST.Statements)
}

// requireTargets returns the destructured (or single-identifier)
// bindings a require() produces, normalizing both forms to a property
// list: `const { a, b } = require(...)` yields its own properties;
// `const m = require(...)` is treated as the one-property pattern
// `{m: m}` — the visitor only ever dereferences bare-identifier call
// bases, so an aliased whole-module binding can be indexed but never
// actually followed through a member access like `m.foo()`.
func requireTargets(lhs jsast.Node) []jsast.Property {
	switch v := lhs.(type) {
	case *jsast.ObjectPattern:
		return v.Properties
	case *jsast.Identifier:
		return []jsast.Property{{Key: v.Name, Value: v.Name}}
	default:
		return nil
	}
}

// indexBlock binds every top-level FunctionStatement declared in
// statements into the current scope, and resolves every require() found
// among them, indexing the functions it names. A missing or unreadable
// required file is fatal to the search.
func (e *Engine) indexBlock(currentFile string, statements []jsast.Node) error {
	for _, node := range statements {
		if relPath, lhs, ok := jsast.TryInterpretAsRequire(node); ok {
			props := requireTargets(lhs)
			if len(props) > 0 {
				resolved, err := resolveModulePath(currentFile, relPath)
				if err != nil {
					return &IOError{Path: relPath, Err: fmt.Errorf("resolving require in %s: %w", currentFile, err)}
				}
				if err := e.indexExport(resolved, props); err != nil {
					return err
				}
			}
		}

		if fn, ok := node.(*jsast.FunctionStatement); ok {
			e.scope.InsertSymbol(fn.Name, scope.Symbol{Node: fn, File: currentFile})
		}
	}
	return nil
}

// indexExport loads requiredFile (parsing it if this is the first time
// it's been seen) and binds each requested property to the matching
// top-level function declared there, under its local alias. A function
// named in the pattern but not declared in the target file is silently
// skipped — only the file itself being unreachable is fatal.
func (e *Engine) indexExport(requiredFile string, props []jsast.Property) error {
	file, err := e.files.Get(requiredFile)
	if err != nil {
		return wrapLoadError(requiredFile, err)
	}

	for _, prop := range props {
		fn := jsast.FindTopLevelFunction(file.AST, prop.Key)
		if fn == nil {
			continue
		}
		e.scope.InsertSymbol(prop.Value, scope.Symbol{Node: fn, File: requiredFile})
	}
	return nil
}

// visitNode greps the gap between the cursor and node's start, visits
// node according to its kind, then greps the gap between node's (new)
// start and its end. Entering and leaving a BlockStatement pushes and
// pops a scope around the visit.
func (e *Engine) visitNode(node jsast.Node) error {
	start := node.Start()
	e.grep(e.line, start)
	e.line = start

	var err error
	switch n := node.(type) {
	case *jsast.BlockStatement:
		err = e.visitBlockStatement(n)
	case *jsast.CallExpression:
		err = e.visitCallExpression(n)
	case *jsast.FunctionStatement:
		err = e.visitFunction(n)
	case *jsast.Program:
		err = e.visitProgram(n)
	case *jsast.Identifier, *jsast.ExportStatement, *jsast.VariableExpression, *jsast.ObjectPattern, *jsast.MemberExpression:
		// Carries no further reachable structure of its own. A bare
		// MemberExpression statement (`obj.prop`, with no call) and a
		// CallExpression whose base is a MemberExpression rather than an
		// Identifier both land here — member-expression call sites are a
		// known resolution limitation, not a traversal one.
	}

	end := node.End()
	e.grep(e.line, end)
	e.line = end

	if _, ok := node.(*jsast.BlockStatement); ok {
		e.scope.Pop()
	}
	return err
}

// visitProgram opens a block for the file's top level, so that a call
// from the top level into a same-file function does not drain the entry
// FileScope when that function's body block is popped.
func (e *Engine) visitProgram(prog *jsast.Program) error {
	e.scope.PushBlock()
	return e.visitBlock(prog.Statements)
}

func (e *Engine) visitFunction(fn *jsast.FunctionStatement) error {
	return e.visitNode(fn.Body)
}

func (e *Engine) visitBlockStatement(bs *jsast.BlockStatement) error {
	e.scope.PushBlock()
	return e.visitBlock(bs.Statements)
}

// visitBlock indexes the block's own statements first (so a function
// declared further down can still be called by one declared above it),
// then walks the statements in order. A FunctionStatement's body is
// never descended into here — only a call reaching it does that; the
// block greps up to the line before the function's declaration and
// resumes after its last line, so the lines the function spans are not
// grepped unless a call reaches it.
func (e *Engine) visitBlock(statements []jsast.Node) error {
	if err := e.indexBlock(e.currentFilePath(), statements); err != nil {
		return err
	}

	for _, node := range statements {
		if fn, ok := node.(*jsast.FunctionStatement); ok {
			if fn.Start() > 0 {
				e.grep(e.line, fn.Start()-1)
			}
			e.line = fn.End() + 1
			continue
		}
		if err := e.visitNode(node); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) currentFilePath() string {
	if cur := e.scope.Current(); cur != nil {
		return cur.Path
	}
	return ""
}

// visitCallExpression resolves the call's callee name in the current
// scope and, if found, visits its declaration — switching FileScope
// first if the declaration lives in a different file. A call whose
// base isn't a bare identifier, or whose name doesn't resolve, is
// silently not followed. A cycle guard keyed by (file, function start
// line) stops the walk from recursing forever through a self- or
// mutually-recursive call chain.
func (e *Engine) visitCallExpression(call *jsast.CallExpression) error {
	ident, ok := call.Base.(*jsast.Identifier)
	if !ok {
		return nil
	}

	sym, ok := e.scope.FindSymbol(ident.Name)
	if !ok {
		return nil
	}

	if fn, isFn := sym.Node.(*jsast.FunctionStatement); isFn {
		key := cycleKey{file: sym.File, start: fn.Start()}
		if e.active[key] {
			return nil
		}
		e.active[key] = true
		defer delete(e.active, key)
	}

	// Only function declarations are ever bound into scope (see
	// indexBlock/indexExport), and visiting one always ends by visiting
	// its BlockStatement body — whose own post-visit Pop drains the
	// FileScope pushFileScope opens here. No matching Pop belongs here.
	currentFile := e.currentFilePath()
	if sym.File != currentFile {
		if err := e.pushFileScope(sym.File); err != nil {
			return err
		}
	}

	savedLine := call.Start()
	e.line = sym.Node.Start()
	err := e.visitNode(sym.Node)
	e.line = savedLine
	return err
}
