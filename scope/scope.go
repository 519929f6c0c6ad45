// Package scope implements the scoped symbol resolver the reachability
// search uses to turn a call site's callee name into the function
// declaration it refers to — possibly in another file, if the name was
// bound by a require() destructure.
//
// The resolver is a stack of stacks: a ProgramScope holds one FileScope
// per file currently on the visitor's descent path (innermost file
// last, pushed when a call crosses into a required file and popped
// once that file's call is fully visited). Each FileScope holds a
// stack of block tables, pushed and popped exactly in step with the
// BlockStatement nodes the visitor enters and leaves. A symbol bound
// with no block currently open — i.e. a file's top-level declarations
// — lands in that file's global table instead, which every block's
// lookup falls back to.
package scope

import "github.com/flanksource/reachgrep/jsast"

// Symbol is a named binding: the AST node it refers to, and the path of
// the file that node lives in (so a cross-file lookup can tell the
// visitor which file to switch into before descending).
type Symbol struct {
	Node jsast.Node
	File string
}

// table is a flat name -> Symbol map for one lexical scope.
type table map[string]Symbol

func newTable() table { return make(table) }

func (t table) get(key string) (Symbol, bool) {
	s, ok := t[key]
	return s, ok
}

func (t table) set(key string, sym Symbol) {
	t[key] = sym
}

// FileScope holds one file's symbol tables: a global table for
// top-level bindings, and a stack of block tables that grows and
// shrinks as the visitor enters and leaves nested blocks.
type FileScope struct {
	Path   string
	global table
	blocks []table
}

// NewFileScope creates an empty FileScope rooted at path, with no block
// open yet — symbols inserted before the first PushBlock land in the
// global table.
func NewFileScope(path string) *FileScope {
	return &FileScope{Path: path, global: newTable()}
}

// pushBlock opens a new, empty block scope.
func (f *FileScope) pushBlock() {
	f.blocks = append(f.blocks, newTable())
}

// pop closes the innermost block scope. Returns the number of blocks
// still open afterward, so ProgramScope can tell whether this file's
// scope has fully drained.
func (f *FileScope) pop() int {
	if n := len(f.blocks); n > 0 {
		f.blocks = f.blocks[:n-1]
	}
	return len(f.blocks)
}

// insertSymbol binds key in the innermost open block, or the file's
// global table if no block is open.
func (f *FileScope) insertSymbol(key string, sym Symbol) {
	if n := len(f.blocks); n > 0 {
		f.blocks[n-1].set(key, sym)
		return
	}
	f.global.set(key, sym)
}

// findSymbol searches the open blocks from innermost to outermost, then
// falls back to the file's global table.
func (f *FileScope) findSymbol(key string) (Symbol, bool) {
	for i := len(f.blocks) - 1; i >= 0; i-- {
		if sym, ok := f.blocks[i].get(key); ok {
			return sym, true
		}
	}
	return f.global.get(key)
}

// ProgramScope is the resolver's top-level handle: a stack of
// FileScopes, one per file currently on the visitor's descent path.
// Only the innermost (current) file is ever queried or mutated.
type ProgramScope struct {
	files []*FileScope
}

// NewProgramScope creates an empty ProgramScope with no file pushed
// yet. PushFile must be called before any lookup or insert.
func NewProgramScope() *ProgramScope {
	return &ProgramScope{}
}

// Current returns the innermost FileScope, or nil if none is open.
func (p *ProgramScope) Current() *FileScope {
	if len(p.files) == 0 {
		return nil
	}
	return p.files[len(p.files)-1]
}

// PushFile opens a new FileScope for path and makes it current. Used
// both for the entry file and whenever the visitor descends into a
// file reached via require().
func (p *ProgramScope) PushFile(path string) {
	p.files = append(p.files, NewFileScope(path))
}

// PushBlock opens a new block scope within the current file.
func (p *ProgramScope) PushBlock() {
	if f := p.Current(); f != nil {
		f.pushBlock()
	}
}

// Pop closes the innermost block of the current file. A Pop always
// follows a prior PushBlock for the same BlockStatement node, so once
// that block closes and none remain open, the file itself has nothing
// left on it and is dropped too, returning control to whichever file
// (or none) pushed it.
func (p *ProgramScope) Pop() {
	f := p.Current()
	if f == nil {
		return
	}
	if remaining := f.pop(); remaining == 0 {
		p.files = p.files[:len(p.files)-1]
	}
}

// FindSymbol looks up key in the current file's scope chain.
func (p *ProgramScope) FindSymbol(key string) (Symbol, bool) {
	if f := p.Current(); f != nil {
		return f.findSymbol(key)
	}
	return Symbol{}, false
}

// InsertSymbol binds key to sym in the current file's innermost scope.
func (p *ProgramScope) InsertSymbol(key string, sym Symbol) {
	if f := p.Current(); f != nil {
		f.insertSymbol(key, sym)
	}
}
