package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/reachgrep/jsast"
	"github.com/flanksource/reachgrep/scope"
)

func TestTopLevelSymbolVisibleEverywhere(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")

	fn := jsast.NewIdentifier(0, 0, "greet")
	p.InsertSymbol("greet", scope.Symbol{Node: fn, File: "main.js"})

	p.PushBlock()

	sym, ok := p.FindSymbol("greet")
	require.True(t, ok)
	assert.Equal(t, "main.js", sym.File)
}

func TestBlockScopeShadowsGlobal(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")

	outer := jsast.NewIdentifier(0, 0, "x")
	p.InsertSymbol("x", scope.Symbol{Node: outer, File: "main.js"})

	p.PushBlock() // enclosing block, kept open so the file scope survives the Pop below
	p.PushBlock()
	inner := jsast.NewIdentifier(1, 1, "x")
	p.InsertSymbol("x", scope.Symbol{Node: inner, File: "main.js"})

	sym, ok := p.FindSymbol("x")
	require.True(t, ok)
	assert.Same(t, inner, sym.Node)

	p.Pop() // closes the shadowing block; lookup falls back to the global table
	sym, ok = p.FindSymbol("x")
	require.True(t, ok)
	assert.Same(t, outer, sym.Node)
}

func TestPopDrainsFileScope(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")

	p.PushBlock()
	p.Pop() // closes the only open block -> file scope has nothing left open
	assert.Nil(t, p.Current(), "the drained file scope must be dropped")

	sym, ok := p.FindSymbol("anything")
	assert.False(t, ok)
	assert.Nil(t, sym.Node)
}

func TestNestedBlocksShadowInOrder(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")

	p.PushBlock()
	outer := jsast.NewIdentifier(0, 0, "v")
	p.InsertSymbol("v", scope.Symbol{Node: outer, File: "main.js"})

	p.PushBlock()
	inner := jsast.NewIdentifier(1, 1, "v")
	p.InsertSymbol("v", scope.Symbol{Node: inner, File: "main.js"})

	sym, ok := p.FindSymbol("v")
	require.True(t, ok)
	assert.Same(t, inner, sym.Node)

	p.Pop() // drop the inner block
	sym, ok = p.FindSymbol("v")
	require.True(t, ok)
	assert.Same(t, outer, sym.Node)
}

func TestCrossFileSymbolCarriesFilePath(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")

	greetFn := jsast.NewIdentifier(4, 8, "greet")
	p.InsertSymbol("greet", scope.Symbol{Node: greetFn, File: "./greetings.js"})

	sym, ok := p.FindSymbol("greet")
	require.True(t, ok)
	assert.Equal(t, "./greetings.js", sym.File)
}

func TestPushFileThenPopReturnsToOuterFile(t *testing.T) {
	p := scope.NewProgramScope()
	p.PushFile("main.js")
	p.InsertSymbol("onlyInMain", scope.Symbol{Node: jsast.NewIdentifier(0, 0, "onlyInMain"), File: "main.js"})

	p.PushFile("./lib.js")
	p.PushBlock()
	p.InsertSymbol("onlyInLib", scope.Symbol{Node: jsast.NewIdentifier(0, 0, "onlyInLib"), File: "./lib.js"})
	_, ok := p.FindSymbol("onlyInMain")
	assert.False(t, ok, "lib.js scope must not see main.js's bindings")

	p.Pop() // drains lib.js's only block, dropping lib.js off the stack
	assert.Equal(t, "main.js", p.Current().Path)
	_, ok = p.FindSymbol("onlyInMain")
	assert.True(t, ok)
}
