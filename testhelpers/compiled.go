package testhelpers

import (
	"github.com/domino14/tictable/compiler"
	"github.com/domino14/tictable/config"
	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/tictactoe"
)

var DefaultConfig = config.DefaultConfig()

// Compiled compiles a board from scratch and returns its export. Every
// call returns a fresh map, so tests may mutate it.
func Compiled(boardSize int) map[string]*graph.Node {
	store, err := tictactoe.New(boardSize)
	if err != nil {
		panic(err)
	}
	c := compiler.NewCompiler()
	c.Bind(store)
	c.SetLogEvery(0)
	if _, err := c.CompileFully(); err != nil {
		panic(err)
	}
	out, err := c.Export()
	if err != nil {
		panic(err)
	}
	return out
}
