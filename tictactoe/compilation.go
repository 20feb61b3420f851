// Package tictactoe is the graph.Store for square n-in-a-row games where a
// line must span the whole board (3x3 tic-tac-toe by default).
package tictactoe

import (
	"fmt"
	"sync"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

const DefaultBoardSize = 3

// Compilation stores the nodes for one board size. Insert is a single
// locked check-and-insert so concurrent discovery of the same child can
// never create it twice.
type Compilation struct {
	sync.RWMutex
	nodes     graph.Map
	counters  graph.Counters
	boardSize int
}

// New returns an empty compilation for a size x size board.
func New(boardSize int) (*Compilation, error) {
	if boardSize < 1 || boardSize > state.MaxBoardSize {
		return nil, fmt.Errorf("board size %d not in [1, %d]", boardSize, state.MaxBoardSize)
	}
	return &Compilation{
		nodes:     make(graph.Map),
		boardSize: boardSize,
	}, nil
}

func (c *Compilation) Insert(n *graph.Node) error {
	c.Lock()
	defer c.Unlock()
	if _, ok := c.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", graph.ErrNodeExists, n.ID)
	}
	c.nodes[n.ID] = n
	return nil
}

func (c *Compilation) Node(id state.ID) (*graph.Node, error) {
	c.RLock()
	defer c.RUnlock()
	n, ok := c.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	return n, nil
}

func (c *Compilation) Contains(id state.ID) bool {
	c.RLock()
	defer c.RUnlock()
	_, ok := c.nodes[id]
	return ok
}

func (c *Compilation) Len() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.nodes)
}

func (c *Compilation) Snapshot() graph.Map {
	c.RLock()
	defer c.RUnlock()
	return c.nodes.Copy()
}

func (c *Compilation) Winner(id state.ID) state.Team {
	return state.DetectWinner(id, c.boardSize)
}

func (c *Compilation) ChildStates(id state.ID, team state.Team) []state.ID {
	return state.EnumerateMoves(id, team, c.boardSize)
}

func (c *Compilation) BoardSize() int {
	return c.boardSize
}

func (c *Compilation) IncNodesProcessed() {
	c.Lock()
	defer c.Unlock()
	c.counters.NodesProcessed++
}

func (c *Compilation) IncWinnersProcessed() {
	c.Lock()
	defer c.Unlock()
	c.counters.WinnersProcessed++
}

func (c *Compilation) IncNodesScored() {
	c.Lock()
	defer c.Unlock()
	c.counters.NodesScored++
}

func (c *Compilation) Counters() graph.Counters {
	c.RLock()
	defer c.RUnlock()
	return c.counters
}

// Reset drops all nodes and counters. The board size is kept.
func (c *Compilation) Reset() {
	c.Lock()
	defer c.Unlock()
	c.nodes = make(graph.Map)
	c.counters = graph.Counters{}
}
