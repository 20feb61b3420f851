// Package graph defines the state graph built by the compiler: its nodes,
// the pluggable store that owns them, and the errors shared by every stage.
package graph

import (
	"errors"

	"github.com/domino14/tictable/state"
)

const (
	WinScore  = int8(100)
	LossScore = int8(-100)
	DrawScore = int8(0)
)

var (
	// ErrNoCompilation means an operation needed a bound store and had none.
	ErrNoCompilation = errors.New("no compilation bound")
	// ErrQueueEmpty is the normal end-of-stage signal.
	ErrQueueEmpty = errors.New("queue empty")
	// ErrNodeNotFound means a lookup by id failed. Inside a compiled graph
	// it indicates a broken edge.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNodeExists is returned by Store.Insert for an id already present.
	ErrNodeExists = errors.New("node already exists")
)

// Node is one board state in the graph.
type Node struct {
	ID       state.ID   `json:"id" yaml:"id"`
	Level    int        `json:"level" yaml:"level"`
	Parents  []state.ID `json:"parents" yaml:"parents"`
	Children []state.ID `json:"children" yaml:"children"`
	Score    int8       `json:"score" yaml:"score"`
}

func NewNode(id state.ID, level int) *Node {
	return &Node{ID: id, Level: level}
}

// Copy returns a node sharing no slices with n.
func (n *Node) Copy() *Node {
	return &Node{
		ID:       n.ID,
		Level:    n.Level,
		Parents:  append([]state.ID(nil), n.Parents...),
		Children: append([]state.ID(nil), n.Children...),
		Score:    n.Score,
	}
}

// Map is the node map owned by a Store.
type Map map[state.ID]*Node

// Copy deep-copies every node.
func (m Map) Copy() Map {
	c := make(Map, len(m))
	for id, n := range m {
		c[id] = n.Copy()
	}
	return c
}

// Counters track compiler progress through a store.
type Counters struct {
	NodesProcessed   int
	WinnersProcessed int
	NodesScored      int
}

// Store holds the nodes of one compilation and knows the rules of the game
// being compiled. The compiler only ever talks to a Store, so any
// two-player, perfect-information game with the same staged shape can be
// compiled by providing another implementation.
type Store interface {
	// Insert adds n. It returns ErrNodeExists, and leaves the existing
	// node untouched, if n.ID is already present.
	Insert(n *Node) error
	// Node returns the stored node for mutation, or ErrNodeNotFound.
	Node(id state.ID) (*Node, error)
	Contains(id state.ID) bool
	Len() int
	// Snapshot returns an independent copy of the node map.
	Snapshot() Map

	// Winner returns the team with a completed line in id, if any.
	Winner(id state.ID) state.Team
	// ChildStates returns the ids reachable when team moves from id, in
	// ascending cell order.
	ChildStates(id state.ID, team state.Team) []state.ID
	BoardSize() int

	IncNodesProcessed()
	IncWinnersProcessed()
	IncNodesScored()
	Counters() Counters

	// Reset drops every node and zeroes the counters.
	Reset()
}
