// Package ai plays from a compiled solution table. It only reads the
// exported node map and knows nothing about how it was built.
package ai

import (
	"errors"
	"fmt"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

var ErrKeyMismatch = errors.New("export key does not match node id")

// TablePlayer picks moves by looking up the minimax score of every child.
type TablePlayer struct {
	nodes graph.Map
}

// Load re-keys an exported map by parsed id. The player takes ownership of
// the nodes.
func Load(exported map[string]*graph.Node) (*TablePlayer, error) {
	nodes := make(graph.Map, len(exported))
	for key, n := range exported {
		id, err := state.ParseID(key)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, key)
		}
		if id != n.ID {
			return nil, fmt.Errorf("%w: key %s, node %s", ErrKeyMismatch, key, n.ID)
		}
		nodes[id] = n
	}
	return &TablePlayer{nodes: nodes}, nil
}

func (p *TablePlayer) Len() int {
	return len(p.nodes)
}

func (p *TablePlayer) Node(id state.ID) (*graph.Node, error) {
	n, ok := p.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
	}
	return n, nil
}

func (p *TablePlayer) Score(id state.ID) (int8, error) {
	n, err := p.Node(id)
	if err != nil {
		return 0, err
	}
	return n.Score, nil
}

// BestMove returns the child of id with the highest score for team A or
// the lowest for team B. Ties go to the first child in cell order. A
// terminal state has no move and returns ErrNodeNotFound; callers should
// check for a winner or a full board first.
func (p *TablePlayer) BestMove(id state.ID, team state.Team) (state.ID, error) {
	n, err := p.Node(id)
	if err != nil {
		return state.ID{}, err
	}
	if len(n.Children) == 0 {
		return state.ID{}, fmt.Errorf("%w: %s has no children", graph.ErrNodeNotFound, id)
	}

	best, err := p.Node(n.Children[0])
	if err != nil {
		return state.ID{}, err
	}
	for _, childID := range n.Children[1:] {
		child, err := p.Node(childID)
		if err != nil {
			return state.ID{}, err
		}
		if team == state.TeamA && child.Score > best.Score ||
			team == state.TeamB && child.Score < best.Score {
			best = child
		}
	}
	return best.ID, nil
}
