package ai

import (
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

// Player describes an automatic player. Move returns the state reached by
// team moving from id.
type Player interface {
	Move(id state.ID, team state.Team) (state.ID, error)
	Name() string
}

func (p *TablePlayer) Move(id state.ID, team state.Team) (state.ID, error) {
	return p.BestMove(id, team)
}

func (p *TablePlayer) Name() string {
	return "table"
}

// RandomPlayer picks uniformly among the empty cells. It does not need a
// table.
type RandomPlayer struct {
	boardSize int
}

func NewRandomPlayer(boardSize int) *RandomPlayer {
	return &RandomPlayer{boardSize: boardSize}
}

func (p *RandomPlayer) Move(id state.ID, team state.Team) (state.ID, error) {
	moves := state.EnumerateMoves(id, team, p.boardSize)
	if len(moves) == 0 {
		return state.ID{}, fmt.Errorf("%w: %s is a full board", graph.ErrNodeNotFound, id)
	}
	return moves[frand.Intn(len(moves))], nil
}

func (p *RandomPlayer) Name() string {
	return "random"
}
