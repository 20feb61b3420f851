package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictable/cache"
	"github.com/domino14/tictable/config"
	"github.com/domino14/tictable/state"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("please start a game first with the `new` command")
	errGameOver          = errors.New("the game is over; `undo` or start a `new` one")
)

// extractFields splits a line into a command, its positional arguments
// and its -option value pairs. Quoting follows the shell's rules.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := &shellcmd{cmd: fields[0], options: map[string]string{}}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			cmd.options[strings.TrimPrefix(fields[i], "-")] = fields[i+1]
			i++
			continue
		}
		cmd.args = append(cmd.args, fields[i])
	}
	return cmd, nil
}

func (sc *ShellController) current() state.ID {
	return sc.history[len(sc.history)-1]
}

func (sc *ShellController) toMove() state.Team {
	return state.TeamForLevel(len(sc.history) - 1)
}

// outcome reports the winner, or None with over set for a full board.
func (sc *ShellController) outcome() (winner state.Team, over bool) {
	id := sc.current()
	if w := state.DetectWinner(id, sc.boardSize); w != state.None {
		return w, true
	}
	return state.None, state.Count(id, sc.boardSize) == sc.boardSize*sc.boardSize
}

func (sc *ShellController) status() string {
	switch winner, over := sc.outcome(); {
	case winner != state.None:
		return winner.String() + " wins"
	case over:
		return "draw"
	default:
		return sc.toMove().String() + " to move"
	}
}

func (sc *ShellController) boardText() (string, error) {
	b, err := state.Decode(sc.current(), sc.boardSize)
	if err != nil {
		return "", err
	}
	return b.Pretty() + sc.status(), nil
}

// movedCell returns the cell that differs between a state and its child.
func movedCell(from, to state.ID, size int) int {
	for i := 0; i < size*size; i++ {
		if from.Cell(i) != to.Cell(i) {
			return i
		}
	}
	return -1
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	size := sc.cfg.GetInt(config.ConfigBoardSize)
	if len(cmd.args) > 0 {
		var err error
		size, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	table, err := cache.Table(sc.cfg, size)
	if err != nil {
		return nil, err
	}
	sc.boardSize = size
	sc.table = table
	sc.history = []state.ID{state.Empty}
	log.Debug().Int("board-size", size).Int("nodes", table.Len()).Msg("new-game")
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	text, err := sc.boardText()
	if err != nil {
		return nil, err
	}
	return msg(text), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <cell>")
	}
	if _, over := sc.outcome(); over {
		return nil, errGameOver
	}
	cell, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	next, err := state.Play(sc.current(), cell, sc.toMove(), sc.boardSize)
	if err != nil {
		return nil, err
	}
	if _, err := sc.table.Node(next); err != nil {
		return nil, err
	}
	sc.history = append(sc.history, next)
	return sc.show(cmd)
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	if _, over := sc.outcome(); over {
		return nil, errGameOver
	}
	next, err := sc.table.BestMove(sc.current(), sc.toMove())
	if err != nil {
		return nil, err
	}
	score, err := sc.table.Score(next)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("best for %s: cell %d (score %d)",
		sc.toMove(), movedCell(sc.current(), next, sc.boardSize), score)), nil
}

func moveTableHeader() string {
	return " Cell Score"
}

func moveTableRow(cell int, score int8) string {
	return fmt.Sprintf("%5d %5d", cell, score)
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	n, err := sc.table.Node(sc.current())
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "state %s scores %d", n.ID, n.Score)
	if len(n.Children) > 0 {
		sb.WriteString("\n" + moveTableHeader())
	}
	for _, childID := range n.Children {
		s, err := sc.table.Score(childID)
		if err != nil {
			return nil, err
		}
		sb.WriteString("\n" + moveTableRow(movedCell(n.ID, childID, sc.boardSize), s))
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	if len(sc.history) == 1 {
		return nil, errors.New("nothing to undo")
	}
	sc.history = sc.history[:len(sc.history)-1]
	return sc.show(cmd)
}

// auto lets the table play for whoever is on turn, n times or until the
// game ends.
func (sc *ShellController) auto(cmd *shellcmd) (*Response, error) {
	if sc.table == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		if cmd.args[0] == "all" {
			n = sc.boardSize * sc.boardSize
		} else {
			var err error
			if n, err = strconv.Atoi(cmd.args[0]); err != nil {
				return nil, err
			}
		}
	}
	for i := 0; i < n; i++ {
		if _, over := sc.outcome(); over {
			break
		}
		next, err := sc.table.Move(sc.current(), sc.toMove())
		if err != nil {
			return nil, err
		}
		sc.history = append(sc.history, next)
	}
	return sc.show(cmd)
}
