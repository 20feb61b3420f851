package state

import (
	"fmt"
	"math"
	"strings"
)

// Team is the content of a cell and also names the two sides.
type Team uint8

const (
	None Team = iota
	TeamA
	TeamB
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "X"
	case TeamB:
		return "O"
	}
	return "N"
}

// Opponent returns the other side. None has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	}
	return None
}

// TeamForLevel returns the side to move once level moves have been made.
// Team A moves on even plies.
func TeamForLevel(level int) Team {
	if level%2 == 0 {
		return TeamA
	}
	return TeamB
}

// Board is the unpacked form of an ID: size*size cells in row-major order.
type Board struct {
	Size  int
	Cells []Team
}

// NewBoard returns an empty board.
func NewBoard(size int) (Board, error) {
	if size < 1 || size > MaxBoardSize {
		return Board{}, fmt.Errorf("%w: size %d not in [1, %d]", ErrBadBoard, size, MaxBoardSize)
	}
	return Board{Size: size, Cells: make([]Team, size*size)}, nil
}

// ParseBoard reads the row-major text form: X for team A, O for team B and
// N or . for an empty cell. The length must be a perfect square.
func ParseBoard(s string) (Board, error) {
	s = strings.TrimSpace(s)
	size := int(math.Round(math.Sqrt(float64(len(s)))))
	if size*size != len(s) {
		return Board{}, fmt.Errorf("%w: %q is not square", ErrBadBoard, s)
	}
	b, err := NewBoard(size)
	if err != nil {
		return Board{}, err
	}
	for i, r := range s {
		switch r {
		case 'X', 'x':
			b.Cells[i] = TeamA
		case 'O', 'o':
			b.Cells[i] = TeamB
		case 'N', 'n', '.':
			b.Cells[i] = None
		default:
			return Board{}, fmt.Errorf("%w: unexpected %q at %d", ErrBadBoard, r, i)
		}
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for _, c := range b.Cells {
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Pretty renders the board one row per line, for the shell.
func (b Board) Pretty() string {
	var sb strings.Builder
	for r := 0; r < b.Size; r++ {
		for c := 0; c < b.Size; c++ {
			cell := b.Cells[r*b.Size+c]
			if cell == None {
				fmt.Fprintf(&sb, " %2d", r*b.Size+c)
			} else {
				fmt.Fprintf(&sb, "  %s", cell)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Equal compares size and every cell.
func (b Board) Equal(o Board) bool {
	if b.Size != o.Size || len(b.Cells) != len(o.Cells) {
		return false
	}
	for i := range b.Cells {
		if b.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// Encode packs the board.
func Encode(b Board) ID {
	id := Empty
	for i, c := range b.Cells {
		if c != None {
			id = id.with(i, c)
		}
	}
	return id
}

// Decode unpacks id into a board of the given size.
func Decode(id ID, size int) (Board, error) {
	b, err := NewBoard(size)
	if err != nil {
		return Board{}, err
	}
	if !id.fits(size * size) {
		return Board{}, fmt.Errorf("%w: %s does not fit a %dx%d board", ErrBadID, id, size, size)
	}
	v := id.v
	for i := range b.Cells {
		var digit uint64
		v, digit = v.QuoRem64(3)
		b.Cells[i] = Team(digit)
	}
	return b, nil
}

// Play writes team t into cell i of id.
func Play(id ID, i int, t Team, size int) (ID, error) {
	if i < 0 || i >= size*size {
		return ID{}, fmt.Errorf("%w: %d", ErrBadCell, i)
	}
	if id.Cell(i) != None {
		return ID{}, fmt.Errorf("%w: %d", ErrCellOccupied, i)
	}
	return id.with(i, t), nil
}

// Count returns how many cells are taken. For a reachable state this is
// its level.
func Count(id ID, size int) int {
	n := 0
	for i := 0; i < size*size; i++ {
		if id.Cell(i) != None {
			n++
		}
	}
	return n
}
