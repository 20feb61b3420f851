// Package state packs square n-in-a-row boards into a single base-3
// integer and answers questions about them (winner, legal moves) directly
// on the packed form.
package state

import (
	"errors"
	"fmt"

	"lukechampine.com/uint128"
)

// MaxBoardSize is the largest board whose base-3 packing fits in 128 bits:
// 3^64 < 2^128 < 3^81.
const MaxBoardSize = 8

const maxCells = MaxBoardSize * MaxBoardSize

var (
	ErrBadID        = errors.New("invalid state id")
	ErrBadBoard     = errors.New("invalid board")
	ErrCellOccupied = errors.New("cell is occupied")
	ErrBadCell      = errors.New("cell out of range")
)

// pow3[i] is 3^i. pow3[maxCells] is one past the largest digit and marks
// the upper bound of valid ids.
var pow3 [maxCells + 1]uint128.Uint128

func init() {
	pow3[0] = uint128.From64(1)
	for i := 1; i <= maxCells; i++ {
		pow3[i] = pow3[i-1].Mul64(3)
	}
}

// ID identifies one board configuration. Cell i (row-major) holds the
// digit (id / 3^i) mod 3. Two boards with the same marks have the same ID.
type ID struct {
	v uint128.Uint128
}

// Empty is the id of the empty board of any size.
var Empty = ID{}

// NewID wraps a 64-bit value. Boards up to 6x6 always fit.
func NewID(v uint64) ID {
	return ID{v: uint128.From64(v)}
}

// ParseID parses the decimal form produced by String. Base prefixes,
// signs, leading zeros and trailing text are rejected so that each id has
// exactly one spelling.
func ParseID(s string) (ID, error) {
	v, err := uint128.FromString(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %v", ErrBadID, s, err)
	}
	if v.String() != s {
		return ID{}, fmt.Errorf("%w: %q is not canonical decimal", ErrBadID, s)
	}
	return ID{v: v}, nil
}

func (id ID) String() string {
	return id.v.String()
}

func (id ID) IsZero() bool {
	return id.v.IsZero()
}

// Cmp compares two ids numerically.
func (id ID) Cmp(o ID) int {
	return id.v.Cmp(o.v)
}

// Less orders ids numerically; handy for sort.Slice.
func (id ID) Less(o ID) bool {
	return id.v.Cmp(o.v) < 0
}

// Cell returns the team holding cell i.
func (id ID) Cell(i int) Team {
	return Team(id.v.Div(pow3[i]).Mod64(3))
}

// fits reports whether every digit beyond numCells is zero.
func (id ID) fits(numCells int) bool {
	return id.v.Cmp(pow3[numCells]) < 0
}

// with writes team t into cell i, which must be empty.
func (id ID) with(i int, t Team) ID {
	return ID{v: id.v.Add(pow3[i].Mul64(uint64(t)))}
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.v.String()), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
