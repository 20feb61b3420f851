package cache

import (
	"errors"
	"fmt"
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// bytesPerNode is a rough per-node figure: the node, its map entry and
// its share of the edge slices.
const bytesPerNode = 256

var ErrTooLarge = errors.New("state space may not fit in memory")

// EstimateBytes bounds the memory needed to compile a board. Every
// assignment of the cells is counted, reachable or not, so the figure is
// pessimistic.
func EstimateBytes(boardSize int) float64 {
	return math.Pow(3, float64(boardSize*boardSize)) * bytesPerNode
}

// CheckMemory refuses a board whose estimate exceeds half of the machine's
// memory, unless force is set. When total memory cannot be determined the
// check passes.
func CheckMemory(boardSize int, force bool) error {
	need := EstimateBytes(boardSize)
	total := memory.TotalMemory()
	if total == 0 || need <= float64(total)/2 {
		return nil
	}
	if force {
		log.Warn().
			Int("board-size", boardSize).
			Float64("estimate-gb", need/(1<<30)).
			Uint64("total-gb", total>>30).
			Msg("forcing-compile-beyond-memory")
		return nil
	}
	return fmt.Errorf("%w: %dx%d board needs up to %.1f GB, machine has %d GB",
		ErrTooLarge, boardSize, boardSize, need/(1<<30), total>>30)
}
