package compiler

import (
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
	"github.com/domino14/tictable/tictactoe"
)

// Reference counts for 3x3 tic-tac-toe under the base-3 packing, where
// play stops at the first completed line.
const (
	reachableStates3x3 = 5478
	winningStates3x3   = 942
	scoredStates3x3    = reachableStates3x3 - winningStates3x3
	drawnFullBoards3x3 = 16
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newBound(t *testing.T, size int) (*Compiler, *tictactoe.Compilation) {
	t.Helper()
	store, err := tictactoe.New(size)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCompiler()
	c.Bind(store)
	return c, store
}

func mustID(t *testing.T, s string) state.ID {
	t.Helper()
	b, err := state.ParseBoard(s)
	if err != nil {
		t.Fatal(err)
	}
	return state.Encode(b)
}

func TestUnboundCompiler(t *testing.T) {
	is := is.New(t)
	c := NewCompiler()
	is.True(errors.Is(c.Init(), graph.ErrNoCompilation))
	is.True(errors.Is(c.ExpandOne(), graph.ErrNoCompilation))
	is.True(errors.Is(c.AssignTerminalScore(), graph.ErrNoCompilation))
	is.True(errors.Is(c.BackpropagateOne(), graph.ErrNoCompilation))
	_, err := c.Export()
	is.True(errors.Is(err, graph.ErrNoCompilation))
	_, err = c.CompileFully()
	is.True(errors.Is(err, graph.ErrNoCompilation))
	_, err = c.Counters()
	is.True(errors.Is(err, graph.ErrNoCompilation))
}

func TestStepsReportEmptyQueues(t *testing.T) {
	is := is.New(t)
	c, _ := newBound(t, 3)
	is.True(errors.Is(c.ExpandOne(), graph.ErrQueueEmpty))
	is.True(errors.Is(c.AssignTerminalScore(), graph.ErrQueueEmpty))
	is.True(errors.Is(c.BackpropagateOne(), graph.ErrQueueEmpty))
}

func TestInitTwiceFails(t *testing.T) {
	is := is.New(t)
	c, _ := newBound(t, 3)
	is.NoErr(c.Init())
	is.True(errors.Is(c.Init(), graph.ErrNodeExists))
}

func TestFirstExpansion(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	is.NoErr(c.Init())
	is.NoErr(c.ExpandOne())

	root, err := store.Node(state.Empty)
	is.NoErr(err)
	is.Equal(len(root.Children), 9)
	for i, childID := range root.Children {
		is.Equal(childID, state.EnumerateMoves(state.Empty, state.TeamA, 3)[i])
		child, err := store.Node(childID)
		is.NoErr(err)
		is.Equal(child.Level, 1)
		is.Equal(child.Parents, []state.ID{state.Empty})
	}
	frontier, winners, unscored := c.Pending()
	is.Equal(frontier, 9)
	is.Equal(winners, 0)
	is.Equal(unscored, 1)
	is.Equal(store.Counters().NodesProcessed, 1)
}

func TestCompileFully3x3(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	counters, err := c.CompileFully()
	is.NoErr(err)

	is.Equal(store.Len(), reachableStates3x3)
	is.Equal(counters.NodesProcessed, reachableStates3x3)
	is.Equal(counters.WinnersProcessed, winningStates3x3)
	is.Equal(counters.NodesScored, scoredStates3x3)

	root, err := store.Node(state.Empty)
	is.NoErr(err)
	is.Equal(root.Score, graph.DrawScore) // tic-tac-toe is a draw

	frontier, winners, unscored := c.Pending()
	is.Equal(frontier+winners+unscored, 0)
}

func TestCompiledGraphInvariants(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	_, err := c.CompileFully()
	is.NoErr(err)

	drawn := 0
	for id, n := range store.Snapshot() {
		is.Equal(id, n.ID)
		is.True(n.Score == graph.WinScore || n.Score == graph.LossScore || n.Score == graph.DrawScore)
		is.Equal(n.Level, state.Count(id, 3))

		winner := store.Winner(id)
		if winner != state.None {
			is.Equal(len(n.Children), 0) // winners are never expanded
			if winner == state.TeamA {
				is.Equal(n.Score, graph.WinScore)
			} else {
				is.Equal(n.Score, graph.LossScore)
			}
			continue
		}
		for _, childID := range n.Children {
			child, err := store.Node(childID)
			is.NoErr(err)
			is.Equal(child.Level, n.Level+1)
		}
		if len(n.Children) == 0 {
			drawn++
			is.Equal(n.Level, 9) // only a full board has no moves
			is.Equal(n.Score, graph.DrawScore)
		}
	}
	is.Equal(drawn, drawnFullBoards3x3)
}

func TestTranspositionsKeepEveryParent(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	_, err := c.CompileFully()
	is.NoErr(err)

	n, err := store.Node(mustID(t, "XXONNNNNN"))
	is.NoErr(err)
	is.Equal(n.Level, 3)
	is.Equal(n.Parents, []state.ID{mustID(t, "XNONNNNNN"), mustID(t, "NXONNNNNN")})
}

func TestForcedWinIsFound(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	_, err := c.CompileFully()
	is.NoErr(err)

	// X to move with two in the top row.
	n, err := store.Node(mustID(t, "XXNOONNNN"))
	is.NoErr(err)
	is.Equal(n.ID, state.NewID(220))
	is.Equal(n.Level, 4)
	is.Equal(n.Score, graph.WinScore)

	// O to move completes the middle row.
	n, err = store.Node(mustID(t, "XXNOONXNN"))
	is.NoErr(err)
	is.Equal(n.Score, graph.LossScore)
}

func TestChildrenScoredBeforeParents(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	is.NoErr(c.Init())
	is.NoErr(drain(c.ExpandOne))
	is.NoErr(drain(c.AssignTerminalScore))

	scored := make(map[state.ID]bool)
	for id := range store.Snapshot() {
		if store.Winner(id) != state.None {
			scored[id] = true
		}
	}
	lastLevel := 1 << 30
	for c.unscored.Size() > 0 {
		next := c.unscored.ids[len(c.unscored.ids)-1]
		n, err := store.Node(next)
		is.NoErr(err)
		is.True(n.Level <= lastLevel) // popped deepest level first
		lastLevel = n.Level
		for _, childID := range n.Children {
			is.True(scored[childID])
		}
		is.NoErr(c.BackpropagateOne())
		scored[next] = true
	}
	is.Equal(len(scored), reachableStates3x3)
}

// Scoring before terminal scores are in place must not crash, but yields a
// wrong table: every non-winning state keeps 0. Only the root survives,
// because zeroing values can never push a drawn game to a forced result.
func TestOutOfOrderStagesGiveWrongScores(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	is.NoErr(c.Init())
	is.NoErr(drain(c.ExpandOne))
	is.NoErr(drain(c.BackpropagateOne))
	is.NoErr(drain(c.AssignTerminalScore))

	good, goodStore := newBound(t, 3)
	_, err := good.CompileFully()
	is.NoErr(err)

	wrong := 0
	for id, n := range store.Snapshot() {
		if store.Winner(id) == state.None {
			is.Equal(n.Score, graph.DrawScore)
		}
		ref, err := goodStore.Node(id)
		is.NoErr(err)
		if ref.Score != n.Score {
			wrong++
		}
	}
	is.True(wrong > 0)

	n, err := store.Node(state.NewID(220))
	is.NoErr(err)
	is.Equal(n.Score, graph.DrawScore) // should be a forced win

	root, err := store.Node(state.Empty)
	is.NoErr(err)
	is.Equal(root.Score, graph.DrawScore)
}

func TestSmallBoards(t *testing.T) {
	is := is.New(t)

	c, store := newBound(t, 1)
	counters, err := c.CompileFully()
	is.NoErr(err)
	is.Equal(store.Len(), 2)
	is.Equal(counters.WinnersProcessed, 1)
	root, err := store.Node(state.Empty)
	is.NoErr(err)
	is.Equal(root.Score, graph.WinScore)

	// On 2x2 every pair of cells is a line, so X always wins on ply 3.
	c, store = newBound(t, 2)
	counters, err = c.CompileFully()
	is.NoErr(err)
	is.Equal(store.Len(), 29)
	is.Equal(counters.WinnersProcessed, 12)
	for _, n := range store.Snapshot() {
		is.Equal(n.Score, graph.WinScore)
	}
}

func TestExportUsesDecimalKeys(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	_, err := c.CompileFully()
	is.NoErr(err)

	out, err := c.Export()
	is.NoErr(err)
	is.Equal(len(out), reachableStates3x3)
	is.Equal(out["0"].Level, 0)
	is.Equal(out["220"].Score, graph.WinScore)
	is.Equal(out["8"], (*graph.Node)(nil)) // two O marks and no X is unreachable

	out["0"].Score = graph.LossScore
	root, err := store.Node(state.Empty)
	is.NoErr(err)
	is.Equal(root.Score, graph.DrawScore)
}

func TestResetAllowsRecompile(t *testing.T) {
	is := is.New(t)
	c, store := newBound(t, 3)
	is.NoErr(c.Init())
	for i := 0; i < 10; i++ {
		is.NoErr(c.ExpandOne())
	}
	is.NoErr(c.Reset())
	is.Equal(store.Len(), 0)
	is.Equal(store.Counters(), graph.Counters{})

	counters, err := c.CompileFully()
	is.NoErr(err)
	is.Equal(counters.NodesProcessed, reachableStates3x3)
}
