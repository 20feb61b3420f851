// Package compiler enumerates every reachable state of a game and computes
// its minimax value.
//
// Compilation runs in three stages, each advanced one entry at a time:
//
//  1. ExpandOne pops the breadth-first frontier, discovers children and
//     wires parent/child edges.
//  2. AssignTerminalScore scores states that contain a completed line.
//  3. BackpropagateOne pops the scoring stack and sets a state's score to
//     the max (even level) or min (odd level) of its children.
//
// Each stage must run until it returns graph.ErrQueueEmpty before the next
// one starts. The compiler does not check this: running stage 3 early
// scores parents from children that still hold 0 and silently produces a
// wrong table. CompileFully runs the stages in the right order.
package compiler

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

const DefaultLogEvery = 1000

// Compiler drives the three stages over a bound graph.Store. It is not
// safe for concurrent use.
type Compiler struct {
	frontier *workQueue
	winners  *workQueue
	unscored *workQueue

	store       graph.Store
	initialized bool
	logEvery    int
}

// NewCompiler returns a compiler with empty queues and no store bound.
func NewCompiler() *Compiler {
	return &Compiler{
		frontier: newWorkQueue(),
		winners:  newWorkQueue(),
		unscored: newWorkQueue(),
		logEvery: DefaultLogEvery,
	}
}

// Bind attaches the store that will own the nodes. Any queued work from a
// previous store is dropped.
func (c *Compiler) Bind(store graph.Store) {
	c.store = store
	c.clearQueues()
}

// SetLogEvery sets how many expansions pass between progress logs. 0
// turns progress logging off.
func (c *Compiler) SetLogEvery(n int) {
	c.logEvery = n
}

// Init creates the empty-board root at level 0 and queues it for expansion.
func (c *Compiler) Init() error {
	if c.store == nil {
		return graph.ErrNoCompilation
	}
	if err := c.store.Insert(graph.NewNode(state.Empty, 0)); err != nil {
		return err
	}
	c.frontier.PushBack(state.Empty)
	c.initialized = true
	return nil
}

// ExpandOne processes a single frontier entry.
func (c *Compiler) ExpandOne() error {
	if c.store == nil {
		return graph.ErrNoCompilation
	}
	id, ok := c.frontier.PopFront()
	if !ok {
		return graph.ErrQueueEmpty
	}
	node, err := c.store.Node(id)
	if err != nil {
		return err
	}
	c.store.IncNodesProcessed()
	c.logProgress()

	if c.store.Winner(id) != state.None {
		// The game is over here; stage 2 scores it.
		return nil
	}
	c.unscored.PushBack(id)

	team := state.TeamForLevel(node.Level)
	for _, childID := range c.store.ChildStates(id, team) {
		err := c.store.Insert(graph.NewNode(childID, node.Level+1))
		switch {
		case err == nil:
			c.frontier.PushBack(childID)
			if c.store.Winner(childID) != state.None {
				c.winners.PushBack(childID)
			}
		case errors.Is(err, graph.ErrNodeExists):
			// A transposition: the child was reached from another parent.
		default:
			return err
		}

		child, err := c.store.Node(childID)
		if err != nil {
			return err
		}
		child.Parents = append(child.Parents, id)
		node.Children = append(node.Children, childID)
	}
	return nil
}

// AssignTerminalScore scores a single winning state.
func (c *Compiler) AssignTerminalScore() error {
	if c.store == nil {
		return graph.ErrNoCompilation
	}
	id, ok := c.winners.PopFront()
	if !ok {
		return graph.ErrQueueEmpty
	}
	node, err := c.store.Node(id)
	if err != nil {
		return err
	}
	if c.store.Winner(id) == state.TeamA {
		node.Score = graph.WinScore
	} else {
		node.Score = graph.LossScore
	}
	c.store.IncWinnersProcessed()
	return nil
}

// BackpropagateOne scores the most recently expanded unscored state from
// its children.
func (c *Compiler) BackpropagateOne() error {
	if c.store == nil {
		return graph.ErrNoCompilation
	}
	id, ok := c.unscored.PopBack()
	if !ok {
		return graph.ErrQueueEmpty
	}
	node, err := c.store.Node(id)
	if err != nil {
		return err
	}

	scores := make([]int8, 0, len(node.Children))
	for _, childID := range node.Children {
		child, err := c.store.Node(childID)
		if err != nil {
			return err
		}
		scores = append(scores, child.Score)
	}
	if len(scores) == 0 {
		// Full board and nobody won.
		scores = append(scores, graph.DrawScore)
	}

	if node.Level%2 == 0 {
		node.Score = lo.Max(scores)
	} else {
		node.Score = lo.Min(scores)
	}
	c.store.IncNodesScored()
	return nil
}

// CompileFully initializes the compilation if needed and runs the three
// stages to exhaustion, in order.
func (c *Compiler) CompileFully() (graph.Counters, error) {
	if c.store == nil {
		return graph.Counters{}, graph.ErrNoCompilation
	}
	if !c.initialized {
		if err := c.Init(); err != nil {
			return graph.Counters{}, err
		}
	}

	stages := []struct {
		name string
		step func() error
	}{
		{"expand", c.ExpandOne},
		{"terminal-score", c.AssignTerminalScore},
		{"backpropagate", c.BackpropagateOne},
	}
	for _, st := range stages {
		start := time.Now()
		if err := drain(st.step); err != nil {
			return c.store.Counters(), fmt.Errorf("stage %s: %w", st.name, err)
		}
		cs := c.store.Counters()
		log.Info().
			Str("stage", st.name).
			Int("nodes", c.store.Len()).
			Int("nodes-processed", cs.NodesProcessed).
			Int("winners-processed", cs.WinnersProcessed).
			Int("nodes-scored", cs.NodesScored).
			Dur("elapsed", time.Since(start)).
			Msg("stage-done")
	}
	return c.store.Counters(), nil
}

// drain calls step until its queue runs dry.
func drain(step func() error) error {
	for {
		err := step()
		if errors.Is(err, graph.ErrQueueEmpty) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Export returns a copy of the graph keyed by the decimal form of each id.
// Ids can exceed 64 bits, which many consumers cannot represent as numbers.
func (c *Compiler) Export() (map[string]*graph.Node, error) {
	if c.store == nil {
		return nil, graph.ErrNoCompilation
	}
	snap := c.store.Snapshot()
	out := make(map[string]*graph.Node, len(snap))
	for id, n := range snap {
		out[id.String()] = n
	}
	return out, nil
}

func (c *Compiler) Counters() (graph.Counters, error) {
	if c.store == nil {
		return graph.Counters{}, graph.ErrNoCompilation
	}
	return c.store.Counters(), nil
}

// Pending reports how many entries wait in each stage.
func (c *Compiler) Pending() (frontier, winners, unscored int) {
	return c.frontier.Size(), c.winners.Size(), c.unscored.Size()
}

// Reset clears all queued work and the bound store's nodes.
func (c *Compiler) Reset() error {
	if c.store == nil {
		return graph.ErrNoCompilation
	}
	c.store.Reset()
	c.clearQueues()
	return nil
}

func (c *Compiler) clearQueues() {
	c.frontier.Clear()
	c.winners.Clear()
	c.unscored.Clear()
	c.initialized = false
}

func (c *Compiler) logProgress() {
	if c.logEvery <= 0 {
		return
	}
	processed := c.store.Counters().NodesProcessed
	if processed%c.logEvery != 0 {
		return
	}
	log.Debug().
		Int("nodes-processed", processed).
		Int("frontier", c.frontier.Size()).
		Int("nodes", c.store.Len()).
		Msg("expansion-progress")
}
