// Package verify audits a compiled solution table. It re-checks, for every
// node, the graph and scoring invariants the compiler is supposed to
// guarantee.
package verify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tictable/graph"
	"github.com/domino14/tictable/state"
)

// MaxReported caps how many violations are joined into the returned error.
const MaxReported = 20

var ErrInvariant = errors.New("invariant violated")

const chunkSize = 512

// Table checks every node of an exported table using up to workers
// goroutines. It returns nil when the table is sound.
func Table(ctx context.Context, exported map[string]*graph.Node, boardSize, workers int) error {
	nodes := make(graph.Map, len(exported))
	var problems []error
	for key, n := range exported {
		id, err := state.ParseID(key)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		if n == nil || n.ID != id {
			problems = append(problems, fmt.Errorf("%w: key %s does not match its node", ErrInvariant, key))
			continue
		}
		nodes[id] = n
	}
	if root, ok := nodes[state.Empty]; !ok || root.Level != 0 {
		problems = append(problems, fmt.Errorf("%w: missing level-0 root", ErrInvariant))
	}

	ids := lo.Keys(nodes)
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range lo.Chunk(ids, chunkSize) {
		chunk := chunk
		g.Go(func() error {
			var found []error
			for _, id := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				found = append(found, checkNode(nodes, nodes[id], boardSize)...)
			}
			if len(found) > 0 {
				mu.Lock()
				problems = append(problems, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug().Int("nodes", len(nodes)).Int("violations", len(problems)).Msg("table-audited")
	if len(problems) > MaxReported {
		extra := len(problems) - MaxReported
		problems = append(problems[:MaxReported], fmt.Errorf("... and %d more", extra))
	}
	return errors.Join(problems...)
}

func checkNode(nodes graph.Map, n *graph.Node, boardSize int) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: node %s: %s", ErrInvariant, n.ID, fmt.Sprintf(format, args...)))
	}

	if n.Score != graph.WinScore && n.Score != graph.LossScore && n.Score != graph.DrawScore {
		fail("score %d out of range", n.Score)
	}
	for _, pid := range n.Parents {
		p, ok := nodes[pid]
		if !ok {
			fail("missing parent %s", pid)
			continue
		}
		if !lo.Contains(p.Children, n.ID) {
			fail("parent %s does not list it as a child", pid)
		}
	}

	childScores := make([]int8, 0, len(n.Children))
	for _, cid := range n.Children {
		c, ok := nodes[cid]
		if !ok {
			fail("missing child %s", cid)
			continue
		}
		if c.Level != n.Level+1 {
			fail("child %s at level %d, want %d", cid, c.Level, n.Level+1)
		}
		if !lo.Contains(c.Parents, n.ID) {
			fail("child %s does not list it as a parent", cid)
		}
		childScores = append(childScores, c.Score)
	}

	switch winner := state.DetectWinner(n.ID, boardSize); {
	case winner != state.None:
		if len(n.Children) > 0 {
			fail("won state was expanded")
		}
		want := graph.WinScore
		if winner == state.TeamB {
			want = graph.LossScore
		}
		if n.Score != want {
			fail("won by %s but scored %d", winner, n.Score)
		}
	case len(n.Children) == 0:
		if state.Count(n.ID, boardSize) != boardSize*boardSize {
			fail("unfinished state has no children")
		}
		if n.Score != graph.DrawScore {
			fail("drawn full board scored %d", n.Score)
		}
	case len(childScores) == len(n.Children):
		want := lo.Max(childScores)
		if n.Level%2 == 1 {
			want = lo.Min(childScores)
		}
		if n.Score != want {
			fail("scored %d, children give %d", n.Score, want)
		}
	}
	return errs
}
