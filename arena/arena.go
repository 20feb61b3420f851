// Package arena plays complete games between two automatic players and
// summarizes the outcomes.
package arena

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/domino14/tictable/ai"
	"github.com/domino14/tictable/state"
	"github.com/domino14/tictable/stats"
)

type Options struct {
	Games     int
	Workers   int
	BoardSize int
}

// Result is seen from the first player's side. The first player moves
// first in even-numbered games and second in odd-numbered ones.
type Result struct {
	Games       int
	Wins        int
	Losses      int
	Draws       int
	MeanPlies   float64
	StdDevPlies float64
	// Points scores a win 1, a draw 0.5 and a loss 0. PointsMargin is the
	// half-width of its 99% confidence interval.
	Points       float64
	PointsMargin float64
}

func (r Result) String() string {
	return fmt.Sprintf("games=%d wins=%d losses=%d draws=%d points=%.3f±%.3f plies=%.2f±%.2f",
		r.Games, r.Wins, r.Losses, r.Draws, r.Points, r.PointsMargin, r.MeanPlies, r.StdDevPlies)
}

type outcome struct {
	result int // +1 first player won, -1 second player won, 0 draw
	plies  int
}

// Run plays opts.Games games between first and second.
func Run(ctx context.Context, first, second ai.Player, opts Options) (Result, error) {
	if opts.Games < 1 {
		return Result{}, fmt.Errorf("need at least one game, got %d", opts.Games)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	outcomes := make([]outcome, opts.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range outcomes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			firstTeam := state.TeamA
			if i%2 == 1 {
				firstTeam = state.TeamB
			}
			o, err := playGame(first, second, firstTeam, opts.BoardSize)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	plies := lo.Map(outcomes, func(o outcome, _ int) float64 { return float64(o.plies) })
	mean, std := stat.MeanStdDev(plies, nil)
	if len(plies) == 1 {
		std = 0
	}
	var points stats.Statistic
	for _, o := range outcomes {
		points.Push(float64(o.result+1) / 2)
	}
	r := Result{
		Games:       opts.Games,
		Wins:        lo.CountBy(outcomes, func(o outcome) bool { return o.result > 0 }),
		Losses:      lo.CountBy(outcomes, func(o outcome) bool { return o.result < 0 }),
		Draws:       lo.CountBy(outcomes, func(o outcome) bool { return o.result == 0 }),
		MeanPlies:   mean,
		StdDevPlies: std,

		Points:       points.Mean(),
		PointsMargin: points.Margin(99),
	}
	log.Info().
		Str("first", first.Name()).
		Str("second", second.Name()).
		Int("games", r.Games).
		Int("wins", r.Wins).
		Int("losses", r.Losses).
		Int("draws", r.Draws).
		Float64("points", r.Points).
		Float64("mean-plies", r.MeanPlies).
		Msg("arena-done")
	return r, nil
}

func playGame(first, second ai.Player, firstTeam state.Team, boardSize int) (outcome, error) {
	id := state.Empty
	numCells := boardSize * boardSize
	for ply := 0; ; ply++ {
		if winner := state.DetectWinner(id, boardSize); winner != state.None {
			if winner == firstTeam {
				return outcome{result: 1, plies: ply}, nil
			}
			return outcome{result: -1, plies: ply}, nil
		}
		if ply == numCells {
			return outcome{plies: ply}, nil
		}
		team := state.TeamForLevel(ply)
		mover := first
		if team != firstTeam {
			mover = second
		}
		next, err := mover.Move(id, team)
		if err != nil {
			return outcome{}, err
		}
		id = next
	}
}
