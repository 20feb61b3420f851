// Command compile builds the solution table for one board size, prints a
// summary to stderr and optionally writes the table to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictable/ai"
	"github.com/domino14/tictable/arena"
	"github.com/domino14/tictable/cache"
	"github.com/domino14/tictable/compiler"
	"github.com/domino14/tictable/config"
	"github.com/domino14/tictable/state"
	"github.com/domino14/tictable/tableio"
	"github.com/domino14/tictable/tictactoe"
	"github.com/domino14/tictable/verify"
)

func setupLogging(cfg *config.Config) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level, err := zerolog.ParseLevel(cfg.GetString(config.ConfigLogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	size := cfg.GetInt(config.ConfigBoardSize)
	workers := cfg.GetInt(config.ConfigWorkers)
	format, err := tableio.ParseFormat(cfg.GetString(config.ConfigExportFormat))
	if err != nil {
		log.Fatal().Err(err).Msg("bad-export-format")
	}
	if err := cache.CheckMemory(size, cfg.GetBool(config.ConfigForce)); err != nil {
		log.Fatal().Err(err).Msg("refusing-to-compile")
	}

	store, err := tictactoe.New(size)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-board-size")
	}
	c := compiler.NewCompiler()
	c.Bind(store)
	c.SetLogEvery(cfg.GetInt(config.ConfigLogEvery))

	start := time.Now()
	counters, err := c.CompileFully()
	if err != nil {
		log.Fatal().Err(err).Msg("compile-failed")
	}
	exported, err := c.Export()
	if err != nil {
		log.Fatal().Err(err).Msg("export-failed")
	}
	log.Info().
		Int("board-size", size).
		Int("nodes", len(exported)).
		Int("winners", counters.WinnersProcessed).
		Int("backpropagated", counters.NodesScored).
		Int8("root-score", exported[state.Empty.String()].Score).
		Dur("elapsed", time.Since(start)).
		Msg("compiled")

	if err := printLevels(os.Stderr, exported, size); err != nil {
		log.Error().Err(err).Msg("histogram")
	}

	if cfg.GetBool(config.ConfigVerify) {
		if err := verify.Table(ctx, exported, size, workers); err != nil {
			log.Fatal().Err(err).Msg("table-unsound")
		}
		log.Info().Msg("table-verified")
	}

	if games := cfg.GetInt(config.ConfigArenaGames); games > 0 {
		table, err := ai.Load(exported)
		if err != nil {
			log.Fatal().Err(err).Msg("load-failed")
		}
		res, err := arena.Run(ctx, table, ai.NewRandomPlayer(size),
			arena.Options{Games: games, Workers: workers, BoardSize: size})
		if err != nil {
			log.Fatal().Err(err).Msg("arena-failed")
		}
		fmt.Fprintln(os.Stderr, "table vs random:", res)
	}

	if err := tableio.Write(os.Stdout, size, exported, format); err != nil {
		log.Fatal().Err(err).Msg("write-failed")
	}
}
