package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictable/ai"
	"github.com/domino14/tictable/compiler"
	"github.com/domino14/tictable/config"
	"github.com/domino14/tictable/tictactoe"
)

// The cache keeps compiled solution tables around for the life of the
// process. Compiling is deterministic, so a table for a given board size
// only ever needs to be built once, no matter how many shells, arenas or
// tests ask for it.

type cache struct {
	sync.Mutex
	tables map[int]*ai.TablePlayer
}

type loadFunc func(cfg *config.Config, boardSize int) (*ai.TablePlayer, error)

// GlobalTableCache is our global table cache.
var GlobalTableCache *cache

var createOnce sync.Once

func (c *cache) load(cfg *config.Config, boardSize int, loadFunc loadFunc) error {
	log.Debug().Int("board-size", boardSize).Msg("loading into cache")

	table, err := loadFunc(cfg, boardSize)
	if err != nil {
		return err
	}
	c.tables[boardSize] = table
	return nil
}

func (c *cache) get(cfg *config.Config, boardSize int, loadFunc loadFunc) (*ai.TablePlayer, error) {
	c.Lock()
	defer c.Unlock()
	table, ok := c.tables[boardSize]
	if !ok {
		if err := c.load(cfg, boardSize, loadFunc); err != nil {
			return nil, err
		}
		return c.tables[boardSize], nil
	}
	log.Debug().Int("board-size", boardSize).Msg("getting table from cache")
	return table, nil
}

func CreateGlobalTableCache() {
	GlobalTableCache = &cache{tables: make(map[int]*ai.TablePlayer)}
}

// Table returns the solution table for the board size, compiling it on
// first use.
func Table(cfg *config.Config, boardSize int) (*ai.TablePlayer, error) {
	createOnce.Do(func() {
		if GlobalTableCache == nil {
			CreateGlobalTableCache()
		}
	})
	return GlobalTableCache.get(cfg, boardSize, Compile)
}

// Compile builds a fresh table without consulting the cache.
func Compile(cfg *config.Config, boardSize int) (*ai.TablePlayer, error) {
	if err := CheckMemory(boardSize, cfg.GetBool(config.ConfigForce)); err != nil {
		return nil, err
	}
	store, err := tictactoe.New(boardSize)
	if err != nil {
		return nil, err
	}
	c := compiler.NewCompiler()
	c.Bind(store)
	c.SetLogEvery(cfg.GetInt(config.ConfigLogEvery))
	if _, err := c.CompileFully(); err != nil {
		return nil, err
	}
	exported, err := c.Export()
	if err != nil {
		return nil, err
	}
	return ai.Load(exported)
}
