package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/tictable/state"
)

const (
	ConfigBoardSize    = "board-size"
	ConfigLogLevel     = "log-level"
	ConfigLogEvery     = "log-every"
	ConfigExportFormat = "export-format"
	ConfigArenaGames   = "arena-games"
	ConfigVerify       = "verify"
	ConfigWorkers      = "workers"
	ConfigForce        = "force"
)

// Config wraps a viper instance. Flags win over TICTABLE_* environment
// variables, which win over the defaults.
type Config struct {
	*viper.Viper
}

func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigBoardSize, 3)
	c.SetDefault(ConfigLogLevel, "info")
	c.SetDefault(ConfigLogEvery, 1000)
	c.SetDefault(ConfigExportFormat, "none")
	c.SetDefault(ConfigArenaGames, 0)
	c.SetDefault(ConfigVerify, false)
	c.SetDefault(ConfigWorkers, runtime.GOMAXPROCS(0))
	c.SetDefault(ConfigForce, false)
}

// Load parses command-line args and the environment.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("tictable", pflag.ContinueOnError)
	fs.Int(ConfigBoardSize, 3, "side length of the square board; a line must span it")
	fs.String(ConfigLogLevel, "info", "debug, info, warn, error or disabled")
	fs.Int(ConfigLogEvery, 1000, "log expansion progress every n nodes (0 = never)")
	fs.String(ConfigExportFormat, "none", "write the compiled table to stdout: none, json or yaml")
	fs.Int(ConfigArenaGames, 0, "self-play games of the table against a random player")
	fs.Bool(ConfigVerify, false, "audit the compiled table's invariants")
	fs.Int(ConfigWorkers, runtime.GOMAXPROCS(0), "goroutines used by the audit and the arena")
	fs.Bool(ConfigForce, false, "compile even if the state space may not fit in memory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.SetEnvPrefix("TICTABLE")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	size := c.GetInt(ConfigBoardSize)
	if size < 1 || size > state.MaxBoardSize {
		return fmt.Errorf("%s must be in [1, %d], got %d", ConfigBoardSize, state.MaxBoardSize, size)
	}
	switch c.GetString(ConfigExportFormat) {
	case "none", "json", "yaml":
	default:
		return fmt.Errorf("unknown %s %q", ConfigExportFormat, c.GetString(ConfigExportFormat))
	}
	if c.GetInt(ConfigWorkers) < 1 {
		return fmt.Errorf("%s must be positive", ConfigWorkers)
	}
	return nil
}
