package shell

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tictable/ai"
	"github.com/domino14/tictable/config"
	"github.com/domino14/tictable/state"
)

var errQuit = errors.New("sending quit signal")

type ShellController struct {
	l   *readline.Instance
	out io.Writer
	cfg *config.Config

	boardSize int
	table     *ai.TablePlayer
	// history[0] is the empty board; the last entry is the current state.
	history []state.ID
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) (*ShellController, error) {
	sc := newController(cfg, nil)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mtictable>\033[0m ",
		HistoryFile:     "/tmp/tictable-readline.tmp",
		AutoComplete:    NewShellCompleter(),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc, nil
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	return &ShellController{
		cfg:       cfg,
		out:       out,
		boardSize: cfg.GetInt(config.ConfigBoardSize),
	}
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "show":
		return sc.show(cmd)
	case "play":
		return sc.play(cmd)
	case "best":
		return sc.best(cmd)
	case "score":
		return sc.score(cmd)
	case "undo":
		return sc.undo(cmd)
	case "auto":
		return sc.auto(cmd)
	case "help":
		return sc.help(cmd)
	default:
		return nil, errors.New("command not recognized: " + strconv.Quote(cmd.cmd))
	}
}

// Execute runs one line of input. It returns errQuit when the line asked
// to leave the shell.
func (sc *ShellController) Execute(sig chan os.Signal, line string) error {
	line = strings.TrimSpace(line)
	if line == "bye" || line == "exit" {
		sig <- syscall.SIGINT
		return errQuit
	}
	cmd, err := extractFields(line)
	if err == errNoData {
		return nil
	} else if err != nil {
		sc.showError(err)
		return nil
	}
	resp, err := sc.dispatch(cmd)
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}

		if err := sc.Execute(sig, line); err != nil {
			log.Debug().Err(err).Msg("")
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
