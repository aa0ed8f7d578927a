package terminal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-delve/liner"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/go-delve/leb128/pkg/config"
	"github.com/go-delve/leb128/pkg/inttype"
	"github.com/go-delve/leb128/pkg/logflags"
)

const (
	historyFile                 string = ".leb128_history"
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"
)

const (
	ansiGreen = 32
	ansiCyan  = 36
)

// Term represents the interactive encoder/decoder terminal.
type Term struct {
	conf   *config.Config
	prompt string
	line   *liner.State
	cmds   *Commands
	stdout io.Writer
	color  bool
	log    logflags.Logger

	// kind and output are the defaults used by the encode and decode
	// commands, changed by the type and output commands.
	kind   inttype.Kind
	output inttype.Output
}

// New returns a new Term.
func New(conf *config.Config, kind inttype.Kind, output inttype.Output) *Term {
	if conf == nil {
		conf = &config.Config{}
	}

	cmds := newCommands()
	if conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}

	w, color := getColorableWriter()
	if conf.DisableColors || strings.ToLower(os.Getenv("TERM")) == "dumb" {
		color = false
	}

	return &Term{
		conf:   conf,
		prompt: prompt(kind),
		line:   liner.NewLiner(),
		cmds:   cmds,
		stdout: w,
		color:  color,
		log:    logflags.TerminalLogger(),
		kind:   kind,
		output: output,
	}
}

func getColorableWriter() (io.Writer, bool) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return os.Stdout, false
	}
	return colorable.NewColorableStdout(), true
}

func prompt(kind inttype.Kind) string {
	return fmt.Sprintf("(leb128 %s) ", kind)
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	t.line.Close()
}

// Run begins running the terminal, it returns the exit status and an
// error if the prompt could not be read.
func (t *Term) Run() (int, error) {
	defer t.Close()

	t.line.SetCtrlCAborts(true)
	t.line.SetCompleter(t.cmds.Complete)

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load history file: %v.\n", err)
	} else if f, err := os.Open(fullHistoryFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}
	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(t.stdout, "exit")
				return t.handleExit(fullHistoryFile)
			}
			if err == liner.ErrPromptAborted {
				continue
			}
			return 1, fmt.Errorf("prompt for input failed: %v", err)
		}

		if err := t.cmds.Call(cmdstr, t); err != nil {
			if err == errExitRequest {
				return t.handleExit(fullHistoryFile)
			}
			t.log.WithError(err).Debugf("command %q", cmdstr)
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit(fullHistoryFile string) (int, error) {
	if fullHistoryFile == "" {
		return 0, nil
	}
	var buf bytes.Buffer
	if _, err := t.line.WriteHistory(&buf); err != nil {
		fmt.Fprintln(os.Stderr, "readline history error:", err)
		return 0, nil
	}
	history := trimHistory(buf.String(), t.conf.HistoryLimit())
	if err := os.WriteFile(fullHistoryFile, []byte(history), 0600); err != nil {
		fmt.Fprintln(os.Stderr, "Error saving history file:", err)
	}
	return 0, nil
}

// trimHistory keeps the last limit lines of history.
func trimHistory(history string, limit int) string {
	lines := strings.SplitAfter(history, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if limit >= 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return strings.Join(lines, "")
}

// printGroups prints data using the current output format. Hexadecimal
// output on a color terminal shows continuation groups and the final
// group of each value in different colors.
func (t *Term) printGroups(data []byte) {
	if !t.color || t.output != inttype.Hex {
		fmt.Fprint(t.stdout, t.output.Format(data))
		return
	}
	for _, b := range data {
		color := ansiGreen
		if b&0x80 != 0 {
			color = ansiCyan
		}
		fmt.Fprintf(t.stdout, terminalHighlightEscapeCode+"%02x"+terminalResetEscapeCode, color, b)
	}
}
