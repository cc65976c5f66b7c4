// Package clishell implements the operator-facing REPL: a mode stack, a
// chzyer/readline-driven line editor wired to cliparse's parser for TAB
// completion and "?" help, and action dispatch to mode changes, built-ins,
// and remote UDS calls.
package clishell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/routerd/routerd/internal/cliparse"
	"github.com/routerd/routerd/internal/clitree"
	"github.com/routerd/routerd/internal/logger"
	"github.com/routerd/routerd/internal/remoteclient"
)

// Privileged is the privilege level the "enable" built-in sets. The prompt's
// trailing character is "#" at any level of 2 or more, ">" below that.
const Privileged = 15

// Unprivileged is the level "disable" resets to.
const Unprivileged = 1

// Shell drives the REPL: it owns the mode stack, the current privilege
// level, and the set of named remotes actions may dispatch to.
type Shell struct {
	forest    *clitree.Forest
	remotes   map[string]*remoteclient.Client
	privilege int

	stack []string // mode names, stack[0] is always forest.Initial

	rl *readline.Instance
}

// New builds a shell over forest, starting in forest.Initial at the
// Unprivileged level. remotes is keyed by the name used in a RemoteAction.
func New(forest *clitree.Forest, remotes map[string]*remoteclient.Client) *Shell {
	return &Shell{
		forest:    forest,
		remotes:   remotes,
		privilege: Unprivileged,
		stack:     []string{forest.Initial},
	}
}

// currentMode returns the name of the mode on top of the stack.
func (s *Shell) currentMode() string {
	return s.stack[len(s.stack)-1]
}

// currentTree returns the trie for the current mode.
func (s *Shell) currentTree() *clitree.Tree {
	return s.forest.Get(s.currentMode())
}

// atInitial reports whether the stack holds only the initial mode.
func (s *Shell) atInitial() bool {
	return len(s.stack) == 1
}

// pushMode enters a child mode by name.
func (s *Shell) pushMode(name string) {
	s.stack = append(s.stack, name)
}

// popMode leaves the current mode, a no-op at the initial mode.
func (s *Shell) popMode() {
	if !s.atInitial() {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// resetMode pops every mode back to the initial one.
func (s *Shell) resetMode() {
	s.stack = s.stack[:1]
}

// prompt renders the current mode's prompt template with the privilege
// character: "#" at privilege 2 or more, else ">".
func (s *Shell) prompt() string {
	tree := s.currentTree()
	template := tree.Prompt
	if template == "" {
		template = s.currentMode()
	}
	ch := ">"
	if s.privilege >= 2 {
		ch = "#"
	}
	return template + ch + " "
}

// Run starts the line-editor loop. It returns nil on a clean Ctrl-D exit at
// the initial mode, or the first unrecoverable readline error.
func (s *Shell) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            s.prompt(),
		HistoryFile:       historyFilePath(),
		AutoComplete:      &completer{shell: s},
		InterruptPrompt:   "^C",
		EOFPrompt:         "",
		HistorySearchFold: true,
		Listener:          &helpListener{shell: s},
		Painter:           &painter{shell: s},
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	s.rl = rl

	sigtstp := make(chan os.Signal, 1)
	signal.Notify(sigtstp, syscall.SIGTSTP)
	defer signal.Stop(sigtstp)
	go s.watchSuspend(sigtstp)

	for {
		rl.SetPrompt(s.prompt())
		line, err := rl.Readline()

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			// Ctrl-C: no-op on the current line.
			continue
		case errors.Is(err, io.EOF):
			if s.atInitial() {
				return nil
			}
			// Ctrl-D at a non-initial mode is rewritten to the built-in "end".
			s.execBuiltIn("end")
			continue
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.execLine(line)
	}
}

// watchSuspend intercepts Ctrl-Z: registering for SIGTSTP suppresses the
// terminal's default job-control stop, so the process never actually
// suspends. Each intercepted suspend resets the mode stack to the initial
// mode and redraws the prompt.
func (s *Shell) watchSuspend(sig <-chan os.Signal) {
	for range sig {
		logger.Debug("suspend intercepted, resetting to initial mode")
		s.resetMode()
		if s.rl != nil {
			s.rl.SetPrompt(s.prompt())
			s.rl.Refresh()
		}
	}
}

// execLine runs one input line through parse_execute and dispatches its
// actions, or reports a parse failure with a caret under the anchor
// position.
func (s *Shell) execLine(line string) {
	result := cliparse.ParseExecute(s.currentTree().Root, line, s.privilege)

	switch result.Status {
	case cliparse.Complete:
		s.dispatch(result)
	case cliparse.Unrecognized:
		if s.fallbackToParent(line) {
			return
		}
		reportCaret(line, result.Pos, "% Unrecognized command")
	case cliparse.Ambiguous:
		fmt.Println("% Ambiguous command")
	case cliparse.Incomplete:
		fmt.Println("% Incomplete command")
	}
}

// fallbackToParent implements the Cisco-style mode walk-up: if the current
// mode fails to recognize the line but a parent mode parses it to Complete,
// execute it there and change mode to that parent.
func (s *Shell) fallbackToParent(line string) bool {
	tree := s.currentTree()
	for tree.Parent != nil {
		tree = tree.Parent
		result := cliparse.ParseExecute(tree.Root, line, s.privilege)
		if result.Status == cliparse.Complete {
			for s.currentMode() != tree.ModeName {
				s.popMode()
			}
			s.dispatch(result)
			return true
		}
	}
	return false
}

// reportCaret prints line with a caret placed under pos, the operator-visible
// format for a parse failure.
func reportCaret(line string, pos int, msg string) {
	fmt.Println(line)
	fmt.Println(strings.Repeat(" ", pos) + "^")
	fmt.Println(msg)
}

func historyFilePath() string {
	return "/tmp/.rezesh_history"
}
