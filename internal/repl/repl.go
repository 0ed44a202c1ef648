// Package repl drives a calculator engine from a terminal.
//
// Each input line is a sequence of keystrokes, one per character, handled as
// keyboard keys. An empty line commits. The words ac and :q clear everything
// and quit, respectively.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"

	"github.com/zephyrtronium/keycalc"
	"github.com/zephyrtronium/keycalc/internal/config"
)

// Repl is a terminal session over one engine.
type Repl struct {
	e   *keycalc.Engine
	out io.Writer
	log logrus.FieldLogger
}

// New creates a session writing its display to out.
func New(e *keycalc.Engine, out io.Writer, log logrus.FieldLogger) *Repl {
	return &Repl{e: e, out: out, log: log}
}

// Line handles one line of input and prints the display. It returns false when
// the line asks to quit.
func (r *Repl) Line(line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case ":q":
		return false
	case "ac":
		r.e.Clear(keycalc.ClearAll)
	case "":
		r.commit()
	default:
		for _, c := range line {
			r.Key(string(c))
		}
	}
	r.Show()
	return true
}

// Key presses a keyboard key, named as for keycalc.Engine.Press.
func (r *Repl) Key(k string) {
	if keycalc.CommitKey(k) {
		r.commit()
		return
	}
	if handled, _ := r.e.Press(k); !handled {
		r.log.WithField("key", k).Debug("ignored key")
	}
}

func (r *Repl) commit() {
	expr := r.e.Buffer()
	if r.e.Commit() {
		r.log.WithFields(logrus.Fields{"expression": expr, "result": r.e.LastResult()}).Debug("commit")
		return
	}
	if err := r.e.Err(); err != nil {
		fmt.Fprintf(r.out, "! %v\n", err)
		r.log.WithField("expression", expr).WithError(err).Debug("commit rejected")
		return
	}
	fmt.Fprintln(r.out, "!")
}

// Show prints the history line, if any, then the buffer and its preview.
func (r *Repl) Show() {
	if h := r.e.History(); h != "" {
		fmt.Fprintf(r.out, "  %s\n", h)
	}
	b, p := r.e.Peek()
	if p == "" {
		fmt.Fprintln(r.out, b)
		return
	}
	fmt.Fprintf(r.out, "%s  (%s)\n", b, p)
}

// Run reads lines from the terminal until EOF, an interrupt on an empty line,
// or :q.
func Run(cfg *config.Repl, e *keycalc.Engine, log logrus.FieldLogger) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.HistoryFile,
	})
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	r := New(e, rl.Stdout(), log)
	r.Show()
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read line: %w", err)
		}
		if !r.Line(line) {
			return nil
		}
	}
}
