package ui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/unkn0wn-root/rhc/internal/session"
)

// Run drives the session until it terminates. When stdin or stdout is
// redirected the program talks to /dev/tty instead, so the response can be
// piped while the selection stays interactive.
func Run(ctx context.Context, cfg Config) (session.Outcome, error) {
	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if !stdinTTY || !stdoutTTY {
		tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return session.Outcome{}, fmt.Errorf("open terminal: %w", err)
		}
		defer tty.Close()
		if !stdinTTY {
			opts = append(opts, tea.WithInput(tty))
		}
		if !stdoutTTY {
			opts = append(opts, tea.WithOutput(tty))
		}
	}

	final, err := tea.NewProgram(New(cfg), opts...).Run()
	if err != nil {
		return session.Outcome{}, fmt.Errorf("run ui: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return session.Outcome{}, fmt.Errorf("run ui: unexpected model %T", final)
	}
	return m.sess.Outcome(), nil
}
