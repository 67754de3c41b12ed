package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Open()
	if err != nil {
		return err
	}
	defer sess.Close()

	// Back up on startup, after the store loaded successfully.
	ctx.PerformAutomaticBackup()

	model, err := tui.NewModel(context.Background(), ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to start the interface: %w", err)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface exited with an error: %w", err)
	}
	return nil
}
