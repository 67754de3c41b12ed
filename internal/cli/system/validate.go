package system

import (
	"fmt"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/validation"
)

type ValidateCmd struct {
	Strict bool `help:"Exit with an error when conflicts are found."`
}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	services, err := ctx.Store.GetServices()
	if err != nil {
		return fmt.Errorf("failed to load services: %w", err)
	}
	appts, err := ctx.Store.GetAppointments()
	if err != nil {
		return fmt.Errorf("failed to load appointments: %w", err)
	}

	fmt.Printf("Validating %d appointments...\n", len(appts))
	result := validation.New().ValidateAppointments(appts, services, settings.Hours())

	fmt.Println()
	fmt.Println(result.FormatReport())

	if cmd.Strict && result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found", len(result.Conflicts))
	}
	return nil
}
