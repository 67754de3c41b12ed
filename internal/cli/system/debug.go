package system

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/storage"
)

type DebugCmd struct {
	DBPath          *DebugDBPathCmd          `cmd:"" help:"Show database and log paths."`
	DumpAppointment *DebugDumpAppointmentCmd `cmd:"" help:"Dump an appointment and its sync records as JSON."`
	DumpSettings    *DebugDumpSettingsCmd    `cmd:"" help:"Dump settings data as JSON."`
	DumpServices    *DebugDumpServicesCmd    `cmd:"" help:"Dump the service catalog as JSON."`
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	path := displayPath(ctx.Store)
	return printJSON(map[string]string{
		"path": path,
		"log":  logger.LogPath(cli.ConfigDir(ctx.Store.GetConfigPath())),
	})
}

type DebugDumpAppointmentCmd struct {
	ID string `arg:"" help:"Appointment id."`
}

func (cmd *DebugDumpAppointmentCmd) Run(ctx *cli.Context) error {
	appt, err := ctx.Store.GetAppointment(cmd.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no appointment found with id: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	records, err := ctx.Store.GetSyncRecords(cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to get sync records: %w", err)
	}

	return printJSON(map[string]any{
		"appointment": appt,
		"sync":        records,
	})
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugDumpServicesCmd struct{}

func (cmd *DebugDumpServicesCmd) Run(ctx *cli.Context) error {
	services, err := ctx.Store.GetServices()
	if err != nil {
		return fmt.Errorf("failed to get services: %w", err)
	}
	return printJSON(services)
}
