package system

import (
	"context"
	"fmt"
	"time"

	"github.com/viera97/calendar-appointments/internal/backup"
	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/keyring"
	"github.com/viera97/calendar-appointments/internal/storage/postgres"
	"github.com/viera97/calendar-appointments/internal/utils"
	"github.com/viera97/calendar-appointments/internal/validation"
)

type pinger interface {
	Ping() error
}

type schemaVersioner interface {
	SchemaVersion() (current, latest int, err error)
}

type DoctorCmd struct {
	Remote bool `help:"Also check that the backend API answers."`
}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func() error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Database reachable", run: func() error { return checkDBReachable(ctx) }},
		{name: "Schema version", needsDB: true, run: func() error { return checkSchemaVersion(ctx) }},
		{name: "Migrations complete", needsDB: true, run: func() error { return checkMigrationsComplete(ctx) }},
		{name: "Backups present", warnOnly: true, run: func() error { return checkBackupsPresent(ctx) }},
		{name: "Settings", needsDB: true, run: func() error { return checkSettings(ctx) }},
		{name: "Appointment ledger", needsDB: true, run: func() error { return checkLedger(ctx) }},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
	}
	if cmd.Remote {
		checks = append(checks, check{name: "Backend API", warnOnly: true, run: func() error { return checkBackend(ctx) }})
	}

	hasError := false
	dbReachable := true
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run()
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if p, ok := ctx.Store.(pinger); ok {
		return p.Ping()
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		// JSON store has no schema version
		return nil
	}
	current, latest, err := sv.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	sv, ok := ctx.Store.(schemaVersioner)
	if !ok {
		return nil
	}
	current, latest, err := sv.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'citas migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'citas backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Hours().Validate(); err != nil {
		return err
	}
	if settings.SlotGranularityMin <= 0 {
		return fmt.Errorf("slot granularity must be positive, got %d", settings.SlotGranularityMin)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q", settings.Timezone)
	}
	return nil
}

func checkLedger(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	services, err := ctx.Store.GetServices()
	if err != nil {
		return fmt.Errorf("failed to get services: %w", err)
	}
	appts, err := ctx.Store.GetAppointments()
	if err != nil {
		return fmt.Errorf("failed to get appointments: %w", err)
	}

	result := validation.New().ValidateAppointments(appts, services, settings.Hours())
	if result.HasConflicts() {
		return fmt.Errorf("found %d conflict(s), run 'citas validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkBackend(ctx *cli.Context) error {
	client, err := ctx.APIClient(time.Local)
	if err != nil {
		return err
	}
	if client == nil {
		return fmt.Errorf("backend API is disabled")
	}
	reqCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if !client.Health(reqCtx) {
		return fmt.Errorf("%s did not answer the health check", client.BaseURL())
	}
	return nil
}
