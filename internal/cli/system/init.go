package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/storage"
	"github.com/viera97/calendar-appointments/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Discard existing appointments before initialization."`
	Source string `help:"Store path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized citas storage at: %s\n", displayPath(ctx.Store))

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); ok {
		if err := ctx.Store.Init(); err != nil {
			return err
		}
		if err := ctx.Store.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear existing appointments: %w", err)
		}
		fmt.Println("Cleared existing appointments")
		return nil
	}

	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		absSource, err := filepath.Abs(c.Source)
		if err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing store: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing store: %w", err)
		}
		fmt.Printf("Deleted existing store at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing store: %w", err)
	}
	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, source string) error {
	src, err := cli.NewStore(source, false)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	return copyStore(src, ctx.Store)
}

func copyStore(src, dst storage.Provider) error {
	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying services...")
	services, err := src.GetServices()
	if err != nil {
		return fmt.Errorf("failed to get services from source: %w", err)
	}
	for _, svc := range services {
		if err := dst.SaveService(svc); err != nil {
			return fmt.Errorf("failed to save service %s: %w", svc.ID, err)
		}
	}
	fmt.Printf("    Copied %d services\n", len(services))

	fmt.Println("  Copying appointments...")
	appts, err := src.GetAppointments()
	if err != nil {
		return fmt.Errorf("failed to get appointments from source: %w", err)
	}
	synced := 0
	for _, appt := range appts {
		if err := dst.SaveAppointment(appt); err != nil {
			return fmt.Errorf("failed to save appointment %s: %w", appt.ID, err)
		}
		records, err := src.GetSyncRecords(appt.ID)
		if err != nil {
			return fmt.Errorf("failed to get sync records of %s: %w", appt.ID, err)
		}
		for _, rec := range records {
			if err := dst.SaveSyncRecord(rec); err != nil {
				return fmt.Errorf("failed to save sync record of %s: %w", appt.ID, err)
			}
			synced++
		}
	}
	fmt.Printf("    Copied %d appointments (%d sync records)\n", len(appts), synced)
	return nil
}

// displayPath hides the connection string of PostgreSQL stores.
func displayPath(store storage.Provider) string {
	if _, ok := store.(*postgres.Store); ok {
		return "PostgreSQL"
	}
	return store.GetConfigPath()
}
