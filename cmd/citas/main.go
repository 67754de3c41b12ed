package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/cli/appointments"
	"github.com/viera97/calendar-appointments/internal/cli/backups"
	"github.com/viera97/calendar-appointments/internal/cli/remote"
	"github.com/viera97/calendar-appointments/internal/cli/settings"
	"github.com/viera97/calendar-appointments/internal/cli/system"
	"github.com/viera97/calendar-appointments/internal/constants"
	apperrors "github.com/viera97/calendar-appointments/internal/errors"
	"github.com/viera97/calendar-appointments/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store path (.db for SQLite, .json for a JSON document) or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded here: use CITAS_DB_CONNECTION, .pgpass or the OS keyring." type:"string" env:"CITAS_CONFIG" default:"~/.config/citas/citas.db"`
	Verbose bool   `short:"v" help:"Enable debug logging."`
	Lang    string `help:"Language of messages (es or en). Overrides the stored setting."`

	APIURL             string `name:"api-url" help:"Backend appointments API base URL." env:"CITAS_API_URL,API_URL" default:"http://127.0.0.1:8000"`
	APIToken           string `name:"api-token" help:"Bearer token for the backend API." env:"CITAS_API_TOKEN"`
	NoAPI              bool   `name:"no-api" help:"Do not sync appointments to the backend API."`
	GoogleClientID     string `name:"google-client-id" help:"Google OAuth client id. Enables Google Calendar sync." env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `name:"google-client-secret" help:"Google OAuth client secret." env:"GOOGLE_CLIENT_SECRET"`
	CalendarID         string `name:"calendar-id" help:"Google calendar that receives appointments." env:"GOOGLE_CALENDAR_ID" default:"primary"`
	GoogleRedirectURL  string `name:"google-redirect-url" help:"OAuth redirect URL served during 'calendar auth'." default:"http://127.0.0.1:8085/callback"`
	CatalogDB          string `name:"catalog-db" help:"PostgreSQL connection string of an external services table." env:"CITAS_CATALOG_DB"`

	Init     system.InitCmd     `cmd:"" help:"Initialize citas storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive booking TUI." default:"1"`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored appointments for conflicts."`
	Remind   system.RemindCmd   `cmd:"" hidden:"" help:"Send due appointment reminders (run every minute)."`

	Book         appointments.BookCmd         `cmd:"" help:"Book an appointment."`
	Slots        appointments.SlotsCmd        `cmd:"" help:"Show the time slots of a service on a date."`
	Services     appointments.ServicesCmd     `cmd:"" help:"List bookable services."`
	List         appointments.ListCmd         `cmd:"" help:"List appointments."`
	Cancel       appointments.CancelCmd       `cmd:"" help:"Cancel a scheduled appointment."`
	Reschedule   appointments.RescheduleCmd   `cmd:"" help:"Move a scheduled appointment."`
	Complete     appointments.CompleteCmd     `cmd:"" help:"Mark an appointment completed."`
	ClearHistory appointments.ClearHistoryCmd `cmd:"" name:"clear-history" help:"Delete completed and cancelled appointments."`

	Settings settings.SettingsCmd `cmd:"" help:"Manage business and booking settings."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability and stored secrets."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	Calendar struct {
		Auth   remote.CalendarAuthCmd   `cmd:"" help:"Authorize Google Calendar access."`
		Status remote.CalendarStatusCmd `cmd:"" help:"Show Google Calendar authorization status."`
		Events remote.CalendarEventsCmd `cmd:"" help:"List upcoming Google Calendar events."`
		Logout remote.CalendarLogoutCmd `cmd:"" help:"Forget the stored Google token."`
	} `cmd:"" help:"Manage Google Calendar sync."`
	API struct {
		Health remote.APIHealthCmd `cmd:"" help:"Check that the backend API is reachable."`
	} `cmd:"" name:"api" help:"Backend API commands."`
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Appointment booking for small service businesses"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	config, trusted := cli.ResolveConfig(CLI.Config)
	command := ctx.Command()

	if err := logger.Init(logger.Config{
		Debug:     CLI.Verbose,
		ConfigDir: cli.ConfigDir(config),
		Quiet:     command == "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	store, err := cli.NewStore(config, trusted)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store: store,
		Remote: cli.RemoteConfig{
			APIURL:             CLI.APIURL,
			APIToken:           CLI.APIToken,
			NoAPI:              CLI.NoAPI,
			GoogleClientID:     CLI.GoogleClientID,
			GoogleClientSecret: CLI.GoogleClientSecret,
			GoogleCalendarID:   CLI.CalendarID,
			GoogleRedirectURL:  CLI.GoogleRedirectURL,
		},
		Lang:        CLI.Lang,
		CatalogConn: CLI.CatalogDB,
	}

	// Init loads the store itself. Keyring commands work without a store.
	if needsStore(command) {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	runErr := ctx.Run(appCtx)
	if err := store.Close(); err != nil {
		logger.Debug("failed to close store", "error", err)
	}
	apperrors.Fatal(runErr)
}

func needsStore(command string) bool {
	switch {
	case command == "init", command == "api health", strings.HasPrefix(command, "keyring "):
		return false
	case strings.HasPrefix(command, "calendar "):
		return strings.HasPrefix(command, "calendar events")
	}
	return true
}
