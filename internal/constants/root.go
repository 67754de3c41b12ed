package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName            = "citas"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/citas/citas.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Keyring users for remote credentials
	KeyringAPIToken    = "api-token"
	KeyringGoogleToken = "google-oauth-token"

	// Environment variables
	EnvDBConnection = "CITAS_DB_CONNECTION"
	EnvLegacyAPIURL = "API_URL"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "citas-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "citas-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.viera97.citas"
	TrayExecutablePrefix   = "citas-tray"
	NotifierSecretHeader   = "X-Citas-Secret"

	// Remote calendar providers
	ProviderAPI    = "api"
	ProviderGoogle = "google"

	// Remote defaults
	DefaultAPIURL            = "http://127.0.0.1:8000"
	DefaultRemoteTimeout     = 15 * time.Second
	DefaultGoogleCalendarID  = "primary"
	DefaultGoogleRedirectURL = "http://127.0.0.1:8085/callback"
	FallbackDurationMin      = 60
)

// Session States
const (
	StateBook SessionState = iota
	StateAppointments
	StateServices
	StateConfirmCancel
	StateConfirmClearHistory
)
