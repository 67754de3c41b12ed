package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viera97/calendar-appointments/internal/constants"
	apperrors "github.com/viera97/calendar-appointments/internal/errors"
	"github.com/viera97/calendar-appointments/internal/keyring"
	"github.com/viera97/calendar-appointments/internal/logger"
	"github.com/viera97/calendar-appointments/internal/storage"
	"github.com/viera97/calendar-appointments/internal/storage/jsonfile"
	"github.com/viera97/calendar-appointments/internal/storage/postgres"
	"github.com/viera97/calendar-appointments/internal/storage/sqlite"
)

// IsPostgres reports whether config is a PostgreSQL URL or key=value DSN.
func IsPostgres(config string) bool {
	return postgres.IsConnString(config) || strings.Contains(config, "host=")
}

// ResolveConfig picks the store location. An explicit value wins, then the
// CITAS_DB_CONNECTION environment variable, then the keyring, then the default path.
// The returned bool reports whether the value came from a credential source.
func ResolveConfig(explicit string) (string, bool) {
	if explicit != "" && explicit != constants.DefaultConfigPath {
		return explicit, false
	}
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env, true
	}
	if conn, err := keyring.Get(keyring.DBConnection); err == nil {
		return conn, true
	} else if !errors.Is(err, keyring.ErrNotFound) {
		logger.Debug("keyring lookup skipped", "error", err)
	}
	if explicit != "" {
		return explicit, false
	}
	return constants.DefaultConfigPath, false
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// NewStore builds the record store for config: PostgreSQL for connection
// strings, a JSON document for *.json paths and SQLite otherwise.
// trusted marks config as read from the environment or keyring, where an
// embedded password is acceptable.
func NewStore(config string, trusted bool) (storage.Provider, error) {
	if IsPostgres(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
			if !trusted {
				return nil, apperrors.WithHint(err,
					"store the connection string with 'citas keyring set "+string(keyring.DBConnection)+"' or export "+constants.EnvDBConnection)
			}
		}
		return postgres.New(config), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return jsonfile.NewStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// ConfigDir returns the directory that holds logs and backups for config.
// PostgreSQL stores use the directory of the default path.
func ConfigDir(config string) string {
	if IsPostgres(config) {
		config = constants.DefaultConfigPath
	}
	path, err := ExpandPath(config)
	if err != nil {
		return "."
	}
	return filepath.Dir(path)
}
