package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/viera97/calendar-appointments/internal/cli"
	"github.com/viera97/calendar-appointments/internal/keyring"
	"github.com/viera97/calendar-appointments/internal/storage/postgres"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Name  string `arg:"" enum:"database-connection,api-token,google-oauth-token" help:"Secret to store (database-connection, api-token, google-oauth-token)."`
	Value string `arg:"" help:"Secret value."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	value := strings.TrimSpace(cmd.Value)

	if secret == keyring.DBConnection {
		if !cli.IsPostgres(value) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if err := postgres.ValidateConnString(value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, value); err != nil {
		return err
	}

	fmt.Printf("✓ %s stored successfully in OS keyring\n", secret)
	if secret == keyring.DBConnection {
		fmt.Println("  You can now use citas without the --config flag")
	}
	return nil
}

// KeyringGetCmd prints a stored secret with credentials masked
type KeyringGetCmd struct {
	Name string `arg:"" enum:"database-connection,api-token,google-oauth-token" help:"Secret to show."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	value, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'citas keyring set %s' to store one", secret, secret)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", secret, err)
	}

	fmt.Printf("%s:\n", secret)
	fmt.Println(maskSecret(secret, value))
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Name string `arg:"" enum:"database-connection,api-token,google-oauth-token" help:"Secret to delete."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Name)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return err
	}

	fmt.Printf("✓ %s deleted from OS keyring\n", secret)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}

	fmt.Println("✓ OS keyring is available")
	for _, secret := range keyring.Secrets() {
		if keyring.Has(secret) {
			fmt.Printf("✓ %s is stored\n", secret)
		} else {
			fmt.Printf("ℹ %s is not stored\n", secret)
		}
	}
	return nil
}

func maskSecret(secret keyring.Secret, value string) string {
	switch secret {
	case keyring.DBConnection:
		return maskPassword(value)
	case keyring.GoogleToken:
		return "(OAuth token, " + fmt.Sprint(len(value)) + " bytes)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", 8)
}

// maskPassword masks passwords in connection strings for display
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		u, err := url.Parse(connStr)
		if err == nil && u.User != nil {
			if _, ok := u.User.Password(); ok {
				u.User = url.UserPassword(u.User.Username(), "xxxxx")
				return strings.Replace(u.String(), ":xxxxx@", ":****@", 1)
			}
		}
		return connStr
	}

	if strings.Contains(connStr, "password=") {
		parts := strings.Fields(connStr)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=****"
			}
		}
		return strings.Join(parts, " ")
	}
	return connStr
}
