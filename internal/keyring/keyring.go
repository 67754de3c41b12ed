// Package keyring stores citas secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/viera97/calendar-appointments/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under the requested name
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownSecret is returned for names outside Secrets()
	ErrUnknownSecret = errors.New("unknown secret name")
)

// Secret names a value citas keeps in the keyring.
type Secret string

const (
	DBConnection Secret = constants.DefaultKeyringUser
	APIToken     Secret = constants.KeyringAPIToken
	GoogleToken  Secret = constants.KeyringGoogleToken
)

// Secrets lists every secret name citas manages.
func Secrets() []Secret {
	return []Secret{DBConnection, APIToken, GoogleToken}
}

// ParseSecret maps a user-supplied name to a known secret.
func ParseSecret(name string) (Secret, error) {
	for _, s := range Secrets() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSecret, name)
}

// Get reads a secret. Returns ErrNotFound if nothing is stored.
func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

// Set stores a secret, replacing any previous value.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

// Delete removes a secret.
func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

// Has reports whether a secret is stored. Keyring failures read as false.
func Has(s Secret) bool {
	_, err := Get(s)
	return err == nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
