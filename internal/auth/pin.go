// Package auth guards the kiosk's settings screen: a bcrypt-hashed PIN and
// short-lived session tokens for the local admin surface.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

var (
	ErrInvalidPIN = errors.New("invalid PIN")
	ErrWeakPIN    = errors.New("PIN must be at least 4 digits")
	ErrPINNotSet  = errors.New("settings PIN has not been configured")
)

const minPINLength = 4

// PINAuthenticator verifies the settings-screen PIN against the hash stored
// in the settings blob.
type PINAuthenticator struct {
	settings storage.SettingsStore
}

func NewPINAuthenticator(settings storage.SettingsStore) *PINAuthenticator {
	return &PINAuthenticator{settings: settings}
}

// SetPIN hashes and stores a new settings PIN.
func (a *PINAuthenticator) SetPIN(ctx context.Context, pin string) error {
	if len(pin) < minPINLength {
		return ErrWeakPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	settings, err := a.settings.LoadSettings(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("load settings: %w", err)
		}
		settings = &models.Settings{}
	}
	updated := *settings
	updated.SettingsPINHash = string(hash)
	if err := a.settings.SaveSettings(ctx, &updated); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Verify checks a PIN attempt against the stored hash.
func (a *PINAuthenticator) Verify(ctx context.Context, pin string) error {
	settings, err := a.settings.LoadSettings(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrPINNotSet
		}
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.SettingsPINHash == "" {
		return ErrPINNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(settings.SettingsPINHash), []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}
