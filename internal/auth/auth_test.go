package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

type memSettings struct {
	settings *models.Settings
}

func (s *memSettings) SaveSettings(_ context.Context, settings *models.Settings) error {
	s.settings = settings
	return nil
}

func (s *memSettings) LoadSettings(context.Context) (*models.Settings, error) {
	if s.settings == nil {
		return nil, storage.ErrNotFound
	}
	return s.settings, nil
}

func TestSetAndVerifyPIN(t *testing.T) {
	store := &memSettings{}
	a := NewPINAuthenticator(store)
	ctx := context.Background()

	require.NoError(t, a.SetPIN(ctx, "4321"))
	assert.NotEqual(t, "4321", store.settings.SettingsPINHash, "PIN is stored hashed")

	assert.NoError(t, a.Verify(ctx, "4321"))
	assert.ErrorIs(t, a.Verify(ctx, "0000"), ErrInvalidPIN)
}

func TestSetPINRejectsShort(t *testing.T) {
	a := NewPINAuthenticator(&memSettings{})
	assert.ErrorIs(t, a.SetPIN(context.Background(), "123"), ErrWeakPIN)
}

func TestVerifyWithoutPIN(t *testing.T) {
	a := NewPINAuthenticator(&memSettings{})
	assert.ErrorIs(t, a.Verify(context.Background(), "4321"), ErrPINNotSet)

	a = NewPINAuthenticator(&memSettings{settings: &models.Settings{}})
	assert.ErrorIs(t, a.Verify(context.Background(), "4321"), ErrPINNotSet)
}

func TestSetPINPreservesOtherSettings(t *testing.T) {
	store := &memSettings{settings: &models.Settings{StoreID: "170", TerminalIP: "10.0.0.1"}}
	a := NewPINAuthenticator(store)

	require.NoError(t, a.SetPIN(context.Background(), "9876"))
	assert.Equal(t, "170", store.settings.StoreID)
	assert.Equal(t, "10.0.0.1", store.settings.TerminalIP)
}

func TestSessionTokens(t *testing.T) {
	m := NewSessionManager("test-secret-key-32-bytes-long!!!", time.Hour)

	token, err := m.Generate("KIOSK-01")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "KIOSK-01", claims.StationID)
}

func TestSessionTokenExpiry(t *testing.T) {
	m := NewSessionManager("test-secret-key-32-bytes-long!!!", -time.Minute)

	token, err := m.Generate("KIOSK-01")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenWrongKey(t *testing.T) {
	token, err := NewSessionManager("key-one", time.Hour).Generate("KIOSK-01")
	require.NoError(t, err)

	_, err = NewSessionManager("key-two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
