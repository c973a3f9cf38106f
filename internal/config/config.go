// Package config layers the kiosk's configuration: compiled defaults, then
// environment variables, then the operator-editable settings blob persisted
// in local storage. Settings changes go through Commit so there is a single
// writer.
package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/poslite/kiosk/internal/models"
	"github.com/poslite/kiosk/internal/storage"
)

// Config is the environment-level configuration, loaded once at startup.
// KIOSK_-prefixed variables override the defaults.
type Config struct {
	DBPath   string `envconfig:"DB_PATH" default:"./data/kiosk.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL     string `envconfig:"API_BASE_URL" default:"https://api3.mypospointe.com:8843"`
	TransServerURL string `envconfig:"TRANS_SERVER_URL" default:"https://transserver2.mypospointe.com:9443"`
	TransAuth      string `envconfig:"TRANS_AUTH"`
	GiftCardURL    string `envconfig:"GIFT_CARD_URL" default:"https://giftcard.myposerver.com"`
	GiftCardAuth   string `envconfig:"GIFT_CARD_AUTH"`
	GiftCardKey    string `envconfig:"GIFT_CARD_KEY"` // base64 AES-256 key

	DBName  string `envconfig:"DB_NAME" default:"170"`
	StoreID string `envconfig:"STORE_ID"`

	StationID string `envconfig:"STATION_ID" default:"KIOSK-01"`
	CashierID string `envconfig:"CASHIER_ID" default:"KIOSK"`

	TerminalIP      string        `envconfig:"TERMINAL_IP" default:"10.0.0.1"`
	TerminalPort    int           `envconfig:"TERMINAL_PORT" default:"10009"`
	TerminalTimeout time.Duration `envconfig:"TERMINAL_TIMEOUT" default:"90s"`

	PrinterAddress string `envconfig:"PRINTER_ADDRESS" default:"192.168.1.100:9100"`

	SessionSecret   string        `envconfig:"SESSION_SECRET"`
	SessionDuration time.Duration `envconfig:"SESSION_DURATION" default:"15m"`

	IdleTimeout   time.Duration `envconfig:"IDLE_TIMEOUT" default:"2m"`
	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`
	SyncInterval  time.Duration `envconfig:"SYNC_INTERVAL" default:"60s"`

	// BatchCloseHour is the local hour (0-23) for the nightly terminal
	// batch settlement.
	BatchCloseHour int `envconfig:"BATCH_CLOSE_HOUR" default:"3"`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9091"`
}

// Load reads the environment configuration.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("kiosk", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}

// Resolve loads the stored settings blob and overlays it on the environment
// configuration. A device that has never been configured runs on the
// environment values alone.
func Resolve(ctx context.Context, cfg *Config, store storage.SettingsStore) (*models.Settings, error) {
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		settings = &models.Settings{
			APIBaseURL:     cfg.APIBaseURL,
			TransServerURL: cfg.TransServerURL,
			TerminalIP:     cfg.TerminalIP,
			TerminalPort:   cfg.TerminalPort,
			PrinterAddress: cfg.PrinterAddress,
			KioskMode:      models.ModeActive,
			StoreID:        cfg.StoreID,
			DBName:         cfg.DBName,
		}
		if err := store.SaveSettings(ctx, settings); err != nil {
			return nil, fmt.Errorf("seed settings: %w", err)
		}
		return settings, nil
	}

	// Environment values only fill gaps; operator edits win.
	if settings.APIBaseURL == "" {
		settings.APIBaseURL = cfg.APIBaseURL
	}
	if settings.TransServerURL == "" {
		settings.TransServerURL = cfg.TransServerURL
	}
	if settings.TerminalIP == "" {
		settings.TerminalIP = cfg.TerminalIP
	}
	if settings.TerminalPort == 0 {
		settings.TerminalPort = cfg.TerminalPort
	}
	if settings.PrinterAddress == "" {
		settings.PrinterAddress = cfg.PrinterAddress
	}
	if settings.DBName == "" {
		settings.DBName = cfg.DBName
	}
	if !settings.KioskMode.Valid() {
		settings.KioskMode = models.ModeActive
	}
	return settings, nil
}

// Commit validates and persists an edited settings blob.
func Commit(ctx context.Context, store storage.SettingsStore, settings *models.Settings) error {
	if !settings.KioskMode.Valid() {
		return fmt.Errorf("unknown kiosk mode %q", settings.KioskMode)
	}
	if settings.TerminalPort <= 0 || settings.TerminalPort > 65535 {
		return fmt.Errorf("terminal port %d out of range", settings.TerminalPort)
	}
	if err := store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
