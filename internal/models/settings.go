package models

// KioskMode is the process-wide operating state of the device. It gates
// whether ordering is offered at all; routing on it happens in the UI layer.
type KioskMode string

const (
	ModeActive     KioskMode = "active"
	ModeClosed     KioskMode = "closed"
	ModeOutOfOrder KioskMode = "out_of_order"
)

// Valid reports whether m is one of the known kiosk modes.
func (m KioskMode) Valid() bool {
	switch m {
	case ModeActive, ModeClosed, ModeOutOfOrder:
		return true
	}
	return false
}

// Settings is the persisted settings blob: endpoints, hardware addresses and
// store identity. It is loaded once at startup and replaced only through
// config.Commit.
type Settings struct {
	APIBaseURL     string    `json:"apiBaseUrl"`
	TransServerURL string    `json:"transServerUrl"`
	TerminalIP     string    `json:"paxIpAddress"`
	TerminalPort   int       `json:"paxPort"`
	PrinterType    string    `json:"printerType"`
	PrinterAddress string    `json:"printerAddress"`
	KioskMode      KioskMode `json:"kioskStatus"`
	StoreID        string    `json:"storeId"`
	DBName         string    `json:"dbName"`

	// SettingsPINHash is the bcrypt hash of the settings-screen PIN.
	SettingsPINHash string `json:"settingsPin"`
}
