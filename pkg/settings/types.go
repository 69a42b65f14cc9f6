// Package settings provides persistent user preferences for the console.
package settings

// Version is the current settings schema version.
const Version = "1.0"

// ConsoleType selects how VM consoles are opened.
type ConsoleType string

const (
	// ConsoleBrowser opens the browser-based console page.
	ConsoleBrowser ConsoleType = "browser"
	// ConsoleNative launches the native console client via its URI scheme.
	ConsoleNative ConsoleType = "native"
)

// DefaultConsoleType is used when no preference has been saved.
const DefaultConsoleType = ConsoleBrowser

// Settings represents the user's persistent preferences.
type Settings struct {
	Version  string `json:"version"`
	Endpoint string `json:"endpoint,omitempty"` // Control plane base URL

	// Console holds the preferred console type. Use ConsoleType() to read
	// it with the default applied.
	Console ConsoleType `json:"console_type,omitempty"`

	// Last-used wizard selections, pre-filled on the next creation.
	LastClusterID string `json:"last_cluster_id,omitempty"`
	LastPoolID    string `json:"last_pool_id,omitempty"`
}

// NewSettings creates Settings with defaults.
func NewSettings() *Settings {
	return &Settings{
		Version: Version,
		Console: DefaultConsoleType,
	}
}

// ConsoleType returns the preferred console type, falling back to the
// default for unset or unrecognized values.
func (s *Settings) ConsoleType() ConsoleType {
	switch s.Console {
	case ConsoleBrowser, ConsoleNative:
		return s.Console
	default:
		return DefaultConsoleType
	}
}

// SetConsoleType records the console preference.
func (s *Settings) SetConsoleType(t ConsoleType) {
	s.Console = t
}

// Clone returns a copy of the settings.
func (s *Settings) Clone() *Settings {
	copied := *s
	return &copied
}
