package console

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-cloud/qcli/pkg/settings"
)

func TestNativeURL(t *testing.T) {
	raw := NativeURL("https://qvdc.local:8443", "vm-1", "web 01")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, Scheme, parsed.Scheme)
	assert.Equal(t, "connect", parsed.Host)
	assert.Equal(t, "https://qvdc.local:8443", parsed.Query().Get("url"))
	assert.Equal(t, "vm-1", parsed.Query().Get("vmId"))
	assert.Equal(t, "web 01", parsed.Query().Get("vmName"))
}

func TestBrowserURL(t *testing.T) {
	assert.Equal(t, "https://qvdc.local:8443/console/vm-1",
		BrowserURL("https://qvdc.local:8443", "vm-1"))
}

func TestLaunchURL_FollowsPreference(t *testing.T) {
	prefs := settings.NewSettings()

	// Default preference is the browser console
	assert.Equal(t, BrowserURL("https://q", "vm-1"), LaunchURL(prefs, "https://q", "vm-1", "web"))

	prefs.SetConsoleType(settings.ConsoleNative)
	assert.Equal(t, NativeURL("https://q", "vm-1", "web"), LaunchURL(prefs, "https://q", "vm-1", "web"))
}
