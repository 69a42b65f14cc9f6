// Package console builds console access URLs for virtual machines: a
// deep link for the native client and a path on the browser console page.
package console

import (
	"fmt"
	"net/url"

	"github.com/quantix-cloud/qcli/pkg/settings"
)

// Scheme is the URI scheme registered by the native console client.
const Scheme = "qvmrc"

// NativeURL builds the native client deep link for a VM console.
// base is the control plane origin the client should connect back to.
func NativeURL(base, vmID, vmName string) string {
	params := url.Values{}
	params.Set("url", base)
	params.Set("vmId", vmID)
	params.Set("vmName", vmName)
	return fmt.Sprintf("%s://connect?%s", Scheme, params.Encode())
}

// BrowserURL builds the browser console page URL for a VM.
func BrowserURL(base, vmID string) string {
	return fmt.Sprintf("%s/console/%s", base, url.PathEscape(vmID))
}

// LaunchURL picks the console URL according to the user's preference.
func LaunchURL(prefs *settings.Settings, base, vmID, vmName string) string {
	if prefs.ConsoleType() == settings.ConsoleNative {
		return NativeURL(base, vmID, vmName)
	}
	return BrowserURL(base, vmID)
}
