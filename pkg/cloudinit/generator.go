// Package cloudinit generates cloud-init user-data and meta-data documents
// for VM provisioning from cloud images.
package cloudinit

import (
	"fmt"
	"strings"
)

const (
	// DefaultUser is the guest user created when none is configured.
	DefaultUser = "ubuntu"

	// Marker files created in the guest agent hook directories so the
	// install script can detect a console-provisioned guest.
	freezeHookMarker = "/etc/qemu/fsfreeze-hook.d/.quantix"
	thawHookMarker   = "/etc/qemu/fsthaw-hook.d/.quantix"
)

// Options describes the cloud-init document to generate.
type Options struct {
	// VMName seeds hostname, fqdn, and the instance-id.
	VMName string
	// User is the default guest user; falls back to DefaultUser when empty.
	User string
	// Password, when non-empty, enables SSH password auth and sets the
	// user's password. Note: the password travels in plaintext inside the
	// user-data payload; the backend contract offers no alternative.
	Password string
	// SSHKeys are authorized_keys entries. Syntax is validated when the
	// keys are collected, not here.
	SSHKeys []string
	// InstallAgent adds the management-agent bootstrap to runcmd. The
	// bootstrap pipes a script fetched from Origin into a root shell
	// without integrity verification; this mirrors the backend's install
	// endpoint contract.
	InstallAgent bool
	// Origin is the console's own origin, used to build the agent install
	// script URL.
	Origin string
	// Override, when non-empty, is used verbatim as the whole user-data
	// document and every other option except VMName is ignored.
	Override string
}

// UserData renders the #cloud-config document. Output is deterministic:
// identical Options produce byte-identical documents. Line order matters to
// cloud-init and must not be reordered.
func UserData(opts Options) string {
	if strings.TrimSpace(opts.Override) != "" {
		return opts.Override
	}

	user := opts.User
	if user == "" {
		user = DefaultUser
	}

	lines := []string{
		"#cloud-config",
		fmt.Sprintf("hostname: %s", opts.VMName),
		fmt.Sprintf("fqdn: %s", opts.VMName),
		"manage_etc_hosts: true",
		"users:",
		fmt.Sprintf("  - name: %s", user),
		"    groups: [sudo, adm]",
		"    sudo: ALL=(ALL) NOPASSWD:ALL",
		"    shell: /bin/bash",
		"    lock_passwd: false",
	}

	if len(opts.SSHKeys) > 0 {
		lines = append(lines, "    ssh_authorized_keys:")
		for _, key := range opts.SSHKeys {
			lines = append(lines, fmt.Sprintf("      - %s", strings.TrimSpace(key)))
		}
	}

	if opts.Password != "" {
		lines = append(lines,
			"ssh_pwauth: true",
			"chpasswd:",
			"  expire: false",
			"  list: |",
			fmt.Sprintf("    %s:%s", user, opts.Password),
		)
	}

	lines = append(lines,
		"package_update: true",
		"packages:",
		"  - qemu-guest-agent",
	)

	if opts.InstallAgent {
		lines = append(lines,
			"write_files:",
			fmt.Sprintf("  - path: %s", freezeHookMarker),
			"    content: \"\"",
			fmt.Sprintf("  - path: %s", thawHookMarker),
			"    content: \"\"",
		)
	}

	lines = append(lines,
		"runcmd:",
		"  - systemctl enable qemu-guest-agent",
		"  - systemctl start qemu-guest-agent",
	)
	if opts.InstallAgent {
		lines = append(lines, fmt.Sprintf("  - curl -fsSL %s/api/agent/install.sh | sh", opts.Origin))
	}

	return strings.Join(lines, "\n")
}

// MetaData renders the companion meta-data document.
func MetaData(vmName string) string {
	return fmt.Sprintf("instance-id: %s\nlocal-hostname: %s", vmName, vmName)
}
