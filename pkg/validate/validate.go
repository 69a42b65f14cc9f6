// Package validate provides pure field-level validators shared by the
// creation wizard and the CLI.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/ssh"
)

const (
	// MaxVMNameLength is the maximum length for a VM name.
	MaxVMNameLength = 63
	// MinPasswordLength is the minimum length for a guest password.
	MinPasswordLength = 8
)

// validVMNamePattern matches lowercase alphanumerics and hyphens with
// alphanumeric endpoints (RFC 1123 label).
var validVMNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// VMName validates a virtual machine name.
// Returns an error describing the first problem found.
func VMName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxVMNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxVMNameLength)
	}

	if !validVMNamePattern.MatchString(name) {
		return fmt.Errorf("name can only contain lowercase letters, numbers, and hyphens, and must start and end with a letter or number")
	}

	return nil
}

// Hostname validates a hostname derived from a VM name (RFC 1123).
func Hostname(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("hostname is required")
	}

	hostnameRegex := regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	if !hostnameRegex.MatchString(strings.ToLower(s)) {
		return fmt.Errorf("invalid hostname: must be alphanumeric with optional hyphens, no leading/trailing hyphens")
	}

	return nil
}

// Password validates a guest password together with its confirmation.
func Password(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	return nil
}

// SSHPublicKey validates an SSH public key in authorized_keys format.
func SSHPublicKey(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("SSH public key is required")
	}

	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(s)); err != nil {
		return fmt.Errorf("invalid SSH public key: %w", err)
	}

	return nil
}
