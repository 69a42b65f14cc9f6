package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testED25519Key = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIMt4RmHplan7NCJJtZEque5vBjvgeAYMncR45lJKG/mL admin@fedora"

func TestVMName_Valid(t *testing.T) {
	assert.NoError(t, VMName("web-01"))
	assert.NoError(t, VMName("a"))
	assert.NoError(t, VMName("db-replica-2"))
}

func TestVMName_Empty(t *testing.T) {
	err := VMName("")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestVMName_TooLong(t *testing.T) {
	name := strings.Repeat("a", MaxVMNameLength+1)
	err := VMName(name)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceed")
}

func TestVMName_InvalidCharacters(t *testing.T) {
	assert.Error(t, VMName("Web_01"))
	assert.Error(t, VMName("web 01"))
	assert.Error(t, VMName("-web"))
	assert.Error(t, VMName("web-"))
}

func TestHostname_Valid(t *testing.T) {
	assert.NoError(t, Hostname("web-01"))
	assert.NoError(t, Hostname("Ubuntu-Server")) // case folded
}

func TestHostname_Invalid(t *testing.T) {
	assert.Error(t, Hostname(""))
	assert.Error(t, Hostname("-web"))
	assert.Error(t, Hostname("web.01"))
}

func TestPassword_Valid(t *testing.T) {
	assert.NoError(t, Password("Str0ngPass!", "Str0ngPass!"))
}

func TestPassword_TooShort(t *testing.T) {
	err := Password("short", "short")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestPassword_Mismatch(t *testing.T) {
	err := Password("Str0ngPass!", "Str0ngPass?")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
}

func TestSSHPublicKey_Valid(t *testing.T) {
	assert.NoError(t, SSHPublicKey(testED25519Key))
	assert.NoError(t, SSHPublicKey("  "+testED25519Key+"\n"))
}

func TestSSHPublicKey_Invalid(t *testing.T) {
	assert.Error(t, SSHPublicKey(""))
	assert.Error(t, SSHPublicKey("ssh-ed25519 not-a-key"))
	assert.Error(t, SSHPublicKey("just some text"))
}
