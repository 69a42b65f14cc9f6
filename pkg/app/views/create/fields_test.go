package create

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantix-cloud/qcli/pkg/wizard"
)

func TestField_CycleWraps(t *testing.T) {
	f := newSelect("", "Kind", []choice{
		{id: "a", label: "A"},
		{id: "b", label: "B"},
		{id: "c", label: "C"},
	}, "a", func(*wizard.State, *field) {})

	f.cycle(-1)
	assert.Equal(t, "c", f.selected().id)

	f.cycle(1)
	assert.Equal(t, "a", f.selected().id)
}

func TestField_SelectStartsAtSelectedID(t *testing.T) {
	f := newSelect("", "Pool", []choice{
		{id: "pool-1", label: "fast"},
		{id: "pool-2", label: "slow"},
	}, "pool-2", func(*wizard.State, *field) {})

	assert.Equal(t, "pool-2", f.selected().id)
}

func TestField_ToggleFlips(t *testing.T) {
	f := newToggle("", "Connected", true, func(*wizard.State, *field) {})

	assert.Equal(t, "yes", f.value())
	f.cycle(1)
	assert.Equal(t, "no", f.value())
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 4, parseInt(" 4 ", 0))
	assert.Equal(t, 0, parseInt("abc", 0))
	assert.Equal(t, int64(2048), parseInt64("2048", 0))
	assert.Equal(t, int64(-1), parseInt64("", -1))
}

func TestSplitKeys(t *testing.T) {
	keys := splitKeys("ssh-ed25519 AAA a@b, ssh-rsa BBB c@d, ")
	assert.Equal(t, []string{"ssh-ed25519 AAA a@b", "ssh-rsa BBB c@d"}, keys)

	assert.Nil(t, splitKeys(""))
	assert.Nil(t, splitKeys(" , ,"))
}
