package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState()

	assert.Equal(t, "default", s.ProjectID)
	assert.True(t, s.AutoPlacement)
	assert.Equal(t, 2, s.Cores)
	assert.Equal(t, 1, s.Sockets)
	assert.Equal(t, int64(2048), s.MemoryMiB)
	assert.Equal(t, BootNone, s.BootMedia)
	assert.True(t, s.CloudInit.Enabled)
	assert.Equal(t, "ubuntu", s.CloudInit.User)
	assert.Len(t, s.NICs, 1)
	assert.Len(t, s.Disks, 1)
	assert.Equal(t, SourceNew, s.Disks[0].Source)
}

func TestState_Apply(t *testing.T) {
	s := NewState()

	s.Apply(func(st *State) {
		st.Name = "web-01"
		st.Cores = 4
	})

	assert.Equal(t, "web-01", s.Name)
	assert.Equal(t, 4, s.Cores)
	// Untouched fields keep their values
	assert.Equal(t, int64(2048), s.MemoryMiB)
}

func TestState_AddRemoveNIC(t *testing.T) {
	s := NewState()

	nic := s.AddNIC("net-1", "backbone")
	assert.Len(t, s.NICs, 2)
	assert.Equal(t, "net-1", nic.NetworkID)
	assert.True(t, nic.Connected)

	assert.NoError(t, s.RemoveNIC(nic.ID))
	assert.Len(t, s.NICs, 1)
}

func TestState_RemoveLastNIC(t *testing.T) {
	s := NewState()

	err := s.RemoveNIC(s.NICs[0].ID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one")
	assert.Len(t, s.NICs, 1)
}

func TestState_RemoveUnknownNIC(t *testing.T) {
	s := NewState()
	s.AddNIC("net-1", "backbone")

	assert.ErrorIs(t, s.RemoveNIC("missing"), errNotInList)
	assert.Len(t, s.NICs, 2)
}

func TestState_AddRemoveDisk(t *testing.T) {
	s := NewState()

	disk := s.AddDisk(50)
	assert.Len(t, s.Disks, 2)
	assert.Equal(t, "disk-1", disk.Name)
	assert.Equal(t, int64(50), disk.SizeGiB)
	assert.Equal(t, SourceNew, disk.Source)

	assert.NoError(t, s.RemoveDisk(disk.ID))
	assert.Len(t, s.Disks, 1)
}

func TestState_AttachVolume(t *testing.T) {
	s := NewState()

	disk := s.AttachVolume("vol-7", 100)
	assert.Equal(t, SourceExisting, disk.Source)
	assert.Equal(t, "vol-7", disk.VolumeID)
}

func TestState_NewDiskGiB_ExcludesExistingVolumes(t *testing.T) {
	s := NewState() // one 20 GiB new disk
	s.AddDisk(30)
	s.AttachVolume("vol-7", 500)

	assert.Equal(t, int64(50), s.NewDiskGiB())
}

func TestState_SSHKeys(t *testing.T) {
	s := NewState()

	s.AddSSHKey("ssh-ed25519 AAAA one")
	s.AddSSHKey("ssh-ed25519 BBBB two")
	assert.Len(t, s.CloudInit.SSHKeys, 2)

	s.RemoveSSHKey(0)
	assert.Equal(t, []string{"ssh-ed25519 BBBB two"}, s.CloudInit.SSHKeys)

	// Out of range is a no-op
	s.RemoveSSHKey(5)
	assert.Len(t, s.CloudInit.SSHKeys, 1)
}

func TestStep_NextPrev(t *testing.T) {
	assert.Equal(t, StepPlacement, StepIdentity.Next())
	assert.Equal(t, StepReview, StepReview.Next())
	assert.Equal(t, StepIdentity, StepIdentity.Prev())
	assert.Equal(t, StepMetadata, StepReview.Prev())
}

func TestStep_String(t *testing.T) {
	assert.Equal(t, "Identity", StepIdentity.String())
	assert.Equal(t, "Review", StepReview.String())
	assert.Equal(t, "Unknown", Step(99).String())
}
