package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://qvdc.local:8443"

func TestBuildCreateRequest_Basic(t *testing.T) {
	s := validCloudImageState()
	s.Description = "frontend server"
	s.Cores = 2
	s.Sockets = 1
	s.MemoryMiB = 4096

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)

	assert.Equal(t, "web-01", req.Name)
	assert.Equal(t, "default", req.ProjectID)
	assert.Equal(t, "frontend server", req.Description)
	assert.Equal(t, 2, req.Spec.CPU.Cores)
	assert.Equal(t, 1, req.Spec.CPU.Sockets)
	assert.Equal(t, int64(4096), req.Spec.Memory.SizeMiB)
}

func TestBuildCreateRequest_NodeOnlyForManualPlacement(t *testing.T) {
	s := validCloudImageState()
	s.NodeID = "node-1"

	// Automatic placement drops the node
	s.AutoPlacement = true
	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Empty(t, req.NodeID)
	assert.NotContains(t, req.Labels, "host")

	// Manual placement carries it, plus the hostname label
	s.AutoPlacement = false
	req, err = BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Equal(t, "node-1", req.NodeID)
	assert.Equal(t, "hv-01", req.Labels["host"])
}

func TestBuildCreateRequest_OnlyFirstDiskImageBacked(t *testing.T) {
	s := validCloudImageState()
	s.AddDisk(50)
	s.AddDisk(80)

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)

	require.Len(t, req.Spec.Disks, 3)
	assert.Equal(t, "/images/ubuntu22.qcow2", req.Spec.Disks[0].BackingFile)
	assert.Empty(t, req.Spec.Disks[1].BackingFile)
	assert.Empty(t, req.Spec.Disks[2].BackingFile)

	// Order and names preserved
	assert.Equal(t, "disk-0", req.Spec.Disks[0].ID)
	assert.Equal(t, int64(50), req.Spec.Disks[1].SizeGiB)
	assert.Equal(t, int64(80), req.Spec.Disks[2].SizeGiB)
}

func TestBuildCreateRequest_ExistingVolumeCarriesVolumeID(t *testing.T) {
	s := validCloudImageState()
	s.AttachVolume("vol-1", 40)

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)

	require.Len(t, req.Spec.Disks, 2)
	assert.Empty(t, req.Spec.Disks[0].VolumeID)
	assert.Equal(t, "vol-1", req.Spec.Disks[1].VolumeID)
	assert.Empty(t, req.Spec.Disks[1].BackingFile)
}

func TestBuildCreateRequest_NoBackingFileWithoutCloudImage(t *testing.T) {
	s := validCloudImageState()
	s.BootMedia = BootISO
	s.ISOID = "ubuntu-24.04-live-server"

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Empty(t, req.Spec.Disks[0].BackingFile)
	assert.Nil(t, req.Spec.Provisioning)
}

func TestBuildCreateRequest_MissingImageFails(t *testing.T) {
	s := validCloudImageState()
	s.ImageID = "cloud-gone"

	_, err := BuildCreateRequest(s, testInventory(), testOrigin)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no longer registered")
}

func TestBuildCreateRequest_NICsDropDisplayName(t *testing.T) {
	s := validCloudImageState()
	s.NICs = nil
	s.AddNIC("net-1", "backbone")
	nic := s.AddNIC("net-2", "dmz")
	nic.Connected = false

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)

	require.Len(t, req.Spec.NICs, 2)
	assert.Equal(t, "net-1", req.Spec.NICs[0].NetworkID)
	assert.True(t, req.Spec.NICs[0].Connected)
	assert.Equal(t, "net-2", req.Spec.NICs[1].NetworkID)
	assert.False(t, req.Spec.NICs[1].Connected)
}

func TestBuildCreateRequest_Labels(t *testing.T) {
	s := validCloudImageState()
	s.Department = "engineering"
	s.CostCenter = "cc-42"

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)

	assert.Equal(t, "engineering", req.Labels["department"])
	assert.Equal(t, "cc-42", req.Labels["cost-center"])
	assert.Equal(t, "ubuntu", req.Labels["os"])
}

func TestBuildCreateRequest_NoLabelsIsNil(t *testing.T) {
	s := NewState()
	s.Name = "web-01"
	s.BootMedia = BootNone

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Nil(t, req.Labels)
}

func TestBuildCreateRequest_CloudInitOnlyWhenEnabled(t *testing.T) {
	s := validCloudImageState()

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	require.NotNil(t, req.Spec.Provisioning)
	require.NotNil(t, req.Spec.Provisioning.CloudInit)

	s.CloudInit.Enabled = false
	req, err = BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Nil(t, req.Spec.Provisioning)
}

func TestBuildCreateRequest_CloudInitOverrideVerbatim(t *testing.T) {
	override := "#cloud-config\nruncmd:\n  - echo hi"
	s := validCloudImageState()
	s.CloudInit.Override = override

	req, err := BuildCreateRequest(s, testInventory(), testOrigin)
	require.NoError(t, err)
	assert.Equal(t, override, req.Spec.Provisioning.CloudInit.UserData)
}

// End-to-end scenario from the creation flow: password access, agent
// install, no SSH keys.
func TestBuildCreateRequest_EndToEnd(t *testing.T) {
	s := NewState()
	s.Name = "web-01"
	s.ClusterID = "cl-1"
	s.Cores = 2
	s.Sockets = 1
	s.MemoryMiB = 4096
	s.BootMedia = BootCloudImage
	s.ImageID = "cloud-ubuntu22"
	s.CloudInit.Password = "Str0ngPass!"
	s.CloudInit.ConfirmPassword = "Str0ngPass!"
	s.CloudInit.InstallAgent = true
	s.PoolID = "pool-1"

	inv := testInventory()
	require.True(t, ValidateAll(s, inv).Valid)

	req, err := BuildCreateRequest(s, inv, testOrigin)
	require.NoError(t, err)

	userData := req.Spec.Provisioning.CloudInit.UserData
	assert.Contains(t, userData, "ssh_pwauth: true")
	assert.Contains(t, userData, "chpasswd:")
	assert.Contains(t, userData, "ubuntu:Str0ngPass!")
	assert.Contains(t, userData, "curl -fsSL https://qvdc.local:8443/api/agent/install.sh | sh")

	assert.Equal(t, "instance-id: web-01\nlocal-hostname: web-01", req.Spec.Provisioning.CloudInit.MetaData)
}
