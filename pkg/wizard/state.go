package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// errNotInList reports a remove of an ID the list does not contain.
var errNotInList = errors.New("not present")

// BootMediaKind is the provisioning strategy for a new VM.
type BootMediaKind string

const (
	BootNone       BootMediaKind = "none"
	BootISO        BootMediaKind = "iso"
	BootCloudImage BootMediaKind = "cloud-image"
	BootTemplate   BootMediaKind = "ova-template"
)

// String returns the display name of the boot media kind.
func (k BootMediaKind) String() string {
	switch k {
	case BootNone:
		return "None (empty VM)"
	case BootISO:
		return "ISO (manual install)"
	case BootCloudImage:
		return "Cloud Image"
	case BootTemplate:
		return "OVA Template"
	default:
		return string(k)
	}
}

// ProvisioningMode is how a disk's backing storage is allocated.
type ProvisioningMode string

const (
	ProvisionThin  ProvisioningMode = "thin"
	ProvisionThick ProvisioningMode = "thick"
)

// DiskSource distinguishes fresh disks from attached existing volumes.
type DiskSource string

const (
	SourceNew      DiskSource = "new"
	SourceExisting DiskSource = "existing"
)

// NetworkInterface is one NIC in the wizard's hardware step.
// NetworkName is denormalized for rendering and never submitted.
type NetworkInterface struct {
	ID          string
	NetworkID   string
	NetworkName string
	Connected   bool
}

// DiskSpec is one disk in the wizard's storage step.
type DiskSpec struct {
	ID           string
	Name         string
	SizeGiB      int64
	Provisioning ProvisioningMode
	Source       DiskSource
	// VolumeID references an existing volume when Source is SourceExisting.
	VolumeID string
}

// CloudInitState is the cloud-init sub-record of the form.
type CloudInitState struct {
	Enabled         bool
	User            string
	Password        string
	ConfirmPassword string
	SSHKeys         []string
	// Override replaces the generated user-data document verbatim.
	Override     string
	InstallAgent bool
}

// State is the complete form state of one creation session. It is created
// with defaults when the wizard opens and discarded on close; nothing is
// persisted. All boot-media kinds keep their fields when another kind is
// selected — only the active kind is consulted at assembly time.
type State struct {
	// Identity
	Name        string
	Description string
	Owner       string
	ProjectID   string
	ScheduledAt *time.Time

	// Placement
	ClusterID     string
	NodeID        string
	AutoPlacement bool

	// Hardware
	Cores     int
	Sockets   int
	MemoryMiB int64
	NICs      []NetworkInterface

	// Boot media. Exactly one kind is active at a time.
	BootMedia  BootMediaKind
	ImageID    string
	ISOID      string
	TemplateID string
	CloudInit  CloudInitState

	// Storage. Disks[0] is the boot disk when BootMedia is a cloud image.
	PoolID string
	Disks  []DiskSpec

	// Metadata
	Department string
	CostCenter string
	Tags       []string
	Notes      string
}

// NewState creates wizard state with the static defaults.
func NewState() *State {
	return &State{
		ProjectID:     "default",
		AutoPlacement: true,
		Cores:         2,
		Sockets:       1,
		MemoryMiB:     2048,
		NICs: []NetworkInterface{
			{ID: uuid.New().String(), Connected: true},
		},
		BootMedia: BootNone,
		CloudInit: CloudInitState{
			Enabled: true,
			User:    "ubuntu",
		},
		Disks: []DiskSpec{
			{
				ID:           uuid.New().String(),
				Name:         "disk-0",
				SizeGiB:      20,
				Provisioning: ProvisionThin,
				Source:       SourceNew,
			},
		},
	}
}

// Apply mutates the state through a merge-style updater. All wizard
// mutation goes through here so the TUI never holds partial copies.
func (s *State) Apply(mutate func(*State)) {
	mutate(s)
}

// AddNIC appends a new interface attached to the given network.
func (s *State) AddNIC(networkID, networkName string) *NetworkInterface {
	nic := NetworkInterface{
		ID:          uuid.New().String(),
		NetworkID:   networkID,
		NetworkName: networkName,
		Connected:   true,
	}
	s.NICs = append(s.NICs, nic)
	return &s.NICs[len(s.NICs)-1]
}

// RemoveNIC removes the interface with the given ID. At least one interface
// must remain.
func (s *State) RemoveNIC(id string) error {
	if len(s.NICs) <= 1 {
		return fmt.Errorf("at least one network interface is required")
	}

	before := len(s.NICs)
	s.NICs = lo.Reject(s.NICs, func(nic NetworkInterface, _ int) bool {
		return nic.ID == id
	})
	if len(s.NICs) == before {
		return fmt.Errorf("network interface %s: %w", id, errNotInList)
	}
	return nil
}

// AddDisk appends a new thin-provisioned disk of the given size.
func (s *State) AddDisk(sizeGiB int64) *DiskSpec {
	disk := DiskSpec{
		ID:           uuid.New().String(),
		Name:         fmt.Sprintf("disk-%d", len(s.Disks)),
		SizeGiB:      sizeGiB,
		Provisioning: ProvisionThin,
		Source:       SourceNew,
	}
	s.Disks = append(s.Disks, disk)
	return &s.Disks[len(s.Disks)-1]
}

// AttachVolume appends a disk referencing an existing volume. Existing
// volumes do not consume new pool capacity.
func (s *State) AttachVolume(volumeID string, sizeGiB int64) *DiskSpec {
	disk := DiskSpec{
		ID:           uuid.New().String(),
		Name:         fmt.Sprintf("disk-%d", len(s.Disks)),
		SizeGiB:      sizeGiB,
		Provisioning: ProvisionThin,
		Source:       SourceExisting,
		VolumeID:     volumeID,
	}
	s.Disks = append(s.Disks, disk)
	return &s.Disks[len(s.Disks)-1]
}

// RemoveDisk removes the disk with the given ID.
func (s *State) RemoveDisk(id string) error {
	before := len(s.Disks)
	s.Disks = lo.Reject(s.Disks, func(d DiskSpec, _ int) bool {
		return d.ID == id
	})
	if len(s.Disks) == before {
		return fmt.Errorf("disk %s: %w", id, errNotInList)
	}
	return nil
}

// NewDiskGiB returns the total size of disks that allocate new pool
// capacity. Existing-volume disks are excluded.
func (s *State) NewDiskGiB() int64 {
	return lo.SumBy(s.Disks, func(d DiskSpec) int64 {
		if d.Source == SourceNew {
			return d.SizeGiB
		}
		return 0
	})
}

// AddSSHKey records a collected SSH public key.
func (s *State) AddSSHKey(key string) {
	s.CloudInit.SSHKeys = append(s.CloudInit.SSHKeys, key)
}

// RemoveSSHKey removes the key at the given index.
func (s *State) RemoveSSHKey(idx int) {
	if idx < 0 || idx >= len(s.CloudInit.SSHKeys) {
		return
	}
	s.CloudInit.SSHKeys = append(s.CloudInit.SSHKeys[:idx], s.CloudInit.SSHKeys[idx+1:]...)
}
