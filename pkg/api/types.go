// Package api provides the HTTP/JSON client for the Quantix control plane.
// It exposes typed read models for the inventory the creation wizard consumes
// and the request types for VM creation and lifecycle actions.
package api

import "time"

// VMState represents the power state of a virtual machine.
type VMState string

const (
	VMStatePending  VMState = "PENDING"
	VMStateCreating VMState = "CREATING"
	VMStateRunning  VMState = "RUNNING"
	VMStateStopping VMState = "STOPPING"
	VMStateStopped  VMState = "STOPPED"
	VMStateError    VMState = "ERROR"
)

// VM is a summary of a virtual machine as reported by the control plane.
type VM struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	NodeID      string    `json:"nodeId,omitempty"`
	State       VMState   `json:"state"`
	Cores       int       `json:"cores"`
	MemoryMiB   int64     `json:"memoryMib"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VMMetrics is the canonical metrics shape. Backend responses use several
// field name variants; normalizeMetrics maps them all into this type once,
// at the decode boundary.
type VMMetrics struct {
	CPUPercent       float64
	MemoryUsedBytes  int64
	MemoryTotalBytes int64
	DiskReadBps      int64
	DiskWriteBps     int64
}

// Node is a hypervisor host with allocated vs. capacity resources.
type Node struct {
	ID                 string `json:"id"`
	Hostname           string `json:"hostname"`
	ClusterID          string `json:"clusterId"`
	State              string `json:"state"`
	CPUCapacity        int    `json:"cpuCapacity"`
	CPUAllocated       int    `json:"cpuAllocated"`
	MemoryCapacityMiB  int64  `json:"memoryCapacityMib"`
	MemoryAllocatedMiB int64  `json:"memoryAllocatedMib"`
}

// Cluster is a named group of nodes.
type Cluster struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Network is a virtual network NICs attach to.
type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StoragePool is a backend-managed capacity unit for virtual disks.
// An empty AssignedNodeIDs list means the pool is reachable from any node.
type StoragePool struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CapacityBytes   int64    `json:"capacityBytes"`
	AvailableBytes  int64    `json:"availableBytes"`
	AssignedNodeIDs []string `json:"assignedNodeIds,omitempty"`
}

// AvailableGiB returns the pool's free space in binary GiB.
func (p StoragePool) AvailableGiB() int64 {
	return p.AvailableBytes / (1024 * 1024 * 1024)
}

// ImageStatus represents the readiness of a cloud image.
type ImageStatus string

const (
	ImageStatusReady       ImageStatus = "ready"
	ImageStatusDownloading ImageStatus = "downloading"
	ImageStatusError       ImageStatus = "error"
)

// CloudImage is a cloud image registered with the control plane.
type CloudImage struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	OSDistro string      `json:"osDistro,omitempty"`
	Version  string      `json:"version,omitempty"`
	Path     string      `json:"path,omitempty"`
	Status   ImageStatus `json:"status"`
	Progress int         `json:"progress,omitempty"`
}

// Ready reports whether the image can back a new disk.
// Images mid-download or without a backing path are not usable.
func (i CloudImage) Ready() bool {
	return i.Status == ImageStatusReady && i.Path != ""
}

// ISO is an installer image. Catalog placeholders may have no path yet.
type ISO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

// OVATemplate is a pre-built template with embedded hardware hints.
type OVATemplate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Cores     int    `json:"cores,omitempty"`
	MemoryMiB int64  `json:"memoryMib,omitempty"`
	DiskGiB   int64  `json:"diskGib,omitempty"`
}

// Volume is a detached disk volume that can be attached to a new VM
// instead of allocating fresh pool capacity.
type Volume struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	PoolID  string `json:"poolId,omitempty"`
	SizeGiB int64  `json:"sizeGib"`
	InUse   bool   `json:"inUse,omitempty"`
}

// Inventory is a snapshot of every remote read model the wizard consults.
// The wizard only reads it; refreshing is the caller's concern.
type Inventory struct {
	Nodes     []Node
	Clusters  []Cluster
	Networks  []Network
	Pools     []StoragePool
	Images    []CloudImage
	ISOs      []ISO
	Templates []OVATemplate
	Volumes   []Volume
}

// FindNode returns the node with the given ID, or nil.
func (inv *Inventory) FindNode(id string) *Node {
	for i := range inv.Nodes {
		if inv.Nodes[i].ID == id {
			return &inv.Nodes[i]
		}
	}
	return nil
}

// FindPool returns the storage pool with the given ID, or nil.
func (inv *Inventory) FindPool(id string) *StoragePool {
	for i := range inv.Pools {
		if inv.Pools[i].ID == id {
			return &inv.Pools[i]
		}
	}
	return nil
}

// FindImage returns the cloud image with the given ID, or nil.
func (inv *Inventory) FindImage(id string) *CloudImage {
	for i := range inv.Images {
		if inv.Images[i].ID == id {
			return &inv.Images[i]
		}
	}
	return nil
}

// FindISO returns the ISO with the given ID, or nil.
func (inv *Inventory) FindISO(id string) *ISO {
	for i := range inv.ISOs {
		if inv.ISOs[i].ID == id {
			return &inv.ISOs[i]
		}
	}
	return nil
}

// FindTemplate returns the OVA template with the given ID, or nil.
func (inv *Inventory) FindTemplate(id string) *OVATemplate {
	for i := range inv.Templates {
		if inv.Templates[i].ID == id {
			return &inv.Templates[i]
		}
	}
	return nil
}

// FindVolume returns the volume with the given ID, or nil.
func (inv *Inventory) FindVolume(id string) *Volume {
	for i := range inv.Volumes {
		if inv.Volumes[i].ID == id {
			return &inv.Volumes[i]
		}
	}
	return nil
}

// CreateVMRequest is the payload of the VM-creation RPC.
type CreateVMRequest struct {
	Name        string            `json:"name"`
	ProjectID   string            `json:"projectId"`
	Description string            `json:"description,omitempty"`
	NodeID      string            `json:"nodeId,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Spec        VMSpec            `json:"spec"`
}

// VMSpec is the desired configuration of a new VM.
type VMSpec struct {
	CPU          CPUConfig     `json:"cpu"`
	Memory       MemoryConfig  `json:"memory"`
	Disks        []DiskPayload `json:"disks"`
	NICs         []NICPayload  `json:"nics"`
	Provisioning *Provisioning `json:"provisioning,omitempty"`
}

// CPUConfig holds the CPU topology.
type CPUConfig struct {
	Cores   int `json:"cores"`
	Sockets int `json:"sockets"`
}

// MemoryConfig holds the memory size.
type MemoryConfig struct {
	SizeMiB int64 `json:"sizeMib"`
}

// DiskPayload describes one disk in the creation request. Only the boot
// disk carries a BackingFile; attached existing volumes carry a VolumeID.
type DiskPayload struct {
	ID          string `json:"id"`
	SizeGiB     int64  `json:"sizeGib"`
	BackingFile string `json:"backingFile,omitempty"`
	VolumeID    string `json:"volumeId,omitempty"`
}

// NICPayload describes one network interface in the creation request.
type NICPayload struct {
	NetworkID string `json:"networkId"`
	Connected bool   `json:"connected"`
}

// Provisioning holds guest provisioning configuration.
type Provisioning struct {
	CloudInit *CloudInitConfig `json:"cloudInit,omitempty"`
}

// CloudInitConfig carries the generated cloud-init documents.
type CloudInitConfig struct {
	UserData string `json:"userData,omitempty"`
	MetaData string `json:"metaData,omitempty"`
}

// AgentStatus is the downgraded view of guest-agent reachability.
// Agent failures are never hard errors; they collapse into Connected=false
// with a human-readable Reason.
type AgentStatus struct {
	Connected bool   `json:"connected"`
	Version   string `json:"version,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
