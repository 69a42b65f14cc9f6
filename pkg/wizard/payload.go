package wizard

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/cloudinit"
)

// BuildCreateRequest assembles the VM-creation payload from the accumulated
// form state. origin is the console's own origin, used for the agent
// install-script URL in generated user-data. The state is expected to have
// passed ValidateAll; assembly itself only fails on inconsistencies the
// validator cannot see (for example an image vanishing between validation
// and submission).
func BuildCreateRequest(s *State, inv *api.Inventory, origin string) (api.CreateVMRequest, error) {
	req := api.CreateVMRequest{
		Name:        s.Name,
		ProjectID:   s.ProjectID,
		Description: s.Description,
		Labels:      buildLabels(s, inv),
		Spec: api.VMSpec{
			CPU: api.CPUConfig{
				Cores:   s.Cores,
				Sockets: s.Sockets,
			},
			Memory: api.MemoryConfig{
				SizeMiB: s.MemoryMiB,
			},
			NICs: buildNICs(s),
		},
	}

	if !s.AutoPlacement && s.NodeID != "" {
		req.NodeID = s.NodeID
	}

	disks, err := buildDisks(s, inv)
	if err != nil {
		return api.CreateVMRequest{}, err
	}
	req.Spec.Disks = disks

	if s.BootMedia == BootCloudImage && s.CloudInit.Enabled {
		req.Spec.Provisioning = &api.Provisioning{
			CloudInit: &api.CloudInitConfig{
				UserData: cloudinit.UserData(cloudinit.Options{
					VMName:       s.Name,
					User:         s.CloudInit.User,
					Password:     s.CloudInit.Password,
					SSHKeys:      s.CloudInit.SSHKeys,
					InstallAgent: s.CloudInit.InstallAgent,
					Origin:       origin,
					Override:     s.CloudInit.Override,
				}),
				MetaData: cloudinit.MetaData(s.Name),
			},
		}
	}

	return req, nil
}

// buildDisks maps the disk list in order. Only the first disk is
// image-backed: it is the boot disk when provisioning from a cloud image.
func buildDisks(s *State, inv *api.Inventory) ([]api.DiskPayload, error) {
	backingFile := ""
	if s.BootMedia == BootCloudImage {
		img := inv.FindImage(s.ImageID)
		if img == nil {
			return nil, fmt.Errorf("cloud image %s is no longer registered", s.ImageID)
		}
		backingFile = img.Path
	}

	return lo.Map(s.Disks, func(d DiskSpec, i int) api.DiskPayload {
		payload := api.DiskPayload{
			ID:      d.Name,
			SizeGiB: d.SizeGiB,
		}
		if i == 0 {
			payload.BackingFile = backingFile
		}
		if d.Source == SourceExisting {
			payload.VolumeID = d.VolumeID
		}
		return payload
	}), nil
}

// buildNICs passes interfaces through, dropping the display-only name.
func buildNICs(s *State) []api.NICPayload {
	return lo.Map(s.NICs, func(nic NetworkInterface, _ int) api.NICPayload {
		return api.NICPayload{
			NetworkID: nic.NetworkID,
			Connected: nic.Connected,
		}
	})
}

// buildLabels assembles the optional labels map. The host label is only set
// for manual placement; with automatic placement the scheduler's choice is
// not known at submission time.
func buildLabels(s *State, inv *api.Inventory) map[string]string {
	labels := map[string]string{}

	if v := strings.TrimSpace(s.Department); v != "" {
		labels["department"] = v
	}
	if v := strings.TrimSpace(s.CostCenter); v != "" {
		labels["cost-center"] = v
	}

	if !s.AutoPlacement && s.NodeID != "" {
		if node := inv.FindNode(s.NodeID); node != nil {
			labels["host"] = node.Hostname
		}
	}

	if s.BootMedia == BootCloudImage {
		if img := inv.FindImage(s.ImageID); img != nil && img.OSDistro != "" {
			labels["os"] = img.OSDistro
		}
	}

	if len(labels) == 0 {
		return nil
	}
	return labels
}
