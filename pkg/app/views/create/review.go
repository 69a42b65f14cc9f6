package create

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/quantix-cloud/qcli/pkg/app"
	"github.com/quantix-cloud/qcli/pkg/wizard"
)

// renderReview renders the final summary before submission.
func (m *Model) renderReview() string {
	s := m.state
	var lines []string

	add := func(label, value string) {
		if value == "" {
			value = "-"
		}
		lines = append(lines, fmt.Sprintf("  %s %s",
			app.DimStyle.Render(fmt.Sprintf("%-14s", label+":")), value))
	}

	add("Name", s.Name)
	add("Description", s.Description)
	add("Cluster", m.lookupClusterName(s.ClusterID))
	if s.AutoPlacement {
		add("Node", "(automatic)")
	} else {
		add("Node", m.lookupNodeName(s.NodeID))
	}
	add("CPU", fmt.Sprintf("%d cores, %d socket(s)", s.Cores, s.Sockets))
	add("Memory", fmt.Sprintf("%d MiB", s.MemoryMiB))
	add("NICs", fmt.Sprintf("%d", len(s.NICs)))
	add("Boot media", s.BootMedia.String())

	switch s.BootMedia {
	case wizard.BootISO:
		if iso := m.inventory.FindISO(s.ISOID); iso != nil {
			add("ISO", iso.Name)
		}
	case wizard.BootTemplate:
		if tpl := m.inventory.FindTemplate(s.TemplateID); tpl != nil {
			add("Template", tpl.Name)
		}
	case wizard.BootCloudImage:
		if img := m.inventory.FindImage(s.ImageID); img != nil {
			add("Image", img.Name)
		}
		add("User", s.CloudInit.User)
		add("SSH keys", fmt.Sprintf("%d", len(s.CloudInit.SSHKeys)))
		if s.CloudInit.Password != "" {
			add("Password", "set")
		}
		add("Guest agent", boolWord(s.CloudInit.InstallAgent))
	}

	if pool := m.inventory.FindPool(s.PoolID); pool != nil {
		add("Storage pool", pool.Name)
	}
	disks := lo.Map(s.Disks, func(d wizard.DiskSpec, _ int) string {
		if d.Source == wizard.SourceExisting {
			return fmt.Sprintf("%s (volume %s, %d GiB)", d.Name, d.VolumeID, d.SizeGiB)
		}
		return fmt.Sprintf("%s (%d GiB, %s)", d.Name, d.SizeGiB, d.Provisioning)
	})
	add("Disks", strings.Join(disks, ", "))

	if s.Department != "" || s.CostCenter != "" {
		add("Department", s.Department)
		add("Cost center", s.CostCenter)
	}

	// Surface anything ValidateAll flagged across earlier steps
	if !m.result.Valid {
		lines = append(lines, "")
		for _, msg := range m.result.FieldErrors {
			lines = append(lines, "  "+app.ErrorStyle.Render(msg))
		}
	} else {
		lines = append(lines, "", "  "+app.DimStyle.Render("Press Enter to create the VM."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) lookupClusterName(id string) string {
	for _, c := range m.inventory.Clusters {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func (m *Model) lookupNodeName(id string) string {
	if n := m.inventory.FindNode(id); n != nil {
		return n.Hostname
	}
	return id
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
