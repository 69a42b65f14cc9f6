package create

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/samber/lo"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/wizard"
)

// fieldKind distinguishes how a form field is edited.
type fieldKind int

const (
	fieldInput  fieldKind = iota // free text
	fieldSelect                  // cycle through options with left/right
	fieldToggle                  // boolean, flipped with space/left/right
	fieldAction                  // one-shot mutation, fired with space/left/right
)

// choice is one selectable option of a select field.
type choice struct {
	id    string
	label string
}

// field is a single editable form field of the active wizard step.
// set writes the field's current value into the wizard state; it is called
// after every edit so the state is always in sync with the form.
type field struct {
	key     wizard.Field
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []choice
	idx     int
	on      bool
	set     func(s *wizard.State, f *field)
}

func newInput(key wizard.Field, label, value, placeholder string, set func(s *wizard.State, f *field)) *field {
	in := textinput.New()
	in.SetValue(value)
	in.Placeholder = placeholder
	in.CharLimit = 256
	return &field{key: key, label: label, kind: fieldInput, input: in, set: set}
}

func newPasswordInput(key wizard.Field, label, value string, set func(s *wizard.State, f *field)) *field {
	f := newInput(key, label, value, "", set)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '*'
	return f
}

func newSelect(key wizard.Field, label string, choices []choice, selectedID string, set func(s *wizard.State, f *field)) *field {
	idx := 0
	for i, c := range choices {
		if c.id == selectedID {
			idx = i
			break
		}
	}
	return &field{key: key, label: label, kind: fieldSelect, choices: choices, idx: idx, set: set}
}

func newToggle(key wizard.Field, label string, on bool, set func(s *wizard.State, f *field)) *field {
	return &field{key: key, label: label, kind: fieldToggle, on: on, set: set}
}

func newAction(key wizard.Field, label string, set func(s *wizard.State, f *field)) *field {
	return &field{key: key, label: label, kind: fieldAction, set: set}
}

// selected returns the currently selected choice of a select field.
func (f *field) selected() choice {
	if len(f.choices) == 0 {
		return choice{}
	}
	return f.choices[f.idx]
}

// cycle advances a select field or flips a toggle.
func (f *field) cycle(delta int) {
	switch f.kind {
	case fieldSelect:
		if len(f.choices) == 0 {
			return
		}
		f.idx = (f.idx + delta + len(f.choices)) % len(f.choices)
	case fieldToggle:
		f.on = !f.on
	}
}

// value returns the field's current value as text.
func (f *field) value() string {
	switch f.kind {
	case fieldInput:
		return f.input.Value()
	case fieldSelect:
		return f.selected().label
	case fieldToggle:
		if f.on {
			return "yes"
		}
		return "no"
	}
	return ""
}

// buildFields constructs the form fields for a wizard step from the current
// state and inventory.
func (m *Model) buildFields(step wizard.Step) []*field {
	switch step {
	case wizard.StepIdentity:
		return m.identityFields()
	case wizard.StepPlacement:
		return m.placementFields()
	case wizard.StepHardware:
		return m.hardwareFields()
	case wizard.StepBootMedia:
		return m.bootMediaFields()
	case wizard.StepStorage:
		return m.storageFields()
	case wizard.StepMetadata:
		return m.metadataFields()
	default:
		return nil
	}
}

func (m *Model) identityFields() []*field {
	s := m.state
	return []*field{
		newInput(wizard.FieldName, "Name", s.Name, "my-vm", func(s *wizard.State, f *field) {
			s.Name = strings.TrimSpace(f.input.Value())
		}),
		newInput("", "Description", s.Description, "", func(s *wizard.State, f *field) {
			s.Description = f.input.Value()
		}),
		newInput("", "Owner", s.Owner, "", func(s *wizard.State, f *field) {
			s.Owner = strings.TrimSpace(f.input.Value())
		}),
	}
}

func (m *Model) placementFields() []*field {
	s := m.state

	clusters := lo.Map(m.inventory.Clusters, func(c api.Cluster, _ int) choice {
		return choice{id: c.ID, label: c.Name}
	})

	nodes := []choice{{id: "", label: "(automatic)"}}
	for _, n := range m.inventory.Nodes {
		if s.ClusterID == "" || n.ClusterID == s.ClusterID {
			nodes = append(nodes, choice{id: n.ID, label: n.Hostname})
		}
	}

	return []*field{
		newSelect(wizard.FieldCluster, "Cluster", clusters, s.ClusterID, func(s *wizard.State, f *field) {
			s.ClusterID = f.selected().id
		}),
		newToggle(wizard.FieldNode, "Automatic placement", s.AutoPlacement, func(s *wizard.State, f *field) {
			s.AutoPlacement = f.on
			if f.on {
				s.NodeID = ""
			}
		}),
		newSelect(wizard.FieldNode, "Node", nodes, s.NodeID, func(s *wizard.State, f *field) {
			s.NodeID = f.selected().id
			if s.NodeID != "" {
				s.AutoPlacement = false
			}
		}),
	}
}

func (m *Model) hardwareFields() []*field {
	s := m.state

	networks := lo.Map(m.inventory.Networks, func(n api.Network, _ int) choice {
		return choice{id: n.ID, label: n.Name}
	})

	fields := []*field{
		newInput(wizard.FieldCores, "CPU cores", strconv.Itoa(s.Cores), "2", func(s *wizard.State, f *field) {
			s.Cores = parseInt(f.input.Value(), 0)
		}),
		newInput("", "CPU sockets", strconv.Itoa(s.Sockets), "1", func(s *wizard.State, f *field) {
			s.Sockets = parseInt(f.input.Value(), 1)
		}),
		newInput(wizard.FieldMemory, "Memory (MiB)", strconv.FormatInt(s.MemoryMiB, 10), "2048", func(s *wizard.State, f *field) {
			s.MemoryMiB = parseInt64(f.input.Value(), 0)
		}),
	}

	for i, nic := range s.NICs {
		label := "Network"
		if len(s.NICs) > 1 {
			label = fmt.Sprintf("NIC %d network", i+1)
		}
		fields = append(fields,
			newSelect("", label, networks, nic.NetworkID, func(s *wizard.State, f *field) {
				if i < len(s.NICs) {
					s.NICs[i].NetworkID = f.selected().id
					s.NICs[i].NetworkName = f.selected().label
				}
			}),
			newToggle("", fmt.Sprintf("NIC %d connected", i+1), nic.Connected, func(s *wizard.State, f *field) {
				if i < len(s.NICs) {
					s.NICs[i].Connected = f.on
				}
			}),
		)
	}

	fields = append(fields, newAction("", "Add network interface", func(s *wizard.State, _ *field) {
		var id, name string
		if len(m.inventory.Networks) > 0 {
			id, name = m.inventory.Networks[0].ID, m.inventory.Networks[0].Name
		}
		s.AddNIC(id, name)
	}))
	if len(s.NICs) > 1 {
		fields = append(fields, newAction("", "Remove last interface", func(s *wizard.State, _ *field) {
			_ = s.RemoveNIC(s.NICs[len(s.NICs)-1].ID)
		}))
	}

	return fields
}

func (m *Model) bootMediaFields() []*field {
	s := m.state

	kinds := []choice{
		{id: string(wizard.BootNone), label: wizard.BootNone.String()},
		{id: string(wizard.BootISO), label: wizard.BootISO.String()},
		{id: string(wizard.BootCloudImage), label: wizard.BootCloudImage.String()},
		{id: string(wizard.BootTemplate), label: wizard.BootTemplate.String()},
	}

	fields := []*field{
		newSelect("", "Boot media", kinds, string(s.BootMedia), func(s *wizard.State, f *field) {
			s.BootMedia = wizard.BootMediaKind(f.selected().id)
		}),
	}

	switch s.BootMedia {
	case wizard.BootISO:
		isos := lo.Map(m.inventory.ISOs, func(iso api.ISO, _ int) choice {
			return choice{id: iso.ID, label: iso.Name}
		})
		fields = append(fields, newSelect(wizard.FieldISO, "ISO", isos, s.ISOID, func(s *wizard.State, f *field) {
			s.ISOID = f.selected().id
		}))

	case wizard.BootTemplate:
		templates := lo.Map(m.inventory.Templates, func(t api.OVATemplate, _ int) choice {
			return choice{id: t.ID, label: t.Name}
		})
		fields = append(fields, newSelect(wizard.FieldTemplate, "Template", templates, s.TemplateID, func(s *wizard.State, f *field) {
			s.TemplateID = f.selected().id
		}))

	case wizard.BootCloudImage:
		images := lo.Map(m.inventory.Images, func(img api.CloudImage, _ int) choice {
			label := img.Name
			if !img.Ready() {
				label += " (" + string(img.Status) + ")"
			}
			return choice{id: img.ID, label: label}
		})
		fields = append(fields,
			newSelect(wizard.FieldImage, "Image", images, s.ImageID, func(s *wizard.State, f *field) {
				s.ImageID = f.selected().id
			}),
			newInput("", "User", s.CloudInit.User, "ubuntu", func(s *wizard.State, f *field) {
				s.CloudInit.User = strings.TrimSpace(f.input.Value())
			}),
			newPasswordInput(wizard.FieldPassword, "Password", s.CloudInit.Password, func(s *wizard.State, f *field) {
				s.CloudInit.Password = f.input.Value()
			}),
			newPasswordInput(wizard.FieldPassword, "Confirm password", s.CloudInit.ConfirmPassword, func(s *wizard.State, f *field) {
				s.CloudInit.ConfirmPassword = f.input.Value()
			}),
			newInput(wizard.FieldAccess, "SSH keys (comma separated)", strings.Join(s.CloudInit.SSHKeys, ", "), "ssh-ed25519 ...", func(s *wizard.State, f *field) {
				s.CloudInit.SSHKeys = splitKeys(f.input.Value())
			}),
			newToggle("", "Install guest agent", s.CloudInit.InstallAgent, func(s *wizard.State, f *field) {
				s.CloudInit.InstallAgent = f.on
			}),
		)
	}

	return fields
}

func (m *Model) storageFields() []*field {
	s := m.state

	pools := lo.Map(m.inventory.Pools, func(p api.StoragePool, _ int) choice {
		return choice{id: p.ID, label: p.Name + " (" + strconv.FormatInt(p.AvailableGiB(), 10) + " GiB free)"}
	})

	var bootSize int64 = 20
	provisioning := wizard.ProvisionThin
	if len(s.Disks) > 0 {
		bootSize = s.Disks[0].SizeGiB
		provisioning = s.Disks[0].Provisioning
	}

	modes := []choice{
		{id: string(wizard.ProvisionThin), label: "Thin"},
		{id: string(wizard.ProvisionThick), label: "Thick"},
	}

	fields := []*field{
		newSelect(wizard.FieldPool, "Storage pool", pools, s.PoolID, func(s *wizard.State, f *field) {
			s.PoolID = f.selected().id
		}),
		newInput(wizard.FieldCapacity, "Boot disk size (GiB)", strconv.FormatInt(bootSize, 10), "20", func(s *wizard.State, f *field) {
			if len(s.Disks) > 0 {
				s.Disks[0].SizeGiB = parseInt64(f.input.Value(), 0)
			}
		}),
		newSelect("", "Provisioning", modes, string(provisioning), func(s *wizard.State, f *field) {
			if len(s.Disks) > 0 {
				s.Disks[0].Provisioning = wizard.ProvisioningMode(f.selected().id)
			}
		}),
	}

	for i := 1; i < len(s.Disks); i++ {
		d := s.Disks[i]
		if d.Source == wizard.SourceExisting {
			label := d.VolumeID
			if vol := m.inventory.FindVolume(d.VolumeID); vol != nil {
				label = fmt.Sprintf("%s (%d GiB)", vol.Name, vol.SizeGiB)
			}
			fields = append(fields, newSelect(wizard.FieldDisks,
				fmt.Sprintf("Disk %d (existing volume)", i+1),
				[]choice{{id: d.VolumeID, label: label}}, d.VolumeID,
				func(*wizard.State, *field) {}))
			continue
		}
		fields = append(fields, newInput(wizard.FieldDisks,
			fmt.Sprintf("Disk %d size (GiB)", i+1),
			strconv.FormatInt(d.SizeGiB, 10), "20",
			func(s *wizard.State, f *field) {
				if i < len(s.Disks) {
					s.Disks[i].SizeGiB = parseInt64(f.input.Value(), 0)
				}
			}))
	}

	fields = append(fields, newAction("", "Add disk (20 GiB)", func(s *wizard.State, _ *field) {
		s.AddDisk(20)
	}))
	if len(s.Disks) > 1 {
		fields = append(fields, newAction("", "Remove last disk", func(s *wizard.State, _ *field) {
			_ = s.RemoveDisk(s.Disks[len(s.Disks)-1].ID)
		}))
	}

	if volumes := m.attachableVolumes(); len(volumes) > 0 {
		if m.attachVolumeID == "" || !lo.ContainsBy(volumes, func(c choice) bool { return c.id == m.attachVolumeID }) {
			m.attachVolumeID = volumes[0].id
		}
		fields = append(fields,
			newSelect("", "Volume to attach", volumes, m.attachVolumeID, func(_ *wizard.State, f *field) {
				m.attachVolumeID = f.selected().id
			}),
			newAction("", "Attach selected volume", func(s *wizard.State, _ *field) {
				if vol := m.inventory.FindVolume(m.attachVolumeID); vol != nil {
					s.AttachVolume(vol.ID, vol.SizeGiB)
				}
			}),
		)
	}

	return fields
}

// attachableVolumes lists volumes that are free and not already on the disk
// list.
func (m *Model) attachableVolumes() []choice {
	attached := lo.SliceToMap(m.state.Disks, func(d wizard.DiskSpec) (string, bool) {
		return d.VolumeID, true
	})

	var out []choice
	for _, v := range m.inventory.Volumes {
		if v.InUse || attached[v.ID] {
			continue
		}
		out = append(out, choice{id: v.ID, label: fmt.Sprintf("%s (%d GiB)", v.Name, v.SizeGiB)})
	}
	return out
}

func (m *Model) metadataFields() []*field {
	s := m.state
	return []*field{
		newInput("", "Department", s.Department, "", func(s *wizard.State, f *field) {
			s.Department = strings.TrimSpace(f.input.Value())
		}),
		newInput("", "Cost center", s.CostCenter, "", func(s *wizard.State, f *field) {
			s.CostCenter = strings.TrimSpace(f.input.Value())
		}),
		newInput("", "Tags (comma separated)", strings.Join(s.Tags, ", "), "", func(s *wizard.State, f *field) {
			s.Tags = splitKeys(f.input.Value())
		}),
		newInput("", "Notes", s.Notes, "", func(s *wizard.State, f *field) {
			s.Notes = f.input.Value()
		}),
	}
}

// parseInt parses a decimal int, returning fallback on garbage.
func parseInt(v string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func parseInt64(v string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

// splitKeys splits a comma-separated list, dropping empty entries.
func splitKeys(v string) []string {
	parts := strings.Split(v, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
