package wizard

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/quantix-cloud/qcli/pkg/api"
	"github.com/quantix-cloud/qcli/pkg/validate"
)

// Field identifies a form field for error reporting.
type Field string

const (
	FieldName     Field = "name"
	FieldCluster  Field = "cluster"
	FieldNode     Field = "node"
	FieldCores    Field = "cores"
	FieldMemory   Field = "memory"
	FieldImage    Field = "image"
	FieldISO      Field = "iso"
	FieldTemplate Field = "template"
	FieldAccess   Field = "access"
	FieldPassword Field = "password"
	FieldPool     Field = "pool"
	FieldDisks    Field = "disks"
	FieldCapacity Field = "capacity"
)

// Hardware bounds enforced by the hardware step.
const (
	MinCores     = 1
	MaxCores     = 128
	MinMemoryMiB = 512
	MaxMemoryMiB = 1 << 20 // 1 TiB
)

// Result is the outcome of validating one step. The same Result feeds both
// the navigation gate (Valid) and the inline field messages (FieldErrors),
// so the two can never drift apart.
type Result struct {
	Valid       bool
	FieldErrors map[Field]string
}

// Error returns the message for a field, or "" when the field is valid.
func (r Result) Error(f Field) string {
	return r.FieldErrors[f]
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(errs map[Field]string) Result {
	return Result{Valid: len(errs) == 0, FieldErrors: errs}
}

// ValidateStep validates one wizard step against the current form state and
// the latest inventory snapshot. It is a pure function: results are
// re-derived on every call, never cached.
func ValidateStep(step Step, s *State, inv *api.Inventory) Result {
	switch step {
	case StepIdentity:
		return validateIdentity(s)
	case StepPlacement:
		return validatePlacement(s, inv)
	case StepHardware:
		return validateHardware(s)
	case StepBootMedia:
		return validateBootMedia(s, inv)
	case StepStorage:
		return validateStorage(s, inv)
	default:
		// Metadata and review collect only optional fields.
		return valid()
	}
}

// ValidateAll validates every gating step, for the final review page.
func ValidateAll(s *State, inv *api.Inventory) Result {
	errs := map[Field]string{}
	for step := StepIdentity; step <= StepStorage; step++ {
		res := ValidateStep(step, s, inv)
		for f, msg := range res.FieldErrors {
			errs[f] = msg
		}
	}
	return invalid(errs)
}

func validateIdentity(s *State) Result {
	if err := validate.VMName(s.Name); err != nil {
		return invalid(map[Field]string{FieldName: err.Error()})
	}
	return valid()
}

// validatePlacement allows an empty host inventory: creation then defers to
// backend placement entirely.
func validatePlacement(s *State, inv *api.Inventory) Result {
	if inv == nil || len(inv.Nodes) == 0 {
		return valid()
	}

	errs := map[Field]string{}
	if s.ClusterID == "" {
		errs[FieldCluster] = "select a cluster"
	}
	if !s.AutoPlacement && s.NodeID == "" {
		errs[FieldNode] = "select a host or enable automatic placement"
	}
	return invalid(errs)
}

func validateHardware(s *State) Result {
	errs := map[Field]string{}
	if s.Cores < MinCores || s.Cores > MaxCores {
		errs[FieldCores] = fmt.Sprintf("cores must be between %d and %d", MinCores, MaxCores)
	}
	if s.MemoryMiB < MinMemoryMiB || s.MemoryMiB > MaxMemoryMiB {
		errs[FieldMemory] = fmt.Sprintf("memory must be between %d MiB and %d MiB", MinMemoryMiB, MaxMemoryMiB)
	}
	return invalid(errs)
}

func validateBootMedia(s *State, inv *api.Inventory) Result {
	switch s.BootMedia {
	case BootCloudImage:
		return validateCloudImageMedia(s, inv)

	case BootISO:
		if s.ISOID == "" {
			return invalid(map[Field]string{FieldISO: "select an ISO"})
		}
		// Catalog placeholders without a path are accepted; the download
		// is triggered at submission.
		if inv == nil || inv.FindISO(s.ISOID) == nil {
			return invalid(map[Field]string{FieldISO: "selected ISO is not in the catalog"})
		}
		return valid()

	case BootTemplate:
		if s.TemplateID == "" {
			return invalid(map[Field]string{FieldTemplate: "select a template"})
		}
		return valid()

	case BootNone:
		return valid()

	default:
		return invalid(map[Field]string{FieldImage: "select a boot media kind"})
	}
}

// validateCloudImageMedia checks the image readiness and the access method.
// A cloud image without a working access method (password or SSH key) would
// boot into an unreachable guest.
func validateCloudImageMedia(s *State, inv *api.Inventory) Result {
	errs := map[Field]string{}

	if s.ImageID == "" {
		errs[FieldImage] = "select a cloud image"
	} else if inv == nil || inv.FindImage(s.ImageID) == nil {
		errs[FieldImage] = "selected image is not registered"
	} else if img := inv.FindImage(s.ImageID); !img.Ready() {
		errs[FieldImage] = "image is not ready (still downloading or missing a backing path)"
	}

	passwordOK := validate.Password(s.CloudInit.Password, s.CloudInit.ConfirmPassword) == nil
	hasKeys := len(s.CloudInit.SSHKeys) > 0

	if !passwordOK && !hasKeys {
		errs[FieldAccess] = "set a password (8+ characters, confirmed) or add an SSH key"
	}

	// Collected keys must be syntactically valid authorized_keys entries;
	// a malformed key would land verbatim in the guest's authorized_keys.
	for _, k := range s.CloudInit.SSHKeys {
		if err := validate.SSHPublicKey(k); err != nil {
			errs[FieldAccess] = err.Error()
			break
		}
	}

	// A set password must be valid on its own even when keys are present.
	if s.CloudInit.Password != "" {
		if err := validate.Password(s.CloudInit.Password, s.CloudInit.ConfirmPassword); err != nil {
			errs[FieldPassword] = err.Error()
		}
	}

	return invalid(errs)
}

func validateStorage(s *State, inv *api.Inventory) Result {
	errs := map[Field]string{}

	if s.PoolID == "" {
		errs[FieldPool] = "select a storage pool"
	}
	if len(s.Disks) == 0 {
		errs[FieldDisks] = "configure at least one disk"
	}
	if len(errs) > 0 {
		return invalid(errs)
	}

	var pool *api.StoragePool
	if inv != nil {
		pool = inv.FindPool(s.PoolID)
	}
	if pool == nil {
		errs[FieldPool] = "selected pool no longer exists"
		return invalid(errs)
	}

	// Pool reachability is only checked against an explicitly chosen host;
	// automatic placement lets the scheduler pick a compatible one.
	if !s.AutoPlacement && s.NodeID != "" && len(pool.AssignedNodeIDs) > 0 {
		if !lo.Contains(pool.AssignedNodeIDs, s.NodeID) {
			errs[FieldPool] = "pool is not accessible from the selected host"
		}
	}

	for _, d := range s.Disks {
		if d.Source == SourceExisting && inv.FindVolume(d.VolumeID) == nil {
			errs[FieldDisks] = fmt.Sprintf("attached volume %s no longer exists", d.VolumeID)
			break
		}
	}

	// Binary GiB: a pool with exactly the requested space passes.
	if s.NewDiskGiB() > pool.AvailableGiB() {
		errs[FieldCapacity] = fmt.Sprintf(
			"requested %d GiB of new disk space but pool has %d GiB available",
			s.NewDiskGiB(), pool.AvailableGiB())
	}

	return invalid(errs)
}
