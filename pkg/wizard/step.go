// Package wizard holds the VM creation wizard's form state, step validation,
// and payload assembly. It is UI-free: the TUI renders this state and the
// control-plane client submits what BuildCreateRequest assembles.
package wizard

// Step represents one page of the creation wizard.
type Step int

const (
	// StepIdentity - name, description, owner
	StepIdentity Step = iota
	// StepPlacement - cluster and host selection
	StepPlacement
	// StepHardware - CPU, memory, network interfaces
	StepHardware
	// StepBootMedia - boot media kind and provisioning access
	StepBootMedia
	// StepStorage - storage pool and disks
	StepStorage
	// StepMetadata - optional department/cost-center/tags
	StepMetadata
	// StepReview - final review and submit
	StepReview
)

// String returns the display name of the step.
func (s Step) String() string {
	switch s {
	case StepIdentity:
		return "Identity"
	case StepPlacement:
		return "Placement"
	case StepHardware:
		return "Hardware"
	case StepBootMedia:
		return "Boot Media"
	case StepStorage:
		return "Storage"
	case StepMetadata:
		return "Metadata"
	case StepReview:
		return "Review"
	default:
		return "Unknown"
	}
}

// Next returns the step after s, saturating at StepReview.
func (s Step) Next() Step {
	if s >= StepReview {
		return StepReview
	}
	return s + 1
}

// Prev returns the step before s, saturating at StepIdentity.
func (s Step) Prev() Step {
	if s <= StepIdentity {
		return StepIdentity
	}
	return s - 1
}

// TotalSteps returns the number of wizard steps for progress display.
func TotalSteps() int {
	return int(StepReview) + 1
}
