package models

// WizardStep is the pairing wizard screen.
type WizardStep int

const (
	StepIntroduction WizardStep = iota
	StepPairing
	StepResult
)

func (s WizardStep) String() string {
	switch s {
	case StepIntroduction:
		return "introduction"
	case StepPairing:
		return "pairing"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

// PairingStage counts how far the pair/bringup/bridge sequence has progressed.
type PairingStage int

const (
	StageIdle PairingStage = iota
	StagePair
	StageBringup
	StageBridge
	StageDone
)

func (s PairingStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StagePair:
		return "pair"
	case StageBringup:
		return "bringup"
	case StageBridge:
		return "bridge"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// PairingStatus is a snapshot of the wizard.
type PairingStatus struct {
	AttemptID   string       `json:"attempt_id,omitempty"`
	Step        WizardStep   `json:"step"`
	StepName    string       `json:"step_name"`
	Stage       PairingStage `json:"stage"`
	IsLoading   bool         `json:"is_loading"`
	Log         []string     `json:"log"`
	Error       string       `json:"error,omitempty"`
	RobotNumber int          `json:"robot_number"`
	RobotPaired bool         `json:"robot_paired"`
}
