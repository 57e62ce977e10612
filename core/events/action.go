package events

import "time"

// Action names what the loop did with an experiment.
type Action string

const (
	ActionRun      Action = "run"
	ActionTransfer Action = "transfer"
	ActionReset    Action = "reset"
	// ActionWarpStop means time compression was dropped so the experiment
	// can run on a later tick.
	ActionWarpStop Action = "warp_stop"
	ActionError    Action = "error"
)

// ActionEvent is published for every decision taken on an experiment.
type ActionEvent struct {
	Time         time.Time
	VesselID     string
	PartID       string
	ExperimentID string
	Action       Action
	SubjectID    string
	// Target is the title of the receiving holder for transfers.
	Target string
	Value  float64
	Err    error
}
