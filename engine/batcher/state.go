package batcher

// State is the per-frame lifecycle state of a Batcher.
type State int

const (
	// StateIdle means no quad has been added since the last Clear.
	StateIdle State = iota
	// StateAccumulating means quads are being added.
	StateAccumulating
	// StatePrepared means Prepare uploaded every batch; quads can no longer be added this frame.
	StatePrepared
	// StateSubmitted means the draw calls of the prepared batches were issued.
	StateSubmitted
	// StateCleared is entered by Clear on its way back to StateIdle.
	StateCleared
)

var stateNames = [...]string{
	StateIdle:         "Idle",
	StateAccumulating: "Accumulating",
	StatePrepared:     "Prepared",
	StateSubmitted:    "Submitted",
	StateCleared:      "Cleared",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}
