package domain

// PlayerState tracks where the player is in its explore/pause cycle.
type PlayerState uint8

const (
	// StateIdle means no cursor is set yet.
	StateIdle PlayerState = iota
	// StateExploring means an exploration pass is in progress.
	StateExploring
	// StatePaused means the player sits on a pause target with its
	// branch set published.
	StatePaused
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExploring:
		return "exploring"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
