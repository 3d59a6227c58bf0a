package lifecycle

// State is the position of a Starter in its lifecycle:
// Idle -> Starting -> Running -> {Succeeded | Failed | Cancelled} -> Stopped.
type State int

const (
	Idle State = iota
	Starting
	Running
	Succeeded
	Failed
	Cancelled
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}
