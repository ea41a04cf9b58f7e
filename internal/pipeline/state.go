package pipeline

// State is the lifecycle of one connection attempt.
type State int

const (
	Disconnected State = iota
	Connecting
	Streaming
	Errored
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Liveness describes whether samples are currently arriving.
type Liveness int

const (
	NoData Liveness = iota
	Flowing
	Stalled
)

func (l Liveness) String() string {
	switch l {
	case NoData:
		return "no data"
	case Flowing:
		return "flowing"
	case Stalled:
		return "stalled"
	default:
		return "unknown"
	}
}

// Status is what the controller reports to its observer.
type Status struct {
	State    State
	Liveness Liveness
	// Target is the connection name of the current or last session.
	Target string
	// Message carries the terminal error text when State is Errored.
	Message string
}
