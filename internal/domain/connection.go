package domain

// ConnState is the realtime feed connection state.
// Connecting -> Open -> Closed|Errored -> Connecting.
type ConnState int

const (
	ConnConnecting ConnState = iota
	ConnOpen
	ConnClosed
	ConnErrored
)

func (s ConnState) String() string {
	switch s {
	case ConnConnecting:
		return "CONNECTING"
	case ConnOpen:
		return "OPEN"
	case ConnClosed:
		return "CLOSED"
	case ConnErrored:
		return "ERRORED"
	default:
		return "UNKNOWN"
	}
}
