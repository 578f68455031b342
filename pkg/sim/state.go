// Package sim provides the simulation client interfaces and the telemetry
// helpers shared by hosts.
package sim

// State represents the activity state of a simulation.
type State string

const (
	// StateDisconnected indicates the simulation was closed.
	StateDisconnected State = "disconnected"
	// StateInactive indicates the simulation exists but no loop advances it.
	StateInactive State = "inactive"
	// StateActive indicates the host loop is ticking.
	StateActive State = "active"
)

// Accepts reports whether a client in this state serves calls.
func (s State) Accepts() bool {
	return s != StateDisconnected
}
