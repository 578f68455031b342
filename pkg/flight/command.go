// Package flight implements a fly-by-wire style controller that turns discrete
// command input into bounded attitude, heading, speed and vertical motion.
package flight

// Command identifies one of the six pilot controls the controller understands.
type Command int

const (
	PitchUp Command = iota
	PitchDown
	BankLeft
	BankRight
	ThrottleUp
	ThrottleDown
)

// Commands lists every command in declaration order.
var Commands = []Command{PitchUp, PitchDown, BankLeft, BankRight, ThrottleUp, ThrottleDown}

func (c Command) String() string {
	switch c {
	case PitchUp:
		return "pitch_up"
	case PitchDown:
		return "pitch_down"
	case BankLeft:
		return "bank_left"
	case BankRight:
		return "bank_right"
	case ThrottleUp:
		return "throttle_up"
	case ThrottleDown:
		return "throttle_down"
	default:
		return "unknown"
	}
}

// IsAttitude reports whether the command is level-triggered (read every tick).
func (c Command) IsAttitude() bool {
	return c >= PitchUp && c <= BankRight
}

// CommandSource is the input abstraction the controller depends on.
// Held is sampled once per tick; OnPress delivers edge-triggered presses and
// returns a function that cancels the subscription.
type CommandSource interface {
	Held(cmd Command) bool
	OnPress(fn func(Command)) (cancel func())
}
