package flight

import "github.com/go-gl/mathgl/mgl64"

// flightAuthority is the authority at or above which heading follows bank.
const flightAuthority = 0.15

// Regime selects how heading is driven.
type Regime int

const (
	// RegimeTaxi steers heading directly from the bank keys.
	RegimeTaxi Regime = iota
	// RegimeFlight derives heading rate from bank angle and airspeed.
	RegimeFlight
)

func (r Regime) String() string {
	if r == RegimeFlight {
		return "flight"
	}
	return "taxi"
}

// RegimeFor returns the regime for an authority value. There is no hysteresis.
func RegimeFor(authority float64) Regime {
	if authority < flightAuthority {
		return RegimeTaxi
	}
	return RegimeFlight
}

// Smoothstep is x²(3−2x); x must already be in [0,1].
func Smoothstep(x float64) float64 {
	return x * x * (3 - 2*x)
}

// Authority maps airspeed to control authority in [0,1]: 0 at or below
// stallSpeed, 1 at or above stallSpeed+ctrlVRange, smoothstep in between.
func Authority(speed, stallSpeed, ctrlVRange float64) float64 {
	if ctrlVRange <= 0 {
		if speed > stallSpeed {
			return 1
		}
		return 0
	}
	return Smoothstep(mgl64.Clamp((speed-stallSpeed)/ctrlVRange, 0, 1))
}
