package flight

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Config holds the tuning of a controller. Angles are radians, rates are per
// second. Values are not validated; negative speeds or rates give undefined
// but non-fatal behavior.
type Config struct {
	MaxSpeed      float64 // speed at full throttle
	AccelResponse float64 // 1/s, approach rate toward the throttle speed
	Drag          float64 // 1/s, linear-in-speed decay

	PitchLimit float64
	BankLimit  float64

	PitchCmdRate float64 // how fast held keys move the targets
	BankCmdRate  float64

	PitchResponse float64 // 1/s, attitude filter at full authority
	BankResponse  float64

	PitchCentering float64 // 1/s, target relaxation with no input
	BankCentering  float64

	TurnRateGain float64 // coordinated-turn gain
	YawTaxiRate  float64 // rad/s of direct steering on the ground

	StallSpeed float64 // authority starts here
	CtrlVRange float64 // and reaches 1 at StallSpeed+CtrlVRange

	MinY                       float64 // ground height
	Gravity                    float64
	VerticalDampingWhenPowered float64

	ThrottleStep float64 // per throttle press
}

// DefaultConfig returns a light aircraft tuning.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:      120,
		AccelResponse: 2.0,
		Drag:          0.01,

		PitchLimit: mgl64.DegToRad(45),
		BankLimit:  mgl64.DegToRad(60),

		PitchCmdRate: mgl64.DegToRad(60),
		BankCmdRate:  mgl64.DegToRad(90),

		PitchResponse: 4.0,
		BankResponse:  5.0,

		PitchCentering: 0.8,
		BankCentering:  1.2,

		TurnRateGain: 1.2,
		YawTaxiRate:  math.Pi * 1.2,

		StallSpeed: 12,
		CtrlVRange: 25,

		MinY:                       0,
		Gravity:                    9.81,
		VerticalDampingWhenPowered: 2.5,

		ThrottleStep: 0.05,
	}
}
