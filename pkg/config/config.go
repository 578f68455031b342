package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"fbwsim/pkg/flight"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Sim      SimConfig      `yaml:"sim"`
	Airframe AirframeConfig `yaml:"airframe"`
	Controls ControlsConfig `yaml:"controls"`
	Stream   StreamConfig   `yaml:"stream"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// SimConfig holds the host loop and the starting position of the aircraft.
type SimConfig struct {
	TickRate      Duration `yaml:"tick_rate"`
	MaxStep       Duration `yaml:"max_step"` // dt clamp for stalls and pauses
	OriginLat     float64  `yaml:"origin_lat"`
	OriginLon     float64  `yaml:"origin_lon"`
	StartHeading  float64  `yaml:"start_heading"` // degrees true
	StartAltitude Distance `yaml:"start_altitude"`
	StartThrottle float64  `yaml:"start_throttle"`
}

// AirframeConfig is the flight model tuning. Angles and angular rates are in
// degrees so the file stays readable.
type AirframeConfig struct {
	MaxSpeed                   float64 `yaml:"max_speed"`
	AccelResponse              float64 `yaml:"accel_response"`
	Drag                       float64 `yaml:"drag"`
	PitchLimitDeg              float64 `yaml:"pitch_limit_deg"`
	BankLimitDeg               float64 `yaml:"bank_limit_deg"`
	PitchCmdRateDeg            float64 `yaml:"pitch_cmd_rate_deg"`
	BankCmdRateDeg             float64 `yaml:"bank_cmd_rate_deg"`
	PitchResponse              float64 `yaml:"pitch_response"`
	BankResponse               float64 `yaml:"bank_response"`
	PitchCentering             float64 `yaml:"pitch_centering"`
	BankCentering              float64 `yaml:"bank_centering"`
	TurnRateGain               float64 `yaml:"turn_rate_gain"`
	YawTaxiRateDeg             float64 `yaml:"yaw_taxi_rate_deg"`
	StallSpeed                 float64 `yaml:"stall_speed"`
	CtrlVRange                 float64 `yaml:"ctrl_v_range"`
	MinY                       float64 `yaml:"min_y"`
	Gravity                    float64 `yaml:"gravity"`
	VerticalDampingWhenPowered float64 `yaml:"vertical_damping_when_powered"`
	ThrottleStep               float64 `yaml:"throttle_step"`
}

// ControlsConfig maps command names to key codes.
type ControlsConfig struct {
	PitchUp      string `yaml:"pitch_up"`
	PitchDown    string `yaml:"pitch_down"`
	BankLeft     string `yaml:"bank_left"`
	BankRight    string `yaml:"bank_right"`
	ThrottleUp   string `yaml:"throttle_up"`
	ThrottleDown string `yaml:"throttle_down"`
}

// StreamConfig holds websocket telemetry settings.
type StreamConfig struct {
	Interval Duration `yaml:"interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Server: LogSettings{
				Path:       "./logs/server.log",
				Level:      "INFO",
				MaxSizeMB:  32,
				MaxBackups: 3,
			},
			Requests: LogSettings{
				Path:       "./logs/requests.log",
				Level:      "INFO",
				MaxSizeMB:  16,
				MaxBackups: 1,
			},
		},
		Server: ServerConfig{
			Address: "localhost:1921",
		},
		Sim: SimConfig{
			TickRate:      Duration(time.Second / 60),
			MaxStep:       Duration(50 * time.Millisecond),
			OriginLat:     28.4728,
			OriginLon:     -16.3386,
			StartHeading:  0,
			StartAltitude: 0,
			StartThrottle: 0,
		},
		Airframe: AirframeFromFlight(flight.DefaultConfig()),
		Controls: ControlsConfig{
			PitchUp:      "ArrowUp",
			PitchDown:    "ArrowDown",
			BankLeft:     "ArrowLeft",
			BankRight:    "ArrowRight",
			ThrottleUp:   "PageUp",
			ThrottleDown: "PageDown",
		},
		Stream: StreamConfig{
			Interval: Duration(100 * time.Millisecond),
		},
	}
}

// AirframeFromFlight converts a flight.Config into its file representation.
func AirframeFromFlight(c flight.Config) AirframeConfig {
	return AirframeConfig{
		MaxSpeed:                   c.MaxSpeed,
		AccelResponse:              c.AccelResponse,
		Drag:                       c.Drag,
		PitchLimitDeg:              mgl64.RadToDeg(c.PitchLimit),
		BankLimitDeg:               mgl64.RadToDeg(c.BankLimit),
		PitchCmdRateDeg:            mgl64.RadToDeg(c.PitchCmdRate),
		BankCmdRateDeg:             mgl64.RadToDeg(c.BankCmdRate),
		PitchResponse:              c.PitchResponse,
		BankResponse:               c.BankResponse,
		PitchCentering:             c.PitchCentering,
		BankCentering:              c.BankCentering,
		TurnRateGain:               c.TurnRateGain,
		YawTaxiRateDeg:             mgl64.RadToDeg(c.YawTaxiRate),
		StallSpeed:                 c.StallSpeed,
		CtrlVRange:                 c.CtrlVRange,
		MinY:                       c.MinY,
		Gravity:                    c.Gravity,
		VerticalDampingWhenPowered: c.VerticalDampingWhenPowered,
		ThrottleStep:               c.ThrottleStep,
	}
}

// FlightConfig converts the airframe section into controller tuning.
func (a *AirframeConfig) FlightConfig() flight.Config {
	return flight.Config{
		MaxSpeed:                   a.MaxSpeed,
		AccelResponse:              a.AccelResponse,
		Drag:                       a.Drag,
		PitchLimit:                 mgl64.DegToRad(a.PitchLimitDeg),
		BankLimit:                  mgl64.DegToRad(a.BankLimitDeg),
		PitchCmdRate:               mgl64.DegToRad(a.PitchCmdRateDeg),
		BankCmdRate:                mgl64.DegToRad(a.BankCmdRateDeg),
		PitchResponse:              a.PitchResponse,
		BankResponse:               a.BankResponse,
		PitchCentering:             a.PitchCentering,
		BankCentering:              a.BankCentering,
		TurnRateGain:               a.TurnRateGain,
		YawTaxiRate:                mgl64.DegToRad(a.YawTaxiRateDeg),
		StallSpeed:                 a.StallSpeed,
		CtrlVRange:                 a.CtrlVRange,
		MinY:                       a.MinY,
		Gravity:                    a.Gravity,
		VerticalDampingWhenPowered: a.VerticalDampingWhenPowered,
		ThrottleStep:               a.ThrottleStep,
	}
}

// Names returns the controls as a command-name -> key-code map.
func (c *ControlsConfig) Names() map[string]string {
	return map[string]string{
		"pitch_up":      c.PitchUp,
		"pitch_down":    c.PitchDown,
		"bank_left":     c.BankLeft,
		"bank_right":    c.BankRight,
		"throttle_up":   c.ThrottleUp,
		"throttle_down": c.ThrottleDown,
	}
}

// Validate checks the settings the host loop depends on. Airframe numbers are
// taken as given.
func (c *Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("%w: sim.tick_rate must be positive", ErrInvalid)
	}
	if c.Sim.MaxStep <= 0 {
		return fmt.Errorf("%w: sim.max_step must be positive", ErrInvalid)
	}
	if c.Stream.Interval <= 0 {
		return fmt.Errorf("%w: stream.interval must be positive", ErrInvalid)
	}
	if c.Sim.StartThrottle < 0 || c.Sim.StartThrottle > 1 {
		return fmt.Errorf("%w: sim.start_throttle must be within [0,1]", ErrInvalid)
	}
	seen := make(map[string]string)
	for name, code := range c.Controls.Names() {
		if code == "" {
			return fmt.Errorf("%w: controls.%s is empty", ErrInvalid, name)
		}
		if other, dup := seen[code]; dup {
			return fmt.Errorf("%w: key %q bound to both %s and %s", ErrInvalid, code, other, name)
		}
		seen[code] = name
	}
	return nil
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it is merged over the defaults and not written back.
// FBWSIM_ADDRESS and FBWSIM_LOG_LEVEL override the file when set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv("FBWSIM_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if level := os.Getenv("FBWSIM_LOG_LEVEL"); level != "" {
		cfg.Log.Server.Level = level
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# fbwsim Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles), ft (feet)
# Airframe angles are in degrees, speeds in scene units per second.

`)
	data = append(header, data...)

	reControls := regexp.MustCompile(`(?m)^controls:`)
	data = reControls.ReplaceAll(data, []byte("# Key codes as reported by KeyboardEvent.code\ncontrols:"))

	reLimit := regexp.MustCompile(`(?m)^(\s+)bank_limit_deg:`)
	data = reLimit.ReplaceAll(data, []byte("${1}# Keep well below 90: turn rate grows with tan(bank)\n${1}bank_limit_deg:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
