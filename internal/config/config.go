package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/physics"
)

const (
	DefaultModel      = "diff_drive"
	DefaultIntegrator = "rk4"
	DefaultMaxTicks   = 600
	PolicyMPPI        = "mppi"
	PolicyPID         = "pid"
)

var ErrInvalid = errors.New("config: invalid")

// Config describes one navigation scenario: the robot, where it starts,
// where it goes and how the controller is tuned.
type Config struct {
	Model      string      `yaml:"model" validate:"oneof=diff_drive unicycle"`
	Integrator string      `yaml:"integrator" validate:"oneof=rk4 euler"`
	Wheel      WheelConfig `yaml:"wheel"`
	Start      []float64   `yaml:"start" validate:"len=3"`
	Goals      [][]float64 `yaml:"goals" validate:"min=1,dive,len=3"`
	MaxTicks   int         `yaml:"max_ticks" validate:"gt=0"`
	// Policy picks the sampling controller or the PID go-to-goal baseline.
	Policy     string      `yaml:"policy" validate:"oneof=mppi pid"`
	Controller mppi.Config `yaml:"controller"`
}

type WheelConfig struct {
	Radius float64 `yaml:"radius" validate:"gt=0"`
	Base   float64 `yaml:"base" validate:"gt=0"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      DefaultModel,
		Integrator: DefaultIntegrator,
		Wheel: WheelConfig{
			Radius: physics.DefaultWheelRadius,
			Base:   physics.DefaultWheelBase,
		},
		Start:      []float64{0, 0, 0},
		Goals:      [][]float64{{1, 0, 0}},
		MaxTicks:   DefaultMaxTicks,
		Policy:     PolicyMPPI,
		Controller: mppi.DefaultConfig(),
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Load reads a YAML scenario. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Start = append([]float64(nil), c.Start...)
	out.Goals = make([][]float64, len(c.Goals))
	for i, g := range c.Goals {
		out.Goals[i] = append([]float64(nil), g...)
	}
	out.Controller = c.Controller.Clone()
	return &out
}

func (c *Config) StartState() dynamo.State {
	return dynamo.State(append([]float64(nil), c.Start...))
}

func (c *Config) GoalStates() []dynamo.State {
	out := make([]dynamo.State, len(c.Goals))
	for i, g := range c.Goals {
		out[i] = dynamo.State(append([]float64(nil), g...))
	}
	return out
}

// ControllerConfig returns the controller tuning. Scenarios with more than
// one goal always run in waypoint mode.
func (c *Config) ControllerConfig() mppi.Config {
	cc := c.Controller.Clone()
	if len(c.Goals) > 1 {
		cc.Mode = mppi.ModeWaypoints
	}
	return cc
}
