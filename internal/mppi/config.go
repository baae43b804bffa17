package mppi

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GoalMode selects what happens once a goal is reached.
type GoalMode string

const (
	// ModePark stops and emits the zero control until a new goal arrives.
	ModePark GoalMode = "park"
	// ModeWaypoints moves on to the next queued waypoint, parking after the last.
	ModeWaypoints GoalMode = "waypoints"
)

const (
	DefaultHorizon       = 20
	DefaultSamples       = 200
	DefaultDt            = 0.1
	DefaultControlLimit  = 6.0
	DefaultTemperature   = 0.01
	DefaultWeightEpsilon = 1e-10
	DefaultGoalThreshold = 0.05
	DefaultSmoothDegree  = 3
)

// Config holds every tunable of the controller. It is validated once in New
// and never changes afterwards.
type Config struct {
	Horizon       int       `yaml:"horizon" json:"horizon" validate:"gte=2"`
	Samples       int       `yaml:"samples" json:"samples" validate:"gte=1"`
	Dt            float64   `yaml:"dt" json:"dt" validate:"gt=0"`
	ControlLimit  float64   `yaml:"control_limit" json:"control_limit" validate:"gte=0"`
	NoiseVariance []float64 `yaml:"noise_variance" json:"noise_variance" validate:"len=2,dive,gte=0"`
	Temperature   float64   `yaml:"temperature" json:"temperature" validate:"gt=0"`
	WeightEpsilon float64   `yaml:"weight_epsilon" json:"weight_epsilon" validate:"gte=0"`
	GoalThreshold float64   `yaml:"goal_threshold" json:"goal_threshold" validate:"gt=0"`
	Q             []float64 `yaml:"q" json:"q" validate:"len=3,dive,gte=0"`
	R             []float64 `yaml:"r" json:"r" validate:"len=2,dive,gt=0"`
	P             []float64 `yaml:"p" json:"p" validate:"len=3,dive,gte=0"`
	SmoothDegree  int       `yaml:"smooth_degree" json:"smooth_degree" validate:"gte=0"`
	NoSmoothing   bool      `yaml:"no_smoothing" json:"no_smoothing"`
	Workers       int       `yaml:"workers" json:"workers" validate:"gte=0"`
	Seed          uint64    `yaml:"seed" json:"seed"`
	Mode          GoalMode  `yaml:"mode" json:"mode" validate:"oneof=park waypoints"`
}

func DefaultConfig() Config {
	return Config{
		Horizon:       DefaultHorizon,
		Samples:       DefaultSamples,
		Dt:            DefaultDt,
		ControlLimit:  DefaultControlLimit,
		NoiseVariance: []float64{1, 1},
		Temperature:   DefaultTemperature,
		WeightEpsilon: DefaultWeightEpsilon,
		GoalThreshold: DefaultGoalThreshold,
		Q:             []float64{1e3, 1e3, 0},
		R:             []float64{1, 1},
		P:             []float64{1e3, 1e3, 0},
		SmoothDegree:  DefaultSmoothDegree,
		Mode:          ModePark,
	}
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.NoiseVariance = append([]float64(nil), c.NoiseVariance...)
	out.Q = append([]float64(nil), c.Q...)
	out.R = append([]float64(nil), c.R...)
	out.P = append([]float64(nil), c.P...)
	return out
}
