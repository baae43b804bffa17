package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/experiment"
	"github.com/san-kum/mppinav/internal/sim"
	"github.com/san-kum/mppinav/internal/storage"
)

// Suite is a scripted list of navigation scenarios.
type Suite struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []SuiteStep `yaml:"steps"`
}

// SuiteStep names either a preset or an inline scenario. Inline fields
// are layered over the defaults.
type SuiteStep struct {
	Name   string    `yaml:"name"`
	Model  string    `yaml:"model"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// StepResult is the outcome of one suite step.
type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

// LoadSuite loads a suite from a YAML file
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}
	if len(suite.Steps) == 0 {
		return nil, fmt.Errorf("suite %q has no steps", suite.Name)
	}
	return &suite, nil
}

// Scenario resolves the step to a validated config.
func (s SuiteStep) Scenario() (*config.Config, error) {
	var cfg *config.Config
	if s.Preset != "" {
		model := s.Model
		if model == "" {
			model = config.DefaultModel
		}
		cfg = config.GetPreset(model, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", model, s.Preset)
		}
	} else {
		cfg = config.DefaultConfig()
		if s.Model != "" {
			cfg.Model = s.Model
		}
	}

	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunSuite executes all steps in order, storing each run when st is not
// nil. It stops at the first failing step.
func RunSuite(ctx context.Context, suite *Suite, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(suite.Steps))

	for i, step := range suite.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("running suite step", slog.String("suite", suite.Name), slog.String("step", name),
			slog.Int("index", i+1), slog.Int("total", len(suite.Steps)))

		cfg, err := step.Scenario()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		sr := StepResult{Name: name, Result: result}
		if st != nil {
			sr.RunID, err = st.Save(storage.RunMetadata{
				Model:      cfg.Model,
				Integrator: cfg.Integrator,
				Start:      cfg.Start,
				Goals:      cfg.Goals,
				Controller: cfg.ControllerConfig(),
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MismatchSweep drives a plant whose wheel parameter differs from the one
// the controller plans with, to probe robustness to calibration error.
type MismatchSweep struct {
	Base      *config.Config
	ParamName string
	// Factors scale the plant's parameter relative to the planning model.
	Factors []float64
}

// SweepResult holds the outcome for one mismatch factor.
type SweepResult struct {
	Factor       float64
	Done         bool
	Ticks        int
	FinalState   dynamo.State
	GoalDistance float64
}

// RunSweep executes a mismatch sweep
func RunSweep(ctx context.Context, sweep *MismatchSweep) ([]SweepResult, error) {
	reg := experiment.NewRegistry()
	results := make([]SweepResult, 0, len(sweep.Factors))

	for _, factor := range sweep.Factors {
		exp, err := experiment.New(sweep.Base.Clone(), nil)
		if err != nil {
			return nil, err
		}

		plantSys, err := reg.GetModel(sweep.Base.Model, sweep.Base.Wheel)
		if err != nil {
			return nil, err
		}
		tunable, ok := plantSys.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("model %s is not tunable", sweep.Base.Model)
		}
		nominal, ok := tunable.GetParams()[sweep.ParamName]
		if !ok {
			return nil, fmt.Errorf("model %s has no parameter %s", sweep.Base.Model, sweep.ParamName)
		}
		if err := tunable.SetParam(sweep.ParamName, nominal*factor); err != nil {
			return nil, err
		}

		plant := dynamo.NewModel(plantSys, exp.Model().Integrator)
		s := sim.New(plant, exp.Policy())
		result, err := s.Run(ctx, sweep.Base.StartState(), exp.SimConfig())
		if err != nil {
			return nil, err
		}

		goals := sweep.Base.GoalStates()
		final := result.Final()
		results = append(results, SweepResult{
			Factor:       factor,
			Done:         result.Done,
			Ticks:        result.Ticks,
			FinalState:   final,
			GoalDistance: final.Distance(goals[len(goals)-1]),
		})
	}

	return results, nil
}
