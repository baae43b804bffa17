package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/mppinav/internal/config"
)

// loadScenario layers defaults, preset, config file and explicitly set
// flags, in that order.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Model = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Model = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("goal") {
		parsed := make([][]float64, 0, len(goals))
		for _, g := range goals {
			pose, err := parsePose(g)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, pose)
		}
		cfg.Goals = parsed
	}
	if flags.Changed("max-ticks") {
		cfg.MaxTicks = maxTicks
	}

	cc := &cfg.Controller
	if flags.Changed("samples") {
		cc.Samples = samples
	}
	if flags.Changed("horizon") {
		cc.Horizon = horizon
	}
	if flags.Changed("temperature") {
		cc.Temperature = temp
	}
	if flags.Changed("noise") {
		cc.NoiseVariance = []float64{noise, noise}
	}
	if flags.Changed("limit") {
		cc.ControlLimit = limit
	}
	if flags.Changed("seed") {
		cc.Seed = seed
	}
	if flags.Changed("workers") {
		cc.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parsePose reads "x,y,theta"; a missing theta means 0.
func parsePose(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid pose %q: want x,y[,theta]", s)
	}
	pose := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid pose %q: %w", s, err)
		}
		pose[i] = v
	}
	return pose, nil
}
