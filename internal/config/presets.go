package config

import (
	"math"
	"sort"

	"github.com/san-kum/mppinav/internal/mppi"
)

func preset(model string, start []float64, goals [][]float64, tune func(*mppi.Config)) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.Start = start
	cfg.Goals = goals
	if tune != nil {
		tune(&cfg.Controller)
	}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"diff_drive": {
		"park":     preset("diff_drive", []float64{0, 0, 0}, [][]float64{{1, 0, 0}}, nil),
		"sideways": preset("diff_drive", []float64{0, 0, 0}, [][]float64{{0, 1, math.Pi / 2}}, nil),
		"behind": preset("diff_drive", []float64{0, 0, 0}, [][]float64{{-1, 0, math.Pi}}, func(c *mppi.Config) {
			c.Horizon = 30
		}),
		"square": preset("diff_drive", []float64{0, 0, 0},
			[][]float64{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {0, 0, 0}}, nil),
		"greedy": preset("diff_drive", []float64{0, 0, 0}, [][]float64{{1, 0, 0}}, func(c *mppi.Config) {
			c.Temperature = 1e-4
			c.Samples = 500
		}),
	},
	"unicycle": {
		"park": preset("unicycle", []float64{0, 0, math.Pi / 2}, [][]float64{{0.5, 0.5, 0}}, func(c *mppi.Config) {
			c.ControlLimit = 0.5
			c.NoiseVariance = []float64{0.25, 0.25}
		}),
		"slalom": preset("unicycle", []float64{0, 0, 0},
			[][]float64{{1, 0.5, 0}, {2, -0.5, 0}, {3, 0.5, 0}, {4, 0, 0}}, func(c *mppi.Config) {
				c.ControlLimit = 0.5
				c.NoiseVariance = []float64{0.25, 0.25}
			}),
	},
}

// GetPreset returns a copy of the named preset, or nil when it does not exist.
func GetPreset(model, name string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
