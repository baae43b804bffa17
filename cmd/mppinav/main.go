package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	integrator string
	policy     string
	start      []float64
	goals      []string
	maxTicks   int
	samples    int
	horizon    int
	temp       float64
	noise      float64
	limit      float64
	seed       uint64
	workers    int
	frameRate  int
	pngPath    string
	runs       int
	metricName string
	gridTemp   []float64
	gridNoise  []float64
	cutoff     float64

	sweepParam   string
	sweepFactors []float64
)

// main registers the mppinav commands and executes the root command,
// exiting with status 1 on failure.
func main() {
	rootCmd := &cobra.Command{
		Use:           "mppinav",
		Short:         "sampling-based navigation lab for wheeled robots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mppinav", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "drive to the goal and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNavigation,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "drive to the goal with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also write the path to this PNG file")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search temperature and noise",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneController,
	}
	addScenarioFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&gridTemp, "grid-temperature", []float64{0.001, 0.01, 0.1, 1}, "temperatures to try")
	tuneCmd.Flags().Float64SliceVar(&gridNoise, "grid-noise", []float64{0.25, 1, 4}, "noise variances to try")
	tuneCmd.Flags().StringVar(&metricName, "metric", "goal_distance", "metric to minimize")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark the controller over several seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchController,
	}
	addScenarioFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of seeds")

	suiteCmd := &cobra.Command{
		Use:   "suite [file]",
		Short: "run a YAML suite of scenarios and store every run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuite,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "show the control spectrum of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&cutoff, "cutoff", 0, "chatter cutoff in Hz (default: quarter of the sample rate)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "drive a miscalibrated plant to probe model mismatch",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepMismatch,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "wheel_radius", "plant parameter to scale")
	sweepCmd.Flags().Float64SliceVar(&sweepFactors, "factors", []float64{0.8, 0.9, 1, 1.1, 1.2}, "scale factors")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, tuneCmd, benchCmd,
		suiteCmd, analyzeCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "scenario file (yaml)")
	f.StringVar(&preset, "preset", "", "use preset scenario")
	f.StringVar(&integrator, "integrator", "rk4", "integrator (rk4, euler)")
	f.StringVar(&policy, "policy", "mppi", "controller policy (mppi, pid)")
	f.Float64SliceVar(&start, "start", []float64{0, 0, 0}, "start pose x,y,theta")
	f.StringArrayVar(&goals, "goal", nil, "goal pose x,y,theta (repeat for waypoints)")
	f.IntVar(&maxTicks, "max-ticks", 600, "tick limit")
	f.IntVar(&samples, "samples", 200, "sampled rollouts per tick")
	f.IntVar(&horizon, "horizon", 20, "planning horizon in steps")
	f.Float64Var(&temp, "temperature", 0.01, "importance weight temperature")
	f.Float64Var(&noise, "noise", 1, "per-wheel exploration noise variance")
	f.Float64Var(&limit, "limit", 6, "wheel speed limit (rad/s)")
	f.Uint64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&workers, "workers", 0, "rollout workers (0 = all CPUs)")
}

func setupLogger(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}
