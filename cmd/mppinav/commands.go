package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/mppinav/internal/analysis"
	"github.com/san-kum/mppinav/internal/automation"
	"github.com/san-kum/mppinav/internal/config"
	"github.com/san-kum/mppinav/internal/experiment"
	"github.com/san-kum/mppinav/internal/optim"
	"github.com/san-kum/mppinav/internal/sim"
	"github.com/san-kum/mppinav/internal/storage"
	"github.com/san-kum/mppinav/internal/viz"
)

func runNavigation(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("driving %s from %v to %v...\n", cfg.Model, cfg.Start, cfg.Goals)
	began := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	runID, err := st.Save(storage.RunMetadata{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Start:      cfg.Start,
		Goals:      cfg.Goals,
		Controller: cfg.ControllerConfig(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d (goals reached: %d/%d)\n", result.Ticks, exp.Policy().GoalsReached(), len(cfg.Goals))
	if len(result.Errors) > 0 {
		fmt.Printf("degraded ticks: %d\n", len(result.Errors))
	}
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}

	ctrl, err := exp.Controller()
	if err != nil {
		return fmt.Errorf("live view: %w", err)
	}

	m := viz.NewLive(ctrl, exp.Model(), cfg.StartState(), cfg.GoalStates(), cfg.MaxTicks, frameRate)
	return viz.RunLive(m)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tTICKS\tDONE\tINTEG\tGOAL DIST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\t%.4f\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Done,
			run.Integrator,
			run.Metrics["goal_distance"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(traj.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(traj.States))
	fmt.Println(viz.PlotRun(traj.States, traj.Controls))

	if pngPath != "" {
		if err := viz.SavePathPNG(pngPath, meta.ID, traj.States, meta.Goals); err != nil {
			return err
		}
		fmt.Printf("path written to %s\n", pngPath)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.ListModels()
	if len(args) > 0 {
		models = args
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func tuneController(cmd *cobra.Command, args []string) error {
	base, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	g := optim.NewGridSearch([]string{"temperature", "noise_variance"}, [][]float64{gridTemp, gridNoise})
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg, err := optim.ApplyParams(base, params)
		if err != nil {
			return nil, err
		}
		return experiment.New(cfg, nil)
	}

	best, val, trials, err := g.Search(cmd.Context(), build, metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TEMPERATURE\tNOISE\t%s\n", strings.ToUpper(metricName))
	for _, tr := range trials {
		v := fmt.Sprintf("%.6f", tr.Value)
		if tr.Err != nil {
			v = "error: " + tr.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%g\t%s\n", tr.Params["temperature"], tr.Params["noise_variance"], v)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: temperature=%g noise=%g %s=%.6f\n", best["temperature"], best["noise_variance"], metricName, val)
	return nil
}

func benchController(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	factory := func(s uint64) (*sim.Simulator, error) {
		c := cfg.Clone()
		c.Controller.Seed = s
		exp, err := experiment.New(c, nil)
		if err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}

	ensemble := sim.NewEnsemble(factory, runs, cfg.Controller.Seed)
	ensemble.SetWorkers(1)

	simCfg := sim.Config{Dt: cfg.Controller.Dt, MaxTicks: cfg.MaxTicks}
	began := time.Now()
	results, err := ensemble.Run(cmd.Context(), cfg.StartState(), simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	ticks := make([]float64, 0, len(results))
	dists := make([]float64, 0, len(results))
	done := 0
	for _, r := range results {
		ticks = append(ticks, float64(r.Ticks))
		dists = append(dists, r.Metrics["goal_distance"])
		if r.Done {
			done++
		}
	}
	totalTicks := 0.0
	for _, t := range ticks {
		totalTicks += t
	}

	tickMean, tickStd := stat.MeanStdDev(ticks, nil)
	distMean, distStd := stat.MeanStdDev(dists, nil)

	fmt.Printf("model: %s  policy: %s  samples: %d  horizon: %d\n", cfg.Model, cfg.Policy, cfg.Controller.Samples, cfg.Controller.Horizon)
	fmt.Printf("runs: %d  reached: %d\n", len(results), done)
	fmt.Printf("ticks: %.1f ± %.1f\n", tickMean, tickStd)
	fmt.Printf("final goal distance: %.4f ± %.4f\n", distMean, distStd)
	if totalTicks > 0 {
		fmt.Printf("time per tick: %v\n", time.Duration(float64(elapsed)/totalTicks))
		fmt.Printf("rollouts/sec: %.0f\n", totalTicks*float64(cfg.Controller.Samples)/elapsed.Seconds())
	}
	return nil
}

func runSuite(cmd *cobra.Command, args []string) error {
	suite, err := automation.LoadSuite(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("suite: %s (%d steps)\n", suite.Name, len(suite.Steps))
	results, err := automation.RunSuite(ctx, suite, st, slog.Default())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tTICKS\tREACHED\tGOAL DIST")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.4f\n", r.Name, r.RunID, r.Result.Ticks, r.Result.Done, r.Result.Metrics["goal_distance"])
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	dt := meta.Controller.Dt
	if cutoff <= 0 {
		cutoff = 1 / (4 * dt)
	}

	// the final row carries no command
	controls := traj.Controls
	if len(controls) > 0 {
		controls = controls[:len(controls)-1]
	}

	fmt.Printf("run: %s  dt: %g  cutoff: %.2f Hz\n", meta.ID, dt, cutoff)
	for i, name := range []string{"u_left", "u_right"} {
		signal := make([]float64, len(controls))
		for k, u := range controls {
			signal[k] = u[i]
		}

		freqs, power, err := analysis.PowerSpectrum(signal, dt)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		ratio, err := analysis.HighFrequencyRatio(signal, dt, cutoff)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		peak := 0
		for k := range power {
			if power[k] > power[peak] {
				peak = k
			}
		}
		fmt.Printf("\n%s: peak %.2f Hz, high-frequency share %.1f%%\n", name, freqs[peak], 100*ratio)
		fmt.Println(viz.PlotSeries(power, name+" power", 8))
	}
	return nil
}

func sweepMismatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.MismatchSweep{
		Base:      cfg,
		ParamName: sweepParam,
		Factors:   sweepFactors,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s FACTOR\tTICKS\tREACHED\tGOAL DIST\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.2f\t%d\t%v\t%.4f\n", r.Factor, r.Ticks, r.Done, r.GoalDistance)
	}
	return w.Flush()
}
