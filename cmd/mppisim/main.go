package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mppi/internal/config"
	"github.com/san-kum/mppi/internal/control"
	"github.com/san-kum/mppi/internal/dynamo"
	"github.com/san-kum/mppi/internal/experiment"
	"github.com/san-kum/mppi/internal/optim"
	"github.com/san-kum/mppi/internal/storage"
	"github.com/san-kum/mppi/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string
	initState  []float64

	samples    int
	horizon    int
	lambda     float64
	sigma      float64
	uMax       float64
	nullAction bool
	absCost    bool

	configFile string
	preset     string
	live       bool
	frameRate  int

	numRuns int
	iters   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mppisim",
		Short: "sampling-based MPC planning lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mppisim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a closed-loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().StringVar(&controller, "controller", "mppi", "controller (mppi, pid, lqr, none)")
	runCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state")
	runCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "planner trajectory samples K")
	runCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planner horizon T")
	runCmd.Flags().Float64Var(&lambda, "lambda", config.DefaultLambda, "planner temperature")
	runCmd.Flags().Float64Var(&sigma, "sigma", config.DefaultSigma, "perturbation variance")
	runCmd.Flags().Float64Var(&uMax, "umax", 8.0, "symmetric control bound (0 disables)")
	runCmd.Flags().BoolVar(&nullAction, "null-action", false, "force one null-action sample")
	runCmd.Flags().BoolVar(&absCost, "abs-cost", false, "absolute-value control-effort cost")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&live, "live", false, "render the loop live")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "live view frame rate")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid-search planner hyperparameters",
		Args:  cobra.ExactArgs(1),
		RunE:  tunePlanner,
	}
	tuneCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	tuneCmd.Flags().Float64Var(&duration, "time", 4.0, "duration per trial")
	tuneCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	tuneCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "planner trajectory samples K")
	tuneCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planner horizon T")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run repeated trials under consecutive seeds",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of trials")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 1, "first seed; trials use seed, seed+1, ...")
	ensembleCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	ensembleCmd.Flags().Float64Var(&duration, "time", 5.0, "duration per trial")
	ensembleCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "planner trajectory samples K")
	ensembleCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planner horizon T")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "measure planning latency",
		Args:  cobra.ExactArgs(1),
		RunE:  benchPlanner,
	}
	benchCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "planner trajectory samples K")
	benchCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planner horizon T")
	benchCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	benchCmd.Flags().IntVar(&iters, "iters", 50, "planning calls to time")

	rootCmd.AddCommand(runCmd, tuneCmd, ensembleCmd, listCmd, plotCmd, exportCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig(model string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	if preset != "" {
		presets, ok := config.Presets[model]
		if !ok {
			return nil, fmt.Errorf("no presets for model %s", model)
		}
		cfg, ok := presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %s for model %s", preset, model)
		}
		c := *cfg
		c.Seed = seed
		return &c, nil
	}

	cfg := config.DefaultConfig()
	cfg.Model = model
	cfg.Integrator = integrator
	cfg.Controller = controller
	cfg.Dt = dt
	cfg.Duration = duration
	cfg.Seed = seed
	if initState != nil {
		cfg.InitState = initState
	} else if model == "cartpole" {
		cfg.InitState = []float64{0, 0, 0.3, 0}
	}
	cfg.Planner.Samples = samples
	cfg.Planner.Horizon = horizon
	cfg.Planner.Lambda = lambda
	cfg.Planner.NoiseSigma = []float64{sigma}
	cfg.Planner.SampleNullAction = nullAction
	cfg.Planner.NoiseAbsCost = absCost
	if uMax > 0 {
		cfg.Planner.UMax = []float64{uMax}
	} else {
		cfg.Planner.UMax = nil
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	if live {
		renderer := viz.NewLiveRenderer(cfg.Model, frameRate)
		defer renderer.Close()
		if rec, ok := exp.Controller().(*control.Receding); ok {
			renderer.AttachPlanner(rec)
		}
		exp.Simulator().AddObserver(renderer)
	}

	start := time.Now()
	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d steps in %s\n\n", runID, result.StepsTaken, elapsed.Round(time.Millisecond))
	fmt.Print(viz.MetricsSummary(result.Metrics))
	return nil
}

func tunePlanner(cmd *cobra.Command, args []string) error {
	model := args[0]
	reg := experiment.NewRegistry()

	search := optim.NewGridSearch(
		[]string{"lambda", "sigma"},
		[][]float64{
			{0.1, 0.3, 1.0, 3.0},
			{0.5, 1.0, 2.0, 4.0},
		},
	)

	run := func(ctx context.Context, params map[string]float64) (*dynamo.Result, error) {
		cfg := config.DefaultConfig()
		cfg.Model = model
		cfg.Controller = "mppi"
		cfg.Dt = dt
		cfg.Duration = duration
		cfg.Seed = seed
		if model == "cartpole" {
			cfg.InitState = []float64{0, 0, 0.3, 0}
		}
		cfg.Planner.Samples = samples
		cfg.Planner.Horizon = horizon
		cfg.Planner.Lambda = params["lambda"]
		cfg.Planner.NoiseSigma = []float64{params["sigma"]}

		exp, err := experiment.New(cfg, reg)
		if err != nil {
			return nil, err
		}
		return exp.Run(ctx)
	}

	fmt.Printf("tuning %s over lambda x sigma...\n", model)
	best, val, err := search.Search(context.Background(), run, "tracking")
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no configuration completed")
	}

	fmt.Printf("best tracking %.6f at lambda=%.2f sigma=%.2f\n", val, best["lambda"], best["sigma"])
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	model := args[0]
	reg := experiment.NewRegistry()

	base := config.DefaultConfig()
	base.Model = model
	base.Controller = "mppi"
	base.Dt = dt
	base.Duration = duration
	base.Planner.Samples = samples
	base.Planner.Horizon = horizon
	if model == "cartpole" {
		base.InitState = []float64{0, 0, 0.3, 0}
	}

	probe, err := experiment.New(base, reg)
	if err != nil {
		return err
	}
	x0 := make(dynamo.State, probe.System().StateDim())
	copy(x0, base.InitState)

	build := func(s int64) (*dynamo.Simulator, error) {
		cfg := *base
		cfg.Seed = s
		exp, err := experiment.New(&cfg, reg)
		if err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}

	ens := dynamo.NewEnsemble(build, numRuns, seed)
	results, err := ens.Run(context.Background(), x0, dynamo.Config{
		Dt:            dt,
		Duration:      duration,
		Seed:          seed,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	// Aggregate tracking error across seeds.
	mean, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
	for _, r := range results {
		v := r.Metrics["tracking"]
		mean += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	mean /= float64(len(results))

	fmt.Printf("%s: %d trials, seeds %d..%d\n", model, numRuns, seed, seed+int64(numRuns)-1)
	fmt.Printf("tracking  mean %.4f  min %.4f  max %.4f\n", mean, lo, hi)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tCONTROLLER\tTIME\tTRACKING")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\n",
			r.ID, r.Model, r.Controller,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Metrics["tracking"])
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	_, states, controls, err := store.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	fmt.Print(viz.PlotStates(states, 70, 10))
	fmt.Print(viz.PlotControls(controls, 70, 8))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.LoadMetadata(args[0])
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func benchPlanner(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Model = args[0]
	cfg.Controller = "mppi"
	cfg.Dt = dt
	cfg.Seed = 1
	cfg.Planner.Samples = samples
	cfg.Planner.Horizon = horizon
	if cfg.Model == "cartpole" {
		cfg.InitState = []float64{0, 0, 0.3, 0}
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	rec, ok := exp.Controller().(*control.Receding)
	if !ok {
		return fmt.Errorf("bench requires the mppi controller")
	}

	x0 := make(dynamo.State, exp.System().StateDim())
	copy(x0, cfg.InitState)

	// Drive the real closed loop so planning latency is measured against
	// states the planner actually visits, not a frozen initial state.
	var total time.Duration
	count := 0
	err = exp.Simulator().RunWithCallback(context.Background(), x0, dynamo.Config{
		Dt:       dt,
		Duration: float64(iters+1) * dt,
		Seed:     cfg.Seed,
	}, func(x dynamo.State, u dynamo.Control, t float64) bool {
		total += rec.LastLatency
		count++
		return count < iters
	})
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no planning calls completed")
	}

	fmt.Printf("%s: K=%d T=%d, mean plan time %s over %d calls\n",
		cfg.Model, samples, horizon, (total / time.Duration(count)).Round(time.Microsecond), count)
	return nil
}
