package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/config"
	"github.com/san-kum/magsat/internal/control"
	"github.com/san-kum/magsat/internal/metrics"
	"github.com/san-kum/magsat/internal/plant"
	"github.com/san-kum/magsat/internal/sim"
	"github.com/san-kum/magsat/internal/storage"
	"github.com/san-kum/magsat/internal/viz"

	"github.com/guptarohit/asciigraph"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	fallback   string
	// one-shot pipeline inputs
	bField [3]float64
	angles [3]float64
	rates  [3]float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "magsat",
		Short: "magnetorquer LQR attitude controller",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".magsat", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop stabilization simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "reference", "preset configuration")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "control period [s]")
	runCmd.Flags().Float64Var(&duration, "time", 20000, "duration [s]")
	runCmd.Flags().StringVar(&fallback, "fallback", "hold", "fault fallback: hold or zero")

	gainsCmd := &cobra.Command{
		Use:   "gains",
		Short: "run the pipeline once and print K and the dipole command",
		RunE:  printGains,
	}
	gainsCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	gainsCmd.Flags().Float64Var(&bField[0], "bx", 2e-5, "field x [T]")
	gainsCmd.Flags().Float64Var(&bField[1], "by", 1e-5, "field y [T]")
	gainsCmd.Flags().Float64Var(&bField[2], "bz", 4e-5, "field z [T]")
	gainsCmd.Flags().Float64Var(&angles[0], "roll", 0.01, "roll deviation [rad]")
	gainsCmd.Flags().Float64Var(&angles[1], "pitch", 0.02, "pitch deviation [rad]")
	gainsCmd.Flags().Float64Var(&angles[2], "yaw", -0.01, "yaw deviation [rad]")
	gainsCmd.Flags().Float64Var(&rates[0], "p", 0.001, "roll rate deviation [rad/s]")
	gainsCmd.Flags().Float64Var(&rates[1], "q", 0.002, "pitch rate deviation [rad/s]")
	gainsCmd.Flags().Float64Var(&rates[2], "r", -0.001, "yaw rate deviation [rad/s]")

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

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "reference", "preset configuration")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, gainsCmd, listCmd, plotCmd, exportCmd, liveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override config
	if cmd.Flags().Changed("dt") {
		cfg.Controller.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Sim.Duration = duration
	}
	if cmd.Flags().Changed("fallback") {
		cfg.Controller.Fallback = fallback
	}
	return cfg, nil
}

func plantModel(cfg *config.Config) (*plant.Model, error) {
	return plant.NewModel(cfg.PlantParams())
}

func buildLoop(cfg *config.Config) (*sim.Simulator, error) {
	model, err := plantModel(cfg)
	if err != nil {
		return nil, err
	}

	policy := control.HoldLast
	if cfg.Controller.Fallback == "zero" {
		policy = control.ZeroDipole
	}
	ctrl, err := control.NewLQR(model, policy)
	if err != nil {
		return nil, err
	}

	field := sim.OrbitField{
		B0:          cfg.Orbit.FieldB0,
		Inclination: cfg.Orbit.Inclination,
		MeanMotion:  cfg.Orbit.MeanMotion,
	}
	return sim.New(sim.NewAttitude(model), sim.NewRK4(), ctrl, field), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := buildLoop(cfg)
	if err != nil {
		return err
	}
	s.AddMetric(metrics.NewPointing())
	s.AddMetric(metrics.NewEffort())
	s.AddMetric(metrics.NewRates())

	fmt.Println("running stabilization simulation...")
	start := time.Now()

	result, err := s.Run(context.Background(), cfg.InitState(), sim.Config{
		Dt:            cfg.Controller.Dt,
		Duration:      cfg.Sim.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(preset, cfg.Controller.Dt, cfg.Sim.Duration, cfg.Controller.Fallback, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("cycles: %d\n", result.StepsTaken)
	if len(result.Errors) > 0 {
		fmt.Printf("faulted cycles: %d (first: %v)\n", len(result.Errors), result.Errors[0])
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}
	return nil
}

func printGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, err := plantModel(cfg)
	if err != nil {
		return err
	}
	ctrl, err := control.NewLQR(model, control.ZeroDipole)
	if err != nil {
		return err
	}

	x := adcs.State{angles[0], angles[1], angles[2], rates[0], rates[1], rates[2]}
	b := adcs.Field{bField[0], bField[1], bField[2]}

	res := ctrl.Step(x, b)
	if res.Err != nil {
		return res.Err
	}

	k := ctrl.LastGain()
	fmt.Printf("riccati iterations: %d\n\nK =\n", res.Iterations)
	for i := 0; i < 3; i++ {
		for j := 0; j < 6; j++ {
			fmt.Printf(" % .6e", k.At(i, j))
		}
		fmt.Println()
	}
	fmt.Printf("\nu = [% .6e % .6e % .6e] A*m^2\n", res.Dipole[0], res.Dipole[1], res.Dipole[2])
	return nil
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tFALLBACK\tFAULTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%.0fs\t%s\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Fallback,
			run.Faults,
		)
	}
	return w.Flush()
}

var stateCaptions = []string{
	"roll [rad]", "pitch [rad]", "yaw [rad]",
	"roll rate [rad/s]", "pitch rate [rad/s]", "yaw rate [rad/s]",
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, states, _, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(states))

	for varIdx := 0; varIdx < 6; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][varIdx]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(stateCaptions[varIdx]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	return storage.WriteMetadata(os.Stdout, meta)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, err := plantModel(cfg)
	if err != nil {
		return err
	}
	ctrl, err := control.NewLQR(model, control.HoldLast)
	if err != nil {
		return err
	}

	field := sim.OrbitField{
		B0:          cfg.Orbit.FieldB0,
		Inclination: cfg.Orbit.Inclination,
		MeanMotion:  cfg.Orbit.MeanMotion,
	}
	return viz.Run(sim.NewAttitude(model), sim.NewRK4(), ctrl, field, cfg.InitState(), cfg.Controller.Dt)
}
