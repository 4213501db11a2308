// Command train drives the composite training orchestrator from the CLI.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clawforge/skirmish/internal/api"
	"github.com/clawforge/skirmish/internal/config"
	"github.com/clawforge/skirmish/internal/leaderboard"
	"github.com/clawforge/skirmish/internal/match"
	"github.com/clawforge/skirmish/internal/training"
	"github.com/clawforge/skirmish/internal/worker"
)

var (
	flagScope        string
	flagGenerations  int
	flagPopulation   int
	flagPhaseSeeds   int
	flagSeed0        int32
	flagEloOpponents int
	flagTargetSrc    string
	flagMovementSrc  string
	flagShootSrc     string
	flagDataRoot     string
	flagWorkers      int
	flagRunID        string
	flagServe        bool
	flagServeAddr    string
)

func main() {
	root := &cobra.Command{
		Use:   "train",
		Short: "Evolve a composite AI controller via phased coordinate descent",
	}
	root.PersistentFlags().StringVar(&flagScope, "scope", "all", "target|movement|shoot|all")
	root.PersistentFlags().IntVar(&flagGenerations, "generations", 0, "generations per phase (0 = config default)")
	root.PersistentFlags().IntVar(&flagPopulation, "population", 0, "population size per generation (0 = config default)")
	root.PersistentFlags().IntVar(&flagPhaseSeeds, "phase-seeds", 0, "seeds per phase (0 = config default)")
	root.PersistentFlags().Int32Var(&flagSeed0, "seed0", 1, "first phase seed; later seeds step by SeedStride")
	root.PersistentFlags().IntVar(&flagEloOpponents, "elo-opponents", 0, "K leaderboard opponents for the final phase (0 = config default)")
	root.PersistentFlags().StringVar(&flagTargetSrc, "target-source", "baseline", "baseline|new|trained")
	root.PersistentFlags().StringVar(&flagMovementSrc, "movement-source", "baseline", "baseline|new|trained")
	root.PersistentFlags().StringVar(&flagShootSrc, "shoot-source", "baseline", "baseline|new|trained")
	root.PersistentFlags().StringVar(&flagDataRoot, "data-root", "", "run/leaderboard artifact root (default from config)")
	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker pool size (0 = runtime.NumCPU)")
	root.PersistentFlags().StringVar(&flagRunID, "run-id", "", "override the generated run id")
	root.PersistentFlags().BoolVar(&flagServe, "serve", false, "start the status/metrics HTTP surface alongside the run")
	root.PersistentFlags().StringVar(&flagServeAddr, "serve-addr", ":8090", "listen address for --serve")

	root.AddCommand(runCmd())
	root.AddCommand(leaderboardCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a training session and write its artifacts to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			dataRoot := flagDataRoot
			if dataRoot == "" {
				dataRoot = cfg.Training.DataRoot
			}

			lb, err := leaderboard.Load(dataRoot)
			if err != nil {
				return err
			}

			pool := worker.New(firstPositive(flagWorkers, cfg.Worker.Count), match.Run)
			defer pool.Close()

			var hub *api.StatusHub
			if flagServe {
				hub = api.NewStatusHub()
				go hub.Run()

				router := api.NewRouter(api.RouterConfig{
					Hub:         hub,
					Leaderboard: lb,
				})
				server := &http.Server{Addr: flagServeAddr, Handler: router}
				go func() {
					log.Printf("status surface listening on %s", flagServeAddr)
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Printf("status surface error: %v", err)
					}
				}()

				if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
					return err
				}
			}

			opts := training.Options{
				Scope:                training.ModuleKind(flagScope),
				Generations:          firstPositive(flagGenerations, cfg.Training.Generations),
				Population:           firstPositive(flagPopulation, cfg.Training.Population),
				PhaseSeeds:           firstPositive(flagPhaseSeeds, cfg.Training.PhaseSeeds),
				Seed0:                flagSeed0,
				EloOpponents:         firstPositive(flagEloOpponents, cfg.Training.EloOpponents),
				TargetSource:         training.Source(flagTargetSrc),
				MovementSource:       training.Source(flagMovementSrc),
				ShootSource:          training.Source(flagShootSrc),
				DataRoot:             dataRoot,
				Leaderboard:          lb,
				Pool:                 pool,
				RunID:                flagRunID,
			}
			if hub != nil {
				opts.Logf = func(format string, args ...interface{}) {
					line := fmt.Sprintf(format, args...)
					log.Print(line)
					hub.Broadcast("progress", map[string]string{"message": line})
				}
			}

			composite, err := training.RunCompositeTraining(opts)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Module", "Family", "Params"})
			table.Append([]string{"target", composite.Target.FamilyID, fmt.Sprint(composite.Target.Params)})
			table.Append([]string{"movement", composite.Movement.FamilyID, fmt.Sprint(composite.Movement.Params)})
			table.Append([]string{"shoot", composite.Shoot.FamilyID, fmt.Sprint(composite.Shoot.Params)})
			table.Render()
			return nil
		},
	}
}

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the current Elo leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			dataRoot := flagDataRoot
			if dataRoot == "" {
				dataRoot = cfg.Training.DataRoot
			}
			lb, err := leaderboard.Load(dataRoot)
			if err != nil {
				return err
			}
			entries := lb.All()

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Run ID", "Score"})
			for _, e := range entries {
				table.Append([]string{e.RunID, fmt.Sprintf("%.1f", e.Score)})
			}
			table.Render()
			return nil
		},
	}
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
