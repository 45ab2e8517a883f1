package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/waveplan/internal/engine"
	"github.com/kingrea/waveplan/internal/logging"
	"github.com/kingrea/waveplan/internal/store/boltstore"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sort, schedule, and allocate the backlog stored at --store",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Int("max-iterations", 0, "override the per-wave allocation iteration cap")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadRunConfig()

	store, err := boltstore.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	log, err := logging.New(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	stories, err := store.FindAll()
	if err != nil {
		return fmt.Errorf("load stories: %w", err)
	}
	for i := range stories {
		if err := store.LoadFeature(&stories[i]); err != nil {
			return fmt.Errorf("hydrate wave for %s: %w", stories[i].ID, err)
		}
	}

	devs, err := store.Developers().FindAll()
	if err != nil {
		return fmt.Errorf("load developers: %w", err)
	}

	planConfig, err := store.Configuration().Get()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(log)}
	if cfg.HasSeed {
		opts = append(opts, engine.WithSeed(cfg.Seed))
	}
	maxIter, _ := cmd.Flags().GetInt("max-iterations")
	if maxIter <= 0 {
		maxIter = cfg.MaxIterations
	}
	if maxIter > 0 {
		opts = append(opts, engine.WithMaxIterations(maxIter))
	}
	e := engine.New(opts...)

	plan, err := e.Run(stories, devs, planConfig)
	if err != nil {
		return fmt.Errorf("run plan: %w", err)
	}

	if err := store.SaveBatch(plan.AllStories); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}

	printSummary(plan)
	return nil
}

func printSummary(plan engine.Plan) {
	fmt.Printf("planned %d stories (%d allocated)\n", len(plan.AllStories), plan.Metrics.StoriesAllocated)
	if len(plan.Warnings.Deadlocks) > 0 {
		fmt.Printf("%d deadlock warnings\n", len(plan.Warnings.Deadlocks))
	}
	if len(plan.Warnings.Idleness) > 0 {
		fmt.Printf("%d idleness violations\n", len(plan.Warnings.Idleness))
	}
}
