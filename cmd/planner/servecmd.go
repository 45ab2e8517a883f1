package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/waveplan/internal/planning/allocator"
	"github.com/kingrea/waveplan/internal/planning/idleness"
	"github.com/kingrea/waveplan/internal/store/boltstore"
	"github.com/kingrea/waveplan/internal/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open a read-only dashboard of the current plan",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadRunConfig()
	store, err := boltstore.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	stories, err := store.FindAll()
	if err != nil {
		return fmt.Errorf("load stories: %w", err)
	}
	devs, err := store.Developers().FindAll()
	if err != nil {
		return fmt.Errorf("load developers: %w", err)
	}

	planConfig, err := store.Configuration().Get()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	idleWarnings, interWaveGaps := idleness.New().Detect(stories, planConfig.MaxIdleDays)
	warnings := allocator.Warnings{Idleness: idleWarnings, InterWaveGaps: interWaveGaps}

	_, err = tui.NewProgram(stories, devs, warnings).Run()
	return err
}
