package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/importexport"
	"github.com/kingrea/waveplan/internal/store/boltstore"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export the current backlog to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	featureList, err := store.Features().FindAll()
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}
	features := make(map[string]domain.Feature, len(featureList))
	for _, f := range featureList {
		features[f.ID] = f
	}

	if err := importexport.Export(args[0], stories, features); err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}
	fmt.Printf("exported %d stories to %s\n", len(stories), args[0])
	return nil
}
