package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/importexport"
	"github.com/kingrea/waveplan/internal/store/boltstore"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import stories from a spreadsheet into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := loadRunConfig()
	store, err := boltstore.Open(cfg.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	existing, err := store.FindAll()
	if err != nil {
		return fmt.Errorf("load existing stories: %w", err)
	}
	existingIDs := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		existingIDs[s.ID] = struct{}{}
	}

	rows, stats, err := importexport.Import(args[0], existingIDs)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}

	features, err := store.Features().FindAll()
	if err != nil {
		return fmt.Errorf("load features: %w", err)
	}
	featureIDByName := make(map[string]string, len(features))
	for _, f := range features {
		featureIDByName[f.Name] = f.ID
	}

	stories := make([]domain.Story, 0, len(rows))
	for _, row := range rows {
		story := row.Story
		if row.FeatureName != "" {
			if id, ok := featureIDByName[row.FeatureName]; ok {
				story.FeatureID = &id
			}
		}
		stories = append(stories, story)
	}

	if err := store.SaveBatch(stories); err != nil {
		return fmt.Errorf("save imported stories: %w", err)
	}

	fmt.Printf("processed %d, imported %d, duplicates %d, invalid %d, deps dropped %d\n",
		stats.TotalProcessadas, stats.TotalImportadas, stats.IgnoradasDuplicadas, stats.IgnoradasInvalidas, stats.DepsIgnoradas)
	for _, w := range stats.Warnings {
		fmt.Println("  " + w)
	}
	return nil
}
