package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kingrea/waveplan/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Backlog scheduler: topological sort, business-day scheduling, and developer allocation",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("store", "", "path to the planner store (default planner.db)")
	rootCmd.PersistentFlags().Int64("seed", 0, "RNG seed for reproducible load-balance tie-breaking")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose logging")

	_ = viper.BindPFlag("store_path", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetConfigName(".planner")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("PLANNER")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func loadRunConfig() config.RunConfig {
	cfg := config.Load()
	if store, _ := rootCmd.PersistentFlags().GetString("store"); store != "" {
		cfg.StorePath = store
	}
	if seed, _ := rootCmd.PersistentFlags().GetInt64("seed"); seed != 0 {
		cfg.Seed = seed
		cfg.HasSeed = true
	}
	return cfg
}
