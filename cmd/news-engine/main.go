// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the news-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/news-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the news-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "news-engine",
	Short: "News collection and content normalization pipeline",
	Long: `news-engine collects news articles, classifies them into categories,
summarizes them, groups near-duplicate coverage into single representative
stories, and stores everything in a local searchable corpus.

Run "process" to push a batch of articles through the pipeline, then browse
with "news", "search", "story", and "ask".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./news-engine.yaml or ~/.config/news-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for persisted state (default data)")
	rootCmd.PersistentFlags().String("model", "", "generation model name (default llama3)")
	rootCmd.PersistentFlags().String("base-url", "", "inference server base URL (default http://localhost:11434)")
	rootCmd.PersistentFlags().Bool("no-embeddings", false, "disable the embedding backend; similarity grouping is skipped and search uses full-text ranking")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("news-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "news-engine"))
		}
	}

	viper.SetEnvPrefix("NEWS_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
