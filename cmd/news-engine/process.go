// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/news-engine/internal/acquire"
	"github.com/pdiddy/news-engine/internal/content"
	"github.com/pdiddy/news-engine/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the content pipeline over a batch of articles",
	Long: `Process pushes a batch of articles through the full pipeline:
categorization, raw storage, summarization, similarity grouping, and
normalized storage.

Articles come from a YAML batch file (--file) or from the Tavily news API
(--fetch, which collects top headlines plus any configured interests).
Both may be combined in one run.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("file", "", "YAML file containing a list of articles")
	processCmd.Flags().Bool("fetch", false, "fetch articles from the Tavily news API")
	processCmd.Flags().Bool("reset", false, "empty both collections before processing")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	fetch, _ := cmd.Flags().GetBool("fetch")
	reset, _ := cmd.Flags().GetBool("reset")

	if file == "" && !fetch {
		return fmt.Errorf("provide a batch file with --file or enable --fetch")
	}

	ctx := context.Background()
	cfg := pipelineConfig(cmd)

	svc, store, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if reset {
		if err := store.Reset(ctx); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Collections reset.")
	}

	var items []types.Article

	if file != "" {
		fromFile, err := readBatchFile(file)
		if err != nil {
			return err
		}
		items = append(items, fromFile...)
	}

	if fetch {
		client, err := acquire.NewClient(cfg.Acquire, os.Stderr)
		if err != nil {
			return err
		}
		headlines, err := client.TopHeadlines(ctx)
		if err != nil {
			return fmt.Errorf("fetching top headlines: %w", err)
		}
		items = append(items, headlines...)
		items = append(items, client.ByInterests(ctx, cfg.Acquire.Interests)...)
	}

	result := svc.Process(ctx, items)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if result.Status != content.StatusSuccess {
		return fmt.Errorf("processing failed: %s", result.Message)
	}
	return nil
}

func readBatchFile(path string) ([]types.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}
	var items []types.Article
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
	}
	return items, nil
}
