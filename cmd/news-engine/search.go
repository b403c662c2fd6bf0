// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored stories by text",
	Long: `Search ranks normalized stories against a free-text query, closest
first. With an embedding backend the ranking is cosine distance over
stored vectors; otherwise full-text bm25 ranking.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	query := strings.Join(args, " ")

	cfg := pipelineConfig(cmd)
	svc, store, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := svc.SearchNews(context.Background(), query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-38s  %s\n", "Rank", "Distance", "ID", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for i, r := range results {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10.4f  %-38s  %s\n", i+1, r.Distance, r.ID, title)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
