// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/news-engine/internal/corpus"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "List stored stories by category or interest",
	Long: `News lists normalized stories from the corpus. Filter with --category
(world, us, sports, financial, technology, other, or "all") or with
--interest to see stories fetched for a configured interest topic.`,
	RunE: runNews,
}

func init() {
	newsCmd.Flags().String("category", "", "filter by category (empty or \"all\" lists everything)")
	newsCmd.Flags().String("interest", "", "filter by interest tag (with an empty value, every tagged story)")
	newsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(newsCmd)
}

func runNews(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	interest, _ := cmd.Flags().GetString("interest")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig(cmd)
	svc, store, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	var docs []corpus.Document
	if cmd.Flags().Changed("interest") {
		docs, err = svc.NewsByInterest(ctx, interest)
	} else {
		docs, err = svc.NewsByCategory(ctx, category)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No stories found.")
		return nil
	}
	printDocuments(docs)
	return nil
}

func printDocuments(docs []corpus.Document) {
	fmt.Fprintf(os.Stdout, "%-38s  %-12s  %-12s  %s\n", "ID", "Category", "Date", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, doc := range docs {
		title := doc.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-38s  %-12s  %-12s  %s\n",
			doc.ID, doc.Category, doc.PublishedDate, title)
	}
	fmt.Fprintf(os.Stdout, "\n%d stories\n", len(docs))
}
