// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/news-engine/internal/content"
)

var storyCmd = &cobra.Command{
	Use:   "story [id]",
	Short: "Show the full summary of one story",
	Long: `Story shows the detail view of one normalized story: its summary,
source link, category, and any related stories outside its own cluster.`,
	Args: cobra.ExactArgs(1),
	RunE: runStory,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from stored news",
	Long: `Ask answers a free-text question using stored news content. With
--story the answer is grounded in that one story's full raw text;
otherwise the three closest-matching stories provide the context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	storyCmd.Flags().Bool("json", false, "output as JSON")

	askCmd.Flags().String("story", "", "answer from this story id only")

	rootCmd.AddCommand(storyCmd)
	rootCmd.AddCommand(askCmd)
}

func runStory(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := pipelineConfig(cmd)
	svc, store, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result := svc.SummarizeStory(context.Background(), args[0])
	if result.Status != content.StatusSuccess {
		return fmt.Errorf("%s", result.Message)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Title:     %s\n", result.Title)
	fmt.Printf("Category:  %s\n", result.Category)
	fmt.Printf("Published: %s\n", result.PublishedDate)
	fmt.Printf("URL:       %s\n\n", result.URL)
	fmt.Println(result.Summary)
	if len(result.RelatedStories) > 0 {
		fmt.Println("\nRelated stories:")
		for _, r := range result.RelatedStories {
			fmt.Printf("  - %s (%s)\n", r.Title, r.ID)
		}
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	storyID, _ := cmd.Flags().GetString("story")
	question := strings.Join(args, " ")

	cfg := pipelineConfig(cmd)
	svc, store, err := buildService(cmd, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	result := svc.AnswerQuestion(context.Background(), question, storyID)
	if result.Status != content.StatusSuccess {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Println(result.Answer)
	fmt.Printf("\nSource: %s\n", result.Source)
	return nil
}
