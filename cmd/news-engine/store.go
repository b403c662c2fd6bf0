// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or reset the corpus store",
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored story counts per collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig(cmd)
		_, store, err := buildService(cmd, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		raw, normalized, err := store.Counts(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("raw:        %d\n", raw)
		fmt.Printf("normalized: %d\n", normalized)
		return nil
	},
}

var storeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Destructively empty both collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig(cmd)
		_, store, err := buildService(cmd, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Reset(context.Background()); err != nil {
			return err
		}
		fmt.Println("Collections reset.")
		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeResetCmd)

	rootCmd.AddCommand(storeCmd)
}
