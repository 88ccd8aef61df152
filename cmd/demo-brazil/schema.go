package main

import (
	"github.com/spf13/cobra"

	"github.com/adrianco/demo-brazil/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Apply the graph schema (constraints and indexes)",
	Long: `Apply the uniqueness constraints and lookup indexes the graph
requires. Every statement uses IF NOT EXISTS, so re-running against an
already prepared store is a no-op.`,
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	manager := schema.NewManager(client, logger)
	if err := manager.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := manager.Verify(ctx); err != nil {
		return err
	}

	cmd.Println("schema applied and verified")
	return nil
}
