package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianco/demo-brazil/internal/ingest"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the read-only integrity sweep against the graph",
	Long: `Run the integrity sweep: orphaned matches and transfers, self-referencing
relationships, and duplicate team names or player identities. The sweep
never modifies the store; violations are reported with node ids so they
can be fixed at the source and reloaded.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	report, err := ingest.NewIntegrityValidator(client).Validate(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if !report.IsClean() {
		return fmt.Errorf("integrity sweep: %s", report.Summary())
	}
	return nil
}
