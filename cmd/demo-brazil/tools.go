package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adrianco/demo-brazil/internal/tool"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available query tools",
	RunE:  runTools,
}

func runTools(cmd *cobra.Command, args []string) error {
	// The catalogue is static, so listing does not need a live store.
	registry, err := tool.NewRegistry(nil)
	if err != nil {
		return err
	}
	descriptors := registry.List()

	if toolsJSON {
		out, err := json.MarshalIndent(descriptors, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	for _, d := range descriptors {
		cmd.Printf("%s\n    %s\n", d.Name, d.Description)
		for _, p := range d.Parameters {
			required := ""
			if p.Required {
				required = " (required)"
			}
			cmd.Printf("    --%s <%s>%s: %s\n", p.Name, p.Type, required, p.Description)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "print the catalogue as JSON")
}
