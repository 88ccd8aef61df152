package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adrianco/demo-brazil/internal/cache"
	"github.com/adrianco/demo-brazil/internal/dispatcher"
	"github.com/adrianco/demo-brazil/internal/tool"
)

var queryParamsJSON string

var queryCmd = &cobra.Command{
	Use:   "query <tool> [key=value...]",
	Short: "Execute a query tool against the graph",
	Long: `Execute a single tool call through the dispatcher. Parameters are given
as key=value pairs, or as a JSON object with --params. Results print as
JSON on stdout.

Examples:
  demo-brazil query search_player name=Pelé
  demo-brazil query get_competition_top_scorers competition="Série A" limit=5
  demo-brazil query get_head_to_head --params '{"team1_name": "Flamengo", "team2_name": "Fluminense"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	params, err := parseQueryParams(args[1:], queryParamsJSON)
	if err != nil {
		return err
	}

	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	registry, err := tool.NewRegistry(client)
	if err != nil {
		return err
	}

	opts := []dispatcher.Option{}
	if cfg.Cache.Enabled {
		opts = append(opts, dispatcher.WithCache(cache.New(cfg.Cache.TTL)))
	}
	d := dispatcher.New(registry, dispatcher.Config{
		CallTimeout: cfg.Dispatcher.CallTimeout,
		MaxInFlight: cfg.Dispatcher.MaxInFlight,
	}, logger, opts...)

	result, err := d.Dispatch(ctx, args[0], params)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}

// parseQueryParams merges key=value arguments over an optional JSON object.
// Values that parse as integers become ints so numeric specs accept them.
func parseQueryParams(pairs []string, rawJSON string) (map[string]any, error) {
	params := make(map[string]any)
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &params); err != nil {
			return nil, fmt.Errorf("invalid --params JSON: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			params[key] = n
		} else {
			params[key] = value
		}
	}
	return params, nil
}

func init() {
	queryCmd.Flags().StringVar(&queryParamsJSON, "params", "", "tool parameters as a JSON object")
}
