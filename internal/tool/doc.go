// Package tool provides the query-tool catalogue over the knowledge graph.
//
// Tools are atomic, stateless, read-only operations: each one takes a
// validated parameter map and returns the uniform result envelope. The
// package ships a fixed catalogue covering player, team, match, and
// analysis queries, registered in a Registry with built-in metrics
// tracking and health monitoring.
//
// # Core Concepts
//
// Tool: An interface representing one executable query with declarative
// parameter specs validated before any store access.
//
// Registry: A centralized registry managing the catalogue (registration,
// discovery, execution) with thread-safe operations and metrics collection.
//
// Metrics: Execution statistics tracking for monitoring and observability,
// including success/failure rates and duration metrics.
//
// # Usage Example
//
//	registry, err := tool.NewRegistry(client)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := registry.Execute(ctx, "search_player", map[string]any{
//	    "name": "Pelé",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("found %d players\n", result.TotalFound)
//
//	metrics, _ := registry.Metrics("search_player")
//	fmt.Printf("Success rate: %.2f%%\n", metrics.SuccessRate()*100)
//
// # Thread Safety
//
// All registry operations are thread-safe and can be called concurrently
// from multiple goroutines. Metrics are updated atomically during tool
// execution.
package tool
