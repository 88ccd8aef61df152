// Package graph provides the graph database client abstraction for the
// soccer knowledge graph.
//
// This package defines a generic Client interface that can be implemented
// for different graph database backends. The primary implementation is for
// Neo4j, but the interface design allows for other graph databases to be
// integrated.
//
// # Architecture
//
//   - Client: Core interface defining read/write query execution
//   - Neo4jClient: Production implementation using the Neo4j Go driver
//   - MockClient: Test implementation for unit testing
//
// # Usage
//
// Basic usage with Neo4j:
//
//	config := graph.DefaultClientConfig()
//	config.URI = "bolt://localhost:7687"
//	config.Username = "neo4j"
//	config.Password = "password"
//
//	client, err := graph.NewNeo4jClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
//	result, err := client.Read(ctx,
//	    "MATCH (p:Player {name: $name}) RETURN p",
//	    map[string]any{"name": "Pelé"},
//	)
//
// # Connection Management
//
// The Neo4j client uses connection pooling with configurable limits:
//
//   - MaxConnectionPoolSize: Maximum connections in the pool (default: 50)
//   - ConnectionTimeout: Timeout for acquiring a connection (default: 30s)
//   - MaxTransactionRetryTime: Maximum retry time for transactions (default: 30s)
//
// Connections are automatically retried with exponential backoff on failure.
// Callers beyond the pool limit wait for a free slot; that wait counts toward
// any context deadline on the call.
//
// # TLS/Encryption
//
// Encryption is controlled via the URI scheme:
//
//   - bolt://     - Unencrypted connection
//   - bolt+s://   - TLS encrypted with system CA verification
//   - neo4j://    - Routing with unencrypted connections
//   - neo4j+s://  - Routing with TLS encryption
//
// # Error Handling
//
// All errors are wrapped in types.Error with specific error codes:
//
//   - ErrCodeGraphConnectionFailed: Connection establishment failed
//   - ErrCodeGraphConnectionClosed: Operation on closed connection
//   - ErrCodeGraphQueryFailed: Query execution failed
//   - ErrCodeGraphQueryTimeout: Query cancelled by context deadline
//
// # Thread Safety
//
// All implementations must be thread-safe for concurrent access. The Neo4j
// driver handles connection pooling and thread safety internally.
package graph
