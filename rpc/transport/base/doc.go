// Package base provides the transport implementation shared by all stream
// sockets (TCP, Unix sockets). It speaks the Hazelcast client protocol on the
// wire and can be extended with protocol-specific connectors.
//
// The package focuses on:
//   - The connection handshake: the "CP2" protocol header followed by the
//     authentication request
//   - Correlation of responses to requests by correlation id
//   - Fragmentation of large messages and reassembly of fragments
//   - Robust error handling with retries and reconnection logic
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: Core client implementation that manages multiple connections
//     with round-robin load balancing. Every connection is authenticated and has
//     a reader goroutine that dispatches responses to waiting invocations.
//
//   - serverTransport: Core server implementation that accepts connections, checks
//     the protocol header and passes complete requests to the handler.
//
// Invocation Semantics:
//
//   - Every attempt of an invocation gets a new correlation id, responses to
//     earlier attempts are dropped.
//
//   - Only requests marked retryable are retried, with exponential backoff.
//     Requests that mutate state are sent once, a lost response does not mean
//     the member did not execute them.
//
//   - If reading from a connection fails, all invocations waiting on it fail
//     and the connection is reestablished, including a new authentication.
//
// Performance Optimizations:
//
//   - Connection Pooling: Multiple connections per endpoint improve throughput
//     for high-load scenarios.
//
//   - Buffer Pooling: The server reuses bufio.Readers through a sync.Pool.
//
//   - Asynchronous Processing: The client sends requests and correlates responses
//     asynchronously, the server processes requests of one connection with a
//     bounded number of workers.
//
//   - Frame Batching: All frames of a message are written with net.Buffers,
//     combining them into a single write operation.
//
// Metrics:
//
//	The client records invocation counts, durations, errors, retries,
//	reconnects and ignored events with VictoriaMetrics/metrics in the default
//	set, see metrics.WritePrometheus.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client transport uses atomic operations
//	and mutexes to ensure concurrent access safety, while the server creates a
//	dedicated goroutine for each connection.
package base
