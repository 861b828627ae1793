// Package rpc provides the client and member side of the Hazelcast client protocol
// on top of the codecs in lib/protocol. It acts as the communication layer between
// clients and members, handling connections, authentication and invocations.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures and logging shared by client and member.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets). Handles the protocol header, authentication, correlation
//     ids, fragmentation and retries.
//
//   - client: The RPC client with its map proxies, allowing applications to use
//     the maps of a cluster through the protocol.
//
//   - server: A stub member that answers authentication, ping and map requests
//     from memory, used for local testing.
package rpc
