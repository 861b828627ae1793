// Package transport defines the interfaces for moving Hazelcast client
// protocol messages between a client and a member. It provides a common
// contract that all transport implementations must fulfill.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Request and response correlation by correlation id
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management, authentication and invocations.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and passes them to a handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
//   - Session: Per connection state on the member side, e.g. whether the
//     client already authenticated.
package transport
