// Package server implements a stub member that speaks the Hazelcast client protocol.
// It is no cluster member: there is no partitioning, replication or discovery. It answers
// the requests of the client service and the map service from memory, which makes it
// useful for local testing of clients and for the tests of this module.
//
// The package focuses on:
//   - Server-side handling of the requests implemented by the codec package
//   - Adapter pattern routing requests by the service id of their message type
//   - Authentication of every connection by cluster name before any other request
//   - Request statistics per message type
//
// Key Components:
//
//   - IRPCServerAdapter: Interface of the service adapters, with the Handle method that
//     processes a request of one session and returns the response or an error.
//
//   - clientServerAdapter: Answers Client.Authentication and Client.Ping. Clients of a
//     different cluster are answered with the CREDENTIALS_FAILED status.
//
//   - mapServerAdapter: Answers Map.Put, Map.Get, Map.Remove, Map.Size, Map.EntrySet and
//     Map.PutAll from an in-memory store. Keys are compared by their serialized bytes,
//     a positive ttl of Map.Put expires the entry.
//
//   - NewRPCServer: Factory function creating a member on the specified transport.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  ClusterName: "dev",
//	  Transport: common.ServerTransportConfig{
//	    Endpoint: "0.0.0.0:5701",
//	  },
//	  LogLevel: "info",
//	}
//
//	s := server.NewRPCServer(config, tcp.NewTCPDefaultServerTransport())
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Errors:
//
//	Failed requests are answered with an error response. Requests before a successful
//	authentication get an AuthenticationException, unknown message types an
//	UnsupportedOperationException and requests that cannot be decoded a
//	HazelcastSerializationException.
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	Serve should be called only once.
package server
