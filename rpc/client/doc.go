// Package client implements a thin RPC client of a Hazelcast cluster on top of the
// client protocol codecs and a client transport.
//
// The package focuses on:
//   - Connecting and authenticating through the configured transport layer
//   - Map proxies forwarding operations on serialized keys and values to the cluster
//   - Error handling and conversion of error responses into *codec.ServerError
//
// Key Components:
//
//   - NewRPCClient: Factory function that connects the transport and returns an RPCClient.
//
//   - RPCClient.GetMap: Returns an IMap proxy. The proxy holds no state besides the name
//     of the map, every call is one invocation.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  ClusterName:   "dev",
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{
//	    Endpoints:              []string{"localhost:5701"},
//	    RetryCount:             3,
//	    ConnectionsPerEndpoint: 1,
//	  },
//	}
//
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport())
//	if err != nil {
//	  log.Fatalf("Failed to connect: %v", err)
//	}
//	defer c.Close()
//
//	m := c.GetMap("users")
//	previous, err := m.Put(ctx, []byte("key"), []byte("value"))
//
// Error Handling:
//
//	Errors of the member are returned as *codec.ServerError, use errors.As to read the
//	error code and the class name. Transport errors are returned as they are, e.g. a
//	context.DeadlineExceeded wrapped by the transport after the timeout.
//
// Thread Safety:
//
//	The client and its map proxies are thread-safe and can be used concurrently.
package client
