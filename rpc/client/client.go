package client

import (
	"context"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
)

// RPCClient is a client of a Hazelcast cluster
type RPCClient struct {
	rpcClientAdapter
}

// NewRPCClient creates a new RPC client
// The function takes a config and a transport as parameters, the transport is connected
// to all endpoints of the config before the client is returned
func NewRPCClient(config common.ClientConfig, transport transport.IRPCClientTransport) (*RPCClient, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	Logger.Debugf("Created RPC client %q for cluster %q", config.ClientName, config.ClusterName)

	return &RPCClient{
		rpcClientAdapter{
			config:    config,
			transport: transport,
		},
	}, nil
}

// Ping sends a ping to the cluster and waits for the answer
func (c *RPCClient) Ping(ctx context.Context) error {
	resp, err := invokeRPCRequest(ctx, codec.EncodeClientPingRequest(), c.transport)
	if err != nil {
		return err
	}
	return codec.DecodeClientPingResponse(resp)
}

// GetMap returns a proxy of the distributed map with the given name.
// Maps are created by the cluster on first use, this call sends no request.
func (c *RPCClient) GetMap(name string) IMap {
	return &rpcMap{
		rpcClientAdapter: c.rpcClientAdapter,
		name:             name,
	}
}

// Close closes all connections of the client
func (c *RPCClient) Close() error {
	return c.transport.Close()
}
