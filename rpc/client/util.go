package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// defaultThreadID is sent with all map operations, this client holds no locks
const defaultThreadID int64 = 1

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCClient and the map proxies with composition pattern
type rpcClientAdapter struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a context, a request message and a transport layer as parameters
// It returns the response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func invokeRPCRequest(ctx context.Context, req *protocol.ClientMessage, transport transport.IRPCClientTransport) (*protocol.ClientMessage, error) {
	// Send the request
	resp, err := transport.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	// Check if the response is an error response
	if codec.IsErrorResponse(resp) {
		serverErr, err := codec.DecodeErrorResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("RPC %s - failed to decode error response: %w", codec.MessageTypeName(req.MessageType()), err)
		}
		return nil, serverErr
	}

	// Check if the type of the response is the expected type
	if expected := req.MessageType() + 1; resp.MessageType() != expected {
		return nil, fmt.Errorf("RPC %s - unexpected message type: %s, expected %s",
			codec.MessageTypeName(req.MessageType()), codec.MessageTypeName(resp.MessageType()), codec.MessageTypeName(expected))
	}

	// Return the response
	return resp, nil
}
