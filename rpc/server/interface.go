package server

import (
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/rpc/transport"
)

// Service ids, the highest byte of a message type
const (
	clientServiceID int32 = 0x00
	mapServiceID    int32 = 0x01
)

// IRPCServerAdapter is the interface for all RPC server adapters
// An adapter handles the requests of one service of the protocol
type IRPCServerAdapter interface {
	// Handle handles a request of an authenticated session (or an authentication request)
	// and returns the response. A returned *codec.ServerError is sent to the client as
	// error response, any other error as serialization error.
	Handle(session *transport.Session, req *protocol.ClientMessage) (resp *protocol.ClientMessage, err error)
}
