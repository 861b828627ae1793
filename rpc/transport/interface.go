package transport

import (
	"context"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// Session is the state of one client connection on the member side
type Session struct {
	// ID is unique per server transport
	ID int64
	// RemoteAddr is the address of the client
	RemoteAddr    string
	authenticated atomic.Bool
}

// NewSession creates the state of a new connection
func NewSession(id int64, remoteAddr string) *Session {
	return &Session{ID: id, RemoteAddr: remoteAddr}
}

// Authenticated reports whether the client passed authentication on this connection
func (s *Session) Authenticated() bool {
	return s.authenticated.Load()
}

// SetAuthenticated marks the connection as authenticated
func (s *Session) SetAuthenticated() {
	s.authenticated.Store(true)
}

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a complete (reassembled) request is received
// It returns the response, the transport copies the correlation id of the request onto it
type ServerHandleFunc func(session *Session, req *protocol.ClientMessage) (resp *protocol.ClientMessage)

// IRPCServerTransport is the interface for the RPC transport layer
// It must accept a ServerConfig as a parameter
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every request received on any connection
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and blocks while accepting connections
	// It returns nil after Close was called
	Listen(config common.ServerConfig) error
	// Close stops accepting connections and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport
type IRPCClientTransport interface {
	// Connect opens and authenticates the connections to all endpoints of the configuration
	Connect(config common.ClientConfig) error
	// Invoke sends a request and waits for the response with the same correlation id.
	// The correlation id of req is replaced, req itself is not modified.
	Invoke(ctx context.Context, req *protocol.ClientMessage) (resp *protocol.ClientMessage, err error)
	// Close closes the transport connection
	Close() error
}
