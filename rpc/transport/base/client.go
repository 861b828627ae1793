package base

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

const (
	// clientType is sent on authentication, members use it for statistics only
	clientType = "GOO"
	// clientVersion is the protocol version the codecs implement
	clientVersion = "5.3.0"
	// serializationVersion of the default serialization service
	serializationVersion byte = 1
	// readerBufferSize is the size of the buffered reader of every connection
	readerBufferSize = 64 * 1024
	// initialReconnectBackoff and maxReconnectBackoff bound the wait between reconnect attempts
	initialReconnectBackoff = 50 * time.Millisecond
	maxReconnectBackoff     = 5 * time.Second
)

// ErrNotConnected is returned by Invoke if no connection is available
var ErrNotConnected = errors.New("transport: no active connections available")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	msg *protocol.ClientMessage
	err error
}

// clientConnection represents a single authenticated net connection
type clientConnection struct {
	conn      net.Conn
	reader    *bufio.Reader
	endpoint  string
	stopCh    chan struct{} // Close signal for the reader goroutine
	pending   *xsync.MapOf[int64, chan responseResult]
	assembler *protocol.FragmentAssembler
	connMu    sync.Mutex  // Protects the connection itself
	connected atomic.Bool // Set while conn is authenticated and usable
	parent    *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector           IClientConnector
	config              common.ClientConfig
	clientUUID          uuid.UUID
	connections         []*clientConnection
	connectionsMu       sync.RWMutex
	nextConnIndex       uint64 // Atomic counter for Round Robin
	nextCorrelationID   int64  // Atomic counter for unique correlation ids
	nextFragmentationID int64  // Atomic counter for fragmented requests
	stopping            atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:  connector,
		clientUUID: uuid.New(),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	// Close all existing connections
	t.closeConnections()

	// Store the config
	t.config = config
	t.stopping.Store(false)

	// Set default value for ConnectionsPerEndpoint
	connectionsPerEP := 1
	if config.Transport.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.Transport.ConnectionsPerEndpoint
	}

	connections := make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)
	var lastErr error

	// Initialize client connections
	for _, endpoint := range config.Transport.Endpoints {
		// Create multiple connections per endpoint
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:  endpoint,
				stopCh:    make(chan struct{}),
				pending:   xsync.NewMapOf[int64, chan responseResult](),
				assembler: protocol.NewFragmentAssembler(),
				parent:    t,
			}

			// Establish the initial connection using reconnect
			if err := clientConn.reconnect(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				lastErr = err
				continue
			}

			connections = append(connections, clientConn)
			Logger.Infof("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)

			// Start the response reader
			go clientConn.readResponses()
		}
	}

	// Check if we have at least one connection
	if len(connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint: %w", lastErr)
	}

	t.connectionsMu.Lock()
	t.connections = connections
	t.connectionsMu.Unlock()

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(connections), len(config.Transport.Endpoints)*connectionsPerEP, len(config.Transport.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Invoke(ctx context.Context, req *protocol.ClientMessage) (*protocol.ClientMessage, error) {
	messageType := req.MessageType()
	start := time.Now()

	// Define the send function to be used in retries
	send := func(connection *clientConnection, msg *protocol.ClientMessage) (*protocol.ClientMessage, error) {
		correlationID := msg.CorrelationID()

		// Create a channel for the response, buffered so the reader never blocks
		respCh := make(chan responseResult, 1)

		// Register the request before writing, the response may arrive before write returns
		connection.pending.Store(correlationID, respCh)
		defer connection.pending.Delete(correlationID)

		if err := connection.write(msg); err != nil {
			return nil, err
		}

		// Wait for response, cancellation or timeout
		waitCtx := ctx
		if t.config.TimeoutSecond > 0 {
			var cancel context.CancelFunc
			waitCtx, cancel = context.WithTimeout(ctx, time.Duration(t.config.TimeoutSecond)*time.Second)
			defer cancel()
		}

		select {
		case result := <-respCh:
			return result.msg, result.err
		case <-waitCtx.Done():
			return nil, fmt.Errorf("invocation %d: %w", correlationID, waitCtx.Err())
		}
	}

	// Only retryable requests are sent more than once, a non retryable request
	// may have been executed by the member even if the response was lost
	maxAttempts := 1
	if req.IsRetryable() && t.config.Transport.RetryCount > 1 {
		maxAttempts = t.config.Transport.RetryCount
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50
	var lastErr error

	for i := 0; i < maxAttempts; i++ {
		conn := t.getNextConnection()
		if conn == nil {
			lastErr = ErrNotConnected
			break
		}

		// every attempt gets its own correlation id, late responses of earlier attempts are dropped
		correlationID := atomic.AddInt64(&t.nextCorrelationID, 1)
		resp, err := send(conn, req.CopyWithNewCorrelationID(correlationID))
		if err == nil {
			metrics.GetOrCreateCounter(fmt.Sprintf(`hzwire_client_invocations_total{type="0x%06x"}`, messageType)).Inc()
			metrics.GetOrCreateHistogram(fmt.Sprintf(`hzwire_client_invocation_duration_seconds{type="0x%06x"}`, messageType)).Update(time.Since(start).Seconds())
			return resp, nil
		}

		lastErr = err
		Logger.Debugf("Invocation attempt %d/%d of 0x%06x failed: %v", i+1, maxAttempts, messageType, err)

		if ctx.Err() != nil || i == maxAttempts-1 {
			break
		}

		metrics.GetOrCreateCounter(`hzwire_client_retries_total`).Inc()

		// Exponential backoff with a small random jitter (+-10%)
		jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
		select {
		case <-time.After(time.Duration(jitter) * time.Millisecond):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
		backoffMs *= 2
	}

	// All attempts failed
	metrics.GetOrCreateCounter(fmt.Sprintf(`hzwire_client_invocation_errors_total{type="0x%06x"}`, messageType)).Inc()
	return nil, fmt.Errorf("invocation of 0x%06x failed: %w", messageType, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping.Store(true)
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getNextConnection selects the next connection via Round Robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	// optimize for single connection
	if len(t.connections) == 1 {
		return t.connections[0]
	}

	// Simple Round Robin algorithm, connections that are reconnecting are skipped
	start := atomic.AddUint64(&t.nextConnIndex, 1)
	for i := uint64(0); i < uint64(len(t.connections)); i++ {
		conn := t.connections[(start+i)%uint64(len(t.connections))]
		if conn.connected.Load() {
			return conn
		}
	}
	// all connections are down, the write fails and the invocation may be retried
	return t.connections[start%uint64(len(t.connections))]
}

// closeConnections closes all active connections and fails their pending invocations
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, conn := range t.connections {
		// Signal reader goroutine to stop
		close(conn.stopCh)

		// Close the connection
		conn.connMu.Lock()
		conn.connected.Store(false)
		if conn.conn != nil {
			conn.conn.Close()
		}
		conn.connMu.Unlock()

		conn.failPending(fmt.Errorf("transport closed"))
	}

	// Empty the list
	t.connections = nil
}

// maxFrameSize returns the frame limit for reading
func (t *clientTransport) maxFrameSize() int {
	if t.config.Transport.MaxFrameSize > 0 {
		return t.config.Transport.MaxFrameSize
	}
	return protocol.DefaultMaxFrameSize
}

func (t *clientTransport) fragmentationID() int64 {
	return atomic.AddInt64(&t.nextFragmentationID, 1)
}

// write sends a message, the connection lock serializes all writers
func (c *clientConnection) write(msg *protocol.ClientMessage) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Test if connection is still valid
	if c.conn == nil {
		return fmt.Errorf("connection to %s is closed", c.endpoint)
	}

	// Set write timeout
	if c.parent.config.TimeoutSecond > 0 {
		timeout := time.Duration(c.parent.config.TimeoutSecond) * time.Second
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	if err := writeMessage(c.conn, msg, c.parent.config.Transport.FragmentSize, c.parent.fragmentationID); err != nil {
		return err
	}
	metrics.GetOrCreateCounter(`hzwire_client_messages_sent_total`).Inc()
	metrics.GetOrCreateCounter(`hzwire_client_bytes_sent_total`).Add(msg.TotalLength())
	return nil
}

// current returns the connection and its reader, nil if the connection is down
func (c *clientConnection) current() (net.Conn, *bufio.Reader) {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn, c.reader
}

// failPending completes all waiting invocations of this connection with err
func (c *clientConnection) failPending(err error) {
	c.pending.Range(func(correlationID int64, respCh chan responseResult) bool {
		select {
		case respCh <- responseResult{err: err}:
		default:
		}
		return true
	})
}

// stopped reports whether the connection was closed by the transport
func (c *clientConnection) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// readResponses reads responses in a loop and distributes them to waiting requests
func (c *clientConnection) readResponses() {
	for {
		// Check if we should stop
		if c.stopped() {
			return
		}

		conn, reader := c.current()
		if conn == nil {
			return
		}

		msg, err := readMessage(reader, c.parent.maxFrameSize(), c.assembler)
		if err != nil {
			if c.stopped() {
				return
			}

			if isClosedErr(err) {
				Logger.Warningf("Connection to %s closed by member", c.endpoint)
			} else {
				Logger.Errorf("Error reading from %s: %v", c.endpoint, err)
			}

			// the stream position is lost, every waiting invocation fails
			c.failPending(fmt.Errorf("connection to %s lost: %w", c.endpoint, err))

			// Try to restore the connection, the connection stays unusable until then
			if !c.reconnectWithBackoff() {
				return
			}
			continue
		}

		metrics.GetOrCreateCounter(`hzwire_client_messages_received_total`).Inc()
		metrics.GetOrCreateCounter(`hzwire_client_bytes_received_total`).Add(msg.TotalLength())

		if msg.IsEvent() {
			// no listeners are registered by this client
			metrics.GetOrCreateCounter(`hzwire_client_events_total`).Inc()
			Logger.Debugf("Ignoring event %s from %s", msg, c.endpoint)
			continue
		}

		// Find the corresponding request channel
		respCh, found := c.pending.Load(msg.CorrelationID())
		if !found {
			Logger.Warningf("Received response for unknown correlation id %d from %s", msg.CorrelationID(), c.endpoint)
			continue
		}

		select {
		case respCh <- responseResult{msg: msg}:
		default:
			Logger.Warningf("Dropping duplicate response for correlation id %d", msg.CorrelationID())
		}
	}
}

// reconnectWithBackoff retries reconnect with exponential backoff until it
// succeeds or the connection is stopped. Returns false if it was stopped.
func (c *clientConnection) reconnectWithBackoff() bool {
	backoff := initialReconnectBackoff
	for {
		metrics.GetOrCreateCounter(`hzwire_client_reconnects_total`).Inc()
		err := c.reconnect()
		if err == nil {
			Logger.Infof("Reconnected to %s", c.endpoint)
			return true
		}
		if c.stopped() || c.parent.stopping.Load() {
			return false
		}

		Logger.Warningf("Failed to reconnect to %s, retrying in %s: %v", c.endpoint, backoff, err)
		select {
		case <-c.stopCh:
			return false
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, maxReconnectBackoff)
	}
}

// reconnect establishes or restores a connection to the endpoint and authenticates it
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	// Close the old connection if it exists
	c.connected.Store(false)
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.reader = nil
	}

	if c.parent.stopping.Load() {
		return fmt.Errorf("transport is closing")
	}

	// Connect to the endpoint
	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.endpoint, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %w", c.endpoint, err)
	}

	reader := bufio.NewReaderSize(conn, readerBufferSize)
	resp, err := c.authenticate(conn, reader)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to authenticate with %s: %w", c.endpoint, err)
	}

	c.conn = conn
	c.reader = reader
	c.assembler = protocol.NewFragmentAssembler()
	c.connected.Store(true)

	Logger.Debugf("Authenticated with member %s at %s (version %s, %d partitions)",
		resp.MemberUUID.UUID, c.endpoint, resp.ServerHazelcastVersion, resp.PartitionCount)
	return nil
}

// authenticate sends the protocol header and the authentication request on a new
// connection and waits for the response. The reader goroutine is not running yet.
func (c *clientConnection) authenticate(conn net.Conn, reader *bufio.Reader) (codec.AuthenticationResponse, error) {
	config := c.parent.config

	if config.TimeoutSecond > 0 {
		deadline := time.Now().Add(time.Duration(config.TimeoutSecond) * time.Second)
		if err := conn.SetDeadline(deadline); err != nil {
			return codec.AuthenticationResponse{}, err
		}
		// the reader goroutine waits without deadline
		defer conn.SetDeadline(time.Time{})
	}

	if err := protocol.WriteProtocolHeader(conn); err != nil {
		return codec.AuthenticationResponse{}, err
	}

	req := codec.AuthenticationRequest{
		ClusterName:            config.ClusterName,
		UUID:                   uuid.NullUUID{UUID: c.parent.clientUUID, Valid: true},
		ClientType:             clientType,
		SerializationVersion:   serializationVersion,
		ClientHazelcastVersion: clientVersion,
		ClientName:             config.ClientName,
		Labels:                 config.Labels,
	}
	if req.Labels == nil {
		req.Labels = []string{}
	}
	if config.Username != "" {
		req.Username = &config.Username
		req.Password = &config.Password
	}

	msg := codec.EncodeClientAuthenticationRequest(req)
	msg.SetCorrelationID(atomic.AddInt64(&c.parent.nextCorrelationID, 1))
	if err := protocol.WriteMessage(conn, msg); err != nil {
		return codec.AuthenticationResponse{}, err
	}

	respMsg, err := readMessage(reader, c.parent.maxFrameSize(), protocol.NewFragmentAssembler())
	if err != nil {
		return codec.AuthenticationResponse{}, err
	}
	if codec.IsErrorResponse(respMsg) {
		serverErr, err := codec.DecodeErrorResponse(respMsg)
		if err != nil {
			return codec.AuthenticationResponse{}, err
		}
		return codec.AuthenticationResponse{}, serverErr
	}

	resp, err := codec.DecodeClientAuthenticationResponse(respMsg)
	if err != nil {
		return resp, err
	}
	if resp.Status != codec.AuthenticationStatusAuthenticated {
		return resp, fmt.Errorf("%w: %s", ErrAuthenticationFailed, authenticationStatusName(resp.Status))
	}
	return resp, nil
}
