package unix

import (
	"bytes"
	"context"
	"errors"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/ValentinKolb/hzwire/rpc/transport/base"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test Helpers
// --------------------------------------------------------------------------

// withAuth answers authentication requests and passes everything else to next
func withAuth(status byte, next transport.ServerHandleFunc) transport.ServerHandleFunc {
	return func(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
		if req.MessageType() == codec.ClientAuthenticationRequestMessageType {
			if status == codec.AuthenticationStatusAuthenticated {
				session.SetAuthenticated()
			}
			return codec.EncodeClientAuthenticationResponse(codec.AuthenticationResponse{
				Status:                 status,
				MemberUUID:             uuid.NullUUID{UUID: uuid.New(), Valid: true},
				SerializationVersion:   1,
				ServerHazelcastVersion: "test",
				PartitionCount:         1,
			})
		}
		if !session.Authenticated() {
			return codec.EncodeErrorResponse(codec.NewServerError(codec.ErrorCodeAuthentication, "AuthenticationException", "not authenticated"))
		}
		return next(session, req)
	}
}

// startServer starts a server transport on a socket in a temporary directory and returns the socket path
func startServer(t *testing.T, handler transport.ServerHandleFunc, fragmentSize int) string {
	t.Helper()

	endpoint := filepath.Join(t.TempDir(), "member.sock")
	t.Cleanup(startServerAt(t, endpoint, handler, fragmentSize))
	return endpoint
}

// startServerAt starts a server transport on endpoint and returns a function that stops it
func startServerAt(t *testing.T, endpoint string, handler transport.ServerHandleFunc, fragmentSize int) func() {
	t.Helper()

	server := NewUnixDefaultServerTransport()
	server.RegisterHandler(handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(common.ServerConfig{
			ClusterName: "dev",
			Transport: common.ServerTransportConfig{
				Endpoint:     endpoint,
				FragmentSize: fragmentSize,
			},
		})
	}()

	var stopped atomic.Bool
	stop := func() {
		if !stopped.CompareAndSwap(false, true) {
			return
		}
		server.Close()
		if err := <-errCh; err != nil {
			t.Errorf("Listen() error: %v", err)
		}
	}

	// wait for the socket file
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(endpoint); err == nil {
			return stop
		}
		if time.Now().After(deadline) {
			stop()
			t.Fatalf("server did not start listening on %s", endpoint)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// connectClient connects a client transport and closes it at the end of the test
func connectClient(t *testing.T, config common.ClientConfig) transport.IRPCClientTransport {
	t.Helper()

	client := NewUnixClientTransport()
	if err := client.Connect(config); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func clientConfig(endpoint string) common.ClientConfig {
	return common.ClientConfig{
		ClusterName:   "dev",
		ClientName:    "test",
		TimeoutSecond: 5,
		Transport: common.ClientTransportConfig{
			Endpoints:              []string{endpoint},
			RetryCount:             3,
			ConnectionsPerEndpoint: 2,
		},
	}
}

// pong answers ping requests
func pong(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
	return codec.EncodeClientPingResponse()
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestInvoke tests a simple request and response
func TestInvoke(t *testing.T) {
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, pong), 0)
	client := connectClient(t, clientConfig(endpoint))

	req := codec.EncodeClientPingRequest()
	for i := 0; i < 10; i++ {
		resp, err := client.Invoke(context.Background(), req)
		if err != nil {
			t.Fatalf("Invoke() error: %v", err)
		}
		if err := codec.DecodeClientPingResponse(resp); err != nil {
			t.Errorf("DecodeClientPingResponse() error: %v", err)
		}
		if resp.CorrelationID() == req.CorrelationID() {
			t.Errorf("response has the correlation id of the unsent request")
		}
	}

	var buf bytes.Buffer
	metrics.WritePrometheus(&buf, false)
	if !strings.Contains(buf.String(), `hzwire_client_invocations_total{type="0x000b00"}`) {
		t.Errorf("invocation counter not exported:\n%s", buf.String())
	}
}

// TestInvokeConcurrent tests that concurrent invocations get their own responses
func TestInvokeConcurrent(t *testing.T) {
	echo := func(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
		get, err := codec.DecodeMapGetRequest(req)
		if err != nil {
			return codec.EncodeErrorResponse(codec.NewServerError(codec.ErrorCodeHazelcastSerialization, "SerializationException", err.Error()))
		}
		// answer in random order
		time.Sleep(time.Duration(len(get.Key)%3) * time.Millisecond)
		return codec.EncodeMapGetResponse(get.Key)
	}
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, echo), 0)
	client := connectClient(t, clientConfig(endpoint))

	errCh := make(chan error, 50)
	for i := 0; i < 50; i++ {
		go func(i int) {
			key := bytes.Repeat([]byte{byte(i)}, i+1)
			resp, err := client.Invoke(context.Background(), codec.EncodeMapGetRequest(codec.MapKeyRequest{Name: "m", Key: key}))
			if err != nil {
				errCh <- err
				return
			}
			value, err := codec.DecodeMapGetResponse(resp)
			if err == nil && !bytes.Equal(value, key) {
				err = errors.New("response of another invocation")
			}
			errCh <- err
		}(i)
	}

	for i := 0; i < 50; i++ {
		if err := <-errCh; err != nil {
			t.Errorf("invocation error: %v", err)
		}
	}
}

// TestFragmentation tests requests and responses larger than the fragment size
func TestFragmentation(t *testing.T) {
	echo := func(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
		put, err := codec.DecodeMapPutRequest(req)
		if err != nil {
			return codec.EncodeErrorResponse(codec.NewServerError(codec.ErrorCodeHazelcastSerialization, "SerializationException", err.Error()))
		}
		return codec.EncodeMapPutResponse(put.Value)
	}
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, echo), 256)

	config := clientConfig(endpoint)
	config.Transport.FragmentSize = 128
	client := connectClient(t, config)

	value := bytes.Repeat([]byte("0123456789"), 100)
	resp, err := client.Invoke(context.Background(), codec.EncodeMapPutRequest(codec.MapPutRequest{
		Name:  "m",
		Key:   []byte("k"),
		Value: value,
		TTL:   -1,
	}))
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	got, err := codec.DecodeMapPutResponse(resp)
	if err != nil {
		t.Fatalf("DecodeMapPutResponse() error: %v", err)
	}
	if !bytes.Equal(got, value) {
		t.Errorf("response value has %d bytes, want %d", len(got), len(value))
	}
}

// TestAuthenticationRejected tests that Connect fails if the member rejects the client
func TestAuthenticationRejected(t *testing.T) {
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusCredentialsFailed, pong), 0)

	client := NewUnixClientTransport()
	defer client.Close()
	err := client.Connect(clientConfig(endpoint))
	if !errors.Is(err, base.ErrAuthenticationFailed) {
		t.Errorf("Connect() error = %v, want ErrAuthenticationFailed", err)
	}
}

// TestRetry tests that only retryable requests are sent again
func TestRetry(t *testing.T) {
	var calls atomic.Int32
	// drops the first request of every kind, answers the following ones
	flaky := func(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
		if calls.Add(1) == 1 {
			return nil
		}
		return codec.EncodeClientPingResponse()
	}
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, flaky), 0)

	config := clientConfig(endpoint)
	config.TimeoutSecond = 1
	client := connectClient(t, config)

	if _, err := client.Invoke(context.Background(), codec.EncodeClientPingRequest()); err != nil {
		t.Fatalf("Invoke() of retryable request error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("handler called %d times, want 2", got)
	}

	// a put is not retryable
	calls.Store(0)
	put := codec.EncodeMapPutRequest(codec.MapPutRequest{Name: "m", Key: []byte("k"), Value: []byte("v")})
	if _, err := client.Invoke(context.Background(), put); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Invoke() of non retryable request error = %v, want DeadlineExceeded", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
}

// TestInvokeContextCanceled tests that Invoke returns when the context is done
func TestInvokeContextCanceled(t *testing.T) {
	silent := func(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
		return nil
	}
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, silent), 0)

	config := clientConfig(endpoint)
	config.TimeoutSecond = 0
	client := connectClient(t, config)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Invoke(ctx, codec.EncodeClientPingRequest())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Invoke() error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("Invoke() took %s after the context was done", time.Since(start))
	}
}

// TestInvalidProtocolHeader tests that the member closes connections without the protocol header
func TestInvalidProtocolHeader(t *testing.T) {
	endpoint := startServer(t, withAuth(codec.AuthenticationStatusAuthenticated, pong), 0)

	conn, err := net.Dial("unix", endpoint)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("CB2")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("Read() error = %v, want EOF", err)
	}
}

// TestConnectNoEndpoint tests the configuration check of Connect
func TestConnectNoEndpoint(t *testing.T) {
	client := NewUnixClientTransport()
	if err := client.Connect(common.ClientConfig{}); err == nil {
		t.Errorf("Connect() without endpoints returned no error")
	}
	if err := client.Connect(clientConfig(filepath.Join(t.TempDir(), "missing.sock"))); err == nil {
		t.Errorf("Connect() to a missing socket returned no error")
	}
}

// TestReconnectAfterMemberRestart tests that a connection whose member went away is restored
func TestReconnectAfterMemberRestart(t *testing.T) {
	endpoint := filepath.Join(t.TempDir(), "member.sock")
	handler := withAuth(codec.AuthenticationStatusAuthenticated, pong)

	stop := startServerAt(t, endpoint, handler, 0)
	t.Cleanup(stop)

	config := clientConfig(endpoint)
	config.Transport.ConnectionsPerEndpoint = 1
	config.TimeoutSecond = 1
	client := connectClient(t, config)

	if _, err := client.Invoke(context.Background(), codec.EncodeClientPingRequest()); err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}

	// the member goes away, the first reconnect attempts fail
	stop()
	time.Sleep(200 * time.Millisecond)

	t.Cleanup(startServerAt(t, endpoint, handler, 0))

	deadline := time.Now().Add(10 * time.Second)
	for {
		_, err := client.Invoke(context.Background(), codec.EncodeClientPingRequest())
		if err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Invoke() after restart error: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
