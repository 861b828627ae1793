package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"sort"
	"time"
)

var Logger = logger.GetLogger("member")

// Class names of the error responses sent by the member
const (
	authenticationClass        = "com.hazelcast.client.AuthenticationException"
	serializationClass         = "com.hazelcast.nio.serialization.HazelcastSerializationException"
	unsupportedOperationClass  = "java.lang.UnsupportedOperationException"
	requestsMeterName          = "requests"
	errorsMeterName            = "errors"
	requestTimerNamePrefix     = "request."
	unauthenticatedRequestText = "connection is not authenticated"
)

// RequestStats are the statistics of one message type
type RequestStats struct {
	Count int64
	Mean  time.Duration
	P99   time.Duration
}

// RPCServer is a stub member. It speaks the client protocol on its transport,
// authenticates clients by cluster name and serves maps from memory.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	memberUUID uuid.UUID
	// adapters by service id
	adapters map[int32]IRPCServerAdapter
	store    *mapStore
	metrics  gometrics.Registry
}

// NewRPCServer creates a new RPC server
// It takes a config and transport as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		tcp.NewTCPDefaultServerTransport(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(config common.ServerConfig, transport transport.IRPCServerTransport) *RPCServer {
	memberUUID := uuid.New()
	store := newMapStore()

	s := &RPCServer{
		config:     config,
		transport:  transport,
		memberUUID: memberUUID,
		store:      store,
		metrics:    gometrics.NewRegistry(),
		adapters: map[int32]IRPCServerAdapter{
			clientServiceID: newClientServerAdapter(config, memberUUID),
			mapServiceID:    newMapServerAdapter(store),
		},
	}

	Logger.Infof("Created member %s", memberUUID)
	Logger.Infof("Configuration:%s", config.String())

	return s
}

// Serve registers the request handler and starts the transport layer.
// It blocks until Close is called.
func (s *RPCServer) Serve() error {
	s.transport.RegisterHandler(s.handle)
	return s.transport.Listen(s.config)
}

// Close stops the transport and logs the request statistics
func (s *RPCServer) Close() error {
	err := s.transport.Close()
	s.logStats()
	return err
}

// Stats returns the request statistics per message type name
func (s *RPCServer) Stats() map[string]RequestStats {
	stats := make(map[string]RequestStats)
	s.metrics.Each(func(name string, metric interface{}) {
		timer, ok := metric.(gometrics.Timer)
		if !ok || len(name) <= len(requestTimerNamePrefix) {
			return
		}
		stats[name[len(requestTimerNamePrefix):]] = RequestStats{
			Count: timer.Count(),
			Mean:  time.Duration(timer.Mean()),
			P99:   time.Duration(timer.Percentile(0.99)),
		}
	})
	return stats
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handle is the transport handler. Requests on connections without successful
// authentication are answered with an error, every other request is routed
// to the adapter of its service.
func (s *RPCServer) handle(session *transport.Session, req *protocol.ClientMessage) *protocol.ClientMessage {
	messageType := req.MessageType()
	timer := gometrics.GetOrRegisterTimer(requestTimerNamePrefix+codec.MessageTypeName(messageType), s.metrics)
	defer timer.UpdateSince(time.Now())
	gometrics.GetOrRegisterMeter(requestsMeterName, s.metrics).Mark(1)

	var resp *protocol.ClientMessage
	var err error

	adapter, ok := s.adapters[codec.ServiceID(messageType)]
	switch {
	case !session.Authenticated() && messageType != codec.ClientAuthenticationRequestMessageType:
		err = codec.NewServerError(codec.ErrorCodeAuthentication, authenticationClass, unauthenticatedRequestText)
	case !ok:
		err = codec.NewServerError(codec.ErrorCodeUnsupportedOperation, unsupportedOperationClass,
			fmt.Sprintf("unsupported message type %s", codec.MessageTypeName(messageType)))
	default:
		resp, err = adapter.Handle(session, req)
	}

	if err == nil {
		return resp
	}

	gometrics.GetOrRegisterMeter(errorsMeterName, s.metrics).Mark(1)
	Logger.Debugf("Request %s on connection %d failed: %v", codec.MessageTypeName(messageType), session.ID, err)

	var serverErr *codec.ServerError
	if !errors.As(err, &serverErr) {
		// decoding failed
		serverErr = codec.NewServerError(codec.ErrorCodeHazelcastSerialization, serializationClass, err.Error())
	}
	return codec.EncodeErrorResponse(serverErr)
}

// logStats logs the request statistics sorted by message type name
func (s *RPCServer) logStats() {
	stats := s.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	requests := gometrics.GetOrRegisterMeter(requestsMeterName, s.metrics)
	failed := gometrics.GetOrRegisterMeter(errorsMeterName, s.metrics)
	Logger.Infof("Served %d requests (%d failed, %.2f req/s mean)", requests.Count(), failed.Count(), requests.RateMean())

	for _, name := range names {
		st := stats[name]
		Logger.Infof("  %-32s count=%d mean=%s p99=%s", name, st.Count, st.Mean, st.P99)
	}
}
