package server

import (
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/common"
	"github.com/ValentinKolb/hzwire/rpc/transport"
	"github.com/google/uuid"
	"net"
	"strconv"
)

const (
	// memberVersion is reported to clients on authentication
	memberVersion = "5.3.0"
	// defaultPartitionCount is the partition count of a member without configuration
	defaultPartitionCount int32 = 271
	// serializationVersion is the only serialization version the member accepts
	serializationVersion byte = 1
)

func newClientServerAdapter(config common.ServerConfig, memberUUID uuid.UUID) IRPCServerAdapter {
	partitionCount := config.PartitionCount
	if partitionCount <= 0 {
		partitionCount = defaultPartitionCount
	}

	return &clientServerAdapter{
		clusterName:    config.ClusterName,
		memberUUID:     memberUUID,
		clusterID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(config.ClusterName)),
		partitionCount: partitionCount,
		address:        endpointAddress(config.Transport.Endpoint),
	}
}

// clientServerAdapter answers the requests of the client service
type clientServerAdapter struct {
	clusterName    string
	memberUUID     uuid.UUID
	clusterID      uuid.UUID
	partitionCount int32
	address        *codec.Address
}

func (adapter *clientServerAdapter) Handle(session *transport.Session, req *protocol.ClientMessage) (*protocol.ClientMessage, error) {
	switch req.MessageType() {
	case codec.ClientAuthenticationRequestMessageType:
		auth, err := codec.DecodeClientAuthenticationRequest(req)
		if err != nil {
			return nil, err
		}
		return adapter.authenticate(session, auth), nil

	case codec.ClientPingRequestMessageType:
		return codec.EncodeClientPingResponse(), nil

	default:
		return nil, codec.NewServerError(codec.ErrorCodeUnsupportedOperation, unsupportedOperationClass,
			fmt.Sprintf("client service: unsupported message type %s", codec.MessageTypeName(req.MessageType())))
	}
}

// authenticate checks the cluster name and the serialization version,
// the session is marked as authenticated on success
func (adapter *clientServerAdapter) authenticate(session *transport.Session, auth codec.AuthenticationRequest) *protocol.ClientMessage {
	resp := codec.AuthenticationResponse{
		Status:                 codec.AuthenticationStatusAuthenticated,
		Address:                adapter.address,
		MemberUUID:             uuid.NullUUID{UUID: adapter.memberUUID, Valid: true},
		SerializationVersion:   serializationVersion,
		ServerHazelcastVersion: memberVersion,
		PartitionCount:         adapter.partitionCount,
		ClusterID:              uuid.NullUUID{UUID: adapter.clusterID, Valid: true},
	}

	switch {
	case auth.ClusterName != adapter.clusterName:
		Logger.Warningf("Rejecting client %q on connection %d: cluster name %q does not match", auth.ClientName, session.ID, auth.ClusterName)
		resp.Status = codec.AuthenticationStatusCredentialsFailed
	case auth.SerializationVersion != serializationVersion:
		Logger.Warningf("Rejecting client %q on connection %d: serialization version %d", auth.ClientName, session.ID, auth.SerializationVersion)
		resp.Status = codec.AuthenticationStatusSerializationVersionMismatch
	default:
		session.SetAuthenticated()
		Logger.Infof("Authenticated client %q (%s %s, uuid %s) on connection %d from %s",
			auth.ClientName, auth.ClientType, auth.ClientHazelcastVersion, auth.UUID.UUID, session.ID, session.RemoteAddr)
	}

	return codec.EncodeClientAuthenticationResponse(resp)
}

// endpointAddress returns the address of a tcp endpoint, nil for unix socket paths
func endpointAddress(endpoint string) *codec.Address {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil
	}
	return &codec.Address{Host: host, Port: int32(port)}
}
