package codec

import (
	"fmt"

	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Client.Authentication
// --------------------------------------------------------------------------

const (
	ClientAuthenticationRequestMessageType  int32 = 0x000100
	ClientAuthenticationResponseMessageType int32 = 0x000101

	clientAuthenticationRequestUUIDFieldOffset                 = protocol.PartitionIDFieldOffset + protocol.IntSizeInBytes
	clientAuthenticationRequestSerializationVersionFieldOffset = clientAuthenticationRequestUUIDFieldOffset + protocol.UUIDSizeInBytes
	clientAuthenticationRequestInitialFrameSize                = clientAuthenticationRequestSerializationVersionFieldOffset + protocol.ByteSizeInBytes

	clientAuthenticationResponseStatusFieldOffset               = protocol.ResponseBackupAcksFieldOffset + protocol.ByteSizeInBytes
	clientAuthenticationResponseMemberUUIDFieldOffset           = clientAuthenticationResponseStatusFieldOffset + protocol.ByteSizeInBytes
	clientAuthenticationResponseSerializationVersionFieldOffset = clientAuthenticationResponseMemberUUIDFieldOffset + protocol.UUIDSizeInBytes
	clientAuthenticationResponsePartitionCountFieldOffset       = clientAuthenticationResponseSerializationVersionFieldOffset + protocol.ByteSizeInBytes
	clientAuthenticationResponseClusterIDFieldOffset            = clientAuthenticationResponsePartitionCountFieldOffset + protocol.IntSizeInBytes
	clientAuthenticationResponseFailoverSupportedFieldOffset    = clientAuthenticationResponseClusterIDFieldOffset + protocol.UUIDSizeInBytes
	clientAuthenticationResponseInitialFrameSize                = clientAuthenticationResponseFailoverSupportedFieldOffset + protocol.BooleanSizeInBytes
)

// Authentication status codes
const (
	AuthenticationStatusAuthenticated                byte = 0
	AuthenticationStatusCredentialsFailed            byte = 1
	AuthenticationStatusSerializationVersionMismatch byte = 2
	AuthenticationStatusNotAllowedInCluster          byte = 3
)

// AuthenticationRequest is the first request on every connection
type AuthenticationRequest struct {
	ClusterName            string
	Username               *string
	Password               *string
	UUID                   uuid.NullUUID
	ClientType             string
	SerializationVersion   byte
	ClientHazelcastVersion string
	ClientName             string
	Labels                 []string
}

// AuthenticationResponse is the answer of the member to an AuthenticationRequest
type AuthenticationResponse struct {
	Status                 byte
	Address                *Address
	MemberUUID             uuid.NullUUID
	SerializationVersion   byte
	ServerHazelcastVersion string
	PartitionCount         int32
	ClusterID              uuid.NullUUID
	FailoverSupported      bool
}

func EncodeClientAuthenticationRequest(req AuthenticationRequest) *protocol.ClientMessage {
	msg, initialFrame := newRequest(ClientAuthenticationRequestMessageType, clientAuthenticationRequestInitialFrameSize, true)
	protocol.EncodeUUID(initialFrame, clientAuthenticationRequestUUIDFieldOffset, req.UUID)
	protocol.EncodeByte(initialFrame, clientAuthenticationRequestSerializationVersionFieldOffset, req.SerializationVersion)
	EncodeString(msg, req.ClusterName)
	EncodeNullableString(msg, req.Username)
	EncodeNullableString(msg, req.Password)
	EncodeString(msg, req.ClientType)
	EncodeString(msg, req.ClientHazelcastVersion)
	EncodeString(msg, req.ClientName)
	EncodeListString(msg, req.Labels)
	return msg
}

func DecodeClientAuthenticationRequest(msg *protocol.ClientMessage) (AuthenticationRequest, error) {
	var req AuthenticationRequest
	it, initialFrame, err := startFrame(msg, ClientAuthenticationRequestMessageType, clientAuthenticationRequestInitialFrameSize)
	if err != nil {
		return req, fmt.Errorf("decode authentication request: %w", err)
	}
	req.UUID = protocol.DecodeUUID(initialFrame, clientAuthenticationRequestUUIDFieldOffset)
	req.SerializationVersion = protocol.DecodeByte(initialFrame, clientAuthenticationRequestSerializationVersionFieldOffset)
	if req.ClusterName, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode authentication request cluster name: %w", err)
	}
	if req.Username, err = DecodeNullableString(it); err != nil {
		return req, fmt.Errorf("decode authentication request username: %w", err)
	}
	if req.Password, err = DecodeNullableString(it); err != nil {
		return req, fmt.Errorf("decode authentication request password: %w", err)
	}
	if req.ClientType, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode authentication request client type: %w", err)
	}
	if req.ClientHazelcastVersion, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode authentication request client version: %w", err)
	}
	if req.ClientName, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode authentication request client name: %w", err)
	}
	if req.Labels, err = DecodeListString(it); err != nil {
		return req, fmt.Errorf("decode authentication request labels: %w", err)
	}
	return req, nil
}

func EncodeClientAuthenticationResponse(resp AuthenticationResponse) *protocol.ClientMessage {
	msg, initialFrame := newResponse(ClientAuthenticationResponseMessageType, clientAuthenticationResponseInitialFrameSize)
	protocol.EncodeByte(initialFrame, clientAuthenticationResponseStatusFieldOffset, resp.Status)
	protocol.EncodeUUID(initialFrame, clientAuthenticationResponseMemberUUIDFieldOffset, resp.MemberUUID)
	protocol.EncodeByte(initialFrame, clientAuthenticationResponseSerializationVersionFieldOffset, resp.SerializationVersion)
	protocol.EncodeInt(initialFrame, clientAuthenticationResponsePartitionCountFieldOffset, resp.PartitionCount)
	protocol.EncodeUUID(initialFrame, clientAuthenticationResponseClusterIDFieldOffset, resp.ClusterID)
	protocol.EncodeBoolean(initialFrame, clientAuthenticationResponseFailoverSupportedFieldOffset, resp.FailoverSupported)
	EncodeNullableAddress(msg, resp.Address)
	EncodeString(msg, resp.ServerHazelcastVersion)
	return msg
}

// DecodeClientAuthenticationResponse ignores frames of newer protocol versions after the known fields
func DecodeClientAuthenticationResponse(msg *protocol.ClientMessage) (AuthenticationResponse, error) {
	var resp AuthenticationResponse
	it, initialFrame, err := startFrame(msg, ClientAuthenticationResponseMessageType, clientAuthenticationResponseInitialFrameSize)
	if err != nil {
		return resp, fmt.Errorf("decode authentication response: %w", err)
	}
	resp.Status = protocol.DecodeByte(initialFrame, clientAuthenticationResponseStatusFieldOffset)
	resp.MemberUUID = protocol.DecodeUUID(initialFrame, clientAuthenticationResponseMemberUUIDFieldOffset)
	resp.SerializationVersion = protocol.DecodeByte(initialFrame, clientAuthenticationResponseSerializationVersionFieldOffset)
	resp.PartitionCount = protocol.DecodeInt(initialFrame, clientAuthenticationResponsePartitionCountFieldOffset)
	resp.ClusterID = protocol.DecodeUUID(initialFrame, clientAuthenticationResponseClusterIDFieldOffset)
	resp.FailoverSupported = protocol.DecodeBoolean(initialFrame, clientAuthenticationResponseFailoverSupportedFieldOffset)
	if resp.Address, err = DecodeNullableAddress(it); err != nil {
		return resp, fmt.Errorf("decode authentication response address: %w", err)
	}
	if resp.ServerHazelcastVersion, err = DecodeString(it); err != nil {
		return resp, fmt.Errorf("decode authentication response server version: %w", err)
	}
	return resp, nil
}

// --------------------------------------------------------------------------
// Client.Ping
// --------------------------------------------------------------------------

const (
	ClientPingRequestMessageType  int32 = 0x000B00
	ClientPingResponseMessageType int32 = 0x000B01

	clientPingRequestInitialFrameSize  = protocol.PartitionIDFieldOffset + protocol.IntSizeInBytes
	clientPingResponseInitialFrameSize = protocol.ResponseBackupAcksFieldOffset + protocol.ByteSizeInBytes
)

func EncodeClientPingRequest() *protocol.ClientMessage {
	msg, _ := newRequest(ClientPingRequestMessageType, clientPingRequestInitialFrameSize, true)
	return msg
}

func EncodeClientPingResponse() *protocol.ClientMessage {
	msg, _ := newResponse(ClientPingResponseMessageType, clientPingResponseInitialFrameSize)
	return msg
}

func DecodeClientPingResponse(msg *protocol.ClientMessage) error {
	if _, _, err := startFrame(msg, ClientPingResponseMessageType, clientPingResponseInitialFrameSize); err != nil {
		return fmt.Errorf("decode ping response: %w", err)
	}
	return nil
}
