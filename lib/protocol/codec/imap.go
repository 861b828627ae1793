package codec

import (
	"fmt"

	"github.com/ValentinKolb/hzwire/lib/protocol"
)

// Keys and values of map operations are serialized data, opaque byte arrays
// for this package.

const (
	MapPutRequestMessageType       int32 = 0x010100
	MapPutResponseMessageType      int32 = 0x010101
	MapGetRequestMessageType       int32 = 0x010200
	MapGetResponseMessageType      int32 = 0x010201
	MapRemoveRequestMessageType    int32 = 0x010300
	MapRemoveResponseMessageType   int32 = 0x010301
	MapEntrySetRequestMessageType  int32 = 0x012500
	MapEntrySetResponseMessageType int32 = 0x012501
	MapSizeRequestMessageType      int32 = 0x012A00
	MapSizeResponseMessageType     int32 = 0x012A01
	MapPutAllRequestMessageType    int32 = 0x012C00
	MapPutAllResponseMessageType   int32 = 0x012C01
)

const (
	mapThreadIDFieldOffset        = protocol.PartitionIDFieldOffset + protocol.IntSizeInBytes
	mapPutTTLFieldOffset          = mapThreadIDFieldOffset + protocol.LongSizeInBytes
	mapPutRequestInitialFrameSize = mapPutTTLFieldOffset + protocol.LongSizeInBytes
	mapKeyRequestInitialFrameSize = mapThreadIDFieldOffset + protocol.LongSizeInBytes

	mapPutAllTriggerMapLoaderFieldOffset = protocol.PartitionIDFieldOffset + protocol.IntSizeInBytes
	mapPutAllRequestInitialFrameSize     = mapPutAllTriggerMapLoaderFieldOffset + protocol.BooleanSizeInBytes

	mapNameRequestInitialFrameSize = protocol.RequestInitialFrameSize

	mapSizeResponseFieldOffset      = protocol.ResponseBackupAcksFieldOffset + protocol.ByteSizeInBytes
	mapSizeResponseInitialFrameSize = mapSizeResponseFieldOffset + protocol.IntSizeInBytes
)

// MapPutRequest stores Value under Key, TTL is in milliseconds, -1 uses the map default
type MapPutRequest struct {
	Name     string
	Key      []byte
	Value    []byte
	ThreadID int64
	TTL      int64
}

// MapKeyRequest is the request of all operations on a single key without a value
type MapKeyRequest struct {
	Name     string
	Key      []byte
	ThreadID int64
}

// MapPutAllRequest stores all entries
type MapPutAllRequest struct {
	Name             string
	Entries          []Entry[[]byte, []byte]
	TriggerMapLoader bool
}

// --------------------------------------------------------------------------
// Map.Put
// --------------------------------------------------------------------------

func EncodeMapPutRequest(req MapPutRequest) *protocol.ClientMessage {
	msg, initialFrame := newRequest(MapPutRequestMessageType, mapPutRequestInitialFrameSize, false)
	protocol.EncodeLong(initialFrame, mapThreadIDFieldOffset, req.ThreadID)
	protocol.EncodeLong(initialFrame, mapPutTTLFieldOffset, req.TTL)
	EncodeString(msg, req.Name)
	EncodeByteArray(msg, req.Key)
	EncodeByteArray(msg, req.Value)
	return msg
}

func DecodeMapPutRequest(msg *protocol.ClientMessage) (MapPutRequest, error) {
	var req MapPutRequest
	it, initialFrame, err := startFrame(msg, MapPutRequestMessageType, mapPutRequestInitialFrameSize)
	if err != nil {
		return req, fmt.Errorf("decode map put request: %w", err)
	}
	req.ThreadID = protocol.DecodeLong(initialFrame, mapThreadIDFieldOffset)
	req.TTL = protocol.DecodeLong(initialFrame, mapPutTTLFieldOffset)
	if req.Name, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode map put request name: %w", err)
	}
	if req.Key, err = DecodeByteArray(it); err != nil {
		return req, fmt.Errorf("decode map put request key: %w", err)
	}
	if req.Value, err = DecodeByteArray(it); err != nil {
		return req, fmt.Errorf("decode map put request value: %w", err)
	}
	return req, nil
}

// EncodeMapPutResponse carries the previous value, nil if there was none
func EncodeMapPutResponse(previous []byte) *protocol.ClientMessage {
	return encodeNullableDataResponse(MapPutResponseMessageType, previous)
}

func DecodeMapPutResponse(msg *protocol.ClientMessage) ([]byte, error) {
	return decodeNullableDataResponse(msg, MapPutResponseMessageType)
}

// --------------------------------------------------------------------------
// Map.Get
// --------------------------------------------------------------------------

func EncodeMapGetRequest(req MapKeyRequest) *protocol.ClientMessage {
	return encodeMapKeyRequest(MapGetRequestMessageType, req, true)
}

func DecodeMapGetRequest(msg *protocol.ClientMessage) (MapKeyRequest, error) {
	return decodeMapKeyRequest(msg, MapGetRequestMessageType)
}

func EncodeMapGetResponse(value []byte) *protocol.ClientMessage {
	return encodeNullableDataResponse(MapGetResponseMessageType, value)
}

func DecodeMapGetResponse(msg *protocol.ClientMessage) ([]byte, error) {
	return decodeNullableDataResponse(msg, MapGetResponseMessageType)
}

// --------------------------------------------------------------------------
// Map.Remove
// --------------------------------------------------------------------------

func EncodeMapRemoveRequest(req MapKeyRequest) *protocol.ClientMessage {
	return encodeMapKeyRequest(MapRemoveRequestMessageType, req, false)
}

func DecodeMapRemoveRequest(msg *protocol.ClientMessage) (MapKeyRequest, error) {
	return decodeMapKeyRequest(msg, MapRemoveRequestMessageType)
}

// EncodeMapRemoveResponse carries the removed value, nil if the key was absent
func EncodeMapRemoveResponse(removed []byte) *protocol.ClientMessage {
	return encodeNullableDataResponse(MapRemoveResponseMessageType, removed)
}

func DecodeMapRemoveResponse(msg *protocol.ClientMessage) ([]byte, error) {
	return decodeNullableDataResponse(msg, MapRemoveResponseMessageType)
}

// --------------------------------------------------------------------------
// Map.Size
// --------------------------------------------------------------------------

func EncodeMapSizeRequest(name string) *protocol.ClientMessage {
	msg, _ := newRequest(MapSizeRequestMessageType, mapNameRequestInitialFrameSize, true)
	EncodeString(msg, name)
	return msg
}

func DecodeMapSizeRequest(msg *protocol.ClientMessage) (string, error) {
	return decodeMapNameRequest(msg, MapSizeRequestMessageType)
}

func EncodeMapSizeResponse(size int32) *protocol.ClientMessage {
	msg, initialFrame := newResponse(MapSizeResponseMessageType, mapSizeResponseInitialFrameSize)
	protocol.EncodeInt(initialFrame, mapSizeResponseFieldOffset, size)
	return msg
}

func DecodeMapSizeResponse(msg *protocol.ClientMessage) (int32, error) {
	_, initialFrame, err := startFrame(msg, MapSizeResponseMessageType, mapSizeResponseInitialFrameSize)
	if err != nil {
		return 0, fmt.Errorf("decode map size response: %w", err)
	}
	return protocol.DecodeInt(initialFrame, mapSizeResponseFieldOffset), nil
}

// --------------------------------------------------------------------------
// Map.EntrySet
// --------------------------------------------------------------------------

func EncodeMapEntrySetRequest(name string) *protocol.ClientMessage {
	msg, _ := newRequest(MapEntrySetRequestMessageType, mapNameRequestInitialFrameSize, true)
	EncodeString(msg, name)
	return msg
}

func DecodeMapEntrySetRequest(msg *protocol.ClientMessage) (string, error) {
	return decodeMapNameRequest(msg, MapEntrySetRequestMessageType)
}

func EncodeMapEntrySetResponse(entries []Entry[[]byte, []byte]) *protocol.ClientMessage {
	msg, _ := newResponse(MapEntrySetResponseMessageType, protocol.ResponseInitialFrameSize)
	EncodeEntryList(msg, entries, EncodeByteArray, EncodeByteArray)
	return msg
}

func DecodeMapEntrySetResponse(msg *protocol.ClientMessage) ([]Entry[[]byte, []byte], error) {
	it, _, err := startFrame(msg, MapEntrySetResponseMessageType, protocol.ResponseInitialFrameSize)
	if err != nil {
		return nil, fmt.Errorf("decode map entry set response: %w", err)
	}
	entries, err := DecodeEntryList(it, DecodeByteArray, DecodeByteArray)
	if err != nil {
		return nil, fmt.Errorf("decode map entry set response: %w", err)
	}
	return entries, nil
}

// --------------------------------------------------------------------------
// Map.PutAll
// --------------------------------------------------------------------------

func EncodeMapPutAllRequest(req MapPutAllRequest) *protocol.ClientMessage {
	msg, initialFrame := newRequest(MapPutAllRequestMessageType, mapPutAllRequestInitialFrameSize, false)
	protocol.EncodeBoolean(initialFrame, mapPutAllTriggerMapLoaderFieldOffset, req.TriggerMapLoader)
	EncodeString(msg, req.Name)
	EncodeEntryList(msg, req.Entries, EncodeByteArray, EncodeByteArray)
	return msg
}

func DecodeMapPutAllRequest(msg *protocol.ClientMessage) (MapPutAllRequest, error) {
	var req MapPutAllRequest
	it, initialFrame, err := startFrame(msg, MapPutAllRequestMessageType, mapPutAllRequestInitialFrameSize)
	if err != nil {
		return req, fmt.Errorf("decode map put all request: %w", err)
	}
	req.TriggerMapLoader = protocol.DecodeBoolean(initialFrame, mapPutAllTriggerMapLoaderFieldOffset)
	if req.Name, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode map put all request name: %w", err)
	}
	if req.Entries, err = DecodeEntryList(it, DecodeByteArray, DecodeByteArray); err != nil {
		return req, fmt.Errorf("decode map put all request entries: %w", err)
	}
	return req, nil
}

func EncodeMapPutAllResponse() *protocol.ClientMessage {
	msg, _ := newResponse(MapPutAllResponseMessageType, protocol.ResponseInitialFrameSize)
	return msg
}

func DecodeMapPutAllResponse(msg *protocol.ClientMessage) error {
	if _, _, err := startFrame(msg, MapPutAllResponseMessageType, protocol.ResponseInitialFrameSize); err != nil {
		return fmt.Errorf("decode map put all response: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func encodeMapKeyRequest(messageType int32, req MapKeyRequest, retryable bool) *protocol.ClientMessage {
	msg, initialFrame := newRequest(messageType, mapKeyRequestInitialFrameSize, retryable)
	protocol.EncodeLong(initialFrame, mapThreadIDFieldOffset, req.ThreadID)
	EncodeString(msg, req.Name)
	EncodeByteArray(msg, req.Key)
	return msg
}

func decodeMapKeyRequest(msg *protocol.ClientMessage, messageType int32) (MapKeyRequest, error) {
	var req MapKeyRequest
	it, initialFrame, err := startFrame(msg, messageType, mapKeyRequestInitialFrameSize)
	if err != nil {
		return req, fmt.Errorf("decode map request: %w", err)
	}
	req.ThreadID = protocol.DecodeLong(initialFrame, mapThreadIDFieldOffset)
	if req.Name, err = DecodeString(it); err != nil {
		return req, fmt.Errorf("decode map request name: %w", err)
	}
	if req.Key, err = DecodeByteArray(it); err != nil {
		return req, fmt.Errorf("decode map request key: %w", err)
	}
	return req, nil
}

func decodeMapNameRequest(msg *protocol.ClientMessage, messageType int32) (string, error) {
	it, _, err := startFrame(msg, messageType, mapNameRequestInitialFrameSize)
	if err != nil {
		return "", fmt.Errorf("decode map request: %w", err)
	}
	name, err := DecodeString(it)
	if err != nil {
		return "", fmt.Errorf("decode map request name: %w", err)
	}
	return name, nil
}

func encodeNullableDataResponse(messageType int32, value []byte) *protocol.ClientMessage {
	msg, _ := newResponse(messageType, protocol.ResponseInitialFrameSize)
	EncodeNullableByteArray(msg, value)
	return msg
}

func decodeNullableDataResponse(msg *protocol.ClientMessage, messageType int32) ([]byte, error) {
	it, _, err := startFrame(msg, messageType, protocol.ResponseInitialFrameSize)
	if err != nil {
		return nil, fmt.Errorf("decode response 0x%06x: %w", messageType, err)
	}
	value, err := DecodeNullableByteArray(it)
	if err != nil {
		return nil, fmt.Errorf("decode response 0x%06x: %w", messageType, err)
	}
	return value, nil
}
