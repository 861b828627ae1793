package client

import (
	"context"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"time"
)

// IMap is a proxy of a distributed map. Keys and values are serialized data,
// the map compares keys by their bytes.
type IMap interface {
	// Name returns the name of the map
	Name() string
	// Put stores value under key and returns the previous value, nil if there was none
	Put(ctx context.Context, key, value []byte) (previous []byte, err error)
	// PutWithTTL is Put with an expiration, ttl is rounded to milliseconds
	PutWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) (previous []byte, err error)
	// Get returns the value of key, nil if there is none
	Get(ctx context.Context, key []byte) (value []byte, err error)
	// Remove deletes key and returns the removed value, nil if there was none
	Remove(ctx context.Context, key []byte) (removed []byte, err error)
	// Size returns the number of entries
	Size(ctx context.Context) (int, error)
	// PutAll stores all entries
	PutAll(ctx context.Context, entries []codec.Entry[[]byte, []byte]) error
	// EntrySet returns all entries
	EntrySet(ctx context.Context) ([]codec.Entry[[]byte, []byte], error)
}

// noTTL makes the member use the ttl configured for the map
const noTTL int64 = -1

type rpcMap struct {
	rpcClientAdapter
	name string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IMap)
// --------------------------------------------------------------------------

func (m *rpcMap) Name() string {
	return m.name
}

func (m *rpcMap) Put(ctx context.Context, key, value []byte) ([]byte, error) {
	return m.put(ctx, key, value, noTTL)
}

func (m *rpcMap) PutWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) ([]byte, error) {
	return m.put(ctx, key, value, ttl.Milliseconds())
}

func (m *rpcMap) Get(ctx context.Context, key []byte) ([]byte, error) {
	req := codec.EncodeMapGetRequest(codec.MapKeyRequest{Name: m.name, Key: key, ThreadID: defaultThreadID})
	resp, err := invokeRPCRequest(ctx, req, m.transport)
	if err != nil {
		return nil, err
	}
	return codec.DecodeMapGetResponse(resp)
}

func (m *rpcMap) Remove(ctx context.Context, key []byte) ([]byte, error) {
	req := codec.EncodeMapRemoveRequest(codec.MapKeyRequest{Name: m.name, Key: key, ThreadID: defaultThreadID})
	resp, err := invokeRPCRequest(ctx, req, m.transport)
	if err != nil {
		return nil, err
	}
	return codec.DecodeMapRemoveResponse(resp)
}

func (m *rpcMap) Size(ctx context.Context) (int, error) {
	resp, err := invokeRPCRequest(ctx, codec.EncodeMapSizeRequest(m.name), m.transport)
	if err != nil {
		return 0, err
	}
	size, err := codec.DecodeMapSizeResponse(resp)
	return int(size), err
}

func (m *rpcMap) PutAll(ctx context.Context, entries []codec.Entry[[]byte, []byte]) error {
	req := codec.EncodeMapPutAllRequest(codec.MapPutAllRequest{Name: m.name, Entries: entries, TriggerMapLoader: true})
	resp, err := invokeRPCRequest(ctx, req, m.transport)
	if err != nil {
		return err
	}
	return codec.DecodeMapPutAllResponse(resp)
}

func (m *rpcMap) EntrySet(ctx context.Context) ([]codec.Entry[[]byte, []byte], error) {
	resp, err := invokeRPCRequest(ctx, codec.EncodeMapEntrySetRequest(m.name), m.transport)
	if err != nil {
		return nil, err
	}
	return codec.DecodeMapEntrySetResponse(resp)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (m *rpcMap) put(ctx context.Context, key, value []byte, ttl int64) ([]byte, error) {
	req := codec.EncodeMapPutRequest(codec.MapPutRequest{
		Name:     m.name,
		Key:      key,
		Value:    value,
		ThreadID: defaultThreadID,
		TTL:      ttl,
	})
	resp, err := invokeRPCRequest(ctx, req, m.transport)
	if err != nil {
		return nil, err
	}
	return codec.DecodeMapPutResponse(resp)
}
