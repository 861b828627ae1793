package server

import (
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"github.com/ValentinKolb/hzwire/rpc/transport"
)

// newMapServerAdapter creates the adapter of the map service, all maps live in store
func newMapServerAdapter(store *mapStore) IRPCServerAdapter {
	return &mapServerAdapter{store: store}
}

type mapServerAdapter struct {
	store *mapStore
}

func (adapter *mapServerAdapter) Handle(session *transport.Session, req *protocol.ClientMessage) (*protocol.ClientMessage, error) {
	store := adapter.store

	// Handle different message types
	switch req.MessageType() {
	case codec.MapPutRequestMessageType:
		put, err := codec.DecodeMapPutRequest(req)
		if err != nil {
			return nil, err
		}
		return codec.EncodeMapPutResponse(store.Put(put.Name, put.Key, put.Value, put.TTL)), nil

	case codec.MapGetRequestMessageType:
		get, err := codec.DecodeMapGetRequest(req)
		if err != nil {
			return nil, err
		}
		return codec.EncodeMapGetResponse(store.Get(get.Name, get.Key)), nil

	case codec.MapRemoveRequestMessageType:
		remove, err := codec.DecodeMapRemoveRequest(req)
		if err != nil {
			return nil, err
		}
		return codec.EncodeMapRemoveResponse(store.Remove(remove.Name, remove.Key)), nil

	case codec.MapSizeRequestMessageType:
		name, err := codec.DecodeMapSizeRequest(req)
		if err != nil {
			return nil, err
		}
		return codec.EncodeMapSizeResponse(int32(store.Size(name))), nil

	case codec.MapEntrySetRequestMessageType:
		name, err := codec.DecodeMapEntrySetRequest(req)
		if err != nil {
			return nil, err
		}
		stored := store.Entries(name)
		entries := make([]codec.Entry[[]byte, []byte], len(stored))
		for i, e := range stored {
			entries[i] = codec.Entry[[]byte, []byte]{Key: e.key, Value: e.value}
		}
		return codec.EncodeMapEntrySetResponse(entries), nil

	case codec.MapPutAllRequestMessageType:
		putAll, err := codec.DecodeMapPutAllRequest(req)
		if err != nil {
			return nil, err
		}
		entries := make([]entry, len(putAll.Entries))
		for i, e := range putAll.Entries {
			entries[i] = entry{key: e.Key, value: e.Value}
		}
		store.PutAll(putAll.Name, entries)
		return codec.EncodeMapPutAllResponse(), nil

	default:
		return nil, codec.NewServerError(codec.ErrorCodeUnsupportedOperation, unsupportedOperationClass,
			fmt.Sprintf("map service: unsupported message type %s", codec.MessageTypeName(req.MessageType())))
	}
}
