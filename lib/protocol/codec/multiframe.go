package codec

import (
	"fmt"

	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Lists of variable-size elements
// --------------------------------------------------------------------------

// EncodeListMultiFrame writes BEGIN, the frames of every element and END
func EncodeListMultiFrame[T any](msg *protocol.ClientMessage, values []T, encode Encoder[T]) {
	msg.AddFrame(protocol.NewBeginFrame())
	for _, v := range values {
		encode(msg, v)
	}
	msg.AddFrame(protocol.NewEndFrame())
}

// EncodeListMultiFrameContainsNullable writes an IS_NULL frame for every element for which isNull is true
func EncodeListMultiFrameContainsNullable[T any](msg *protocol.ClientMessage, values []T, isNull func(T) bool, encode Encoder[T]) {
	msg.AddFrame(protocol.NewBeginFrame())
	for _, v := range values {
		EncodeNullable(msg, v, isNull(v), encode)
	}
	msg.AddFrame(protocol.NewEndFrame())
}

// EncodeNullableListMultiFrame writes a single IS_NULL frame for a nil list
func EncodeNullableListMultiFrame[T any](msg *protocol.ClientMessage, values []T, encode Encoder[T]) {
	if values == nil {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	EncodeListMultiFrame(msg, values, encode)
}

// DecodeListMultiFrame reads elements until the END frame of the list
func DecodeListMultiFrame[T any](it *protocol.ForwardFrameIterator, decode Decoder[T]) ([]T, error) {
	return decodeListMultiFrame(it, decode, false)
}

// DecodeListMultiFrameContainsNullable decodes IS_NULL elements as the zero value of T
func DecodeListMultiFrameContainsNullable[T any](it *protocol.ForwardFrameIterator, decode Decoder[T]) ([]T, error) {
	return decodeListMultiFrame(it, decode, true)
}

// DecodeNullableListMultiFrame returns a nil slice for an IS_NULL frame
func DecodeNullableListMultiFrame[T any](it *protocol.ForwardFrameIterator, decode Decoder[T]) ([]T, error) {
	if NextFrameIsNullFrame(it) {
		_, _ = it.Next()
		return nil, nil
	}
	return DecodeListMultiFrame(it, decode)
}

func decodeListMultiFrame[T any](it *protocol.ForwardFrameIterator, decode Decoder[T], containsNullable bool) ([]T, error) {
	if err := expectBeginFrame(it); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	values := make([]T, 0)
	for !NextFrameIsDataStructureEndFrame(it) {
		if containsNullable && NextFrameIsNullFrame(it) {
			_, _ = it.Next()
			var zero T
			values = append(values, zero)
			continue
		}
		v, err := decode(it)
		if err != nil {
			return nil, fmt.Errorf("decode list element %d: %w", len(values), err)
		}
		values = append(values, v)
	}
	// end frame
	_, _ = it.Next()
	return values, nil
}

// EncodeListString writes a list of strings
func EncodeListString(msg *protocol.ClientMessage, values []string) {
	EncodeListMultiFrame(msg, values, EncodeString)
}

func DecodeListString(it *protocol.ForwardFrameIterator) ([]string, error) {
	return DecodeListMultiFrame(it, DecodeString)
}

// --------------------------------------------------------------------------
// Entry lists
// --------------------------------------------------------------------------

// EncodeEntryList writes BEGIN, key and value frames of every entry in order and END
func EncodeEntryList[K, V any](msg *protocol.ClientMessage, entries []Entry[K, V], encodeKey Encoder[K], encodeValue Encoder[V]) {
	msg.AddFrame(protocol.NewBeginFrame())
	for _, e := range entries {
		encodeKey(msg, e.Key)
		encodeValue(msg, e.Value)
	}
	msg.AddFrame(protocol.NewEndFrame())
}

// EncodeNullableEntryList writes a single IS_NULL frame for a nil list
func EncodeNullableEntryList[K, V any](msg *protocol.ClientMessage, entries []Entry[K, V], encodeKey Encoder[K], encodeValue Encoder[V]) {
	if entries == nil {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	EncodeEntryList(msg, entries, encodeKey, encodeValue)
}

// DecodeEntryList reads key value pairs until the END frame of the list
func DecodeEntryList[K, V any](it *protocol.ForwardFrameIterator, decodeKey Decoder[K], decodeValue Decoder[V]) ([]Entry[K, V], error) {
	if err := expectBeginFrame(it); err != nil {
		return nil, fmt.Errorf("decode entry list: %w", err)
	}
	entries := make([]Entry[K, V], 0)
	for !NextFrameIsDataStructureEndFrame(it) {
		key, err := decodeKey(it)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d key: %w", len(entries), err)
		}
		value, err := decodeValue(it)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d value: %w", len(entries), err)
		}
		entries = append(entries, Entry[K, V]{Key: key, Value: value})
	}
	// end frame
	_, _ = it.Next()
	return entries, nil
}

// DecodeNullableEntryList returns a nil slice for an IS_NULL frame
func DecodeNullableEntryList[K, V any](it *protocol.ForwardFrameIterator, decodeKey Decoder[K], decodeValue Decoder[V]) ([]Entry[K, V], error) {
	if NextFrameIsNullFrame(it) {
		_, _ = it.Next()
		return nil, nil
	}
	return DecodeEntryList(it, decodeKey, decodeValue)
}

// --------------------------------------------------------------------------
// Entry lists of fixed-size keys and values
// --------------------------------------------------------------------------

const (
	entryIntegerIntegerSize = protocol.IntSizeInBytes + protocol.IntSizeInBytes
	entryUUIDLongSize       = protocol.UUIDSizeInBytes + protocol.LongSizeInBytes
)

// EncodeEntryListIntegerInteger packs all entries into one frame, 8 bytes per entry
func EncodeEntryListIntegerInteger(msg *protocol.ClientMessage, entries []Entry[int32, int32]) {
	content := make([]byte, len(entries)*entryIntegerIntegerSize)
	for i, e := range entries {
		protocol.EncodeInt(content, i*entryIntegerIntegerSize, e.Key)
		protocol.EncodeInt(content, i*entryIntegerIntegerSize+protocol.IntSizeInBytes, e.Value)
	}
	msg.AddFrame(protocol.NewFrame(content))
}

func DecodeEntryListIntegerInteger(it *protocol.ForwardFrameIterator) ([]Entry[int32, int32], error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode integer entry list: %w", err)
	}
	n, err := elementCount(frame, entryIntegerIntegerSize)
	if err != nil {
		return nil, fmt.Errorf("decode integer entry list: %w", err)
	}
	entries := make([]Entry[int32, int32], n)
	for i := range entries {
		entries[i].Key = protocol.DecodeInt(frame.Content, i*entryIntegerIntegerSize)
		entries[i].Value = protocol.DecodeInt(frame.Content, i*entryIntegerIntegerSize+protocol.IntSizeInBytes)
	}
	return entries, nil
}

// EncodeEntryListUUIDLong packs all entries into one frame, 25 bytes per entry
func EncodeEntryListUUIDLong(msg *protocol.ClientMessage, entries []Entry[uuid.UUID, int64]) {
	content := make([]byte, len(entries)*entryUUIDLongSize)
	for i, e := range entries {
		protocol.EncodeUUID(content, i*entryUUIDLongSize, uuid.NullUUID{UUID: e.Key, Valid: true})
		protocol.EncodeLong(content, i*entryUUIDLongSize+protocol.UUIDSizeInBytes, e.Value)
	}
	msg.AddFrame(protocol.NewFrame(content))
}

func DecodeEntryListUUIDLong(it *protocol.ForwardFrameIterator) ([]Entry[uuid.UUID, int64], error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode uuid long entry list: %w", err)
	}
	n, err := elementCount(frame, entryUUIDLongSize)
	if err != nil {
		return nil, fmt.Errorf("decode uuid long entry list: %w", err)
	}
	entries := make([]Entry[uuid.UUID, int64], n)
	for i := range entries {
		id := protocol.DecodeUUID(frame.Content, i*entryUUIDLongSize)
		if !id.Valid {
			return nil, fmt.Errorf("decode uuid long entry list: entry %d: %w", i, protocol.ErrUnexpectedNull)
		}
		entries[i].Key = id.UUID
		entries[i].Value = protocol.DecodeLong(frame.Content, i*entryUUIDLongSize+protocol.UUIDSizeInBytes)
	}
	return entries, nil
}

// EncodeEntryListUUIDListInteger writes the values as a list of integer lists,
// followed by all keys as one UUID list
func EncodeEntryListUUIDListInteger(msg *protocol.ClientMessage, entries []Entry[uuid.UUID, []int32]) {
	keys := make([]uuid.UUID, len(entries))
	values := make([][]int32, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		values[i] = e.Value
	}
	EncodeListMultiFrame(msg, values, EncodeListInteger)
	EncodeListUUID(msg, keys)
}

// DecodeEntryListUUIDListInteger fails with ErrLayoutMismatch if the number of keys and values differ
func DecodeEntryListUUIDListInteger(it *protocol.ForwardFrameIterator) ([]Entry[uuid.UUID, []int32], error) {
	values, err := DecodeListMultiFrame(it, DecodeListInteger)
	if err != nil {
		return nil, err
	}
	keys, err := DecodeListUUID(it)
	if err != nil {
		return nil, err
	}
	if len(keys) != len(values) {
		return nil, fmt.Errorf("%w: %d keys for %d values", protocol.ErrLayoutMismatch, len(keys), len(values))
	}
	entries := make([]Entry[uuid.UUID, []int32], len(keys))
	for i := range keys {
		entries[i] = Entry[uuid.UUID, []int32]{Key: keys[i], Value: values[i]}
	}
	return entries, nil
}
