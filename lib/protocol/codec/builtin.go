package codec

import (
	"fmt"

	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Strings
// --------------------------------------------------------------------------

// EncodeString writes the UTF-8 bytes of value as one frame
func EncodeString(msg *protocol.ClientMessage, value string) {
	msg.AddFrame(protocol.NewFrame([]byte(value)))
}

// DecodeString reads one frame as a string
func DecodeString(it *protocol.ForwardFrameIterator) (string, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return string(frame.Content), nil
}

// EncodeNullableString writes an IS_NULL frame for nil
func EncodeNullableString(msg *protocol.ClientMessage, value *string) {
	if value == nil {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	EncodeString(msg, *value)
}

// DecodeNullableString returns nil for an IS_NULL frame
func DecodeNullableString(it *protocol.ForwardFrameIterator) (*string, error) {
	value, ok, err := DecodeNullable(it, DecodeString)
	if err != nil || !ok {
		return nil, err
	}
	return &value, nil
}

// --------------------------------------------------------------------------
// Byte arrays
// --------------------------------------------------------------------------

// EncodeByteArray writes value as one frame. The bytes are copied, the message
// never shares memory with the caller.
func EncodeByteArray(msg *protocol.ClientMessage, value []byte) {
	content := make([]byte, len(value))
	copy(content, value)
	msg.AddFrame(protocol.NewFrame(content))
}

// DecodeByteArray reads one frame into a new slice, empty arrays decode as a non-nil empty slice
func DecodeByteArray(it *protocol.ForwardFrameIterator) ([]byte, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode byte array: %w", err)
	}
	value := make([]byte, len(frame.Content))
	copy(value, frame.Content)
	return value, nil
}

// EncodeNullableByteArray writes an IS_NULL frame for a nil slice
func EncodeNullableByteArray(msg *protocol.ClientMessage, value []byte) {
	if value == nil {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	EncodeByteArray(msg, value)
}

// DecodeNullableByteArray returns a nil slice for an IS_NULL frame
func DecodeNullableByteArray(it *protocol.ForwardFrameIterator) ([]byte, error) {
	value, ok, err := DecodeNullable(it, DecodeByteArray)
	if err != nil || !ok {
		return nil, err
	}
	return value, nil
}

// --------------------------------------------------------------------------
// Lists of fixed-size elements
// --------------------------------------------------------------------------

// elementCount returns the number of elements of size bytes in a frame
func elementCount(frame *protocol.Frame, size int) (int, error) {
	if len(frame.Content)%size != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of %d", protocol.ErrLayoutMismatch, len(frame.Content), size)
	}
	return len(frame.Content) / size, nil
}

// EncodeListInteger packs all values into one frame
func EncodeListInteger(msg *protocol.ClientMessage, values []int32) {
	content := make([]byte, len(values)*protocol.IntSizeInBytes)
	for i, v := range values {
		protocol.EncodeInt(content, i*protocol.IntSizeInBytes, v)
	}
	msg.AddFrame(protocol.NewFrame(content))
}

func DecodeListInteger(it *protocol.ForwardFrameIterator) ([]int32, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode integer list: %w", err)
	}
	n, err := elementCount(frame, protocol.IntSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("decode integer list: %w", err)
	}
	values := make([]int32, n)
	for i := range values {
		values[i] = protocol.DecodeInt(frame.Content, i*protocol.IntSizeInBytes)
	}
	return values, nil
}

// EncodeListLong packs all values into one frame
func EncodeListLong(msg *protocol.ClientMessage, values []int64) {
	content := make([]byte, len(values)*protocol.LongSizeInBytes)
	for i, v := range values {
		protocol.EncodeLong(content, i*protocol.LongSizeInBytes, v)
	}
	msg.AddFrame(protocol.NewFrame(content))
}

func DecodeListLong(it *protocol.ForwardFrameIterator) ([]int64, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode long list: %w", err)
	}
	n, err := elementCount(frame, protocol.LongSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("decode long list: %w", err)
	}
	values := make([]int64, n)
	for i := range values {
		values[i] = protocol.DecodeLong(frame.Content, i*protocol.LongSizeInBytes)
	}
	return values, nil
}

// EncodeListUUID packs all values into one frame, 17 bytes per element
func EncodeListUUID(msg *protocol.ClientMessage, values []uuid.UUID) {
	content := make([]byte, len(values)*protocol.UUIDSizeInBytes)
	for i, v := range values {
		protocol.EncodeUUID(content, i*protocol.UUIDSizeInBytes, uuid.NullUUID{UUID: v, Valid: true})
	}
	msg.AddFrame(protocol.NewFrame(content))
}

// DecodeListUUID fails on null elements, a list of UUIDs never contains null on the wire
func DecodeListUUID(it *protocol.ForwardFrameIterator) ([]uuid.UUID, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, fmt.Errorf("decode uuid list: %w", err)
	}
	n, err := elementCount(frame, protocol.UUIDSizeInBytes)
	if err != nil {
		return nil, fmt.Errorf("decode uuid list: %w", err)
	}
	values := make([]uuid.UUID, n)
	for i := range values {
		id := protocol.DecodeUUID(frame.Content, i*protocol.UUIDSizeInBytes)
		if !id.Valid {
			return nil, fmt.Errorf("decode uuid list: element %d: %w", i, protocol.ErrUnexpectedNull)
		}
		values[i] = id.UUID
	}
	return values, nil
}
