package codec

import (
	"fmt"

	"github.com/ValentinKolb/hzwire/lib/protocol"
)

// Encoder appends the frames of one value to a message
type Encoder[T any] func(msg *protocol.ClientMessage, value T)

// Decoder consumes the frames of one value from an iterator
type Decoder[T any] func(it *protocol.ForwardFrameIterator) (T, error)

// Entry is one key value pair of an entry list
type Entry[K, V any] struct {
	Key   K
	Value V
}

// --------------------------------------------------------------------------
// Frame navigation
// --------------------------------------------------------------------------

// FastForwardToEndFrame skips all frames up to and including the END frame
// that closes the current data structure. Nested structures are skipped as a whole.
func FastForwardToEndFrame(it *protocol.ForwardFrameIterator) error {
	numberOfExpectedEndFrames := 1
	for numberOfExpectedEndFrames != 0 {
		frame, err := it.Next()
		if err != nil {
			return fmt.Errorf("fast forward to end frame: %w", err)
		}
		if frame.IsEndFrame() {
			numberOfExpectedEndFrames--
		} else if frame.IsBeginFrame() {
			numberOfExpectedEndFrames++
		}
	}
	return nil
}

// NextFrameIsDataStructureEndFrame reports whether the next frame closes a data structure
func NextFrameIsDataStructureEndFrame(it *protocol.ForwardFrameIterator) bool {
	frame := it.PeekNext()
	return frame != nil && frame.IsEndFrame()
}

// NextFrameIsNullFrame reports whether the next frame is an IS_NULL marker
func NextFrameIsNullFrame(it *protocol.ForwardFrameIterator) bool {
	frame := it.PeekNext()
	return frame != nil && frame.IsNullFrame()
}

// NextDataFrame consumes the next frame, which must carry a value
func NextDataFrame(it *protocol.ForwardFrameIterator) (*protocol.Frame, error) {
	frame, err := it.Next()
	if err != nil {
		return nil, err
	}
	if frame.IsNullFrame() {
		return nil, protocol.ErrUnexpectedNull
	}
	if frame.IsMarkerFrame() {
		return nil, fmt.Errorf("%w: expected data frame, got %s", protocol.ErrUnexpectedFrame, frame.Flags())
	}
	return frame, nil
}

func expectBeginFrame(it *protocol.ForwardFrameIterator) error {
	frame, err := it.Next()
	if err != nil {
		return err
	}
	if !frame.IsBeginFrame() {
		return fmt.Errorf("%w: expected begin frame, got %s", protocol.ErrUnexpectedFrame, frame.Flags())
	}
	return nil
}

// nextInitialFrame consumes the fixed-size frame of a custom structure. Longer
// frames are accepted, newer members may append fields.
func nextInitialFrame(it *protocol.ForwardFrameIterator, minSize int) (*protocol.Frame, error) {
	frame, err := NextDataFrame(it)
	if err != nil {
		return nil, err
	}
	if len(frame.Content) < minSize {
		return nil, fmt.Errorf("%w: initial frame has %d bytes, need %d", protocol.ErrLayoutMismatch, len(frame.Content), minSize)
	}
	return frame, nil
}

// --------------------------------------------------------------------------
// Nullable values
// --------------------------------------------------------------------------

// EncodeNullable writes an IS_NULL frame if isNull is set, otherwise the encoded value
func EncodeNullable[T any](msg *protocol.ClientMessage, value T, isNull bool, encode Encoder[T]) {
	if isNull {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	encode(msg, value)
}

// DecodeNullable consumes an IS_NULL frame and returns ok=false, or decodes the value
func DecodeNullable[T any](it *protocol.ForwardFrameIterator, decode Decoder[T]) (value T, ok bool, err error) {
	if NextFrameIsNullFrame(it) {
		_, _ = it.Next()
		return value, false, nil
	}
	value, err = decode(it)
	if err != nil {
		return value, false, err
	}
	return value, true, nil
}

// --------------------------------------------------------------------------
// Start frames
// --------------------------------------------------------------------------

// newRequest creates a request with a zeroed start frame of the given size.
// The returned content is the start frame, fixed-size fields are encoded into it.
func newRequest(messageType int32, initialFrameSize int, retryable bool) (*protocol.ClientMessage, []byte) {
	msg := protocol.NewClientMessageForEncode()
	msg.SetRetryable(retryable)
	content := make([]byte, initialFrameSize)
	msg.AddFrame(protocol.NewFrameWith(content, protocol.UnfragmentedMessage))
	msg.SetMessageType(messageType)
	msg.SetPartitionID(protocol.NoPartition)
	return msg, content
}

// newResponse creates a response with a zeroed start frame of the given size
func newResponse(messageType int32, initialFrameSize int) (*protocol.ClientMessage, []byte) {
	msg := protocol.NewClientMessageForEncode()
	content := make([]byte, initialFrameSize)
	msg.AddFrame(protocol.NewFrameWith(content, protocol.UnfragmentedMessage))
	msg.SetMessageType(messageType)
	return msg, content
}

// startFrame returns an iterator positioned after the start frame and the
// start frame content, which must hold at least minSize bytes
func startFrame(msg *protocol.ClientMessage, messageType int32, minSize int) (*protocol.ForwardFrameIterator, []byte, error) {
	it := msg.FrameIterator()
	frame, err := it.Next()
	if err != nil {
		return nil, nil, err
	}
	if len(frame.Content) < minSize {
		return nil, nil, fmt.Errorf("%w: start frame has %d bytes, need %d", protocol.ErrLayoutMismatch, len(frame.Content), minSize)
	}
	if got := msg.MessageType(); got != messageType {
		return nil, nil, fmt.Errorf("%w: message type 0x%06x, want 0x%06x", protocol.ErrUnexpectedFrame, got, messageType)
	}
	return it, frame.Content, nil
}
