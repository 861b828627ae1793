package protocol

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Client Message
// --------------------------------------------------------------------------

// ClientMessage is one request, response or event: an ordered list of frames.
// The first frame (start frame) holds the message type, the correlation id and,
// depending on the kind of message, the partition id or the number of backup acks.
//
// The header accessors expect a start frame that is large enough for the
// field they access. Messages read with ReadMessage are validated, messages
// created by the codecs always have a full start frame.
type ClientMessage struct {
	Frames    []*Frame
	retryable bool
}

// NewClientMessageForEncode creates an empty message, the caller adds the start frame first
func NewClientMessageForEncode() *ClientMessage {
	return &ClientMessage{Frames: make([]*Frame, 0, 4)}
}

// NewClientMessage creates a message from frames, e.g. frames read from the wire
func NewClientMessage(frames []*Frame) *ClientMessage {
	return &ClientMessage{Frames: frames}
}

// AddFrame appends a frame, the order of AddFrame calls is the wire order
func (m *ClientMessage) AddFrame(frame *Frame) {
	m.Frames = append(m.Frames, frame)
}

// StartFrame returns the first frame or nil if the message is empty
func (m *ClientMessage) StartFrame() *Frame {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[0]
}

// FrameIterator returns a new iterator positioned at the start frame
func (m *ClientMessage) FrameIterator() *ForwardFrameIterator {
	return &ForwardFrameIterator{frames: m.Frames}
}

// --------------------------------------------------------------------------
// Header Fields
// --------------------------------------------------------------------------

func (m *ClientMessage) MessageType() int32 {
	return DecodeInt(m.Frames[0].Content, TypeFieldOffset)
}

func (m *ClientMessage) SetMessageType(messageType int32) {
	EncodeInt(m.Frames[0].Content, TypeFieldOffset, messageType)
}

func (m *ClientMessage) CorrelationID() int64 {
	return DecodeLong(m.Frames[0].Content, CorrelationIDFieldOffset)
}

func (m *ClientMessage) SetCorrelationID(correlationID int64) {
	EncodeLong(m.Frames[0].Content, CorrelationIDFieldOffset, correlationID)
}

// PartitionID is only present in requests and events
func (m *ClientMessage) PartitionID() int32 {
	return DecodeInt(m.Frames[0].Content, PartitionIDFieldOffset)
}

func (m *ClientMessage) SetPartitionID(partitionID int32) {
	EncodeInt(m.Frames[0].Content, PartitionIDFieldOffset, partitionID)
}

// NumberOfBackupAcks is only present in responses, it shares the offset with the partition id
func (m *ClientMessage) NumberOfBackupAcks() byte {
	return DecodeByte(m.Frames[0].Content, ResponseBackupAcksFieldOffset)
}

// FragmentationID is only present in the first frame of a fragment
func (m *ClientMessage) FragmentationID() int64 {
	return DecodeLong(m.Frames[0].Content, FragmentationIDOffset)
}

// IsEvent reports whether the start frame carries the event flag
func (m *ClientMessage) IsEvent() bool {
	start := m.StartFrame()
	return start != nil && start.Flags().Has(IsEventFlag)
}

// IsRetryable reports whether the request may be sent again after a connection failure
func (m *ClientMessage) IsRetryable() bool {
	return m.retryable
}

func (m *ClientMessage) SetRetryable(retryable bool) {
	m.retryable = retryable
}

// TotalLength is the number of bytes the message occupies on the wire
func (m *ClientMessage) TotalLength() int {
	total := 0
	for _, frame := range m.Frames {
		total += frame.WireSize()
	}
	return total
}

// CopyWithNewCorrelationID returns a message that shares all frames except the
// start frame, which is copied and gets the new correlation id. Used to send
// the same request more than once without mutating the original.
func (m *ClientMessage) CopyWithNewCorrelationID(correlationID int64) *ClientMessage {
	frames := make([]*Frame, len(m.Frames))
	copy(frames, m.Frames)
	frames[0] = m.Frames[0].Copy()

	msg := &ClientMessage{Frames: frames, retryable: m.retryable}
	msg.SetCorrelationID(correlationID)
	return msg
}

// String returns a short description of the message, used for logging
func (m *ClientMessage) String() string {
	var sb strings.Builder
	sb.WriteString("ClientMessage{")
	if start := m.StartFrame(); start != nil && len(start.Content) >= minStartFrameSize {
		sb.WriteString(fmt.Sprintf("type=0x%06x, correlationId=%d, ", m.MessageType(), m.CorrelationID()))
	}
	sb.WriteString(fmt.Sprintf("frames=%d, length=%d}", len(m.Frames), m.TotalLength()))
	return sb.String()
}

// --------------------------------------------------------------------------
// Forward Frame Iterator
// --------------------------------------------------------------------------

// ForwardFrameIterator consumes the frames of a message one by one.
// It never modifies the frames, only its own position.
type ForwardFrameIterator struct {
	frames []*Frame
	next   int
}

// HasNext reports whether another frame can be consumed
func (it *ForwardFrameIterator) HasNext() bool {
	return it.next < len(it.frames)
}

// Next consumes and returns the next frame. Reading past the last frame
// returns ErrFramesExhausted: the message is truncated or malformed.
func (it *ForwardFrameIterator) Next() (*Frame, error) {
	if it.next >= len(it.frames) {
		return nil, fmt.Errorf("%w: read frame %d of %d", ErrFramesExhausted, it.next+1, len(it.frames))
	}
	frame := it.frames[it.next]
	it.next++
	return frame, nil
}

// PeekNext returns the next frame without consuming it, nil if there is none
func (it *ForwardFrameIterator) PeekNext() *Frame {
	if it.next >= len(it.frames) {
		return nil
	}
	return it.frames[it.next]
}

// Remaining returns the number of frames not consumed yet
func (it *ForwardFrameIterator) Remaining() int {
	return len(it.frames) - it.next
}
