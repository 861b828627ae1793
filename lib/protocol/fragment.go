package protocol

import (
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Splitting
// --------------------------------------------------------------------------

// SplitIntoFragments splits a message whose wire size exceeds maxFrameSize into
// fragments. Frames are never split, a fragment holds at least one frame of the
// original message even if that frame alone is larger than the limit.
// Every fragment starts with a frame holding the fragmentation id, flagged with
// BEGIN_FRAGMENT on the first and END_FRAGMENT on the last fragment.
// A message that fits is returned as the only element.
func SplitIntoFragments(msg *ClientMessage, maxFrameSize int, fragmentationID int64) []*ClientMessage {
	if msg.TotalLength() <= maxFrameSize {
		return []*ClientMessage{msg}
	}

	fragmentHeaderSize := SizeOfFrameLengthAndFlags + LongSizeInBytes

	var fragments []*ClientMessage
	var current *ClientMessage
	length := 0

	for _, frame := range msg.Frames {
		// start a new fragment if the frame does not fit and the current one already holds a frame
		if current == nil || (length+frame.WireSize() > maxFrameSize && len(current.Frames) > 1) {
			current = NewClientMessageForEncode()
			current.AddFrame(nil) // replaced below, the flags depend on the position
			fragments = append(fragments, current)
			length = fragmentHeaderSize
		}
		current.AddFrame(frame)
		length += frame.WireSize()
	}

	for i, fragment := range fragments {
		flags := DefaultFlags
		if i == 0 {
			flags |= BeginFragmentFlag
		}
		if i == len(fragments)-1 {
			flags |= EndFragmentFlag
		}
		content := make([]byte, LongSizeInBytes)
		EncodeLong(content, FragmentationIDOffset, fragmentationID)
		fragment.Frames[0] = NewFrameWith(content, flags)
	}

	return fragments
}

// --------------------------------------------------------------------------
// Assembling
// --------------------------------------------------------------------------

// MaxPendingFragmentedMessages is the number of partially received messages
// an assembler holds before it rejects further BEGIN_FRAGMENT fragments
const MaxPendingFragmentedMessages = 1024

// FragmentAssembler merges fragments read from one connection back into
// complete messages. Fragments of different messages may be interleaved.
type FragmentAssembler struct {
	pending    *xsync.MapOf[int64, *ClientMessage]
	maxPending int
}

// NewFragmentAssembler creates an empty assembler
func NewFragmentAssembler() *FragmentAssembler {
	return NewFragmentAssemblerWithLimit(MaxPendingFragmentedMessages)
}

// NewFragmentAssemblerWithLimit creates an empty assembler that holds at most
// maxPending partially received messages
func NewFragmentAssemblerWithLimit(maxPending int) *FragmentAssembler {
	return &FragmentAssembler{
		pending:    xsync.NewMapOf[int64, *ClientMessage](),
		maxPending: maxPending,
	}
}

// Add takes a message read from the wire. Unfragmented messages are returned
// immediately. For fragments the merged message is returned once the
// END_FRAGMENT fragment was added, until then complete is false.
// A merged message without a start frame that holds the header fields is
// ErrMalformedFrame, as is a new message beyond the pending limit.
func (a *FragmentAssembler) Add(msg *ClientMessage) (result *ClientMessage, complete bool, err error) {
	start := msg.StartFrame()
	if start == nil {
		return nil, false, fmt.Errorf("%w: message has no frames", ErrMalformedFrame)
	}

	if start.HasUnfragmentedMessageFlags() {
		return msg, true, nil
	}

	if len(start.Content) < LongSizeInBytes {
		return nil, false, fmt.Errorf("%w: fragmentation frame has %d bytes", ErrMalformedFrame, len(start.Content))
	}
	fragmentationID := msg.FragmentationID()

	if start.HasBeginFragmentFlag() {
		if _, ok := a.pending.Load(fragmentationID); !ok && a.pending.Size() >= a.maxPending {
			return nil, false, fmt.Errorf("%w: more than %d fragmented messages pending", ErrMalformedFrame, a.maxPending)
		}
		frames := make([]*Frame, 0, 2*len(msg.Frames))
		frames = append(frames, msg.Frames[1:]...)
		a.pending.Store(fragmentationID, NewClientMessage(frames))
		return nil, false, nil
	}

	merged, ok := a.pending.Load(fragmentationID)
	if !ok {
		return nil, false, fmt.Errorf("%w: fragmentation id %d", ErrFragmentMissing, fragmentationID)
	}
	merged.Frames = append(merged.Frames, msg.Frames[1:]...)

	if start.HasEndFragmentFlag() {
		a.pending.Delete(fragmentationID)
		if len(merged.Frames) == 0 {
			return nil, false, fmt.Errorf("%w: fragmented message %d has no frames", ErrMalformedFrame, fragmentationID)
		}
		if len(merged.Frames[0].Content) < minStartFrameSize {
			return nil, false, fmt.Errorf("%w: start frame of fragmented message %d has %d bytes, need at least %d",
				ErrMalformedFrame, fragmentationID, len(merged.Frames[0].Content), minStartFrameSize)
		}
		return merged, true, nil
	}
	return nil, false, nil
}

// Pending returns the number of messages with missing fragments
func (a *FragmentAssembler) Pending() int {
	return a.pending.Size()
}
