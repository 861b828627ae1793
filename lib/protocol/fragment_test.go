package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// newLargeMessage creates a request with n frames of size bytes each
func newLargeMessage(n, size int) *ClientMessage {
	msg := newTestRequest(0x010100, 77)
	for i := 0; i < n; i++ {
		msg.AddFrame(NewFrame(bytes.Repeat([]byte{byte(i)}, size)))
	}
	return msg
}

// TestSplitSmallMessage tests that a message below the limit is not fragmented
func TestSplitSmallMessage(t *testing.T) {
	msg := newLargeMessage(2, 10)
	fragments := SplitIntoFragments(msg, msg.TotalLength(), 1)
	if len(fragments) != 1 || fragments[0] != msg {
		t.Errorf("SplitIntoFragments() returned %d fragments, want the message itself", len(fragments))
	}
}

// TestSplitAndAssemble tests that fragments merge back into the original frames
func TestSplitAndAssemble(t *testing.T) {
	msg := newLargeMessage(10, 100)
	fragments := SplitIntoFragments(msg, 300, 42)

	if len(fragments) < 2 {
		t.Fatalf("expected several fragments, got %d", len(fragments))
	}

	for i, fragment := range fragments {
		start := fragment.StartFrame()
		if start.HasBeginFragmentFlag() != (i == 0) {
			t.Errorf("fragment %d begin flag = %v", i, start.HasBeginFragmentFlag())
		}
		if start.HasEndFragmentFlag() != (i == len(fragments)-1) {
			t.Errorf("fragment %d end flag = %v", i, start.HasEndFragmentFlag())
		}
		if fragment.FragmentationID() != 42 {
			t.Errorf("fragment %d id = %d", i, fragment.FragmentationID())
		}
		// all but single oversized frames respect the limit
		if fragment.TotalLength() > 300 && len(fragment.Frames) > 2 {
			t.Errorf("fragment %d has %d bytes", i, fragment.TotalLength())
		}
	}

	assembler := NewFragmentAssembler()
	var result *ClientMessage
	for i, fragment := range fragments {
		// pass every fragment through the wire to get realistic flags
		data, err := fragment.Bytes()
		if err != nil {
			t.Fatalf("Bytes() error: %v", err)
		}
		read, err := ReadMessageBytes(data)
		if err != nil {
			t.Fatalf("ReadMessageBytes() error: %v", err)
		}

		merged, complete, err := assembler.Add(read)
		if err != nil {
			t.Fatalf("Add() error: %v", err)
		}
		if complete != (i == len(fragments)-1) {
			t.Fatalf("fragment %d complete = %v", i, complete)
		}
		result = merged
	}

	if assembler.Pending() != 0 {
		t.Errorf("Pending() = %d after last fragment", assembler.Pending())
	}
	if len(result.Frames) != len(msg.Frames) {
		t.Fatalf("merged message has %d frames, want %d", len(result.Frames), len(msg.Frames))
	}
	for i := range msg.Frames {
		if !bytes.Equal(result.Frames[i].Content, msg.Frames[i].Content) {
			t.Errorf("frame %d differs", i)
		}
	}
	if result.CorrelationID() != 77 {
		t.Errorf("CorrelationID() = %d", result.CorrelationID())
	}
}

// TestAssemblerPassThrough tests unfragmented messages
func TestAssemblerPassThrough(t *testing.T) {
	msg := newTestRequest(1, 1)
	got, complete, err := NewFragmentAssembler().Add(msg)
	if err != nil || !complete || got != msg {
		t.Errorf("Add() = %v, %v, %v", got, complete, err)
	}
}

// TestAssemblerMissingBegin tests a continuation fragment without a begin fragment
func TestAssemblerMissingBegin(t *testing.T) {
	fragments := SplitIntoFragments(newLargeMessage(10, 100), 300, 5)
	_, _, err := NewFragmentAssembler().Add(fragments[1])
	if !errors.Is(err, ErrFragmentMissing) {
		t.Errorf("Add() error = %v, want ErrFragmentMissing", err)
	}
}

// TestAssemblerInterleaved tests fragments of two messages arriving interleaved
func TestAssemblerInterleaved(t *testing.T) {
	a := SplitIntoFragments(newLargeMessage(6, 100), 300, 1)
	b := SplitIntoFragments(newLargeMessage(6, 100), 300, 2)
	if len(a) != len(b) {
		t.Fatalf("fragment counts differ: %d vs %d", len(a), len(b))
	}

	assembler := NewFragmentAssembler()
	completed := 0
	for i := range a {
		for _, fragment := range []*ClientMessage{a[i], b[i]} {
			_, complete, err := assembler.Add(fragment)
			if err != nil {
				t.Fatalf("Add() error: %v", err)
			}
			if complete {
				completed++
			}
		}
	}
	if completed != 2 {
		t.Errorf("completed %d messages, want 2", completed)
	}
}

// newFragment creates a fragment with the given fragmentation frame flags and
// passes it through the wire
func newFragment(t testing.TB, fragmentationID int64, flags FrameFlags, frames ...*Frame) *ClientMessage {
	t.Helper()
	content := make([]byte, LongSizeInBytes)
	EncodeLong(content, FragmentationIDOffset, fragmentationID)
	msg := NewClientMessage(append([]*Frame{NewFrameWith(content, flags)}, frames...))

	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	read, err := ReadMessageBytes(data)
	if err != nil {
		t.Fatalf("ReadMessageBytes() error: %v", err)
	}
	return read
}

// TestAssemblerMalformedMessage tests fragments that merge into a message without usable start frame
func TestAssemblerMalformedMessage(t *testing.T) {
	testCases := []struct {
		name  string
		begin []*Frame
		end   []*Frame
	}{
		{"no frames", nil, nil},
		{"short start frame", []*Frame{NewFrame([]byte{1, 2})}, nil},
		{"short start frame in end fragment", nil, []*Frame{NewFrame(make([]byte, minStartFrameSize-1))}},
		{"null start frame", []*Frame{NewNullFrame()}, []*Frame{NewFrame([]byte("abc"))}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assembler := NewFragmentAssembler()

			if _, complete, err := assembler.Add(newFragment(t, 9, BeginFragmentFlag, tc.begin...)); err != nil || complete {
				t.Fatalf("Add() of begin fragment = %v, %v", complete, err)
			}
			merged, complete, err := assembler.Add(newFragment(t, 9, EndFragmentFlag, tc.end...))
			if !errors.Is(err, ErrMalformedFrame) {
				t.Errorf("Add() error = %v, want ErrMalformedFrame", err)
			}
			if complete || merged != nil {
				t.Errorf("Add() = %v, %v, want no message", merged, complete)
			}
			if assembler.Pending() != 0 {
				t.Errorf("Pending() = %d, want 0", assembler.Pending())
			}
		})
	}
}

// TestAssemblerPendingLimit tests that an assembler rejects new messages once the limit is reached
func TestAssemblerPendingLimit(t *testing.T) {
	assembler := NewFragmentAssemblerWithLimit(2)
	body := NewFrame(make([]byte, RequestInitialFrameSize))

	for id := int64(1); id <= 2; id++ {
		if _, _, err := assembler.Add(newFragment(t, id, BeginFragmentFlag, body)); err != nil {
			t.Fatalf("Add() of fragment %d error: %v", id, err)
		}
	}

	if _, _, err := assembler.Add(newFragment(t, 3, BeginFragmentFlag, body)); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("Add() beyond the limit error = %v, want ErrMalformedFrame", err)
	}

	// a pending message can still be completed, which frees a slot
	if _, complete, err := assembler.Add(newFragment(t, 1, EndFragmentFlag)); err != nil || !complete {
		t.Fatalf("Add() of end fragment = %v, %v", complete, err)
	}
	if _, _, err := assembler.Add(newFragment(t, 3, BeginFragmentFlag, body)); err != nil {
		t.Errorf("Add() after completion error: %v", err)
	}
	if assembler.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", assembler.Pending())
	}
}
