package codec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/google/uuid"
)

// countMarkers returns the number of begin and end frames of a message
func countMarkers(msg *protocol.ClientMessage) (begins, ends int) {
	for _, f := range msg.Frames {
		if f.IsBeginFrame() {
			begins++
		}
		if f.IsEndFrame() {
			ends++
		}
	}
	return begins, ends
}

// TestListStringScenario tests ["a","bb",""] between begin and end markers
func TestListStringScenario(t *testing.T) {
	values := []string{"a", "bb", ""}
	msg := protocol.NewClientMessageForEncode()
	EncodeListString(msg, values)

	if len(msg.Frames) != 5 || !msg.Frames[0].IsBeginFrame() || !msg.Frames[4].IsEndFrame() {
		t.Fatalf("unexpected frames: %v", msg.Frames)
	}

	got, err := DecodeListString(msg.FrameIterator())
	if err != nil {
		t.Fatalf("DecodeListString() error: %v", err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Errorf("DecodeListString() = %q, want %q", got, values)
	}
}

// TestListMultiFrameSizes tests lists of n elements
func TestListMultiFrameSizes(t *testing.T) {
	for n := 0; n < 20; n++ {
		values := make([]string, n)
		for i := range values {
			values[i] = string(rune('a' + i))
		}

		msg := protocol.NewClientMessageForEncode()
		EncodeListString(msg, values)
		got, err := DecodeListString(msg.FrameIterator())
		if err != nil {
			t.Fatalf("n=%d: DecodeListString() error: %v", n, err)
		}
		if !reflect.DeepEqual(got, values) {
			t.Errorf("n=%d: DecodeListString() = %q", n, got)
		}
	}
}

// TestListMultiFrameContainsNullable tests null elements inside a list
func TestListMultiFrameContainsNullable(t *testing.T) {
	values := [][]byte{{1}, nil, {}, {2, 3}}
	msg := protocol.NewClientMessageForEncode()
	EncodeListMultiFrameContainsNullable(msg, values, func(b []byte) bool { return b == nil }, EncodeByteArray)

	if !msg.Frames[2].IsNullFrame() {
		t.Errorf("second element is not a null frame: %v", msg.Frames[2])
	}

	got, err := DecodeListMultiFrameContainsNullable(msg.FrameIterator(), DecodeByteArray)
	if err != nil {
		t.Fatalf("DecodeListMultiFrameContainsNullable() error: %v", err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Errorf("DecodeListMultiFrameContainsNullable() = %v, want %v", got, values)
	}
}

// TestNestingSymmetry tests nested lists followed by a sibling field
func TestNestingSymmetry(t *testing.T) {
	nested := [][][]string{
		{{"a"}, {}},
		{},
		{{"b", "c"}, {"d"}},
	}
	encodeInner := func(msg *protocol.ClientMessage, v [][]string) {
		EncodeListMultiFrame(msg, v, EncodeListString)
	}
	decodeInner := func(it *protocol.ForwardFrameIterator) ([][]string, error) {
		return DecodeListMultiFrame(it, DecodeListString)
	}

	msg := protocol.NewClientMessageForEncode()
	EncodeListMultiFrame(msg, nested, encodeInner)
	EncodeString(msg, "sibling")

	begins, ends := countMarkers(msg)
	if begins != ends {
		t.Errorf("%d begin frames, %d end frames", begins, ends)
	}

	it := msg.FrameIterator()
	got, err := DecodeListMultiFrame(it, decodeInner)
	if err != nil {
		t.Fatalf("DecodeListMultiFrame() error: %v", err)
	}
	if !reflect.DeepEqual(got, nested) {
		t.Errorf("DecodeListMultiFrame() = %v, want %v", got, nested)
	}

	sibling, err := DecodeString(it)
	if err != nil || sibling != "sibling" {
		t.Errorf("sibling field = %q, %v", sibling, err)
	}
	if it.HasNext() {
		t.Errorf("%d frames left", it.Remaining())
	}
}

// TestListMultiFrameTruncated tests a list without end frame
func TestListMultiFrameTruncated(t *testing.T) {
	msg := protocol.NewClientMessageForEncode()
	EncodeListString(msg, []string{"a", "b"})
	msg.Frames = msg.Frames[:len(msg.Frames)-1]

	if _, err := DecodeListString(msg.FrameIterator()); !errors.Is(err, protocol.ErrFramesExhausted) {
		t.Errorf("DecodeListString() error = %v, want ErrFramesExhausted", err)
	}
}

// TestEntryListIntegerIntegerScenario tests {1:10, 2:20}
func TestEntryListIntegerIntegerScenario(t *testing.T) {
	entries := []Entry[int32, int32]{{Key: 1, Value: 10}, {Key: 2, Value: 20}}
	msg := protocol.NewClientMessageForEncode()
	EncodeEntryListIntegerInteger(msg, entries)

	if len(msg.Frames) != 1 || len(msg.Frames[0].Content) != 16 {
		t.Fatalf("expected one frame of 16 bytes, got %v", msg.Frames)
	}

	got, err := DecodeEntryListIntegerInteger(msg.FrameIterator())
	if err != nil {
		t.Fatalf("DecodeEntryListIntegerInteger() error: %v", err)
	}
	gotMap := make(map[int32]int32)
	for _, e := range got {
		gotMap[e.Key] = e.Value
	}
	if !reflect.DeepEqual(gotMap, map[int32]int32{1: 10, 2: 20}) {
		t.Errorf("DecodeEntryListIntegerInteger() = %v", got)
	}
}

// TestEntryListUUIDLong tests the 25 byte entries
func TestEntryListUUIDLong(t *testing.T) {
	entries := []Entry[uuid.UUID, int64]{
		{Key: uuid.New(), Value: -1},
		{Key: uuid.Nil, Value: 9223372036854775807},
	}
	msg := protocol.NewClientMessageForEncode()
	EncodeEntryListUUIDLong(msg, entries)
	if got := len(msg.Frames[0].Content); got != 50 {
		t.Errorf("frame has %d bytes, want 50", got)
	}

	got, err := DecodeEntryListUUIDLong(msg.FrameIterator())
	if err != nil {
		t.Fatalf("DecodeEntryListUUIDLong() error: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("DecodeEntryListUUIDLong() = %v, want %v", got, entries)
	}
}

// TestEntryListUUIDListInteger tests the entry list encoded as two lists
func TestEntryListUUIDListInteger(t *testing.T) {
	entries := []Entry[uuid.UUID, []int32]{
		{Key: uuid.New(), Value: []int32{1, 2, 3}},
		{Key: uuid.New(), Value: []int32{}},
		{Key: uuid.New(), Value: []int32{271}},
	}
	msg := protocol.NewClientMessageForEncode()
	EncodeEntryListUUIDListInteger(msg, entries)
	EncodeString(msg, "next")

	it := msg.FrameIterator()
	got, err := DecodeEntryListUUIDListInteger(it)
	if err != nil {
		t.Fatalf("DecodeEntryListUUIDListInteger() error: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("DecodeEntryListUUIDListInteger() = %v, want %v", got, entries)
	}
	if next, err := DecodeString(it); err != nil || next != "next" {
		t.Errorf("field after entry list = %q, %v", next, err)
	}
}

// TestEntryListUUIDListIntegerMismatch tests a key list that is shorter than the value list
func TestEntryListUUIDListIntegerMismatch(t *testing.T) {
	msg := protocol.NewClientMessageForEncode()
	EncodeListMultiFrame(msg, [][]int32{{1}, {2}}, EncodeListInteger)
	EncodeListUUID(msg, []uuid.UUID{uuid.New()})

	if _, err := DecodeEntryListUUIDListInteger(msg.FrameIterator()); !errors.Is(err, protocol.ErrLayoutMismatch) {
		t.Errorf("DecodeEntryListUUIDListInteger() error = %v, want ErrLayoutMismatch", err)
	}
}

// TestEntryListRoundTrip tests the generic entry list with byte array keys and values
func TestEntryListRoundTrip(t *testing.T) {
	entries := []Entry[[]byte, []byte]{
		{Key: []byte("k1"), Value: []byte("v1")},
		{Key: []byte("k2"), Value: []byte{}},
	}
	msg := protocol.NewClientMessageForEncode()
	EncodeEntryList(msg, entries, EncodeByteArray, EncodeByteArray)
	EncodeNullableEntryList[string, string](msg, nil, EncodeString, EncodeString)

	it := msg.FrameIterator()
	got, err := DecodeEntryList(it, DecodeByteArray, DecodeByteArray)
	if err != nil {
		t.Fatalf("DecodeEntryList() error: %v", err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("DecodeEntryList() = %q, want %q", got, entries)
	}

	null, err := DecodeNullableEntryList(it, DecodeString, DecodeString)
	if err != nil || null != nil {
		t.Errorf("DecodeNullableEntryList() = %v, %v, want nil", null, err)
	}
}

// TestFastForwardToEndFrame tests skipping of nested structures
func TestFastForwardToEndFrame(t *testing.T) {
	msg := protocol.NewClientMessage([]*protocol.Frame{
		protocol.NewFrame([]byte("unknown field")),
		protocol.NewBeginFrame(),
		protocol.NewFrame([]byte("nested")),
		protocol.NewEndFrame(),
		protocol.NewEndFrame(),
		protocol.NewFrame([]byte("after")),
	})

	it := msg.FrameIterator()
	if err := FastForwardToEndFrame(it); err != nil {
		t.Fatalf("FastForwardToEndFrame() error: %v", err)
	}
	if s, err := DecodeString(it); err != nil || s != "after" {
		t.Errorf("DecodeString() = %q, %v, want after", s, err)
	}

	unterminated := protocol.NewClientMessage([]*protocol.Frame{protocol.NewBeginFrame(), protocol.NewEndFrame()})
	if err := FastForwardToEndFrame(unterminated.FrameIterator()); !errors.Is(err, protocol.ErrFramesExhausted) {
		t.Errorf("FastForwardToEndFrame() error = %v, want ErrFramesExhausted", err)
	}
}
