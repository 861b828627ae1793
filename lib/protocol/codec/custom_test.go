package codec

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/hzwire/lib/protocol"
)

// TestAddressRoundTrip tests the address codec and a field following it
func TestAddressRoundTrip(t *testing.T) {
	address := Address{Host: "127.0.0.1", Port: 5701}
	msg := protocol.NewClientMessageForEncode()
	EncodeAddress(msg, address)
	EncodeNullableAddress(msg, nil)
	EncodeString(msg, "next")

	it := msg.FrameIterator()
	got, err := DecodeAddress(it)
	if err != nil {
		t.Fatalf("DecodeAddress() error: %v", err)
	}
	if got != address {
		t.Errorf("DecodeAddress() = %v, want %v", got, address)
	}
	if null, err := DecodeNullableAddress(it); err != nil || null != nil {
		t.Errorf("DecodeNullableAddress() = %v, %v, want nil", null, err)
	}
	if s, err := DecodeString(it); err != nil || s != "next" {
		t.Errorf("DecodeString() = %q, %v", s, err)
	}

	if got.String() != "127.0.0.1:5701" {
		t.Errorf("String() = %q", got.String())
	}
}

// TestAddressFromNewerVersion tests that unknown trailing fields and a longer initial frame are skipped
func TestAddressFromNewerVersion(t *testing.T) {
	initial := make([]byte, 12)
	protocol.EncodeInt(initial, 0, 5702)
	msg := protocol.NewClientMessage([]*protocol.Frame{
		protocol.NewBeginFrame(),
		protocol.NewFrame(initial),
		protocol.NewFrame([]byte("member-1")),
		protocol.NewFrame([]byte("unknown field")),
		protocol.NewBeginFrame(),
		protocol.NewFrame([]byte("unknown nested field")),
		protocol.NewEndFrame(),
		protocol.NewEndFrame(),
		protocol.NewFrame([]byte("sibling")),
	})

	it := msg.FrameIterator()
	got, err := DecodeAddress(it)
	if err != nil {
		t.Fatalf("DecodeAddress() error: %v", err)
	}
	if got != (Address{Host: "member-1", Port: 5702}) {
		t.Errorf("DecodeAddress() = %v", got)
	}
	if s, err := DecodeString(it); err != nil || s != "sibling" {
		t.Errorf("DecodeString() = %q, %v, want sibling", s, err)
	}
}

// TestAddressShortInitialFrame tests an initial frame that is too short for the port
func TestAddressShortInitialFrame(t *testing.T) {
	msg := protocol.NewClientMessage([]*protocol.Frame{
		protocol.NewBeginFrame(),
		protocol.NewFrame([]byte{1, 2}),
		protocol.NewFrame([]byte("host")),
		protocol.NewEndFrame(),
	})
	if _, err := DecodeAddress(msg.FrameIterator()); !errors.Is(err, protocol.ErrLayoutMismatch) {
		t.Errorf("DecodeAddress() error = %v, want ErrLayoutMismatch", err)
	}
}

// TestErrorHolderRoundTrip tests error holders with nested stack trace elements
func TestErrorHolderRoundTrip(t *testing.T) {
	holders := []ErrorHolder{
		{
			ErrorCode: ErrorCodeIllegalArgument,
			ClassName: "java.lang.IllegalArgumentException",
			Message:   strPtr("bad argument"),
			StackTraceElements: []StackTraceElement{
				{ClassName: "com.example.Map", MethodName: "put", FileName: strPtr("Map.java"), LineNumber: 42},
				{ClassName: "com.example.Native", MethodName: "call", FileName: nil, LineNumber: -2},
			},
		},
		{
			ErrorCode:          ErrorCodeUndefined,
			ClassName:          "java.lang.RuntimeException",
			Message:            nil,
			StackTraceElements: []StackTraceElement{},
		},
	}

	msg := protocol.NewClientMessageForEncode()
	EncodeListMultiFrame(msg, holders, EncodeErrorHolder)

	begins, ends := countMarkers(msg)
	if begins != ends {
		t.Errorf("%d begin frames, %d end frames", begins, ends)
	}

	got, err := DecodeListMultiFrame(msg.FrameIterator(), DecodeErrorHolder)
	if err != nil {
		t.Fatalf("DecodeListMultiFrame() error: %v", err)
	}
	if !reflect.DeepEqual(got, holders) {
		t.Errorf("DecodeListMultiFrame() = %+v, want %+v", got, holders)
	}
}

// TestStackTraceElementString tests the java like formatting
func TestStackTraceElementString(t *testing.T) {
	testCases := []struct {
		element StackTraceElement
		want    string
	}{
		{StackTraceElement{ClassName: "a.B", MethodName: "c", FileName: strPtr("B.java"), LineNumber: 1}, "a.B.c(B.java:1)"},
		{StackTraceElement{ClassName: "a.B", MethodName: "c", LineNumber: -1}, "a.B.c(Unknown Source:-1)"},
	}
	for _, tc := range testCases {
		if got := tc.element.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

// TestErrorResponse tests the error response codec
func TestErrorResponse(t *testing.T) {
	serverErr := NewServerError(ErrorCodeIllegalState, "java.lang.IllegalStateException", "map is locked")
	msg := EncodeErrorResponse(serverErr)
	msg.SetCorrelationID(11)

	if !IsErrorResponse(msg) {
		t.Fatalf("IsErrorResponse() = false")
	}
	if IsErrorResponse(EncodeClientPingResponse()) {
		t.Errorf("IsErrorResponse() = true for a ping response")
	}

	// pass through the wire to cover the flags set by the writer
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	read, err := protocol.ReadMessageBytes(data)
	if err != nil {
		t.Fatalf("ReadMessageBytes() error: %v", err)
	}

	got, err := DecodeErrorResponse(read)
	if err != nil {
		t.Fatalf("DecodeErrorResponse() error: %v", err)
	}
	if !reflect.DeepEqual(got, serverErr) {
		t.Errorf("DecodeErrorResponse() = %+v, want %+v", got, serverErr)
	}
	if got.ErrorCode() != ErrorCodeIllegalState {
		t.Errorf("ErrorCode() = %d", got.ErrorCode())
	}
	want := "server error (code 27): java.lang.IllegalStateException: map is locked"
	if got.Error() != want {
		t.Errorf("Error() = %q, want %q", got.Error(), want)
	}

	var target *ServerError
	if !errors.As(error(got), &target) {
		t.Errorf("errors.As() failed for *ServerError")
	}
}
