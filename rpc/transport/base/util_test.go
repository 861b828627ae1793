package base

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/hzwire/lib/protocol"
	"github.com/ValentinKolb/hzwire/lib/protocol/codec"
	"io"
	"net"
	"testing"
)

func TestWriteReadMessage(t *testing.T) {
	value := bytes.Repeat([]byte{0xAB}, 2000)
	msg := codec.EncodeMapPutRequest(codec.MapPutRequest{Name: "m", Key: []byte("k"), Value: value, TTL: -1})
	msg.SetCorrelationID(7)

	tests := []struct {
		name         string
		fragmentSize int
		wantMessages int
	}{
		{"no fragmentation", 0, 1},
		{"larger fragment size", 1 << 20, 1},
		{"small fragments", 256, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var ids int64
			if err := writeMessage(&buf, msg, tt.fragmentSize, func() int64 { ids++; return ids }); err != nil {
				t.Fatalf("writeMessage() error: %v", err)
			}

			// count the messages on the wire
			raw := bytes.NewReader(buf.Bytes())
			count := 0
			for {
				if _, err := protocol.ReadMessage(raw, 0); err != nil {
					if !errors.Is(err, io.EOF) {
						t.Fatalf("ReadMessage() error: %v", err)
					}
					break
				}
				count++
			}
			if tt.wantMessages > 0 && count != tt.wantMessages {
				t.Errorf("wrote %d messages, want %d", count, tt.wantMessages)
			}
			if tt.wantMessages == 0 && count < 2 {
				t.Errorf("wrote %d messages, want fragments", count)
			}

			got, err := readMessage(bufio.NewReader(&buf), 0, protocol.NewFragmentAssembler())
			if err != nil {
				t.Fatalf("readMessage() error: %v", err)
			}
			if got.CorrelationID() != 7 {
				t.Errorf("correlation id = %d, want 7", got.CorrelationID())
			}
			put, err := codec.DecodeMapPutRequest(got)
			if err != nil {
				t.Fatalf("DecodeMapPutRequest() error: %v", err)
			}
			if !bytes.Equal(put.Value, value) {
				t.Errorf("value has %d bytes, want %d", len(put.Value), len(value))
			}
		})
	}
}

func TestReadMessageDropsOrphanFragments(t *testing.T) {
	msg := codec.EncodeMapPutRequest(codec.MapPutRequest{Name: "m", Key: []byte("k"), Value: make([]byte, 1000)})
	fragments := protocol.SplitIntoFragments(msg, 256, 1)
	if len(fragments) < 3 {
		t.Fatalf("got %d fragments, want at least 3", len(fragments))
	}

	// the begin fragment is lost, an unfragmented ping follows
	var buf bytes.Buffer
	for _, fragment := range fragments[1:] {
		if err := protocol.WriteMessage(&buf, fragment); err != nil {
			t.Fatalf("WriteMessage() error: %v", err)
		}
	}
	if err := protocol.WriteMessage(&buf, codec.EncodeClientPingRequest()); err != nil {
		t.Fatalf("WriteMessage() error: %v", err)
	}

	got, err := readMessage(bufio.NewReader(&buf), 0, protocol.NewFragmentAssembler())
	if err != nil {
		t.Fatalf("readMessage() error: %v", err)
	}
	if got.MessageType() != codec.ClientPingRequestMessageType {
		t.Errorf("message type = 0x%06x, want ping", got.MessageType())
	}
}

func TestIsClosedErr(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{io.EOF, true},
		{fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{net.ErrClosed, true},
		{protocol.ErrMalformedFrame, false},
	}
	for _, tt := range tests {
		if got := isClosedErr(tt.err); got != tt.want {
			t.Errorf("isClosedErr(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestAuthenticationStatusName(t *testing.T) {
	if got := authenticationStatusName(codec.AuthenticationStatusCredentialsFailed); got != "credentials failed" {
		t.Errorf("authenticationStatusName() = %q", got)
	}
	if got := authenticationStatusName(9); got != "unknown status 9" {
		t.Errorf("authenticationStatusName() = %q", got)
	}
}
