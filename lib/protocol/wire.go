package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// --------------------------------------------------------------------------
// Protocol Header
// --------------------------------------------------------------------------

// WriteProtocolHeader writes the client protocol header, once per connection
func WriteProtocolHeader(w io.Writer) error {
	_, err := io.WriteString(w, ClientProtocolHeader)
	return err
}

// ReadProtocolHeader reads and validates the client protocol header
func ReadProtocolHeader(r io.Reader) error {
	buf := make([]byte, len(ClientProtocolHeader))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	if string(buf) != ClientProtocolHeader {
		return fmt.Errorf("%w: got %q", ErrInvalidProtocolHeader, buf)
	}
	return nil
}

// --------------------------------------------------------------------------
// Messages
// --------------------------------------------------------------------------

// WriteMessage writes all frames of the message. Each frame is prefixed with
// its length (header included) and its flags. IS_FINAL is set on the last frame
// and cleared on all others, the frames themselves are not modified.
func WriteMessage(w io.Writer, msg *ClientMessage) error {
	if len(msg.Frames) == 0 {
		return fmt.Errorf("%w: message has no frames", ErrMalformedFrame)
	}

	// header and content of every frame, written with as few syscalls as possible
	headers := make([]byte, SizeOfFrameLengthAndFlags*len(msg.Frames))
	b := make(net.Buffers, 0, 2*len(msg.Frames))

	last := len(msg.Frames) - 1
	for i, frame := range msg.Frames {
		flags := frame.Flags() &^ IsFinalFlag
		if i == last {
			flags |= IsFinalFlag
		}

		header := headers[i*SizeOfFrameLengthAndFlags : (i+1)*SizeOfFrameLengthAndFlags]
		binary.LittleEndian.PutUint32(header[0:4], uint32(frame.WireSize()))
		binary.LittleEndian.PutUint16(header[4:6], uint16(flags))

		b = append(b, header)
		if len(frame.Content) > 0 {
			b = append(b, frame.Content)
		}
	}

	_, err := b.WriteTo(w)
	return err
}

// ReadMessage reads frames until a frame with IS_FINAL is found.
// maxFrameSize limits the wire size of a single frame, values <= 0 use DefaultMaxFrameSize.
// The start frame is validated to be large enough for the header fields.
func ReadMessage(r io.Reader, maxFrameSize int) (*ClientMessage, error) {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}

	header := make([]byte, SizeOfFrameLengthAndFlags)
	msg := NewClientMessageForEncode()

	for {
		if _, err := io.ReadFull(r, header); err != nil {
			// a clean EOF is only possible before the first frame
			if err == io.EOF && len(msg.Frames) > 0 {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		frameLength := int(int32(binary.LittleEndian.Uint32(header[0:4])))
		flags := FrameFlags(binary.LittleEndian.Uint16(header[4:6]))

		if frameLength < SizeOfFrameLengthAndFlags {
			return nil, fmt.Errorf("%w: frame length %d", ErrMalformedFrame, frameLength)
		}
		if frameLength > maxFrameSize {
			return nil, fmt.Errorf("%w: frame length %d exceeds %d", ErrFrameTooLarge, frameLength, maxFrameSize)
		}

		content := make([]byte, frameLength-SizeOfFrameLengthAndFlags)
		if _, err := io.ReadFull(r, content); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		frame := NewFrameWith(content, flags)
		msg.AddFrame(frame)

		if frame.IsFinalFrame() {
			break
		}
	}

	if err := validateStartFrame(msg.Frames[0]); err != nil {
		return nil, err
	}
	return msg, nil
}

// ReadMessageBytes decodes a message from its complete wire representation.
// Trailing bytes after the final frame are an error.
func ReadMessageBytes(data []byte) (*ClientMessage, error) {
	r := bytes.NewReader(data)
	msg, err := ReadMessage(r, len(data))
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after final frame", ErrMalformedFrame, r.Len())
	}
	return msg, nil
}

// Bytes returns the wire representation of the message
func (m *ClientMessage) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(m.TotalLength())
	if err := WriteMessage(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// validateStartFrame checks that the header fields can be read from the start frame
func validateStartFrame(start *Frame) error {
	minSize := minStartFrameSize
	if !start.HasUnfragmentedMessageFlags() {
		// fragments start with the fragmentation id only
		minSize = LongSizeInBytes
	}
	if len(start.Content) < minSize {
		return fmt.Errorf("%w: start frame has %d bytes, need at least %d", ErrMalformedFrame, len(start.Content), minSize)
	}
	return nil
}
