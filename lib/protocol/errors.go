package protocol

import "errors"

// Protocol errors. Decoders wrap them with the context of the failing field,
// use errors.Is to test for them.
var (
	// ErrFramesExhausted is returned when a decoder needs another frame but the message has none left.
	// This means the message is truncated or was produced by an incompatible encoder.
	ErrFramesExhausted = errors.New("protocol: no frames left in message")

	// ErrLayoutMismatch is returned when the content of a frame does not match the expected layout,
	// e.g. a fixed-size list whose length is not a multiple of the element size.
	ErrLayoutMismatch = errors.New("protocol: frame layout mismatch")

	// ErrUnexpectedFrame is returned when a frame of the wrong kind is found,
	// e.g. a begin marker where a data frame was expected.
	ErrUnexpectedFrame = errors.New("protocol: unexpected frame")

	// ErrUnexpectedNull is returned when a null value is found for a field that is not nullable.
	ErrUnexpectedNull = errors.New("protocol: unexpected null value")

	// ErrInvalidProtocolHeader is returned when a connection does not start with the client protocol header.
	ErrInvalidProtocolHeader = errors.New("protocol: invalid protocol header")

	// ErrMalformedFrame is returned when a frame header on the wire is invalid.
	ErrMalformedFrame = errors.New("protocol: malformed frame")

	// ErrFrameTooLarge is returned when a frame on the wire exceeds the configured limit.
	ErrFrameTooLarge = errors.New("protocol: frame too large")

	// ErrFragmentMissing is returned when a fragment arrives for an unknown fragmentation id.
	ErrFragmentMissing = errors.New("protocol: fragment without begin")
)
