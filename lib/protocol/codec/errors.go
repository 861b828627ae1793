package codec

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/hzwire/lib/protocol"
)

// ErrorMessageType is the message type of error responses
const ErrorMessageType int32 = 0x000000

// Error codes of the error holders sent by members
const (
	ErrorCodeUndefined              int32 = 0
	ErrorCodeAuthentication         int32 = 3
	ErrorCodeHazelcastSerialization int32 = 21
	ErrorCodeIllegalArgument        int32 = 23
	ErrorCodeIllegalState           int32 = 27
	ErrorCodeUnsupportedOperation   int32 = 61
)

// ServerError is an error response of a member. The first holder is the error
// itself, the following holders are its causes.
type ServerError struct {
	Holders []ErrorHolder
}

// NewServerError creates an error with a single holder and no stack trace
func NewServerError(errorCode int32, className, message string) *ServerError {
	return &ServerError{Holders: []ErrorHolder{{
		ErrorCode:          errorCode,
		ClassName:          className,
		Message:            &message,
		StackTraceElements: []StackTraceElement{},
	}}}
}

// ErrorCode returns the code of the first holder
func (e *ServerError) ErrorCode() int32 {
	if len(e.Holders) == 0 {
		return ErrorCodeUndefined
	}
	return e.Holders[0].ErrorCode
}

func (e *ServerError) Error() string {
	if len(e.Holders) == 0 {
		return "server error"
	}
	parts := make([]string, len(e.Holders))
	for i, h := range e.Holders {
		if h.Message != nil {
			parts[i] = fmt.Sprintf("%s: %s", h.ClassName, *h.Message)
		} else {
			parts[i] = h.ClassName
		}
	}
	return fmt.Sprintf("server error (code %d): %s", e.ErrorCode(), strings.Join(parts, ", caused by "))
}

// IsErrorResponse reports whether msg is an error response
func IsErrorResponse(msg *protocol.ClientMessage) bool {
	start := msg.StartFrame()
	return start != nil && len(start.Content) >= protocol.IntSizeInBytes && msg.MessageType() == ErrorMessageType
}

// EncodeErrorResponse creates the response for a request that failed on the member
func EncodeErrorResponse(serverErr *ServerError) *protocol.ClientMessage {
	msg, _ := newResponse(ErrorMessageType, protocol.ResponseInitialFrameSize)
	EncodeListMultiFrame(msg, serverErr.Holders, EncodeErrorHolder)
	return msg
}

// DecodeErrorResponse reads the error holders of an error response
func DecodeErrorResponse(msg *protocol.ClientMessage) (*ServerError, error) {
	it, _, err := startFrame(msg, ErrorMessageType, protocol.ResponseInitialFrameSize)
	if err != nil {
		return nil, fmt.Errorf("decode error response: %w", err)
	}
	holders, err := DecodeListMultiFrame(it, DecodeErrorHolder)
	if err != nil {
		return nil, fmt.Errorf("decode error response: %w", err)
	}
	return &ServerError{Holders: holders}, nil
}
