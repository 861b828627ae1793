package codec

import (
	"fmt"
	"net"
	"strconv"

	"github.com/ValentinKolb/hzwire/lib/protocol"
)

// Custom structures are written as BEGIN, a frame with all fixed-size fields,
// one frame group per variable-size field and END. Decoders skip everything
// between the last known field and END.

// --------------------------------------------------------------------------
// Address
// --------------------------------------------------------------------------

// Address is the network address of a member
type Address struct {
	Host string
	Port int32
}

func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

const (
	addressPortFieldOffset  = 0
	addressInitialFrameSize = addressPortFieldOffset + protocol.IntSizeInBytes
)

func EncodeAddress(msg *protocol.ClientMessage, address Address) {
	msg.AddFrame(protocol.NewBeginFrame())
	initialFrame := make([]byte, addressInitialFrameSize)
	protocol.EncodeInt(initialFrame, addressPortFieldOffset, address.Port)
	msg.AddFrame(protocol.NewFrame(initialFrame))
	EncodeString(msg, address.Host)
	msg.AddFrame(protocol.NewEndFrame())
}

func DecodeAddress(it *protocol.ForwardFrameIterator) (Address, error) {
	if err := expectBeginFrame(it); err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	initialFrame, err := nextInitialFrame(it, addressInitialFrameSize)
	if err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	port := protocol.DecodeInt(initialFrame.Content, addressPortFieldOffset)
	host, err := DecodeString(it)
	if err != nil {
		return Address{}, fmt.Errorf("decode address host: %w", err)
	}
	if err := FastForwardToEndFrame(it); err != nil {
		return Address{}, fmt.Errorf("decode address: %w", err)
	}
	return Address{Host: host, Port: port}, nil
}

// EncodeNullableAddress writes an IS_NULL frame for nil
func EncodeNullableAddress(msg *protocol.ClientMessage, address *Address) {
	if address == nil {
		msg.AddFrame(protocol.NewNullFrame())
		return
	}
	EncodeAddress(msg, *address)
}

func DecodeNullableAddress(it *protocol.ForwardFrameIterator) (*Address, error) {
	address, ok, err := DecodeNullable(it, DecodeAddress)
	if err != nil || !ok {
		return nil, err
	}
	return &address, nil
}

// --------------------------------------------------------------------------
// StackTraceElement
// --------------------------------------------------------------------------

// StackTraceElement is one line of the stack trace of a server side error
type StackTraceElement struct {
	ClassName  string
	MethodName string
	FileName   *string
	LineNumber int32
}

func (e StackTraceElement) String() string {
	file := "Unknown Source"
	if e.FileName != nil {
		file = *e.FileName
	}
	return fmt.Sprintf("%s.%s(%s:%d)", e.ClassName, e.MethodName, file, e.LineNumber)
}

const (
	stackTraceElementLineNumberFieldOffset = 0
	stackTraceElementInitialFrameSize      = stackTraceElementLineNumberFieldOffset + protocol.IntSizeInBytes
)

func EncodeStackTraceElement(msg *protocol.ClientMessage, element StackTraceElement) {
	msg.AddFrame(protocol.NewBeginFrame())
	initialFrame := make([]byte, stackTraceElementInitialFrameSize)
	protocol.EncodeInt(initialFrame, stackTraceElementLineNumberFieldOffset, element.LineNumber)
	msg.AddFrame(protocol.NewFrame(initialFrame))
	EncodeString(msg, element.ClassName)
	EncodeString(msg, element.MethodName)
	EncodeNullableString(msg, element.FileName)
	msg.AddFrame(protocol.NewEndFrame())
}

func DecodeStackTraceElement(it *protocol.ForwardFrameIterator) (StackTraceElement, error) {
	var element StackTraceElement
	if err := expectBeginFrame(it); err != nil {
		return element, fmt.Errorf("decode stack trace element: %w", err)
	}
	initialFrame, err := nextInitialFrame(it, stackTraceElementInitialFrameSize)
	if err != nil {
		return element, fmt.Errorf("decode stack trace element: %w", err)
	}
	element.LineNumber = protocol.DecodeInt(initialFrame.Content, stackTraceElementLineNumberFieldOffset)
	if element.ClassName, err = DecodeString(it); err != nil {
		return element, fmt.Errorf("decode stack trace element class name: %w", err)
	}
	if element.MethodName, err = DecodeString(it); err != nil {
		return element, fmt.Errorf("decode stack trace element method name: %w", err)
	}
	if element.FileName, err = DecodeNullableString(it); err != nil {
		return element, fmt.Errorf("decode stack trace element file name: %w", err)
	}
	if err := FastForwardToEndFrame(it); err != nil {
		return element, fmt.Errorf("decode stack trace element: %w", err)
	}
	return element, nil
}

// --------------------------------------------------------------------------
// ErrorHolder
// --------------------------------------------------------------------------

// ErrorHolder is one error of the cause chain of an error response
type ErrorHolder struct {
	ErrorCode          int32
	ClassName          string
	Message            *string
	StackTraceElements []StackTraceElement
}

const (
	errorHolderErrorCodeFieldOffset = 0
	errorHolderInitialFrameSize     = errorHolderErrorCodeFieldOffset + protocol.IntSizeInBytes
)

func EncodeErrorHolder(msg *protocol.ClientMessage, holder ErrorHolder) {
	msg.AddFrame(protocol.NewBeginFrame())
	initialFrame := make([]byte, errorHolderInitialFrameSize)
	protocol.EncodeInt(initialFrame, errorHolderErrorCodeFieldOffset, holder.ErrorCode)
	msg.AddFrame(protocol.NewFrame(initialFrame))
	EncodeString(msg, holder.ClassName)
	EncodeNullableString(msg, holder.Message)
	EncodeListMultiFrame(msg, holder.StackTraceElements, EncodeStackTraceElement)
	msg.AddFrame(protocol.NewEndFrame())
}

func DecodeErrorHolder(it *protocol.ForwardFrameIterator) (ErrorHolder, error) {
	var holder ErrorHolder
	if err := expectBeginFrame(it); err != nil {
		return holder, fmt.Errorf("decode error holder: %w", err)
	}
	initialFrame, err := nextInitialFrame(it, errorHolderInitialFrameSize)
	if err != nil {
		return holder, fmt.Errorf("decode error holder: %w", err)
	}
	holder.ErrorCode = protocol.DecodeInt(initialFrame.Content, errorHolderErrorCodeFieldOffset)
	if holder.ClassName, err = DecodeString(it); err != nil {
		return holder, fmt.Errorf("decode error holder class name: %w", err)
	}
	if holder.Message, err = DecodeNullableString(it); err != nil {
		return holder, fmt.Errorf("decode error holder message: %w", err)
	}
	if holder.StackTraceElements, err = DecodeListMultiFrame(it, DecodeStackTraceElement); err != nil {
		return holder, fmt.Errorf("decode error holder stack trace: %w", err)
	}
	if err := FastForwardToEndFrame(it); err != nil {
		return holder, fmt.Errorf("decode error holder: %w", err)
	}
	return holder, nil
}
