package protocol

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Frame Flags
// --------------------------------------------------------------------------

// FrameFlags is the flags word of a frame. Each bit is an independent marker.
type FrameFlags uint16

const (
	DefaultFlags           FrameFlags = 0
	BeginFragmentFlag      FrameFlags = 1 << 15
	EndFragmentFlag        FrameFlags = 1 << 14
	UnfragmentedMessage               = BeginFragmentFlag | EndFragmentFlag
	IsFinalFlag            FrameFlags = 1 << 13
	BeginDataStructureFlag FrameFlags = 1 << 12
	EndDataStructureFlag   FrameFlags = 1 << 11
	IsNullFlag             FrameFlags = 1 << 10
	IsEventFlag            FrameFlags = 1 << 9
	BackupAwareFlag        FrameFlags = 1 << 8
	BackupEventFlag        FrameFlags = 1 << 7
)

// flagNames is used by String, in wire order
var flagNames = []struct {
	flag FrameFlags
	name string
}{
	{BeginFragmentFlag, "BEGIN_FRAGMENT"},
	{EndFragmentFlag, "END_FRAGMENT"},
	{IsFinalFlag, "IS_FINAL"},
	{BeginDataStructureFlag, "BEGIN_DATA_STRUCTURE"},
	{EndDataStructureFlag, "END_DATA_STRUCTURE"},
	{IsNullFlag, "IS_NULL"},
	{IsEventFlag, "IS_EVENT"},
	{BackupAwareFlag, "BACKUP_AWARE"},
	{BackupEventFlag, "BACKUP_EVENT"},
}

// Has returns true if all bits of flag are set
func (f FrameFlags) Has(flag FrameFlags) bool {
	return f&flag == flag
}

// String returns the names of the set flags separated by '|'
func (f FrameFlags) String() string {
	if f == DefaultFlags {
		return "DEFAULT"
	}
	var names []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%04x", uint16(rest)))
	}
	return strings.Join(names, "|")
}

// --------------------------------------------------------------------------
// Frame
// --------------------------------------------------------------------------

// Frame is the smallest unit of a message: a content buffer plus flags.
// The flags are fixed at construction. The content is owned by the message the
// frame belongs to.
type Frame struct {
	Content []byte
	flags   FrameFlags
}

// NewFrame creates a frame with default flags
func NewFrame(content []byte) *Frame {
	return &Frame{Content: content, flags: DefaultFlags}
}

// NewFrameWith creates a frame with the given flags
func NewFrameWith(content []byte, flags FrameFlags) *Frame {
	return &Frame{Content: content, flags: flags}
}

// NewNullFrame creates a marker frame standing in for an absent value
func NewNullFrame() *Frame {
	return NewFrameWith([]byte{}, IsNullFlag)
}

// NewBeginFrame creates a marker frame opening a nested data structure
func NewBeginFrame() *Frame {
	return NewFrameWith([]byte{}, BeginDataStructureFlag)
}

// NewEndFrame creates a marker frame closing a nested data structure
func NewEndFrame() *Frame {
	return NewFrameWith([]byte{}, EndDataStructureFlag)
}

// Flags returns the flags of the frame
func (f *Frame) Flags() FrameFlags {
	return f.flags
}

// Copy returns a deep copy of the frame, the content is copied as well
func (f *Frame) Copy() *Frame {
	content := make([]byte, len(f.Content))
	copy(content, f.Content)
	return &Frame{Content: content, flags: f.flags}
}

// WireSize is the number of bytes the frame occupies on the wire, header included
func (f *Frame) WireSize() int {
	return SizeOfFrameLengthAndFlags + len(f.Content)
}

func (f *Frame) IsNullFrame() bool {
	return f.flags.Has(IsNullFlag)
}

func (f *Frame) IsBeginFrame() bool {
	return f.flags.Has(BeginDataStructureFlag)
}

func (f *Frame) IsEndFrame() bool {
	return f.flags.Has(EndDataStructureFlag)
}

func (f *Frame) IsFinalFrame() bool {
	return f.flags.Has(IsFinalFlag)
}

func (f *Frame) HasUnfragmentedMessageFlags() bool {
	return f.flags.Has(UnfragmentedMessage)
}

func (f *Frame) HasBeginFragmentFlag() bool {
	return f.flags.Has(BeginFragmentFlag)
}

func (f *Frame) HasEndFragmentFlag() bool {
	return f.flags.Has(EndFragmentFlag)
}

// IsMarkerFrame reports whether the frame is a null, begin or end marker
func (f *Frame) IsMarkerFrame() bool {
	return f.flags&(IsNullFlag|BeginDataStructureFlag|EndDataStructureFlag) != 0
}

// String returns a short description of the frame, used for debugging output
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{len=%d, flags=%s}", len(f.Content), f.flags)
}
