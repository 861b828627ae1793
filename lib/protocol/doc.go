// Package protocol implements the message model of the Hazelcast client
// binary protocol. It is the foundation every request and response is built
// on: a message is an ordered list of frames, each frame is a byte slice plus
// a flags word, and all scalar fields are packed little-endian at fixed
// offsets.
//
// The package focuses on:
//   - The Frame type and the frame flags (final, begin/end data structure,
//     null, event, fragmentation)
//   - The ClientMessage type, its start frame header fields (message type,
//     correlation id, partition id) and the forward-only frame iterator
//   - Fixed-size field encoding (byte, boolean, int, long, UUID)
//   - Reading and writing messages from and to a byte stream
//   - Splitting large messages into fragments and assembling them again
//
// Key Components:
//
//   - Frame: The atomic unit of the wire format. Flags are fixed when the frame
//     is created. Marker frames (null, begin, end) are created fresh for every
//     use so no frame is ever shared between two messages.
//
//   - ClientMessage: An ordered sequence of frames. Encoders append frames with
//     AddFrame, decoders consume them with a ForwardFrameIterator.
//
//   - ForwardFrameIterator: Sequential, consuming access to the frames of a
//     message with a one frame lookahead (PeekNext). Reading past the last
//     frame returns ErrFramesExhausted.
//
//   - Fixed-size codec: EncodeInt/DecodeInt and friends. Offsets are computed by
//     the caller, the buffer is owned by the caller.
//
//   - Wire: WriteMessage/ReadMessage convert between messages and the length
//     prefixed frame stream used on a connection.
//
//   - FragmentAssembler / SplitIntoFragments: Support for messages that are
//     larger than the configured frame size limit.
//
// Wire Format:
//
//	Every frame on the wire is prefixed by a 6 byte header:
//
//	  +----------------------------+--------------------+------------------+
//	  | frame length (int32, LE)   | flags (uint16, LE) | content          |
//	  +----------------------------+--------------------+------------------+
//
//	The frame length includes the header itself. The last frame of a message
//	carries the IS_FINAL flag.
//
// Thread Safety:
//
//	The codec functions are stateless and can be used from any number of
//	goroutines. A ClientMessage and its frames are owned by a single goroutine
//	at a time and must not be mutated concurrently. FragmentAssembler is safe
//	for concurrent use.
package protocol
