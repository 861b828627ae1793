// Package codec implements the variable-size and structured codecs of the
// Hazelcast client protocol on top of the protocol package, and the codecs of
// the operations used by the hzwire client and stub member.
//
// Every codec is a pair of functions: EncodeXxx(msg, value) appends frames to a
// message, DecodeXxx(it) consumes exactly the frames written by the encoder
// from a ForwardFrameIterator. This symmetry is what keeps all following fields
// of a message readable, each pair is covered by round trip tests.
//
// The package focuses on:
//   - Strings and byte arrays, each one frame, null as an IS_NULL frame
//   - Lists of fixed-size elements packed into one frame
//   - Lists of variable-size elements between BEGIN/END marker frames
//   - Entry lists (maps) in their fixed-size and generic forms
//   - Custom structures (Address, ErrorHolder, StackTraceElement)
//   - Error responses, returned to callers as *ServerError
//   - Request and response codecs of the client and map operations
//
// Null and Empty:
//
//	Null and empty are always distinct. A nullable string is a *string, a
//	nullable byte array or list is a nil slice. Decoding an empty list returns
//	an empty, non-nil slice.
//
// Versioning:
//
//	Decoders of custom structures skip any frames a newer member appends before
//	the END marker, and read start frames by offset so longer initial frames are
//	accepted as well.
//
// Thread Safety:
//
//	All codecs are stateless and safe for concurrent use, as long as each
//	message is only used by one goroutine at a time.
package codec
