package protocol

import (
	"encoding/binary"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Fixed-size field codec
// --------------------------------------------------------------------------

/*
	All functions in this file read or write a single scalar at a caller computed
	offset of a caller owned buffer. The buffer must be large enough, there is no
	bounds checking besides the one done by the Go runtime.
*/

// EncodeByte writes a single raw byte at offset
func EncodeByte(buf []byte, offset int, v byte) {
	buf[offset] = v
}

// DecodeByte reads a single raw byte at offset
func DecodeByte(buf []byte, offset int) byte {
	return buf[offset]
}

// EncodeBoolean writes 1 for true and 0 for false at offset
func EncodeBoolean(buf []byte, offset int, v bool) {
	if v {
		buf[offset] = 1
	} else {
		buf[offset] = 0
	}
}

// DecodeBoolean reads a boolean at offset, only 1 is true
func DecodeBoolean(buf []byte, offset int) bool {
	return buf[offset] == 1
}

// EncodeInt writes a 4 byte little-endian signed integer at offset
func EncodeInt(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}

// DecodeInt reads a 4 byte little-endian signed integer at offset
func DecodeInt(buf []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(buf[offset:]))
}

// EncodeLong writes an 8 byte little-endian signed integer at offset
func EncodeLong(buf []byte, offset int, v int64) {
	binary.LittleEndian.PutUint64(buf[offset:], uint64(v))
}

// DecodeLong reads an 8 byte little-endian signed integer at offset
func DecodeLong(buf []byte, offset int) int64 {
	return int64(binary.LittleEndian.Uint64(buf[offset:]))
}

// DecodeLongUnsigned reads the same 8 bytes as DecodeLong as an unsigned value
func DecodeLongUnsigned(buf []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(buf[offset:])
}

// EncodeUUID writes a nullable UUID at offset. The field always occupies
// UUIDSizeInBytes: the is-null flag followed by the most and least significant
// 64 bits. For a null UUID only the flag is written.
func EncodeUUID(buf []byte, offset int, id uuid.NullUUID) {
	isNull := !id.Valid
	EncodeBoolean(buf, offset, isNull)
	if isNull {
		return
	}
	msb := binary.BigEndian.Uint64(id.UUID[0:8])
	lsb := binary.BigEndian.Uint64(id.UUID[8:16])
	binary.LittleEndian.PutUint64(buf[offset+BooleanSizeInBytes:], msb)
	binary.LittleEndian.PutUint64(buf[offset+BooleanSizeInBytes+LongSizeInBytes:], lsb)
}

// DecodeUUID reads a nullable UUID written by EncodeUUID. The value bytes are
// only read if the is-null flag is not set.
func DecodeUUID(buf []byte, offset int) uuid.NullUUID {
	if DecodeBoolean(buf, offset) {
		return uuid.NullUUID{}
	}
	msb := DecodeLongUnsigned(buf, offset+BooleanSizeInBytes)
	lsb := DecodeLongUnsigned(buf, offset+BooleanSizeInBytes+LongSizeInBytes)

	var id uuid.UUID
	binary.BigEndian.PutUint64(id[0:8], msb)
	binary.BigEndian.PutUint64(id[8:16], lsb)
	return uuid.NullUUID{UUID: id, Valid: true}
}
