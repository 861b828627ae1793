package protocol

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

// TestIntRoundTrip tests int encoding for boundary values at different offsets
func TestIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 42, math.MinInt32, math.MaxInt32}

	for _, offset := range []int{0, 3, 7} {
		for _, v := range values {
			buf := make([]byte, offset+IntSizeInBytes)
			EncodeInt(buf, offset, v)
			if got := DecodeInt(buf, offset); got != v {
				t.Errorf("DecodeInt(offset=%d) = %d, want %d", offset, got, v)
			}
		}
	}
}

// TestIntMinValue encodes the smallest int into an exactly sized buffer
func TestIntMinValue(t *testing.T) {
	buf := make([]byte, 4)
	EncodeInt(buf, 0, -2147483648)

	if got := DecodeInt(buf, 0); got != -2147483648 {
		t.Errorf("DecodeInt() = %d, want -2147483648", got)
	}
	want := []byte{0x00, 0x00, 0x00, 0x80}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buffer = %x, want %x (little-endian)", buf, want)
		}
	}
}

// TestLongRoundTrip tests long encoding for boundary values
func TestLongRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, math.MinInt64, math.MaxInt64, math.MinInt32, math.MaxInt32 + 1}

	for _, v := range values {
		buf := make([]byte, 1+LongSizeInBytes)
		EncodeLong(buf, 1, v)
		if got := DecodeLong(buf, 1); got != v {
			t.Errorf("DecodeLong() = %d, want %d", got, v)
		}
		if got := DecodeLongUnsigned(buf, 1); got != uint64(v) {
			t.Errorf("DecodeLongUnsigned() = %d, want %d", got, uint64(v))
		}
	}
}

// TestBooleanAndByte tests the single byte encodings
func TestBooleanAndByte(t *testing.T) {
	buf := make([]byte, 2)

	EncodeBoolean(buf, 0, true)
	EncodeBoolean(buf, 1, false)
	if buf[0] != 1 || buf[1] != 0 {
		t.Errorf("EncodeBoolean wrote %v, want [1 0]", buf)
	}
	if !DecodeBoolean(buf, 0) || DecodeBoolean(buf, 1) {
		t.Errorf("DecodeBoolean did not round trip")
	}

	// only 1 is true
	buf[0] = 2
	if DecodeBoolean(buf, 0) {
		t.Errorf("DecodeBoolean(2) = true, want false")
	}

	for _, v := range []byte{0, 1, 0x7f, 0x80, 0xff} {
		EncodeByte(buf, 1, v)
		if got := DecodeByte(buf, 1); got != v {
			t.Errorf("DecodeByte() = %d, want %d", got, v)
		}
	}
}

// TestUUIDRoundTrip tests UUID encoding including nil and all-ones UUIDs
func TestUUIDRoundTrip(t *testing.T) {
	allOnes := uuid.UUID{}
	for i := range allOnes {
		allOnes[i] = 0xff
	}

	testCases := []struct {
		name string
		id   uuid.NullUUID
	}{
		{"null", uuid.NullUUID{}},
		{"nil uuid", uuid.NullUUID{UUID: uuid.Nil, Valid: true}},
		{"all ones", uuid.NullUUID{UUID: allOnes, Valid: true}},
		{"one", uuid.NullUUID{UUID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Valid: true}},
		{"random", uuid.NullUUID{UUID: uuid.New(), Valid: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, UUIDSizeInBytes+2)
			EncodeUUID(buf, 2, tc.id)
			got := DecodeUUID(buf, 2)
			if got != tc.id {
				t.Errorf("DecodeUUID() = %v, want %v", got, tc.id)
			}
		})
	}
}

// TestUUIDLayout checks the byte layout of a UUID field
func TestUUIDLayout(t *testing.T) {
	if UUIDSizeInBytes != 17 {
		t.Fatalf("UUIDSizeInBytes = %d, want 17", UUIDSizeInBytes)
	}

	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	buf := make([]byte, UUIDSizeInBytes)
	EncodeUUID(buf, 0, uuid.NullUUID{UUID: id, Valid: true})

	if buf[0] != 0 {
		t.Errorf("is-null byte = %d, want 0", buf[0])
	}
	// msb = 0, lsb = 1 (little-endian)
	if DecodeLong(buf, 1) != 0 || DecodeLong(buf, 9) != 1 {
		t.Errorf("unexpected layout %x", buf)
	}
}

// TestNullUUIDKeepsFollowingOffsets checks that a null UUID still occupies 17 bytes
func TestNullUUIDKeepsFollowingOffsets(t *testing.T) {
	buf := make([]byte, UUIDSizeInBytes+IntSizeInBytes)
	EncodeUUID(buf, 0, uuid.NullUUID{})
	EncodeInt(buf, UUIDSizeInBytes, 42)

	if buf[0] != 1 {
		t.Errorf("is-null byte = %d, want 1", buf[0])
	}
	if got := DecodeUUID(buf, 0); got.Valid {
		t.Errorf("DecodeUUID() = %v, want null", got)
	}
	if got := DecodeInt(buf, UUIDSizeInBytes); got != 42 {
		t.Errorf("int after null uuid = %d, want 42", got)
	}
}
