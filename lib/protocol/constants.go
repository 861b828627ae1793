package protocol

// --------------------------------------------------------------------------
// Fixed sizes
// --------------------------------------------------------------------------

const (
	ByteSizeInBytes    = 1
	BooleanSizeInBytes = 1
	IntSizeInBytes     = 4
	LongSizeInBytes    = 8
	// UUIDSizeInBytes is the is-null flag plus the most and least significant bits
	UUIDSizeInBytes = BooleanSizeInBytes + 2*LongSizeInBytes
)

// --------------------------------------------------------------------------
// Start frame layout
// --------------------------------------------------------------------------

const (
	TypeFieldOffset               = 0
	CorrelationIDFieldOffset      = TypeFieldOffset + IntSizeInBytes
	PartitionIDFieldOffset        = CorrelationIDFieldOffset + LongSizeInBytes
	ResponseBackupAcksFieldOffset = CorrelationIDFieldOffset + LongSizeInBytes
	FragmentationIDOffset         = 0

	// RequestInitialFrameSize is the size of a request start frame without any operation specific fields
	RequestInitialFrameSize = PartitionIDFieldOffset + IntSizeInBytes
	// ResponseInitialFrameSize is the size of a response start frame without any operation specific fields
	ResponseInitialFrameSize = ResponseBackupAcksFieldOffset + ByteSizeInBytes
	// EventInitialFrameSize is the size of an event start frame without any event specific fields
	EventInitialFrameSize = PartitionIDFieldOffset + IntSizeInBytes

	// minStartFrameSize is the smallest start frame that still holds type and correlation id
	minStartFrameSize = CorrelationIDFieldOffset + LongSizeInBytes
)

// --------------------------------------------------------------------------
// Wire constants
// --------------------------------------------------------------------------

const (
	// SizeOfFrameLengthAndFlags is the size of the header preceding every frame on the wire
	SizeOfFrameLengthAndFlags = IntSizeInBytes + 2

	// ClientProtocolHeader is sent once by the client after the connection is opened
	ClientProtocolHeader = "CP2"

	// DefaultMaxFrameSize limits the size of a single frame read from the wire
	DefaultMaxFrameSize = 32 * 1024 * 1024 // 32MB

	// NoPartition is used as the partition id of requests that are not bound to a partition
	NoPartition int32 = -1
)
