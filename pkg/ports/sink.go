package ports

// Packet is a finished, caller-owned encoded packet handed to the downstream
// consumer. The payload is a copy; nothing in it references core encoder
// memory.
type Packet struct {
	Data []byte

	PTS int64
	DTS int64

	Keyframe   bool
	Disposable bool

	// Metadata is the side-channel blob that was attached to the frame
	// with the same PTS at submission, or nil if that frame carried none.
	Metadata []byte
}

// SinkConfig describes the stream a PacketSink is about to receive.
type SinkConfig struct {
	Width  int
	Height int

	FrameRateNum int
	FrameRateDen int

	// StreamHeader holds the out-of-band parameter sets when the encoder
	// was configured for global headers; otherwise nil and the parameter
	// sets arrive inline with the first keyframe.
	StreamHeader []byte
}

// PacketSink consumes encoded packets and produces the finished output,
// typically a container file.
type PacketSink interface {
	// Begin prepares the sink for a new stream.
	Begin(cfg SinkConfig) error

	// WritePacket appends one packet. Packets arrive in decode order.
	WritePacket(pkt *Packet) error

	// End finalizes the stream and returns the container bytes.
	End() ([]byte, error)
}
