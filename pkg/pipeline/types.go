package pipeline

import (
	"github.com/user/encbridge/pkg/ports"
)

// EncodeInput contains the inputs for the encode stage.
type EncodeInput struct {
	// Source supplies decoded pictures in presentation order.
	Source ports.FrameSource
}

// EncodeResult summarizes an encode run.
type EncodeResult struct {
	// VideoData is the finalized container produced by the packet sink.
	VideoData []byte

	FramesSubmitted int
	Packets         int
	Bytes           int64
	Keyframes       int

	// MetadataMatched counts packets that came back with their frame's
	// side-channel blob attached; MetadataAbandoned counts entries still
	// unmatched when the stream drained.
	MetadataMatched   int
	MetadataAbandoned int

	DurationMs int
}
