package ports

import "fmt"

// PixelFormat identifies the planar layout and bit depth of input pictures.
type PixelFormat int

const (
	PixFmtYUV420 PixelFormat = iota
	PixFmtYUV420P10
	PixFmtYUV422
	PixFmtYUV422P10
	PixFmtYUV444
	PixFmtYUV444P10
)

// ChromaFormat is the chroma subsampling layout of a PixelFormat.
type ChromaFormat int

const (
	Chroma420 ChromaFormat = iota
	Chroma422
	Chroma444
)

// String returns the conventional name of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixFmtYUV420:
		return "yuv420p"
	case PixFmtYUV420P10:
		return "yuv420p10le"
	case PixFmtYUV422:
		return "yuv422p"
	case PixFmtYUV422P10:
		return "yuv422p10le"
	case PixFmtYUV444:
		return "yuv444p"
	case PixFmtYUV444P10:
		return "yuv444p10le"
	default:
		return "unknown"
	}
}

// ParsePixelFormat parses a pixel format name as used in config files and on
// the command line.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "yuv420p":
		return PixFmtYUV420, nil
	case "yuv420p10le", "yuv420p10":
		return PixFmtYUV420P10, nil
	case "yuv422p":
		return PixFmtYUV422, nil
	case "yuv422p10le", "yuv422p10":
		return PixFmtYUV422P10, nil
	case "yuv444p":
		return PixFmtYUV444, nil
	case "yuv444p10le", "yuv444p10":
		return PixFmtYUV444P10, nil
	default:
		return 0, fmt.Errorf("no such pixel format: %s", s)
	}
}

// BitDepth returns the sample bit depth (8 or 10). Ten-bit samples are
// stored in 16-bit little-endian words.
func (f PixelFormat) BitDepth() int {
	switch f {
	case PixFmtYUV420P10, PixFmtYUV422P10, PixFmtYUV444P10:
		return 10
	default:
		return 8
	}
}

// ChromaFormat returns the chroma subsampling layout.
func (f PixelFormat) ChromaFormat() ChromaFormat {
	switch f {
	case PixFmtYUV422, PixFmtYUV422P10:
		return Chroma422
	case PixFmtYUV444, PixFmtYUV444P10:
		return Chroma444
	default:
		return Chroma420
	}
}

// FrameSize returns the number of bytes one frame occupies: the luma plane
// scaled by the chroma layout (4:2:0 ×3/2, 4:2:2 ×2, 4:4:4 ×3), doubled when
// samples take 16-bit storage.
func (f PixelFormat) FrameSize(width, height int) int64 {
	luma := int64(width) * int64(height)
	if f.BitDepth() > 8 {
		luma *= 2
	}
	switch f.ChromaFormat() {
	case Chroma422:
		return luma * 2
	case Chroma444:
		return luma * 3
	default:
		return luma * 3 / 2
	}
}

// VideoFrame is one decoded picture supplied by the upstream producer. Plane
// slices are borrowed: they stay valid only until the producer is asked for
// the next frame.
type VideoFrame struct {
	Luma []byte
	Cb   []byte
	Cr   []byte

	// Strides are in bytes, regardless of bit depth.
	LumaStride int
	CbStride   int
	CrStride   int

	PTS int64

	// Metadata is an optional opaque blob to be re-attached to the packet
	// that eventually carries this frame's PTS. The format belongs to the
	// caller; see the metadata package for the dictionary codec the rest
	// of this project uses.
	Metadata []byte
}

// FrameSource produces decoded pictures in presentation order. Next returns
// io.EOF once the stream is exhausted.
type FrameSource interface {
	Next() (*VideoFrame, error)
}
