// Package rawvideo reads fixed-size planar YUV frames from a raw stream,
// such as a .yuv capture file. Frame geometry is not stored in the stream, so
// the caller supplies width, height and pixel format up front.
package rawvideo

import (
	"fmt"
	"io"

	"github.com/user/encbridge/pkg/ports"
)

// Options configures a Reader.
type Options struct {
	Width       int
	Height      int
	PixelFormat ports.PixelFormat

	// MetaFunc, when set, supplies the side-channel blob for each frame by
	// index. A nil return leaves the frame without metadata.
	MetaFunc func(index int64) []byte
}

// Reader turns a raw byte stream into frames. All state, including the
// reusable frame buffer and the frame counter, is owned per instance; two
// readers never share anything.
type Reader struct {
	r    io.Reader
	opts Options

	buf   []byte
	index int64

	lumaLen   int
	chromaLen int
	bpp       int
}

// New creates a Reader over r.
func New(r io.Reader, opts Options) (*Reader, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("rawvideo: invalid frame size %dx%d", opts.Width, opts.Height)
	}

	bpp := 1
	if opts.PixelFormat.BitDepth() > 8 {
		bpp = 2
	}

	lumaLen := opts.Width * opts.Height * bpp
	var chromaLen int
	switch opts.PixelFormat.ChromaFormat() {
	case ports.Chroma422:
		chromaLen = lumaLen / 2
	case ports.Chroma444:
		chromaLen = lumaLen
	default:
		chromaLen = lumaLen / 4
	}

	return &Reader{
		r:         r,
		opts:      opts,
		buf:       make([]byte, lumaLen+2*chromaLen),
		lumaLen:   lumaLen,
		chromaLen: chromaLen,
		bpp:       bpp,
	}, nil
}

// FrameSize returns the byte size of one frame in the stream.
func (r *Reader) FrameSize() int {
	return len(r.buf)
}

// Next reads the next frame. The returned planes are views into the reader's
// buffer and stay valid only until the following call. PTS counts frames
// from zero. Returns io.EOF cleanly at end of stream; a partial trailing
// frame is reported as io.ErrUnexpectedEOF.
func (r *Reader) Next() (*ports.VideoFrame, error) {
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("rawvideo: read frame %d: %w", r.index, err)
	}

	chromaStride := r.opts.Width * r.bpp
	if r.opts.PixelFormat.ChromaFormat() != ports.Chroma444 {
		chromaStride /= 2
	}

	frame := &ports.VideoFrame{
		Luma:       r.buf[:r.lumaLen],
		Cb:         r.buf[r.lumaLen : r.lumaLen+r.chromaLen],
		Cr:         r.buf[r.lumaLen+r.chromaLen:],
		LumaStride: r.opts.Width * r.bpp,
		CbStride:   chromaStride,
		CrStride:   chromaStride,
		PTS:        r.index,
	}
	if r.opts.MetaFunc != nil {
		frame.Metadata = r.opts.MetaFunc(r.index)
	}

	r.index++
	return frame, nil
}

var _ ports.FrameSource = (*Reader)(nil)
