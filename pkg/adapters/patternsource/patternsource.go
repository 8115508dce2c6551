// Package patternsource generates a synthetic 8-bit 4:2:0 test pattern:
// a bright box moving over a gray background, with the box rectangle
// attached to every frame as region-of-interest metadata.
package patternsource

import (
	"fmt"
	"image"
	"io"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/user/encbridge/pkg/metadata"
	"github.com/user/encbridge/pkg/ports"
)

// Options configures the generated pattern.
type Options struct {
	Width      int
	Height     int
	FrameCount int

	// BoxSize is the moving box edge length. Defaults to a quarter of
	// the smaller dimension.
	BoxSize int
}

// Source implements ports.FrameSource with generated frames. The returned
// frame borrows internal buffers, valid until the next call.
type Source struct {
	opts Options
	idx  int

	luma []byte
	cb   []byte
	cr   []byte
}

// New validates the options and creates a pattern source.
func New(opts Options) (*Source, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, fmt.Errorf("dimensions must be even for 4:2:0, got %dx%d", opts.Width, opts.Height)
	}
	if opts.FrameCount <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", opts.FrameCount)
	}
	if opts.BoxSize <= 0 {
		min := opts.Width
		if opts.Height < min {
			min = opts.Height
		}
		opts.BoxSize = min / 4
		if opts.BoxSize < 2 {
			opts.BoxSize = 2
		}
	}

	return &Source{
		opts: opts,
		luma: make([]byte, opts.Width*opts.Height),
		cb:   make([]byte, opts.Width*opts.Height/4),
		cr:   make([]byte, opts.Width*opts.Height/4),
	}, nil
}

// Next renders the next frame. PTS is the frame index.
func (s *Source) Next() (*ports.VideoFrame, error) {
	if s.idx >= s.opts.FrameCount {
		return nil, io.EOF
	}

	left, top := s.boxPosition(s.idx)

	dc := gg.NewContext(s.opts.Width, s.opts.Height)
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.Clear()
	dc.SetRGB(0.9, 0.6, 0.1)
	dc.DrawRectangle(float64(left), float64(top), float64(s.opts.BoxSize), float64(s.opts.BoxSize))
	dc.Fill()

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected canvas image type %T", dc.Image())
	}
	s.rgbaToYUV420(rgba)

	meta := metadata.Dict{
		"top":    strconv.Itoa(top),
		"left":   strconv.Itoa(left),
		"width":  strconv.Itoa(s.opts.BoxSize),
		"height": strconv.Itoa(s.opts.BoxSize),
	}

	frame := &ports.VideoFrame{
		Luma:       s.luma,
		Cb:         s.cb,
		Cr:         s.cr,
		LumaStride: s.opts.Width,
		CbStride:   s.opts.Width / 2,
		CrStride:   s.opts.Width / 2,
		PTS:        int64(s.idx),
		Metadata:   meta.Pack(),
	}
	s.idx++
	return frame, nil
}

// boxPosition bounces the box between the frame edges.
func (s *Source) boxPosition(idx int) (left, top int) {
	maxX := s.opts.Width - s.opts.BoxSize
	maxY := s.opts.Height - s.opts.BoxSize
	left = bounce(idx*3, maxX)
	top = bounce(idx*2, maxY)
	return left, top
}

func bounce(pos, max int) int {
	if max <= 0 {
		return 0
	}
	period := 2 * max
	p := pos % period
	if p > max {
		p = period - p
	}
	return p
}

// rgbaToYUV420 converts an RGBA image into the source's planar buffers
// using BT.601 integer coefficients.
func (s *Source) rgbaToYUV420(rgba *image.RGBA) {
	width := s.opts.Width
	height := s.opts.Height

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*rgba.Stride + x*4
			r := int(rgba.Pix[idx])
			g := int(rgba.Pix[idx+1])
			b := int(rgba.Pix[idx+2])

			yVal := ((66*r + 129*g + 25*b + 128) >> 8) + 16
			s.luma[y*width+x] = clampByte(yVal)

			if y%2 == 0 && x%2 == 0 {
				uVal := ((-38*r - 74*g + 112*b + 128) >> 8) + 128
				vVal := ((112*r - 94*g - 18*b + 128) >> 8) + 128

				cIdx := (y/2)*(width/2) + x/2
				s.cb[cIdx] = clampByte(uVal)
				s.cr[cIdx] = clampByte(vVal)
			}
		}
	}
}

func clampByte(v int) byte {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

var _ ports.FrameSource = (*Source)(nil)
