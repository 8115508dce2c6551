package mocks

import (
	"io"

	"github.com/user/encbridge/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource that serves a
// fixed slice of frames and then io.EOF.
type FrameSource struct {
	NextFunc func() (*ports.VideoFrame, error)

	Frames []*ports.VideoFrame

	// NextCalls counts calls for verification.
	NextCalls int

	idx int
}

func (m *FrameSource) Next() (*ports.VideoFrame, error) {
	m.NextCalls++
	if m.NextFunc != nil {
		return m.NextFunc()
	}
	if m.idx >= len(m.Frames) {
		return nil, io.EOF
	}
	frame := m.Frames[m.idx]
	m.idx++
	return frame, nil
}

var _ ports.FrameSource = (*FrameSource)(nil)
