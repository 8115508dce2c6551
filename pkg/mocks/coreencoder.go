// Package mocks provides hand-written mock implementations of the ports
// interfaces for testing.
package mocks

import (
	"fmt"

	"github.com/user/encbridge/pkg/ports"
)

// SubmitCall records one call to Submit.
type SubmitCall struct {
	PTS        int64
	EOS        bool
	FilledLen  int64
	LumaStride int
}

// CoreEncoder is a mock implementation of ports.CoreEncoder. With no
// function fields set it behaves like a small synchronous encoder pipe:
// submitted pictures become synthetic packets, held back by LookAhead frames
// (or, with Reverse, buffered whole and emitted in reverse order once the
// EOS sentinel arrives). The EOS flag rides the last emitted packet.
type CoreEncoder struct {
	InitFunc          func() ports.CoreStatus
	ConfigureFunc     func(cfg ports.EncoderConfig) ports.CoreStatus
	StreamHeaderFunc  func() ([]byte, ports.CoreStatus)
	SubmitFunc        func(in *ports.InputBuffer) ports.CoreStatus
	PollOutputFunc    func(eosSent bool) (*ports.OutputBuffer, ports.CoreStatus)
	ReleaseOutputFunc func(out *ports.OutputBuffer) ports.CoreStatus
	ShutdownFunc      func() ports.CoreStatus

	// Default-behavior knobs.
	LookAhead int    // frames buffered before any output is ready
	Reverse   bool   // hold the whole stream, emit reversed at EOS
	Header    []byte // returned by StreamHeader

	// Recorded calls for verification.
	InitCalled     bool
	ConfigureWith  ports.EncoderConfig
	SubmitCalls    []SubmitCall
	PollHints      []bool
	Released       []*ports.OutputBuffer
	ShutdownCalled bool

	pending    []*ports.OutputBuffer
	out        []*ports.OutputBuffer
	eosQueued  bool
	frameCount int
}

func (m *CoreEncoder) Init() ports.CoreStatus {
	m.InitCalled = true
	if m.InitFunc != nil {
		return m.InitFunc()
	}
	return ports.StatusOK
}

func (m *CoreEncoder) Configure(cfg ports.EncoderConfig) ports.CoreStatus {
	m.ConfigureWith = cfg
	if m.ConfigureFunc != nil {
		return m.ConfigureFunc(cfg)
	}
	return ports.StatusOK
}

func (m *CoreEncoder) StreamHeader() ([]byte, ports.CoreStatus) {
	if m.StreamHeaderFunc != nil {
		return m.StreamHeaderFunc()
	}
	if m.Header != nil {
		return m.Header, ports.StatusOK
	}
	return []byte{0x00, 0x00, 0x00, 0x01}, ports.StatusOK
}

func (m *CoreEncoder) Submit(in *ports.InputBuffer) ports.CoreStatus {
	m.SubmitCalls = append(m.SubmitCalls, SubmitCall{
		PTS:        in.PTS,
		EOS:        in.EOS,
		FilledLen:  in.FilledLen,
		LumaStride: in.LumaStride,
	})
	if m.SubmitFunc != nil {
		return m.SubmitFunc(in)
	}

	if in.EOS {
		if !m.eosQueued {
			m.eosQueued = true
			m.flushPending()
		}
		return ports.StatusOK
	}

	pic := ports.PictureP
	if m.frameCount == 0 {
		pic = ports.PictureIDR
	}
	m.frameCount++

	m.pending = append(m.pending, &ports.OutputBuffer{
		Data:        []byte(fmt.Sprintf("pkt-%06d", in.PTS)),
		PTS:         in.PTS,
		DTS:         in.PTS,
		PictureType: pic,
	})

	if !m.Reverse {
		for len(m.pending) > m.LookAhead {
			m.out = append(m.out, m.pending[0])
			m.pending = m.pending[1:]
		}
	}
	return ports.StatusOK
}

// flushPending moves every buffered picture to the output queue and flags
// the final packet as EOS. A stream with no pictures still produces one
// empty EOS-flagged buffer so a drain loop terminates.
func (m *CoreEncoder) flushPending() {
	if m.Reverse {
		for i := len(m.pending) - 1; i >= 0; i-- {
			m.out = append(m.out, m.pending[i])
		}
	} else {
		m.out = append(m.out, m.pending...)
	}
	m.pending = nil

	if len(m.out) == 0 {
		m.out = append(m.out, &ports.OutputBuffer{EOS: true})
		return
	}
	m.out[len(m.out)-1].EOS = true
}

func (m *CoreEncoder) PollOutput(eosSent bool) (*ports.OutputBuffer, ports.CoreStatus) {
	m.PollHints = append(m.PollHints, eosSent)
	if m.PollOutputFunc != nil {
		return m.PollOutputFunc(eosSent)
	}

	if len(m.out) == 0 {
		return nil, ports.StatusEmptyQueue
	}
	buf := m.out[0]
	m.out = m.out[1:]
	return buf, ports.StatusOK
}

func (m *CoreEncoder) ReleaseOutput(out *ports.OutputBuffer) ports.CoreStatus {
	m.Released = append(m.Released, out)
	if m.ReleaseOutputFunc != nil {
		return m.ReleaseOutputFunc(out)
	}
	return ports.StatusOK
}

// Emitted reports how many packets the default behavior produced.
func (m *CoreEncoder) Emitted() int {
	return m.frameCount
}

func (m *CoreEncoder) Shutdown() ports.CoreStatus {
	m.ShutdownCalled = true
	if m.ShutdownFunc != nil {
		return m.ShutdownFunc()
	}
	return ports.StatusOK
}

var _ ports.CoreEncoder = (*CoreEncoder)(nil)
