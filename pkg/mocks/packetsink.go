package mocks

import (
	"github.com/user/encbridge/pkg/ports"
)

// PacketSink is a mock implementation of ports.PacketSink.
type PacketSink struct {
	BeginFunc       func(cfg ports.SinkConfig) error
	WritePacketFunc func(pkt *ports.Packet) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification.
	BeginCalled bool
	BeginWith   ports.SinkConfig
	Packets     []*ports.Packet
	EndCalled   bool
}

func (m *PacketSink) Begin(cfg ports.SinkConfig) error {
	m.BeginCalled = true
	m.BeginWith = cfg
	if m.BeginFunc != nil {
		return m.BeginFunc(cfg)
	}
	return nil
}

func (m *PacketSink) WritePacket(pkt *ports.Packet) error {
	m.Packets = append(m.Packets, pkt)
	if m.WritePacketFunc != nil {
		return m.WritePacketFunc(pkt)
	}
	return nil
}

func (m *PacketSink) End() ([]byte, error) {
	m.EndCalled = true
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	var data []byte
	for _, pkt := range m.Packets {
		data = append(data, pkt.Data...)
	}
	return data, nil
}

var _ ports.PacketSink = (*PacketSink)(nil)
