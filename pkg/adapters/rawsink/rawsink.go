// Package rawsink writes packets as a bare Annex B elementary stream,
// with an optional JSON sidecar describing each packet and its metadata.
package rawsink

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/user/encbridge/pkg/metadata"
	"github.com/user/encbridge/pkg/ports"
)

// PacketRecord is one sidecar entry.
type PacketRecord struct {
	Index    int               `json:"index"`
	PTS      int64             `json:"pts"`
	DTS      int64             `json:"dts"`
	Size     int               `json:"size"`
	Keyframe bool              `json:"keyframe,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Sink concatenates packet payloads in arrival order. When a sidecar path
// is set, End also writes a JSON description of the stream there.
type Sink struct {
	fs          ports.FileSystem
	log         ports.Logger
	sidecarPath string

	stream  bytes.Buffer
	records []PacketRecord
}

// NewSink creates a raw elementary stream sink. sidecarPath may be empty
// to skip the sidecar.
func NewSink(fs ports.FileSystem, sidecarPath string, log ports.Logger) *Sink {
	return &Sink{
		fs:          fs,
		log:         log.WithComponent("rawsink"),
		sidecarPath: sidecarPath,
	}
}

// Begin resets the sink and writes the stream header, if any, at the
// front of the stream.
func (s *Sink) Begin(cfg ports.SinkConfig) error {
	s.stream.Reset()
	s.records = s.records[:0]
	if len(cfg.StreamHeader) > 0 {
		s.stream.Write(cfg.StreamHeader)
	}
	return nil
}

// WritePacket appends the packet payload and records its sidecar entry.
func (s *Sink) WritePacket(pkt *ports.Packet) error {
	s.stream.Write(pkt.Data)

	rec := PacketRecord{
		Index:    len(s.records),
		PTS:      pkt.PTS,
		DTS:      pkt.DTS,
		Size:     len(pkt.Data),
		Keyframe: pkt.Keyframe,
	}
	if len(pkt.Metadata) > 0 {
		dict, err := metadata.Unpack(pkt.Metadata)
		if err != nil {
			s.log.Warn("Packet %d carries undecodable metadata: %s", rec.Index, err.Error())
		} else {
			rec.Metadata = dict
		}
	}
	s.records = append(s.records, rec)
	return nil
}

// End writes the sidecar (when configured) and returns the stream bytes.
func (s *Sink) End() ([]byte, error) {
	if s.sidecarPath != "" {
		data, err := json.MarshalIndent(s.records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal sidecar: %w", err)
		}
		if err := s.fs.WriteFile(s.sidecarPath, data); err != nil {
			return nil, fmt.Errorf("write sidecar: %w", err)
		}
		s.log.Debug("Wrote sidecar with %d packet records", len(s.records))
	}
	return s.stream.Bytes(), nil
}

var _ ports.PacketSink = (*Sink)(nil)
