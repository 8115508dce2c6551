// Package mp4sink writes HEVC packets into a fragmented MP4 container
// using an hvc1 sample entry.
package mp4sink

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/encbridge/pkg/ports"
)

// ErrNoPackets is returned when End is called before any packet arrived.
var ErrNoPackets = fmt.Errorf("no packets to mux")

type sample struct {
	data     []byte
	pts      int64
	dts      int64
	keyframe bool
}

// Sink accumulates encoded packets and muxes them into a single-fragment
// MP4 on End.
type Sink struct {
	log ports.Logger

	cfg       ports.SinkConfig
	samples   []sample
	paramSets *parameterSets
}

// NewSink creates a fragmented MP4 packet sink.
func NewSink(log ports.Logger) *Sink {
	return &Sink{
		log: log.WithComponent("mp4sink"),
	}
}

// Begin records the stream parameters. If the stream header carries
// parameter sets they are extracted here; otherwise the first keyframe
// provides them.
func (s *Sink) Begin(cfg ports.SinkConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRateNum <= 0 || cfg.FrameRateDen <= 0 {
		return fmt.Errorf("invalid frame rate %d/%d", cfg.FrameRateNum, cfg.FrameRateDen)
	}

	s.cfg = cfg
	s.samples = s.samples[:0]
	s.paramSets = nil

	if len(cfg.StreamHeader) > 0 {
		ps := extractParameterSets(cfg.StreamHeader)
		if ps.complete() {
			s.paramSets = ps
			s.log.Debug("Parameter sets taken from stream header")
		}
	}
	return nil
}

// WritePacket buffers one encoded packet. The packet data is copied so the
// caller may reuse its buffer.
func (s *Sink) WritePacket(pkt *ports.Packet) error {
	if s.paramSets == nil && pkt.Keyframe {
		ps := extractParameterSets(pkt.Data)
		if ps.complete() {
			s.paramSets = ps
		}
	}

	data := make([]byte, len(pkt.Data))
	copy(data, pkt.Data)
	s.samples = append(s.samples, sample{
		data:     data,
		pts:      pkt.PTS,
		dts:      pkt.DTS,
		keyframe: pkt.Keyframe,
	})
	return nil
}

// End muxes the buffered packets and returns the container bytes.
func (s *Sink) End() ([]byte, error) {
	if len(s.samples) == 0 {
		return nil, ErrNoPackets
	}
	if s.paramSets == nil || !s.paramSets.complete() {
		return nil, fmt.Errorf("VPS/SPS/PPS not found in stream header or keyframes")
	}

	// One tick per frame-rate denominator unit keeps durations exact for
	// rational rates like 30000/1001.
	timescale := uint32(s.cfg.FrameRateNum) * 1000
	sampleDur := uint32(s.cfg.FrameRateDen) * 1000
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	trak := init.Moov.Trak

	hvcC, err := mp4.CreateHvcC(
		s.paramSets.vps, s.paramSets.sps, s.paramSets.pps,
		true, true, true, true)
	if err != nil {
		return nil, fmt.Errorf("create hvcC: %w", err)
	}

	hvc1 := mp4.CreateVisualSampleEntryBox("hvc1", uint16(s.cfg.Width), uint16(s.cfg.Height), hvcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(hvc1)

	trak.Tkhd.Width = mp4.Fixed32(uint32(s.cfg.Width) << 16)
	trak.Tkhd.Height = mp4.Fixed32(uint32(s.cfg.Height) << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	for i, smp := range s.samples {
		flags := mp4.NonSyncSampleFlags
		if smp.keyframe {
			flags = mp4.SyncSampleFlags
		}

		mp4Data := toLengthPrefixed(smp.data)
		cto := int32((smp.pts - smp.dts) * int64(sampleDur))

		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags:                 flags,
				Size:                  uint32(len(mp4Data)),
				Dur:                   sampleDur,
				CompositionTimeOffset: cto,
			},
			DecodeTime: uint64(i) * uint64(sampleDur),
			Data:       mp4Data,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "hvc1", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	s.log.Debug("Muxed %d samples into MP4 (%d bytes)", len(s.samples), buf.Len())
	return buf.Bytes(), nil
}

var _ ports.PacketSink = (*Sink)(nil)
