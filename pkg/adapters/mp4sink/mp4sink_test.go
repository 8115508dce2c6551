package mp4sink

import (
	"bytes"
	"testing"

	"github.com/user/encbridge/pkg/adapters/logger"
	"github.com/user/encbridge/pkg/ports"
)

// annexB joins NAL units with 4-byte start codes.
func annexB(nalus ...[]byte) []byte {
	var buf bytes.Buffer
	for _, nalu := range nalus {
		buf.Write([]byte{0, 0, 0, 1})
		buf.Write(nalu)
	}
	return buf.Bytes()
}

func nalu(typ byte, payload ...byte) []byte {
	return append([]byte{typ << 1, 0x01}, payload...)
}

func testSinkConfig() ports.SinkConfig {
	return ports.SinkConfig{
		Width:        64,
		Height:       48,
		FrameRateNum: 25,
		FrameRateDen: 1,
	}
}

func TestParseAnnexB(t *testing.T) {
	vps := nalu(32, 0xAA)
	sps := nalu(33, 0xBB)
	idr := nalu(19, 0xCC, 0xDD)

	nalus := parseAnnexB(annexB(vps, sps, idr))
	if len(nalus) != 3 {
		t.Fatalf("expected 3 NAL units, got %d", len(nalus))
	}
	if !bytes.Equal(nalus[0], vps) || !bytes.Equal(nalus[1], sps) || !bytes.Equal(nalus[2], idr) {
		t.Error("NAL unit contents do not match input")
	}
}

func TestParseAnnexBShortStartCode(t *testing.T) {
	sps := nalu(33, 0x11)
	data := append([]byte{0, 0, 1}, sps...)

	nalus := parseAnnexB(data)
	if len(nalus) != 1 {
		t.Fatalf("expected 1 NAL unit, got %d", len(nalus))
	}
	if !bytes.Equal(nalus[0], sps) {
		t.Error("NAL unit does not match input")
	}
}

func TestExtractParameterSets(t *testing.T) {
	header := annexB(nalu(32, 0xAA), nalu(33, 0xBB), nalu(34, 0xCC))

	ps := extractParameterSets(header)
	if !ps.complete() {
		t.Fatal("expected complete parameter sets")
	}
	if len(ps.vps) != 1 || len(ps.sps) != 1 || len(ps.pps) != 1 {
		t.Errorf("expected one of each, got vps=%d sps=%d pps=%d",
			len(ps.vps), len(ps.sps), len(ps.pps))
	}

	if extractParameterSets(annexB(nalu(33, 0xBB))).complete() {
		t.Error("SPS alone should not be complete")
	}
}

func TestToLengthPrefixed(t *testing.T) {
	idr := nalu(19, 0xCC, 0xDD)
	data := annexB(nalu(32, 0xAA), nalu(33, 0xBB), nalu(34, 0xCC), nalu(35, 0xEE), idr)

	out := toLengthPrefixed(data)

	// Only the slice NAL survives, length-prefixed.
	want := append([]byte{0, 0, 0, byte(len(idr))}, idr...)
	if !bytes.Equal(out, want) {
		t.Errorf("expected %x, got %x", want, out)
	}
}

func TestBeginValidation(t *testing.T) {
	sink := NewSink(logger.NewNoop())

	bad := testSinkConfig()
	bad.Width = 0
	if err := sink.Begin(bad); err == nil {
		t.Error("expected error for zero width")
	}

	bad = testSinkConfig()
	bad.FrameRateDen = 0
	if err := sink.Begin(bad); err == nil {
		t.Error("expected error for zero frame rate denominator")
	}

	if err := sink.Begin(testSinkConfig()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBeginTakesHeaderParameterSets(t *testing.T) {
	sink := NewSink(logger.NewNoop())

	cfg := testSinkConfig()
	cfg.StreamHeader = annexB(nalu(32, 0xAA), nalu(33, 0xBB), nalu(34, 0xCC))
	if err := sink.Begin(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sink.paramSets.complete() {
		t.Error("expected parameter sets from stream header")
	}
}

func TestWritePacketTakesKeyframeParameterSets(t *testing.T) {
	sink := NewSink(logger.NewNoop())
	if err := sink.Begin(testSinkConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pkt := &ports.Packet{
		Data:     annexB(nalu(32, 0xAA), nalu(33, 0xBB), nalu(34, 0xCC), nalu(19, 0xDD)),
		Keyframe: true,
	}
	if err := sink.WritePacket(pkt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sink.paramSets.complete() {
		t.Error("expected parameter sets from keyframe")
	}
	if len(sink.samples) != 1 {
		t.Errorf("expected 1 buffered sample, got %d", len(sink.samples))
	}
}

func TestWritePacketCopiesData(t *testing.T) {
	sink := NewSink(logger.NewNoop())
	if err := sink.Begin(testSinkConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := annexB(nalu(1, 0x55))
	if err := sink.WritePacket(&ports.Packet{Data: data}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data[4] = 0xFF
	if sink.samples[0].data[4] == 0xFF {
		t.Error("expected sample data to be an independent copy")
	}
}

func TestEndWithoutPackets(t *testing.T) {
	sink := NewSink(logger.NewNoop())
	if err := sink.Begin(testSinkConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sink.End(); err != ErrNoPackets {
		t.Errorf("expected ErrNoPackets, got %v", err)
	}
}

func TestEndWithoutParameterSets(t *testing.T) {
	sink := NewSink(logger.NewNoop())
	if err := sink.Begin(testSinkConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.WritePacket(&ports.Packet{Data: annexB(nalu(1, 0x55))}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sink.End(); err == nil {
		t.Error("expected error without parameter sets")
	}
}
