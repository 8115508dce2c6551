package rawsink

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/user/encbridge/pkg/adapters/logger"
	"github.com/user/encbridge/pkg/metadata"
	"github.com/user/encbridge/pkg/mocks"
	"github.com/user/encbridge/pkg/ports"
)

func TestStreamConcatenation(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := NewSink(fs, "", logger.NewNoop())

	header := []byte{0, 0, 0, 1, 0x40, 0x01}
	if err := sink.Begin(ports.SinkConfig{StreamHeader: header}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1 := []byte{0, 0, 0, 1, 0x26, 0x01, 0xAA}
	p2 := []byte{0, 0, 0, 1, 0x02, 0x01, 0xBB}
	sink.WritePacket(&ports.Packet{Data: p1, PTS: 0, Keyframe: true})
	sink.WritePacket(&ports.Packet{Data: p2, PTS: 1})

	data, err := sink.End()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := append(append(append([]byte{}, header...), p1...), p2...)
	if !bytes.Equal(data, want) {
		t.Errorf("expected header and packets in order, got %x", data)
	}
}

func TestSidecar(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := NewSink(fs, "out.json", logger.NewNoop())

	if err := sink.Begin(ports.SinkConfig{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta := metadata.Dict{"top": "10", "left": "20"}.Pack()
	sink.WritePacket(&ports.Packet{Data: []byte{1, 2, 3}, PTS: 7, DTS: 5, Keyframe: true, Metadata: meta})
	sink.WritePacket(&ports.Packet{Data: []byte{4, 5}, PTS: 8, DTS: 6})

	if _, err := sink.End(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := fs.ReadFile("out.json")
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}

	var records []PacketRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("sidecar is not valid JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PTS != 7 || records[0].DTS != 5 || !records[0].Keyframe || records[0].Size != 3 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[0].Metadata["top"] != "10" || records[0].Metadata["left"] != "20" {
		t.Errorf("expected decoded metadata, got %v", records[0].Metadata)
	}
	if records[1].Metadata != nil {
		t.Errorf("expected no metadata on second record, got %v", records[1].Metadata)
	}
}

func TestBeginResets(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := NewSink(fs, "", logger.NewNoop())

	sink.Begin(ports.SinkConfig{})
	sink.WritePacket(&ports.Packet{Data: []byte{1}})
	sink.Begin(ports.SinkConfig{})

	data, err := sink.End()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty stream after reset, got %d bytes", len(data))
	}
}

func TestUndecodableMetadataSkipped(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := NewSink(fs, "", logger.NewNoop())

	sink.Begin(ports.SinkConfig{})
	sink.WritePacket(&ports.Packet{Data: []byte{1}, Metadata: []byte("no terminator")})

	if sink.records[0].Metadata != nil {
		t.Errorf("expected undecodable metadata to be skipped, got %v", sink.records[0].Metadata)
	}
}
