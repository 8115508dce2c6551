// Package integration contains integration tests for the encbridge pipeline.
package integration

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/user/encbridge/pkg/adapters/logger"
	"github.com/user/encbridge/pkg/adapters/patternsource"
	"github.com/user/encbridge/pkg/adapters/rawsink"
	"github.com/user/encbridge/pkg/encode"
	"github.com/user/encbridge/pkg/mocks"
	"github.com/user/encbridge/pkg/orchestrator"
	"github.com/user/encbridge/pkg/ports"
	"github.com/user/encbridge/pkg/stages/encodestream"
)

const frameCount = 12

func encoderConfig() ports.EncoderConfig {
	return ports.EncoderConfig{
		Width:          64,
		Height:         48,
		PixelFormat:    ports.PixFmtYUV420,
		FrameRateNum:   25,
		FrameRateDen:   1,
		Profile:        ports.ProfileMain,
		QP:             32,
		LookAheadDepth: -1,
	}
}

// TestPatternToRawStream runs the full pipeline: generated frames through
// the encode adapter into a raw sink, with the session driven by the
// orchestrator. The core encoder is a reordering test double, so packet
// metadata must be re-matched by timestamp.
func TestPatternToRawStream(t *testing.T) {
	log := logger.NewNoop()

	source, err := patternsource.New(patternsource.Options{
		Width:      64,
		Height:     48,
		FrameCount: frameCount,
		BoxSize:    16,
	})
	if err != nil {
		t.Fatalf("create pattern source: %v", err)
	}

	core := &mocks.CoreEncoder{LookAhead: 4, Reverse: true}
	adapter, err := encode.New(core, encoderConfig(), log)
	if err != nil {
		t.Fatalf("open adapter: %v", err)
	}
	defer adapter.Close()

	fs := mocks.NewFileSystem()
	sink := rawsink.NewSink(fs, "out.json", log)
	stage := encodestream.NewStage(adapter, sink, log)
	orch := orchestrator.New(stage, fs, log)

	result, err := orch.Run(context.Background(), orchestrator.Config{OutputPath: "out.hevc"}, source)
	if err != nil {
		t.Fatalf("run pipeline: %v", err)
	}

	if result.FramesSubmitted != frameCount {
		t.Errorf("expected %d frames submitted, got %d", frameCount, result.FramesSubmitted)
	}
	if result.Packets != frameCount {
		t.Errorf("expected %d packets, got %d", frameCount, result.Packets)
	}
	if result.MetadataMatched != frameCount {
		t.Errorf("expected all %d metadata entries matched, got %d", frameCount, result.MetadataMatched)
	}
	if result.MetadataAbandoned != 0 {
		t.Errorf("expected no abandoned metadata, got %d", result.MetadataAbandoned)
	}

	if _, err := fs.ReadFile("out.hevc"); err != nil {
		t.Fatalf("output stream not written: %v", err)
	}

	// The sidecar must carry each frame's box rectangle, re-attached to
	// the packet with the matching PTS despite the reordered output.
	raw, err := fs.ReadFile("out.json")
	if err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}
	var records []rawsink.PacketRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("parse sidecar: %v", err)
	}
	if len(records) != frameCount {
		t.Fatalf("expected %d sidecar records, got %d", frameCount, len(records))
	}

	probe, err := patternsource.New(patternsource.Options{
		Width:      64,
		Height:     48,
		FrameCount: frameCount,
		BoxSize:    16,
	})
	if err != nil {
		t.Fatalf("create probe source: %v", err)
	}
	wantBox := make(map[int64]map[string]string, frameCount)
	for {
		frame, err := probe.Next()
		if err != nil {
			break
		}
		box := map[string]string{}
		for i := 0; i < len(frame.Metadata); {
			// Pairs of NUL-terminated strings.
			j := i
			for frame.Metadata[j] != 0 {
				j++
			}
			key := string(frame.Metadata[i:j])
			k := j + 1
			for frame.Metadata[k] != 0 {
				k++
			}
			box[key] = string(frame.Metadata[j+1 : k])
			i = k + 1
		}
		wantBox[frame.PTS] = box
	}

	for _, rec := range records {
		want := wantBox[rec.PTS]
		if want == nil {
			t.Fatalf("sidecar record for unknown PTS %d", rec.PTS)
		}
		for _, key := range []string{"top", "left", "width", "height"} {
			if rec.Metadata[key] != want[key] {
				t.Errorf("PTS %d: expected %s=%s, got %s", rec.PTS, key, want[key], rec.Metadata[key])
			}
			if _, err := strconv.Atoi(rec.Metadata[key]); err != nil {
				t.Errorf("PTS %d: %s is not numeric: %q", rec.PTS, key, rec.Metadata[key])
			}
		}
	}
}

// TestSessionTeardownReleasesEverything verifies that a full session leaves
// no packet buffers or metadata entries behind in the core encoder.
func TestSessionTeardownReleasesEverything(t *testing.T) {
	log := logger.NewNoop()

	source, err := patternsource.New(patternsource.Options{
		Width:      64,
		Height:     48,
		FrameCount: 5,
	})
	if err != nil {
		t.Fatalf("create pattern source: %v", err)
	}

	core := &mocks.CoreEncoder{LookAhead: 2}
	adapter, err := encode.New(core, encoderConfig(), log)
	if err != nil {
		t.Fatalf("open adapter: %v", err)
	}

	fs := mocks.NewFileSystem()
	stage := encodestream.NewStage(adapter, rawsink.NewSink(fs, "", log), log)
	orch := orchestrator.New(stage, fs, log)

	if _, err := orch.Run(context.Background(), orchestrator.Config{OutputPath: "out.hevc"}, source); err != nil {
		t.Fatalf("run pipeline: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("close adapter: %v", err)
	}

	if !core.ShutdownCalled {
		t.Error("expected encoder shutdown")
	}
	if got := adapter.PendingMetadata(); got != 0 {
		t.Errorf("expected no pending metadata after close, got %d", got)
	}
	if len(core.Released) != core.Emitted() {
		t.Errorf("expected every emitted buffer released: released %d of %d",
			len(core.Released), core.Emitted())
	}
}
