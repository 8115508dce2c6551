// Package encodestream implements the stage that drives a stream through
// the encoder adapter: submit every frame, interleave non-blocking fetches,
// send EOS at end of input and drain until the encoder reports the stream
// complete.
package encodestream

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/user/encbridge/pkg/encode"
	"github.com/user/encbridge/pkg/pipeline"
	"github.com/user/encbridge/pkg/ports"
)

// drainPollWait is how long to back off when the encoder has accepted EOS
// but has not finished emitting buffered packets yet.
const drainPollWait = time.Millisecond

// Stage encodes a frame stream into packets delivered to a sink.
type Stage struct {
	adapter *encode.Adapter
	sink    ports.PacketSink
	log     ports.Logger
}

// NewStage creates a new encode stage around an open adapter.
func NewStage(adapter *encode.Adapter, sink ports.PacketSink, log ports.Logger) *Stage {
	return &Stage{
		adapter: adapter,
		sink:    sink,
		log:     log.WithComponent("encodestream"),
	}
}

// Execute runs the stream to completion: all frames submitted, EOS sent
// exactly once, every buffered packet drained and written to the sink.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{}
	cfg := s.adapter.Config()

	if err := s.sink.Begin(ports.SinkConfig{
		Width:        cfg.Width,
		Height:       cfg.Height,
		FrameRateNum: cfg.FrameRateNum,
		FrameRateDen: cfg.FrameRateDen,
		StreamHeader: s.adapter.StreamHeader(),
	}); err != nil {
		return result, fmt.Errorf("begin sink: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		frame, err := input.Source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read frame: %w", err)
		}

		if err := s.adapter.SubmitFrame(frame); err != nil {
			return result, fmt.Errorf("submit frame: %w", err)
		}
		result.FramesSubmitted++

		// Collect whatever the encoder has finished so far, so its
		// output queue never backs up behind submission.
		if err := s.collect(&result); err != nil {
			return result, err
		}
	}

	s.log.Debug("Submitted %d frames, draining", result.FramesSubmitted)

	if err := s.adapter.SubmitEOS(); err != nil {
		return result, fmt.Errorf("submit EOS: %w", err)
	}

	for !s.adapter.Drained() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		n := result.Packets
		if err := s.collect(&result); err != nil {
			return result, err
		}
		if result.Packets == n && !s.adapter.Drained() {
			// Nothing ready yet; the encoder is still working through
			// its buffered pictures.
			time.Sleep(drainPollWait)
		}
	}

	result.MetadataAbandoned = s.adapter.PendingMetadata()

	data, err := s.sink.End()
	if err != nil {
		return result, fmt.Errorf("end sink: %w", err)
	}
	result.VideoData = data

	if cfg.FrameRateNum > 0 {
		result.DurationMs = result.FramesSubmitted * 1000 * cfg.FrameRateDen / cfg.FrameRateNum
	}

	s.log.Debug("Encoded %d packets (%d bytes)", result.Packets, result.Bytes)
	return result, nil
}

// collect fetches packets until the adapter reports nothing ready.
func (s *Stage) collect(result *pipeline.EncodeResult) error {
	for {
		pkt, err := s.adapter.FetchPacket()
		if err != nil {
			return fmt.Errorf("fetch packet: %w", err)
		}
		if pkt == nil {
			return nil
		}
		if len(pkt.Data) == 0 {
			// An empty EOS-only buffer carries no payload worth keeping.
			continue
		}

		if err := s.sink.WritePacket(pkt); err != nil {
			return fmt.Errorf("write packet: %w", err)
		}

		result.Packets++
		result.Bytes += int64(len(pkt.Data))
		if pkt.Keyframe {
			result.Keyframes++
		}
		if pkt.Metadata != nil {
			result.MetadataMatched++
		}
	}
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
