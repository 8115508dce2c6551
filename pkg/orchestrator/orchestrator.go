// Package orchestrator coordinates an encode session from frame source to
// output file.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"

	"github.com/user/encbridge/pkg/pipeline"
	"github.com/user/encbridge/pkg/ports"
)

// Config contains the per-session settings the orchestrator needs.
type Config struct {
	// OutputPath is where the finished stream or container is written.
	OutputPath string

	// SessionID identifies the session in logs. Generated when empty.
	SessionID string
}

// RunResult summarizes a completed session.
type RunResult struct {
	SessionID         string
	OutputPath        string
	FileSize          int
	FramesSubmitted   int
	Packets           int
	Bytes             int64
	Keyframes         int
	MetadataMatched   int
	MetadataAbandoned int
	DurationMs        int
}

// Orchestrator runs the encode stage and persists its output.
type Orchestrator struct {
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs          ports.FileSystem
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		encodeStage: encodeStage,
		fs:          fs,
		logger:      logger,
	}
}

// Run encodes every frame the source yields and writes the result to the
// configured output path.
func (o *Orchestrator) Run(ctx context.Context, config Config, source ports.FrameSource) (RunResult, error) {
	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}
	log := o.logger.WithComponent(short)

	log.Info(l10n.T("Starting encode pipeline"))

	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{Source: source})
	if err != nil {
		return RunResult{}, fmt.Errorf("encode stage: %w", err)
	}

	if encoded.MetadataAbandoned > 0 {
		log.Warn(l10n.F("Abandoned %d metadata entries without matching packets", encoded.MetadataAbandoned))
	}

	if err := o.fs.WriteFile(config.OutputPath, encoded.VideoData); err != nil {
		log.Error(l10n.F("Failed to write output: %s", err))
		return RunResult{}, fmt.Errorf("write output: %w", err)
	}
	log.Info(l10n.F("Output saved to %s", config.OutputPath))

	log.Info(l10n.F("Encoded %d packets in %d ms of video", encoded.Packets, encoded.DurationMs))
	log.Info(l10n.T("Pipeline completed successfully"))

	return RunResult{
		SessionID:         sessionID,
		OutputPath:        config.OutputPath,
		FileSize:          len(encoded.VideoData),
		FramesSubmitted:   encoded.FramesSubmitted,
		Packets:           encoded.Packets,
		Bytes:             encoded.Bytes,
		Keyframes:         encoded.Keyframes,
		MetadataMatched:   encoded.MetadataMatched,
		MetadataAbandoned: encoded.MetadataAbandoned,
		DurationMs:        encoded.DurationMs,
	}, nil
}
