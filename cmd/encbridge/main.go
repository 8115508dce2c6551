// Package main provides the CLI entry point for encbridge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/encbridge/pkg/adapters/logger"
	"github.com/user/encbridge/pkg/adapters/mp4sink"
	"github.com/user/encbridge/pkg/adapters/osfilesystem"
	"github.com/user/encbridge/pkg/adapters/patternsource"
	"github.com/user/encbridge/pkg/adapters/rawsink"
	"github.com/user/encbridge/pkg/adapters/svthevc"
	"github.com/user/encbridge/pkg/config"
	"github.com/user/encbridge/pkg/encode"
	"github.com/user/encbridge/pkg/orchestrator"
	"github.com/user/encbridge/pkg/ports"
	"github.com/user/encbridge/pkg/rawvideo"
	"github.com/user/encbridge/pkg/stages/encodestream"
	"github.com/user/encbridge/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Encode  EncodeCmd  `cmd:"" help:"Encode raw YUV input, or a built-in test pattern, to HEVC."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// EncodeCmd defines the encode subcommand.
type EncodeCmd struct {
	// Required arguments
	Input  string `arg:"" optional:"" help:"Raw YUV input file (omit to encode the built-in test pattern)."`
	Output string `short:"o" required:"" help:"Output file path (.mp4 for a container, anything else for a raw stream)."`

	// Config file
	Config string `short:"C" type:"existingfile" help:"YAML configuration file."`

	// Picture options (override config file)
	Width       *int    `short:"W" help:"Picture width in pixels."`
	Height      *int    `short:"H" help:"Picture height in pixels."`
	PixelFormat *string `help:"Input pixel format (yuv420p, yuv420p10le, yuv422p, yuv422p10le, yuv444p, yuv444p10le)."`
	FPSNum      *int    `help:"Frame rate numerator."`
	FPSDen      *int    `help:"Frame rate denominator."`

	// Encoder options
	Profile     *string `help:"HEVC profile (main, main10, rext)."`
	Preset      *int    `short:"p" help:"Encoder preset (0-12, higher is faster)."`
	QP          *int    `short:"q" help:"QP value for intra frames (0-51)."`
	RateControl *string `help:"Rate control mode (cqp, vbr)."`
	Bitrate     *int    `short:"b" help:"Target bitrate in bits/sec (vbr only)."`
	GopSize     *int    `short:"g" help:"GOP size (0 = encoder default)."`
	LaDepth     *int    `help:"Look ahead distance (-1 = encoder default)."`
	NoScd       bool    `help:"Disable scene change detection."`
	Tune        *int    `help:"Quality tuning mode (0 = sq, 1 = oq, 2 = vmaf)."`
	GlobalHeader bool   `help:"Emit VPS/SPS/PPS out of band instead of in the stream."`

	// Sidecar
	Sidecar string `help:"Write a JSON packet/metadata sidecar to this path (raw output only)."`

	// Summary
	Summary string `short:"s" help:"Write an execution summary to this path (Markdown format)."`

	// Pattern source
	PatternFrames *int `help:"Frame count for the built-in test pattern."`

	// Logging options
	LogLevel string `short:"l" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" help:"Suppress all log output."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("encbridge"),
		kong.Description("Encode raw video to HEVC with frame metadata carried through the encoder."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the encode command.
func (cmd *EncodeCmd) Run() error {
	cfg, err := cmd.buildConfig()
	if err != nil {
		return err
	}

	// Create logger
	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cmd.LogLevel))
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	encCfg, err := cfg.ToEncoderConfig()
	if err != nil {
		return err
	}

	// Create the frame source
	source, closeSource, err := cmd.buildSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	fs := osfilesystem.New()

	// Create the packet sink from the output extension
	var sink ports.PacketSink
	if strings.EqualFold(filepath.Ext(cfg.OutputPath), ".mp4") {
		if cfg.SidecarPath != "" {
			return fmt.Errorf("sidecar output requires a raw stream output, not MP4")
		}
		sink = mp4sink.NewSink(log)
	} else {
		sink = rawsink.NewSink(fs, cfg.SidecarPath, log)
	}

	// Create the encoder
	core, err := svthevc.New(log)
	if err != nil {
		return err
	}
	adapter, err := encode.New(core, encCfg, log)
	if err != nil {
		return err
	}
	defer adapter.Close()

	stage := encodestream.NewStage(adapter, sink, log)
	orch := orchestrator.New(stage, fs, log)

	result, err := orch.Run(ctx, orchestrator.Config{OutputPath: cfg.OutputPath}, source)
	if err != nil {
		return err
	}
	if cfg.SidecarPath != "" {
		log.Info(l10n.F("Sidecar saved to %s", cfg.SidecarPath))
	}

	if cmd.Summary != "" {
		if err := cmd.writeSummary(cfg, result); err != nil {
			log.Warn(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cmd.Summary))
		}
	}
	return nil
}

// writeSummary renders the session summary as Markdown.
func (cmd *EncodeCmd) writeSummary(cfg config.Config, result orchestrator.RunResult) error {
	summary := summarizer.NewBuilder().
		WithSession(summarizer.SessionInfo{
			ID:          result.SessionID,
			InputPath:   cfg.InputPath,
			OutputPath:  cfg.OutputPath,
			SidecarPath: cfg.SidecarPath,
		}).
		WithInput(summarizer.InputInfo{
			Width:       cfg.Width,
			Height:      cfg.Height,
			PixelFormat: cfg.PixelFormat,
			FPSNum:      cfg.FPSNum,
			FPSDen:      cfg.FPSDen,
			FrameCount:  result.FramesSubmitted,
		}).
		WithEncoder(summarizer.EncoderInfo{
			Profile:        cfg.Profile,
			Preset:         cfg.Preset,
			RateControl:    cfg.RateControl,
			QP:             cfg.QP,
			Bitrate:        cfg.Bitrate,
			GOPSize:        cfg.GOPSize,
			LookAheadDepth: cfg.LookAheadDepth,
		}).
		WithOutput(summarizer.OutputInfo{
			Packets:           result.Packets,
			Keyframes:         result.Keyframes,
			Bytes:             result.Bytes,
			FileSize:          result.FileSize,
			DurationMs:        result.DurationMs,
			MetadataMatched:   result.MetadataMatched,
			MetadataAbandoned: result.MetadataAbandoned,
		}).
		Build()

	writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter())
	return writer.Write(cmd.Summary, summary)
}

// buildConfig loads the config file, when given, and applies CLI overrides.
func (cmd *EncodeCmd) buildConfig() (config.Config, error) {
	cfg := config.Defaults()
	if cmd.Config != "" {
		var err error
		cfg, err = config.LoadFromFile(cmd.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.InputPath = cmd.Input
	cfg.OutputPath = cmd.Output
	if cmd.Sidecar != "" {
		cfg.SidecarPath = cmd.Sidecar
	}

	if cmd.Width != nil {
		cfg.Width = *cmd.Width
	}
	if cmd.Height != nil {
		cfg.Height = *cmd.Height
	}
	if cmd.PixelFormat != nil {
		cfg.PixelFormat = *cmd.PixelFormat
	}
	if cmd.FPSNum != nil {
		cfg.FPSNum = *cmd.FPSNum
	}
	if cmd.FPSDen != nil {
		cfg.FPSDen = *cmd.FPSDen
	}
	if cmd.Profile != nil {
		cfg.Profile = *cmd.Profile
	}
	if cmd.Preset != nil {
		cfg.Preset = *cmd.Preset
	}
	if cmd.QP != nil {
		cfg.QP = *cmd.QP
	}
	if cmd.RateControl != nil {
		cfg.RateControl = *cmd.RateControl
	}
	if cmd.Bitrate != nil {
		cfg.Bitrate = *cmd.Bitrate
		if cmd.RateControl == nil {
			cfg.RateControl = "vbr"
		}
	}
	if cmd.GopSize != nil {
		cfg.GOPSize = *cmd.GopSize
	}
	if cmd.LaDepth != nil {
		cfg.LookAheadDepth = *cmd.LaDepth
	}
	if cmd.NoScd {
		cfg.SceneChangeDetection = false
	}
	if cmd.Tune != nil {
		cfg.Tune = *cmd.Tune
	}
	if cmd.GlobalHeader {
		cfg.GlobalHeader = true
	}
	if cmd.PatternFrames != nil {
		cfg.PatternFrames = *cmd.PatternFrames
	}

	return cfg, nil
}

// buildSource opens the raw input file, or falls back to the test pattern
// when no input path was given.
func (cmd *EncodeCmd) buildSource(cfg config.Config) (ports.FrameSource, func(), error) {
	if cfg.InputPath == "" {
		if cfg.PixelFormat != "yuv420p" {
			return nil, nil, fmt.Errorf("the test pattern is 8-bit 4:2:0 only, got %s", cfg.PixelFormat)
		}
		src, err := patternsource.New(patternsource.Options{
			Width:      cfg.Width,
			Height:     cfg.Height,
			FrameCount: cfg.PatternFrames,
		})
		if err != nil {
			return nil, nil, err
		}
		return src, func() {}, nil
	}

	pixFmt, err := ports.ParsePixelFormat(cfg.PixelFormat)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}

	reader, err := rawvideo.New(f, rawvideo.Options{
		Width:       cfg.Width,
		Height:      cfg.Height,
		PixelFormat: pixFmt,
	})
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return reader, func() { f.Close() }, nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("encbridge version %s", version))
	return nil
}
