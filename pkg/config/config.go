// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/encbridge/pkg/ports"
)

// Config represents the full configuration for encbridge.
type Config struct {
	// Input/Output
	InputPath   string `yaml:"input"`
	OutputPath  string `yaml:"output"`
	SidecarPath string `yaml:"sidecar"`

	// Picture
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	PixelFormat string `yaml:"pixel_format"`
	FPSNum      int    `yaml:"fps_num"`
	FPSDen      int    `yaml:"fps_den"`

	// Encoder
	Profile              string `yaml:"profile"`
	Tier                 int    `yaml:"tier"`
	Level                int    `yaml:"level"`
	Preset               int    `yaml:"preset"`
	HierarchicalLevels   int    `yaml:"hierarchical_levels"`
	RateControl          string `yaml:"rate_control"`
	Bitrate              int    `yaml:"bitrate"`
	QP                   int    `yaml:"qp"`
	MinQP                int    `yaml:"min_qp"`
	MaxQP                int    `yaml:"max_qp"`
	GOPSize              int    `yaml:"gop_size"`
	LookAheadDepth       int    `yaml:"look_ahead_depth"`
	SceneChangeDetection bool   `yaml:"scene_change_detection"`
	Tune                 int    `yaml:"tune"`
	GlobalHeader         bool   `yaml:"global_header"`

	// Pattern source, used when no input file is given
	PatternFrames int `yaml:"pattern_frames"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		// Picture
		Width:       1280,
		Height:      720,
		PixelFormat: "yuv420p",
		FPSNum:      25,
		FPSDen:      1,

		// Encoder
		Profile:              "main",
		Preset:               9,
		HierarchicalLevels:   3,
		RateControl:          "cqp",
		QP:                   32,
		MinQP:                10,
		MaxQP:                48,
		LookAheadDepth:       -1,
		SceneChangeDetection: true,
		Tune:                 1,

		PatternFrames: 100,
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ToEncoderConfig converts Config to the encoder port configuration.
func (c Config) ToEncoderConfig() (ports.EncoderConfig, error) {
	pixFmt, err := ports.ParsePixelFormat(c.PixelFormat)
	if err != nil {
		return ports.EncoderConfig{}, err
	}

	profile, err := parseProfile(c.Profile)
	if err != nil {
		return ports.EncoderConfig{}, err
	}

	rc, err := parseRateControl(c.RateControl)
	if err != nil {
		return ports.EncoderConfig{}, err
	}

	return ports.EncoderConfig{
		Width:                c.Width,
		Height:               c.Height,
		PixelFormat:          pixFmt,
		FrameRateNum:         c.FPSNum,
		FrameRateDen:         c.FPSDen,
		Profile:              profile,
		Tier:                 c.Tier,
		Level:                c.Level,
		Preset:               c.Preset,
		HierarchicalLevels:   c.HierarchicalLevels,
		RateControl:          rc,
		TargetBitrate:        int64(c.Bitrate),
		QP:                   c.QP,
		MinQP:                c.MinQP,
		MaxQP:                c.MaxQP,
		GOPSize:              c.GOPSize,
		LookAheadDepth:       c.LookAheadDepth,
		SceneChangeDetection: c.SceneChangeDetection,
		Tune:                 c.Tune,
		GlobalHeader:         c.GlobalHeader,
	}, nil
}

func parseProfile(name string) (ports.Profile, error) {
	switch name {
	case "", "main":
		return ports.ProfileMain, nil
	case "main10", "main-10":
		return ports.ProfileMain10, nil
	case "msp", "main-still-picture":
		return ports.ProfileMainStillPicture, nil
	case "rext":
		return ports.ProfileRext, nil
	default:
		return 0, fmt.Errorf("unknown profile %q", name)
	}
}

func parseRateControl(name string) (ports.RateControlMode, error) {
	switch name {
	case "", "cqp":
		return ports.RCConstantQP, nil
	case "vbr":
		return ports.RCVariableBitrate, nil
	default:
		return 0, fmt.Errorf("unknown rate control mode %q", name)
	}
}
