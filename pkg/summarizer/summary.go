// Package summarizer provides summary generation for encode sessions.
package summarizer

import "time"

// Summary contains all data collected during an encode session.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Session identification
	Session SessionInfo

	// Input stream details
	Input InputInfo

	// Encoder settings
	Encoder EncoderInfo

	// Output stream details
	Output OutputInfo
}

// SessionInfo identifies the session and its files.
type SessionInfo struct {
	ID          string
	InputPath   string // empty for the generated test pattern
	OutputPath  string
	SidecarPath string
}

// InputInfo describes the source stream.
type InputInfo struct {
	Width       int
	Height      int
	PixelFormat string
	FPSNum      int
	FPSDen      int
	FrameCount  int
}

// EncoderInfo contains the encoder configuration.
type EncoderInfo struct {
	Profile        string
	Preset         int
	RateControl    string
	QP             int
	Bitrate        int
	GOPSize        int
	LookAheadDepth int
}

// OutputInfo describes the encoded stream.
type OutputInfo struct {
	Packets           int
	Keyframes         int
	Bytes             int64
	FileSize          int
	DurationMs        int
	MetadataMatched   int
	MetadataAbandoned int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSession sets session identification.
func (b *Builder) WithSession(session SessionInfo) *Builder {
	b.summary.Session = session
	return b
}

// WithInput sets input stream details.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithEncoder sets the encoder configuration.
func (b *Builder) WithEncoder(encoder EncoderInfo) *Builder {
	b.summary.Encoder = encoder
	return b
}

// WithOutput sets output stream details.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
