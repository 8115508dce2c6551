package summarizer

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter formats a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format converts a Summary to Markdown.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", l10n.T("Encode Summary")))
	sb.WriteString(fmt.Sprintf("%s: %s\n\n", l10n.T("Generated"), summary.GeneratedAt.Format("2006-01-02 15:04:05")))

	// Session section
	sb.WriteString(fmt.Sprintf("## %s\n\n", l10n.T("Session")))
	f.table(&sb, [][2]string{
		{l10n.T("Session ID"), summary.Session.ID},
		{l10n.T("Input"), orDefault(summary.Session.InputPath, l10n.T("Test pattern"))},
		{l10n.T("Output"), summary.Session.OutputPath},
		{l10n.T("Sidecar"), orDefault(summary.Session.SidecarPath, l10n.T("None"))},
	})

	// Input section
	in := summary.Input
	sb.WriteString(fmt.Sprintf("## %s\n\n", l10n.T("Input")))
	f.table(&sb, [][2]string{
		{l10n.T("Picture Size"), fmt.Sprintf("%dx%d", in.Width, in.Height)},
		{l10n.T("Pixel Format"), in.PixelFormat},
		{l10n.T("Frame Rate"), fmt.Sprintf("%d/%d", in.FPSNum, in.FPSDen)},
		{l10n.T("Frame Count"), fmt.Sprintf("%d", in.FrameCount)},
	})

	// Encoder section
	enc := summary.Encoder
	bitrate := l10n.T("None")
	if enc.Bitrate > 0 {
		bitrate = fmt.Sprintf("%d bps", enc.Bitrate)
	}
	gop := l10n.T("Encoder default")
	if enc.GOPSize > 0 {
		gop = fmt.Sprintf("%d", enc.GOPSize)
	}
	la := l10n.T("Encoder default")
	if enc.LookAheadDepth >= 0 {
		la = fmt.Sprintf("%d", enc.LookAheadDepth)
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", l10n.T("Encoder")))
	f.table(&sb, [][2]string{
		{l10n.T("Profile"), enc.Profile},
		{l10n.T("Preset"), fmt.Sprintf("%d", enc.Preset)},
		{l10n.T("Rate Control"), enc.RateControl},
		{l10n.T("QP"), fmt.Sprintf("%d", enc.QP)},
		{l10n.T("Bitrate"), bitrate},
		{l10n.T("GOP Size"), gop},
		{l10n.T("Look Ahead"), la},
	})

	// Output section
	out := summary.Output
	matched := fmt.Sprintf("%d", out.MetadataMatched)
	if out.MetadataAbandoned > 0 {
		matched = fmt.Sprintf("%d (%d %s)", out.MetadataMatched, out.MetadataAbandoned, l10n.T("abandoned"))
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", l10n.T("Output")))
	f.table(&sb, [][2]string{
		{l10n.T("Packets"), fmt.Sprintf("%d", out.Packets)},
		{l10n.T("Keyframes"), fmt.Sprintf("%d", out.Keyframes)},
		{l10n.T("Stream Size"), formatBytes(out.Bytes)},
		{l10n.T("File Size"), formatBytes(int64(out.FileSize))},
		{l10n.T("Video Duration"), fmt.Sprintf("%d ms", out.DurationMs)},
		{l10n.T("Metadata Matched"), matched},
	})

	return sb.String()
}

func (f *MarkdownFormatter) table(sb *strings.Builder, rows [][2]string) {
	sb.WriteString(fmt.Sprintf("| %s | %s |\n", l10n.T("Item"), l10n.T("Value")))
	sb.WriteString("|------|-------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}
	sb.WriteString("\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
