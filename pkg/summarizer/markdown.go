package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown report.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion sets the version printed in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Decode Summary"))
	fmt.Fprintf(&b, "%s: %s\n\n", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "## %s\n\n", t("Overview"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Item"), t("Value"))
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| %s | %d |\n", t("Streams"), len(s.Streams))
	fmt.Fprintf(&b, "| %s | %d |\n", t("Frames"), s.TotalFrames())
	fmt.Fprintf(&b, "| %s | %s |\n", t("Input"), formatBytes(s.TotalBytes()))
	if failed := s.Failed(); failed > 0 {
		fmt.Fprintf(&b, "| %s | %d |\n", t("Failed"), failed)
	}
	b.WriteString("\n")

	if len(s.Streams) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", t("Streams"))
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			t("Stream"), t("Resolution"), t("Profile"), t("Frames"),
			t("Packets"), t("Rejected"), t("Input"), t("Speed"))
		b.WriteString("|---|---|---|---:|---:|---:|---:|---:|\n")
		for _, st := range s.Streams {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d | %s | %.1f fps |\n",
				st.Name, resolution(st), profile(st, t), st.Frames,
				st.Packets, st.Rejected, formatBytes(st.BytesRead), st.FPS())
		}
		b.WriteString("\n")

		var notes []string
		for _, st := range s.Streams {
			if st.Err != "" {
				notes = append(notes, fmt.Sprintf("- %s: %s %s", st.Name, t("Error"), st.Err))
			}
			if st.ConvertFailures > 0 {
				notes = append(notes, fmt.Sprintf("- %s: %d %s", st.Name, st.ConvertFailures, t("frames not converted")))
			}
			if st.GeometryChanges > 0 {
				notes = append(notes, fmt.Sprintf("- %s: %d %s", st.Name, st.GeometryChanges, t("resolution changes")))
			}
		}
		if len(notes) > 0 {
			fmt.Fprintf(&b, "## %s\n\n", t("Notes"))
			b.WriteString(strings.Join(notes, "\n"))
			b.WriteString("\n\n")
		}
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Item"), t("Value"))
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s |\n", t("Pixel Order"), s.Settings.PixelOrder)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Chunk Size"), formatBytes(int64(s.Settings.ChunkSize)))
	if s.Settings.SnapshotFormat != "" {
		fmt.Fprintf(&b, "| %s | %s, %s %d |\n", t("Snapshots"), s.Settings.SnapshotFormat, t("every"), s.Settings.SnapshotEvery)
	}
	if s.Settings.RawDump {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Raw Dump"), t("Enabled"))
	}
	if s.Settings.OutputDir != "" {
		fmt.Fprintf(&b, "| %s | %s |\n", t("Output"), s.Settings.OutputDir)
	}

	if f.version != "" {
		fmt.Fprintf(&b, "\n---\n%s %s\n", t("Generated by h264stream"), f.version)
	}
	return b.String()
}

func resolution(st StreamInfo) string {
	if st.Width == 0 || st.Height == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dx%d", st.Width, st.Height)
}

var profileNames = map[int]string{
	66:  "Baseline",
	77:  "Main",
	88:  "Extended",
	100: "High",
	110: "High 10",
	122: "High 4:2:2",
	244: "High 4:4:4",
}

func profile(st StreamInfo, t func(string) string) string {
	if st.Profile == 0 {
		return "N/A"
	}
	name, ok := profileNames[st.Profile]
	if !ok {
		name = fmt.Sprintf("%d", st.Profile)
	}
	out := fmt.Sprintf("%s %d.%d", name, st.Level/10, st.Level%10)
	if st.FullRange {
		out += ", " + t("full range")
	}
	if st.Reordered {
		out += ", " + t("B-frames")
	}
	return out
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
