package summarizer

import "time"

// Summary contains all data collected during a decode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Run settings
	Settings Settings

	// One entry per input stream, in input order.
	Streams []StreamInfo
}

// Settings contains the decode configuration.
type Settings struct {
	PixelOrder string
	ChunkSize  int

	// Snapshot output ("" when disabled)
	SnapshotFormat string
	SnapshotEvery  int
	RawDump        bool
	OutputDir      string
}

// StreamInfo contains the outcome of one stream.
type StreamInfo struct {
	Name string

	// Header information from the stream probe (zero when unknown)
	Profile   int
	Level     int
	FullRange bool
	Reordered bool

	// Geometry of the last frame
	Width  int
	Height int

	Frames          int
	ConvertFailures int
	GeometryChanges int

	// Decoder counters
	Packets  int
	Rejected int

	BytesRead  int64
	DurationMs int64

	// Err is set when the stream stopped with an error.
	Err string
}

// FPS returns frames decoded per second of wall time.
func (s StreamInfo) FPS() float64 {
	if s.DurationMs <= 0 {
		return 0
	}
	return float64(s.Frames) * 1000 / float64(s.DurationMs)
}

// TotalFrames returns the number of frames over all streams.
func (s *Summary) TotalFrames() int {
	total := 0
	for _, st := range s.Streams {
		total += st.Frames
	}
	return total
}

// TotalBytes returns the number of bytes read over all streams.
func (s *Summary) TotalBytes() int64 {
	var total int64
	for _, st := range s.Streams {
		total += st.BytesRead
	}
	return total
}

// Failed returns the number of streams that stopped with an error.
func (s *Summary) Failed() int {
	n := 0
	for _, st := range s.Streams {
		if st.Err != "" {
			n++
		}
	}
	return n
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

// WithSettings sets the run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// AddStream appends the outcome of one stream.
func (b *Builder) AddStream(stream StreamInfo) *Builder {
	b.summary.Streams = append(b.summary.Streams, stream)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
