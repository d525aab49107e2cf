package pipeline

import (
	"io"
	"time"

	"github.com/user/h264stream/pkg/ports"
)

// DefaultChunkSize is the number of bytes read from a stream per Parse loop.
const DefaultChunkSize = 4096

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput describes one elementary H.264 stream to decode.
type DecodeInput struct {
	// Name identifies the stream in the sink and the summary.
	Name string

	// Reader supplies the Annex-B byte stream. Chunk boundaries are arbitrary.
	Reader io.Reader

	// ChunkSize is the read size (default: DefaultChunkSize).
	ChunkSize int

	// MaxFrames stops decoding after this many frames (0: unlimited).
	MaxFrames int
}

// DecodeResult summarizes one decoded stream.
type DecodeResult struct {
	Name string

	// Width and Height are the geometry of the last converted frame.
	Width  int
	Height int

	// Frames counts frames converted and handed to the sink.
	Frames int
	// ConvertFailures counts frames the converter refused.
	ConvertFailures int
	// GeometryChanges counts resolution changes after the first frame.
	GeometryChanges int

	BytesRead int64
	Decoder   ports.DecodeStats
	Duration  time.Duration
}
