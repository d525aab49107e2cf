package ports

// FrameSink receives converted frames of one or more named streams.
// Implementations must accept calls for different streams concurrently.
type FrameSink interface {
	// Enabled returns true if the sink keeps anything.
	Enabled() bool

	// SaveFrame hands over the frame with the given zero-based index.
	// frame.Pix is only valid for the duration of the call.
	SaveFrame(stream string, index int, frame RGBFrame) error

	// Finish is called once a stream ends and releases its resources.
	Finish(stream string) error
}
