package ports

// StreamInfo describes an elementary H.264 stream as seen in its first bytes.
type StreamInfo struct {
	Width     int
	Height    int
	Profile   int
	Level     int
	FullRange bool

	// NALUnits counts NAL units by type name.
	NALUnits map[string]int
	// Slices counts slices by type name (I, P, B, SP, SI).
	Slices map[string]int
}

// Reordered reports whether the stream carries B slices, which make the
// decoder hold frames back before output.
func (s StreamInfo) Reordered() bool {
	return s.Slices["B"] > 0
}

// StreamProber inspects the head of an elementary stream.
type StreamProber interface {
	Probe(data []byte) (StreamInfo, error)
}
