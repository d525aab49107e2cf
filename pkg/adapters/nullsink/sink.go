// Package nullsink provides a no-op frame sink implementation.
package nullsink

import (
	"github.com/user/h264stream/pkg/ports"
)

// Sink is a no-op implementation of ports.FrameSink.
// It discards every frame; decoding still runs to completion.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFrame does nothing.
func (s *Sink) SaveFrame(stream string, index int, frame ports.RGBFrame) error {
	return nil
}

// Finish does nothing.
func (s *Sink) Finish(stream string) error {
	return nil
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
