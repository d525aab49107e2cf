package mocks

import (
	"sync"

	"github.com/user/h264stream/pkg/ports"
)

// SavedFrame records one SaveFrame call. Pix is a copy.
type SavedFrame struct {
	Stream string
	Index  int
	Frame  ports.RGBFrame
}

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	mu sync.Mutex

	enabled bool

	SaveFrameFunc func(stream string, index int, frame ports.RGBFrame) error

	Frames   []SavedFrame
	Finished []string
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink(enabled bool) *FrameSink {
	return &FrameSink{enabled: enabled}
}

func (m *FrameSink) Enabled() bool {
	return m.enabled
}

func (m *FrameSink) SaveFrame(stream string, index int, frame ports.RGBFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	frame.Pix = append([]byte(nil), frame.Pix...)
	m.Frames = append(m.Frames, SavedFrame{Stream: stream, Index: index, Frame: frame})
	if m.SaveFrameFunc != nil {
		return m.SaveFrameFunc(stream, index, frame)
	}
	return nil
}

func (m *FrameSink) Finish(stream string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Finished = append(m.Finished, stream)
	return nil
}

// FramesOf returns the recorded frames of one stream.
func (m *FrameSink) FramesOf(stream string) []SavedFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SavedFrame
	for _, f := range m.Frames {
		if f.Stream == stream {
			out = append(out, f)
		}
	}
	return out
}

var _ ports.FrameSink = (*FrameSink)(nil)

// NullSink is a no-op implementation of ports.FrameSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool { return false }
func (m *NullSink) SaveFrame(string, int, ports.RGBFrame) error { return nil }
func (m *NullSink) Finish(string) error { return nil }

var _ ports.FrameSink = (*NullSink)(nil)
