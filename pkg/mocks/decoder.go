package mocks

import (
	"fmt"
	"sync"

	"github.com/user/h264stream/pkg/ports"
)

// DecodedFrame is a mock implementation of ports.DecodedFrame.
type DecodedFrame struct {
	Width  int
	Height int
	// Index is the zero-based position of the frame in its stream.
	Index int
}

func (f *DecodedFrame) Size() (int, int) { return f.Width, f.Height }

func (f *DecodedFrame) RowSize() int { return f.Width }

var _ ports.DecodedFrame = (*DecodedFrame)(nil)

// StreamDecoder is a mock implementation of ports.StreamDecoder.
// It emits a frame whenever another FrameEvery bytes have been consumed and
// returns Held more frames from DrainFrame.
type StreamDecoder struct {
	FrameEvery int
	Width      int
	Height     int
	Held       int

	ParseCalls int
	FlushCalls int
	Closed     bool

	stats   ports.DecodeStats
	pending int
	drained int
}

func (m *StreamDecoder) ParseFrame(data []byte) (int, ports.DecodedFrame) {
	m.ParseCalls++
	if len(data) == 0 {
		m.FlushCalls++
		return 0, nil
	}
	n := m.FrameEvery - m.pending
	if n > len(data) {
		n = len(data)
	}
	m.pending += n
	m.stats.BytesConsumed += int64(n)
	if m.pending < m.FrameEvery {
		return n, nil
	}
	m.pending = 0
	m.stats.Packets++
	return n, m.frame()
}

func (m *StreamDecoder) DrainFrame() ports.DecodedFrame {
	if m.drained >= m.Held {
		return nil
	}
	m.drained++
	return m.frame()
}

func (m *StreamDecoder) frame() *DecodedFrame {
	f := &DecodedFrame{Width: m.Width, Height: m.Height, Index: m.stats.Frames}
	m.stats.Frames++
	return f
}

func (m *StreamDecoder) Stats() ports.DecodeStats {
	return m.stats
}

func (m *StreamDecoder) Close() {
	m.Closed = true
}

var _ ports.StreamDecoder = (*StreamDecoder)(nil)

// FrameConverter is a mock implementation of ports.FrameConverter.
// It fills the destination with the frame index.
type FrameConverter struct {
	Order       ports.PixelOrder
	ConvertFunc func(frame ports.DecodedFrame, dst []byte) (ports.RGBFrame, error)

	Calls  int
	Closed bool
}

func (m *FrameConverter) PredictSize(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height * 3
}

func (m *FrameConverter) ConvertFrame(frame ports.DecodedFrame, dst []byte) (ports.RGBFrame, error) {
	m.Calls++
	if m.ConvertFunc != nil {
		return m.ConvertFunc(frame, dst)
	}
	w, h := frame.Size()
	need := m.PredictSize(w, h)
	if len(dst) < need {
		return ports.RGBFrame{}, fmt.Errorf("buffer too small: %d < %d", len(dst), need)
	}
	var fill byte
	if f, ok := frame.(*DecodedFrame); ok {
		fill = byte(f.Index)
	}
	for i := range dst[:need] {
		dst[i] = fill
	}
	return ports.RGBFrame{Width: w, Height: h, Stride: w * 3, Order: m.Order, Pix: dst[:need]}, nil
}

func (m *FrameConverter) Close() {
	m.Closed = true
}

var _ ports.FrameConverter = (*FrameConverter)(nil)

// DecoderFactory is a mock implementation of ports.DecoderFactory.
// Every decoder it creates is a StreamDecoder copied from Template.
type DecoderFactory struct {
	Template StreamDecoder
	Err      error

	mu         sync.Mutex
	Decoders   []*StreamDecoder
	Converters []*FrameConverter
}

func (m *DecoderFactory) NewDecoder() (ports.StreamDecoder, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	d := &StreamDecoder{
		FrameEvery: m.Template.FrameEvery,
		Width:      m.Template.Width,
		Height:     m.Template.Height,
		Held:       m.Template.Held,
	}
	m.mu.Lock()
	m.Decoders = append(m.Decoders, d)
	m.mu.Unlock()
	return d, nil
}

func (m *DecoderFactory) NewConverter(order ports.PixelOrder) (ports.FrameConverter, error) {
	c := &FrameConverter{Order: order}
	m.mu.Lock()
	m.Converters = append(m.Converters, c)
	m.mu.Unlock()
	return c, nil
}

var _ ports.DecoderFactory = (*DecoderFactory)(nil)
