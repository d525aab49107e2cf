package mocks

import (
	"sync"

	"github.com/user/h264stream/pkg/ports"
)

// StreamProber is a mock implementation of ports.StreamProber.
type StreamProber struct {
	ProbeFunc func(data []byte) (ports.StreamInfo, error)

	mu    sync.Mutex
	Calls int
}

func (m *StreamProber) Probe(data []byte) (ports.StreamInfo, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(data)
	}
	return ports.StreamInfo{}, nil
}

var _ ports.StreamProber = (*StreamProber)(nil)
