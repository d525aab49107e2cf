package mocks

import (
	"context"

	"github.com/user/h264stream/pkg/ports"
)

// AccessUnitSource is a mock implementation of ports.AccessUnitSource.
// It delivers AccessUnits in order and then returns, or waits for
// cancellation when Block is set.
type AccessUnitSource struct {
	AccessUnits [][]byte
	Block       bool
	Err         error

	Delivered int
}

func (m *AccessUnitSource) Run(ctx context.Context, handle func(au []byte) error) error {
	for _, au := range m.AccessUnits {
		if ctx.Err() != nil {
			return nil
		}
		if err := handle(au); err != nil {
			return err
		}
		m.Delivered++
	}
	if m.Block {
		<-ctx.Done()
		return nil
	}
	return m.Err
}

var _ ports.AccessUnitSource = (*AccessUnitSource)(nil)
