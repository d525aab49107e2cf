package h264decoder

import "github.com/user/h264stream/pkg/ports"

var _ ports.DecoderFactory = (*Factory)(nil)

// Factory creates a Decoder and a Converter for each stream.
type Factory struct {
	logger ports.Logger
}

// NewFactory creates a Factory whose products log through logger.
func NewFactory(logger ports.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewDecoder implements ports.DecoderFactory.
func (f *Factory) NewDecoder() (ports.StreamDecoder, error) {
	d, err := New(f.logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// NewConverter implements ports.DecoderFactory.
func (f *Factory) NewConverter(order ports.PixelOrder) (ports.FrameConverter, error) {
	c, err := NewConverter(order, f.logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}
