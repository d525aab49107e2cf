// Package h264decoder decodes H.264 elementary streams with libavcodec and
// converts decoded frames to packed 24-bit pixels with libswscale.
//
// A Decoder is fed arbitrary chunks of an Annex-B stream and returns at most
// one frame per call:
//
//	for len(data) > 0 {
//		n, frame := dec.Parse(data)
//		data = data[n:]
//		if frame != nil {
//			// convert or copy frame before the next call
//		}
//	}
//
// Decoder and Converter are not safe for concurrent use. Independent
// instances may run on separate goroutines.
package h264decoder

import (
	"fmt"
	"runtime"

	"github.com/user/h264stream/pkg/ports"
)

// Stats counts what a Decoder has done since it was created.
type Stats = ports.DecodeStats

type drainState int

const (
	drainNone drainState = iota
	drainParser
	drainDecoder
	drainDone
)

var _ ports.StreamDecoder = (*Decoder)(nil)

// Decoder turns an H.264 byte stream into decoded frames.
type Decoder struct {
	parser *bitstreamParser
	dec    *frameDecoder
	view   Frame
	drain  drainState
	stats  Stats
	logger ports.Logger
	closed bool
}

// Engine constructors used by New.
var (
	openFrameDecoder = newFrameDecoder
	openParser       = newBitstreamParser
)

// New creates a decoder. Failures wrap ErrInit and the specific cause.
func New(logger ports.Logger) (*Decoder, error) {
	dec, err := openFrameDecoder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	parser, err := openParser()
	if err != nil {
		dec.close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	d := &Decoder{
		parser: parser,
		dec:    dec,
		logger: logger.WithComponent("h264decoder"),
	}
	d.view = Frame{f: dec.frame}
	return d, nil
}

// Parse consumes bytes from data and returns how many were used together
// with at most one decoded frame. The caller re-submits data[consumed:].
// Empty data flushes the access unit held by the parser.
//
// A nil frame means no frame became available: no access unit was complete,
// the decoder still buffers it for reordering, or the engine rejected it.
// The returned frame is valid until the next call on d.
func (d *Decoder) Parse(data []byte) (int, *Frame) {
	if d.closed {
		return 0, nil
	}
	if d.drain != drainNone {
		if d.drain != drainDone {
			d.reset()
		}
		d.drain = drainNone
	}

	var pinner runtime.Pinner
	if len(data) > 0 {
		pinner.Pin(&data[0])
	}
	defer pinner.Unpin()

	n, ready := d.parser.parse(d.dec.codec, data)
	d.stats.BytesConsumed += int64(n)
	if !ready {
		return n, nil
	}
	if d.decodePacket() {
		return n, &d.view
	}
	return n, nil
}

// decodePacket decodes the parser's current access unit and releases it.
func (d *Decoder) decodePacket() bool {
	d.stats.Packets++
	size := int(d.parser.pkt.size)
	got, err := d.dec.decode(d.parser.pkt)
	d.parser.release()
	if err != nil {
		d.stats.Rejected++
		d.logger.Debug("Packet of %d bytes rejected: %v", size, err)
	}
	if got {
		d.stats.Frames++
		w, h := d.view.Size()
		d.logger.Debug("Frame %d decoded: %dx%d %s", d.stats.Frames, w, h, d.view.PixelFormat())
	}
	return got
}

// Drain returns the frames the decoder still holds at end of stream, one per
// call, and nil once there are none left. The first call flushes the parser
// and signals end of stream to the engine. After the last frame the decoder
// is reset and accepts a new stream through Parse.
func (d *Decoder) Drain() *Frame {
	if d.closed {
		return nil
	}
	switch d.drain {
	case drainNone:
		d.drain = drainParser
		d.logger.Debug("Draining decoder")
		fallthrough
	case drainParser:
		for {
			_, ready := d.parser.parse(d.dec.codec, nil)
			if !ready {
				break
			}
			if d.decodePacket() {
				return &d.view
			}
		}
		if err := d.dec.sendEOF(); err != nil {
			d.logger.Debug("End of stream rejected: %v", err)
		}
		d.drain = drainDecoder
		fallthrough
	case drainDecoder:
		got, err := d.dec.receive()
		if err != nil {
			d.logger.Debug("Drain stopped: %v", err)
		}
		if got {
			d.stats.Frames++
			return &d.view
		}
		d.reset()
		d.drain = drainDone
	}
	return nil
}

// reset returns parser and decoder to their initial state, keeping stats.
func (d *Decoder) reset() {
	d.dec.flush()
	if err := d.parser.reset(); err != nil {
		d.logger.Error("Failed to reset parser: %v", err)
	}
}

// ParseFrame implements ports.StreamDecoder.
func (d *Decoder) ParseFrame(data []byte) (int, ports.DecodedFrame) {
	n, f := d.Parse(data)
	if f == nil {
		return n, nil
	}
	return n, f
}

// DrainFrame implements ports.StreamDecoder.
func (d *Decoder) DrainFrame() ports.DecodedFrame {
	if f := d.Drain(); f != nil {
		return f
	}
	return nil
}

// Stats returns the counters accumulated so far.
func (d *Decoder) Stats() Stats {
	return d.stats
}

// Close releases parser and decoder. It is safe to call more than once.
func (d *Decoder) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.parser.close()
	d.dec.close()
	d.view.f = nil
}
