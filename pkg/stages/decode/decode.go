// Package decode implements the streaming decode stage.
//
// The stage reads an elementary stream in chunks of arbitrary size and
// feeds each chunk to the decoder until it is used up. Every frame that
// comes out is converted into a single reusable buffer and handed to the
// sink before the next Parse call, since decoded frames are only valid
// until then.
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/user/h264stream/pkg/pipeline"
	"github.com/user/h264stream/pkg/ports"
)

// ErrNoReader is returned when the input has no stream to read.
var ErrNoReader = errors.New("decode: input has no reader")

// maxStalls is how many Parse calls in a row may neither consume bytes nor
// return a frame before the rest of the chunk is dropped.
const maxStalls = 3

// Stage decodes one stream with a dedicated decoder and converter.
type Stage struct {
	decoder   ports.StreamDecoder
	converter ports.FrameConverter
	sink      ports.FrameSink
	logger    ports.Logger
}

// New creates a new decode stage. The stage does not close the decoder or
// the converter.
func New(decoder ports.StreamDecoder, converter ports.FrameConverter, sink ports.FrameSink, logger ports.Logger) *Stage {
	return &Stage{
		decoder:   decoder,
		converter: converter,
		sink:      sink,
		logger:    logger.WithComponent("decode"),
	}
}

// run holds the per-stream state of one Execute call.
type run struct {
	input  pipeline.DecodeInput
	result pipeline.DecodeResult
	buf    []byte
}

func (r *run) full() bool {
	return r.input.MaxFrames > 0 && r.result.Frames >= r.input.MaxFrames
}

// Execute decodes the stream until EOF, the frame limit or cancellation.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (result pipeline.DecodeResult, err error) {
	if input.Reader == nil {
		return pipeline.DecodeResult{Name: input.Name}, ErrNoReader
	}
	chunkSize := input.ChunkSize
	if chunkSize <= 0 {
		chunkSize = pipeline.DefaultChunkSize
	}

	start := time.Now()
	r := &run{input: input, result: pipeline.DecodeResult{Name: input.Name}}
	s.logger.Info("Decoding %s", input.Name)

	defer func() {
		if ferr := s.sink.Finish(input.Name); ferr != nil && err == nil {
			err = fmt.Errorf("finish %s: %w", input.Name, ferr)
		}
		r.result.Decoder = s.decoder.Stats()
		r.result.Duration = time.Since(start)
		result = r.result
	}()

	chunk := make([]byte, chunkSize)
	for !r.full() {
		if err := ctx.Err(); err != nil {
			return r.result, err
		}
		n, readErr := input.Reader.Read(chunk)
		if n > 0 {
			r.result.BytesRead += int64(n)
			if err := s.feed(r, chunk[:n]); err != nil {
				return r.result, err
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return r.result, fmt.Errorf("read %s: %w", input.Name, readErr)
		}
	}

	if !r.full() {
		if err := s.finish(ctx, r); err != nil {
			return r.result, err
		}
	}

	s.logger.Info("Decoded %s: %d frames from %d bytes in %d ms",
		input.Name, r.result.Frames, r.result.BytesRead, time.Since(start).Milliseconds())
	return r.result, nil
}

// feed submits one chunk, re-submitting the unconsumed tail until it is empty.
func (s *Stage) feed(r *run, data []byte) error {
	stalls := 0
	for len(data) > 0 && !r.full() {
		consumed, frame := s.decoder.ParseFrame(data)
		if consumed > len(data) {
			consumed = len(data)
		}
		if consumed > 0 {
			data = data[consumed:]
		}
		if frame != nil {
			if err := s.emit(r, frame); err != nil {
				return err
			}
		}
		if consumed <= 0 && frame == nil {
			stalls++
			if stalls > maxStalls {
				s.logger.Warn("Parser stalled on %s, dropping %d bytes", r.input.Name, len(data))
				return nil
			}
			continue
		}
		stalls = 0
	}
	return nil
}

// finish flushes the parser with empty input and drains held frames.
func (s *Stage) finish(ctx context.Context, r *run) error {
	for !r.full() {
		_, frame := s.decoder.ParseFrame(nil)
		if frame == nil {
			break
		}
		if err := s.emit(r, frame); err != nil {
			return err
		}
	}
	for !r.full() {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := s.decoder.DrainFrame()
		if frame == nil {
			break
		}
		if err := s.emit(r, frame); err != nil {
			return err
		}
	}
	return nil
}

// emit converts frame into the run's buffer and hands it to the sink.
// Conversion failures drop the frame; sink failures stop the stream.
func (s *Stage) emit(r *run, frame ports.DecodedFrame) error {
	w, h := frame.Size()
	need := s.converter.PredictSize(w, h)
	if need <= 0 {
		r.result.ConvertFailures++
		s.logger.Warn("Frame of %s has no convertible size: %dx%d", r.input.Name, w, h)
		return nil
	}

	if w != r.result.Width || h != r.result.Height {
		if r.result.Width != 0 {
			r.result.GeometryChanges++
			s.logger.Info("Geometry of %s changed to %dx%d", r.input.Name, w, h)
		}
		r.result.Width, r.result.Height = w, h
	}
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}

	rgb, err := s.converter.ConvertFrame(frame, r.buf[:need])
	if err != nil {
		r.result.ConvertFailures++
		s.logger.Warn("Frame %d of %s not converted: %v", r.result.Frames, r.input.Name, err)
		return nil
	}

	index := r.result.Frames
	if s.sink.Enabled() {
		if err := s.sink.SaveFrame(r.input.Name, index, rgb); err != nil {
			return fmt.Errorf("save frame %d of %s: %w", index, r.input.Name, err)
		}
	}
	r.result.Frames++
	return nil
}
