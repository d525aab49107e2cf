// Package filesink writes decoded frames to files: periodic snapshot images
// and optional raw packed dumps.
package filesink

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/user/h264stream/pkg/adapters/ggrenderer"
	"github.com/user/h264stream/pkg/ports"
)

// Options controls what the sink writes.
type Options struct {
	// Format and Quality select the snapshot encoding.
	Format  ports.ImageFormat
	Quality int
	// Every writes a snapshot of every Nth frame, starting with the first.
	// Zero disables snapshots.
	Every int
	// MaxWidth scales snapshots down to at most this width. Zero keeps the size.
	MaxWidth int
	// Annotate draws stream name, frame index and size onto snapshots.
	Annotate bool
	// Raw appends every frame, without row padding, to <stream>.<order>.
	Raw bool
}

// Sink saves frames below a base directory.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	opts     Options

	mu  sync.Mutex
	raw map[string]io.WriteCloser
}

// New creates a new Sink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, opts Options) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		opts:     opts,
		raw:      make(map[string]io.WriteCloser),
	}
}

// Enabled returns true if snapshots or raw dumps are configured.
func (s *Sink) Enabled() bool {
	return s.opts.Every > 0 || s.opts.Raw
}

// SaveFrame writes the frame according to the options.
func (s *Sink) SaveFrame(stream string, index int, frame ports.RGBFrame) error {
	if s.opts.Raw {
		if err := s.writeRaw(stream, frame); err != nil {
			return fmt.Errorf("write raw frame %d: %w", index, err)
		}
	}
	if s.opts.Every > 0 && index%s.opts.Every == 0 {
		if err := s.saveSnapshot(stream, index, frame); err != nil {
			return fmt.Errorf("save snapshot %d: %w", index, err)
		}
	}
	return nil
}

// Finish closes the raw dump of the stream, if any.
func (s *Sink) Finish(stream string) error {
	s.mu.Lock()
	w, ok := s.raw[stream]
	delete(s.raw, stream)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return w.Close()
}

func (s *Sink) saveSnapshot(stream string, index int, frame ports.RGBFrame) error {
	var img image.Image = s.renderer.ToImage(frame)
	if w, h := ggrenderer.FitWidth(frame.Width, frame.Height, s.opts.MaxWidth); w != frame.Width {
		img = s.renderer.ResizeImage(img, w, h)
	}
	if s.opts.Annotate {
		img = s.renderer.Annotate(img, fmt.Sprintf("%s #%d %dx%d", stream, index, frame.Width, frame.Height))
	}

	data, err := s.renderer.EncodeImage(img, s.opts.Format, s.opts.Quality)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("frame-%06d.%s", index, s.opts.Format.Extension())
	return s.fs.WriteFile(filepath.Join(s.baseDir, SafeName(stream), name), data)
}

func (s *Sink) writeRaw(stream string, frame ports.RGBFrame) error {
	w, err := s.rawWriter(stream, frame.Order)
	if err != nil {
		return err
	}
	row := frame.Width * 3
	if frame.Stride == row {
		_, err := w.Write(frame.Pix[:row*frame.Height])
		return err
	}
	for y := 0; y < frame.Height; y++ {
		if _, err := w.Write(frame.Pix[y*frame.Stride : y*frame.Stride+row]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) rawWriter(stream string, order ports.PixelOrder) (io.WriteCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.raw[stream]; ok {
		return w, nil
	}
	path := filepath.Join(s.baseDir, SafeName(stream)+"."+string(order))
	w, err := s.fs.Create(path)
	if err != nil {
		return nil, err
	}
	s.raw[stream] = w
	return w, nil
}

// SafeName turns a stream name into a single path element.
func SafeName(stream string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, stream)
	name = strings.Trim(name, ".")
	if name == "" {
		return "stream"
	}
	return name
}

// Ensure Sink implements ports.FrameSink
var _ ports.FrameSink = (*Sink)(nil)
