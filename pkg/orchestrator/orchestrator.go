// Package orchestrator coordinates decoding of one or more streams.
package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"
	"golang.org/x/sync/errgroup"

	"github.com/user/h264stream/pkg/pipeline"
	"github.com/user/h264stream/pkg/ports"
	"github.com/user/h264stream/pkg/stages/decode"
	"github.com/user/h264stream/pkg/summarizer"
)

// ErrNoInputs is returned when Run is called without inputs.
var ErrNoInputs = errors.New("orchestrator: no inputs")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input
	Inputs    []string
	ChunkSize int
	MaxFrames int

	// Concurrency limits how many streams are decoded at once (0: all).
	Concurrency int

	// ProbeBytes is how much of each stream is inspected before decoding.
	ProbeBytes int

	// Output
	PixelOrder  ports.PixelOrder
	SummaryPath string
	Version     string

	// Recorded in the summary only
	SnapshotFormat string
	SnapshotEvery  int
	RawDump        bool
	OutputDir      string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ChunkSize:  pipeline.DefaultChunkSize,
		ProbeBytes: 64 * 1024,
		PixelOrder: ports.OrderBGR24,
	}
}

// Orchestrator runs one decode stage per stream.
type Orchestrator struct {
	factory ports.DecoderFactory
	prober  ports.StreamProber
	sink    ports.FrameSink
	fs      ports.FileSystem
	logger  ports.Logger
}

// New creates a new Orchestrator.
func New(
	factory ports.DecoderFactory,
	prober ports.StreamProber,
	sink ports.FrameSink,
	fs ports.FileSystem,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		factory: factory,
		prober:  prober,
		sink:    sink,
		fs:      fs,
		logger:  logger,
	}
}

// StreamResult is the outcome of one stream.
type StreamResult struct {
	Info   ports.StreamInfo
	Decode pipeline.DecodeResult
	Err    error
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	Streams  []StreamResult
	Duration time.Duration
}

// Frames returns the number of frames over all streams.
func (r RunResult) Frames() int {
	n := 0
	for _, s := range r.Streams {
		n += s.Decode.Frames
	}
	return n
}

// Run decodes every input of config concurrently. A failing stream does not
// stop the others; the returned error joins all stream errors.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	if len(config.Inputs) == 0 {
		return RunResult{}, ErrNoInputs
	}
	start := time.Now()
	o.logger.Info(l10n.F("Decoding %d streams", len(config.Inputs)))

	names := streamNames(config.Inputs)
	results := make([]StreamResult, len(config.Inputs))

	g, gctx := errgroup.WithContext(ctx)
	if config.Concurrency > 0 {
		g.SetLimit(config.Concurrency)
	}
	for i, path := range config.Inputs {
		g.Go(func() error {
			res := o.decodeFile(gctx, path, names[i], config)
			results[i] = res
			if res.Err != nil {
				o.logger.Error(l10n.F("Stream %s failed: %s", names[i], res.Err))
			}
			return nil
		})
	}
	_ = g.Wait()

	result := RunResult{Streams: results, Duration: time.Since(start)}
	return result, o.finish(ctx, config, result)
}

// RunSource decodes a live feed as a single stream named name. It returns
// when the feed ends, the frame limit is reached or ctx is cancelled. Frames
// still held by the decoder are drained on cancellation.
func (o *Orchestrator) RunSource(ctx context.Context, name string, src ports.AccessUnitSource, config Config) (RunResult, error) {
	start := time.Now()
	srcCtx, stopSource := context.WithCancel(ctx)
	defer stopSource()

	pr, pw := io.Pipe()
	var (
		wg     sync.WaitGroup
		srcErr error
		info   ports.StreamInfo
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		first := true
		err := src.Run(srcCtx, func(au []byte) error {
			if first {
				info = o.probe(name, au)
				first = false
			}
			_, err := pw.Write(au)
			return err
		})
		if errors.Is(err, io.ErrClosedPipe) {
			err = nil
		}
		srcErr = err
		pw.CloseWithError(err)
	}()

	res := o.decodeStream(context.WithoutCancel(ctx), name, pr, config)
	stopSource()
	pr.Close()
	wg.Wait()

	res.Info = info
	if res.Err == nil && srcErr != nil {
		res.Err = fmt.Errorf("source %s: %w", name, srcErr)
	}
	if res.Err != nil {
		o.logger.Error(l10n.F("Stream %s failed: %s", name, res.Err))
	}

	result := RunResult{Streams: []StreamResult{res}, Duration: time.Since(start)}
	return result, o.finish(ctx, config, result)
}

func (o *Orchestrator) decodeFile(ctx context.Context, path, name string, config Config) StreamResult {
	r, err := o.fs.Open(path)
	if err != nil {
		return StreamResult{Decode: pipeline.DecodeResult{Name: name}, Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer r.Close()

	probeBytes := config.ProbeBytes
	if probeBytes <= 0 {
		probeBytes = DefaultConfig().ProbeBytes
	}
	br := bufio.NewReaderSize(r, probeBytes)
	head, err := br.Peek(probeBytes)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return StreamResult{Decode: pipeline.DecodeResult{Name: name}, Err: fmt.Errorf("read %s: %w", path, err)}
	}
	info := o.probe(name, head)

	res := o.decodeStream(ctx, name, br, config)
	res.Info = info
	return res
}

// decodeStream runs a decode stage over r with a fresh decoder and converter.
func (o *Orchestrator) decodeStream(ctx context.Context, name string, r io.Reader, config Config) StreamResult {
	res := StreamResult{Decode: pipeline.DecodeResult{Name: name}}

	dec, err := o.factory.NewDecoder()
	if err != nil {
		res.Err = fmt.Errorf("create decoder for %s: %w", name, err)
		return res
	}
	defer dec.Close()

	conv, err := o.factory.NewConverter(config.PixelOrder)
	if err != nil {
		res.Err = fmt.Errorf("create converter for %s: %w", name, err)
		return res
	}
	defer conv.Close()

	stage := decode.New(dec, conv, o.sink, o.logger)
	res.Decode, res.Err = stage.Execute(ctx, pipeline.DecodeInput{
		Name:      name,
		Reader:    r,
		ChunkSize: config.ChunkSize,
		MaxFrames: config.MaxFrames,
	})
	return res
}

// probe inspects the head of a stream. Failures only affect the summary.
func (o *Orchestrator) probe(name string, head []byte) ports.StreamInfo {
	if len(head) == 0 {
		return ports.StreamInfo{}
	}
	info, err := o.prober.Probe(head)
	if err != nil {
		o.logger.Debug("Probe of %s failed: %v", name, err)
		return ports.StreamInfo{}
	}
	o.logger.Debug("Probed %s: %dx%d profile %d level %d", name, info.Width, info.Height, info.Profile, info.Level)
	if info.Reordered() {
		o.logger.Info(l10n.F("%s has B-frames, output lags input", name))
	}
	return info
}

// finish writes the summary and joins the stream errors.
func (o *Orchestrator) finish(ctx context.Context, config Config, result RunResult) error {
	var errs []error
	for _, s := range result.Streams {
		if s.Err != nil && !(errors.Is(s.Err, context.Canceled) && ctx.Err() != nil) {
			errs = append(errs, s.Err)
		}
	}

	o.logger.Info(l10n.F("Decoded %d frames in %d ms", result.Frames(), result.Duration.Milliseconds()))

	if config.SummaryPath != "" {
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(func(s string) string { return l10n.T(s) }),
			summarizer.WithVersion(config.Version),
		)
		w := summarizer.NewWriter(formatter, o.fs)
		if err := w.Write(config.SummaryPath, BuildSummary(config, result)); err != nil {
			o.logger.Error(l10n.F("Failed to write summary: %s", err))
			errs = append(errs, fmt.Errorf("write summary: %w", err))
		} else {
			o.logger.Info(l10n.F("Summary saved to %s", config.SummaryPath))
		}
	}

	return errors.Join(errs...)
}

// BuildSummary converts a run result into a Summary.
func BuildSummary(config Config, result RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().WithSettings(summarizer.Settings{
		PixelOrder:     string(config.PixelOrder),
		ChunkSize:      chunkSize(config),
		SnapshotFormat: config.SnapshotFormat,
		SnapshotEvery:  config.SnapshotEvery,
		RawDump:        config.RawDump,
		OutputDir:      config.OutputDir,
	})
	for _, s := range result.Streams {
		info := summarizer.StreamInfo{
			Name:            s.Decode.Name,
			Profile:         s.Info.Profile,
			Level:           s.Info.Level,
			FullRange:       s.Info.FullRange,
			Reordered:       s.Info.Reordered(),
			Width:           s.Decode.Width,
			Height:          s.Decode.Height,
			Frames:          s.Decode.Frames,
			ConvertFailures: s.Decode.ConvertFailures,
			GeometryChanges: s.Decode.GeometryChanges,
			Packets:         s.Decode.Decoder.Packets,
			Rejected:        s.Decode.Decoder.Rejected,
			BytesRead:       s.Decode.BytesRead,
			DurationMs:      s.Decode.Duration.Milliseconds(),
		}
		if s.Err != nil {
			info.Err = s.Err.Error()
		}
		b.AddStream(info)
	}
	return b.Build()
}

func chunkSize(config Config) int {
	if config.ChunkSize > 0 {
		return config.ChunkSize
	}
	return pipeline.DefaultChunkSize
}

// streamNames derives unique stream names from input paths.
func streamNames(inputs []string) []string {
	names := make([]string, len(inputs))
	seen := make(map[string]int)
	for i, path := range inputs {
		name := filepath.Base(path)
		if path == "-" {
			name = "stdin"
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		names[i] = name
	}
	return names
}
