// Package main provides the CLI entry point for h264stream.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/h264stream/pkg/adapters/filesink"
	"github.com/user/h264stream/pkg/adapters/ggrenderer"
	"github.com/user/h264stream/pkg/adapters/h264decoder"
	"github.com/user/h264stream/pkg/adapters/logger"
	"github.com/user/h264stream/pkg/adapters/nullsink"
	"github.com/user/h264stream/pkg/adapters/osfilesystem"
	"github.com/user/h264stream/pkg/adapters/rtpsource"
	"github.com/user/h264stream/pkg/adapters/streamprobe"
	"github.com/user/h264stream/pkg/config"
	"github.com/user/h264stream/pkg/orchestrator"
	"github.com/user/h264stream/pkg/pcmstream"
	"github.com/user/h264stream/pkg/ports"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Decode   DecodeCmd   `cmd:"" help:"Decode H.264 elementary streams to packed RGB frames."`
	Listen   ListenCmd   `cmd:"" help:"Receive RTP/H.264 over UDP and decode it."`
	Probe    ProbeCmd    `cmd:"" help:"Show what the head of a stream contains."`
	Generate GenerateCmd `cmd:"" help:"Write a lossless test pattern stream."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`
}

// LogFlags are shared by every command that logs.
type LogFlags struct {
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// OutputFlags override the output section of the configuration file.
type OutputFlags struct {
	Config string `short:"c" type:"existingfile" help:"YAML configuration file."`

	OutputDir      *string `short:"o" help:"Directory for snapshots and raw dumps."`
	PixelOrder     *string `help:"Packed pixel order (bgr24, rgb24)."`
	ChunkSize      *int    `help:"Bytes read per parse loop."`
	MaxFrames      *int    `short:"n" help:"Stop after this many frames per stream (0 = unlimited)."`
	SnapshotEvery  *int    `short:"s" help:"Save every Nth frame as an image (0 = off)."`
	SnapshotFormat *string `help:"Snapshot image format (png, jpeg)."`
	Quality        *int    `short:"q" help:"JPEG snapshot quality (1-100)."`
	MaxWidth       *int    `help:"Scale snapshots down to this width (0 = original)."`
	Annotate       bool    `help:"Draw stream name, frame index and size onto snapshots."`
	Raw            bool    `help:"Append every frame to a raw packed file per stream."`
	Summary        *string `help:"Output execution summary to file (Markdown format)."`

	LogFlags `embed:""`
}

// DecodeCmd defines the decode subcommand.
type DecodeCmd struct {
	Inputs      []string `arg:"" optional:"" help:"Annex-B input files ('-' for standard input)."`
	Concurrency *int     `short:"j" help:"Streams decoded at once (0 = all)."`

	OutputFlags `embed:""`
}

// ListenCmd defines the listen subcommand.
type ListenCmd struct {
	Addr *string `short:"a" help:"UDP address to receive RTP on (default: :5004)."`
	Mode *int    `short:"m" help:"RTP packetization mode of the sender (0 or 1)."`
	Name *string `help:"Stream name used for outputs (default: rtp)."`

	OutputFlags `embed:""`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Input string `arg:"" help:"Annex-B input file ('-' for standard input)."`
	Bytes int    `default:"1048576" help:"Number of bytes to inspect."`

	LogFlags `embed:""`
}

// GenerateCmd defines the generate subcommand.
type GenerateCmd struct {
	Output    string `short:"o" required:"" help:"Output file ('-' for standard output)."`
	Width     int    `short:"W" default:"320" help:"Picture width (multiple of 16)."`
	Height    int    `short:"H" default:"240" help:"Picture height (multiple of 16)."`
	Frames    int    `short:"n" default:"30" help:"Number of frames."`
	FullRange bool   `help:"Signal full-range samples in the stream header."`

	LogFlags `embed:""`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("h264stream"),
		kong.Description(l10n.T("Decode H.264 streams to packed RGB frames.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// newLogger creates the application logger and aligns the decoding
// engine's own log output with it.
func (f LogFlags) newLogger(configured string) ports.Logger {
	level := ports.ParseLogLevel(configured)
	if f.LogLevel != nil {
		level = ports.ParseLogLevel(*f.LogLevel)
	}
	if f.Quiet {
		level = ports.LevelQuiet
	}
	h264decoder.SetLogLevel(level)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(level)
}

// load reads the configuration file, if any, and applies flag overrides.
func (f OutputFlags) load() (config.Config, error) {
	cfg := config.Defaults()
	if f.Config != "" {
		loaded, err := config.LoadFromFile(f.Config)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if f.OutputDir != nil {
		cfg.OutputDir = *f.OutputDir
	}
	if f.PixelOrder != nil {
		cfg.PixelOrder = *f.PixelOrder
	}
	if f.ChunkSize != nil {
		cfg.ChunkSize = *f.ChunkSize
	}
	if f.MaxFrames != nil {
		cfg.MaxFrames = *f.MaxFrames
	}
	if f.SnapshotEvery != nil {
		cfg.Snapshot.Every = *f.SnapshotEvery
	}
	if f.SnapshotFormat != nil {
		cfg.Snapshot.Format = *f.SnapshotFormat
	}
	if f.Quality != nil {
		cfg.Snapshot.Quality = *f.Quality
	}
	if f.MaxWidth != nil {
		cfg.Snapshot.MaxWidth = *f.MaxWidth
	}
	if f.Annotate {
		cfg.Snapshot.Annotate = true
	}
	if f.Raw {
		cfg.RawDump = true
	}
	if f.Summary != nil {
		cfg.SummaryPath = *f.Summary
	}
	return cfg, nil
}

// newSink creates the frame sink the configuration asks for.
func newSink(cfg config.Config, fs ports.FileSystem) (ports.FrameSink, error) {
	if !cfg.SinkEnabled() {
		return nullsink.New(), nil
	}
	if err := fs.MkdirAll(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return filesink.New(cfg.OutputDir, fs, ggrenderer.New(), cfg.ToSinkOptions()), nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// Run executes the decode command.
func (cmd *DecodeCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	if len(cmd.Inputs) > 0 {
		cfg.Inputs = cmd.Inputs
	}
	if cmd.Concurrency != nil {
		cfg.Concurrency = *cmd.Concurrency
	}
	if len(cfg.Inputs) == 0 {
		return errors.New(l10n.T("At least one input is required"))
	}

	log := cmd.newLogger(cfg.LogLevel)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	sink, err := newSink(cfg, fs)
	if err != nil {
		return err
	}

	orch := orchestrator.New(h264decoder.NewFactory(log), streamprobe.New(), sink, fs, log)
	oc := cfg.ToOrchestratorConfig()
	oc.Version = version

	_, err = orch.Run(ctx, oc)
	return err
}

// Run executes the listen command.
func (cmd *ListenCmd) Run() error {
	cfg, err := cmd.load()
	if err != nil {
		return err
	}
	if cmd.Addr != nil {
		cfg.RTP.Listen = *cmd.Addr
	}
	if cmd.Mode != nil {
		cfg.RTP.PacketizationMode = *cmd.Mode
	}
	if cmd.Name != nil {
		cfg.RTP.Name = *cmd.Name
	}

	log := cmd.newLogger(cfg.LogLevel)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	sink, err := newSink(cfg, fs)
	if err != nil {
		return err
	}

	src, err := rtpsource.Listen(cfg.RTP.Listen, cfg.RTP.PacketizationMode, log)
	if err != nil {
		return err
	}
	defer src.Close()

	orch := orchestrator.New(h264decoder.NewFactory(log), streamprobe.New(), sink, fs, log)
	oc := cfg.ToOrchestratorConfig()
	oc.Version = version

	_, err = orch.RunSource(ctx, cfg.RTP.Name, src, oc)

	stats := src.Stats()
	log.Info(l10n.F("RTP packets: %d, access units: %d, dropped: %d", stats.Packets, stats.AccessUnits, stats.Dropped))
	return err
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	log := cmd.newLogger("info")

	r, err := osfilesystem.New().Open(cmd.Input)
	if err != nil {
		return err
	}
	defer r.Close()

	head, err := io.ReadAll(io.LimitReader(r, int64(cmd.Bytes)))
	if err != nil {
		return fmt.Errorf("read %s: %w", cmd.Input, err)
	}
	log.Debug("Probing %d bytes of %s", len(head), cmd.Input)

	info, err := streamprobe.New().Probe(head)
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("Resolution: %dx%d", info.Width, info.Height))
	fmt.Println(l10n.F("Profile: %d, level %d", info.Profile, info.Level))
	fmt.Println(l10n.F("Full range: %t", info.FullRange))
	fmt.Println(l10n.F("B-frames: %t", info.Reordered()))
	fmt.Println(l10n.T("NAL units:"))
	for _, name := range slices.Sorted(maps.Keys(info.NALUnits)) {
		fmt.Printf("  %-8s %d\n", name, info.NALUnits[name])
	}
	if len(info.Slices) > 0 {
		fmt.Println(l10n.T("Slices:"))
		for _, name := range slices.Sorted(maps.Keys(info.Slices)) {
			fmt.Printf("  %-8s %d\n", name, info.Slices[name])
		}
	}
	return nil
}

// Run executes the generate command.
func (cmd *GenerateCmd) Run() error {
	log := cmd.newLogger("info")

	w, err := osfilesystem.New().Create(cmd.Output)
	if err != nil {
		return err
	}

	enc := &pcmstream.Encoder{FullRange: cmd.FullRange}
	for i := 0; i < cmd.Frames; i++ {
		au, err := enc.Encode(pcmstream.TestPattern(cmd.Width, cmd.Height, i))
		if err != nil {
			w.Close()
			return err
		}
		if _, err := w.Write(au); err != nil {
			w.Close()
			return fmt.Errorf("write %s: %w", cmd.Output, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cmd.Output, err)
	}

	log.Info(l10n.F("Wrote %d frames of %dx%d to %s", cmd.Frames, cmd.Width, cmd.Height, cmd.Output))
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("h264stream version %s", version))
	fmt.Println(h264decoder.EngineVersion())
	return nil
}
