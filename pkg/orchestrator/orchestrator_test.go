package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/h264stream/pkg/adapters/logger"
	"github.com/user/h264stream/pkg/mocks"
	"github.com/user/h264stream/pkg/ports"
)

type fixture struct {
	factory *mocks.DecoderFactory
	prober  *mocks.StreamProber
	sink    *mocks.FrameSink
	fs      *mocks.FileSystem
}

func newFixture() *fixture {
	return &fixture{
		factory: &mocks.DecoderFactory{Template: mocks.StreamDecoder{FrameEvery: 100, Width: 4, Height: 2}},
		prober:  &mocks.StreamProber{},
		sink:    mocks.NewFrameSink(true),
		fs:      mocks.NewFileSystem(),
	}
}

func (f *fixture) orchestrator() *Orchestrator {
	return New(f.factory, f.prober, f.sink, f.fs, logger.NewNoop())
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture()
	f.fs.WriteFile("in/a.h264", make([]byte, 1000))
	f.fs.WriteFile("in/b.h264", make([]byte, 500))

	config := DefaultConfig()
	config.Inputs = []string{"in/a.h264", "in/b.h264"}
	config.ChunkSize = 64
	config.SummaryPath = "out/summary.md"

	result, err := f.orchestrator().Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(result.Streams))
	}
	if result.Streams[0].Decode.Name != "a.h264" || result.Streams[0].Decode.Frames != 10 {
		t.Errorf("unexpected first stream: %+v", result.Streams[0].Decode)
	}
	if result.Streams[1].Decode.Name != "b.h264" || result.Streams[1].Decode.Frames != 5 {
		t.Errorf("unexpected second stream: %+v", result.Streams[1].Decode)
	}
	if result.Frames() != 15 {
		t.Errorf("expected 15 frames, got %d", result.Frames())
	}

	if len(f.sink.FramesOf("a.h264")) != 10 || len(f.sink.FramesOf("b.h264")) != 5 {
		t.Error("expected frames of both streams in the sink")
	}
	if len(f.factory.Decoders) != 2 || len(f.factory.Converters) != 2 {
		t.Fatalf("expected one decoder and converter per stream, got %d and %d",
			len(f.factory.Decoders), len(f.factory.Converters))
	}
	for i, d := range f.factory.Decoders {
		if !d.Closed || !f.factory.Converters[i].Closed {
			t.Errorf("expected decoder and converter %d to be closed", i)
		}
	}
	if f.prober.Calls != 2 {
		t.Errorf("expected 2 probes, got %d", f.prober.Calls)
	}

	data, ok := f.fs.GetFile("out/summary.md")
	if !ok {
		t.Fatal("expected summary to be written")
	}
	for _, want := range []string{"a.h264", "b.h264", "| 15 |"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected summary to contain %q", want)
		}
	}
}

func TestOrchestrator_RunNoInputs(t *testing.T) {
	_, err := newFixture().orchestrator().Run(context.Background(), DefaultConfig())
	if !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
}

func TestOrchestrator_RunMissingInput(t *testing.T) {
	f := newFixture()
	f.fs.WriteFile("ok.h264", make([]byte, 300))

	config := DefaultConfig()
	config.Inputs = []string{"missing.h264", "ok.h264"}

	result, err := f.orchestrator().Run(context.Background(), config)
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if result.Streams[0].Err == nil {
		t.Error("expected the missing stream to carry its error")
	}
	if result.Streams[1].Err != nil || result.Streams[1].Decode.Frames != 3 {
		t.Errorf("expected the other stream to decode, got %+v", result.Streams[1])
	}
}

func TestOrchestrator_RunFactoryError(t *testing.T) {
	f := newFixture()
	f.factory.Err = errors.New("no codec")
	f.fs.WriteFile("a.h264", make([]byte, 10))

	config := DefaultConfig()
	config.Inputs = []string{"a.h264"}

	_, err := f.orchestrator().Run(context.Background(), config)
	if err == nil || !strings.Contains(err.Error(), "no codec") {
		t.Fatalf("expected factory error, got %v", err)
	}
}

func TestOrchestrator_RunProbeInfo(t *testing.T) {
	f := newFixture()
	f.fs.WriteFile("a.h264", []byte("head-of-stream"))
	var probed []byte
	f.prober.ProbeFunc = func(data []byte) (ports.StreamInfo, error) {
		probed = append([]byte(nil), data...)
		return ports.StreamInfo{Width: 64, Height: 48, Profile: 66, Level: 40}, nil
	}

	config := DefaultConfig()
	config.Inputs = []string{"a.h264"}

	result, err := f.orchestrator().Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(probed) != "head-of-stream" {
		t.Errorf("expected the prober to see the stream head, got %q", probed)
	}
	if info := result.Streams[0].Info; info.Profile != 66 || info.Width != 64 {
		t.Errorf("unexpected stream info %+v", info)
	}
	if result.Streams[0].Decode.BytesRead != int64(len("head-of-stream")) {
		t.Errorf("expected probing not to consume input, read %d", result.Streams[0].Decode.BytesRead)
	}
}

func TestOrchestrator_RunProbeFailureIgnored(t *testing.T) {
	f := newFixture()
	f.fs.WriteFile("a.h264", make([]byte, 200))
	f.prober.ProbeFunc = func(data []byte) (ports.StreamInfo, error) {
		return ports.StreamInfo{}, errors.New("no SPS")
	}

	config := DefaultConfig()
	config.Inputs = []string{"a.h264"}

	result, err := f.orchestrator().Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Streams[0].Decode.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", result.Streams[0].Decode.Frames)
	}
}

func TestStreamNames(t *testing.T) {
	got := streamNames([]string{"a/cam.h264", "b/cam.h264", "-", "c/other.264"})
	want := []string{"cam.h264", "cam.h264-2", "stdin", "other.264"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func accessUnits(n, size int) [][]byte {
	aus := make([][]byte, n)
	for i := range aus {
		aus[i] = bytes.Repeat([]byte{byte(i)}, size)
	}
	return aus
}

func TestOrchestrator_RunSource(t *testing.T) {
	f := newFixture()
	src := &mocks.AccessUnitSource{AccessUnits: accessUnits(5, 100)}

	result, err := f.orchestrator().RunSource(context.Background(), "rtp", src, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Streams[0].Decode.Frames != 5 {
		t.Errorf("expected 5 frames, got %d", result.Streams[0].Decode.Frames)
	}
	if f.prober.Calls != 1 {
		t.Errorf("expected the first access unit to be probed once, got %d", f.prober.Calls)
	}
	if len(f.sink.Finished) != 1 || f.sink.Finished[0] != "rtp" {
		t.Errorf("expected the rtp stream to be finished, got %v", f.sink.Finished)
	}
}

func TestOrchestrator_RunSourceMaxFrames(t *testing.T) {
	f := newFixture()
	src := &mocks.AccessUnitSource{AccessUnits: accessUnits(10, 100), Block: true}

	config := DefaultConfig()
	config.MaxFrames = 3

	done := make(chan struct{})
	var (
		result RunResult
		err    error
	)
	go func() {
		result, err = f.orchestrator().RunSource(context.Background(), "rtp", src, config)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("RunSource did not stop at the frame limit")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Streams[0].Decode.Frames != 3 {
		t.Errorf("expected 3 frames, got %d", result.Streams[0].Decode.Frames)
	}
}

func TestOrchestrator_RunSourceCancelDrains(t *testing.T) {
	f := newFixture()
	f.factory.Template.Held = 2
	src := &mocks.AccessUnitSource{AccessUnits: accessUnits(2, 100), Block: true}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := f.orchestrator().RunSource(ctx, "rtp", src, DefaultConfig())
	if err != nil {
		t.Fatalf("expected cancellation to end the stream cleanly, got %v", err)
	}
	if result.Streams[0].Decode.Frames != 4 {
		t.Errorf("expected 2 frames plus 2 drained, got %d", result.Streams[0].Decode.Frames)
	}
}

func TestOrchestrator_RunSourceError(t *testing.T) {
	f := newFixture()
	src := &mocks.AccessUnitSource{AccessUnits: accessUnits(1, 100), Err: errors.New("socket closed")}

	result, err := f.orchestrator().RunSource(context.Background(), "rtp", src, DefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "socket closed") {
		t.Fatalf("expected source error, got %v", err)
	}
	if result.Streams[0].Decode.Frames != 1 {
		t.Errorf("expected frames before the error to be kept, got %d", result.Streams[0].Decode.Frames)
	}
}

func TestBuildSummary(t *testing.T) {
	config := DefaultConfig()
	config.SnapshotFormat = "png"
	config.SnapshotEvery = 10

	result := RunResult{Streams: []StreamResult{
		{Info: ports.StreamInfo{Profile: 100, Level: 41, Slices: map[string]int{"B": 2}}},
		{Err: errors.New("broken")},
	}}
	result.Streams[0].Decode.Name = "a"
	result.Streams[0].Decode.Frames = 7
	result.Streams[0].Decode.Decoder.Packets = 8

	s := BuildSummary(config, result)

	if s.Settings.PixelOrder != "bgr24" || s.Settings.SnapshotEvery != 10 {
		t.Errorf("unexpected settings %+v", s.Settings)
	}
	if st := s.Streams[0]; st.Name != "a" || st.Frames != 7 || st.Packets != 8 || !st.Reordered || st.Level != 41 {
		t.Errorf("unexpected stream %+v", st)
	}
	if s.Streams[1].Err != "broken" {
		t.Errorf("expected error text, got %q", s.Streams[1].Err)
	}
}
