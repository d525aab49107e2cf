package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/h264stream/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.ChunkSize != 4096 {
		t.Errorf("expected chunk size 4096, got %d", cfg.ChunkSize)
	}
	if cfg.PixelOrder != "bgr24" {
		t.Errorf("expected bgr24, got %q", cfg.PixelOrder)
	}
	if cfg.RTP.PacketizationMode != 1 {
		t.Errorf("expected packetization mode 1, got %d", cfg.RTP.PacketizationMode)
	}
	if cfg.SinkEnabled() {
		t.Error("expected no frame output by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h264stream.yaml")
	content := `
inputs:
  - cam1.h264
  - cam2.h264
chunk_size: 188
pixel_order: rgb24
snapshot:
  every: 25
  format: jpeg
  max_width: 320
rtp:
  listen: 127.0.0.1:6000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "cam2.h264" {
		t.Errorf("unexpected inputs %v", cfg.Inputs)
	}
	if cfg.ChunkSize != 188 {
		t.Errorf("expected chunk size 188, got %d", cfg.ChunkSize)
	}
	if cfg.Snapshot.Every != 25 || cfg.Snapshot.MaxWidth != 320 {
		t.Errorf("unexpected snapshot config %+v", cfg.Snapshot)
	}
	// Values not in the file keep their defaults.
	if cfg.Snapshot.Quality != 90 {
		t.Errorf("expected default quality 90, got %d", cfg.Snapshot.Quality)
	}
	if cfg.RTP.Listen != "127.0.0.1:6000" || cfg.RTP.Name != "rtp" {
		t.Errorf("unexpected RTP config %+v", cfg.RTP)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("inputs: [unclosed"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestToSinkOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Snapshot.Every = 10
	cfg.Snapshot.Format = "jpg"
	cfg.RawDump = true

	opts := cfg.ToSinkOptions()

	if opts.Format != ports.FormatJPEG || opts.Every != 10 || !opts.Raw || opts.Quality != 90 {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestToOrchestratorConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Inputs = []string{"a.h264"}
	cfg.PixelOrder = "rgb24"
	cfg.MaxFrames = 5
	cfg.SummaryPath = "summary.md"

	oc := cfg.ToOrchestratorConfig()

	if oc.PixelOrder != ports.OrderRGB24 {
		t.Errorf("expected rgb24, got %s", oc.PixelOrder)
	}
	if oc.MaxFrames != 5 || oc.SummaryPath != "summary.md" || len(oc.Inputs) != 1 {
		t.Errorf("unexpected orchestrator config %+v", oc)
	}
	if oc.OutputDir != "" || oc.SnapshotFormat != "" {
		t.Errorf("expected no output settings without frame output, got %+v", oc)
	}
	if oc.ProbeBytes == 0 {
		t.Error("expected the default probe size to be kept")
	}

	cfg.Snapshot.Every = 3
	oc = cfg.ToOrchestratorConfig()
	if oc.SnapshotFormat != "png" || oc.SnapshotEvery != 3 || oc.OutputDir != "./frames" {
		t.Errorf("unexpected snapshot settings %+v", oc)
	}
}
