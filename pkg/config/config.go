// Package config provides configuration loading and management.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/h264stream/pkg/adapters/filesink"
	"github.com/user/h264stream/pkg/orchestrator"
	"github.com/user/h264stream/pkg/pipeline"
	"github.com/user/h264stream/pkg/ports"
)

// Config represents the full configuration for h264stream.
type Config struct {
	// Input
	Inputs      []string `yaml:"inputs"`
	ChunkSize   int      `yaml:"chunk_size"`
	MaxFrames   int      `yaml:"max_frames"`
	Concurrency int      `yaml:"concurrency"`

	// Output
	OutputDir   string         `yaml:"output_dir"`
	PixelOrder  string         `yaml:"pixel_order"`
	Snapshot    SnapshotConfig `yaml:"snapshot"`
	RawDump     bool           `yaml:"raw_dump"`
	SummaryPath string         `yaml:"summary"`

	// Live input
	RTP RTPConfig `yaml:"rtp"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// SnapshotConfig controls periodic snapshot images.
type SnapshotConfig struct {
	// Every writes every Nth frame (0 disables snapshots).
	Every    int    `yaml:"every"`
	Format   string `yaml:"format"`
	Quality  int    `yaml:"quality"`
	MaxWidth int    `yaml:"max_width"`
	Annotate bool   `yaml:"annotate"`
}

// RTPConfig configures the RTP listener.
type RTPConfig struct {
	Listen            string `yaml:"listen"`
	PacketizationMode int    `yaml:"packetization_mode"`
	Name              string `yaml:"name"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		ChunkSize: pipeline.DefaultChunkSize,

		OutputDir:  "./frames",
		PixelOrder: string(ports.OrderBGR24),
		Snapshot: SnapshotConfig{
			Format:  "png",
			Quality: 90,
		},

		RTP: RTPConfig{
			Listen:            ":5004",
			PacketizationMode: 1,
			Name:              "rtp",
		},

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// SinkEnabled reports whether any frame output is configured.
func (c Config) SinkEnabled() bool {
	return c.Snapshot.Every > 0 || c.RawDump
}

// ToSinkOptions converts Config to filesink.Options.
func (c Config) ToSinkOptions() filesink.Options {
	return filesink.Options{
		Format:   ports.ParseImageFormat(c.Snapshot.Format),
		Quality:  c.Snapshot.Quality,
		Every:    c.Snapshot.Every,
		MaxWidth: c.Snapshot.MaxWidth,
		Annotate: c.Snapshot.Annotate,
		Raw:      c.RawDump,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.Inputs = c.Inputs
	oc.ChunkSize = c.ChunkSize
	oc.MaxFrames = c.MaxFrames
	oc.Concurrency = c.Concurrency
	oc.PixelOrder = ports.ParsePixelOrder(c.PixelOrder)
	oc.SummaryPath = c.SummaryPath
	oc.RawDump = c.RawDump
	if c.SinkEnabled() {
		oc.OutputDir = c.OutputDir
	}
	if c.Snapshot.Every > 0 {
		oc.SnapshotFormat = ports.ParseImageFormat(c.Snapshot.Format).Extension()
		oc.SnapshotEvery = c.Snapshot.Every
	}
	return oc
}
