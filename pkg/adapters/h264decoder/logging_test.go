package h264decoder

import (
	"strings"
	"testing"

	"github.com/user/h264stream/pkg/ports"
)

func TestSetLogLevel(t *testing.T) {
	previous := LogLevel()
	defer SetLogLevel(previous)

	tests := []struct {
		level    ports.LogLevel
		expected ports.LogLevel
	}{
		{ports.LevelDebug, ports.LevelDebug},
		{ports.LevelInfo, ports.LevelWarn},
		{ports.LevelWarn, ports.LevelWarn},
		{ports.LevelError, ports.LevelError},
		{ports.LevelQuiet, ports.LevelQuiet},
	}
	for _, tt := range tests {
		SetLogLevel(tt.level)
		if got := LogLevel(); got != tt.expected {
			t.Errorf("SetLogLevel(%s): LogLevel() = %s, expected %s", tt.level, got, tt.expected)
		}
	}
}

func TestDisableLogging(t *testing.T) {
	previous := LogLevel()
	defer SetLogLevel(previous)

	DisableLogging()
	DisableLogging()
	if got := LogLevel(); got != ports.LevelQuiet {
		t.Errorf("expected quiet after DisableLogging, got %s", got)
	}

	// decoding still works with logging disabled
	d := newTestDecoder(t)
	n, f := d.Parse(nil)
	if n != 0 || f != nil {
		t.Errorf("expected (0, nil), got (%d, %v)", n, f)
	}
}

func TestEngineVersion(t *testing.T) {
	if v := EngineVersion(); !strings.HasPrefix(v, "libavcodec ") {
		t.Errorf("unexpected engine version %q", v)
	}
}
