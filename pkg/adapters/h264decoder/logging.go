package h264decoder

/*
#cgo pkg-config: libavutil
#include <libavutil/log.h>
*/
import "C"

import "github.com/user/h264stream/pkg/ports"

// DisableLogging silences the engine's own log output for the whole
// process. It may be called any number of times.
func DisableLogging() {
	C.av_log_set_level(C.AV_LOG_QUIET)
}

// SetLogLevel sets the engine's process-wide log verbosity to match level.
func SetLogLevel(level ports.LogLevel) {
	switch level {
	case ports.LevelDebug:
		C.av_log_set_level(C.AV_LOG_VERBOSE)
	case ports.LevelInfo, ports.LevelWarn:
		C.av_log_set_level(C.AV_LOG_WARNING)
	case ports.LevelError:
		C.av_log_set_level(C.AV_LOG_ERROR)
	default:
		DisableLogging()
	}
}

// LogLevel returns the engine's current log verbosity in ports terms.
func LogLevel() ports.LogLevel {
	switch lvl := C.av_log_get_level(); {
	case lvl <= C.AV_LOG_QUIET:
		return ports.LevelQuiet
	case lvl <= C.AV_LOG_ERROR:
		return ports.LevelError
	case lvl <= C.AV_LOG_WARNING:
		return ports.LevelWarn
	case lvl <= C.AV_LOG_INFO:
		return ports.LevelInfo
	default:
		return ports.LevelDebug
	}
}
