// Package ports defines the interfaces that connect the decode pipeline to its adapters.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for per-packet and per-frame details.
	LevelDebug LogLevel = iota
	// LevelInfo is for per-stream progress.
	LevelInfo
	// LevelWarn is for frames or packets that were dropped.
	LevelWarn
	// LevelError is for failures that stop a stream.
	LevelError
	// LevelQuiet suppresses all log output, including the engine's own.
	LevelQuiet
)

var levelNames = map[LogLevel]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLogLevel parses a string into a LogLevel.
// Unknown names fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for level, name := range levelNames {
		if name == s {
			return level
		}
	}
	return LevelInfo
}

// Logger abstracts logging with translatable message keys.
type Logger interface {
	// Debug logs a message about packet or frame handling.
	// The msg parameter is a message key that may be translated.
	Debug(msg string, args ...interface{})

	// Info logs stream-level progress.
	Info(msg string, args ...interface{})

	// Warn logs a recoverable problem, such as a frame that failed to convert.
	Warn(msg string, args ...interface{})

	// Error logs a problem that stopped a stream.
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
