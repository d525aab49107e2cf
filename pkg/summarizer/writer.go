package summarizer

import (
	"fmt"
	"io"

	"github.com/user/h264stream/pkg/ports"
)

// Writer writes formatted summaries to files.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

// NewWriter creates a new Writer with the given Formatter.
func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{
		formatter: formatter,
		fs:        fs,
	}
}

// Write formats the summary and writes it to the specified path.
// Parent directories are created; "-" writes to standard output.
func (w *Writer) Write(path string, summary *Summary) error {
	content := w.formatter.Format(summary)

	f, err := w.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return fmt.Errorf("write summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close summary: %w", err)
	}
	return nil
}
