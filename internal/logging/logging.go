// Package logging builds the file-backed logger. The terminal belongs to the
// UI, so nothing is ever written to stdout or stderr.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a config string to a log level. "warning" is accepted as
// an alias for warn; anything unrecognised means info.
func ParseLevel(level string) log.Level {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// New opens (or creates) the log file at path and returns a logger writing
// logfmt lines to it. The caller closes the returned Closer on exit. An empty
// path yields a discarding logger.
func New(path, level string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return newWithWriter(f, ParseLevel(level)), f, nil
}

func newWithWriter(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		Prefix:          "tasklanes",
	})
}

func Discard() *log.Logger {
	return log.New(io.Discard)
}
