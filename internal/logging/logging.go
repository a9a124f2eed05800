// Package logging configures the logrus logger marquee writes to.
//
// The terminal belongs to the TUI, so log output always goes to a file. The
// text formatter is used without colors so the file stays greppable and the
// diagnostics pane can parse it back with logtail.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Options selects where and how verbosely to log.
type Options struct {
	Path  string // empty discards all output
	Level string // any logrus level name; empty means info
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds a logger writing to opts.Path, creating parent directories as
// needed. The returned closer releases the file.
func Setup(opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if name := strings.TrimSpace(opts.Level); name != "" {
		parsed, err := logrus.ParseLevel(name)
		if err != nil {
			return nil, nil, errors.Wrap(err, "parse log level")
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		logger.SetOutput(io.Discard)
		return logger, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log dir")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	logger.SetOutput(file)
	return logger, file, nil
}
