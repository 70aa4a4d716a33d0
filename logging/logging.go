// Package logging builds the diagnostic logger used by operators.
//
// The diagnostic log is never the user-facing channel: it goes to a rotating
// file under the pakman home, or nowhere. Every entry is redacted before it is
// written.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lex00/pakman/errs"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a logrus level name ("debug", "info", ...). Empty means info.
	Level string
	// File is the log file path. Empty disables the log.
	File string
	// Format is "text" (default) or "json".
	Format     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger is a logrus logger that owns its output file.
type Logger struct {
	*logrus.Logger
	closer io.Closer
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New returns a logger configured by opts.
func New(opts Options) (*Logger, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, errs.Wrapf(errs.KindInvalidConfiguration, err, "invalid log level %q", opts.Level)
		}
		level = lvl
	}
	log.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, errs.InvalidConfigurationf("invalid log format %q (supported: text, json)", opts.Format)
	}

	log.AddHook(RedactHook{})

	if opts.File == "" {
		log.SetOutput(io.Discard)
		return &Logger{Logger: log}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, errs.Wrapf(errs.KindInvalidConfiguration, err, "failed to create log directory")
	}
	rotate := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
	log.SetOutput(rotate)
	return &Logger{Logger: log, closer: rotate}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(RedactHook{})
	return &Logger{Logger: log}
}

// RedactHook masks credentials in the message and string fields of every
// entry.
type RedactHook struct{}

func (RedactHook) Levels() []logrus.Level { return logrus.AllLevels }

func (RedactHook) Fire(entry *logrus.Entry) error {
	entry.Message = errs.Redact(entry.Message)
	for k, v := range entry.Data {
		switch val := v.(type) {
		case string:
			entry.Data[k] = errs.Redact(val)
		case error:
			entry.Data[k] = errs.Redact(val.Error())
		}
	}
	return nil
}
