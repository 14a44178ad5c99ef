package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(f, level), cleanup, nil
}

// ParseLevel maps a config level name onto a log level, defaulting to info
func ParseLevel(name string) log.Level {
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// RunStarted logs the start of a conversion run
func (l *Logger) RunStarted(input, outputDir string, dryRun bool) {
	l.Info("conversion started",
		"input", input,
		"output_dir", outputDir,
		"dry_run", dryRun)
}

// RunCompleted logs the completion of a conversion run
func (l *Logger) RunCompleted(converted, unchanged, errors int, duration time.Duration) {
	l.Info("conversion completed",
		"notes_converted", converted,
		"unchanged", unchanged,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// NoteConverted logs a note written to the vault
func (l *Logger) NoteConverted(source, dest string) {
	l.Info("note converted",
		"source", source,
		"dest", dest)
}

// NoteSkipped logs when a note is left out of the run
func (l *Logger) NoteSkipped(source, reason string) {
	l.Debug("note skipped",
		"source", source,
		"reason", reason)
}

// MalformedNote logs a record that could not be parsed or converted
func (l *Logger) MalformedNote(source string, err error) {
	l.Warn("malformed note",
		"source", source,
		"error", err)
}

// AttachmentError logs a failure to copy an attachment
func (l *Logger) AttachmentError(source, attachment string, err error) {
	l.Error("attachment failed",
		"source", source,
		"attachment", attachment,
		"error", err)
}

// Collision logs a note moved to a suffixed path
func (l *Logger) Collision(source, wanted, got string) {
	l.Warn("name collision",
		"source", source,
		"wanted", wanted,
		"path", got)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(outputDir, stateFile string, incremental bool) {
	l.Debug("config loaded",
		"output_dir", outputDir,
		"state_file", stateFile,
		"incremental", incremental)
}
