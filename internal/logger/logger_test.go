package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.RunStarted("takeout.zip", "/vault", true)
	l.NoteConverted("Keep/a.json", "work/A.md")
	l.NoteSkipped("Keep/b.json", "archived")
	l.MalformedNote("Keep/c.json", errors.New("invalid JSON"))
	l.AttachmentError("Keep/d.json", "img.png", errors.New("missing"))
	l.Collision("Keep/e.json", "A.md", "A (2).md")
	l.RunCompleted(3, 1, 2, 1500*time.Millisecond)

	output := buf.String()
	expected := []string{
		"conversion started",
		"dry_run=true",
		"note converted",
		"dest=work/A.md",
		"note skipped",
		"reason=archived",
		"malformed note",
		"invalid JSON",
		"attachment failed",
		"name collision",
		"conversion completed",
		"notes_converted=3",
		"errors=2",
	}
	for _, e := range expected {
		if !strings.Contains(output, e) {
			t.Errorf("log output missing %q:\n%s", e, output)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.NoteSkipped("Keep/a.json", "unchanged")
	l.ConfigLoaded("/vault", "/state.json", false)
	if buf.Len() != 0 {
		t.Errorf("debug messages should be filtered at info level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug": log.DebugLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
		"bogus": log.InfoLevel,
		"":      log.InfoLevel,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keepbridge.log")

	l, cleanup, err := NewFileLogger(path, log.InfoLevel)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.NoteConverted("Keep/a.json", "A.md")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "note converted") {
		t.Errorf("log file missing entry: %q", data)
	}
}
