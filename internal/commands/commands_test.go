package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gerunddev/keepbridge/internal/config"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputDir = filepath.Join(tmpDir, "vault")
	cfg.StateFile = filepath.Join(tmpDir, "state.json")
	return cfg, tmpDir
}

func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write note: %v", err)
	}
	return p
}

func TestConvert(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	input := filepath.Join(tmpDir, "Keep")
	if err := os.MkdirAll(input, 0755); err != nil {
		t.Fatalf("Failed to create export: %v", err)
	}
	writeNote(t, input, "a.json", `{"title":"Alpha","textContent":"one"}`)
	writeNote(t, input, "bad.json", `nope`)

	var stdout, stderr bytes.Buffer
	err := Convert(context.Background(), cfg, ConvertRequest{
		Input:  input,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Alpha.md")); err != nil {
		t.Errorf("Alpha.md not written: %v", err)
	}
	if !strings.Contains(stdout.String(), "Converted 1 note(s)") {
		t.Errorf("stdout missing summary:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "malformed note") {
		t.Errorf("stderr missing malformed note warning:\n%s", stderr.String())
	}
}

func TestConvertDryRun(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	note := writeNote(t, tmpDir, "a.json", `{"title":"Alpha","textContent":"one"}`)

	var stdout bytes.Buffer
	err := Convert(context.Background(), cfg, ConvertRequest{
		Input:  note,
		DryRun: true,
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	output := stdout.String()
	if !strings.Contains(output, "DRY RUN") || !strings.Contains(output, "+one") {
		t.Errorf("unexpected dry run output:\n%s", output)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("dry run must not create the vault")
	}
}

func TestConvertInterrupted(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	note := writeNote(t, tmpDir, "a.json", `{"title":"Alpha","textContent":"one"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	err := Convert(ctx, cfg, ConvertRequest{
		Input:  note,
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("an interrupted run should not fail: %v", err)
	}
	if !strings.Contains(stdout.String(), "Interrupted after 0 note(s)") {
		t.Errorf("stdout missing interrupted summary:\n%s", stdout.String())
	}
	if strings.Contains(stdout.String(), "context canceled") {
		t.Errorf("stdout should not show the raw cancellation:\n%s", stdout.String())
	}
}

func TestConvertLogFile(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	cfg.LogFile = filepath.Join(tmpDir, "keepbridge.log")
	note := writeNote(t, tmpDir, "a.json", `{"title":"Alpha","textContent":"one"}`)

	err := Convert(context.Background(), cfg, ConvertRequest{
		Input:  note,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "note converted") {
		t.Errorf("log file missing entry:\n%s", data)
	}
}

func TestPreview(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	note := writeNote(t, tmpDir, "list.json",
		`{"title":"Groceries","listContent":[{"text":"milk","isChecked":true}],"labels":[{"name":"home"}]}`)

	var out bytes.Buffer
	if err := Preview(cfg, note, true, &out); err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "home/Groceries.md") {
		t.Errorf("preview missing path:\n%s", output)
	}
	if !strings.Contains(output, "- [x] milk") {
		t.Errorf("preview missing checklist:\n%s", output)
	}

	out.Reset()
	if err := Preview(cfg, note, false, &out); err != nil {
		t.Fatalf("rendered Preview failed: %v", err)
	}
	if !strings.Contains(out.String(), "milk") {
		t.Errorf("rendered preview lost content:\n%s", out.String())
	}
}

func TestPreviewMalformed(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	note := writeNote(t, tmpDir, "bad.json", `{"title": 5}`)

	if err := Preview(cfg, note, true, &bytes.Buffer{}); err == nil {
		t.Error("Preview should fail on a malformed note")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	tmpDir := t.TempDir()
	originalConfigPath := config.ConfigPath
	config.ConfigPath = func() string {
		return filepath.Join(tmpDir, "config.json")
	}
	t.Cleanup(func() {
		config.ConfigPath = originalConfigPath
	})

	var out bytes.Buffer
	if err := ConfigInit(false, &out); err != nil {
		t.Fatalf("ConfigInit failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if err := ConfigInit(false, &out); err == nil {
		t.Error("ConfigInit should refuse to overwrite without force")
	}
	if err := ConfigInit(true, &out); err != nil {
		t.Errorf("ConfigInit with force failed: %v", err)
	}

	out.Reset()
	if err := ConfigShow(config.DefaultConfig(), &out); err != nil {
		t.Fatalf("ConfigShow failed: %v", err)
	}
	for _, key := range []string{"output_dir", "attachment_style", "labels_as_folders"} {
		if !strings.Contains(out.String(), key) {
			t.Errorf("ConfigShow output missing %q:\n%s", key, out.String())
		}
	}
}

func TestStatus(t *testing.T) {
	cfg, tmpDir := testConfig(t)
	input := filepath.Join(tmpDir, "Keep")
	if err := os.MkdirAll(input, 0755); err != nil {
		t.Fatalf("Failed to create export: %v", err)
	}
	writeNote(t, input, "a.json", `{"title":"Alpha","textContent":"one"}`)
	writeNote(t, input, "b.json", `{"title":"Old","textContent":"two","isArchived":true}`)

	notes, err := Plan(context.Background(), cfg, input)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(notes))
	}

	var out bytes.Buffer
	if err := Status(context.Background(), cfg, input, true, &out); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	output := out.String()
	for _, want := range []string{"new", "Alpha.md", "skipped", "archived", "1 new, 1 skipped"} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q:\n%s", want, output)
		}
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("status must not write the vault")
	}
}
