package logging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apexgo/pkg/config"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	requestLog := filepath.Join(tempDir, "requests.log")

	// A leftover file from an earlier run is rotated away.
	if err := os.WriteFile(serverLog, []byte("old run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.LogConfig{
		Server:   config.LogSettings{Path: serverLog, Level: "DEBUG"},
		Requests: config.LogSettings{Path: requestLog, Level: "INFO"},
		Rotate:   config.RotateSettings{MaxSizeMB: 1, MaxBackups: 2},
	}

	prev := slog.Default()
	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() {
		cleanup()
		slog.SetDefault(prev)
	}()

	slog.Info("hello from test")
	RequestLogger.Info("GET /health")

	content, err := os.ReadFile(serverLog)
	if err != nil {
		t.Fatalf("server log not created: %v", err)
	}
	if strings.Contains(string(content), "old run") {
		t.Error("previous run was not rotated away")
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Error("server log missing message")
	}
	if _, err := os.Stat(requestLog); os.IsNotExist(err) {
		t.Error("Request log file not created")
	}
	if !strings.Contains(GlobalLogCapture.GetLastLine(), "hello from test") {
		t.Errorf("capture missing message, got %q", GlobalLogCapture.GetLastLine())
	}

	backups, _ := filepath.Glob(filepath.Join(tempDir, "server-*.log"))
	if len(backups) != 1 {
		t.Errorf("expected one backup of the previous run, got %v", backups)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMultiHandler_LevelsAndAttrs(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug-1) {
		t.Error("level below every handler should be disabled")
	}

	logger := slog.New(h).With("component", "test")
	logger.Debug("only debug")
	logger.Info("both")

	if !strings.Contains(debugBuf.String(), "only debug") || !strings.Contains(debugBuf.String(), "both") {
		t.Errorf("debug handler output = %q", debugBuf.String())
	}
	if strings.Contains(infoBuf.String(), "only debug") {
		t.Error("info handler received a debug record")
	}
	if !strings.Contains(infoBuf.String(), "component=test") {
		t.Errorf("attrs not propagated: %q", infoBuf.String())
	}
}

func TestLogCaptureWriter(t *testing.T) {
	w := NewLogCaptureWriter()
	if w.GetLastLine() != "" || len(w.Lines(5)) != 0 {
		t.Fatal("new buffer should be empty")
	}

	for i := 0; i < captureLines+3; i++ {
		fmt.Fprintf(w, "line %d\n", i)
	}

	if got := w.GetLastLine(); got != fmt.Sprintf("line %d", captureLines+2) {
		t.Errorf("GetLastLine = %q", got)
	}
	lines := w.Lines(3)
	want := []string{
		fmt.Sprintf("line %d", captureLines),
		fmt.Sprintf("line %d", captureLines+1),
		fmt.Sprintf("line %d", captureLines+2),
	}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Lines(3) = %v, want %v", lines, want)
	}
	if all := w.Lines(1000); len(all) != captureLines || all[0] != "line 3" {
		t.Errorf("Lines(1000) returned %d lines starting %q", len(all), all[0])
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Trace(logger, "hidden")
	if buf.Len() != 0 {
		t.Error("trace logged while disabled")
	}

	EnableTrace = true
	defer func() { EnableTrace = false }()
	Trace(logger, "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("trace not logged while enabled")
	}
}
