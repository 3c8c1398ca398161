package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"loom/internal/services"
)

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("sample saved", String(FieldComponent, "emitter"), String("path", "/out/a.mp4"))

	line := buf.String()
	if !strings.Contains(line, "emitter: sample saved") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "path=/out/a.mp4") {
		t.Fatalf("expected attribute rendering, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not repeat as an attribute: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("skipping record", String("reason", "asset missing on disk"))

	if !strings.Contains(buf.String(), `reason="asset missing on disk"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"junk":  slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := services.WithRecord(context.Background(), "clip-007")
	ctx = services.WithStage(ctx, "generating")

	WithContext(ctx, logger).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, "record=clip-007") || !strings.Contains(line, "stage=generating") {
		t.Fatalf("expected context fields in output, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
