package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestContextHandler_AddsRequestInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithRequest(context.Background(), RequestInfo{
		ID:         "req-1",
		Method:     "POST",
		Path:       "/api/content/post",
		RemoteAddr: "10.0.0.1",
	})
	logger.ErrorContext(ctx, "insert failed", "error", "boom")

	out := buf.String()
	for _, want := range []string{
		"msg=\"insert failed\"",
		"error=boom",
		"request_id=req-1",
		"method=POST",
		"path=/api/content/post",
		"remote_addr=10.0.0.1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestContextHandler_WithoutRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("started")

	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "method=") {
		t.Errorf("unexpected request attributes in %q", buf.String())
	}
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil))).
		With("component", "content").
		WithGroup("db")

	ctx := WithRequest(context.Background(), RequestInfo{Method: "GET", Path: "/health"})
	logger.WarnContext(ctx, "slow query", "ms", 900)

	out := buf.String()
	if !strings.Contains(out, "component=content") {
		t.Errorf("output %q missing component attribute", out)
	}
	if !strings.Contains(out, "db.ms=900") {
		t.Errorf("output %q missing grouped attribute", out)
	}
	if strings.Contains(out, "request_id") {
		t.Errorf("empty request id should be omitted: %q", out)
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	h := NewContextHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true with warn threshold")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false with warn threshold")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_File(t *testing.T) {
	var stdout bytes.Buffer
	path := filepath.Join(t.TempDir(), "hcms.log")

	logger, closer, err := newLogger(&stdout, Options{Level: "debug", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("newLogger() error: %v", err)
	}
	logger.Debug("written twice")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if !strings.Contains(stdout.String(), "written twice") {
		t.Errorf("stdout missing record: %q", stdout.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written twice") {
		t.Errorf("log file missing record: %q", data)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, _, err := newLogger(&bytes.Buffer{}, Options{Level: "loud"}); err == nil {
		t.Fatal("newLogger() should fail for unknown level")
	}
}
