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

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_Levels(t *testing.T) {
	log, buf := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	out := buf.String()
	tests := []struct {
		level string
		msg   string
		kv    string
	}{
		{"DEBUG", "dbg", "a=1"},
		{"INFO", "inf", "b=2"},
		{"WARN", "wrn", "c=3"},
		{"ERROR", "err", "d=4"},
	}
	for _, tc := range tests {
		if !strings.Contains(out, "level="+tc.level) {
			t.Errorf("missing level=%s in output:\n%s", tc.level, out)
		}
		if !strings.Contains(out, "msg="+tc.msg) {
			t.Errorf("missing msg=%s in output:\n%s", tc.msg, out)
		}
		if !strings.Contains(out, tc.kv) {
			t.Errorf("missing %s in output:\n%s", tc.kv, out)
		}
	}
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	log, buf := newTestLogger(t)
	child := log.With("component", "client")
	child.Info(context.Background(), "hello")

	if !strings.Contains(buf.String(), "component=client") {
		t.Errorf("expected component=client, got:\n%s", buf.String())
	}
}

func TestOpenFile_RespectsDebugFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tutor.log")

	log, closer, err := OpenFile(path, false)
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "shown")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug line written at info level:\n%s", data)
	}
	if !strings.Contains(string(data), "shown") {
		t.Errorf("info line missing:\n%s", data)
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error(context.Background(), "nothing", "k", "v")
}
