package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/krau/sankaku-dl/config"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  log.Level
	}{
		{level: "DEBUG", want: log.DebugLevel},
		{level: "warn", want: log.WarnLevel},
		{level: "", want: log.InfoLevel},
		{level: "loud", want: log.InfoLevel},
	}
	for _, tt := range tests {
		c := config.Config{}
		c.Log.Level = tt.level
		if got := New(c).GetLevel(); got != tt.want {
			t.Errorf("New(level=%q).GetLevel() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewWritesFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "logs", "sankaku.log")
	c := config.Config{}
	c.Log.Level = "info"
	c.Log.File = fp
	c.Log.MaxSize = 1
	New(c).Info("hello", "post", "abc")

	data, err := os.ReadFile(fp)
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "post=abc") {
		t.Fatalf("unexpected log content: %q", data)
	}
}

func TestInitLoggerContext(t *testing.T) {
	ctx := InitLogger(context.Background())
	if log.FromContext(ctx) != log.Default() {
		t.Fatal("context logger is not the default logger")
	}
}
