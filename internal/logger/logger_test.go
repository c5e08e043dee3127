package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build3d.log")
	Init("debug", path)
	Log.Info("reconstruction started")
	Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "reconstruction started") {
		t.Errorf("log file missing entry:\n%s", b)
	}
}

func TestInitLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build3d.log")
	Init("warn", path)
	Log.Info("below threshold")
	Log.Warn("above threshold")
	Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(b), "below threshold") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(string(b), "above threshold") {
		t.Errorf("warn entry missing:\n%s", b)
	}
}
