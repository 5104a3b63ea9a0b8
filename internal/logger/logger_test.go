package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func initFile(t *testing.T, level, name string, maxMB int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	cfg := FileConfig{Path: path, MaxSizeMB: maxMB, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(Nop)
	return path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestFileRotation(t *testing.T) {
	path := initFile(t, "debug", "combview.log", 1)

	// ~250 bytes per entry, a bit over 3MB in total
	pad := strings.Repeat("x", 200)
	for i := 0; i < 13000; i++ {
		Sugar.Infof("flush %d: %s", i, pad)
	}
	Sync()

	files, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	var rotated []string
	for _, f := range files {
		if f.Name() != "combview.log" && strings.HasPrefix(f.Name(), "combview-") {
			rotated = append(rotated, f.Name())
		}
	}
	if len(rotated) == 0 {
		t.Errorf("no rotated files in %v", files)
	}
}

func TestLevels(t *testing.T) {
	all := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	for i, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			path := initFile(t, level, level+".log", 10)

			Debug("stage resolved")
			Info("world loaded")
			Warn("deform skipped")
			Error("draw aborted")

			out := readLog(t, path)
			for j, name := range all {
				if got := strings.Contains(out, name); got != (j >= i) {
					t.Errorf("level %s: %s present = %v", level, name, got)
				}
			}
		})
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got != zapcore.InfoLevel {
		t.Errorf("expected info for an unknown level, got %v", got)
	}
	if got := parseLevel("warn"); got != zapcore.WarnLevel {
		t.Errorf("expected warn, got %v", got)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("logs/combview.log")
	if cfg.Path != "logs/combview.log" || cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestNamedComponent(t *testing.T) {
	path := initFile(t, "info", "named.log", 1)

	Named("batch").Warn("shader switched without flush")
	SetLevel("error")
	Named("batch").Warn("suppressed")

	out := readLog(t, path)
	if !strings.Contains(out, "batch") || !strings.Contains(out, "shader switched without flush") {
		t.Errorf("named entry missing from output: %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Error("entry below the runtime level was written")
	}
}

func TestUseKeepsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	defer Nop()

	Named("combiner").Debug("packed", zap.String("shader", "textures/base/floor"), zap.Int("passes", 2))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "combiner" {
		t.Errorf("expected logger name combiner, got %q", e.LoggerName)
	}
	fields := e.ContextMap()
	if fields["shader"] != "textures/base/floor" || fields["passes"] != int64(2) {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestNopBeforeInit(t *testing.T) {
	Nop()
	// must not panic
	Warn("nothing")
	Named("combiner").Debug("nothing")
	if Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger reports enabled levels")
	}
}
