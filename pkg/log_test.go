package pkg

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	tests := []struct {
		name  string
		level slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogLevel(tt.level)
			if got := GetLogLevel(); got != tt.level {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.level)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}

	logger.Info("test message")
	if !strings.Contains(buf.String(), "test message") {
		t.Errorf("log output missing message: %s", buf.String())
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	if logger == nil {
		t.Fatal("NewJSONLogger returned nil")
	}

	logger.Info("test message")
	output := buf.String()
	if !strings.Contains(output, `"msg":"test message"`) {
		t.Errorf("JSON log output missing message: %s", output)
	}
}

func TestLogDebug(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogLevel(slog.LevelDebug)
	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDebug(ComponentAgent, "debug message", "key", "value")
	output := buf.String()
	if !strings.Contains(output, "debug message") {
		t.Errorf("debug log missing message: %s", output)
	}
	if !strings.Contains(output, "component=agent") {
		t.Errorf("debug log missing component: %s", output)
	}
}

func TestLogInfo(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, nil))

	LogInfo(ComponentHost, "info message")
	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("info log missing message: %s", output)
	}
	if !strings.Contains(output, "component=rsflash") {
		t.Errorf("info log missing component: %s", output)
	}
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, nil))

	LogWarn(ComponentHandshake, "warn message")
	output := buf.String()
	if !strings.Contains(output, "warn message") {
		t.Errorf("warn log missing message: %s", output)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, nil))

	LogError(ComponentProbe, "error message")
	output := buf.String()
	if !strings.Contains(output, "error message") {
		t.Errorf("error log missing message: %s", output)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	customLogger := NewLogger(&buf, nil)
	SetLogger(customLogger)

	LogInfo(ComponentHost, "custom logger test")
	if !strings.Contains(buf.String(), "custom logger test") {
		t.Error("custom logger not used")
	}
}

// =============================================================================
// Edge Case Tests
// =============================================================================

func TestComponentString(t *testing.T) {
	components := []Component{
		ComponentHost,
		ComponentAgent,
		ComponentProbe,
		ComponentImage,
		ComponentHandshake,
		ComponentTransfer,
		ComponentRTT,
	}

	for _, c := range components {
		if string(c) == "" {
			t.Errorf("Component %v has empty string", c)
		}
	}
}

func TestLogWithEmptyArgs(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogLevel(slog.LevelDebug)
	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	LogDebug(ComponentAgent, "empty args test")
	output := buf.String()
	if !strings.Contains(output, "empty args test") {
		t.Errorf("log missing message: %s", output)
	}
}

func TestLogWithManyArgs(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(&buf, nil))

	LogInfo(ComponentHost, "many args",
		"key1", "value1",
		"key2", 42,
		"key3", true,
		"key4", 3.14,
	)
	output := buf.String()
	if !strings.Contains(output, "key1=value1") {
		t.Errorf("log missing key1: %s", output)
	}
	if !strings.Contains(output, "key2=42") {
		t.Errorf("log missing key2: %s", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	original := DefaultLogger
	originalLevel := GetLogLevel()
	originalComponents := map[Component]slog.Level{}
	for c, lv := range componentLevels {
		originalComponents[c] = lv
	}
	defer func() {
		DefaultLogger = original
		SetLogLevel(originalLevel)
		for c, lv := range originalComponents {
			componentLevels[c] = lv
		}
	}()

	SetLogLevel(slog.LevelWarn)
	for c := range componentLevels {
		componentLevels[c] = slog.LevelWarn
	}
	SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// These should not appear
	LogDebug(ComponentHandshake, "debug should not appear")
	LogInfo(ComponentHandshake, "info should not appear")

	// These should appear
	LogWarn(ComponentHandshake, "warn should appear")
	LogError(ComponentHandshake, "error should appear")

	output := buf.String()
	if strings.Contains(output, "debug should not appear") {
		t.Error("debug message appeared when level was Warn")
	}
	if strings.Contains(output, "info should not appear") {
		t.Error("info message appeared when level was Warn")
	}
	if !strings.Contains(output, "warn should appear") {
		t.Error("warn message did not appear")
	}
	if !strings.Contains(output, "error should appear") {
		t.Error("error message did not appear")
	}
}

func TestApplyLogEnvUnset(t *testing.T) {
	os.Unsetenv(EnvLogFilter)
	if err := ApplyLogEnv(); err != nil {
		t.Fatalf("ApplyLogEnv() with unset env: %v", err)
	}
}

func TestApplyLogEnvInvalidUTF8(t *testing.T) {
	t.Setenv(EnvLogFilter, string([]byte{0xff, 0xfe, 0xfd}))
	err := ApplyLogEnv()
	if err == nil {
		t.Fatal("expected UsageError for non-UTF-8 RSFLASH_LOG")
	}
	var ue *UsageError
	if !isUsageError(err, &ue) {
		t.Fatalf("expected *UsageError, got %T: %v", err, err)
	}
}

func TestApplyLogEnvValid(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	t.Setenv(EnvLogFilter, "debug")
	if err := ApplyLogEnv(); err != nil {
		t.Fatalf("ApplyLogEnv() with valid level: %v", err)
	}
	if got := GetLogLevel(); got != slog.LevelDebug {
		t.Errorf("GetLogLevel() = %v, want debug", got)
	}
}

func isUsageError(err error, target **UsageError) bool {
	if ue, ok := err.(*UsageError); ok {
		*target = ue
		return true
	}
	return false
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkSetLogLevel(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SetLogLevel(slog.LevelInfo)
	}
}

func BenchmarkGetLogLevel(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetLogLevel()
	}
}

func BenchmarkNewLogger(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewLogger(io.Discard, nil)
	}
}

func BenchmarkLogInfo(b *testing.B) {
	original := DefaultLogger
	defer func() { DefaultLogger = original }()

	SetLogger(NewLogger(io.Discard, nil))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		LogInfo(ComponentHost, "test message", "key", "value")
	}
}
