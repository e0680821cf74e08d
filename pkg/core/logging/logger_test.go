package logging

import (
	"bytes"
	"io"
	"strings"
	"testing"

	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/pkg/core/config"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{Level(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New("router")
	if logger.name != "router" {
		t.Errorf("name = %v, want router", logger.name)
	}
	if logger.WithLevel(LevelDebug).name != "router" {
		t.Error("WithLevel() should preserve the name")
	}
}

func TestNewLogger_WritesKeyValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Wrap(NewLogger(LoggerConfig{
		ServiceName: "router",
		Level:       "debug",
		Format:      "logfmt",
		Output:      buf,
	}))

	logger.Info("message stored", "backend", "tester", "count", 2, "orphan")

	line := buf.String()
	for _, want := range []string{`message="message stored"`, "logger=router", `backend="tester"`, "count=2"} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q lacks %q", line, want)
		}
	}
	if strings.Contains(line, "orphan") {
		t.Errorf("output %q contains the unpaired key", line)
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Wrap(NewLogger(LoggerConfig{ServiceName: "x", Level: "warn", Output: buf}))

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("info/debug written at warn level: %q", buf.String())
	}

	logger.WithLevel(LevelDebug).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("WithLevel(LevelDebug) should enable debug output")
	}
}

func TestNewLogger_AdditionalOutputs(t *testing.T) {
	primary, extra := &bytes.Buffer{}, &bytes.Buffer{}
	logger := NewLogger(LoggerConfig{
		ServiceName:       "x",
		Output:            primary,
		AdditionalOutputs: []io.Writer{extra},
	})

	logger.Info("one")
	if primary.Len() == 0 || primary.String() != extra.String() {
		t.Errorf("outputs differ: %q vs %q", primary.String(), extra.String())
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.General.LogLevel = "debug"
	cfg.General.LogFormat = "json"

	lc := FromConfig(cfg, "serve")
	if lc.ServiceName != "serve" || lc.Level != "debug" || lc.Format != "json" {
		t.Errorf("FromConfig() = %+v", lc)
	}

	if got := FromConfig(nil, "cli"); got.Level != "info" || got.Format != "text" {
		t.Errorf("FromConfig(nil) = %+v", got)
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig("my-service")

	if cfg.ServiceName != "my-service" {
		t.Errorf("ServiceName = %v, want my-service", cfg.ServiceName)
	}
	if cfg.Level != "info" || cfg.Format != "text" {
		t.Errorf("Level/Format = %v/%v, want info/text", cfg.Level, cfg.Format)
	}
}

func TestToFields(t *testing.T) {
	if fields := toFields(); fields != nil {
		t.Error("toFields() with no args should return nil")
	}

	fields := toFields("key1", "value1", "key2", 42)
	if fields["key1"] != "value1" || fields["key2"] != 42 {
		t.Errorf("toFields() = %v", fields)
	}

	fields = toFields(123, "value")
	if len(fields) != 0 {
		t.Errorf("Non-string key should be skipped, got %v fields", len(fields))
	}
}

func TestWrap_KeepsFoundationLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	base := nsmslog.NewWithConfig(nsmslog.Config{Level: nsmslog.LevelInfo, Format: nsmslog.FormatText, Output: buf, Name: "ws"})
	logger := Wrap(base.WithBackend("tester"))

	logger.Warn("client dropped", "remote", "127.0.0.1")
	if !strings.Contains(buf.String(), "backend=tester") {
		t.Errorf("context lost: %q", buf.String())
	}
}
