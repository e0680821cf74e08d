// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, context builders, formatters,
//              coded error logging and timers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	nsmserror "github.com/msto63/nsms/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf, Name: "test"}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")
	logger.Audit("always")

	lines := decodeLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %s", len(lines), buf.String())
	}
	wantLevels := []string{"warn", "error", "audit"}
	for i, want := range wantLevels {
		if lines[i]["level"] != want {
			t.Errorf("line %d level = %v, want %v", i, lines[i]["level"], want)
		}
	}
}

func TestLogger_MessageContext(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo, FormatJSON)
	logger := base.WithMessageID("m-1").WithBackend("tester").WithIdentity("0788383381").
		WithField("component", "router")

	logger.Info("incoming", Field("text", "REG James"))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	line := lines[0]
	want := map[string]string{
		"logger":     "test",
		"message_id": "m-1",
		"backend":    "tester",
		"identity":   "0788383381",
		"component":  "router",
		"text":       "REG James",
		"message":    "incoming",
	}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("%s = %v, want %v", k, line[k], v)
		}
	}
}

func TestLogger_BuildersDoNotMutate(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo, FormatJSON)
	_ = base.WithField("leak", true).WithBackend("tester")

	base.Info("plain")

	line := decodeLines(t, buf)[0]
	if _, ok := line["leak"]; ok {
		t.Error("WithField() changed the receiver")
	}
	if _, ok := line["backend"]; ok {
		t.Error("WithBackend() changed the receiver")
	}
}

func TestLogger_LogError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  interface{}
	}{
		{"sender mistake", nsmserror.MissingField("phone", "register.missing_phone"), "info", "MISSING_FIELD"},
		{"delivery", nsmserror.New("modem timeout").WithCode(nsmserror.CodeDeliveryFailed), "warn", "DELIVERY_FAILED"},
		{"storage", nsmserror.New("locked").WithCode(nsmserror.CodeDatabaseError), "error", "DATABASE_ERROR"},
		{"plain", errors.New("boom"), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			line := decodeLines(t, buf)[0]
			if line["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", line["level"], tt.wantLevel)
			}
			if line["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %v", line["error_code"], tt.wantCode)
			}
		})
	}

	logger, buf := newBufferLogger(LevelTrace, FormatJSON)
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Errorf("LogError(nil) wrote %q", buf.String())
	}
}

func TestTextFormatter(t *testing.T) {
	entry := NewEntry(LevelInfo, "reply sent")
	entry.Logger = "router"
	entry.MessageID = "m-9"
	entry.Backend = "tester"
	entry.Fields = Fields{"status": "S", "attempt": 1}

	f := NewTextFormatter()
	f.DisableTimestamp = true
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "[INF] {router} (msg=m-9,backend=tester) reply sent [attempt=1 status=S]\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestConsoleFormatter(t *testing.T) {
	entry := NewEntry(LevelError, "failed")
	f := NewConsoleFormatter()
	f.DisableTimestamp = true

	out, _ := f.Format(entry)
	if !strings.HasPrefix(string(out), LevelError.Color()) || !strings.HasSuffix(string(out), "\033[0m\n") {
		t.Errorf("Format() = %q, want colored line", out)
	}

	f.DisableColors = true
	out, _ = f.Format(entry)
	if string(out) != "[ERR] failed\n" {
		t.Errorf("Format() without colors = %q", out)
	}
}

func TestLogfmtFormatter(t *testing.T) {
	entry := NewEntry(LevelWarn, "unsent backlog")
	entry.Timestamp = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	entry.Backend = "tester"
	entry.Fields = Fields{"count": 3, "oldest": "Q"}

	out, _ := NewLogfmtFormatter().Format(entry)
	want := `timestamp=2026-10-19T08:00:00Z level=warn message="unsent backlog" backend=tester count=3 oldest="Q"` + "\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}
}

func TestJSONFormatter_CodedError(t *testing.T) {
	entry := NewEntry(LevelError, "dispatch failed")
	entry.Error = nsmserror.New("bad").WithCode(nsmserror.CodeInvalidField)

	out, err := NewJSONFormatter().Format(entry)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	details, ok := m["error_details"].(map[string]interface{})
	if !ok {
		t.Fatalf("error_details missing in %s", out)
	}
	if details["code"] != "INVALID_FIELD" {
		t.Errorf("error_details.code = %v", details["code"])
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" WARNING ", LevelWarn, false},
		{"", LevelInfo, false},
		{"audit", LevelAudit, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range levels {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}

	formats := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"Text", FormatText, false},
		{"console", FormatConsole, false},
		{"logfmt", FormatLogfmt, false},
		{"xml", FormatJSON, true},
	}
	for _, tt := range formats {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	timer := logger.StartTimer("dispatch").WithField("keyword", "reg")
	if !timer.IsRunning() {
		t.Error("IsRunning() = false right after start")
	}
	time.Sleep(2 * time.Millisecond)
	if d := timer.Stop(); d <= 0 {
		t.Errorf("Stop() = %v, want > 0", d)
	}
	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}

	failing := logger.StartTimer("send")
	failing.StopWithError(errors.New("offline"))

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["message"] != "dispatch completed" || lines[0]["keyword"] != "reg" || lines[0]["success"] != true {
		t.Errorf("unexpected completion line %v", lines[0])
	}
	if _, ok := lines[0]["duration_ms"]; !ok {
		t.Error("completion line lacks duration_ms")
	}
	if lines[1]["level"] != "error" || lines[1]["message"] != "send failed" || lines[1]["error"] != "offline" {
		t.Errorf("unexpected failure line %v", lines[1])
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.WithField("worker", n).Info("tick")
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, buf)); got != 20 {
		t.Errorf("got %d lines, want 20", got)
	}
}

func TestDefaultLogger(t *testing.T) {
	previous := GetDefault()
	defer SetDefault(previous)

	logger, buf := newBufferLogger(LevelInfo, FormatJSON)
	SetDefault(logger)
	Info("from default")

	if !strings.Contains(buf.String(), "from default") {
		t.Errorf("default logger not used: %q", buf.String())
	}
}
