package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLevelFiltersMessages(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(&bytes.Buffer{})

	logger := New("test")

	SetLevel(Warning)
	logger.Infof("hidden %d", 1)
	logger.Warningf("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden 1") {
		t.Errorf("Info message should be filtered at warning level, got %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Errorf("Expected warning message in output, got %q", out)
	}
	if !strings.Contains(out, "[test]") {
		t.Errorf("Expected module name in output, got %q", out)
	}
}

func TestSetSinkKeepsLevel(t *testing.T) {
	previous := CurrentLevel()
	defer SetLevel(previous)
	defer SetSink(&bytes.Buffer{})

	SetLevel(Debug)
	var buf bytes.Buffer
	SetSink(&buf)

	if CurrentLevel() != Debug {
		t.Fatalf("Expected debug level after a sink change, got %v", CurrentLevel())
	}
	New("sink").Debugf("trace %d", 3)
	if !strings.Contains(buf.String(), "trace 3") {
		t.Errorf("Expected debug output on the new sink, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		ok    bool
	}{
		{"debug", Debug, true},
		{"", Notice, true},
		{"info", Info, true},
		{"warning", Warning, true},
		{"error", Error, true},
		{"verbose", Notice, false},
	}

	for _, tt := range tests {
		level, ok := ParseLevel(tt.name)
		if level != tt.level || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v, %v", tt.name, level, ok, tt.level, tt.ok)
		}
	}
}
