package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{JSON: true, Output: &buf})

	l.Info("[Research] assembled report", "run", "r1", "entities", 3)
	l.Debug("[Research] hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %q", buf.String())
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if got["msg"] != "[Research] assembled report" || got["run"] != "r1" || got["entities"] == nil {
		t.Fatalf("unexpected entry %v", got)
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(ConsoleLoggerParams{Debug: true, Output: &buf})

	l.Debug("[Parse] parsed marker sections", "sections", 2)
	if !strings.Contains(buf.String(), "parsed marker sections") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
