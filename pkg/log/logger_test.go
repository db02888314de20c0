package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DebugLevel, "INFO": InfoLevel, "warning": WarnLevel, "error": ErrorLevel, "": InfoLevel}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %v want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithFormat(FormatJSON), WithWriter(&buf)).With(Component("writer"))
	l.Info("opened", Str("scope", "myscope"), Int("events", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if entry["msg"] != "opened" || entry["component"] != "writer" || entry["scope"] != "myscope" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithLevel(WarnLevel), WithWriter(&buf))
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	l.SetLevel(DebugLevel)
	if l.GetLevel() != DebugLevel {
		t.Fatalf("level not updated")
	}
}

func TestRedactions(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithWriter(&buf), WithRedactions("token"))
	l.WithError(errors.New("boom")).Info("auth", Str("token", "secret"))
	if strings.Contains(buf.String(), "secret") {
		t.Fatalf("token leaked: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("error missing: %q", buf.String())
	}
}

func TestStdLoggerSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	std := ToStdLogger(NewLogger(WithFormat(FormatJSON), WithWriter(&buf)))
	std.Print("[JOB 1] flushed\n\n[JOB 2] compacted")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 entries, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "compacted") {
		t.Fatalf("unexpected second entry %q", lines[1])
	}
}
