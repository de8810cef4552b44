package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero reads nothing", maxLines: 0, expected: nil},
		{name: "negative reads nothing", maxLines: -1, expected: nil},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","component":"defaults","error":"dial tcp: refused","time":"2026-10-19T12:00:01.5Z","message":"fetch defaults failed, retrying"}`
	got := Parse(line)
	want := Entry{
		Time:      time.Date(2026, 10, 19, 12, 0, 1, 500_000_000, time.UTC),
		Level:     "warn",
		Component: "defaults",
		Message:   "fetch defaults failed, retrying",
		Error:     "dial tcp: refused",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []string{"plain text", `{"other":1}`, "{"} {
		if got := Parse(raw); got.Raw != raw {
			t.Fatalf("Parse(%q).Raw = %q, want raw line", raw, got.Raw)
		}
	}
}

func TestEntryString(t *testing.T) {
	e := Entry{Level: "info", Component: "wsconn", Message: "connected"}
	if got := e.String(); got != "--:--:--.--- INFO  [wsconn] connected" {
		t.Fatalf("String = %q", got)
	}
	e = Entry{Level: "error", Message: "boom", Error: "eof"}
	if got := e.String(); !strings.HasSuffix(got, "ERROR boom error=eof") {
		t.Fatalf("String = %q", got)
	}
	if got := (Entry{Raw: "x"}).String(); got != "x" {
		t.Fatalf("raw String = %q", got)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsrmon.log")
	data := `{"level":"info","message":"one"}` + "\n\n" + `{"level":"info","message":"two"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Message != "one" || entries[1].Message != "two" {
		t.Fatalf("entries = %+v", entries)
	}
}
