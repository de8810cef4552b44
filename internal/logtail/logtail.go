package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one decoded line of the fsrmon log.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Error     string

	// Raw holds lines that are not structured log records.
	Raw string
}

// Read returns at most maxLines from the end of the file at path. A missing
// file reads as empty.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Tail reads and decodes the last maxLines records of the log at path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse decodes one zerolog JSON line. Anything else is kept as Raw.
func Parse(line string) Entry {
	var rec struct {
		Time      string `json:"time"`
		Level     string `json:"level"`
		Component string `json:"component"`
		Message   string `json:"message"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &rec); err != nil || (rec.Level == "" && rec.Message == "") {
		return Entry{Raw: line}
	}
	e := Entry{
		Level:     rec.Level,
		Component: rec.Component,
		Message:   rec.Message,
		Error:     rec.Error,
	}
	if ts, err := time.Parse(time.RFC3339Nano, rec.Time); err == nil {
		e.Time = ts
	}
	return e
}

// String renders the entry as one display line.
func (e Entry) String() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if e.Time.IsZero() {
		b.WriteString("--:--:--.---")
	} else {
		b.WriteString(e.Time.Local().Format("15:04:05.000"))
	}
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-5s", strings.ToUpper(e.Level)))
	if e.Component != "" {
		b.WriteString(" [" + e.Component + "]")
	}
	if e.Message != "" {
		b.WriteString(" " + e.Message)
	}
	if e.Error != "" {
		b.WriteString(" error=" + e.Error)
	}
	return b.String()
}
