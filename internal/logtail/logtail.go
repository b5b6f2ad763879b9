package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns the whole file. A missing file yields no
// lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
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
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is the severity of one log line.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

// Entry is one parsed line of the console log.
type Entry struct {
	Time    string
	Level   Level
	Logger  string
	Message string
	Fields  string
	Raw     string
}

// Parse splits a line written by the console encoder: tab-separated time,
// level, optional logger name, message and an optional JSON field object.
// Lines in any other shape come back with only Raw and Message set.
func Parse(line string) Entry {
	e := Entry{Raw: line, Message: line}
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return e
	}
	level := parseLevel(parts[1])
	if level == LevelUnknown {
		return e
	}
	e.Time = parts[0]
	e.Level = level
	rest := parts[2:]
	if n := len(rest); n > 1 && strings.HasPrefix(rest[n-1], "{") {
		e.Fields = rest[n-1]
		rest = rest[:n-1]
	}
	if len(rest) > 1 {
		e.Logger = rest[0]
		rest = rest[1:]
	}
	e.Message = strings.Join(rest, " ")
	return e
}

func parseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return LevelError
	default:
		return LevelUnknown
	}
}

// Filter keeps the lines at or above min. Unparseable lines are continuation
// output (stack traces) and stay with the entry before them.
func Filter(lines []string, min Level) []Entry {
	out := make([]Entry, 0, len(lines))
	keep := min <= LevelDebug
	for _, line := range lines {
		e := Parse(line)
		if e.Level != LevelUnknown {
			keep = e.Level >= min
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}
