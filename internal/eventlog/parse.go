package eventlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatLine renders e as a single log line:
//
//	2026-01-02T15:04:05Z  outcome=ok  compiler=native  filter=lanczos  duration=1.2s  source="a.png"  output="b.icns"
//
// A non-empty error is appended as error="...".
func FormatLine(e Entry) string {
	line := fmt.Sprintf("%s  outcome=%s  compiler=%s  filter=%s  duration=%s  source=%q  output=%q",
		stamp(e).Format(time.RFC3339), e.Outcome, orDash(e.Compiler), orDash(e.Filter),
		e.Duration.Round(time.Millisecond), e.Source, e.Output)
	if e.Error != "" {
		line += fmt.Sprintf("  error=%q", e.Error)
	}
	return line
}

// ParseEntries parses log content, one entry per line. Malformed lines
// are silently skipped.
func ParseEntries(content string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(content, "\n") {
		if e, ok := ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseLine parses a line written by FormatLine.
func ParseLine(line string) (Entry, bool) {
	line = strings.TrimRight(line, "\r")
	ts, ok := ExtractTimestamp(line)
	if !ok {
		return Entry{}, false
	}
	fields := parseFields(line[strings.Index(line, "  "):])
	outcome := Outcome(fields["outcome"])
	if outcome != OutcomeOK && outcome != OutcomeFailed {
		return Entry{}, false
	}
	d, _ := time.ParseDuration(fields["duration"])
	return Entry{
		Time:     ts,
		Outcome:  outcome,
		Source:   fields["source"],
		Output:   fields["output"],
		Compiler: fromDash(fields["compiler"]),
		Filter:   fromDash(fields["filter"]),
		Duration: d,
		Error:    fields["error"],
	}, true
}

// ExtractTimestamp parses the RFC3339 timestamp at the start of a log line
// (everything before the first "  " double-space separator). Returns the
// parsed time and true on success, or zero time and false on failure.
func ExtractTimestamp(line string) (time.Time, bool) {
	tsEnd := strings.Index(line, "  ")
	if tsEnd < 0 {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, line[:tsEnd])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// parseFields splits a run of key=value pairs. Values are either bare
// words or Go %q-quoted strings. Parsing stops at the first malformed
// pair.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for {
		s = strings.TrimLeft(s, " ")
		eq := strings.IndexByte(s, '=')
		if eq <= 0 || strings.ContainsRune(s[:eq], ' ') {
			return fields
		}
		key := s[:eq]
		s = s[eq+1:]
		if strings.HasPrefix(s, `"`) {
			val, n := extractQuoted(s)
			if n == 0 {
				return fields
			}
			fields[key] = val
			s = s[n:]
			continue
		}
		end := strings.IndexByte(s, ' ')
		if end < 0 {
			end = len(s)
		}
		fields[key] = s[:end]
		s = s[end:]
	}
}

// extractQuoted extracts a Go %q-encoded string from the start of s.
// It finds the matching closing quote (respecting backslash escapes),
// then uses strconv.Unquote to decode the value. Returns the value and
// the number of bytes consumed, or 0 on failure.
func extractQuoted(s string) (string, int) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++ // skip escaped character
			continue
		}
		if s[i] == '"' {
			text, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", 0
			}
			return text, i + 1
		}
	}
	return "", 0
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func fromDash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
