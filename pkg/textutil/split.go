// Package textutil holds the small string helpers the assembler uses to
// tokenize program text.
package textutil

import "strings"

// Split breaks s on every occurrence of sep and drops empty fields, so runs
// of separators and leading/trailing separators produce no tokens.
func Split(s string, sep byte) []string {
	var fields []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != sep {
			continue
		}
		if i > start {
			fields = append(fields, s[start:i])
		}
		start = i + 1
	}
	if start < len(s) {
		fields = append(fields, s[start:])
	}
	return fields
}

// Lines splits s into newline-delimited lines. A single trailing '\r' is
// removed from each line. Empty lines are kept so that the index of a line
// plus one is its line number in the source.
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
