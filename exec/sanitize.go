package exec

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes process output safe to show and to send to a model. It
// strips ANSI escape sequences and control characters other than tab and
// newline, normalizes CRLF to LF, and resolves lone carriage returns the way
// a terminal would, by overwriting the line from its first column.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r > 0x1f {
			return r
		}
		return -1
	}, s)
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = overwrite(line)
	}
	return strings.Join(lines, "\n")
}

// overwrite replays a line containing carriage returns. Characters past the
// end of a shorter rewrite survive.
func overwrite(line string) string {
	if !strings.ContainsRune(line, '\r') {
		return line
	}
	var cells []rune
	col := 0
	for _, r := range line {
		if r == '\r' {
			col = 0
			continue
		}
		if col < len(cells) {
			cells[col] = r
		} else {
			cells = append(cells, r)
		}
		col++
	}
	return string(cells)
}
