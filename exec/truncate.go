package exec

import (
	"strings"
	"unicode/utf8"
)

// Output limits applied to each captured stream.
const (
	DefaultMaxLines = 2000
	DefaultMaxBytes = 50 * 1024
)

// TruncateResult describes the outcome of tail truncation.
type TruncateResult struct {
	Content     string
	Truncated   bool
	TotalLines  int
	OutputLines int
	// Partial is set when even the last line did not fit and only its tail
	// was kept.
	Partial bool
}

// TruncateTail keeps the last maxLines lines of s, stopping early once
// maxBytes would be exceeded. Only whole lines are kept, except when the
// last line alone is larger than maxBytes; then its tail is returned, cut on
// a rune boundary.
func TruncateTail(s string, maxLines, maxBytes int) TruncateResult {
	if s == "" {
		return TruncateResult{}
	}
	body := strings.TrimSuffix(s, "\n")
	trailing := len(body) < len(s)
	total := strings.Count(body, "\n") + 1

	if total <= maxLines && len(s) <= maxBytes {
		return TruncateResult{Content: s, TotalLines: total, OutputLines: total}
	}

	budget := maxBytes
	if trailing {
		budget--
	}

	from, kept := len(body), 0
	for end := len(body); kept < maxLines && end >= 0; kept++ {
		start := strings.LastIndexByte(body[:end], '\n') + 1
		if len(body)-start > budget {
			break
		}
		from = start
		end = start - 1
	}

	if kept == 0 {
		last := body[strings.LastIndexByte(body, '\n')+1:]
		cut := max(len(last)-maxBytes, 0)
		for cut < len(last) && !utf8.RuneStart(last[cut]) {
			cut++
		}
		return TruncateResult{
			Content:     last[cut:],
			Truncated:   true,
			TotalLines:  total,
			OutputLines: 1,
			Partial:     true,
		}
	}

	content := body[from:]
	if trailing {
		content += "\n"
	}
	return TruncateResult{
		Content:     content,
		Truncated:   true,
		TotalLines:  total,
		OutputLines: kept,
	}
}
