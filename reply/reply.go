// Package reply interprets the raw text of a chat reply as a command.
//
// A reply is one of three shapes: a tool call ({"tool": ..., "args": {...}}),
// a final answer ({"final": ...}), or plain text. The JSON object may be the
// whole reply or be embedded in surrounding prose; the first balanced object
// that decodes is used.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/relay"
)

// Parse returns exactly one command for text. It never fails: anything that
// is not a recognizable tool call or final answer is PlainText.
func Parse(text string) relay.Command {
	var whole any
	if err := json.Unmarshal([]byte(text), &whole); err == nil {
		obj, ok := whole.(map[string]any)
		if !ok {
			return relay.PlainText{Text: text}
		}
		return fromObject(obj, text, false)
	}
	if obj, ok := ExtractObject(text); ok {
		return fromObject(obj, text, true)
	}
	return relay.PlainText{Text: text}
}

func fromObject(obj map[string]any, text string, embedded bool) relay.Command {
	if name, ok := obj["tool"]; ok {
		args, ok := obj["args"].(map[string]any)
		if !ok {
			args = map[string]any{}
		}
		return relay.ToolCall{Name: stringify(name), Args: args, Embedded: embedded}
	}
	if final, ok := obj["final"]; ok {
		return relay.FinalAnswer{Summary: stringify(final), Embedded: embedded}
	}
	return relay.PlainText{Text: text}
}

// stringify renders a JSON value as text: strings verbatim, null as empty,
// anything else as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// ExtractObject finds the first JSON object embedded in text. Starting at
// each '{' in turn, it tracks brace depth while skipping quoted strings
// (honoring backslash escapes) and tries to decode the balanced span. A span
// that fails to decode moves the search to the next '{' after its start.
func ExtractObject(text string) (map[string]any, bool) {
	start := strings.IndexByte(text, '{')
	for start != -1 {
		if end, ok := balancedEnd(text, start); ok {
			var obj map[string]any
			if err := json.Unmarshal([]byte(text[start:end]), &obj); err == nil {
				return obj, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			return nil, false
		}
		start += next + 1
	}
	return nil, false
}

// balancedEnd returns the index just past the '}' that closes the '{' at
// start.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}
