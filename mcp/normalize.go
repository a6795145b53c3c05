package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolError is returned when the worker flags its reply as an error.
// Payload is the whole reply in its JSON form.
type ToolError struct {
	Payload map[string]any
	message string
}

func (e *ToolError) Error() string {
	return "tool call failed: " + e.message
}

// Normalize reduces a worker reply to a single value.
//
// A reply flagged as an error becomes a *ToolError. Structured content is
// returned as the raw JSON of the text block that carries it, keeping the
// worker's field order, or as is when no block does. Otherwise each content block is reduced to its text, or to
// its JSON form when it has none: zero blocks give nil, one block gives its
// value, and several give a []any in order.
func Normalize(res *sdk.CallToolResult) (any, error) {
	if res == nil {
		return nil, nil
	}
	if res.IsError {
		return nil, toolError(res)
	}
	if res.StructuredContent != nil {
		if raw, ok := rawStructured(res); ok {
			return raw, nil
		}
		return res.StructuredContent, nil
	}
	values := make([]any, 0, len(res.Content))
	for _, c := range res.Content {
		values = append(values, reduce(c))
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}
	return values, nil
}

// rawStructured finds a text block holding the same JSON value as the
// structured content. Decoding into a map loses key order; the text does not.
func rawStructured(res *sdk.CallToolResult) (json.RawMessage, bool) {
	want := structural(res.StructuredContent)
	for _, c := range res.Content {
		t, ok := c.(*sdk.TextContent)
		if !ok {
			continue
		}
		var got any
		if err := json.Unmarshal([]byte(t.Text), &got); err != nil {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(t.Text)); err != nil {
			continue
		}
		return json.RawMessage(buf.Bytes()), true
	}
	return nil, false
}

func reduce(c sdk.Content) any {
	switch b := c.(type) {
	case *sdk.TextContent:
		return b.Text
	case *sdk.EmbeddedResource:
		if b.Resource == nil {
			return structural(b)
		}
		// The text field is omitted from the wire when empty, so an empty
		// inline text cannot be told apart from none.
		if b.Resource.Text != "" {
			return b.Resource.Text
		}
		return structural(b.Resource)
	}
	return structural(c)
}

// structural returns v as generic JSON values.
func structural(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return string(data)
	}
	return out
}

func toolError(res *sdk.CallToolResult) *ToolError {
	var texts []string
	for _, c := range res.Content {
		if t, ok := c.(*sdk.TextContent); ok && t.Text != "" {
			texts = append(texts, t.Text)
		}
	}
	payload, _ := structural(res).(map[string]any)
	msg := strings.Join(texts, "\n")
	if msg == "" {
		data, _ := json.Marshal(payload)
		msg = string(data)
	}
	return &ToolError{Payload: payload, message: msg}
}
