package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Invoker runs a named capability with an argument mapping and returns the
// capability's reply. Errors are invocation failures: an unreachable worker,
// a failed handshake, an explicit worker error, a transport error, or a
// timeout.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}

// Confirmer blocks until the human gives an explicit yes/no decision for
// prompt. An error means no decision was obtained (interrupt, closed input).
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Status values carried by every ToolResult.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ToolResult is the outcome of one capability invocation. It is always a
// mapping with a status field; error results carry an error message. Field
// order follows the source payload so the transcript shows fields the way
// the capability produced them. A ToolResult is never mutated after
// construction.
type ToolResult struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewToolResult converts a capability reply into a ToolResult.
//
// Raw JSON objects (json.RawMessage or []byte) keep their field order. Go
// maps are ordered by key. Structs and other values that marshal to a JSON
// object keep their marshalled order.
// Anything that is not a mapping is wrapped as {"status":"ok","result":v}.
// A mapping without a status gains one: "error" if it carries a non-empty
// error field, "ok" otherwise.
func NewToolResult(v any) ToolResult {
	var fields *orderedmap.OrderedMap[string, any]
	switch val := v.(type) {
	case ToolResult:
		return val
	case *orderedmap.OrderedMap[string, any]:
		fields = orderedmap.New[string, any]()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			fields.Set(pair.Key, pair.Value)
		}
	case json.RawMessage:
		fields = decodeObject(val)
	case []byte:
		fields = decodeObject(val)
	case map[string]any:
		fields = orderedmap.New[string, any]()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fields.Set(k, val[k])
		}
	case nil, string, bool, float64, int, []any:
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ErrorResult(fmt.Errorf("encode result: %w", err))
		}
		fields = decodeObject(data)
	}
	if fields == nil {
		fields = orderedmap.New[string, any]()
		fields.Set("status", StatusOK)
		fields.Set("result", wrappedValue(v))
		return ToolResult{fields: fields}
	}
	if _, ok := fields.Get("status"); !ok {
		status := StatusOK
		if msg, ok := fields.Get("error"); ok && msg != nil && msg != "" {
			status = StatusError
		}
		fields.Set("status", status)
		_ = fields.MoveToFront("status")
	}
	return ToolResult{fields: fields}
}

// ErrorResult returns {"status":"error","error":err.Error()}.
func ErrorResult(err error) ToolResult {
	fields := orderedmap.New[string, any]()
	fields.Set("status", StatusError)
	fields.Set("error", err.Error())
	return ToolResult{fields: fields}
}

func decodeObject(data []byte) *orderedmap.OrderedMap[string, any] {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	om := orderedmap.New[string, any]()
	if err := om.UnmarshalJSON(trimmed); err != nil {
		return nil
	}
	return om
}

// wrappedValue decodes raw JSON that is not an object so the result field
// holds a plain value instead of bytes.
func wrappedValue(v any) any {
	var raw []byte
	switch val := v.(type) {
	case json.RawMessage:
		raw = val
	case []byte:
		raw = val
	default:
		return v
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}

// Status returns the status field.
func (r ToolResult) Status() string {
	v, ok := r.Get("status")
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// IsError reports whether the status is "error".
func (r ToolResult) IsError() bool { return r.Status() == StatusError }

// ErrorMessage returns the error field, or "" when absent.
func (r ToolResult) ErrorMessage() string {
	v, ok := r.Get("error")
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Get returns the value of a top-level field.
func (r ToolResult) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Keys returns the top-level field names in order.
func (r ToolResult) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON encodes the result as a JSON object in field order. HTML
// characters and non-ASCII text are written as-is.
func (r ToolResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.fields != nil {
		first := true
		for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := encodeValue(&buf, pair.Key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := encodeValue(&buf, pair.Value); err != nil {
				return nil, fmt.Errorf("field %q: %w", pair.Key, err)
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// String returns the compact JSON encoding used in the transcript.
func (r ToolResult) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf(`{"status":"error","error":%q}`, err.Error())
	}
	return string(data)
}

// Pretty returns the JSON encoding indented by two spaces.
func (r ToolResult) Pretty() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return r.String()
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}
