package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/relay"
	"github.com/fwojciec/relay/capability"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Prompt returns the confirmation question for a call: the concrete preview
// when one can be built, the tool name and indented arguments otherwise.
func Prompt(name string, args map[string]any) string {
	if p := capability.Preview(name, args); p != "" {
		return fmt.Sprintf("Execute: %s? [y/N]: ", p)
	}
	return fmt.Sprintf("Execute tool '%s' with args %s? [y/N]: ", name, indent(args))
}

// Display shapes a result for the human echo: a top-level stdout string,
// else a stdout string inside a result object, else the whole result
// indented.
func Display(r relay.ToolResult) string {
	if s, ok := stdout(r.Get("stdout")); ok {
		return s
	}
	if inner, ok := r.Get("result"); ok {
		switch m := inner.(type) {
		case map[string]any:
			v, found := m["stdout"]
			if s, ok := stdout(v, found); ok {
				return s
			}
		case *orderedmap.OrderedMap[string, any]:
			if s, ok := stdout(m.Get("stdout")); ok {
				return s
			}
		}
	}
	return r.Pretty()
}

func stdout(v any, found bool) (string, bool) {
	if !found {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func indent(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
