// Package capability defines the closed set of host capabilities a model may
// call: their names, argument schemas, defaults, and confirmation previews.
//
// The table is static. Lookup is the only way to resolve a name coming from
// a model reply, and Prepare is the invocation boundary: it fills defaults
// and rejects arguments that do not match the schema before anything runs.
package capability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/fwojciec/relay"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Name identifies a capability.
type Name string

const (
	ReadFile   Name = "read_file"
	AppendLog  Name = "append_log"
	RunCommand Name = "run_command"
	SystemInfo Name = "system_info"
	PingHost   Name = "ping_host"
	ScanPort   Name = "scan_port"
	SSHCommand Name = "ssh_command"
)

// All returns every capability in prompt order.
func All() []Name {
	return []Name{ReadFile, AppendLog, RunCommand, SystemInfo, PingHost, ScanPort, SSHCommand}
}

// Spec describes one capability.
type Spec struct {
	Name        Name
	Description string
	// Signature is the human-readable call shape shown in the system prompt.
	Signature string

	schemaJSON string
	defaults   map[string]any
	// optional string arguments that are dropped when empty
	optional []string
	compiled *jsonschema.Schema
}

// InputSchema returns a fresh copy of the JSON Schema for the arguments.
func (s Spec) InputSchema() map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(s.schemaJSON), &out); err != nil {
		panic(fmt.Sprintf("capability %s: schema: %v", s.Name, err))
	}
	return out
}

var table = buildTable()

// Lookup resolves a tool name from a model reply.
func Lookup(name string) (Spec, bool) {
	s, ok := table[Name(name)]
	return s, ok
}

// Prepare applies defaults to args and validates the result against the
// capability's schema. Empty optional strings are dropped. The returned map
// is a copy; args is not modified. Unknown names wrap relay.ErrUnknownTool,
// invalid arguments wrap relay.ErrValidation.
func Prepare(name string, args map[string]any) (map[string]any, error) {
	spec, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, relay.ErrUnknownTool)
	}
	out := make(map[string]any, len(args)+len(spec.defaults))
	for k, v := range args {
		if v == nil {
			continue
		}
		out[k] = v
	}
	for _, k := range spec.optional {
		if s, ok := out[k].(string); ok && strings.TrimSpace(s) == "" {
			delete(out, k)
		}
	}
	for k, v := range spec.defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	if err := spec.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks args against the schema without applying defaults.
func (s Spec) Validate(args map[string]any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("%s: encode arguments: %v: %w", s.Name, err, relay.ErrValidation)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: decode arguments: %v: %w", s.Name, err, relay.ErrValidation)
	}
	if err := s.compiled.Validate(inst); err != nil {
		return fmt.Errorf("%s: invalid arguments: %v: %w", s.Name, err, relay.ErrValidation)
	}
	return nil
}

// Defaults returns a copy of the default argument values.
func (s Spec) Defaults() map[string]any {
	return maps.Clone(s.defaults)
}

func buildTable() map[Name]Spec {
	specs := []Spec{
		{
			Name:        ReadFile,
			Description: "Return the contents of a file.",
			Signature:   "read_file(path: string)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"path": {"type": "string", "minLength": 1, "description": "File to read"}
				},
				"required": ["path"],
				"additionalProperties": false
			}`,
		},
		{
			Name:        AppendLog,
			Description: "Append a line to a log file.",
			Signature:   "append_log(path: string, text: string)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"path": {"type": "string", "minLength": 1, "description": "Log file to append to"},
					"text": {"type": "string", "description": "Line to append"}
				},
				"required": ["path", "text"],
				"additionalProperties": false
			}`,
		},
		{
			Name:        RunCommand,
			Description: "Execute a shell command and return stdout, stderr, and the exit code.",
			Signature:   "run_command(command: string, timeout: number = 30)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"command": {"type": "string", "description": "Shell command to run"},
					"timeout": {"type": "number", "exclusiveMinimum": 0, "description": "Timeout in seconds"}
				},
				"required": ["command"],
				"additionalProperties": false
			}`,
			defaults: map[string]any{"timeout": 30},
		},
		{
			Name:        SystemInfo,
			Description: "Return basic system information.",
			Signature:   "system_info()",
			schemaJSON: `{
				"type": "object",
				"properties": {},
				"additionalProperties": false
			}`,
		},
		{
			Name:        PingHost,
			Description: "Ping a host and return the raw output.",
			Signature:   "ping_host(host: string, count: integer = 4, timeout: integer = 2)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"host": {"type": "string", "description": "Host name or address"},
					"count": {"type": "integer", "description": "Echo requests to send (clamped to 1..10)"},
					"timeout": {"type": "integer", "description": "Per-reply timeout in seconds (at least 1)"}
				},
				"required": ["host"],
				"additionalProperties": false
			}`,
			defaults: map[string]any{"count": 4, "timeout": 2},
		},
		{
			Name:        ScanPort,
			Description: "Attempt a TCP connection to determine if a port is open.",
			Signature:   "scan_port(host: string, port: integer, timeout: number = 2.0)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"host": {"type": "string", "description": "Host name or address"},
					"port": {"type": "integer", "minimum": 1, "maximum": 65535, "description": "TCP port"},
					"timeout": {"type": "number", "description": "Connect timeout in seconds"}
				},
				"required": ["host", "port"],
				"additionalProperties": false
			}`,
			defaults: map[string]any{"timeout": 2.0},
		},
		{
			Name:        SSHCommand,
			Description: "Run a command over SSH using the local ssh binary.",
			Signature:   "ssh_command(host: string, command: string, user?: string, port: integer = 22, key_path?: string, timeout: number = 30)",
			schemaJSON: `{
				"type": "object",
				"properties": {
					"host": {"type": "string", "description": "Remote host"},
					"command": {"type": "string", "description": "Remote command"},
					"user": {"type": "string", "description": "Remote user"},
					"port": {"type": "integer", "minimum": 1, "maximum": 65535, "description": "SSH port"},
					"key_path": {"type": "string", "description": "Identity file"},
					"timeout": {"type": "number", "description": "Timeout in seconds"}
				},
				"required": ["host", "command"],
				"additionalProperties": false
			}`,
			defaults: map[string]any{"port": 22, "timeout": 30},
			optional: []string{"user", "key_path"},
		},
	}

	c := jsonschema.NewCompiler()
	for _, s := range specs {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(s.schemaJSON))
		if err != nil {
			panic(fmt.Sprintf("capability %s: schema: %v", s.Name, err))
		}
		if err := c.AddResource(string(s.Name)+".json", doc); err != nil {
			panic(fmt.Sprintf("capability %s: add schema: %v", s.Name, err))
		}
	}
	out := make(map[Name]Spec, len(specs))
	for _, s := range specs {
		compiled, err := c.Compile(string(s.Name) + ".json")
		if err != nil {
			panic(fmt.Sprintf("capability %s: compile schema: %v", s.Name, err))
		}
		s.compiled = compiled
		out[s.Name] = s
	}
	return out
}
