package capability

import (
	"fmt"
	"strconv"
	"strings"
)

// Preview renders the concrete effect of a call when the capability allows
// reconstructing one: the literal shell command for run_command, and the
// derived ping or ssh invocation with its resolved flags. It returns "" when
// no preview can be built.
func Preview(name string, args map[string]any) string {
	switch Name(name) {
	case RunCommand:
		if cmd, ok := args["command"].(string); ok && strings.TrimSpace(cmd) != "" {
			return cmd
		}
	case PingHost:
		host := stringArg(args, "host")
		if host == "" {
			return ""
		}
		return fmt.Sprintf("ping -c %d -W %d %s", intArg(args, "count", 4), intArg(args, "timeout", 2), host)
	case SSHCommand:
		host := stringArg(args, "host")
		command := stringArg(args, "command")
		if host == "" || command == "" {
			return ""
		}
		target := host
		if user := stringArg(args, "user"); user != "" {
			target = user + "@" + host
		}
		parts := []string{"ssh", "-p", strconv.Itoa(intArg(args, "port", 22)), "-o", "BatchMode=yes"}
		if key := stringArg(args, "key_path"); key != "" {
			parts = append(parts, "-i", key)
		}
		parts = append(parts, target, command)
		return strings.Join(parts, " ")
	}
	return ""
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// intArg reads a numeric argument, falling back to def when it is missing,
// zero, or not a number.
func intArg(args map[string]any, key string, def int) int {
	var n int
	switch v := args[key].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		n = parsed
	}
	if n == 0 {
		return def
	}
	return n
}
