package relay

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	Prompt    int // "you>" prompt
	Assistant int // "assistant>" prefix
	ToolCall  int // confirmation prompts
	Tool      int // "[tool:name]" prefix
	Error     int // notices and errors
	Success   int // final answer header
	Muted     int // spinner
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Prompt:    4,
		Assistant: 5,
		ToolCall:  3,
		Tool:      6,
		Error:     1,
		Success:   2,
		Muted:     8,
	}
}
