package capability

import "strings"

// SystemPrompt builds the system instructions for a run: the preamble, the
// two recognized JSON output shapes, and the call signatures of the enabled
// capabilities.
func SystemPrompt(preamble string, names []Name) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(preamble))
	b.WriteString("\n\nYou can call tools by replying with JSON in the following shape:\n")
	b.WriteString(`{ "tool": "<tool_name>", "args": { ... } }`)
	b.WriteString("\n\nAvailable tools:\n")
	for _, n := range names {
		spec, ok := table[n]
		if !ok {
			continue
		}
		b.WriteString("- ")
		b.WriteString(spec.Signature)
		b.WriteString("\n")
	}
	b.WriteString("\nWhen you reach a conclusion, respond with JSON:\n")
	b.WriteString(`{ "final": "<your summary or answer>" }`)
	b.WriteString("\n\nFor short, conversational replies that don't require tool usage, respond with plain text.")
	return b.String()
}

// ChatPreamble opens the system prompt of the interactive assistant.
const ChatPreamble = "You are a helpful command-line automation assistant."

// MonitorPreamble opens the system prompt of the log monitor.
const MonitorPreamble = `You are an autonomous agent for log monitoring.
Use read_file to inspect logs and append_log to write findings.`
