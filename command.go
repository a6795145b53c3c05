package relay

// Command is a sealed interface for the interpreted intent of one assistant
// reply. Exactly one variant is produced per reply.
// The unexported marker method prevents external implementations.
type Command interface {
	isCommand()
}

// ToolCall asks for one capability to be invoked with the given arguments.
// Embedded is true when the object was recovered from surrounding prose.
type ToolCall struct {
	Name     string
	Args     map[string]any
	Embedded bool
}

func (ToolCall) isCommand() {}

// FinalAnswer ends the turn with a summary for the user.
type FinalAnswer struct {
	Summary  string
	Embedded bool
}

func (FinalAnswer) isCommand() {}

// PlainText is a conversational reply with no recoverable command.
type PlainText struct {
	Text string
}

func (PlainText) isCommand() {}

// Interface compliance checks.
var (
	_ Command = ToolCall{}
	_ Command = FinalAnswer{}
	_ Command = PlainText{}
)
