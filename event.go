package relay

// Event is a sealed interface for what the agent loop surfaces to the user
// while a turn runs. Events never feed back into the transcript.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventAssistantText carries conversational text from the model: a plain
// reply, or the prose around an embedded command.
type EventAssistantText struct {
	Text string
}

func (EventAssistantText) event() {}

// EventToolResult reports a finished tool invocation. Display is the
// human-facing rendering; Result is what the transcript receives.
type EventToolResult struct {
	Tool    string
	Display string
	Result  ToolResult
}

func (EventToolResult) event() {}

// EventFinal carries the summary of a final answer.
type EventFinal struct {
	Summary string
}

func (EventFinal) event() {}

// EventNotice reports a turn that ended early: unknown tool, declined
// confirmation, or round limit.
type EventNotice struct {
	Reason StopReason
	Text   string
}

func (EventNotice) event() {}

// Interface compliance checks.
var (
	_ Event = EventAssistantText{}
	_ Event = EventToolResult{}
	_ Event = EventFinal{}
	_ Event = EventNotice{}
)
