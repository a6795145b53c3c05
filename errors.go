package relay

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request, transcript, or tool argument failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnknownTool indicates the model asked for a tool outside the capability table.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDeclined indicates the human refused to run a tool.
	ErrDeclined = errors.New("declined")

	// ErrRoundLimit indicates a turn used up its tool rounds without a final answer.
	ErrRoundLimit = errors.New("round limit reached")
)
