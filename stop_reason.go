package relay

// StopReason indicates why a turn ended.
type StopReason string

const (
	StopFinal       StopReason = "final"
	StopPlainText   StopReason = "plain_text"
	StopUnknownTool StopReason = "unknown_tool"
	StopDeclined    StopReason = "declined"
	StopRoundLimit  StopReason = "round_limit"
)
