package model

// ToolResult is the outcome of executing one model-requested tool
// invocation. Exactly one is produced per invocation, in invocation order;
// a failed invocation never removes or reorders its siblings.
type ToolResult struct {
	Tool      string `json:"tool"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	EventLink string `json:"event_link,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	DraftID   string `json:"draft_id,omitempty"`
}

// ChatOutcome is the dispatcher's aggregated result for one request.
type ChatOutcome struct {
	Message     string
	ToolResults []ToolResult
	NeedsAuth   bool
}
