package domain

// Snapshot is an immutable value copy of a session's order and
// conversation state, taken for hand-off payloads and prompt building.
type Snapshot struct {
	Order map[string]OrderItem `json:"current_order"`
	State State                `json:"conversation_state"`
}

// HandoffData is the structured payload transferred between agents.
// It is a value copy: mutating the sender's session after the payload
// is built does not change what the receiver sees.
type HandoffData struct {
	Task         string               `json:"task"`
	Instructions string               `json:"instructions"`
	State        State                `json:"context"`
	Order        map[string]OrderItem `json:"current_order,omitempty"`
}

// NewHandoffData builds a payload from a snapshot of the sender.
func NewHandoffData(task, instructions string, snap Snapshot) HandoffData {
	return HandoffData{
		Task:         task,
		Instructions: instructions,
		State:        snap.State,
		Order:        snap.Order,
	}
}
