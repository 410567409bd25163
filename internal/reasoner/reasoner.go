// Package reasoner abstracts the LLM runtime consumed by the agents.
// The core never depends on a concrete model API: it hands over a
// prompt plus tool list and gets back either a final text, tool calls,
// or a hand-off request.
package reasoner

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ordena/ordena/internal/domain"
)

// Tool describes a callable tool exposed to the reasoner.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a tool invocation requested by the reasoner.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolResult carries the outcome of an executed tool call back into
// the next invocation of the same turn.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// HandoffRequest asks the router to transfer the conversation to
// another handler with a task description.
type HandoffRequest struct {
	Target       domain.Handler
	Task         string
	Instructions string
}

// Request is one reasoner invocation for a handler.
type Request struct {
	Handler      domain.Handler
	Instructions string
	// Messages is the ordered history; Input is the composed context
	// message for the current turn.
	Messages []domain.Message
	Input    string
	Tools    []Tool
	Snapshot domain.Snapshot

	// PriorCalls/ToolResults carry the tool round-trips already made
	// within the current turn.
	PriorCalls  []ToolCall
	ToolResults []ToolResult
}

// Result is the reasoner's answer: exactly one of FinalText, ToolCalls
// or Handoff is meaningful.
type Result struct {
	FinalText string
	ToolCalls []ToolCall
	Handoff   *HandoffRequest
}

// Reasoner consumes a prompt and tool list and returns a result.
type Reasoner interface {
	Invoke(ctx context.Context, req *Request) (*Result, error)
}

const handoffToolPrefix = "transfer_to_"

// HandoffToolName returns the tool name under which a hand-off to the
// given handler is exposed (e.g. transfer_to_sales_agent).
func HandoffToolName(h domain.Handler) string {
	return handoffToolPrefix + string(h) + "_agent"
}

// ParseHandoffTool recognizes hand-off tool names and returns the
// target handler.
func ParseHandoffTool(name string) (domain.Handler, bool) {
	if !strings.HasPrefix(name, handoffToolPrefix) {
		return "", false
	}
	target := strings.TrimSuffix(strings.TrimPrefix(name, handoffToolPrefix), "_agent")
	switch domain.Handler(target) {
	case domain.HandlerMain, domain.HandlerProducts, domain.HandlerSales:
		return domain.Handler(target), true
	}
	return "", false
}

// handoffArgs is the payload the reasoner supplies on a hand-off call.
type handoffArgs struct {
	Task         string `json:"task"`
	Instructions string `json:"instructions"`
}
