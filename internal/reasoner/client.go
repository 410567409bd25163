package reasoner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a reasoner client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements Reasoner.
var _ Reasoner = (*Client)(nil)

type chatMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []apiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

type apiTool struct {
	Type     string          `json:"type"`
	Function apiToolFunction `json:"function"`
}

type apiToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type apiToolCall struct {
	ID       string              `json:"id"`
	Type     string              `json:"type"`
	Function apiToolCallFunction `json:"function"`
}

type apiToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []apiTool     `json:"tools,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message      *chatMessage `json:"message,omitempty"`
		FinishReason string       `json:"finish_reason,omitempty"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Invoke sends one chat completion request and maps the answer onto
// the Result protocol: hand-off tool calls become a HandoffRequest,
// other tool calls are returned for execution, plain text is final.
func (c *Client) Invoke(ctx context.Context, req *Request) (*Result, error) {
	apiReq := chatCompletionRequest{
		Model:    c.model,
		Messages: c.buildMessages(req),
		Tools:    buildTools(req.Tools),
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call reasoner: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != nil {
			return nil, fmt.Errorf("reasoner error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("reasoner returned status %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message == nil {
		return nil, fmt.Errorf("reasoner returned no choices")
	}

	return mapMessage(completion.Choices[0].Message)
}

// buildMessages composes system instructions, history, the current
// input, and any tool round-trips already made this turn.
func (c *Client) buildMessages(req *Request) []chatMessage {
	messages := make([]chatMessage, 0, len(req.Messages)+len(req.ToolResults)+3)
	messages = append(messages, chatMessage{Role: "system", Content: req.Instructions})
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Input})

	if len(req.PriorCalls) > 0 {
		calls := make([]apiToolCall, 0, len(req.PriorCalls))
		for _, call := range req.PriorCalls {
			calls = append(calls, apiToolCall{
				ID:   call.ID,
				Type: "function",
				Function: apiToolCallFunction{
					Name:      call.Name,
					Arguments: string(call.Arguments),
				},
			})
		}
		messages = append(messages, chatMessage{Role: "assistant", ToolCalls: calls})
		for _, result := range req.ToolResults {
			messages = append(messages, chatMessage{
				Role:       "tool",
				Content:    result.Content,
				ToolCallID: result.CallID,
			})
		}
	}
	return messages
}

func buildTools(tools []Tool) []apiTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]apiTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, apiTool{
			Type: "function",
			Function: apiToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// mapMessage converts an assistant message into a Result. A hand-off
// tool call takes precedence over everything else in the message.
func mapMessage(msg *chatMessage) (*Result, error) {
	for _, call := range msg.ToolCalls {
		target, ok := ParseHandoffTool(call.Function.Name)
		if !ok {
			continue
		}
		var args handoffArgs
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("failed to decode handoff arguments: %w", err)
		}
		return &Result{Handoff: &HandoffRequest{
			Target:       target,
			Task:         args.Task,
			Instructions: args.Instructions,
		}}, nil
	}

	if len(msg.ToolCalls) > 0 {
		calls := make([]ToolCall, 0, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			calls = append(calls, ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: json.RawMessage(call.Function.Arguments),
			})
		}
		return &Result{ToolCalls: calls}, nil
	}

	return &Result{FinalText: msg.Content}, nil
}
