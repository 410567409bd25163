// Package policy gates tool execution through an OPA policy.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by Evaluate.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Input describes a pending tool call for policy evaluation.
type Input struct {
	ToolName string         `json:"tool_name"`
	Handler  string         `json:"handler"`
	Args     map[string]any `json:"args"`
}

// Evaluate checks the tool policy and returns the decision string.
// The policy is expected to define a default, so an empty result set
// falls back to allow.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionAllow, nil
}

// DefaultPolicy blocks obviously broken purchases: non-positive or
// implausibly large amounts never reach the store.
const DefaultPolicy = `
package tool_policy

default decision = "allow"

decision = "block" {
	input.tool_name == "create_purchase"
	input.args.amount <= 0
}

decision = "block" {
	input.tool_name == "create_purchase"
	input.args.amount > 1000000
}

decision = "block" {
	input.tool_name == "create_payment_link"
	input.args.amount <= 0
}
`
