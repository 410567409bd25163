// Package router decides which handler owns each turn and executes
// hand-offs between them.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/agent"
	"github.com/ordena/ordena/internal/chat"
	"github.com/ordena/ordena/internal/domain"
	"github.com/ordena/ordena/internal/extract"
	"github.com/ordena/ordena/internal/policy"
	"github.com/ordena/ordena/internal/reasoner"
	"github.com/ordena/ordena/internal/store"
	"github.com/ordena/ordena/internal/tools"
)

// AuditSink persists agent activity for the dashboard log. The store
// satisfies it; a nil sink disables auditing. Recording failures are
// logged and never fail the turn.
type AuditSink interface {
	SaveAgentLog(ctx context.Context, in store.AgentLogInput) (*store.AgentLog, error)
}

const (
	// maxToolSteps bounds the tool round-trips within one turn.
	maxToolSteps = 8
	// maxHandoffDepth bounds chained hand-offs within one turn.
	maxHandoffDepth = 3
)

// fallbackReply is surfaced when a hand-off fails and the sender had
// produced no text yet.
const fallbackReply = "Lo siento, no pude completar esa operación. Por favor, intenta nuevamente."

// Router owns the main/products/sales state machine.
type Router struct {
	agents    *agent.Registry
	reasoner  reasoner.Reasoner
	tools     *tools.Registry
	policy    *policy.Engine
	extractor *extract.Extractor
	hooks     []TransitionHook
	audit     AuditSink
	logger    *zap.Logger
	timeout   time.Duration
}

// New creates a router. The hook order is significant: hooks run in
// the order given.
func New(agents *agent.Registry, r reasoner.Reasoner, reg *tools.Registry, pol *policy.Engine,
	ex *extract.Extractor, hooks []TransitionHook, audit AuditSink, logger *zap.Logger, timeout time.Duration) *Router {
	return &Router{
		agents:    agents,
		reasoner:  r,
		tools:     reg,
		policy:    pol,
		extractor: ex,
		hooks:     hooks,
		audit:     audit,
		logger:    logger,
		timeout:   timeout,
	}
}

// Ensure Router implements the manager's dispatcher contract.
var _ chat.Dispatcher = (*Router)(nil)

// Dispatch runs one turn: route the session to a handler, invoke it,
// and return its final text.
func (r *Router) Dispatch(ctx context.Context, sess *chat.Session, userText string) (string, error) {
	target := r.route(sess, userText)
	if target != sess.ActiveHandler() {
		prev := sess.ActiveHandler()
		r.logger.Info("routing turn",
			zap.String("session_id", sess.ID()),
			zap.String("from", string(prev)),
			zap.String("to", string(target)))
		sess.SetHandler(target)
		r.recordActivity(ctx, target, "route",
			fmt.Sprintf("conversation routed from %s", prev),
			map[string]any{"session_id": sess.ID(), "from": string(prev)})
	}

	ag := r.agents.Get(sess.ActiveHandler())
	return r.runAgent(ctx, sess, ag, r.buildInput(sess, userText), 0)
}

// route applies the transition rules in order; first match wins, else
// the session stays where it is (sticky routing).
func (r *Router) route(sess *chat.Session, userText string) domain.Handler {
	state := sess.State()
	intent, _ := state.GetString(domain.StateIntent)

	if !sess.Order().IsEmpty() || intent == domain.IntentPurchase || r.extractor.IsCompletion(userText) {
		return domain.HandlerSales
	}
	if r.extractor.IsProductQuery(userText) {
		return domain.HandlerProducts
	}
	return sess.ActiveHandler()
}

// buildInput composes the context message for the current turn.
func (r *Router) buildInput(sess *chat.Session, userText string) string {
	snap := sess.Snapshot()
	order, _ := json.Marshal(snap.Order)
	state, _ := json.Marshal(snap.State)
	return fmt.Sprintf("Current order: %s\nConversation state: %s\nUser message: %s", order, state, userText)
}

// runAgent drives the reasoner for one handler, executing tool calls
// until a final text or a hand-off comes back.
func (r *Router) runAgent(ctx context.Context, sess *chat.Session, ag *agent.Agent, input string, depth int) (string, error) {
	history := sess.Messages()
	if n := len(history); n > 0 && history[n-1].Role == domain.RoleUser {
		// The current user message travels in the composed input.
		history = history[:n-1]
	}

	req := &reasoner.Request{
		Handler:      ag.Handler,
		Instructions: ag.Instructions,
		Messages:     history,
		Input:        input,
		Tools:        r.toolsFor(ag),
		Snapshot:     sess.Snapshot(),
	}

	var lastText string
	for step := 0; step < maxToolSteps; step++ {
		res, err := r.invoke(ctx, req)
		if err != nil {
			return "", err
		}

		if res.Handoff != nil {
			return r.executeHandoff(ctx, sess, ag.Handler, res.Handoff, lastText, depth)
		}
		if len(res.ToolCalls) == 0 {
			return res.FinalText, nil
		}

		for _, call := range res.ToolCalls {
			content := r.executeTool(ctx, sess, ag, call)
			req.PriorCalls = append(req.PriorCalls, call)
			req.ToolResults = append(req.ToolResults, reasoner.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: content,
			})
		}
		// Refresh the snapshot: tools may have touched the order.
		req.Snapshot = sess.Snapshot()
	}

	return "", fmt.Errorf("handler %s exceeded %d tool steps", ag.Handler, maxToolSteps)
}

// invoke bounds the reasoner call with the configured timeout. State
// committed before the call is never rolled back on timeout.
func (r *Router) invoke(ctx context.Context, req *reasoner.Request) (*reasoner.Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	res, err := r.reasoner.Invoke(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reasoner invoke failed for %s: %w", req.Handler, err)
	}
	return res, nil
}

// executeHandoff transfers the conversation mid-turn. Payload and hook
// failures do not advance the active handler; the sender's last-known
// text is surfaced instead and the session stays usable.
func (r *Router) executeHandoff(ctx context.Context, sess *chat.Session, from domain.Handler,
	hreq *reasoner.HandoffRequest, senderText string, depth int) (string, error) {
	if depth >= maxHandoffDepth {
		return "", fmt.Errorf("handoff depth exceeded %d", maxHandoffDepth)
	}

	prev := sess.ActiveHandler()
	payload := domain.NewHandoffData(hreq.Task, hreq.Instructions, sess.Snapshot())

	for _, hook := range r.hooks {
		if err := hook.BeforeTransfer(sess, from, hreq.Target, &payload); err != nil {
			r.logger.Error("handoff hook failed",
				zap.String("session_id", sess.ID()),
				zap.String("from", string(from)),
				zap.String("to", string(hreq.Target)),
				zap.Error(err))
			sess.SetHandler(prev)
			if senderText != "" {
				return senderText, nil
			}
			return fallbackReply, nil
		}
	}

	sess.SetHandler(hreq.Target)
	r.recordActivity(ctx, from, "handoff",
		fmt.Sprintf("transferred to %s", hreq.Target),
		map[string]any{"session_id": sess.ID(), "target": string(hreq.Target), "task": hreq.Task})
	target := r.agents.Get(hreq.Target)
	reply, err := r.runAgent(ctx, sess, target, handoffInput(payload), depth+1)
	if err != nil {
		sess.SetHandler(prev)
		return "", err
	}

	for _, hook := range r.hooks {
		if err := hook.AfterTransfer(sess, from, hreq.Target, payload); err != nil {
			r.logger.Error("post-handoff hook failed",
				zap.String("session_id", sess.ID()),
				zap.Error(err))
		}
	}

	return reply, nil
}

// executeTool runs one tool call. Policy blocks and collaborator
// failures become textual tool results so the conversation continues.
func (r *Router) executeTool(ctx context.Context, sess *chat.Session, ag *agent.Agent, call reasoner.ToolCall) string {
	var args map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return fmt.Sprintf("Error: invalid arguments for %s: %v", call.Name, err)
		}
	}

	decision, err := r.policy.Evaluate(ctx, policy.Input{
		ToolName: call.Name,
		Handler:  string(ag.Handler),
		Args:     args,
	})
	if err != nil {
		r.logger.Error("policy evaluation failed", zap.String("tool", call.Name), zap.Error(err))
		return fmt.Sprintf("Error: could not evaluate policy for %s", call.Name)
	}
	if decision == policy.DecisionBlock {
		r.logger.Warn("tool call blocked by policy",
			zap.String("session_id", sess.ID()),
			zap.String("tool", call.Name))
		return fmt.Sprintf("Tool call %s was blocked by policy", call.Name)
	}

	start := time.Now()
	result, err := r.tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		r.logger.Error("tool execution failed",
			zap.String("session_id", sess.ID()),
			zap.String("tool", call.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}

	r.logger.Info("tool executed",
		zap.String("session_id", sess.ID()),
		zap.String("tool", call.Name),
		zap.Duration("elapsed", time.Since(start)))
	r.recordActivity(ctx, ag.Handler, "tool_call",
		fmt.Sprintf("executed %s", call.Name),
		map[string]any{"session_id": sess.ID(), "tool": call.Name})
	return result
}

// recordActivity writes one audit entry. Never fails the turn.
func (r *Router) recordActivity(ctx context.Context, ag domain.Handler, activity, details string, data map[string]any) {
	if r.audit == nil {
		return
	}
	if _, err := r.audit.SaveAgentLog(ctx, store.AgentLogInput{
		AgentName:    string(ag),
		ActivityType: activity,
		Details:      details,
		ContextData:  data,
	}); err != nil {
		r.logger.Warn("failed to record agent activity",
			zap.String("activity", activity),
			zap.Error(err))
	}
}

// toolsFor exposes the agent's tools plus one hand-off tool per
// allowed transfer target.
func (r *Router) toolsFor(ag *agent.Agent) []reasoner.Tool {
	out := make([]reasoner.Tool, 0, len(ag.Tools)+len(ag.Handoffs))
	out = append(out, ag.Tools...)
	for _, target := range ag.Handoffs {
		out = append(out, reasoner.Tool{
			Name:        reasoner.HandoffToolName(target),
			Description: fmt.Sprintf("Transfer the conversation to the %s agent", target),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task":         map[string]any{"type": "string"},
					"instructions": map[string]any{"type": "string"},
				},
				"required": []string{"task"},
			},
		})
	}
	return out
}

func handoffInput(payload domain.HandoffData) string {
	order, _ := json.Marshal(payload.Order)
	state, _ := json.Marshal(payload.State)
	return fmt.Sprintf("Task: %s\nInstructions: %s\nCurrent order: %s\nConversation state: %s",
		payload.Task, payload.Instructions, order, state)
}
