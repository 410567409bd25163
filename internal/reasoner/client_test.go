package reasoner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ordena/ordena/internal/domain"
)

func newCompletionServer(t *testing.T, handler func(req chatCompletionRequest) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestClientInvokeFinalText(t *testing.T) {
	var got chatCompletionRequest
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		got = req
		return http.StatusOK, `{"id":"cmpl-1","choices":[{"message":{"role":"assistant","content":"¡Hola! ¿Qué necesitás?"},"finish_reason":"stop"}]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4o-mini", 5*time.Second)
	res, err := c.Invoke(context.Background(), &Request{
		Handler:      domain.HandlerMain,
		Instructions: "Sos el asistente principal.",
		Messages:     []domain.Message{{Role: domain.RoleUser, Content: "hola"}},
		Input:        "User message: hola",
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.FinalText != "¡Hola! ¿Qué necesitás?" {
		t.Fatalf("unexpected final text: %q", res.FinalText)
	}
	if res.Handoff != nil || len(res.ToolCalls) != 0 {
		t.Fatalf("expected only final text, got %+v", res)
	}

	if got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %q", got.Model)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("expected system+history+input, got %d messages", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "Sos el asistente principal." {
		t.Fatalf("unexpected system message: %+v", got.Messages[0])
	}
}

func TestClientInvokeToolCalls(t *testing.T) {
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"get_products","arguments":"{}"}}
		]},"finish_reason":"tool_calls"}]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	res, err := c.Invoke(context.Background(), &Request{
		Handler: domain.HandlerProducts,
		Input:   "User message: qué pizzas hay",
		Tools:   []Tool{{Name: "get_products", Description: "List products"}},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if len(res.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %+v", res)
	}
	if res.ToolCalls[0].ID != "call_1" || res.ToolCalls[0].Name != "get_products" {
		t.Fatalf("unexpected tool call: %+v", res.ToolCalls[0])
	}
}

func TestClientInvokeHandoff(t *testing.T) {
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"id":"call_2","type":"function","function":{"name":"transfer_to_products_agent",
			 "arguments":"{\"task\":\"resolver precio\",\"instructions\":\"buscar pizza muzzarella\"}"}}
		]},"finish_reason":"tool_calls"}]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	res, err := c.Invoke(context.Background(), &Request{Handler: domain.HandlerSales, Input: "x"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Handoff == nil {
		t.Fatalf("expected a handoff, got %+v", res)
	}
	if res.Handoff.Target != domain.HandlerProducts {
		t.Fatalf("unexpected handoff target: %q", res.Handoff.Target)
	}
	if res.Handoff.Task != "resolver precio" || res.Handoff.Instructions != "buscar pizza muzzarella" {
		t.Fatalf("unexpected handoff payload: %+v", res.Handoff)
	}
}

func TestClientInvokeHandoffTakesPrecedenceOverTools(t *testing.T) {
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","tool_calls":[
			{"id":"call_3","type":"function","function":{"name":"get_products","arguments":"{}"}},
			{"id":"call_4","type":"function","function":{"name":"transfer_to_sales_agent","arguments":"{\"task\":\"cerrar venta\"}"}}
		]}}]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	res, err := c.Invoke(context.Background(), &Request{Handler: domain.HandlerProducts, Input: "x"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Handoff == nil || res.Handoff.Target != domain.HandlerSales {
		t.Fatalf("expected sales handoff to win, got %+v", res)
	}
}

func TestClientInvokeToolRoundTripMessages(t *testing.T) {
	var got chatCompletionRequest
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		got = req
		return http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Hay pizza muzzarella a $10."}}]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	_, err := c.Invoke(context.Background(), &Request{
		Handler: domain.HandlerProducts,
		Input:   "User message: qué pizzas hay",
		PriorCalls: []ToolCall{
			{ID: "call_1", Name: "get_products", Arguments: json.RawMessage(`{}`)},
		},
		ToolResults: []ToolResult{
			{CallID: "call_1", Name: "get_products", Content: `[{"name":"pizza muzzarella","price":10}]`},
		},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	// system, input, assistant tool_calls, tool result
	if len(got.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(got.Messages))
	}
	assistant := got.Messages[2]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Function.Name != "get_products" {
		t.Fatalf("unexpected assistant tool calls: %+v", assistant)
	}
	toolMsg := got.Messages[3]
	if toolMsg.Role != "tool" || toolMsg.ToolCallID != "call_1" {
		t.Fatalf("unexpected tool message: %+v", toolMsg)
	}
}

func TestClientInvokeErrorResponse(t *testing.T) {
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		return http.StatusTooManyRequests, `{"error":{"message":"rate limited","type":"rate_limit"}}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	_, err := c.Invoke(context.Background(), &Request{Handler: domain.HandlerMain, Input: "x"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestClientInvokeEmptyChoices(t *testing.T) {
	srv := newCompletionServer(t, func(req chatCompletionRequest) (int, string) {
		return http.StatusOK, `{"choices":[]}`
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", "gpt-4o-mini", 5*time.Second)
	if _, err := c.Invoke(context.Background(), &Request{Handler: domain.HandlerMain, Input: "x"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestParseHandoffTool(t *testing.T) {
	cases := []struct {
		name   string
		target domain.Handler
		ok     bool
	}{
		{"transfer_to_sales_agent", domain.HandlerSales, true},
		{"transfer_to_products_agent", domain.HandlerProducts, true},
		{"transfer_to_main_agent", domain.HandlerMain, true},
		{"transfer_to_unknown_agent", "", false},
		{"get_products", "", false},
	}
	for _, tc := range cases {
		target, ok := ParseHandoffTool(tc.name)
		if ok != tc.ok || target != tc.target {
			t.Fatalf("%s: got %q/%v, want %q/%v", tc.name, target, ok, tc.target, tc.ok)
		}
	}
}

func TestHandoffToolNameRoundTrip(t *testing.T) {
	for _, h := range []domain.Handler{domain.HandlerMain, domain.HandlerProducts, domain.HandlerSales} {
		target, ok := ParseHandoffTool(HandoffToolName(h))
		if !ok || target != h {
			t.Fatalf("round trip failed for %q", h)
		}
	}
}
