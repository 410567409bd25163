package reasoner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ordena/ordena/internal/domain"
)

// MockClient is a deterministic Reasoner for development and tests. It
// answers from the snapshot alone, so conversations work end to end
// without a model behind them.
type MockClient struct{}

// NewMockClient creates a new mock reasoner.
func NewMockClient() *MockClient {
	return &MockClient{}
}

var _ Reasoner = (*MockClient)(nil)

// Invoke returns a canned response describing the current order state.
func (m *MockClient) Invoke(ctx context.Context, req *Request) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", req.Handler)

	if len(req.Snapshot.Order) == 0 {
		b.WriteString("Hola! ¿Qué te gustaría pedir?")
		return &Result{FinalText: b.String()}, nil
	}

	names := make([]string, 0, len(req.Snapshot.Order))
	for name := range req.Snapshot.Order {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("Tu pedido:")
	for _, name := range names {
		item := req.Snapshot.Order[name]
		if item.UnitPrice != nil {
			fmt.Fprintf(&b, " %dx %s ($%.2f)", item.Quantity, item.Name, *item.UnitPrice)
		} else {
			fmt.Fprintf(&b, " %dx %s (precio pendiente)", item.Quantity, item.Name)
		}
	}

	if paymentType, ok := req.Snapshot.State.GetString(domain.StatePaymentType); ok {
		fmt.Fprintf(&b, ". Método de pago: %s", paymentType)
	}
	if req.Snapshot.State.GetBool(domain.StateOrderComplete) {
		b.WriteString(". Pedido confirmado!")
	}

	return &Result{FinalText: b.String()}, nil
}
