package reasoner

import (
	"context"
	"strings"
	"testing"

	"github.com/ordena/ordena/internal/domain"
)

func TestMockClientEmptyOrder(t *testing.T) {
	m := NewMockClient()

	res, err := m.Invoke(context.Background(), &Request{
		Handler:  domain.HandlerMain,
		Snapshot: domain.Snapshot{State: domain.State{}},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !strings.Contains(res.FinalText, "¿Qué te gustaría pedir?") {
		t.Fatalf("unexpected reply: %q", res.FinalText)
	}
}

func TestMockClientDescribesOrder(t *testing.T) {
	m := NewMockClient()
	price := 10.0

	res, err := m.Invoke(context.Background(), &Request{
		Handler: domain.HandlerSales,
		Snapshot: domain.Snapshot{
			Order: map[string]domain.OrderItem{
				"pizza muzzarella": {Name: "pizza muzzarella", Quantity: 2, UnitPrice: &price},
			},
			State: domain.State{
				domain.StatePaymentType:   "transfer",
				domain.StateOrderComplete: true,
			},
		},
	})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	for _, want := range []string{"2x pizza muzzarella", "$10.00", "transfer", "Pedido confirmado"} {
		if !strings.Contains(res.FinalText, want) {
			t.Fatalf("expected %q in reply, got %q", want, res.FinalText)
		}
	}
}

func TestMockClientHonorsCancelledContext(t *testing.T) {
	m := NewMockClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Invoke(ctx, &Request{Handler: domain.HandlerMain}); err == nil {
		t.Fatal("expected context error")
	}
}
