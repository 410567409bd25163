package extract

import (
	"testing"

	"github.com/ordena/ordena/internal/domain"
)

type fakeTarget struct {
	order   map[string]int
	state   domain.State
	handler domain.Handler
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		order:   make(map[string]int),
		state:   domain.State{},
		handler: domain.HandlerMain,
	}
}

func (f *fakeTarget) AddToOrder(name string, quantity int) { f.order[name] += quantity }
func (f *fakeTarget) State() domain.State                  { return f.state }
func (f *fakeTarget) SetHandler(h domain.Handler)          { f.handler = h }

func TestApplyOrderMessage(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "Hola, quiero 2 pizzas por favor")

	if tgt.order["pizza muzzarella"] != 2 {
		t.Fatalf("expected 2 pizza muzzarella, got %v", tgt.order)
	}
	if v, _ := tgt.state.GetString(domain.StateIntent); v != domain.IntentPurchase {
		t.Fatalf("expected purchase intent, got %q", v)
	}
	if tgt.handler != domain.HandlerSales {
		t.Fatalf("expected handler sales, got %q", tgt.handler)
	}
}

func TestApplySingleProductMatchPerMessage(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "2 pizzas y 3 pizzas más")

	if tgt.order["pizza muzzarella"] != 2 {
		t.Fatalf("expected first match only (2), got %v", tgt.order)
	}
}

func TestApplyIgnoresNonPositiveQuantities(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "dame 0 pizzas")
	ex.Apply(tgt, "dame -3 pizzas")

	if len(tgt.order) != 0 {
		t.Fatalf("expected no order entries, got %v", tgt.order)
	}
}

func TestApplyPaymentMessage(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	msg := "Quiero pagar con transferencia"
	ex.Apply(tgt, msg)

	if v, _ := tgt.state.GetString(domain.StatePaymentMethod); v != msg {
		t.Fatalf("expected raw sentence as payment_method, got %q", v)
	}
	if v, _ := tgt.state.GetString(domain.StatePaymentType); v != PaymentTransfer {
		t.Fatalf("expected payment_type transfer, got %q", v)
	}
}

func TestApplyPaymentTypeFirstRuleWins(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "pagar con transferencia o efectivo")

	if v, _ := tgt.state.GetString(domain.StatePaymentType); v != PaymentTransfer {
		t.Fatalf("expected first matching rule to win, got %q", v)
	}
}

func TestApplyPaymentWordWithoutType(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "quiero pagar")

	if _, ok := tgt.state.GetString(domain.StatePaymentMethod); !ok {
		t.Fatal("expected payment_method to be captured")
	}
	if _, ok := tgt.state.GetString(domain.StatePaymentType); ok {
		t.Fatal("expected no payment_type without a classifying keyword")
	}
}

func TestApplyCompletionAndDelivery(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "Eso es todo, entregar en mi domicilio")

	if !tgt.state.GetBool(domain.StateOrderComplete) {
		t.Fatal("expected order_complete true")
	}
	if _, ok := tgt.state.GetString(domain.StateDeliveryInfo); !ok {
		t.Fatal("expected delivery_info to be captured")
	}
}

func TestApplyNeutralMessageYieldsNoSignals(t *testing.T) {
	ex := New(DefaultConfig())
	tgt := newFakeTarget()

	ex.Apply(tgt, "hola, ¿cómo estás?")
	ex.Apply(tgt, "")

	if len(tgt.order) != 0 || len(tgt.state) != 0 {
		t.Fatalf("expected no signals, got order=%v state=%v", tgt.order, tgt.state)
	}
	if tgt.handler != domain.HandlerMain {
		t.Fatalf("expected handler untouched, got %q", tgt.handler)
	}
}

func TestIsCompletion(t *testing.T) {
	ex := New(DefaultConfig())
	if !ex.IsCompletion("Bueno, eso es todo gracias") {
		t.Fatal("expected completion phrase to match")
	}
	if ex.IsCompletion("quiero más pizzas") {
		t.Fatal("expected non-completion message to miss")
	}
}

func TestIsProductQuery(t *testing.T) {
	ex := New(DefaultConfig())
	if !ex.IsProductQuery("¿Cuál es el precio de la pizza?") {
		t.Fatal("expected product query to match")
	}
	if ex.IsProductQuery("eso es todo") {
		t.Fatal("expected completion message to miss")
	}
}
