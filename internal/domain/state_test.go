package domain

import "testing"

func TestStateSetDropsNil(t *testing.T) {
	s := State{}
	s.Set(StateIntent, IntentPurchase)
	s.Set(StateIntent, nil)
	if _, ok := s[StateIntent]; ok {
		t.Fatal("nil value must remove the key")
	}
}

func TestStatePruneKeepsOnlyAllowListed(t *testing.T) {
	s := State{
		StateIntent:        IntentPurchase,
		StatePaymentMethod: "quiero pagar con transferencia",
		StatePaymentType:   "transfer",
		StateOrderComplete: true,
		"scratch_note":     "whatever",
	}

	pruned := s.Prune(true)

	if v, _ := pruned.GetString(StateIntent); v != IntentPurchase {
		t.Fatalf("expected intent to survive, got %q", v)
	}
	if v, _ := pruned.GetString(StatePaymentMethod); v != "quiero pagar con transferencia" {
		t.Fatalf("expected payment_method to survive, got %q", v)
	}
	if !pruned.GetBool(StateOrderComplete) {
		t.Fatal("expected order_complete to survive")
	}
	if !pruned.GetBool(StateHasItems) {
		t.Fatal("expected has_items to be recomputed true")
	}
	if _, ok := pruned[StatePaymentType]; ok {
		t.Fatal("payment_type must not survive a prune")
	}
	if _, ok := pruned["scratch_note"]; ok {
		t.Fatal("unlisted keys must not survive a prune")
	}
}

func TestStatePruneDropsAbsentKeys(t *testing.T) {
	pruned := State{}.Prune(false)
	if len(pruned) != 1 {
		t.Fatalf("expected only has_items, got %v", pruned)
	}
	if pruned.GetBool(StateHasItems) {
		t.Fatal("expected has_items false for an empty order")
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := State{StateIntent: IntentPurchase}
	c := s.Clone()
	c.Set(StateIntent, "browse")
	if v, _ := s.GetString(StateIntent); v != IntentPurchase {
		t.Fatalf("clone mutation leaked into the source: %q", v)
	}
}
