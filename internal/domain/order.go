package domain

import (
	"fmt"
	"strings"
)

// OrderItem is a single line in the current order. UnitPrice stays nil
// until the product lookup resolves it.
type OrderItem struct {
	Name      string   `json:"producto"`
	Quantity  int      `json:"cantidad"`
	UnitPrice *float64 `json:"precio_unitario,omitempty"`
}

// Order accumulates line items for a session, keyed by normalized
// product name. The zero value is not usable; call NewOrder.
type Order struct {
	items map[string]*OrderItem
}

// NewOrder creates an empty order.
func NewOrder() *Order {
	return &Order{items: make(map[string]*OrderItem)}
}

// normalizeName lower-cases and collapses whitespace so "Pizza " and
// "pizza" merge into one line.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// AddItem adds quantity of a product. If the product already exists its
// quantity is incremented. A supplied price only fills an unset price;
// an already-resolved price is never overwritten.
func (o *Order) AddItem(name string, quantity int, unitPrice *float64) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("product name is required")
	}

	if item, ok := o.items[key]; ok {
		item.Quantity += quantity
		if item.UnitPrice == nil && unitPrice != nil {
			p := *unitPrice
			item.UnitPrice = &p
		}
		return nil
	}

	item := &OrderItem{Name: key, Quantity: quantity}
	if unitPrice != nil {
		p := *unitPrice
		item.UnitPrice = &p
	}
	o.items[key] = item
	return nil
}

// SetPrice resolves the unit price of an existing line. Like AddItem it
// never overwrites an already-resolved price.
func (o *Order) SetPrice(name string, unitPrice float64) bool {
	item, ok := o.items[normalizeName(name)]
	if !ok || item.UnitPrice != nil {
		return false
	}
	if unitPrice < 0 {
		return false
	}
	p := unitPrice
	item.UnitPrice = &p
	return true
}

// Clear empties the order.
func (o *Order) Clear() {
	o.items = make(map[string]*OrderItem)
}

// IsEmpty reports whether the order has no items.
func (o *Order) IsEmpty() bool {
	return len(o.items) == 0
}

// Len returns the number of distinct line items.
func (o *Order) Len() int {
	return len(o.items)
}

// Items returns a deep copy of the order lines. Mutating the returned
// map never affects the order.
func (o *Order) Items() map[string]OrderItem {
	out := make(map[string]OrderItem, len(o.items))
	for k, v := range o.items {
		item := OrderItem{Name: v.Name, Quantity: v.Quantity}
		if v.UnitPrice != nil {
			p := *v.UnitPrice
			item.UnitPrice = &p
		}
		out[k] = item
	}
	return out
}

// Unpriced returns the names of lines whose unit price is unresolved.
func (o *Order) Unpriced() []string {
	var names []string
	for _, item := range o.items {
		if item.UnitPrice == nil {
			names = append(names, item.Name)
		}
	}
	return names
}

// Total sums quantity*unitPrice over priced lines. The second return
// reports whether every line had a resolved price; when false the sum
// excludes the unpriced lines.
func (o *Order) Total() (float64, bool) {
	var sum float64
	allPriced := true
	for _, item := range o.items {
		if item.UnitPrice == nil {
			allPriced = false
			continue
		}
		sum += float64(item.Quantity) * *item.UnitPrice
	}
	return sum, allPriced
}
