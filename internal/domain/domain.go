// Package domain defines the core domain models for the ordering assistant.
package domain

// Handler identifies which specialized agent owns the current turn.
type Handler string

const (
	HandlerMain     Handler = "main"
	HandlerProducts Handler = "products"
	HandlerSales    Handler = "sales"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation state keys set by the extractor and consumed by routing.
const (
	StateIntent        = "intent"
	StatePaymentMethod = "payment_method"
	StatePaymentType   = "payment_type"
	StateOrderComplete = "order_complete"
	StateDeliveryInfo  = "delivery_info"
	StateHasItems      = "has_items"
)

// IntentPurchase is the value stored under StateIntent when purchase
// intent is detected.
const IntentPurchase = "purchase"
