// Package extract implements the rule-based intent and entity extractor.
// It is a routing-hint layer: cheap, deterministic keyword rules, never a
// classifier. Final disambiguation belongs to the reasoner.
package extract

import (
	"strconv"
	"strings"

	"github.com/ordena/ordena/internal/domain"
)

// Canonical payment types stored under StatePaymentType.
const (
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
	PaymentCard     = "card"
)

// Target is the session surface the extractor mutates.
type Target interface {
	AddToOrder(name string, quantity int)
	State() domain.State
	SetHandler(h domain.Handler)
}

// PaymentRule maps a keyword to a canonical payment type.
type PaymentRule struct {
	Keyword string
	Type    string
}

// Config holds the keyword sets the extractor scans for. All matching
// is done on the lower-cased message via substring checks.
type Config struct {
	// ProductKeywords trigger the quantity+product scan; any match maps
	// to the single canonical product name.
	ProductKeywords  []string
	CanonicalProduct string

	PurchaseWords     []string
	PaymentWords      []string
	PaymentRules      []PaymentRule
	CompletionPhrases []string
	DeliveryWords     []string
}

// DefaultConfig covers the Spanish keyword set of the original flow
// plus English equivalents.
func DefaultConfig() Config {
	return Config{
		ProductKeywords:  []string{"pizza"},
		CanonicalProduct: "pizza muzzarella",
		PurchaseWords:    []string{"comprar", "quiero", "necesito", "busco", "buy", "want", "need", "looking for"},
		PaymentWords:     []string{"pagar", "transferencia", "efectivo", "tarjeta", "pay", "transfer", "cash", "card"},
		PaymentRules: []PaymentRule{
			{Keyword: "transferencia", Type: PaymentTransfer},
			{Keyword: "transfer", Type: PaymentTransfer},
			{Keyword: "efectivo", Type: PaymentCash},
			{Keyword: "cash", Type: PaymentCash},
			{Keyword: "tarjeta", Type: PaymentCard},
			{Keyword: "card", Type: PaymentCard},
		},
		CompletionPhrases: []string{"eso es todo", "finalizar", "that's all", "finish"},
		DeliveryWords:     []string{"entregar", "dirección", "domicilio", "deliver", "address", "home"},
	}
}

// Extractor runs the deterministic passes over each inbound user
// message. It is total over any input: malformed or empty text simply
// yields no signals.
type Extractor struct {
	cfg Config
}

// New creates an extractor with the given keyword configuration.
func New(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Apply scans content and updates the target's order, state and active
// handler. It must only be called for user-role messages.
func (e *Extractor) Apply(t Target, content string) {
	lower := strings.ToLower(content)
	state := t.State()

	// Pass 1: quantity followed by a product keyword. A single match per
	// message; the first one wins.
	words := strings.Fields(lower)
	for i, word := range words {
		qty, err := strconv.Atoi(word)
		if err != nil || qty <= 0 || i+1 >= len(words) {
			continue
		}
		if containsAny(words[i+1], e.cfg.ProductKeywords) {
			t.AddToOrder(e.cfg.CanonicalProduct, qty)
			break
		}
	}

	// Pass 2: purchase intent.
	if containsAny(lower, e.cfg.PurchaseWords) {
		state.Set(domain.StateIntent, domain.IntentPurchase)
		t.SetHandler(domain.HandlerSales)
	}

	// Pass 3: payment details. The raw sentence is kept so the sales
	// agent can quote it back; the type is classified separately.
	if containsAny(lower, e.cfg.PaymentWords) {
		state.Set(domain.StatePaymentMethod, content)
		for _, rule := range e.cfg.PaymentRules {
			if strings.Contains(lower, rule.Keyword) {
				state.Set(domain.StatePaymentType, rule.Type)
				break
			}
		}
	}

	// Pass 4: order completion.
	if containsAny(lower, e.cfg.CompletionPhrases) {
		state.Set(domain.StateOrderComplete, true)
	}

	// Pass 5: delivery details.
	if containsAny(lower, e.cfg.DeliveryWords) {
		state.Set(domain.StateDeliveryInfo, content)
	}
}

// IsCompletion reports whether the message matches a completion phrase.
// The router uses this for its sales transition rule.
func (e *Extractor) IsCompletion(content string) bool {
	return containsAny(strings.ToLower(content), e.cfg.CompletionPhrases)
}

// IsProductQuery reports whether the message looks like a product or
// price question.
func (e *Extractor) IsProductQuery(content string) bool {
	lower := strings.ToLower(content)
	if containsAny(lower, e.cfg.ProductKeywords) {
		return true
	}
	return containsAny(lower, []string{"precio", "price", "producto", "product", "menú", "menu"})
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
