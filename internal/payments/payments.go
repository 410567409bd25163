// Package payments creates checkout links for finished orders.
package payments

import "context"

// LinkRequest describes the payment link to create.
type LinkRequest struct {
	Amount      float64
	Title       string
	Description string
	Quantity    int
	// ExternalReference ties the link back to a session/purchase.
	ExternalReference string
}

// Provider creates a hosted checkout link and returns its URL.
type Provider interface {
	CreateLink(ctx context.Context, req LinkRequest) (string, error)
}
