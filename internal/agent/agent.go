// Package agent defines the specialized task handlers and their
// toolsets. The three handlers share one Agent shape; what differs is
// instruction data, not code.
package agent

import (
	"github.com/ordena/ordena/internal/domain"
	"github.com/ordena/ordena/internal/reasoner"
)

// Agent is one specialized task handler.
type Agent struct {
	Name         string
	Handler      domain.Handler
	Instructions string
	Tools        []reasoner.Tool
	// Handoffs lists the handlers this agent may transfer to.
	Handoffs []domain.Handler
}

// Registry holds the agent definitions keyed by handler.
type Registry struct {
	agents map[domain.Handler]*Agent
}

// NewRegistry builds the main/products/sales agent set.
func NewRegistry() *Registry {
	return &Registry{
		agents: map[domain.Handler]*Agent{
			domain.HandlerMain: {
				Name:         "Main Agent",
				Handler:      domain.HandlerMain,
				Instructions: mainInstructions,
				Handoffs:     []domain.Handler{domain.HandlerSales, domain.HandlerProducts},
			},
			domain.HandlerProducts: {
				Name:         "Product Agent",
				Handler:      domain.HandlerProducts,
				Instructions: productsInstructions,
				Tools:        productTools,
				Handoffs:     []domain.Handler{domain.HandlerSales},
			},
			domain.HandlerSales: {
				Name:         "Sales Agent",
				Handler:      domain.HandlerSales,
				Instructions: salesInstructions,
				Tools:        salesTools,
				Handoffs:     []domain.Handler{domain.HandlerProducts},
			},
		},
	}
}

// Get returns the agent for a handler, falling back to main.
func (r *Registry) Get(h domain.Handler) *Agent {
	if a, ok := r.agents[h]; ok {
		return a
	}
	return r.agents[domain.HandlerMain]
}
