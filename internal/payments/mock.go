package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Mock returns synthetic checkout URLs so the orchestration flow is
// testable without live credentials.
type Mock struct{}

// NewMock creates a mock payment provider.
func NewMock() *Mock {
	return &Mock{}
}

// CreateLink returns a synthetic URL.
func (m *Mock) CreateLink(ctx context.Context, req LinkRequest) (string, error) {
	if req.Amount <= 0 {
		return "", fmt.Errorf("amount must be positive, got %.2f", req.Amount)
	}
	return fmt.Sprintf("https://sandbox.mercadopago.local/checkout/%s", uuid.New().String()), nil
}
