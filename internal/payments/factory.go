package payments

import (
	"time"

	"go.uber.org/zap"
)

// NewProvider selects the Mercado Pago client when an access token is
// configured, and the mock provider otherwise.
func NewProvider(accessToken, webhookURL string, timeout time.Duration, logger *zap.Logger) Provider {
	if accessToken == "" {
		logger.Info("no payment credentials configured, using mock payment provider")
		return NewMock()
	}
	provider, err := NewMercadoPago(accessToken, webhookURL, "", timeout)
	if err != nil {
		logger.Warn("failed to create mercado pago provider, falling back to mock", zap.Error(err))
		return NewMock()
	}
	return provider
}
