package reasoner

import (
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "ORDENA_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// New creates a reasoner based on the ORDENA_MODE environment variable.
// If ORDENA_MODE=MOCK, returns a MockClient; otherwise a real Client.
func New(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) Reasoner {
	if os.Getenv(EnvMode) == ModeMock {
		logger.Info("ORDENA_MODE=MOCK detected, using mock reasoner")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, model, timeout)
}
