package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mercadopago.com"

// MercadoPago creates checkout preferences through the Mercado Pago
// REST API.
type MercadoPago struct {
	baseURL     string
	accessToken string
	webhookURL  string
	httpClient  *http.Client
}

// NewMercadoPago creates a Mercado Pago provider. baseURL may be empty
// to use the production API.
func NewMercadoPago(accessToken, webhookURL, baseURL string, timeout time.Duration) (*MercadoPago, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("mercado pago access token is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MercadoPago{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		webhookURL:  webhookURL,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type preferenceItem struct {
	Title       string  `json:"title"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Description string  `json:"description,omitempty"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	ExternalReference string           `json:"external_reference,omitempty"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreateLink creates a checkout preference and returns its init point.
func (m *MercadoPago) CreateLink(ctx context.Context, req LinkRequest) (string, error) {
	if req.Amount <= 0 {
		return "", fmt.Errorf("amount must be positive, got %.2f", req.Amount)
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	pref := preferenceRequest{
		Items: []preferenceItem{{
			Title:       req.Title,
			Quantity:    quantity,
			UnitPrice:   req.Amount,
			Description: req.Description,
		}},
		NotificationURL:   m.webhookURL,
		ExternalReference: req.ExternalReference,
	}

	body, err := json.Marshal(pref)
	if err != nil {
		return "", fmt.Errorf("failed to marshal preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.accessToken)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call mercado pago: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("mercado pago returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var preference preferenceResponse
	if err := json.Unmarshal(respBody, &preference); err != nil {
		return "", fmt.Errorf("failed to decode preference: %w", err)
	}
	if preference.InitPoint == "" {
		return "", fmt.Errorf("mercado pago returned no init point")
	}
	return preference.InitPoint, nil
}
