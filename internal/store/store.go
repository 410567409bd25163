// Package store defines the product/purchase datastore interface and
// its implementations.
package store

import (
	"context"
	"time"
)

// Product is a catalog entry. The backing tables use Spanish column
// names (nombre, marca, precio); the Go surface is English.
type Product struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Brand     string     `json:"brand"`
	Price     float64    `json:"price"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Price float64 `json:"price"`
}

// PurchaseType is a payment/purchase category.
type PurchaseType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PurchaseLine is one product line inside a purchase.
type PurchaseLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PurchaseInput is the payload for recording a purchase.
type PurchaseInput struct {
	Amount         float64        `json:"amount"`
	PurchaseTypeID string         `json:"purchase_type_id"`
	Lines          []PurchaseLine `json:"products"`
}

// Purchase is a recorded sale.
type Purchase struct {
	ID             string    `json:"id"`
	Amount         float64   `json:"amount"`
	Date           time.Time `json:"date"`
	PurchaseTypeID string    `json:"purchase_type_id"`
}

// SalesReport aggregates purchases over a period.
type SalesReport struct {
	TotalSales      float64 `json:"total_sales"`
	PurchaseCount   int     `json:"purchase_count"`
	AveragePurchase float64 `json:"average_purchase"`
	Period          string  `json:"period"`
}

// AgentLog is one recorded agent activity: a routing decision, a
// hand-off, or a tool run.
type AgentLog struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	AgentName    string         `json:"agent_name"`
	ActivityType string         `json:"activity_type"`
	Details      string         `json:"details,omitempty"`
	ContextData  map[string]any `json:"context_data,omitempty"`
}

// AgentLogInput is the payload for recording an agent activity.
type AgentLogInput struct {
	AgentName    string         `json:"agent_name"`
	ActivityType string         `json:"activity_type"`
	Details      string         `json:"details,omitempty"`
	ContextData  map[string]any `json:"context_data,omitempty"`
}

// AgentLogQuery filters and paginates the activity log. Zero-value
// fields are not applied; Page and PageSize fall back to 1 and 50.
type AgentLogQuery struct {
	Start        *time.Time
	End          *time.Time
	AgentName    string
	ActivityType string
	Page         int
	PageSize     int
}

// AgentLogPage is one page of activity logs, newest first.
type AgentLogPage struct {
	Logs     []AgentLog `json:"logs"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// AgentActivityCount is one (agent, activity) bucket of the summary.
type AgentActivityCount struct {
	AgentName    string `json:"agent_name"`
	ActivityType string `json:"activity_type"`
	Count        int    `json:"count"`
}

// AgentLogSummary aggregates activity since a point in time.
type AgentLogSummary struct {
	Counts        []AgentActivityCount `json:"last_24h"`
	Agents        []string             `json:"agents"`
	ActivityTypes []string             `json:"activity_types"`
}

// normalizeAgentLogQuery applies the pagination defaults.
func normalizeAgentLogQuery(q AgentLogQuery) AgentLogQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 50
	}
	return q
}

// Store is the interface to the product/purchase datastore. Every
// operation can fail; callers surface failures as handler-visible
// errors rather than crashing the session.
type Store interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)

	CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error)
	ListPurchaseTypes(ctx context.Context) ([]PurchaseType, error)
	SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error)

	SaveAgentLog(ctx context.Context, in AgentLogInput) (*AgentLog, error)
	ListAgentLogs(ctx context.Context, q AgentLogQuery) (*AgentLogPage, error)
	RecentAgentLogs(ctx context.Context, limit int) ([]AgentLog, error)
	SummarizeAgentLogs(ctx context.Context, since time.Time) (*AgentLogSummary, error)

	// Probe is a cheap read used to verify the connection at startup.
	Probe(ctx context.Context) error

	Close() error
}
