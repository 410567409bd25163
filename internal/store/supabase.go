package store

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore implements Store against the production Supabase
// project. Table and column names are Spanish (productos, compras,
// tipo_compra, compras_productos).
type SupabaseStore struct {
	client *supabase.Client
}

// NewSupabaseStore creates a Supabase-backed store.
func NewSupabaseStore(url, apiKey string) (*SupabaseStore, error) {
	if url == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	client, err := supabase.NewClient(url, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

type productRow struct {
	ID        string     `json:"id,omitempty"`
	Nombre    string     `json:"nombre"`
	Marca     string     `json:"marca"`
	Precio    float64    `json:"precio"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (r productRow) toProduct() Product {
	return Product{
		ID:        r.ID,
		Name:      r.Nombre,
		Brand:     r.Marca,
		Price:     r.Precio,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type purchaseTypeRow struct {
	ID          string `json:"id,omitempty"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

type purchaseRow struct {
	ID           string  `json:"id,omitempty"`
	Monto        float64 `json:"monto"`
	Fecha        string  `json:"fecha"`
	TipoCompraID string  `json:"tipo_compra_id"`
}

type agentLogRow struct {
	ID           string         `json:"id,omitempty"`
	Timestamp    string         `json:"timestamp,omitempty"`
	AgentName    string         `json:"agent_name"`
	ActivityType string         `json:"activity_type"`
	Details      string         `json:"details,omitempty"`
	ContextData  map[string]any `json:"context_data,omitempty"`
}

func (r agentLogRow) toAgentLog() AgentLog {
	ts, _ := time.Parse(time.RFC3339, r.Timestamp)
	return AgentLog{
		ID:           r.ID,
		Timestamp:    ts,
		AgentName:    r.AgentName,
		ActivityType: r.ActivityType,
		Details:      r.Details,
		ContextData:  r.ContextData,
	}
}

type purchaseLineRow struct {
	CompraID       string  `json:"compra_id"`
	ProductoID     string  `json:"producto_id"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Subtotal       float64 `json:"subtotal"`
}

// Close is a no-op; the underlying client is stateless HTTP.
func (s *SupabaseStore) Close() error { return nil }

// Probe verifies connectivity with a cheap read on the catalog.
func (s *SupabaseStore) Probe(ctx context.Context) error {
	var rows []productRow
	_, err := s.client.From("productos").Select("id", "", false).Limit(1, "").ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	return nil
}

// ListProducts returns all catalog entries.
func (s *SupabaseStore) ListProducts(ctx context.Context) ([]Product, error) {
	var rows []productRow
	_, err := s.client.From("productos").Select("*", "", false).ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := make([]Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toProduct())
	}
	return products, nil
}

// GetProduct retrieves a product by ID. Returns nil if not found.
func (s *SupabaseStore) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var rows []productRow
	_, err := s.client.From("productos").Select("*", "", false).Eq("id", productID).ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].toProduct()
	return &p, nil
}

// CreateProduct inserts a new catalog entry.
func (s *SupabaseStore) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	payload := productRow{Nombre: in.Name, Marca: in.Brand, Precio: in.Price}
	var rows []productRow
	_, err := s.client.From("productos").Insert(payload, false, "", "representation", "").ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data returned when creating product")
	}
	p := rows[0].toProduct()
	return &p, nil
}

// CreatePurchase records a purchase and its product lines.
func (s *SupabaseStore) CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	now := time.Now()
	payload := purchaseRow{
		Monto:        in.Amount,
		Fecha:        now.Format(time.RFC3339),
		TipoCompraID: in.PurchaseTypeID,
	}
	var created []purchaseRow
	_, err := s.client.From("compras").Insert(payload, false, "", "representation", "").ExecuteToWithContext(ctx, &created)
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no data returned when creating purchase")
	}
	purchaseID := created[0].ID

	for _, line := range in.Lines {
		lineRow := purchaseLineRow{
			CompraID:       purchaseID,
			ProductoID:     line.ProductID,
			Cantidad:       line.Quantity,
			PrecioUnitario: line.UnitPrice,
			Subtotal:       float64(line.Quantity) * line.UnitPrice,
		}
		var lineRows []purchaseLineRow
		if _, err := s.client.From("compras_productos").Insert(lineRow, false, "", "representation", "").ExecuteToWithContext(ctx, &lineRows); err != nil {
			return nil, fmt.Errorf("failed to add product %s to purchase: %w", line.ProductID, err)
		}
	}

	return &Purchase{ID: purchaseID, Amount: in.Amount, Date: now, PurchaseTypeID: in.PurchaseTypeID}, nil
}

// ListPurchaseTypes returns all purchase types.
func (s *SupabaseStore) ListPurchaseTypes(ctx context.Context) ([]PurchaseType, error) {
	var rows []purchaseTypeRow
	_, err := s.client.From("tipo_compra").Select("*", "", false).ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase types: %w", err)
	}
	types := make([]PurchaseType, 0, len(rows))
	for _, r := range rows {
		types = append(types, PurchaseType{ID: r.ID, Name: r.Nombre, Description: r.Descripcion})
	}
	return types, nil
}

// SalesReport aggregates purchases between start and end inclusive.
func (s *SupabaseStore) SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	var rows []purchaseRow
	_, err := s.client.From("compras").Select("*", "", false).
		Gte("fecha", start.Format(time.RFC3339)).
		Lte("fecha", end.Format(time.RFC3339)).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}

	report := &SalesReport{
		PurchaseCount: len(rows),
		Period:        fmt.Sprintf("From %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
	for _, r := range rows {
		report.TotalSales += r.Monto
	}
	if report.PurchaseCount > 0 {
		report.AveragePurchase = report.TotalSales / float64(report.PurchaseCount)
	}
	return report, nil
}

// SaveAgentLog records one agent activity.
func (s *SupabaseStore) SaveAgentLog(ctx context.Context, in AgentLogInput) (*AgentLog, error) {
	payload := agentLogRow{
		Timestamp:    time.Now().Format(time.RFC3339),
		AgentName:    in.AgentName,
		ActivityType: in.ActivityType,
		Details:      in.Details,
		ContextData:  in.ContextData,
	}
	var rows []agentLogRow
	_, err := s.client.From("agent_logs").Insert(payload, false, "", "representation", "").ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to save agent log: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data returned when saving agent log")
	}
	log := rows[0].toAgentLog()
	return &log, nil
}

// ListAgentLogs returns one filtered page of the activity log, newest
// first, with the total count across all pages.
func (s *SupabaseStore) ListAgentLogs(ctx context.Context, q AgentLogQuery) (*AgentLogPage, error) {
	q = normalizeAgentLogQuery(q)

	query := s.client.From("agent_logs").Select("*", "exact", false)
	if q.Start != nil {
		query = query.Gte("timestamp", q.Start.Format(time.RFC3339))
	}
	if q.End != nil {
		query = query.Lte("timestamp", q.End.Format(time.RFC3339))
	}
	if q.AgentName != "" {
		query = query.Eq("agent_name", q.AgentName)
	}
	if q.ActivityType != "" {
		query = query.Eq("activity_type", q.ActivityType)
	}

	from := (q.Page - 1) * q.PageSize
	var rows []agentLogRow
	total, err := query.
		Order("timestamp", &postgrest.OrderOpts{Ascending: false}).
		Range(from, from+q.PageSize-1, "").
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent logs: %w", err)
	}

	logs := make([]AgentLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.toAgentLog())
	}
	return &AgentLogPage{Logs: logs, Total: int(total), Page: q.Page, PageSize: q.PageSize}, nil
}

// RecentAgentLogs returns the latest limit activities, newest first.
func (s *SupabaseStore) RecentAgentLogs(ctx context.Context, limit int) ([]AgentLog, error) {
	var rows []agentLogRow
	_, err := s.client.From("agent_logs").Select("*", "", false).
		Order("timestamp", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent agent logs: %w", err)
	}
	logs := make([]AgentLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, r.toAgentLog())
	}
	return logs, nil
}

// SummarizeAgentLogs aggregates activity recorded at or after since.
// PostgREST cannot group on the fly, so the rows are aggregated here.
func (s *SupabaseStore) SummarizeAgentLogs(ctx context.Context, since time.Time) (*AgentLogSummary, error) {
	var rows []agentLogRow
	_, err := s.client.From("agent_logs").Select("agent_name, activity_type", "", false).
		Gte("timestamp", since.Format(time.RFC3339)).
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize agent logs: %w", err)
	}

	index := make(map[string]int)
	var counts []AgentActivityCount
	for _, r := range rows {
		key := r.AgentName + "\x00" + r.ActivityType
		if i, ok := index[key]; ok {
			counts[i].Count++
			continue
		}
		index[key] = len(counts)
		counts = append(counts, AgentActivityCount{AgentName: r.AgentName, ActivityType: r.ActivityType, Count: 1})
	}
	return summarizeCounts(counts), nil
}
