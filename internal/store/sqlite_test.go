package store

import (
	"context"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteProbe(t *testing.T) {
	s := newTestSQLiteStore(t)
	if err := s.Probe(context.Background()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestSQLiteSeedsMercadoPagoPurchaseType(t *testing.T) {
	s := newTestSQLiteStore(t)

	types, err := s.ListPurchaseTypes(context.Background())
	if err != nil {
		t.Fatalf("ListPurchaseTypes failed: %v", err)
	}
	found := false
	for _, pt := range types {
		if pt.Name == "Mercado Pago" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected seeded Mercado Pago purchase type, got %+v", types)
	}
}

func TestSQLiteProductCRUD(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, ProductInput{Name: "pizza muzzarella", Brand: "La Casa", Price: 10.0})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	got, err := s.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got == nil || got.Name != "pizza muzzarella" || got.Price != 10.0 {
		t.Fatalf("unexpected product: %+v", got)
	}

	missing, err := s.GetProduct(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}

	all, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 product, got %d", len(all))
	}
}

func TestSQLiteCreatePurchaseAndReport(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	product, err := s.CreateProduct(ctx, ProductInput{Name: "pizza muzzarella", Brand: "La Casa", Price: 10.0})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	types, err := s.ListPurchaseTypes(ctx)
	if err != nil || len(types) == 0 {
		t.Fatalf("ListPurchaseTypes failed: %v", err)
	}

	purchase, err := s.CreatePurchase(ctx, PurchaseInput{
		Amount:         20.0,
		PurchaseTypeID: types[0].ID,
		Lines: []PurchaseLine{
			{ProductID: product.ID, Quantity: 2, UnitPrice: 10.0},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}
	if purchase.ID == "" || purchase.Amount != 20.0 {
		t.Fatalf("unexpected purchase: %+v", purchase)
	}

	if _, err := s.CreatePurchase(ctx, PurchaseInput{
		Amount:         30.0,
		PurchaseTypeID: types[0].ID,
	}); err != nil {
		t.Fatalf("CreatePurchase failed: %v", err)
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)
	report, err := s.SalesReport(ctx, start, end)
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if report.PurchaseCount != 2 {
		t.Fatalf("expected 2 purchases, got %d", report.PurchaseCount)
	}
	if report.TotalSales != 50.0 {
		t.Fatalf("expected total 50.0, got %v", report.TotalSales)
	}
	if report.AveragePurchase != 25.0 {
		t.Fatalf("expected average 25.0, got %v", report.AveragePurchase)
	}
}

func TestSQLiteSalesReportEmptyPeriod(t *testing.T) {
	s := newTestSQLiteStore(t)

	start := time.Now().Add(-48 * time.Hour)
	end := time.Now().Add(-24 * time.Hour)
	report, err := s.SalesReport(context.Background(), start, end)
	if err != nil {
		t.Fatalf("SalesReport failed: %v", err)
	}
	if report.PurchaseCount != 0 || report.TotalSales != 0 || report.AveragePurchase != 0 {
		t.Fatalf("expected zeroed report, got %+v", report)
	}

	if report.Period == "" {
		t.Fatal("expected a formatted period")
	}
}

func TestSQLitePurchaseRejectsUnknownType(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.CreatePurchase(context.Background(), PurchaseInput{
		Amount:         10.0,
		PurchaseTypeID: "no-such-type",
	})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown purchase type")
	}
}

func seedAgentLogs(t *testing.T, s *SQLiteStore) {
	t.Helper()
	ctx := context.Background()
	inputs := []AgentLogInput{
		{AgentName: "main", ActivityType: "route", Details: "conversation routed from main"},
		{AgentName: "sales", ActivityType: "tool_call", Details: "executed get_products",
			ContextData: map[string]any{"tool": "get_products", "session_id": "sess_log"}},
		{AgentName: "sales", ActivityType: "handoff", Details: "transferred to products"},
		{AgentName: "products", ActivityType: "tool_call", Details: "executed get_product"},
	}
	for _, in := range inputs {
		if _, err := s.SaveAgentLog(ctx, in); err != nil {
			t.Fatalf("SaveAgentLog failed: %v", err)
		}
	}
}

func TestSQLiteAgentLogRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	saved, err := s.SaveAgentLog(ctx, AgentLogInput{
		AgentName:    "sales",
		ActivityType: "tool_call",
		Details:      "executed create_payment_link",
		ContextData:  map[string]any{"tool": "create_payment_link", "session_id": "sess_log"},
	})
	if err != nil {
		t.Fatalf("SaveAgentLog failed: %v", err)
	}
	if saved.ID == "" || saved.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", saved)
	}

	logs, err := s.RecentAgentLogs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAgentLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected one log, got %d", len(logs))
	}
	got := logs[0]
	if got.AgentName != "sales" || got.ActivityType != "tool_call" {
		t.Fatalf("unexpected log: %+v", got)
	}
	if got.ContextData["tool"] != "create_payment_link" {
		t.Fatalf("context data lost: %+v", got.ContextData)
	}
}

func TestSQLiteListAgentLogsFiltersAndPaginates(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	seedAgentLogs(t, s)

	page, err := s.ListAgentLogs(ctx, AgentLogQuery{})
	if err != nil {
		t.Fatalf("ListAgentLogs failed: %v", err)
	}
	if page.Total != 4 || len(page.Logs) != 4 || page.Page != 1 || page.PageSize != 50 {
		t.Fatalf("unexpected page: total=%d len=%d page=%d size=%d",
			page.Total, len(page.Logs), page.Page, page.PageSize)
	}

	page, err = s.ListAgentLogs(ctx, AgentLogQuery{AgentName: "sales"})
	if err != nil {
		t.Fatalf("ListAgentLogs failed: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected two sales logs, got %d", page.Total)
	}
	for _, l := range page.Logs {
		if l.AgentName != "sales" {
			t.Fatalf("filter leaked: %+v", l)
		}
	}

	page, err = s.ListAgentLogs(ctx, AgentLogQuery{ActivityType: "tool_call", PageSize: 1})
	if err != nil {
		t.Fatalf("ListAgentLogs failed: %v", err)
	}
	if page.Total != 2 || len(page.Logs) != 1 {
		t.Fatalf("expected total 2 with one log per page, got total=%d len=%d", page.Total, len(page.Logs))
	}

	second, err := s.ListAgentLogs(ctx, AgentLogQuery{ActivityType: "tool_call", Page: 2, PageSize: 1})
	if err != nil {
		t.Fatalf("ListAgentLogs failed: %v", err)
	}
	if len(second.Logs) != 1 || second.Logs[0].ID == page.Logs[0].ID {
		t.Fatalf("expected a different log on page 2, got %+v", second.Logs)
	}

	future := time.Now().Add(time.Hour)
	page, err = s.ListAgentLogs(ctx, AgentLogQuery{Start: &future})
	if err != nil {
		t.Fatalf("ListAgentLogs failed: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no logs after the cutoff, got %d", page.Total)
	}
}

func TestSQLiteRecentAgentLogsHonorsLimit(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAgentLogs(t, s)

	logs, err := s.RecentAgentLogs(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentAgentLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected two logs, got %d", len(logs))
	}
}

func TestSQLiteSummarizeAgentLogs(t *testing.T) {
	s := newTestSQLiteStore(t)
	seedAgentLogs(t, s)

	summary, err := s.SummarizeAgentLogs(context.Background(), time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("SummarizeAgentLogs failed: %v", err)
	}
	counts := make(map[string]int)
	for _, c := range summary.Counts {
		counts[c.AgentName+"/"+c.ActivityType] = c.Count
	}
	if counts["sales/tool_call"] != 1 || counts["products/tool_call"] != 1 || counts["sales/handoff"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if len(summary.Agents) != 3 {
		t.Fatalf("expected three distinct agents, got %v", summary.Agents)
	}
	if len(summary.ActivityTypes) != 3 {
		t.Fatalf("expected three distinct activity types, got %v", summary.ActivityTypes)
	}

	empty, err := s.SummarizeAgentLogs(context.Background(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SummarizeAgentLogs failed: %v", err)
	}
	if len(empty.Counts) != 0 {
		t.Fatalf("expected an empty summary, got %+v", empty)
	}
}
