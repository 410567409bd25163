package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite. It keeps the same Spanish
// table layout as the production Supabase schema so the two backends
// are interchangeable.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// migrate runs database migrations and seeds the default purchase type.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS productos (
			id TEXT PRIMARY KEY,
			nombre TEXT NOT NULL,
			marca TEXT NOT NULL,
			precio REAL NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS tipo_compra (
			id TEXT PRIMARY KEY,
			nombre TEXT NOT NULL,
			descripcion TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS compras (
			id TEXT PRIMARY KEY,
			monto REAL NOT NULL,
			fecha DATETIME NOT NULL,
			tipo_compra_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (tipo_compra_id) REFERENCES tipo_compra(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_compras_fecha ON compras(fecha)`,
		`CREATE TABLE IF NOT EXISTS compras_productos (
			id TEXT PRIMARY KEY,
			compra_id TEXT NOT NULL,
			producto_id TEXT NOT NULL,
			cantidad INTEGER NOT NULL,
			precio_unitario REAL NOT NULL,
			subtotal REAL NOT NULL,
			FOREIGN KEY (compra_id) REFERENCES compras(id)
		)`,
		`CREATE TABLE IF NOT EXISTS agent_logs (
			id TEXT PRIMARY KEY,
			agent_name TEXT NOT NULL,
			activity_type TEXT NOT NULL,
			details TEXT,
			context_data TEXT,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_agent_logs_timestamp ON agent_logs(timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return s.seedPurchaseTypes()
}

// seedPurchaseTypes ensures the Mercado Pago purchase type exists.
func (s *SQLiteStore) seedPurchaseTypes() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tipo_compra WHERE nombre = ?`, "Mercado Pago").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO tipo_compra (id, nombre, descripcion) VALUES (?, ?, ?)`,
		uuid.New().String(), "Mercado Pago", "Pagos procesados a través de Mercado Pago")
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Probe verifies the connection with a cheap read on the catalog.
func (s *SQLiteStore) Probe(ctx context.Context) error {
	var count int
	return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM productos`).Scan(&count)
}

// ListProducts returns all catalog entries.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre, marca, precio, created_at, updated_at FROM productos ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var createdAt time.Time
		var updatedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt = &createdAt
		if updatedAt.Valid {
			t := updatedAt.Time
			p.UpdatedAt = &t
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct retrieves a product by ID. Returns nil if not found.
func (s *SQLiteStore) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	var createdAt time.Time
	var updatedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, nombre, marca, precio, created_at, updated_at FROM productos WHERE id = ?`,
		productID).Scan(&p.ID, &p.Name, &p.Brand, &p.Price, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = &createdAt
	if updatedAt.Valid {
		t := updatedAt.Time
		p.UpdatedAt = &t
	}
	return &p, nil
}

// CreateProduct inserts a new catalog entry.
func (s *SQLiteStore) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	id := uuid.New().String()
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO productos (id, nombre, marca, precio, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, in.Name, in.Brand, in.Price, now)
	if err != nil {
		return nil, err
	}
	return &Product{ID: id, Name: in.Name, Brand: in.Brand, Price: in.Price, CreatedAt: &now}, nil
}

// CreatePurchase records a purchase and its product lines.
func (s *SQLiteStore) CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO compras (id, monto, fecha, tipo_compra_id) VALUES (?, ?, ?, ?)`,
		id, in.Amount, now, in.PurchaseTypeID); err != nil {
		return nil, err
	}

	for _, line := range in.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO compras_productos (id, compra_id, producto_id, cantidad, precio_unitario, subtotal)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), id, line.ProductID, line.Quantity, line.UnitPrice,
			float64(line.Quantity)*line.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Purchase{ID: id, Amount: in.Amount, Date: now, PurchaseTypeID: in.PurchaseTypeID}, nil
}

// ListPurchaseTypes returns all purchase types.
func (s *SQLiteStore) ListPurchaseTypes(ctx context.Context) ([]PurchaseType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nombre, descripcion FROM tipo_compra ORDER BY nombre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []PurchaseType
	for rows.Next() {
		var t PurchaseType
		var desc sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &desc); err != nil {
			return nil, err
		}
		t.Description = desc.String
		types = append(types, t)
	}
	return types, rows.Err()
}

// SalesReport aggregates purchases between start and end inclusive.
func (s *SQLiteStore) SalesReport(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	var total sql.NullFloat64
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(monto), 0), COUNT(*) FROM compras WHERE fecha >= ? AND fecha <= ?`,
		start, end).Scan(&total, &count)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		TotalSales:    total.Float64,
		PurchaseCount: count,
		Period:        fmt.Sprintf("From %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
	}
	if count > 0 {
		report.AveragePurchase = report.TotalSales / float64(count)
	}
	return report, nil
}

// SaveAgentLog records one agent activity.
func (s *SQLiteStore) SaveAgentLog(ctx context.Context, in AgentLogInput) (*AgentLog, error) {
	id := uuid.New().String()
	now := time.Now()

	var contextData sql.NullString
	if in.ContextData != nil {
		raw, err := json.Marshal(in.ContextData)
		if err != nil {
			return nil, fmt.Errorf("failed to encode context data: %w", err)
		}
		contextData = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_logs (id, agent_name, activity_type, details, context_data, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.AgentName, in.ActivityType, nullableString(in.Details), contextData, now)
	if err != nil {
		return nil, err
	}
	return &AgentLog{
		ID:           id,
		Timestamp:    now,
		AgentName:    in.AgentName,
		ActivityType: in.ActivityType,
		Details:      in.Details,
		ContextData:  in.ContextData,
	}, nil
}

// ListAgentLogs returns one filtered page of the activity log, newest
// first, with the total count across all pages.
func (s *SQLiteStore) ListAgentLogs(ctx context.Context, q AgentLogQuery) (*AgentLogPage, error) {
	q = normalizeAgentLogQuery(q)

	where := "WHERE 1=1"
	var args []any
	if q.Start != nil {
		where += " AND timestamp >= ?"
		args = append(args, *q.Start)
	}
	if q.End != nil {
		where += " AND timestamp <= ?"
		args = append(args, *q.End)
	}
	if q.AgentName != "" {
		where += " AND agent_name = ?"
		args = append(args, q.AgentName)
	}
	if q.ActivityType != "" {
		where += " AND activity_type = ?"
		args = append(args, q.ActivityType)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_logs `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	pageArgs := append(args, q.PageSize, (q.Page-1)*q.PageSize)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_name, activity_type, details, context_data, timestamp FROM agent_logs `+
			where+` ORDER BY timestamp DESC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := scanAgentLogs(rows)
	if err != nil {
		return nil, err
	}
	return &AgentLogPage{Logs: logs, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// RecentAgentLogs returns the latest limit activities, newest first.
func (s *SQLiteStore) RecentAgentLogs(ctx context.Context, limit int) ([]AgentLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_name, activity_type, details, context_data, timestamp
		 FROM agent_logs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAgentLogs(rows)
}

// SummarizeAgentLogs aggregates activity recorded at or after since.
func (s *SQLiteStore) SummarizeAgentLogs(ctx context.Context, since time.Time) (*AgentLogSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_name, activity_type, COUNT(*) FROM agent_logs
		 WHERE timestamp >= ? GROUP BY agent_name, activity_type
		 ORDER BY agent_name, activity_type`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []AgentActivityCount
	for rows.Next() {
		var c AgentActivityCount
		if err := rows.Scan(&c.AgentName, &c.ActivityType, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summarizeCounts(counts), nil
}

// summarizeCounts derives the distinct agent and activity lists from
// the grouped counts. Shared by both backends.
func summarizeCounts(counts []AgentActivityCount) *AgentLogSummary {
	agentSet := make(map[string]bool)
	activitySet := make(map[string]bool)
	summary := &AgentLogSummary{Counts: counts}
	for _, c := range counts {
		if !agentSet[c.AgentName] {
			agentSet[c.AgentName] = true
			summary.Agents = append(summary.Agents, c.AgentName)
		}
		if !activitySet[c.ActivityType] {
			activitySet[c.ActivityType] = true
			summary.ActivityTypes = append(summary.ActivityTypes, c.ActivityType)
		}
	}
	return summary
}

func scanAgentLogs(rows *sql.Rows) ([]AgentLog, error) {
	var logs []AgentLog
	for rows.Next() {
		var l AgentLog
		var details, contextData sql.NullString
		if err := rows.Scan(&l.ID, &l.AgentName, &l.ActivityType, &details, &contextData, &l.Timestamp); err != nil {
			return nil, err
		}
		l.Details = details.String
		if contextData.Valid {
			if err := json.Unmarshal([]byte(contextData.String), &l.ContextData); err != nil {
				return nil, fmt.Errorf("failed to decode context data for log %s: %w", l.ID, err)
			}
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
