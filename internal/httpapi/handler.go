// Package httpapi provides the HTTP transport for the ordering
// assistant: the chat webhook plus the dashboard endpoints.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/chat"
	"github.com/ordena/ordena/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	manager *chat.Manager
	store   store.Store
	logger  *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(manager *chat.Manager, st store.Store, logger *zap.Logger) *Handler {
	return &Handler{manager: manager, store: st, logger: logger}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat", h.Chat)
	e.POST("/v1/sessions/:session_id/reset", h.ResetSession)

	// Dashboard API
	e.GET("/v1/products", h.ListProducts)
	e.GET("/v1/payment-types", h.ListPaymentTypes)
	e.POST("/v1/sales-report", h.SalesReport)
	e.GET("/v1/agent-logs", h.ListAgentLogs)
	e.GET("/v1/agent-logs/summary", h.AgentLogsSummary)
	e.GET("/v1/agent-logs/recent", h.RecentAgentLogs)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ChatRequest is one inbound user message.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant reply for one turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Handler   string `json:"handler"`
}

// Chat runs one conversation turn.
// POST /v1/chat
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}
	if req.SessionID == "" {
		req.SessionID = chat.NewSessionID()
	}

	reply, err := h.manager.Run(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", zap.String("session_id", req.SessionID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
	}

	handler := ""
	if info, ok := h.manager.Inspect(req.SessionID); ok {
		handler = string(info.ActiveHandler)
	}
	return c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Reply:     reply,
		Handler:   handler,
	})
}

// ResetSession clears a session on explicit request.
// POST /v1/sessions/:session_id/reset
func (h *Handler) ResetSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if !h.manager.Reset(sessionID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}

// ListProducts returns the product catalog.
// GET /v1/products
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.store.ListProducts(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get products"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": products})
}

// ListPaymentTypes returns the purchase types.
// GET /v1/payment-types
func (h *Handler) ListPaymentTypes(c echo.Context) error {
	types, err := h.store.ListPurchaseTypes(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list purchase types", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get payment types"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": types})
}

// SalesReportRequest is the report period.
type SalesReportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SalesReport aggregates purchases for a period.
// POST /v1/sales-report
func (h *Handler) SalesReport(c echo.Context) error {
	var req SalesReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
	}

	report, err := h.store.SalesReport(c.Request().Context(), start, end)
	if err != nil {
		h.logger.Error("failed to generate sales report", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate report"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": report})
}

// ListAgentLogs returns a filtered page of the agent activity log.
// GET /v1/agent-logs
func (h *Handler) ListAgentLogs(c echo.Context) error {
	var q store.AgentLogQuery

	if v := c.QueryParam("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start_date"})
		}
		q.Start = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end_date"})
		}
		q.End = &t
	}
	q.AgentName = c.QueryParam("agent_name")
	q.ActivityType = c.QueryParam("activity_type")
	q.Page = intQueryParam(c, "page", 1)
	q.PageSize = intQueryParam(c, "page_size", 50)

	page, err := h.store.ListAgentLogs(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("failed to list agent logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get agent logs"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": page})
}

// AgentLogsSummary aggregates the last 24 hours of agent activity.
// GET /v1/agent-logs/summary
func (h *Handler) AgentLogsSummary(c echo.Context) error {
	since := time.Now().Add(-24 * time.Hour)
	summary, err := h.store.SummarizeAgentLogs(c.Request().Context(), since)
	if err != nil {
		h.logger.Error("failed to summarize agent logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to summarize agent logs"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": summary})
}

// RecentAgentLogs returns the most recent agent activities. The limit
// defaults to 10 and is capped at 50.
// GET /v1/agent-logs/recent
func (h *Handler) RecentAgentLogs(c echo.Context) error {
	limit := intQueryParam(c, "limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	logs, err := h.store.RecentAgentLogs(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to get recent agent logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get recent agent logs"})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "success", "data": logs})
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
