package router

import (
	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/chat"
	"github.com/ordena/ordena/internal/domain"
)

// TransitionHook is middleware around a hand-off. Before hooks run
// after the payload is built and before the target agent is invoked;
// After hooks run once the target has returned.
type TransitionHook interface {
	BeforeTransfer(sess *chat.Session, from, to domain.Handler, payload *domain.HandoffData) error
	AfterTransfer(sess *chat.Session, from, to domain.Handler, payload domain.HandoffData) error
}

// LoggingHook records each transfer. Observability only; a logging
// failure never fails the hand-off.
type LoggingHook struct {
	Logger *zap.Logger
}

func (h *LoggingHook) BeforeTransfer(sess *chat.Session, from, to domain.Handler, payload *domain.HandoffData) error {
	h.Logger.Info("transferring conversation",
		zap.String("session_id", sess.ID()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("task", payload.Task),
		zap.String("instructions", payload.Instructions),
		zap.Any("conversation_state", payload.State),
		zap.Any("current_order", payload.Order))
	return nil
}

func (h *LoggingHook) AfterTransfer(sess *chat.Session, from, to domain.Handler, payload domain.HandoffData) error {
	h.Logger.Info("transfer completed",
		zap.String("session_id", sess.ID()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return nil
}

// PriceBackfillHook guarantees the payment flow never blocks on missing
// price data: when sales hands off to products and a line comes back
// unpriced, it is set to the fallback unit price and control returns to
// sales.
type PriceBackfillHook struct {
	DefaultUnitPrice float64
	Logger           *zap.Logger
}

func (h *PriceBackfillHook) BeforeTransfer(sess *chat.Session, from, to domain.Handler, payload *domain.HandoffData) error {
	return nil
}

func (h *PriceBackfillHook) AfterTransfer(sess *chat.Session, from, to domain.Handler, payload domain.HandoffData) error {
	if from != domain.HandlerSales || to != domain.HandlerProducts {
		return nil
	}
	// Write-backs go to the canonical order on the session, never the
	// payload copy.
	for _, name := range sess.Order().Unpriced() {
		if sess.Order().SetPrice(name, h.DefaultUnitPrice) {
			h.Logger.Info("backfilled default unit price",
				zap.String("session_id", sess.ID()),
				zap.String("product", name),
				zap.Float64("unit_price", h.DefaultUnitPrice))
		}
	}
	sess.SetHandler(domain.HandlerSales)
	return nil
}
