// Package app wires the process-wide components together. All shared
// state is constructed here explicitly and injected; nothing lives in
// package-level singletons.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordena/ordena/internal/agent"
	"github.com/ordena/ordena/internal/chat"
	"github.com/ordena/ordena/internal/config"
	"github.com/ordena/ordena/internal/extract"
	"github.com/ordena/ordena/internal/payments"
	"github.com/ordena/ordena/internal/policy"
	"github.com/ordena/ordena/internal/reasoner"
	"github.com/ordena/ordena/internal/router"
	"github.com/ordena/ordena/internal/store"
	"github.com/ordena/ordena/internal/tools"
)

// paymentTimeout bounds calls to the payment link provider.
const paymentTimeout = 30 * time.Second

// App is the assembled ordering assistant.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    store.Store
	Manager  *chat.Manager
	Provider payments.Provider
}

// NewLogger builds a zap logger honoring the configured level.
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	return cfg.Build()
}

// New assembles the full stack. Store connection failure is fatal by
// design: the assistant cannot run without its data collaborator.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	st, err := store.Connect(ctx, func() (store.Store, error) {
		return openStore(cfg)
	}, store.ConnectOptions{
		MaxRetries: cfg.StoreMaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect store: %w", err)
	}

	provider := payments.NewProvider(cfg.MPAccessToken, cfg.MPWebhookURL, paymentTimeout, logger)

	registry := tools.NewRegistry()
	agent.RegisterStoreTools(registry, st)
	agent.RegisterPaymentTools(registry, provider)

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	thinker := reasoner.New(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerModel, cfg.ReasonerTimeout, logger)
	extractor := extract.New(extract.DefaultConfig())
	agents := agent.NewRegistry()

	hooks := []router.TransitionHook{
		&router.LoggingHook{Logger: logger},
		&router.PriceBackfillHook{DefaultUnitPrice: cfg.DefaultUnitPrice, Logger: logger},
	}

	rt := router.New(agents, thinker, registry, policyEngine, extractor, hooks, st, logger, cfg.ReasonerTimeout)
	manager := chat.NewManager(extractor, rt, logger, cfg.MaxTurns, cfg.MaxMessages)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    st,
		Manager:  manager,
		Provider: provider,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("failed to close store", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "supabase":
		return store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey)
	case "sqlite":
		return store.NewSQLiteStore(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
