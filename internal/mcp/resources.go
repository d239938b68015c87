package mcp

import (
	"context"

	"github.com/honeycarbs/hirepipe/internal/config"
	"github.com/honeycarbs/hirepipe/internal/dashboard"
	"github.com/honeycarbs/hirepipe/internal/hooks"
	"github.com/honeycarbs/hirepipe/internal/mcp/tools"
	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/internal/query"
	"github.com/honeycarbs/hirepipe/internal/service"
	"github.com/honeycarbs/hirepipe/internal/session"
	storage "github.com/honeycarbs/hirepipe/internal/storage/neo4j"
	"github.com/honeycarbs/hirepipe/pkg/api"
	"github.com/honeycarbs/hirepipe/pkg/logging"
	n4j "github.com/honeycarbs/hirepipe/pkg/neo4j"
	sheetsclient "github.com/honeycarbs/hirepipe/pkg/sheets"
)

// Resources is everything the MCP tools need, built once per process
type Resources struct {
	Store         *query.Store
	Hooks         *hooks.Hooks
	Dashboard     *dashboard.Service
	Sessions      *session.Manager
	Notifications *notify.Hub
	// Sheets and Pipeline are nil when their integration is not configured
	Sheets   tools.SheetsExporter
	Pipeline tools.PipelineMirror
}

func provideQueryStore(cfg config.Config, logger *logging.Logger) (*query.Store, func()) {
	store := query.NewStore(
		query.WithStaleTime(cfg.Cache.StaleTime),
		query.WithLogger(logger),
	)
	return store, store.Close
}

func provideTokenStore(cfg config.Config) (session.Store, error) {
	return session.NewStore(session.StoreConfig{
		Backend:   cfg.Session.Backend,
		TokenKey:  cfg.Session.TokenKey,
		TokenFile: cfg.Session.TokenFile,
	})
}

func provideSessionManager(cfg config.Config, store session.Store, redirects *session.Redirects, logger *logging.Logger) *session.Manager {
	return session.NewManager(store, redirects, cfg.Session.LoginPath, logger.Named("session"))
}

func provideAPIClient(cfg config.Config, sessions *session.Manager, hub *notify.Hub, logger *logging.Logger) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:           cfg.API.BaseURL,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Tokens:            sessions,
		Session:           sessions,
		Notifier:          hub,
		Logger:            logger,
	})
}

func provideHooks(store *query.Store, candidates *service.CandidateService, jobs *service.JobService, hub *notify.Hub, logger *logging.Logger) (*hooks.Hooks, error) {
	return hooks.New(store, candidates, jobs, hub, logger)
}

func provideDashboard(h *hooks.Hooks, logger *logging.Logger) (*dashboard.Service, error) {
	return dashboard.NewService(h, logger)
}

// provideSheetsExporter returns nil when Sheets is not configured or unreachable
func provideSheetsExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) tools.SheetsExporter {
	if !cfg.SheetsEnabled() {
		return nil
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.Sheets.CredentialsPath})
	if err != nil {
		logger.Warn("sheets export disabled", "err", err)
		return nil
	}

	logger.Info("Google Sheets client initialized")
	return newSheetsExporter(client)
}

// providePipelineMirror returns nil when Neo4j is not configured or unreachable
func providePipelineMirror(ctx context.Context, cfg config.Config, logger *logging.Logger) (tools.PipelineMirror, func()) {
	if !cfg.GraphEnabled() {
		return nil, func() {}
	}

	client, err := n4j.NewClient(ctx, n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		logger.Warn("pipeline snapshot disabled", "err", err)
		return nil, func() {}
	}

	logger.Info("Neo4j client initialized", "uri", cfg.Neo4j.URI)
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("neo4j close failed", "err", err)
		}
	}
	return storage.NewPipelineRepository(client), cleanup
}
