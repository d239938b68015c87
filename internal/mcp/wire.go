//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/hirepipe/internal/config"
	"github.com/honeycarbs/hirepipe/internal/notify"
	"github.com/honeycarbs/hirepipe/internal/service"
	"github.com/honeycarbs/hirepipe/internal/session"
	"github.com/honeycarbs/hirepipe/pkg/api"
	"github.com/honeycarbs/hirepipe/pkg/logging"
)

// InitializeResources creates Resources with all resources wired up
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Cache
		provideQueryStore,

		// Session and notifications
		provideTokenStore,
		session.NewRedirects,
		provideSessionManager,
		notify.NewHub,

		// Backend
		provideAPIClient,
		wire.Bind(new(service.Sender), new(*api.Client)),
		service.NewCandidateService,
		service.NewJobService,

		// Hooks and views
		provideHooks,
		provideDashboard,

		// Optional integrations
		provideSheetsExporter,
		providePipelineMirror,

		wire.Struct(new(Resources), "*"),
	)

	return nil, nil, nil
}
