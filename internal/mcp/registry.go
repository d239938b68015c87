package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/hirepipe/internal/domain"
	"github.com/honeycarbs/hirepipe/internal/mcp/tools"
	"github.com/honeycarbs/hirepipe/pkg/logging"
)

type ToolRegistry struct {
	logger *logging.Logger
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

// RegisterAll installs every hirepipe tool backed by res
func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) {
	candidatePages := func() tools.ListPages[domain.CandidateFilters, domain.Candidate] {
		return res.Hooks.CandidateListView()
	}
	jobPages := func() tools.ListPages[domain.JobFilters, domain.Job] {
		return res.Hooks.JobListView()
	}

	tools.Register(server, r.logger,
		tools.WithLoginTool(res.Sessions),
		tools.WithCandidateTools(res.Hooks, candidatePages),
		tools.WithJobTools(res.Hooks, jobPages),
		tools.WithDashboardTool(res.Dashboard),
		tools.WithSheetsExport(res.Hooks, res.Hooks, res.Sheets),
		tools.WithPipelineSnapshot(res.Hooks, res.Hooks, res.Pipeline),
	)

	if res.Sheets == nil {
		r.logger.Info("sheets_export registered without a Sheets client")
	}
	if res.Pipeline == nil {
		r.logger.Info("pipeline_snapshot registered without a graph store")
	}
}
