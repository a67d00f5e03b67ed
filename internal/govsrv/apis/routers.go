// Package apis serves the governance HTTP surface: compliance reporting,
// table search and inspection, metadata freshness, sync loop controls and
// the feedback sink.
package apis

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/syncflow/syncflow/internal/common/apperrors"
	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/internal/connector/runner"
	"github.com/syncflow/syncflow/internal/govsrv/governance"
)

// GovernanceProvider is the query surface the API serves.
// *governance.Engine implements it.
type GovernanceProvider interface {
	Ping(ctx context.Context) error
	Compliance(ctx context.Context) (*governance.Compliance, apperrors.Error)
	SearchTables(ctx context.Context, keyword string, limit int) ([]governance.SearchResult, apperrors.Error)
	UndocumentedTables(ctx context.Context, limit int) ([]governance.UndocumentedTable, apperrors.Error)
	HighRiskTables(ctx context.Context) ([]governance.HighRiskTable, apperrors.Error)
	DocumentationBySchema(ctx context.Context) ([]governance.SchemaDocumentation, apperrors.Error)
	TableDetails(ctx context.Context, fullName string) (*governance.TableDetails, apperrors.Error)
	PIIAnalysis(ctx context.Context) (*governance.PIIAnalysis, apperrors.Error)
	Freshness(ctx context.Context) (governance.Freshness, apperrors.Error)
}

var _ GovernanceProvider = (*governance.Engine)(nil)

// SyncController exposes the daemon's sync loop to the API.
// *runner.Runner implements it.
type SyncController interface {
	TriggerNow() bool
	Status() runner.Status
}

var _ SyncController = (*runner.Runner)(nil)

// API binds the governance engine and the sync runner to HTTP handlers.
type API struct {
	gov  GovernanceProvider
	sync SyncController
}

func New(gov GovernanceProvider, sync SyncController) *API {
	return &API{gov: gov, sync: sync}
}

func (a *API) handlers() []httpx.ResponseHandlerParam {
	return []httpx.ResponseHandlerParam{
		{
			Method:  http.MethodGet,
			Path:    "/health",
			Handler: a.getHealth,
		},
		{
			Method:  http.MethodGet,
			Path:    "/version",
			Handler: a.getVersion,
		},
		{
			Method:  http.MethodGet,
			Path:    "/compliance",
			Handler: a.getCompliance,
		},
		{
			Method:  http.MethodGet,
			Path:    "/tables/search",
			Handler: a.searchTables,
		},
		{
			Method:  http.MethodGet,
			Path:    "/tables/undocumented",
			Handler: a.getUndocumentedTables,
		},
		{
			Method:  http.MethodGet,
			Path:    "/tables/high-risk",
			Handler: a.getHighRiskTables,
		},
		{
			Method:  http.MethodGet,
			Path:    "/tables/{tableName}",
			Handler: a.getTableDetails,
		},
		{
			Method:  http.MethodGet,
			Path:    "/schemas/documentation",
			Handler: a.getSchemaDocumentation,
		},
		{
			Method:  http.MethodGet,
			Path:    "/pii-analysis",
			Handler: a.getPIIAnalysis,
		},
		{
			Method:  http.MethodGet,
			Path:    "/freshness",
			Handler: a.getFreshness,
		},
		{
			Method:  http.MethodGet,
			Path:    "/sync/status",
			Handler: a.getSyncStatus,
		},
		{
			Method:  http.MethodPost,
			Path:    "/sync/run",
			Handler: a.triggerSyncRun,
		},
		{
			Method:  http.MethodPost,
			Path:    "/feedback",
			Handler: a.postFeedback,
		},
	}
}

// Router mounts the governance API on r.
func (a *API) Router(r chi.Router) {
	for _, handler := range a.handlers() {
		r.Method(handler.Method, handler.Path, httpx.WrapHttpRsp(handler.Handler))
	}
}
