package apis

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/internal/govsrv/governance"
	"github.com/syncflow/syncflow/pkg/api"
)

// searchResultLimit caps keyword search answers.
const searchResultLimit = 20

// searchTables answers free-text discovery queries. The first word longer
// than three characters drives the keyword match; a query without one gets
// an empty result set, not an error.
func (a *API) searchTables(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	if query == "" {
		return nil, httpx.ErrInvalidRequest("query parameter q is required")
	}

	keywords := governance.ExtractKeywords(query)
	if len(keywords) == 0 {
		return &httpx.Response{
			StatusCode: http.StatusOK,
			Response: &api.SearchTablesRsp{
				Query:   query,
				Results: []governance.SearchResult{},
				Message: "No meaningful keywords found",
			},
		}, nil
	}

	results, err := a.gov.SearchTables(ctx, keywords[0], searchResultLimit)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.SearchTablesRsp{
			Query:   query,
			Keyword: keywords[0],
			Results: results,
			Count:   len(results),
		},
	}, nil
}

func (a *API) getUndocumentedTables(r *http.Request) (*httpx.Response, error) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, httpx.ErrInvalidRequest("limit must be a positive integer")
		}
		limit = n
	}

	tables, err := a.gov.UndocumentedTables(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.UndocumentedTablesRsp{
			Tables: tables,
			Count:  len(tables),
		},
	}, nil
}

func (a *API) getHighRiskTables(r *http.Request) (*httpx.Response, error) {
	tables, err := a.gov.HighRiskTables(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.HighRiskTablesRsp{
			Tables: tables,
			Count:  len(tables),
		},
	}, nil
}

func (a *API) getTableDetails(r *http.Request) (*httpx.Response, error) {
	tableName := chi.URLParam(r, "tableName")
	details, err := a.gov.TableDetails(r.Context(), tableName)
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   details,
	}, nil
}
