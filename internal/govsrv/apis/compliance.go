package apis

import (
	"net/http"

	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/pkg/api"
)

func (a *API) getCompliance(r *http.Request) (*httpx.Response, error) {
	report, err := a.gov.Compliance(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   report,
	}, nil
}

func (a *API) getSchemaDocumentation(r *http.Request) (*httpx.Response, error) {
	schemas, err := a.gov.DocumentationBySchema(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.SchemaDocumentationRsp{
			Schemas: schemas,
			Count:   len(schemas),
		},
	}, nil
}

func (a *API) getPIIAnalysis(r *http.Request) (*httpx.Response, error) {
	analysis, err := a.gov.PIIAnalysis(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   analysis,
	}, nil
}

func (a *API) getFreshness(r *http.Request) (*httpx.Response, error) {
	freshness, err := a.gov.Freshness(r.Context())
	if err != nil {
		return nil, err
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   freshness,
	}, nil
}
