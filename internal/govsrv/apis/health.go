package apis

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/pkg/api"
)

// getHealth reports service liveness. A failed warehouse ping degrades the
// status to unhealthy but still answers 200 so probes can read the body.
func (a *API) getHealth(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	status := "healthy"
	if err := a.gov.Ping(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("warehouse ping failed")
		status = "unhealthy"
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.HealthRsp{
			Status:  status,
			Service: api.ServiceName,
			Version: api.ServerVersion,
		},
	}, nil
}

func (a *API) getVersion(r *http.Request) (*httpx.Response, error) {
	log.Ctx(r.Context()).Debug().Msg("GetVersion")
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: &api.GetVersionRsp{
			ServerVersion: "SyncFlow Server: " + api.ServerVersion,
			ApiVersion:    api.ApiVersion_0_1,
		},
	}, nil
}
