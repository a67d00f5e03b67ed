package apis

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/syncflow/syncflow/internal/common/httpx"
	"github.com/syncflow/syncflow/pkg/api"
)

func (a *API) getSyncStatus(r *http.Request) (*httpx.Response, error) {
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   a.sync.Status(),
	}, nil
}

// triggerSyncRun asks the runner for an immediate sync. The request is
// acknowledged either way: a trigger during a pending run coalesces into it.
func (a *API) triggerSyncRun(r *http.Request) (*httpx.Response, error) {
	rsp := &api.TriggerSyncRsp{Triggered: true, Message: "sync run scheduled"}
	if !a.sync.TriggerNow() {
		rsp.Triggered = false
		rsp.Message = "a sync run is already pending"
	}
	log.Ctx(r.Context()).Info().Bool("triggered", rsp.Triggered).Msg("sync run requested")
	return &httpx.Response{
		StatusCode: http.StatusAccepted,
		Response:   rsp,
	}, nil
}

// postFeedback records operator feedback in the structured log stream.
func (a *API) postFeedback(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()
	var req api.FeedbackReq
	if err := httpx.GetRequestData(r, &req); err != nil {
		return nil, err
	}
	if req.FeedbackType == "" {
		return nil, httpx.ErrInvalidRequest("feedback_type is required")
	}
	if req.FeedbackText == "" {
		return nil, httpx.ErrInvalidRequest("feedback_text is required")
	}

	ev := log.Ctx(ctx).Info().
		Str("feedback_type", req.FeedbackType).
		Str("feedback_text", req.FeedbackText)
	if req.RunID != "" {
		ev = ev.Str("run_id", req.RunID)
	}
	if len(req.Metadata) > 0 {
		ev = ev.Interface("metadata", req.Metadata)
	}
	ev.Msg("feedback received")

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   &api.FeedbackRsp{Status: "success", Message: "Feedback recorded"},
	}, nil
}
