package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SendJsonRsp writes rsp as a JSON body with the given status code. An
// optional location is set as the Location header for accepted/created
// responses. A nil rsp sends the status code with an empty body.
func SendJsonRsp(ctx context.Context, w http.ResponseWriter, statusCode int, rsp any, location ...string) {
	if w == nil {
		return
	}
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}
	if rsp == nil {
		w.WriteHeader(statusCode)
		return
	}
	rspJson, err := json.Marshal(rsp)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to marshal response")
		ErrApplicationError("unable to marshal response").Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(rspJson); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("unable to write response")
	}
}
