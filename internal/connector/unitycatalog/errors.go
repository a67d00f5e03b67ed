package unitycatalog

import (
	"net/http"

	"github.com/syncflow/syncflow/internal/common/apperrors"
)

var (
	ErrCatalogAPI       apperrors.Error = apperrors.New("catalog api error").SetStatusCode(http.StatusBadGateway)
	ErrTransport        apperrors.Error = ErrCatalogAPI.New("request failed")
	ErrRemoteStatus     apperrors.Error = ErrCatalogAPI.New("unexpected response status")
	ErrRateLimited      apperrors.Error = ErrRemoteStatus.New("rate limited")
	ErrRemoteFailure    apperrors.Error = ErrRemoteStatus.New("remote server failure")
	ErrRequestRejected  apperrors.Error = ErrRemoteStatus.New("request rejected")
	ErrEndpointNotFound apperrors.Error = ErrRequestRejected.New("endpoint not found")
	ErrDecodeResponse   apperrors.Error = ErrCatalogAPI.New("unable to decode response")
)

// retryable reports whether the failure is worth retrying: network-level
// errors, throttling and remote 5xx. Other 4xx rejections fail immediately.
func retryable(err error) bool {
	if e, ok := err.(apperrors.Error); ok {
		return e.Is(ErrTransport) || e.Is(ErrRateLimited) || e.Is(ErrRemoteFailure)
	}
	return false
}
