package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sync/status":
			if got := r.URL.Query().Get("detail"); got != "full" {
				t.Errorf("query detail = %q, want %q", got, "full")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"running":true,"interval":"15m0s"}`))
		case "/sync/run":
			w.Header().Set("Location", "/sync/status")
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"triggered":true,"message":"sync run scheduled"}`))
		case "/tables/search":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"result":0,"error":"query parameter q is required"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(&Config{Version: "1.0", Server: srv.URL})

	t.Run("success with query params", func(t *testing.T) {
		body, _, err := client.DoRequest(RequestOptions{
			Method:      http.MethodGet,
			Path:        "sync/status",
			QueryParams: map[string]string{"detail": "full"},
		})
		if err != nil {
			t.Fatalf("DoRequest() error = %v", err)
		}
		if !strings.Contains(string(body), `"running":true`) {
			t.Errorf("body = %s, want running:true", body)
		}
	})

	t.Run("location header passthrough", func(t *testing.T) {
		_, location, err := client.DoRequest(RequestOptions{
			Method: http.MethodPost,
			Path:   "sync/run",
		})
		if err != nil {
			t.Fatalf("DoRequest() error = %v", err)
		}
		if location != "/sync/status" {
			t.Errorf("location = %q, want /sync/status", location)
		}
	})

	t.Run("server error envelope", func(t *testing.T) {
		_, _, err := client.DoRequest(RequestOptions{
			Method: http.MethodGet,
			Path:   "tables/search",
		})
		if err == nil {
			t.Fatal("DoRequest() expected error")
		}
		httpErr, ok := err.(*HTTPError)
		if !ok {
			t.Fatalf("error type = %T, want *HTTPError", err)
		}
		if httpErr.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", httpErr.StatusCode, http.StatusBadRequest)
		}
		if httpErr.Message != "query parameter q is required" {
			t.Errorf("message = %q", httpErr.Message)
		}
	})

	t.Run("non-envelope error body", func(t *testing.T) {
		_, _, err := client.DoRequest(RequestOptions{
			Method: http.MethodGet,
			Path:   "missing",
		})
		if err == nil {
			t.Fatal("DoRequest() expected error")
		}
		httpErr, ok := err.(*HTTPError)
		if !ok {
			t.Fatalf("error type = %T, want *HTTPError", err)
		}
		if httpErr.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", httpErr.StatusCode, http.StatusNotFound)
		}
		if httpErr.Message != "not json" {
			t.Errorf("message = %q, want raw body", httpErr.Message)
		}
	})
}
