// Package unitycatalog is a read-only client for the Unity Catalog REST API.
// It exposes the five listing and detail calls the sync walk needs, retries
// transient failures with backoff, and reports volume support as a
// capability probe since not every deployment has the endpoint.
package unitycatalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	json "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/syncflow/syncflow/internal/common/apperrors"
)

const (
	apiVersion     = "2.1"
	requestTimeout = 30 * time.Second

	defaultRetryAttempts = 4
	retryBaseDelay       = 1 * time.Second
)

// Client calls the Unity Catalog REST API of a single workspace.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	attempts   uint
	retryDelay time.Duration
}

type Option func(*Client)

// WithRetryAttempts overrides the attempt budget for transient failures.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryDelay overrides the base delay between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New returns a client rooted at the workspace URL. The access token is sent
// as a bearer credential on every request.
func New(workspaceURL, accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(workspaceURL, "/") + "/api/" + apiVersion + "/unity-catalog",
		token:      accessToken,
		http:       &http.Client{Timeout: requestTimeout},
		attempts:   defaultRetryAttempts,
		retryDelay: retryBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCatalogs returns all catalogs in the metastore.
func (c *Client) ListCatalogs(ctx context.Context) ([]CatalogInfo, error) {
	log.Ctx(ctx).Info().Msg("fetching catalogs")
	var rsp catalogListResponse
	if err := c.get(ctx, "catalogs", nil, &rsp); err != nil {
		return nil, err
	}
	return rsp.Catalogs, nil
}

// ListSchemas returns the schemas of one catalog.
func (c *Client) ListSchemas(ctx context.Context, catalogName string) ([]SchemaInfo, error) {
	log.Ctx(ctx).Debug().Str("catalog", catalogName).Msg("fetching schemas")
	params := url.Values{}
	params.Set("catalog_name", catalogName)
	var rsp schemaListResponse
	if err := c.get(ctx, "schemas", params, &rsp); err != nil {
		return nil, err
	}
	return rsp.Schemas, nil
}

// ListTables returns the table stubs of one schema. Only names are reliable
// here; full metadata needs GetTable.
func (c *Client) ListTables(ctx context.Context, catalogName, schemaName string) ([]TableSummary, error) {
	log.Ctx(ctx).Debug().Str("catalog", catalogName).Str("schema", schemaName).Msg("fetching tables")
	params := url.Values{}
	params.Set("catalog_name", catalogName)
	params.Set("schema_name", schemaName)
	var rsp tableListResponse
	if err := c.get(ctx, "tables", params, &rsp); err != nil {
		return nil, err
	}
	return rsp.Tables, nil
}

// GetTable returns full metadata for one table, columns included.
func (c *Client) GetTable(ctx context.Context, fullName string) (*TableInfo, error) {
	log.Ctx(ctx).Debug().Str("table", fullName).Msg("fetching table metadata")
	var rsp TableInfo
	if err := c.get(ctx, "tables/"+url.PathEscape(fullName), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// ListVolumes probes the schema for volumes. A missing endpoint reports
// Supported false with no error; transient failures return the error so the
// caller can decide how hard to fail.
func (c *Client) ListVolumes(ctx context.Context, catalogName, schemaName string) (VolumeListing, error) {
	log.Ctx(ctx).Debug().Str("catalog", catalogName).Str("schema", schemaName).Msg("fetching volumes")
	params := url.Values{}
	params.Set("catalog_name", catalogName)
	params.Set("schema_name", schemaName)
	var rsp volumeListResponse
	if err := c.get(ctx, "volumes", params, &rsp); err != nil {
		if errors.Is(err, ErrEndpointNotFound) {
			return VolumeListing{Supported: false}, nil
		}
		return VolumeListing{Supported: true}, err
	}
	return VolumeListing{Volumes: rsp.Volumes, Supported: true}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = c.roundTrip(ctx, u)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Str("endpoint", endpoint).Msg("retrying catalog api request")
		}),
	)
	if err != nil {
		if _, ok := err.(apperrors.Error); !ok {
			// context cancellation or other non-classified failure
			return ErrTransport.MsgErr(fmt.Sprintf("request for %s failed", endpoint), err)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ErrDecodeResponse.MsgErr(fmt.Sprintf("unable to decode %s response", endpoint), err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ErrTransport.MsgErr("unable to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	rsp, err := c.http.Do(req)
	if err != nil {
		return nil, ErrTransport.MsgErr("request failed", err)
	}
	defer rsp.Body.Close()
	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, ErrTransport.MsgErr("unable to read response", err)
	}
	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return nil, classifyStatus(rsp.StatusCode, body)
	}
	return body, nil
}

func classifyStatus(status int, body []byte) apperrors.Error {
	var detail apiErrorBody
	msg := fmt.Sprintf("status %d", status)
	if err := json.Unmarshal(body, &detail); err == nil && detail.Message != "" {
		msg = fmt.Sprintf("status %d: %s", status, detail.Message)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return ErrRateLimited.Msg(msg)
	case status >= 500:
		return ErrRemoteFailure.Msg(msg)
	case status == http.StatusNotFound && (detail.ErrorCode == "" || detail.ErrorCode == "ENDPOINT_NOT_FOUND"):
		return ErrEndpointNotFound.Msg(msg)
	default:
		return ErrRequestRejected.Msg(msg)
	}
}
