package search

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/providers"
)

// Config controls how the search client reaches the enhanced search endpoint.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Defaults   players.Defaults
}

// Client posts user queries to the enhanced search endpoint and maps the reply.
type Client struct {
	baseURL    string
	httpClient providers.HTTPDoer
	defaults   players.Defaults
}

// NewClient constructs a search client with the provided configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &Client{
		baseURL:    providers.NormalizeBaseURL(cfg.BaseURL, defaultBaseURL),
		httpClient: providers.ResolveHTTPClient(cfg.HTTPClient, timeout),
		defaults:   cfg.Defaults,
	}
}

// Search runs one query. A {success:false} reply is a result, not an error;
// transport failures and non-2xx responses are errors.
func (c *Client) Search(ctx context.Context, req chat.SearchRequest) (chat.SearchResult, error) {
	var payload searchResponse
	err := providers.DoJSON(ctx, c.httpClient, providers.Request{
		Upstream: upstreamName,
		Method:   http.MethodPost,
		URL:      c.baseURL + searchPath,
		Body:     mapRequest(req),
	}, &payload)
	if err != nil {
		if result, ok := errorPayload(err); ok {
			return result, nil
		}
		return chat.SearchResult{}, err
	}
	return mapResult(payload, c.defaults), nil
}

// errorPayload surfaces a 4xx {success:false, message|error} body as an unsuccessful result.
func errorPayload(err error) (chat.SearchResult, bool) {
	apiErr, ok := providers.AsAPIError(err)
	if !ok || apiErr.StatusCode >= 500 || errors.Is(err, providers.ErrUnauthenticated) {
		return chat.SearchResult{}, false
	}
	if apiErr.Message == "" {
		return chat.SearchResult{}, false
	}
	return chat.SearchResult{Success: false, Message: apiErr.Message}, true
}
