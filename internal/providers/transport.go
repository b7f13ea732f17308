package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds upstream calls when no client is supplied.
const DefaultHTTPTimeout = 15 * time.Second

// codeNoRows is the PostgREST code for a single-object request matching zero rows.
const codeNoRows = "PGRST116"

// HTTPDoer is the subset of *http.Client used by the upstream clients.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResolveHTTPClient returns client, or a default one bounded by timeout.
func ResolveHTTPClient(client *http.Client, timeout time.Duration) HTTPDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// NormalizeBaseURL trims a trailing slash and applies fallback when raw is empty.
func NormalizeBaseURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	return strings.TrimSuffix(raw, "/")
}

// Request describes one JSON call to an upstream.
type Request struct {
	Upstream string
	Method   string
	URL      string
	Header   http.Header
	Body     any
}

// DoJSON sends req and decodes a 2xx body into out (when out is non-nil).
// Non-2xx responses are converted by ErrorFromResponse.
func DoJSON(ctx context.Context, doer HTTPDoer, req Request, out any) error {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", req.Upstream, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return err
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", firstNonEmpty(httpReq.Header.Get("Accept"), "application/json"))

	resp, err := doer.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrorFromResponse(req.Upstream, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%s: decode response: %w", req.Upstream, err)
	}
	return nil
}

type errorPayload struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Hint             string          `json:"hint"`
}

// ErrorFromResponse maps a non-2xx response to a typed error. It reads at most 4KiB of body.
func ErrorFromResponse(upstream string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Upstream:   upstream,
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Message:    strings.TrimSpace(string(raw)),
		}
	}

	apiErr := &APIError{Upstream: upstream, StatusCode: resp.StatusCode}
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Code = decodeCode(payload.Code)
		apiErr.Message = firstNonEmpty(payload.Message, payload.ErrorDescription, payload.Msg, payload.Error)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	switch {
	case apiErr.Code == codeNoRows:
		apiErr.Err = ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Err = ErrUnauthenticated
	}
	return apiErr
}

// codes arrive as strings from PostgREST and as numbers from GoTrue.
func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

// ParseRetryAfter accepts delta-seconds or an HTTP date.
func ParseRetryAfter(raw string, now time.Time) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(raw); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// BearerHeader builds an Authorization header for token.
func BearerHeader(token string) http.Header {
	h := make(http.Header)
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
