package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/domain/players"
	"github.com/scoutline/scout-client/internal/providers"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestSearchPostsRequestAndMapsResponse(t *testing.T) {
	var captured map[string]any
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/enhanced_search" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		return jsonResponse(http.StatusOK, `{
			"success": true,
			"response": "Here are some strikers",
			"players": [
				{"id": 9, "name": "Ana Costa", "age": 23, "club": "SL Benfica", "positions": ["cf", "st"], "stats": {"goals": 81}, "score": 92},
				{"external_id": "ext-4", "name": "", "score": null},
				{"name": "Out Of Range", "score": 140}
			],
			"satisfaction_question": "Did these players match what you need?",
			"supabase_session_id": "remote-7"
		}`), nil
	})

	client := NewClient(Config{
		BaseURL:    "http://search.local/",
		HTTPClient: &http.Client{Transport: rt},
		Defaults:   players.Defaults{Score: 0},
	})
	satisfied := false
	res, err := client.Search(context.Background(), chat.SearchRequest{
		SessionID:       "local-1",
		Query:           "I need a striker",
		IsFollowUp:      true,
		Satisfaction:    &satisfied,
		Language:        "pt",
		UserID:          "u1",
		RemoteSessionID: "remote-7",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := map[string]any{
		"session_id":          "local-1",
		"query":               "I need a striker",
		"is_follow_up":        true,
		"satisfaction":        false,
		"language":            "pt",
		"user_id":             "u1",
		"supabase_session_id": "remote-7",
	}
	for k, v := range want {
		if captured[k] != v {
			t.Fatalf("expected %s=%v in request, got %v", k, v, captured[k])
		}
	}

	if !res.Success || res.Response != "Here are some strikers" || res.RemoteSessionID != "remote-7" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.SatisfactionQuestion == "" {
		t.Fatal("expected satisfaction question")
	}
	if len(res.Players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(res.Players))
	}
	first := res.Players[0]
	if first.ID != "9" || first.Age != "23" || first.Score != 92 || first.Stats["goals"] != 81 {
		t.Fatalf("unexpected first player %+v", first)
	}
	second := res.Players[1]
	if second.ID != "ext-4" || second.Name != players.UnknownName || second.Club != players.UnknownClub {
		t.Fatalf("expected defaults on sparse player, got %+v", second)
	}
	if second.Age != players.UnknownAge || len(second.Positions) != 1 || second.Positions[0] != "cf" || second.Score != 0 {
		t.Fatalf("expected default age/positions/score, got %+v", second)
	}
	if res.Players[2].Score != 0 {
		t.Fatalf("expected out-of-range score replaced, got %v", res.Players[2].Score)
	}
}

func TestSearchUsesConfiguredDefaultScore(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success": true, "response": "ok", "players": [{"id": "p1", "name": "No Score"}]}`), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}, Defaults: players.Defaults{Score: 80}})

	res, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Players[0].Score != 80 {
		t.Fatalf("expected configured default score 80, got %v", res.Players[0].Score)
	}
}

func TestSearchOmitsNullSatisfaction(t *testing.T) {
	var raw []byte
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		raw, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusOK, `{"success": true, "response": "ok", "players": []}`), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	if _, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !strings.Contains(string(raw), `"satisfaction":null`) {
		t.Fatalf("expected explicit null satisfaction, got %s", raw)
	}
}

func TestSearchUnsuccessfulPayload(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success": false, "error": "index offline"}`), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})

	res, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"})
	if err != nil {
		t.Fatalf("expected result not error, got %v", err)
	}
	if res.Success || res.Message != "index offline" || len(res.Players) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearchClientErrorPayloadBecomesResult(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"success": false, "message": "query too short"}`), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})

	res, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"})
	if err != nil {
		t.Fatalf("expected result not error, got %v", err)
	}
	if res.Success || res.Message != "query too short" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearchHandlesServerError(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "boom"), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})

	if _, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestSearchMapsRateLimit(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp := jsonResponse(http.StatusTooManyRequests, "slow down")
		resp.Header.Set("Retry-After", "2")
		return resp, nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})

	_, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"})
	rl, ok := providers.AsRateLimitError(err)
	if !ok || rl.RetryAfter != 2*time.Second {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestSearchHandlesDecodeError(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "{bad json"), nil
	})
	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})

	if _, err := client.Search(context.Background(), chat.SearchRequest{Query: "x"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewClientSetsDefaultHTTPClient(t *testing.T) {
	c := NewClient(Config{})
	httpClient, ok := c.httpClient.(*http.Client)
	if !ok {
		t.Fatalf("expected default http client")
	}
	if httpClient.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout, got %s", httpClient.Timeout)
	}
	if c.baseURL != defaultBaseURL {
		t.Fatalf("expected default base url, got %s", c.baseURL)
	}
}
