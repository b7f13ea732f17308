package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/metrics"
)

// UpstreamSearch is the metrics/log name for the search endpoint.
const UpstreamSearch = "search"

type instrumentedSearch struct {
	inner    SearchProvider
	logger   *slog.Logger
	metrics  *metrics.Recorder
	upstream string
}

// NewInstrumentedSearch records attempts, latency, errors and rate limits for every search.
func NewInstrumentedSearch(inner SearchProvider, logger *slog.Logger, recorder *metrics.Recorder) SearchProvider {
	return &instrumentedSearch{
		inner:    inner,
		logger:   logger,
		metrics:  recorder,
		upstream: UpstreamSearch,
	}
}

func (s *instrumentedSearch) Search(ctx context.Context, req chat.SearchRequest) (chat.SearchResult, error) {
	if s == nil || s.inner == nil {
		return chat.SearchResult{}, ErrProviderUnavailable
	}
	start := time.Now()
	res, err := s.inner.Search(ctx, req)
	elapsed := time.Since(start)

	s.metrics.RecordUpstreamAttempt(s.upstream, elapsed, err)
	if rl, ok := AsRateLimitError(err); ok {
		s.metrics.RecordRateLimit(s.upstream, rl.RetryAfter)
	}

	if err != nil {
		logWithUpstream(ctx, s.logger, slog.LevelWarn, s.upstream, "search failed",
			"duration_ms", elapsed.Milliseconds(),
			"err", err,
		)
		return res, err
	}
	logWithUpstream(ctx, s.logger, slog.LevelInfo, s.upstream, "search completed",
		"duration_ms", elapsed.Milliseconds(),
		"count", len(res.Players),
		"success", res.Success,
	)
	return res, nil
}
