package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/scoutline/scout-client/internal/domain/chat"
	"github.com/scoutline/scout-client/internal/i18n"
)

// StubFlusher is a test double for poller.Flusher.
type StubFlusher struct {
	mu     sync.Mutex
	err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// SetErr changes the error returned by subsequent flushes.
func (f *StubFlusher) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Flush returns the configured error while tracking calls.
func (f *StubFlusher) Flush(ctx context.Context) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Notify != nil {
		select {
		case <-f.Notify:
		default:
			close(f.Notify)
		}
	}
	f.Calls.Add(1)
	return f.err
}

// StubSearch is a test double for providers.SearchProvider.
type StubSearch struct {
	mu       sync.Mutex
	Result   chat.SearchResult
	Err      error
	Requests []chat.SearchRequest
}

// Search records the request and returns the configured result.
func (s *StubSearch) Search(ctx context.Context, req chat.SearchRequest) (chat.SearchResult, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Requests = append(s.Requests, req)
	return s.Result, s.Err
}

// Calls returns how many searches ran.
func (s *StubSearch) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// StubLanguages is a test double for providers.LanguageSource.
type StubLanguages struct {
	List []i18n.Language
	Err  error
}

// Languages returns the configured list.
func (s StubLanguages) Languages(ctx context.Context) ([]i18n.Language, error) {
	_ = ctx
	return s.List, s.Err
}
