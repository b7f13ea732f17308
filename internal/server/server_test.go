package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scoutline/scout-client/internal/config"
	"github.com/scoutline/scout-client/internal/metrics"
	"github.com/scoutline/scout-client/internal/poller"
	"github.com/scoutline/scout-client/internal/testutil"
)

func fixtureConfig() config.Config {
	return config.Config{
		Port:    "0",
		Remote:  config.RemoteConfig{Provider: config.RemoteFixture},
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		Sync:    config.SyncConfig{Strategy: config.SyncImmediate, MaxAttempts: 3},
		Product: config.ProductConfig{DefaultScore: 70, DemoAccounts: true, DefaultLanguage: "en"},
	}
}

func stubMetricsSetup(t *testing.T) {
	t.Helper()
	orig := metricsSetup
	t.Cleanup(func() { metricsSetup = orig })
	metricsSetup = func(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return metrics.NewRecorder(), nil, nil, nil
	}
}

type stubDrainer struct {
	calls atomic.Int32
	err   error
}

func (d *stubDrainer) Drain(ctx context.Context) error {
	d.calls.Add(1)
	return d.err
}

type stubCloser struct {
	calls int
}

func (c *stubCloser) Close() error {
	c.calls++
	return nil
}

func TestNewServesHealthAndClientState(t *testing.T) {
	stubMetricsSetup(t)
	srv, err := New(fixtureConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if srv.poller != nil {
		t.Fatal("expected no poller for immediate sync")
	}

	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.ServeClientJSON(t, srv.Handler(), http.MethodGet, "/state", "device-1", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.Serve(srv.Handler(), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestNewRejectsUnknownRemoteProvider(t *testing.T) {
	stubMetricsSetup(t)
	cfg := fixtureConfig()
	cfg.Remote.Provider = "carrier-pigeon"
	if _, err := New(cfg, nil); err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Fatalf("expected unknown provider error, got %v", err)
	}
}

func TestNewStartsPollerForOutbox(t *testing.T) {
	stubMetricsSetup(t)
	cfg := fixtureConfig()
	cfg.Sync.Strategy = config.SyncOutbox
	cfg.Sync.FlushInterval = time.Hour

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if srv.poller == nil {
		t.Fatal("expected outbox poller")
	}

	// No flush has run yet, so the service is not ready.
	rr := testutil.Serve(srv.Handler(), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	srv.poller.Start(ctx)
	deadline := time.Now().Add(time.Second)
	for !srv.poller.Status().IsReady() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for first flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
	rr = testutil.Serve(srv.Handler(), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	cancel()
	if err := srv.poller.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestRunShutsDownEverything(t *testing.T) {
	httpSrv := &testutil.StubHTTPServer{AddrVal: ":0"}
	plr := &testutil.StubPoller{}
	drain := &stubDrainer{}
	closer := &stubCloser{}
	logger, buf := testutil.NewBufferLogger()

	srv := newServerWithDeps(config.Config{}, logger, httpSrv, plr)
	srv.clients = drain
	srv.resources = closer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, cancel)

	if plr.StartCalls != 1 || plr.StopCalls != 1 {
		t.Fatalf("expected poller started and stopped once, got %d/%d", plr.StartCalls, plr.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected one http shutdown, got %d", httpSrv.ShutdownCalls)
	}
	if drain.calls.Load() != 1 {
		t.Fatalf("expected background deliveries drained")
	}
	if closer.calls != 1 {
		t.Fatalf("expected storage closed")
	}
	if !strings.Contains(buf.String(), "shutdown complete") {
		t.Fatalf("expected shutdown log, got %s", buf.String())
	}
}

func TestRunWithoutPoller(t *testing.T) {
	httpSrv := &testutil.ExitingHTTPServer{Err: http.ErrServerClosed}
	srv := newServerWithDeps(config.Config{}, nil, httpSrv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv.Run(ctx, cancel)

	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected shutdown, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownLogsFailures(t *testing.T) {
	orig := shutdownTimeout
	shutdownTimeout = 20 * time.Millisecond
	t.Cleanup(func() { shutdownTimeout = orig })

	httpSrv := &testutil.BlockingHTTPServer{AddrVal: ":0", Unblock: make(chan struct{})}
	plr := &testutil.StubPoller{Err: errors.New("stuck")}
	logger, buf := testutil.NewBufferLogger()

	srv := newServerWithDeps(config.Config{}, logger, httpSrv, plr)
	srv.clients = &stubDrainer{err: context.DeadlineExceeded}
	srv.gracefulShutdown()

	out := buf.String()
	for _, want := range []string{"graceful shutdown failed", "failed to stop poller", "background deliveries did not drain"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in logs, got %s", want, out)
		}
	}
}

func TestLaunchServerStopsOnListenError(t *testing.T) {
	stopped := make(chan struct{})
	launchServer("http", &testutil.ExitingHTTPServer{Err: errors.New("listen failure")}, nil, func(error) { close(stopped) })

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("expected stop callback on listen failure")
	}
}

func TestBuildMetricsFallsBackOnSetupFailure(t *testing.T) {
	orig := metricsSetup
	t.Cleanup(func() { metricsSetup = orig })
	metricsSetup = func(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return nil, nil, nil, errors.New("fail")
	}

	rec, srv, stop := buildMetrics(config.Config{Metrics: config.MetricsConfig{Enabled: true}}, nil, nil)
	if rec == nil {
		t.Fatal("expected fallback recorder")
	}
	if srv != nil || stop != nil {
		t.Fatal("expected no metrics server after setup failure")
	}
}

func TestBuildMetricsUsesInjectedRecorder(t *testing.T) {
	injected := metrics.NewRecorder()
	rec, srv, stop := buildMetrics(config.Config{}, nil, injected)
	if rec != injected || srv != nil || stop != nil {
		t.Fatal("expected injected recorder returned untouched")
	}
}

func TestBuildMetricsServesWhenEnabled(t *testing.T) {
	orig := metricsSetup
	t.Cleanup(func() { metricsSetup = orig })
	metricsSetup = func(ctx context.Context, cfg metrics.TelemetryConfig) (*metrics.Recorder, http.Handler, func(context.Context) error, error) {
		return metrics.NewRecorder(), http.NewServeMux(), func(context.Context) error { return nil }, nil
	}

	_, srv, stop := buildMetrics(config.Config{Metrics: config.MetricsConfig{Enabled: true, Port: "9999"}}, nil, nil)
	if srv == nil || srv.Addr() != ":9999" {
		t.Fatalf("expected metrics server on :9999, got %v", srv)
	}
	if stop == nil {
		t.Fatal("expected shutdown func")
	}
}

func TestServerStatusComesFromPoller(t *testing.T) {
	plr := &testutil.StubPoller{StatusVal: poller.Status{ConsecutiveFailures: 5}}
	handler := buildHTTPServer(config.Config{Port: "0"}, nil, nil, nil, plr).Handler()

	rr := testutil.Serve(handler, http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}
