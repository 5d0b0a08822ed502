package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/freshcart/internal/config"
	"github.com/polkiloo/freshcart/internal/domain/model"
	testhelpers "github.com/polkiloo/freshcart/internal/test"
	"github.com/polkiloo/freshcart/internal/worker"
)

func newTestPaymentPoller(facade worker.PaymentFacade) *worker.PaymentPoller {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return worker.NewPaymentPoller(facade, 10*time.Millisecond, time.Minute, 1, 1, logger)
}

func TestNewHTTPServerWrapsRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" || server.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("unexpected server settings: %q %s", server.Addr, server.ReadHeaderTimeout)
	}

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("expected instrumented handler to reach router, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestNewPaymentPollerUsesConfig(t *testing.T) {
	poller := newPaymentPoller(workerParams{
		Facade: &StoreFacade{},
		Config: &config.Config{PaymentPollInterval: 15 * time.Second, PaymentPollAge: time.Minute, MaxOrdersBatch: 3, WorkerPoolSize: 4},
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if poller == nil {
		t.Fatal("expected payment poller instance")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	facade := &testhelpers.WorkerFacadeStub{Batches: [][]model.Order{{{ID: 1, Number: "ORD1"}}}}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     server,
		Poller:     newTestPaymentPoller(facade),
		Config:     &config.Config{ShutdownTimeout: 100 * time.Millisecond},
	})

	if len(recorder.Hooks) != 2 {
		t.Fatalf("expected poller and server hooks, got %d", len(recorder.Hooks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- recorder.Stop(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stop failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected stop to finish")
	}
	select {
	case <-shutdowner.Called:
		t.Fatal("did not expect shutdown on graceful stop")
	default:
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     logger,
		Server:     &http.Server{Addr: "bad addr"},
		Poller:     newTestPaymentPoller(&testhelpers.WorkerFacadeStub{}),
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = recorder.Stop(context.Background())
}

func TestShutdownServerHonoursCallerDeadline(t *testing.T) {
	server := &http.Server{Addr: "127.0.0.1:0"}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdownServer(ctx, server, time.Nanosecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStoreFacadeSatisfiesWorkerView(t *testing.T) {
	var _ worker.PaymentFacade = (*StoreFacade)(nil)
}
