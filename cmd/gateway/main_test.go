package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bookservice/pkg/api"
	"bookservice/pkg/circuitbreaker"
	"bookservice/pkg/library"
	"bookservice/pkg/queue"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGateway(catalogURL string, maxFailures int) *gateway {
	return &gateway{
		catalogURL:    catalogURL,
		client:        &http.Client{Timeout: time.Second},
		breaker:       circuitbreaker.New(maxFailures, time.Minute),
		retries:       queue.New(),
		maxAttempts:   3,
		retryInterval: time.Second,
		logger:        zap.NewNop(),
	}
}

// deadURL returns the address of a server that is no longer listening.
func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func serve(g *gateway, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.router().ServeHTTP(w, req)
	return w
}

func TestProxyForwardsRequest(t *testing.T) {
	var gotMethod, gotURI, gotBody, gotRequestID string
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotURI = r.URL.RequestURI()
		gotRequestID = r.Header.Get("X-Request-Id")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":6,"name":"Poetry"}`))
	}))
	defer catalog.Close()

	g := newGateway(catalog.URL, 3)
	w := serve(g, "POST", "/api/v1/genres?x=1", `{"id":6,"name":"Poetry"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":6,"name":"Poetry"}`, w.Body.String())
	assert.Equal(t, "POST", gotMethod)
	assert.Equal(t, "/api/v1/genres?x=1", gotURI)
	assert.Equal(t, `{"id":6,"name":"Poetry"}`, gotBody)
	assert.Equal(t, w.Header().Get("X-Request-Id"), gotRequestID)
}

func TestProxyPassesClientErrorsThrough(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"book 9: not found"}`))
	}))
	defer catalog.Close()

	g := newGateway(catalog.URL, 0)
	for i := 0; i < 3; i++ {
		w := serve(g, "GET", "/api/v1/books/9", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	assert.Equal(t, circuitbreaker.StateClosed, g.breaker.State())
}

func TestCatalogUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		queued int
	}{
		{name: "read", method: "GET", path: "/api/v1/books", status: http.StatusServiceUnavailable},
		{name: "create", method: "POST", path: "/api/v1/books", status: http.StatusServiceUnavailable},
		{name: "delete", method: "DELETE", path: "/api/v1/genres/1", status: http.StatusServiceUnavailable},
		{name: "detach", method: "PUT", path: "/api/v1/books/author-remove/1", status: http.StatusServiceUnavailable},
		{name: "attach author", method: "PUT", path: "/api/v1/books/author-update/3/1", status: http.StatusAccepted, queued: 1},
		{name: "attach genre", method: "PUT", path: "/api/v1/books/genre-update/3/1", status: http.StatusAccepted, queued: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(deadURL(), 3)
			w := serve(g, tt.method, tt.path, "")

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.queued, g.retries.Len())
			if tt.status == http.StatusServiceUnavailable {
				assert.JSONEq(t, `{"message":"Catalog Service unavailable"}`, w.Body.String())
			}
		})
	}
}

func TestOpenBreakerSkipsCatalog(t *testing.T) {
	var hits int32
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer catalog.Close()

	g := newGateway(catalog.URL, 0)

	w := serve(g, "GET", "/api/v1/books", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, circuitbreaker.StateOpen, g.breaker.State())

	w = serve(g, "GET", "/api/v1/books", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestReplayDeliversQueuedAttach(t *testing.T) {
	var delivered int32
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/api/v1/books/author-update/3/1" {
			atomic.AddInt32(&delivered, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer catalog.Close()

	g := newGateway(catalog.URL, 3)
	job := queue.NewJob(http.MethodPut, "/api/v1/books/author-update/3/1", nil, nil, 3)
	now := time.Now()
	g.schedule(job, now)
	require.Equal(t, 1, g.retries.Len())

	g.replayDue(context.Background(), now)
	assert.Equal(t, int32(0), atomic.LoadInt32(&delivered))

	g.replayDue(context.Background(), now.Add(time.Second))
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))
	assert.Equal(t, 0, g.retries.Len())
}

func TestReplayGivesUpAfterMaxAttempts(t *testing.T) {
	g := newGateway(deadURL(), 100)
	job := queue.NewJob(http.MethodPut, "/api/v1/books/genre-update/3/1", nil, nil, 3)
	now := time.Now()
	g.schedule(job, now)

	now = now.Add(time.Second)
	g.replayDue(context.Background(), now)
	require.Equal(t, 1, g.retries.Len())
	assert.Equal(t, 2, g.retries.Jobs()[0].Attempts)
	assert.Equal(t, now.Add(2*time.Second), g.retries.Jobs()[0].NextAttempt)

	g.replayDue(context.Background(), now.Add(2*time.Second))
	assert.Equal(t, 0, g.retries.Len())
}

func TestIsReplayable(t *testing.T) {
	assert.True(t, isReplayable("PUT", "/api/v1/books/author-update/1/2"))
	assert.True(t, isReplayable("PUT", "/api/v1/books/genre-update/1/2"))
	assert.False(t, isReplayable("GET", "/api/v1/books/author-update/1/2"))
	assert.False(t, isReplayable("PUT", "/api/v1/books/1"))
}

func TestRetryQueueEndpoint(t *testing.T) {
	g := newGateway(deadURL(), 3)
	serve(g, "PUT", "/api/v1/books/author-update/3/1", "")

	w := serve(g, "GET", "/manage/retry-queue", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"size":1`)
	assert.Contains(t, w.Body.String(), "author-update/3/1")
}

func TestCatalogRateLimitsEachClient(t *testing.T) {
	limiter := api.NewRateLimiter(0.001, 2)
	defer limiter.Stop()

	router := api.NewRouter(api.NewHandler(library.NewMemory(library.DefaultData()), zap.NewNop()),
		zap.NewNop(), limiter, nil)
	require.NoError(t, router.SetTrustedProxies([]string{"127.0.0.1", "::1"}))
	catalog := httptest.NewServer(router)
	defer catalog.Close()

	g := newGateway(catalog.URL, 3)
	send := func(remoteAddr, forwardedFor string) int {
		req := httptest.NewRequest("GET", "/api/v1/genres", nil)
		req.RemoteAddr = remoteAddr
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		w := httptest.NewRecorder()
		g.router().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:4000", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:4001", ""))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:4002", ""))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:4003", "10.0.0.9"))

	assert.Equal(t, http.StatusOK, send("10.0.0.2:4000", ""))
	assert.Equal(t, http.StatusOK, send("10.0.0.3:4000", ""))
}

func TestForwardHeaderAppendsPeer(t *testing.T) {
	in := http.Header{}
	in.Set("Content-Type", "application/json")
	in.Set("Authorization", "Bearer x")
	in.Add("X-Forwarded-For", "192.0.2.1")

	out := forwardHeader(in, "req-1", "10.0.0.7", "10.0.0.7")

	assert.Equal(t, "application/json", out.Get("Content-Type"))
	assert.Empty(t, out.Get("Authorization"))
	assert.Equal(t, "req-1", out.Get("X-Request-Id"))
	assert.Equal(t, "192.0.2.1, 10.0.0.7", out.Get("X-Forwarded-For"))
	assert.Equal(t, "10.0.0.7", out.Get("X-Real-IP"))
}

func TestCanceledClientIsNotQueued(t *testing.T) {
	g := newGateway(deadURL(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest("PUT", "/api/v1/books/author-update/3/1", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	g.router().ServeHTTP(w, req)

	assert.Equal(t, 0, g.retries.Len())
	assert.Equal(t, circuitbreaker.StateClosed, g.breaker.State())
}
