package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookservice/pkg/api"
	"bookservice/pkg/circuitbreaker"
	"bookservice/pkg/queue"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxRetryDelay = 5 * time.Minute

var errUpstream = errors.New("catalog service error")

// replayable lists the writes that are safe to repeat later.
var replayable = []string{
	"/api/v1/books/author-update/",
	"/api/v1/books/genre-update/",
}

type upstreamResponse struct {
	status      int
	contentType string
	body        []byte
}

type gateway struct {
	catalogURL     string
	client         *http.Client
	breaker        *circuitbreaker.CircuitBreaker
	retries        *queue.Queue
	maxAttempts    int
	retryInterval  time.Duration
	trustedProxies []string // peers whose X-Forwarded-For is believed
	logger         *zap.Logger
}

func (g *gateway) router() *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(g.trustedProxies); err != nil {
		g.logger.Warn("ignoring trusted proxies", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(api.RequestID(), api.Logger(g.logger), api.Recovery(g.logger))

	r.Any("/api/v1/*path", g.proxy)
	r.GET("/manage/health", healthCheck)
	r.GET("/manage/retry-queue", g.retryQueue)
	return r
}

func (g *gateway) proxy(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	method := c.Request.Method
	uri := c.Request.URL.RequestURI()
	header := forwardHeader(c.Request.Header, api.RequestIDFrom(c), c.RemoteIP(), c.ClientIP())

	resp, err := g.call(c.Request.Context(), method, uri, header, body)
	if resp != nil {
		c.Data(resp.status, resp.contentType, resp.body)
		return
	}
	if errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil {
		g.logger.Debug("client went away", zap.String("method", method), zap.String("uri", uri))
		c.Abort()
		return
	}

	g.logger.Warn("catalog service unavailable",
		zap.String("method", method),
		zap.String("uri", uri),
		zap.String("breaker", g.breaker.State().String()),
		zap.Error(err))

	if isReplayable(method, c.Request.URL.Path) {
		job := queue.NewJob(method, uri, header, body, g.maxAttempts)
		g.schedule(job, time.Now())
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "id": job.ID})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Catalog Service unavailable"})
}

// call forwards one request through the breaker. A nil response means the
// catalog could not answer at all.
func (g *gateway) call(ctx context.Context, method, uri string, header http.Header, body []byte) (*upstreamResponse, error) {
	var resp *upstreamResponse
	err := g.breaker.Execute(func() error {
		r, err := g.forward(ctx, method, uri, header, body)
		if err != nil {
			return err
		}
		resp = r
		if r.status >= http.StatusInternalServerError {
			return errUpstream
		}
		return nil
	})
	return resp, err
}

func (g *gateway) forward(ctx context.Context, method, uri string, header http.Header, body []byte) (*upstreamResponse, error) {
	request, err := http.NewRequestWithContext(ctx, method, g.catalogURL+uri, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to make a request: %w", err)
	}
	if header != nil {
		request.Header = header.Clone()
	}

	response, err := g.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return &upstreamResponse{status: response.StatusCode, contentType: contentType, body: data}, nil
}

// schedule counts a failed attempt and queues the job for its next try,
// or drops it once attempts are used up.
func (g *gateway) schedule(job *queue.Job, now time.Time) {
	job.Attempts++
	if job.Exhausted() {
		g.logger.Error("retry attempts exhausted, dropping request",
			zap.String("job_id", job.ID),
			zap.String("method", job.Method),
			zap.String("uri", job.Path),
			zap.Int("attempts", job.Attempts))
		return
	}
	job.NextAttempt = now.Add(queue.Backoff(g.retryInterval, maxRetryDelay, job.Attempts))
	g.retries.Push(job)
}

// runRetries replays due jobs until ctx is done.
func (g *gateway) runRetries(ctx context.Context) {
	ticker := time.NewTicker(g.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.replayDue(ctx, now)
		}
	}
}

func (g *gateway) replayDue(ctx context.Context, now time.Time) {
	for job := g.retries.PopDue(now); job != nil; job = g.retries.PopDue(now) {
		resp, err := g.call(ctx, job.Method, job.Path, job.Header, job.Body)
		if resp == nil || resp.status >= http.StatusInternalServerError {
			g.logger.Warn("retry failed",
				zap.String("job_id", job.ID),
				zap.Int("attempt", job.Attempts+1),
				zap.Error(err))
			g.schedule(job, now)
			continue
		}
		g.logger.Info("retry delivered",
			zap.String("job_id", job.ID),
			zap.String("uri", job.Path),
			zap.Int("status", resp.status))
	}
}

func (g *gateway) retryQueue(c *gin.Context) {
	jobs := g.retries.Jobs()
	items := make([]gin.H, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, gin.H{
			"id":          job.ID,
			"method":      job.Method,
			"uri":         job.Path,
			"attempts":    job.Attempts,
			"nextAttempt": job.NextAttempt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"size": len(items), "items": items})
}

func isReplayable(method, path string) bool {
	if method != http.MethodPut {
		return false
	}
	for _, prefix := range replayable {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// forwardHeader picks the headers the catalog needs. The peer address is
// appended to X-Forwarded-For so the catalog can rate limit per client.
func forwardHeader(in http.Header, requestID, peerIP, clientIP string) http.Header {
	out := http.Header{}
	for _, key := range []string{"Content-Type", "Accept"} {
		if v := in.Get(key); v != "" {
			out.Set(key, v)
		}
	}
	if requestID != "" {
		out.Set("X-Request-Id", requestID)
	}

	forwarded := in.Values("X-Forwarded-For")
	if peerIP != "" {
		forwarded = append(forwarded, peerIP)
	}
	if len(forwarded) > 0 {
		out.Set("X-Forwarded-For", strings.Join(forwarded, ", "))
	}
	if clientIP != "" {
		out.Set("X-Real-IP", clientIP)
	}
	return out
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
