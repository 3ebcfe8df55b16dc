package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository/memory"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

type fakeVerifier struct {
	tokens map[string]string
}

func (f fakeVerifier) VerifyToken(_ context.Context, token string) (*supabase.User, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &supabase.User{ID: id, Email: id + "@example.com"}, nil
}

func echoUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":     c.GetString("user_id"),
		"ctx_user_id": logger.UserIDFromContext(c.Request.Context()),
	})
}

func TestAuth(t *testing.T) {
	router := gin.New()
	router.Use(Auth(fakeVerifier{tokens: map[string]string{"good": "user-1"}}))
	router.GET("/me", echoUser)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := w.Header().Get("Content-Type"); ct != apierror.ContentTypeProblemJSON {
					t.Errorf("Content-Type = %q", ct)
				}
				return
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["user_id"] != "user-1" || body["ctx_user_id"] != "user-1" {
				t.Errorf("unexpected identity: %v", body)
			}
		})
	}
}

func TestHeaderAuth(t *testing.T) {
	router := gin.New()
	router.Use(HeaderAuth())
	router.GET("/me", echoUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(UserIDHeader, "user-2")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "user-2") {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without header = %d, want 401", w.Code)
	}
}

func TestLoggerRequestID(t *testing.T) {
	var buf bytes.Buffer
	cfg := logger.DefaultConfig()
	cfg.Output = &buf
	base, err := logger.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	router.Use(Logger(base))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, apierror.GetRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("echoed request id = %q", got)
	}
	if w.Body.String() != "req-123" {
		t.Errorf("request id in context = %q", w.Body.String())
	}
	if !strings.Contains(buf.String(), `"request_id":"req-123"`) || !strings.Contains(buf.String(), "request completed") {
		t.Errorf("log output missing request fields: %s", buf.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}
}

func TestIdempotencyReplay(t *testing.T) {
	var calls atomic.Int32
	router := gin.New()
	router.Use(HeaderAuth(), Idempotency(memory.NewIdempotencyStore()))
	router.POST("/checkins", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(http.StatusCreated, gin.H{"call": n})
	})
	router.POST("/fail", func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad"})
	})

	doBody := func(path, user, key, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(UserIDHeader, user)
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		router.ServeHTTP(w, req)
		return w
	}
	do := func(path, user, key string) *httptest.ResponseRecorder {
		return doBody(path, user, key, `{"emotion_type":"JOY"}`)
	}

	first := do("/checkins", "user-1", "k1")
	second := do("/checkins", "user-1", "k1")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body %s != %s", second.Body.String(), first.Body.String())
	}
	if second.Header().Get(IdempotencyReplayedHeader) != "true" {
		t.Error("expected replay header")
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls = %d, want 1", calls.Load())
	}

	// Keys are scoped per user
	do("/checkins", "user-2", "k1")
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}

	// Errors are not cached
	do("/fail", "user-1", "k2")
	do("/fail", "user-1", "k2")
	if calls.Load() != 4 {
		t.Errorf("handler calls = %d, want 4", calls.Load())
	}

	if w := do("/checkins", "user-1", strings.Repeat("x", 300)); w.Code != http.StatusBadRequest {
		t.Errorf("oversized key status = %d", w.Code)
	}

	// Same key, different payload
	if w := doBody("/checkins", "user-1", "k1", `{"emotion_type":"ANXIETY"}`); w.Code != http.StatusConflict {
		t.Errorf("reused key with new body status = %d, want 409", w.Code)
	}
	if calls.Load() != 4 {
		t.Errorf("handler calls = %d, want 4", calls.Load())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute, "test")
	defer limiter.Stop()

	router := gin.New()
	router.Use(HeaderAuth(), RateLimit(limiter))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(UserIDHeader, user)
		router.ServeHTTP(w, req)
		return w
	}

	do("user-1")
	do("user-1")
	w := do("user-1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if w.Header().Get("X-RateLimit-Limit") != "2" {
		t.Errorf("X-RateLimit-Limit = %q", w.Header().Get("X-RateLimit-Limit"))
	}

	if w := do("user-2"); w.Code != http.StatusOK {
		t.Errorf("other user status = %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	for _, production := range []bool{false, true} {
		router := gin.New()
		router.Use(SecurityHeaders(production))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("missing nosniff")
		}
		if hsts := w.Header().Get("Strict-Transport-Security") != ""; hsts != production {
			t.Errorf("HSTS present = %v in production=%v", hsts, production)
		}
	}
}
