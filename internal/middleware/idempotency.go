package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"

	// IdempotencyReplayedHeader marks a response served from the cache
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	// IdempotencyRetention is how long a cached response is replayed
	IdempotencyRetention = 24 * time.Hour

	maxIdempotencyKeyLength = 255
)

// capturingWriter tees the response body so it can be cached
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// requestHash fingerprints the body and restores it for the handler
func requestHash(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the same route and user. Only POST requests are considered, only 2xx
// responses are stored, and a key reused with a different body is a
// conflict. Must run after authentication.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := logger.Ctx(ctx)
		requestID := apierror.GetRequestID(c)

		if len(key) > maxIdempotencyKeyLength {
			apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
				{Field: IdempotencyKeyHeader, Message: "must be at most 255 characters", Code: "too_long"},
			}))
			c.Abort()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			log.Warn("idempotency check without authenticated user")
			unauthorized(c)
			return
		}

		hash, err := requestHash(c)
		if err != nil {
			apierror.WriteProblem(c, apierror.NewBadRequestError(requestID, "Could not read request body", "Please try again."))
			c.Abort()
			return
		}

		scope := models.IdempotencyScope{
			Key:    key,
			Route:  c.Request.Method + " " + c.FullPath(),
			UserID: userID,
		}

		existing, err := repo.Get(ctx, scope, time.Now().Add(-IdempotencyRetention))
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			// Serve the request uncached rather than fail it
			log.Error("failed to check idempotency key", logger.Err(err), logger.String("key", key))
			c.Next()
			return
		case !existing.Matches(hash):
			apierror.WriteProblem(c, apierror.NewConflictError(requestID,
				"Idempotency-Key was already used with a different request body"))
			c.Abort()
			return
		default:
			log.Info("replaying idempotent response",
				logger.String("key", key),
				logger.String("route", scope.Route),
				logger.Int("status_code", existing.StatusCode),
			)
			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json; charset=utf-8", existing.ResponseBody)
			c.Abort()
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			return
		}
		rec := &models.IdempotencyKey{
			Key:          scope.Key,
			Route:        scope.Route,
			UserID:       scope.UserID,
			RequestHash:  &hash,
			ResponseBody: w.body.Bytes(),
			StatusCode:   status,
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.Store(ctx, rec); err != nil {
			log.Warn("failed to store idempotency key", logger.Err(err), logger.String("key", key))
		}
	}
}
