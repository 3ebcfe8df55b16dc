package apierror

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the MIME type for RFC 9457 Problem Details.
const ContentTypeProblemJSON = "application/problem+json"

// WriteProblem renders problem with its status, setting Retry-After when the
// problem carries one.
func WriteProblem(c *gin.Context, problem *ProblemDetails) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	if problem.RetryAfter != nil {
		c.Header("Retry-After", strconv.Itoa(*problem.RetryAfter))
	}
	c.JSON(problem.Status, problem)
}

// GetRequestID returns the request id set by the logging middleware, falling
// back to the raw X-Request-ID header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// New builds a problem of the given type. Unknown types are reported as
// internal errors so a typo never leaks a 200.
func New(problemType, requestID, detail string) *ProblemDetails {
	k, ok := kinds[problemType]
	if !ok {
		problemType, k = TypeInternal, kinds[TypeInternal]
	}
	return &ProblemDetails{
		Type:        problemType,
		Title:       k.title,
		Status:      k.status,
		Detail:      detail,
		RequestID:   requestID,
		UserMessage: k.userMessage,
	}
}

func (p *ProblemDetails) withFields(fields ...FieldError) *ProblemDetails {
	p.Errors = fields
	return p
}

func (p *ProblemDetails) withRetry(seconds int) *ProblemDetails {
	p.RetryAfter = &seconds
	return p
}

// NewValidationError reports every failing field at once (400).
func NewValidationError(requestID string, errors []FieldError) *ProblemDetails {
	return New(TypeValidation, requestID, "One or more fields failed validation").withFields(errors...)
}

// NewBadRequestError reports a malformed request (400).
func NewBadRequestError(requestID, detail, userMessage string) *ProblemDetails {
	p := New(TypeBadRequest, requestID, detail)
	if userMessage != "" {
		p.UserMessage = userMessage
	}
	return p
}

// NewInvalidUUIDError reports an identifier that is not a UUID (400).
func NewInvalidUUIDError(requestID, field, value string) *ProblemDetails {
	return New(TypeInvalidUUID, requestID, fmt.Sprintf("Invalid UUID format for field '%s': '%s'", field, value)).
		withFields(FieldError{Field: field, Message: "must be a valid UUID", Code: "invalid_uuid"})
}

// NewFutureTimestampError reports a timestamp or date after the present (400).
func NewFutureTimestampError(requestID, field string) *ProblemDetails {
	return New(TypeFutureTimestamp, requestID, fmt.Sprintf("Field '%s' is in the future", field)).
		withFields(FieldError{Field: field, Message: "must not be in the future", Code: "future_timestamp"})
}

// NewUnauthorizedError reports a missing or rejected credential (401).
func NewUnauthorizedError(requestID string) *ProblemDetails {
	p := New(TypeUnauthorized, requestID, "Authentication is required to access this resource")
	p.Action = "authenticate"
	return p
}

// NewNotFoundError reports a missing resource (404).
func NewNotFoundError(requestID, resource, id string) *ProblemDetails {
	p := New(TypeNotFound, requestID, fmt.Sprintf("%s with ID '%s' was not found", resource, id))
	p.UserMessage = fmt.Sprintf("The requested %s could not be found", resource)
	return p
}

// NewConflictError reports a write that lost against existing data (409).
func NewConflictError(requestID, detail string) *ProblemDetails {
	return New(TypeConflict, requestID, detail)
}

// NewGracePeriodExhaustedError reports a grace request made after the
// monthly allowance is spent (409). resetsOn may be nil.
func NewGracePeriodExhaustedError(requestID string, used, max, remaining int, resetsOn *time.Time) *ProblemDetails {
	p := New(TypeGracePeriodExhausted, requestID, fmt.Sprintf("All %d grace periods for this month have been used", max))
	p.Context = map[string]interface{}{
		"used":      used,
		"max":       max,
		"remaining": remaining,
	}
	if resetsOn != nil {
		p.Context["resets_on"] = resetsOn.Format(time.DateOnly)
	}
	return p
}

// NewRateLimitError reports a throttled client (429).
func NewRateLimitError(requestID string, retryAfter int) *ProblemDetails {
	return New(TypeRateLimit, requestID, fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds", retryAfter)).
		withRetry(retryAfter)
}

// NewInternalError hides the cause from the client (500). Log the real
// error before returning this.
func NewInternalError(requestID string) *ProblemDetails {
	return New(TypeInternal, requestID, "An unexpected error occurred")
}

// NewServiceUnavailableError reports a dependency that is temporarily down,
// such as a held streak lock (503).
func NewServiceUnavailableError(requestID string, retryAfter int) *ProblemDetails {
	return New(TypeUnavailable, requestID, "The service is temporarily unavailable").withRetry(retryAfter)
}
