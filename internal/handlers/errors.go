package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
	"github.com/JonnyWalker81/innerlog/backend/internal/repository"
	"github.com/JonnyWalker81/innerlog/backend/internal/service"
)

// lockRetryAfter is the Retry-After hint when a streak lock could not be taken
const lockRetryAfter = 1

// writeError renders err as a problem response. Unexpected errors are logged
// with op and reported as 500 without detail.
func writeError(c *gin.Context, op string, err error) {
	requestID := apierror.GetRequestID(c)

	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		exhausted  *service.GracePeriodExhaustedError
		conflict   *service.ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validation):
		apierror.WriteProblem(c, validationProblem(requestID, validation))
	case errors.As(err, &notFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, notFound.Resource, notFound.ID))
	case errors.As(err, &exhausted):
		apierror.WriteProblem(c, apierror.NewGracePeriodExhaustedError(requestID, exhausted.Used, exhausted.Max, exhausted.Remaining, exhausted.ResetsOn))
	case errors.As(err, &conflict):
		logger.Ctx(c.Request.Context()).Warn(op+" conflicted", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, "The streak was updated concurrently, please retry"))
	case errors.Is(err, repository.ErrDuplicate):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, "A record with this ID already exists"))
	case errors.Is(err, lock.ErrNotAcquired), errors.Is(err, context.DeadlineExceeded):
		logger.Ctx(c.Request.Context()).Warn(op+" timed out", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewServiceUnavailableError(requestID, lockRetryAfter))
	default:
		logger.Ctx(c.Request.Context()).Error(op+" failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}

func validationProblem(requestID string, v *service.ValidationError) *apierror.ProblemDetails {
	if len(v.Fields) == 1 && v.Fields[0].Code == "future_timestamp" {
		return apierror.NewFutureTimestampError(requestID, v.Fields[0].Field)
	}
	fields := make([]apierror.FieldError, 0, len(v.Fields))
	for _, f := range v.Fields {
		fields = append(fields, apierror.FieldError{Field: f.Field, Message: f.Message, Code: f.Code})
	}
	problem := apierror.NewValidationError(requestID, fields)
	if len(fields) == 1 && fields[0].Code == "invalid_uuid" {
		problem.Type = apierror.TypeInvalidUUID
		problem.Title = apierror.TitleInvalidUUID
	}
	return problem
}

// currentUser returns the authenticated user id, writing a 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}
