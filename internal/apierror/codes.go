package apierror

import "net/http"

// Problem type URIs, used as the "type" member of a response
const (
	TypeValidation           = "urn:innerlog:error:validation"
	TypeBadRequest           = "urn:innerlog:error:bad_request"
	TypeInvalidUUID          = "urn:innerlog:error:invalid_uuid"
	TypeFutureTimestamp      = "urn:innerlog:error:future_timestamp"
	TypeUnauthorized         = "urn:innerlog:error:unauthorized"
	TypeNotFound             = "urn:innerlog:error:not_found"
	TypeConflict             = "urn:innerlog:error:conflict"
	TypeGracePeriodExhausted = "urn:innerlog:error:grace_period_exhausted"
	TypeRateLimit            = "urn:innerlog:error:rate_limit"
	TypeInternal             = "urn:innerlog:error:internal"
	TypeUnavailable          = "urn:innerlog:error:unavailable"
)

// Human-readable summaries for each type
const (
	TitleValidation           = "Validation Error"
	TitleBadRequest           = "Bad Request"
	TitleInvalidUUID          = "Invalid UUID Format"
	TitleFutureTimestamp      = "Future Timestamp Not Allowed"
	TitleUnauthorized         = "Authentication Required"
	TitleNotFound             = "Resource Not Found"
	TitleConflict             = "Resource Conflict"
	TitleGracePeriodExhausted = "Grace Periods Exhausted"
	TitleRateLimit            = "Rate Limit Exceeded"
	TitleInternal             = "Internal Server Error"
	TitleUnavailable          = "Service Unavailable"
)

// kind is the fixed part of a problem type
type kind struct {
	title       string
	status      int
	userMessage string
}

var kinds = map[string]kind{
	TypeValidation:           {TitleValidation, http.StatusBadRequest, "Please check your input and try again"},
	TypeBadRequest:           {TitleBadRequest, http.StatusBadRequest, "The request could not be understood"},
	TypeInvalidUUID:          {TitleInvalidUUID, http.StatusBadRequest, "Invalid identifier format"},
	TypeFutureTimestamp:      {TitleFutureTimestamp, http.StatusBadRequest, "The timestamp is too far in the future"},
	TypeUnauthorized:         {TitleUnauthorized, http.StatusUnauthorized, "Please sign in to continue"},
	TypeNotFound:             {TitleNotFound, http.StatusNotFound, "The requested item could not be found"},
	TypeConflict:             {TitleConflict, http.StatusConflict, "This action conflicts with existing data"},
	TypeGracePeriodExhausted: {TitleGracePeriodExhausted, http.StatusConflict, "You have no grace periods left this month"},
	TypeRateLimit:            {TitleRateLimit, http.StatusTooManyRequests, "Too many requests. Please wait before trying again."},
	TypeInternal:             {TitleInternal, http.StatusInternalServerError, "Something went wrong. Please try again later."},
	TypeUnavailable:          {TitleUnavailable, http.StatusServiceUnavailable, "Service is temporarily unavailable. Please try again later."},
}
