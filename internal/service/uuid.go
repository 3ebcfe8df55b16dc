package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// maxClockSkew is how far ahead of the server clock a client supplied id or
// timestamp may be
const maxClockSkew = time.Minute

// NewID returns a fresh UUIDv7 string. Events and check-ins sort by id in
// creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// idTime returns the creation time embedded in a UUIDv7
func idTime(id uuid.UUID) time.Time {
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec)
}

// resolveID accepts a client supplied UUIDv7 no more than maxClockSkew ahead
// of now, or generates one when the client sent none.
func resolveID(id *string, now time.Time) (string, *FieldError) {
	if id == nil || *id == "" {
		return NewID(), nil
	}

	parsed, err := uuid.Parse(*id)
	if err != nil {
		return "", &FieldError{Field: "id", Code: "invalid_uuid", Message: "must be a valid UUID"}
	}
	if parsed.Version() != 7 {
		return "", &FieldError{Field: "id", Code: "invalid_uuid",
			Message: fmt.Sprintf("must be a version 7 UUID, got version %d", parsed.Version())}
	}
	if ts := idTime(parsed); ts.After(now.Add(maxClockSkew)) {
		return "", &FieldError{Field: "id", Code: "future_timestamp",
			Message: fmt.Sprintf("embedded timestamp %s is in the future", ts.UTC().Format(time.RFC3339))}
	}
	return parsed.String(), nil
}
