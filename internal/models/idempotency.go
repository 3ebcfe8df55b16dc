package models

import (
	"encoding/json"
	"time"
)

// IdempotencyScope identifies one cached response: the same key replayed by
// another user or on another route is a different entry.
type IdempotencyScope struct {
	Key    string
	Route  string
	UserID string
}

// IdempotencyKey is a cached 2xx response for a mutating request
type IdempotencyKey struct {
	ID           string          `json:"id"`
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	RequestHash  *string         `json:"request_hash,omitempty"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Scope returns the lookup scope of k
func (k IdempotencyKey) Scope() IdempotencyScope {
	return IdempotencyScope{Key: k.Key, Route: k.Route, UserID: k.UserID}
}

// Matches reports whether hash belongs to the request that produced k.
// Records stored without a hash match anything.
func (k IdempotencyKey) Matches(hash string) bool {
	return k.RequestHash == nil || *k.RequestHash == hash
}
