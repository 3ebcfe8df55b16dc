package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/models"
	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

const idempotencyTable = "idempotency_keys"

// IdempotencyRepository caches responses of mutating requests
type IdempotencyRepository interface {
	// Get returns the record for scope created at or after notBefore, or
	// ErrNotFound.
	Get(ctx context.Context, scope models.IdempotencyScope, notBefore time.Time) (*models.IdempotencyKey, error)

	// Store saves rec. A second record for the same scope is ErrDuplicate.
	Store(ctx context.Context, rec *models.IdempotencyKey) error
}

type idempotencyRepository struct {
	client *supabase.Client
}

// NewIdempotencyRepository creates a Supabase-backed idempotency repository
func NewIdempotencyRepository(client *supabase.Client) IdempotencyRepository {
	return &idempotencyRepository{client: client}
}

func (r *idempotencyRepository) Get(ctx context.Context, scope models.IdempotencyScope, notBefore time.Time) (*models.IdempotencyKey, error) {
	query := map[string]interface{}{
		"key":     "eq." + scope.Key,
		"route":   "eq." + scope.Route,
		"user_id": "eq." + scope.UserID,
		"limit":   1,
	}
	addRange(query, "created_at", notBefore, time.Time{})

	body, err := r.client.Query(ctx, idempotencyTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", translate(err))
	}

	var rows []models.IdempotencyKey
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode idempotency key: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (r *idempotencyRepository) Store(ctx context.Context, rec *models.IdempotencyKey) error {
	if _, err := r.client.Insert(ctx, idempotencyTable, rec); err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", translate(err))
	}
	return nil
}
