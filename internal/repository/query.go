package repository

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonnyWalker81/innerlog/backend/pkg/supabase"
)

// addRange adds a PostgREST range filter on column to query. Zero bounds are
// left open.
func addRange(query map[string]interface{}, column string, start, end time.Time) {
	var parts []string
	if !start.IsZero() {
		parts = append(parts, fmt.Sprintf("%s.gte.%s", column, start.UTC().Format(time.RFC3339Nano)))
	}
	if !end.IsZero() {
		parts = append(parts, fmt.Sprintf("%s.lte.%s", column, end.UTC().Format(time.RFC3339Nano)))
	}
	if len(parts) > 0 {
		query["and"] = "(" + strings.Join(parts, ",") + ")"
	}
}

// translate maps supabase status errors onto repository errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case supabase.IsStatus(err, http.StatusConflict):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case supabase.IsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
