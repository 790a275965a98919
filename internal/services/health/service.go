// Package health reports process liveness and database reachability.
package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	db *sql.DB
}

// NewService constructs a health service. db may be nil when the app runs on
// in-memory repositories.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Status returns a health payload including database reachability.
func (s *Service) Status(ctx context.Context) map[string]any {
	payload := map[string]any{"ok": true}
	if s.db == nil {
		payload["database"] = "not_configured"
		return payload
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		payload["database"] = "down"
		return payload
	}
	payload["database"] = "up"
	return payload
}
