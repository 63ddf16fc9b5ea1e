// Package sessions declares the repository contract for server-side login
// sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/petnest/internal/server/models"
)

// Repository stores sessions keyed by their token.
type Repository interface {
	// Create inserts session as is; ExpiresAt is set by the caller.
	Create(ctx context.Context, session *models.Session) error

	// FindActive returns the session for token only if it expires after now.
	// Absent or expired rows yield common.ErrorNotFound.
	FindActive(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// Delete removes the session for token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every session of userID and returns the removed tokens.
	DeleteByUser(ctx context.Context, userID int64) ([]string, error)

	// DeleteExpired removes sessions whose expiry is at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
