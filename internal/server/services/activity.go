package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
)

// recordActivity appends an audit entry. Failures are logged only; the
// change being audited has already been committed.
func recordActivity(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, log logging.Logger,
	userID int64, action models.ActivityAction, details string, meta models.SessionMetadata) {
	entry := &models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := m.ActivityLogs(db).Create(ctx, entry); err != nil {
		log.Warn(ctx, "failed to record activity", "user_id", userID, "action", string(action), "error", err)
	}
}
