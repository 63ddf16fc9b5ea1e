// Package activitylogs stores the audit trail of account changes.
package activitylogs

import (
	"context"

	"github.com/dmitrijs2005/petnest/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
}
