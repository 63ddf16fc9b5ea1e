package activitylogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (user_id, action, details, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.UserID, string(entry.Action), entry.Details, entry.IPAddress, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
