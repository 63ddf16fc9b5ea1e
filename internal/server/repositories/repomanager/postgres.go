// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/migrations"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/shelters"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Sessions returns a sessions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

// Shelters returns a shelters.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Shelters(db dbx.DBTX) shelters.Repository {
	return shelters.NewPostgresRepository(db)
}

// ActivityLogs returns an activitylogs.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) ActivityLogs(db dbx.DBTX) activitylogs.Repository {
	return activitylogs.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
