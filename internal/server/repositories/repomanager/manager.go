package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/shelters"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Shelters(db dbx.DBTX) shelters.Repository
	ActivityLogs(db dbx.DBTX) activitylogs.Repository
}
