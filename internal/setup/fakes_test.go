package setup

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/users"
)

type fakeUsers struct {
	users.Repository

	mu        sync.Mutex
	created   []*models.User
	exists    bool
	existsErr error
	createErr error
}

func (f *fakeUsers) ExistsByUsernameOrEmail(_ context.Context, _, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	return u, nil
}

type fakeManager struct {
	repomanager.RepositoryManager

	users         *fakeUsers
	migrated      int
	migrationsErr error
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated++
	return m.migrationsErr
}

func (m *fakeManager) Users(dbx.DBTX) users.Repository { return m.users }
