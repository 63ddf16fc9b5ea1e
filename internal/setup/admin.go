package setup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
)

var errAdminExists = errors.New("username or email already exists")

// AdminInput describes the administrator account to create.
type AdminInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// CreateAdmin inserts an active, verified admin account.
func CreateAdmin(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, in AdminInput) (*models.User, error) {
	repo := m.Users(db)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking existing users: %w", err)
	}
	if exists {
		return nil, errAdminExists
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	fullName := in.FullName
	if fullName == "" {
		fullName = "Administrator"
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		FullName:     fullName,
		IsVerified:   true,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating admin: %w", err)
	}
	return user, nil
}
