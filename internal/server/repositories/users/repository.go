// Package users declares the repository contract for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/petnest/internal/server/models"
)

// Repository reads and writes account rows. Lookups that find nothing return
// common.ErrorNotFound.
type Repository interface {
	// Create inserts user and fills in ID and timestamps. A duplicate username,
	// email or national id surfaces as a wrapped pgconn unique violation.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// ExistsByUsernameOrEmail checks every user, active or not.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetActiveByID(ctx context.Context, id int64) (*models.User, error)

	// GetActiveByLogin matches identifier against username or email.
	GetActiveByLogin(ctx context.Context, identifier string) (*models.User, error)
	GetActiveByUsername(ctx context.Context, username string) (*models.User, error)
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)

	// GetActiveByIdentity requires username, email and phone to all match.
	GetActiveByIdentity(ctx context.Context, username, email, phone string) (*models.User, error)

	// EmailTakenByOther reports whether an active user other than userID owns email.
	EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) error
}
