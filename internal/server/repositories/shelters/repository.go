// Package shelters declares the repository contract for shelter profiles.
package shelters

import (
	"context"

	"github.com/dmitrijs2005/petnest/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, shelter *models.Shelter) (*models.Shelter, error)
	// GetByUserID returns common.ErrorNotFound when the user has no shelter profile.
	GetByUserID(ctx context.Context, userID int64) (*models.Shelter, error)
}
