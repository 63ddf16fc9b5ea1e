package shelters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, shelter *models.Shelter) (*models.Shelter, error) {
	query :=
		`INSERT INTO shelters (user_id, organization_name, license_number, contact_person)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_approved, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		shelter.UserID, shelter.OrganizationName, shelter.LicenseNumber, shelter.ContactPerson,
	).Scan(&shelter.ID, &shelter.IsApproved, &shelter.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return shelter, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID int64) (*models.Shelter, error) {
	query :=
		`SELECT id, user_id, organization_name, license_number, contact_person, is_approved, created_at
		 FROM shelters
		 WHERE user_id = $1
		 `

	s := &models.Shelter{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.ID, &s.UserID, &s.OrganizationName, &s.LicenseNumber, &s.ContactPerson, &s.IsApproved, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}
