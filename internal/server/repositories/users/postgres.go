package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/server/models"
)

const selectUser = `SELECT id, username, email, password_hash, role, full_name, phone, city, address,
		 national_id, profile_picture, badge, is_verified, is_active, created_at, updated_at
		 FROM users
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash, role, full_name, phone, city, address,
		 national_id, is_verified, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, string(user.Role), user.FullName, user.Phone,
		user.City, user.Address, user.NationalID, user.IsVerified, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
		 `

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *PostgresRepository) GetActiveByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1 AND is_active = TRUE`, id)
}

func (r *PostgresRepository) GetActiveByLogin(ctx context.Context, identifier string) (*models.User, error) {
	return r.getOne(ctx, `WHERE (email = $1 OR username = $1) AND is_active = TRUE`, identifier)
}

func (r *PostgresRepository) GetActiveByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `WHERE username = $1 AND is_active = TRUE`, username)
}

func (r *PostgresRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1 AND is_active = TRUE`, email)
}

func (r *PostgresRepository) GetActiveByIdentity(ctx context.Context, username, email, phone string) (*models.User, error) {
	return r.getOne(ctx, `WHERE username = $1 AND email = $2 AND phone = $3 AND is_active = TRUE`, username, email, phone)
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	user := &models.User{}
	var role string

	err := r.db.QueryRowContext(ctx, selectUser+where, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &role, &user.FullName, &user.Phone,
		&user.City, &user.Address, &user.NationalID, &user.ProfilePicture, &user.Badge,
		&user.IsVerified, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	return user, nil
}

func (r *PostgresRepository) EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2 AND is_active = TRUE)
		 `

	var taken bool
	if err := r.db.QueryRowContext(ctx, query, email, userID).Scan(&taken); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return taken, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $1, updated_at = now()
		 WHERE id = $2
		 `

	return r.execOne(ctx, query, passwordHash, id)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, update models.ProfileUpdate) error {
	query :=
		`UPDATE users SET full_name = $1, email = $2, phone = $3, city = $4, address = $5,
		 national_id = $6, updated_at = now()
		 WHERE id = $7
		 `

	return r.execOne(ctx, query,
		update.FullName, update.Email, update.Phone, update.City, update.Address, update.NationalID, id)
}

// execOne runs an UPDATE that must touch exactly one row.
func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
