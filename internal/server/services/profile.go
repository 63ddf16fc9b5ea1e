package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
)

const (
	MsgEmailTaken      = "Email already taken by another user"
	MsgProfileConflict = "Email or national ID already in use"
)

// ProfileService reads and edits the personal information of the
// authenticated user.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ProfileService {
	return &ProfileService{db: db, repomanager: m, log: log}
}

// Get returns the active user userID.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetActiveByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	return user, nil
}

// Update overwrites the personal fields of userID. The email must not belong
// to another active user.
func (s *ProfileService) Update(ctx context.Context, userID int64, req ProfileUpdateRequest, meta models.SessionMetadata) error {
	if err := req.Validate(); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	taken, err := repo.EmailTakenByOther(ctx, req.Email, userID)
	if err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return common.NewUserError(common.ErrConflict, MsgEmailTaken)
	}

	err = repo.UpdateProfile(ctx, userID, models.ProfileUpdate{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		City:       req.City,
		Address:    req.Address,
		NationalID: optional(req.NationalID),
	})
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		return common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
	case dbx.IsUniqueViolation(err):
		return common.NewUserError(common.ErrConflict, MsgProfileConflict)
	default:
		return fmt.Errorf("error updating profile: %w", err)
	}

	recordActivity(ctx, s.db, s.repomanager, s.log, userID, models.ActionProfileUpdate, "User updated profile information", meta)
	return nil
}
