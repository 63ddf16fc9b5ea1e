package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/metrics"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
)

// Client-facing messages that tests and handlers rely on.
const (
	MsgDuplicateAccount     = "Username or email already exists"
	MsgInvalidCredentials   = "Invalid credentials"
	MsgWrongCurrentPassword = "Current password is incorrect"
	MsgIdentityMismatch     = "Invalid credentials. Please check your details."
	MsgUserNotFound         = "User not found"
	MsgUserNotFoundInactive = "User not found or inactive"
	MsgPasswordProcessing   = "Password processing error"
)

// dummyPassword is hashed once at startup; unknown-user logins verify
// against it so both failure paths pay for a bcrypt comparison.
const dummyPassword = "petnest-timing-equalizer"

// AuthResult is what register, login and check hand back to the transport.
type AuthResult struct {
	User        *models.User
	Shelter     *models.Shelter
	Token       string
	RedirectURL string
}

// UsernameLookup is the masked view returned by CheckUsername.
type UsernameLookup struct {
	Exists      bool
	UserID      int64
	Role        models.Role
	MaskedEmail string
	MaskedPhone string
	EmailHint   string
	PhoneHint   string
}

// EmailLookup is the masked view returned by GetUserByEmail.
type EmailLookup struct {
	Exists      bool
	UserID      int64
	Username    string
	Role        models.Role
	MaskedPhone string
	PhoneHint   string
}

// IdentityService implements registration, login, logout and the password
// flows on top of the users table and a SessionStore.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenIssuer
	sessions    SessionStore
	log         logging.Logger
	metrics     *metrics.Metrics
	dummyHash   string
}

// NewIdentityService wires the service. mtr may be nil.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer, sessions SessionStore, log logging.Logger, mtr *metrics.Metrics) *IdentityService {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return &IdentityService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		sessions:    sessions,
		log:         log,
		metrics:     mtr,
		dummyHash:   dummy,
	}
}

// Register validates req, creates the user (and shelter profile when the
// role is shelter and a shelter name is given) and logs the user in.
func (s *IdentityService) Register(ctx context.Context, req RegisterRequest, meta models.SessionMetadata) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role, _ := models.ParseRole(req.Role)

	exists, err := s.repomanager.Users(s.db).ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking existing users: %w", err)
	}
	if exists {
		s.metrics.AuthAttempt("register", "conflict")
		return nil, common.NewUserError(common.ErrConflict, MsgDuplicateAccount)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, common.NewUserError(common.ErrorInternal, MsgPasswordProcessing)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     req.FullName,
		Phone:        req.Phone,
		City:         req.City,
		Address:      req.Address,
		NationalID:   optional(req.NationalID),
		IsActive:     true,
	}
	var shelter *models.Shelter

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		if role != models.RoleShelter || req.ShelterName == "" {
			return nil
		}
		shelter = &models.Shelter{
			UserID:           user.ID,
			OrganizationName: req.ShelterName,
			LicenseNumber:    optional(req.License),
			ContactPerson:    req.FullName,
		}
		_, err := s.repomanager.Shelters(tx).Create(ctx, shelter)
		return err
	})
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			s.metrics.AuthAttempt("register", "conflict")
			return nil, common.NewUserError(common.ErrConflict, MsgDuplicateAccount)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.startSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthAttempt("register", "success")
	s.log.Info(ctx, "user registered", "user_id", user.ID, "role", string(role))

	return &AuthResult{User: user, Shelter: shelter, Token: token, RedirectURL: role.RedirectURL()}, nil
}

// Login authenticates an active user by username or email. Unknown users and
// wrong passwords fail identically.
func (s *IdentityService) Login(ctx context.Context, req LoginRequest, meta models.SessionMetadata) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetActiveByLogin(ctx, req.Identifier)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error loading user: %w", err)
		}
		s.hasher.Verify(req.Password, s.dummyHash)
		s.metrics.AuthAttempt("login", "failure")
		return nil, common.NewUserError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.metrics.AuthAttempt("login", "failure")
		return nil, common.NewUserError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}

	token, err := s.startSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthAttempt("login", "success")
	s.log.Info(ctx, "user logged in", "user_id", user.ID)

	return &AuthResult{
		User:        user,
		Shelter:     s.shelterFor(ctx, user),
		Token:       token,
		RedirectURL: user.Role.RedirectURL(),
	}, nil
}

// Check returns the account bound to an authenticated request.
func (s *IdentityService) Check(ctx context.Context, userID int64) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &AuthResult{
		User:        user,
		Shelter:     s.shelterFor(ctx, user),
		RedirectURL: user.Role.RedirectURL(),
	}, nil
}

// Logout revokes token. It never fails; store errors are logged.
func (s *IdentityService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.log.Error(ctx, "session delete failed on logout", "error", err)
	}
}

// ChangePassword replaces the password of userID after checking the current
// one. Existing sessions stay valid.
func (s *IdentityService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest, meta models.SessionMetadata) error {
	if err := req.Validate(); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		s.metrics.AuthAttempt("change_password", "failure")
		return common.NewUserError(common.ErrorUnauthorized, MsgWrongCurrentPassword)
	}

	if err := s.setPassword(ctx, userID, req.NewPassword); err != nil {
		return err
	}

	s.metrics.AuthAttempt("change_password", "success")
	recordActivity(ctx, s.db, s.repomanager, s.log, userID, models.ActionPasswordChange, "User changed password", meta)
	return nil
}

// VerifyIdentity is step one of password recovery: an active user must match
// username, email and phone exactly.
func (s *IdentityService) VerifyIdentity(ctx context.Context, req VerifyIdentityRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetActiveByIdentity(ctx, req.Username, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.metrics.AuthAttempt("verify_identity", "failure")
			return nil, common.NewUserError(common.ErrorUnauthorized, MsgIdentityMismatch)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	s.metrics.AuthAttempt("verify_identity", "success")
	return user, nil
}

// DirectReset is step two of password recovery. It trusts req.UserID: no
// proof links it to a prior VerifyIdentity call.
func (s *IdentityService) DirectReset(ctx context.Context, req DirectResetRequest, meta models.SessionMetadata) error {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := s.repomanager.Users(s.db).GetActiveByID(ctx, req.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewUserError(common.ErrorNotFound, MsgUserNotFoundInactive)
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	if err := s.setPassword(ctx, req.UserID, req.Password); err != nil {
		return err
	}

	s.log.Warn(ctx, "password reset without session", "user_id", req.UserID, "ip", meta.IPAddress)
	recordActivity(ctx, s.db, s.repomanager, s.log, req.UserID, models.ActionPasswordReset,
		"User reset password via forgot password flow", meta)
	return nil
}

func (s *IdentityService) CheckUsername(ctx context.Context, username string) (*UsernameLookup, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("Username is required")
	}

	user, err := s.repomanager.Users(s.db).GetActiveByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &UsernameLookup{Exists: false}, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &UsernameLookup{
		Exists:      true,
		UserID:      user.ID,
		Role:        user.Role,
		MaskedEmail: maskEmail(user.Email),
		MaskedPhone: maskPhone(user.Phone, "No phone"),
		EmailHint:   emailHint(user.Email),
		PhoneHint:   phoneHint(user.Phone),
	}, nil
}

func (s *IdentityService) GetUserByEmail(ctx context.Context, email string) (*EmailLookup, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("Email is required")
	}

	user, err := s.repomanager.Users(s.db).GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &EmailLookup{Exists: false}, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	return &EmailLookup{
		Exists:      true,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		MaskedPhone: maskPhone(user.Phone, "***"),
		PhoneHint:   phoneHint(user.Phone),
	}, nil
}

// GetUserRoles returns the roles of userID. Accounts hold exactly one.
func (s *IdentityService) GetUserRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	if userID <= 0 {
		return nil, invalid("User ID required")
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return []models.Role{user.Role}, nil
}

// startSession issues a token and records it. A failed insert is logged and
// the token is still returned; the auth gate will reject it.
func (s *IdentityService) startSession(ctx context.Context, userID int64, meta models.SessionMetadata) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	if err := s.sessions.Create(ctx, userID, token, meta); err != nil {
		s.log.Error(ctx, "session create failed", "user_id", userID, "error", err)
	}
	return token, nil
}

func (s *IdentityService) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "user_id", userID, "error", err)
		return common.NewUserError(common.ErrorInternal, MsgPasswordProcessing)
	}

	if err := s.repomanager.Users(s.db).UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewUserError(common.ErrorNotFound, MsgUserNotFound)
		}
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// shelterFor loads the shelter profile of shelter users. Lookup failures are
// logged and leave the profile out.
func (s *IdentityService) shelterFor(ctx context.Context, user *models.User) *models.Shelter {
	if user.Role != models.RoleShelter {
		return nil
	}
	shelter, err := s.repomanager.Shelters(s.db).GetByUserID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "shelter lookup failed", "user_id", user.ID, "error", err)
		}
		return nil
	}
	return shelter
}
