package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/activitylogs"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/shelters"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

var errUnique = &pgconn.PgError{Code: "23505"}

// memStore is an in-memory stand-in for the four tables. Fault fields make
// the matching repository call fail.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*models.User
	sessions map[string]*models.Session
	shelters map[int64]*models.Shelter
	activity []models.ActivityLog

	createUserErr    error
	existsErr        error
	getUserErr       error
	updateErr        error
	createShelterErr error
	getShelterErr    error
	createSessionErr error
	findSessionErr   error
	deleteSessionErr error
	activityErr      error

	// afterFindSession runs once a session lookup has read the store.
	afterFindSession func(token string)
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*models.User{},
		sessions: map[string]*models.Session{},
		shelters: map[int64]*models.Shelter{},
	}
}

func (m *memStore) addUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = &u
	return &u
}

func (m *memStore) sessionCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if r.createUserErr != nil {
		return nil, r.createUserErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) find(match func(u *models.User) bool) (*models.User, error) {
	if r.getUserErr != nil {
		return nil, r.getUserErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r memUsers) GetActiveByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id && u.IsActive })
}

func (r memUsers) GetActiveByLogin(_ context.Context, identifier string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return (u.Username == identifier || u.Email == identifier) && u.IsActive
	})
}

func (r memUsers) GetActiveByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username && u.IsActive })
}

func (r memUsers) GetActiveByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email && u.IsActive })
}

func (r memUsers) GetActiveByIdentity(_ context.Context, username, email, phone string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.Username == username && u.Email == email && u.Phone == phone && u.IsActive
	})
}

func (r memUsers) EmailTakenByOther(_ context.Context, email string, userID int64) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != userID && u.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r memUsers) UpdateProfile(_ context.Context, id int64, p models.ProfileUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.FullName, u.Email, u.Phone, u.City, u.Address, u.NationalID = p.FullName, p.Email, p.Phone, p.City, p.Address, p.NationalID
	return nil
}

type memSessions struct{ *memStore }

func (r memSessions) Create(_ context.Context, s *models.Session) error {
	if r.createSessionErr != nil {
		return r.createSessionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.Token] = &cp
	return nil
}

func (r memSessions) FindActive(_ context.Context, token string, now time.Time) (*models.Session, error) {
	if r.findSessionErr != nil {
		return nil, r.findSessionErr
	}
	r.mu.Lock()
	s, ok := r.sessions[token]
	var cp models.Session
	if ok {
		cp = *s
	}
	hook := r.afterFindSession
	r.mu.Unlock()

	if hook != nil {
		hook(token)
	}
	if !ok || !cp.ExpiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	return &cp, nil
}

func (r memSessions) Delete(_ context.Context, token string) error {
	if r.deleteSessionErr != nil {
		return r.deleteSessionErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r memSessions) DeleteByUser(_ context.Context, userID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tokens []string
	for tok, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, tok)
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func (r memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for tok, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, tok)
			n++
		}
	}
	return n, nil
}

type memShelters struct{ *memStore }

func (r memShelters) Create(_ context.Context, s *models.Shelter) (*models.Shelter, error) {
	if r.createShelterErr != nil {
		return nil, r.createShelterErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = int64(len(r.shelters) + 1)
	cp := *s
	r.shelters[s.UserID] = &cp
	return s, nil
}

func (r memShelters) GetByUserID(_ context.Context, userID int64) (*models.Shelter, error) {
	if r.getShelterErr != nil {
		return nil, r.getShelterErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shelters[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

type memActivity struct{ *memStore }

func (r memActivity) Create(_ context.Context, e *models.ActivityLog) error {
	if r.activityErr != nil {
		return r.activityErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity = append(r.activity, *e)
	return nil
}

type fakeRepoManager struct{ st *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return memUsers{m.st} }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return memSessions{m.st} }
func (m *fakeRepoManager) Shelters(dbx.DBTX) shelters.Repository        { return memShelters{m.st} }
func (m *fakeRepoManager) ActivityLogs(dbx.DBTX) activitylogs.Repository {
	return memActivity{m.st}
}

// txDB is a real *sql.DB that only has to begin and commit transactions;
// the fake repositories never touch it.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:               "test-secret",
		SessionValidityDuration: common.DefaultSessionValidity,
		SessionCacheTTL:         time.Minute,
		BcryptCost:              bcrypt.MinCost,
	}
}

type fixture struct {
	st       *memStore
	db       *sql.DB
	rm       *fakeRepoManager
	sessions *SessionService
	identity *IdentityService
	profile  *ProfileService
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	st := newMemStore()
	rm := &fakeRepoManager{st: st}
	db := txDB(t)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.SecretKey, cfg.SessionValidityDuration)
	log := logging.Nop{}

	ss := NewSessionService(db, rm, cfg, nil, log, nil)
	return &fixture{
		st:       st,
		db:       db,
		rm:       rm,
		sessions: ss,
		identity: NewIdentityService(db, rm, hasher, tokens, ss, log, nil),
		profile:  NewProfileService(db, rm, log),
		hasher:   hasher,
		tokens:   tokens,
	}
}

// seedUser stores an active user with the given plaintext password.
func (f *fixture) seedUser(t *testing.T, username, email, password string, role models.Role) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	return f.st.addUser(models.User{
		Username: username, Email: email, PasswordHash: hash, Role: role,
		FullName: username, Phone: "03001234567", City: "Lahore", IsActive: true,
	})
}
