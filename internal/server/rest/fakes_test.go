package rest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/auth"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/metrics"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/services"
)

const testSecret = "rest-test-secret"

type fakeIdentity struct {
	register       func(services.RegisterRequest, models.SessionMetadata) (*services.AuthResult, error)
	login          func(services.LoginRequest, models.SessionMetadata) (*services.AuthResult, error)
	check          func(int64) (*services.AuthResult, error)
	changePassword func(int64, services.ChangePasswordRequest) error
	verifyIdentity func(services.VerifyIdentityRequest) (*models.User, error)
	directReset    func(services.DirectResetRequest) error
	checkUsername  func(string) (*services.UsernameLookup, error)
	getUserByEmail func(string) (*services.EmailLookup, error)
	getUserRoles   func(int64) ([]models.Role, error)

	loggedOut []string
}

func (f *fakeIdentity) Register(_ context.Context, req services.RegisterRequest, meta models.SessionMetadata) (*services.AuthResult, error) {
	return f.register(req, meta)
}

func (f *fakeIdentity) Login(_ context.Context, req services.LoginRequest, meta models.SessionMetadata) (*services.AuthResult, error) {
	return f.login(req, meta)
}

func (f *fakeIdentity) Check(_ context.Context, userID int64) (*services.AuthResult, error) {
	return f.check(userID)
}

func (f *fakeIdentity) Logout(_ context.Context, token string) {
	f.loggedOut = append(f.loggedOut, token)
}

func (f *fakeIdentity) ChangePassword(_ context.Context, userID int64, req services.ChangePasswordRequest, _ models.SessionMetadata) error {
	return f.changePassword(userID, req)
}

func (f *fakeIdentity) VerifyIdentity(_ context.Context, req services.VerifyIdentityRequest) (*models.User, error) {
	return f.verifyIdentity(req)
}

func (f *fakeIdentity) DirectReset(_ context.Context, req services.DirectResetRequest, _ models.SessionMetadata) error {
	return f.directReset(req)
}

func (f *fakeIdentity) CheckUsername(_ context.Context, username string) (*services.UsernameLookup, error) {
	return f.checkUsername(username)
}

func (f *fakeIdentity) GetUserByEmail(_ context.Context, email string) (*services.EmailLookup, error) {
	return f.getUserByEmail(email)
}

func (f *fakeIdentity) GetUserRoles(_ context.Context, userID int64) ([]models.Role, error) {
	return f.getUserRoles(userID)
}

type fakeProfile struct {
	get    func(int64) (*models.User, error)
	update func(int64, services.ProfileUpdateRequest) error
}

func (f *fakeProfile) Get(_ context.Context, userID int64) (*models.User, error) {
	return f.get(userID)
}

func (f *fakeProfile) Update(_ context.Context, userID int64, req services.ProfileUpdateRequest, _ models.SessionMetadata) error {
	return f.update(userID, req)
}

type fakeSessions struct {
	mu      sync.Mutex
	active  map[string]int64
	findErr error
}

func (f *fakeSessions) Create(_ context.Context, userID int64, token string, _ models.SessionMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[token] = userID
	return nil
}

func (f *fakeSessions) FindActive(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	uid, ok := f.active[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Session{Token: token, UserID: uid, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeSessions) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.active, token)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type testEnv struct {
	identity *fakeIdentity
	profile  *fakeProfile
	sessions *fakeSessions
	tokens   *auth.TokenIssuer
	pinger   *fakePinger
	metrics  *metrics.Metrics
	cfg      *config.Config
}

func newTestEnv() *testEnv {
	cfg := &config.Config{SecretKey: testSecret, SessionValidityDuration: common.DefaultSessionValidity}
	return &testEnv{
		identity: &fakeIdentity{},
		profile:  &fakeProfile{},
		sessions: &fakeSessions{active: map[string]int64{}},
		tokens:   auth.NewTokenIssuer(testSecret, cfg.SessionValidityDuration),
		pinger:   &fakePinger{},
		metrics:  metrics.New(),
		cfg:      cfg,
	}
}

func (e *testEnv) handler() *Handler {
	return NewHandler(e.cfg, logging.Nop{}, e.identity, e.profile, e.tokens, e.sessions, e.pinger, e.metrics)
}

// login issues a token for userID and records a live session for it.
func (e *testEnv) login(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	e.sessions.active[token] = userID
	return token
}
