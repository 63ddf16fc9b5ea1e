// Package services contains server-side business logic. SessionService is
// the server-side record of issued tokens; IdentityService and
// ProfileService orchestrate accounts on top of it.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/petnest/internal/dbx"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/metrics"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/repositories/repomanager"
)

// SessionStore decides whether a token is still logged in.
type SessionStore interface {
	Create(ctx context.Context, userID int64, token string, meta models.SessionMetadata) error
	// FindActive returns common.ErrorNotFound for unknown, revoked or expired tokens.
	FindActive(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
}

// SessionCache is an optional read-through cache in front of the session
// table. Get returns nil, nil on a miss.
type SessionCache interface {
	Get(ctx context.Context, token string) (*models.Session, error)
	// Set must not store a token revoked within the last markerTTL given to
	// Revoke, even when the two calls race.
	Set(ctx context.Context, session *models.Session, ttl time.Duration) error
	Revoke(ctx context.Context, markerTTL time.Duration, tokens ...string) error
}

// SessionService keeps at most one live session per user.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	cache       SessionCache
	cacheTTL    time.Duration
	log         logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewSessionService builds the store. cache and mtr may be nil.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	cache SessionCache, log logging.Logger, mtr *metrics.Metrics) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		ttl:         cfg.SessionValidityDuration,
		cache:       cache,
		cacheTTL:    cfg.SessionCacheTTL,
		log:         log,
		metrics:     mtr,
		now:         time.Now,
	}
}

// Create replaces every session of userID with a new one for token, expiring
// after the configured validity. Delete and insert share one transaction.
func (s *SessionService) Create(ctx context.Context, userID int64, token string, meta models.SessionMetadata) error {
	session := &models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	var revoked []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Sessions(tx)
		tokens, err := repo.DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error deleting previous sessions: %w", err)
		}
		revoked = tokens
		if err := repo.Create(ctx, session); err != nil {
			return fmt.Errorf("error inserting session: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.revokeCached(ctx, revoked...)
	s.metrics.SessionCreated()
	return nil
}

// FindActive checks the cache first, then the database. A database hit is
// cached only if the lookup finished within the cache TTL, which is also the
// lifetime of revocation markers.
func (s *SessionService) FindActive(ctx context.Context, token string) (*models.Session, error) {
	now := s.now()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, token)
		switch {
		case err != nil:
			s.metrics.CacheLookup("error")
			s.log.Warn(ctx, "session cache lookup failed", "error", err)
		case cached != nil && cached.ExpiresAt.After(now):
			s.metrics.CacheLookup("hit")
			return cached, nil
		default:
			s.metrics.CacheLookup("miss")
		}
	}

	session, err := s.repomanager.Sessions(s.db).FindActive(ctx, token, now)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.now().Sub(now) < s.cacheTTL {
		ttl := min(s.cacheTTL, session.ExpiresAt.Sub(now))
		if err := s.cache.Set(ctx, session, ttl); err != nil {
			s.log.Warn(ctx, "session cache store failed", "user_id", session.UserID, "error", err)
		}
	}
	return session, nil
}

// Delete revokes token. Unknown tokens are not an error.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token); err != nil {
		return err
	}
	s.revokeCached(ctx, token)
	return nil
}

func (s *SessionService) revokeCached(ctx context.Context, tokens ...string) {
	if s.cache == nil || len(tokens) == 0 {
		return
	}
	if err := s.cache.Revoke(ctx, s.cacheTTL, tokens...); err != nil {
		s.log.Warn(ctx, "session cache revoke failed", "count", len(tokens), "error", err)
	}
}

// Reap removes expired session rows and returns how many were deleted.
func (s *SessionService) Reap(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.SessionsReaped(n)
	return n, nil
}

// RunReaper calls Reap every interval until ctx is done. A non-positive
// interval disables it.
func (s *SessionService) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Reap(ctx)
			if err != nil {
				s.log.Error(ctx, "session reap failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info(ctx, "expired sessions reaped", "count", n)
			}
		}
	}
}
