package rest

import (
	"context"
	"net"
	"net/http"

	"github.com/dmitrijs2005/petnest/internal/server/models"
)

type ctxKey string

const (
	ctxKeyUserID ctxKey = "user_id"
	ctxKeyToken  ctxKey = "session_token"
)

func withSession(ctx context.Context, userID int64, token string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	return context.WithValue(ctx, ctxKeyToken, token)
}

// UserIDFromContext returns the user bound by the auth gate.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(int64)
	return id, ok
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyToken).(string)
	return t
}

// metadataFrom extracts the client address and user agent recorded with
// sessions and activity entries.
func metadataFrom(r *http.Request) models.SessionMetadata {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return models.SessionMetadata{IPAddress: ip, UserAgent: r.UserAgent()}
}
