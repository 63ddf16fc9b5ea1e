package common

import "time"

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "session_token"

// DefaultSessionValidity is the lifetime of both the signed token and the
// server-side session row.
const DefaultSessionValidity = 7 * 24 * time.Hour

// MinPasswordLength applies to registration, password change and reset.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72
