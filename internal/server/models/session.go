package models

import "time"

// Session records that Token is logged in for UserID until ExpiresAt.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// SessionMetadata is the request snapshot stored alongside a new session.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}
