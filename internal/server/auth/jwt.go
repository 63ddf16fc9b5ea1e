package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the authenticated user id next to the registered claims.
// ID (jti) is random per token so two logins in the same second never
// produce the same session key.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenIssuer signs and verifies HS256 session tokens. It is stateless;
// whether a token still grants access is decided by the session store.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer using secret and token lifetime ttl.
// A non-positive ttl falls back to common.DefaultSessionValidity.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = common.DefaultSessionValidity
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to issued tokens.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for userID with iat = now and exp = now + TTL.
func (i *TokenIssuer) Issue(userID int64) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the user
// id it was issued for. Errors are common.ErrTokenMalformed,
// common.ErrTokenExpired or common.ErrTokenSignatureInvalid.
func (i *TokenIssuer) Verify(tokenString string) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, classify(err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return 0, common.ErrTokenMalformed
	}

	return claims.UserID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrTokenSignatureInvalid
	default:
		return common.ErrTokenMalformed
	}
}
