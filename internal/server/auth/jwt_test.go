package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("super-secret", time.Hour)

	tok, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != 42 {
		t.Fatalf("userID mismatch: got %d want 42", got)
	}
}

func TestIssue_ClaimsShape(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer("k", 0)
	issuer.now = func() time.Time { return fixed }

	tok, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	if err != nil {
		t.Fatalf("ParseUnverified error: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("user_id: got %d", claims.UserID)
	}
	if !claims.IssuedAt.Time.Equal(fixed) {
		t.Fatalf("iat: got %v want %v", claims.IssuedAt.Time, fixed)
	}
	if want := fixed.Add(common.DefaultSessionValidity); !claims.ExpiresAt.Time.Equal(want) {
		t.Fatalf("exp: got %v want %v", claims.ExpiresAt.Time, want)
	}
}

func TestIssue_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()

	fixed := time.Unix(1_700_000_000, 0)
	issuer := NewTokenIssuer("k", time.Hour)
	issuer.now = func() time.Time { return fixed }

	a, err := issuer.Issue(1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := issuer.Issue(1)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens for back-to-back logins")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	tok, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.now = time.Now
	_, err = issuer.Verify(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer("right-secret", time.Hour).Issue(2)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenIssuer("wrong-secret", time.Hour).Verify(tok)
	if !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected common.ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k", time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, common.ErrTokenMalformed) {
			t.Fatalf("%q: expected common.ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           3,
	})
	signed, err := tok.SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewTokenIssuer("k", time.Hour).Verify(signed); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k", time.Hour)
	tok, err := issuer.Issue(5)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(tok, ".")
	other, _ := issuer.Issue(6)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	if _, err := issuer.Verify(forged); !errors.Is(err, common.ErrTokenSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
}
