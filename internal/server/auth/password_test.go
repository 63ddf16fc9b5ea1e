package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	digest, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if digest == "correct horse" || !strings.HasPrefix(digest, "$2") {
		t.Fatalf("unexpected digest %q", digest)
	}
	if !h.Verify("correct horse", digest) {
		t.Fatalf("expected match")
	}
	if h.Verify("wrong horse", digest) {
		t.Fatalf("expected mismatch")
	}
}

func TestPasswordHasher_SaltedDigests(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatalf("digests must differ per call")
	}
}

func TestPasswordHasher_EmptyInputs(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	digest, _ := h.Hash("x")

	if h.Verify("", digest) {
		t.Fatalf("empty plaintext must not verify")
	}
	if h.Verify("x", "") {
		t.Fatalf("empty digest must not verify")
	}
	if h.Verify("x", "not-a-bcrypt-hash") {
		t.Fatalf("garbage digest must not verify")
	}
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	t.Parallel()

	for _, cost := range []int{0, -1, bcrypt.MaxCost + 1} {
		if got := NewPasswordHasher(cost).cost; got != DefaultBcryptCost {
			t.Fatalf("cost %d: got %d want %d", cost, got, DefaultBcryptCost)
		}
	}
	if got := NewPasswordHasher(10).cost; got != 10 {
		t.Fatalf("got %d want 10", got)
	}
}

func TestPasswordHasher_TooLong(t *testing.T) {
	t.Parallel()

	if _, err := NewPasswordHasher(bcrypt.MinCost).Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatalf("expected error for password longer than 72 bytes")
	}
}
