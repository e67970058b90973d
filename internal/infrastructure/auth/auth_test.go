package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func TestIssueAndVerify(t *testing.T) {
	for _, alg := range []string{"HS256", "hs384", "HS512"} {
		issuer, err := NewTokenIssuer("secret", alg, time.Hour)
		if err != nil {
			t.Fatalf("NewTokenIssuer(%s) error = %v", alg, err)
		}
		want := domain.Principal{ID: "u1", Email: "owner@example.test", Role: domain.RoleBusinessOwner}
		token, err := issuer.Issue(want)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		got, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != want {
			t.Fatalf("Verify() = %+v, want %+v", got, want)
		}
	}
}

func TestVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, _ := NewTokenIssuer("secret", "HS256", time.Hour)
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Issue(domain.Principal{ID: "u1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	if !domain.IsKind(err, domain.ErrUnauthorized) || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("Verify() error = %v, want expired", err)
	}

	other, _ := NewTokenIssuer("other-secret", "HS256", time.Hour)
	foreign, _ := other.Issue(domain.Principal{ID: "u1"})
	issuer.now = time.Now
	if _, err := issuer.Verify(foreign); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify() error = %v, want unauthorized", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := issuer.Verify(unsigned); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("Verify() error = %v, want unauthorized for alg none", err)
	}
}

func TestNewTokenIssuerRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := NewTokenIssuer("secret", "RS256", time.Hour); err == nil {
		t.Fatalf("NewTokenIssuer() error = nil")
	}
	if _, err := NewTokenIssuer("", "HS256", time.Hour); err == nil {
		t.Fatalf("NewTokenIssuer() error = nil for empty secret")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := h.Compare(hash, "correct horse"); err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if err := h.Compare(hash, "wrong"); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("Compare() error = %v, want unauthorized", err)
	}
}
