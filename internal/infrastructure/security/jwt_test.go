package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/account-service/internal/domain"
)

func TestJWTSigner_IssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service", time.Hour)
	tok, exp, err := s.Issue("u1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected non-empty token")
	}
	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expected ~1h expiry, got %v", d)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if claims.AccountID != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.Identity().IsAdmin() {
		t.Fatalf("expected admin identity")
	}
}

func TestNewJWTSigner_DefaultTTL(t *testing.T) {
	t.Parallel()

	if NewJWTSigner("s", "", 0).ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl")
	}
}

func TestJWTSigner_Verify_Expired_ReturnsTokenExpired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := s.Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}

	s.now = time.Now
	_, verr := s.Verify(tok)
	if !domain.Is(verr, "token_expired") {
		t.Fatalf("expected token_expired, got %v", verr)
	}
}

func TestJWTSigner_Verify_WrongSecret_ReturnsSignatureInvalid(t *testing.T) {
	t.Parallel()

	tok, _, err := NewJWTSigner("secret1", "account-service", time.Minute).Issue("u1", domain.RoleUser)
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}

	_, verr := NewJWTSigner("secret2", "account-service", time.Minute).Verify(tok)
	if !domain.Is(verr, "token_signature_invalid") {
		t.Fatalf("expected token_signature_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_TamperedPayload(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service", time.Minute)
	userTok, _, _ := s.Issue("u1", domain.RoleUser)
	adminTok, _, _ := s.Issue("u1", domain.RoleAdmin)

	// Splice the admin payload onto the user signature.
	u := strings.Split(userTok, ".")
	a := strings.Split(adminTok, ".")
	forged := u[0] + "." + a[1] + "." + u[2]

	_, verr := s.Verify(forged)
	if !domain.Is(verr, "token_signature_invalid") {
		t.Fatalf("expected token_signature_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_AlgNone_Rejected(t *testing.T) {
	t.Parallel()

	claims := accessClaims{
		AccountID: "u1",
		Role:      "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "account-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	_, verr := NewJWTSigner("secret", "account-service", time.Minute).Verify(tok)
	if !domain.Is(verr, "token_signature_invalid") {
		t.Fatalf("expected token_signature_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_Garbage_ReturnsMalformed(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service", time.Minute)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := s.Verify(tok); !domain.Is(err, "token_malformed") {
			t.Fatalf("Verify(%q): expected token_malformed, got %v", tok, err)
		}
	}
}

func TestJWTSigner_Verify_UnknownRole_ReturnsMalformed(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "account-service", time.Minute)
	tok, _, err := s.Issue("u1", domain.Role("root"))
	if err != nil {
		t.Fatalf("issue err: %v", err)
	}
	if _, err := s.Verify(tok); !domain.Is(err, "token_malformed") {
		t.Fatalf("expected token_malformed, got %v", err)
	}
}

func TestJWTSigner_Verify_MissingExpiry_ReturnsMalformed(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		AccountID:        "u1",
		Role:             "User",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "account-service"},
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewJWTSigner("secret", "account-service", time.Minute).Verify(tok); !domain.Is(err, "token_malformed") {
		t.Fatalf("expected token_malformed, got %v", err)
	}
}
