package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret", time.Hour)
	userID := "64f1c0de0000000000000001"
	email := "ada@x.com"

	tok, err := issuer.Issue(userID, email)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, ok := issuer.Validate(tok)
	if !ok {
		t.Fatalf("Validate rejected a freshly issued token")
	}
	if claims.Subject != userID {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, userID)
	}
	if claims.Email != email {
		t.Fatalf("email mismatch: got %q want %q", claims.Email, email)
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer("secret", 60*time.Minute)
	issuer.now = func() time.Time { return base }

	tok, err := issuer.Issue("u1", "u1@x.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := issuer.Validate(tok); !ok {
		t.Fatalf("token rejected at +59m, want accepted")
	}

	issuer.now = func() time.Time { return base.Add(61 * time.Minute) }
	if _, ok := issuer.Validate(tok); ok {
		t.Fatalf("token accepted at +61m, want rejected")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret", time.Hour).Issue("u2", "u2@x.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, ok := NewIssuer("wrong-secret", time.Hour).Validate(tok); ok {
		t.Fatalf("token with wrong secret accepted, want rejected")
	}
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("k", time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		if _, ok := issuer.Validate(tok); ok {
			t.Fatalf("malformed token %q accepted, want rejected", tok)
		}
	}
}
