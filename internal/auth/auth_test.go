// ABOUTME: Tests for role checks, password hashing, and session tokens.
// ABOUTME: Includes the stale-role case where the token outlives a role change.
package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/vitals/internal/models"
)

func TestRequireRole(t *testing.T) {
	admin := &Session{Role: models.RoleAdmin}
	user := &Session{Role: models.RoleUser}

	tests := []struct {
		name    string
		role    models.Role
		session *Session
		want    error
	}{
		{"admin allowed", models.RoleAdmin, admin, nil},
		{"user allowed for user role", models.RoleUser, user, nil},
		{"user denied admin", models.RoleAdmin, user, ErrForbidden},
		{"no session", models.RoleAdmin, nil, ErrUnauthorized},
		{"no session for user role", models.RoleUser, nil, ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.role, tt.session)
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected allow, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3creto")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3creto" {
		t.Error("hash must not equal the password")
	}
	if !CheckPassword(hash, "s3creto") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "otro") {
		t.Error("expected wrong password to fail")
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	u := models.NewUser("ana", "ana@example.com")
	u.Role = models.RoleAdmin

	s, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if s.ID == "" || s.Token == "" {
		t.Fatal("expected session ID and token")
	}

	got, err := issuer.Parse(s.Token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.UserID != u.ID || got.Name != "ana" || got.Role != models.RoleAdmin || got.ID != s.ID {
		t.Errorf("parsed session mismatch: %+v", got)
	}
}

func TestParseRejectsOtherSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", time.Hour)
	b, _ := NewIssuer("secret-b", time.Hour)

	s, err := a.Issue(models.NewUser("ana", "ana@example.com"))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Parse(s.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	s, err := issuer.Issue(models.NewUser("ana", "ana@example.com"))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(s.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestSessionKeepsRoleAfterDemotion(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	u := models.NewUser("ana", "ana@example.com")
	u.Role = models.RoleAdmin

	s, err := issuer.Issue(u)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// The stored role changes; the token still carries the role from login.
	u.Role = models.RoleUser
	got, err := issuer.Parse(s.Token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := RequireRole(models.RoleAdmin, got); err != nil {
		t.Errorf("expected cached admin role to pass, got %v", err)
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitals", "session.json")
	issuer, _ := NewIssuer("secret", time.Hour)

	if _, err := LoadSession(path, issuer); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized with no file, got %v", err)
	}

	s, err := issuer.Issue(models.NewUser("ana", "ana@example.com"))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := SaveSession(path, s); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := LoadSession(path, issuer)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if got.UserID != s.UserID {
		t.Errorf("UserID mismatch: got %v, want %v", got.UserID, s.UserID)
	}

	if err := ClearSession(path); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if err := ClearSession(path); err != nil {
		t.Errorf("ClearSession on missing file should not error: %v", err)
	}
	if _, err := LoadSession(path, issuer); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized after clear, got %v", err)
	}
}

func TestSessionPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := SessionPath(); got != "/tmp/xdg/vitals/session.json" {
		t.Errorf("SessionPath = %q", got)
	}
}
