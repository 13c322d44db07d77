// ABOUTME: Password hashing, signed session tokens, and role checks.
// ABOUTME: The role is captured in the token at login and never re-read from storage.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized means no authenticated session is present.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the session lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidToken means a session token failed verification.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrBadCredentials means the name/password pair did not match.
	ErrBadCredentials = errors.New("invalid credentials")
)

// DeniedMessage is the single message shown for both denial kinds.
const DeniedMessage = "Acceso denegado"

// DefaultTTL is how long an issued session stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Session is an authenticated principal.
type Session struct {
	ID       string
	UserID   uuid.UUID
	Name     string
	Role     models.Role
	IssuedAt time.Time
	Token    string
}

// Claims are the signed contents of a session token.
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// RequireRole allows s only when it carries role.
func RequireRole(role models.Role, s *Session) error {
	if s == nil {
		return ErrUnauthorized
	}
	if s.Role != role {
		return fmt.Errorf("requires %s role: %w", role, ErrForbidden)
	}
	return nil
}

// HashPassword creates a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Issuer signs and verifies session tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using HS256 with secret.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a session for u, capturing its current role.
func (i *Issuer) Issue(u *models.User) (*Session, error) {
	now := i.now()
	id := ulid.Make().String()

	claims := &Claims{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return &Session{
		ID:       id,
		UserID:   u.ID,
		Name:     u.Name,
		Role:     u.Role,
		IssuedAt: now,
		Token:    token,
	}, nil
}

// Parse verifies token and returns the session it encodes.
func (i *Issuer) Parse(token string) (*Session, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	s := &Session{
		ID:     claims.ID,
		UserID: claims.UserID,
		Name:   claims.Name,
		Role:   claims.Role,
		Token:  token,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}
