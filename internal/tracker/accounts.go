// ABOUTME: Registration, login and administrator bootstrap.
// ABOUTME: Login issues a session token that carries the role read at that moment.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/models"
	"github.com/harperreed/vitals/internal/storage"
)

// Registration is the data collected when a user signs up.
type Registration struct {
	Name     string
	Email    string
	Password string
	Age      *int
	Sex      *string
	Phone    *string
}

// Register creates a regular user. Name and email must be unused.
func (s *Service) Register(ctx context.Context, reg Registration) (*models.User, error) {
	return s.createUser(ctx, reg, models.RoleUser)
}

// BootstrapAdmin creates an administrator account. It fails with
// storage.ErrDuplicateName when the name is already taken.
func (s *Service) BootstrapAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, Registration{Name: name, Email: email, Password: password}, models.RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, reg Registration, role models.Role) (*models.User, error) {
	name := strings.TrimSpace(reg.Name)
	email := strings.TrimSpace(reg.Email)
	if name == "" || email == "" || reg.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	u := models.NewUser(name, email)
	u.PasswordHash = hash
	u.Role = role
	u.Age = reg.Age
	u.Sex = reg.Sex
	u.Phone = reg.Phone

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, s.fail("create user", err)
	}
	s.logger.Info("user registered", "name", u.Name, "role", u.Role)
	return u, nil
}

// Login checks the credentials and issues a session.
func (s *Service) Login(ctx context.Context, name, password string) (*auth.Session, error) {
	if s.issuer == nil {
		return nil, errors.New("session signing is not configured")
	}

	u, err := s.repo.GetUserByName(ctx, strings.TrimSpace(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, auth.ErrBadCredentials
	}
	if err != nil {
		return nil, s.fail("find user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.logger.Debug("password mismatch", "name", u.Name)
		return nil, auth.ErrBadCredentials
	}

	return s.issuer.Issue(u)
}

// Authenticate verifies a stored session token.
func (s *Service) Authenticate(token string) (*auth.Session, error) {
	if s.issuer == nil {
		return nil, auth.ErrUnauthorized
	}
	return s.issuer.Parse(token)
}

// CurrentUser loads the user behind sess.
func (s *Service) CurrentUser(ctx context.Context, sess *auth.Session) (*models.User, error) {
	if sess == nil {
		return nil, auth.ErrUnauthorized
	}
	u, err := s.repo.GetUser(ctx, sess.UserID.String())
	if err != nil {
		return nil, s.fail("get user", err)
	}
	return u, nil
}
