// ABOUTME: User account model and role enum.
// ABOUTME: Users own measurements and, for admins, advice entries.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role gates administrative operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %s", s)
}

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Email        string    `json:"email" yaml:"email"`
	PasswordHash string    `json:"password_hash" yaml:"password_hash"`
	Role         Role      `json:"role" yaml:"role"`
	Age          *int      `json:"age,omitempty" yaml:"age,omitempty"`
	Sex          *string   `json:"sex,omitempty" yaml:"sex,omitempty"`
	Phone        *string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// NewUser creates a User with the default role.
func NewUser(name, email string) *User {
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      RoleUser,
		CreatedAt: time.Now(),
	}
}

// WithAge sets the optional age.
func (u *User) WithAge(age int) *User {
	u.Age = &age
	return u
}

// WithSex sets the optional sex.
func (u *User) WithSex(sex string) *User {
	u.Sex = &sex
	return u
}

// WithPhone sets the optional phone number.
func (u *User) WithPhone(phone string) *User {
	u.Phone = &phone
	return u
}

// IsAdmin reports whether the stored role is admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
