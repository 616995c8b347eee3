package models

import (
	"strings"
	"time"

	id "brokerdesk/pkg/domain"
	dErrors "brokerdesk/pkg/domain-errors"
	"brokerdesk/pkg/validate"
)

// Role is the staff role used for access checks.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

// User is a staff account.
//
// Invariants:
//   - Email is a well-formed address, unique across users (store-enforced)
//   - Role is one of admin, manager, agent
//   - Accounts are deactivated, never deleted (soft foreign keys elsewhere
//     keep pointing at them)
type User struct {
	ID           id.UserID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // never serialize
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewUser(userID id.UserID, email, name string, role Role, passwordHash string, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !validate.Email(email) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email is not valid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "role must be admin, manager or agent")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password is required")
	}
	return &User{
		ID:           userID,
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) Deactivate(now time.Time) {
	u.Active = false
	u.UpdatedAt = now
}
