package models

import (
	"strings"
	"time"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
)

type Role string

const (
	RoleAdmin    Role = id.RoleAdmin
	RoleEmployee Role = id.RoleEmployee
	RoleClient   Role = id.RoleClient
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// MinPasswordLength applies to passwords chosen by people. Generated
// passwords are longer.
const MinPasswordLength = 8

// User is a login account. Client accounts link to exactly one profile
// through ProfileID; staff accounts have none.
type User struct {
	ID                 id.UserID
	Username           string
	Name               string
	Email              string
	Phone              string
	Role               Role
	Status             Status
	PasswordHash       string
	ProfileID          *id.ProfileID
	MustChangePassword bool
	LastLoginAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewUser builds an active account and checks its invariants.
func NewUser(username, passwordHash string, role Role, now time.Time) (*User, error) {
	u := &User{
		ID:           id.NewUserID(),
		Username:     strings.ToLower(strings.TrimSpace(username)),
		Role:         role,
		Status:       StatusActive,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Validate() error {
	if u.Username == "" {
		return dErrors.NewField(dErrors.CodeValidation, "username", "username is required")
	}
	if u.PasswordHash == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if !u.Role.IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "role", "role must be admin, employee or client")
	}
	if !u.Status.IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "status", "status must be active or inactive")
	}
	if u.Role == RoleClient && u.ProfileID == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "client accounts must link a profile")
	}
	return nil
}

func (u *User) IsActive() bool { return u.Status == StatusActive }

// Clone returns a copy safe to hand out of a store.
func (u *User) Clone() *User {
	c := *u
	if u.ProfileID != nil {
		p := *u.ProfileID
		c.ProfileID = &p
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// UserView is the public shape of an account. It never carries the hash.
type UserView struct {
	ID                 id.UserID     `json:"id"`
	Username           string        `json:"username"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone"`
	Role               Role          `json:"role"`
	Status             Status        `json:"status"`
	ProfileID          *id.ProfileID `json:"profileId,omitempty"`
	MustChangePassword bool          `json:"mustChangePassword"`
	LastLoginAt        *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Email:              u.Email,
		Phone:              u.Phone,
		Role:               u.Role,
		Status:             u.Status,
		ProfileID:          u.ProfileID,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}
