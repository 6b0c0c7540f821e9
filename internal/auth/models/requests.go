package models

import (
	"encoding/json"
	"strings"
	"time"

	dErrors "shareregistry/pkg/domain-errors"
)

// LoginRequest accepts either a username or an email address as Identifier.
// The identifier may arrive as "identifier", "emailOrUsername", "username" or
// "email"; the first non-blank key in that order wins.
type LoginRequest struct {
	Identifier string `json:"username"`
	Password   string `json:"password"`
}

func (r *LoginRequest) UnmarshalJSON(b []byte) error {
	var wire struct {
		Identifier      string `json:"identifier"`
		EmailOrUsername string `json:"emailOrUsername"`
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	r.Identifier = ""
	for _, v := range []string{wire.Identifier, wire.EmailOrUsername, wire.Username, wire.Email} {
		if strings.TrimSpace(v) != "" {
			r.Identifier = v
			break
		}
	}
	r.Password = wire.Password
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Identifier = strings.ToLower(strings.TrimSpace(r.Identifier))
}

func (r *LoginRequest) Validate() error {
	if r.Identifier == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "username and password are required")
	}
	return nil
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return dErrors.NewField(dErrors.CodeValidation, "currentPassword", "current password is required")
	}
	return validateNewPassword("newPassword", r.NewPassword)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *ForgotPasswordRequest) Validate() error {
	if r.Email == "" {
		return dErrors.NewField(dErrors.CodeValidation, "email", "email is required")
	}
	return nil
}

// UpdateUserRequest is an admin edit. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
	Role   *Role   `json:"role"`
	Status *Status `json:"status"`
}

func (r *UpdateUserRequest) Normalize() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(r.Name)
	trim(r.Phone)
	if r.Email != nil {
		*r.Email = strings.ToLower(strings.TrimSpace(*r.Email))
	}
}

func (r *UpdateUserRequest) Validate() error {
	if r.Role != nil && !r.Role.IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "role", "role must be admin, employee or client")
	}
	if r.Status != nil && !r.Status.IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "status", "status must be active or inactive")
	}
	return nil
}

// Apply copies the set fields onto u.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Phone != nil {
		u.Phone = *r.Phone
	}
	if r.Role != nil {
		u.Role = *r.Role
	}
	if r.Status != nil {
		u.Status = *r.Status
	}
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validateNewPassword("password", r.Password)
}

func validateNewPassword(field, pw string) error {
	if len(pw) < MinPasswordLength {
		return dErrors.NewField(dErrors.CodeValidation, field, "password must be at least 8 characters")
	}
	if len(pw) > 72 {
		// bcrypt ignores everything past 72 bytes
		return dErrors.NewField(dErrors.CodeValidation, field, "password must be at most 72 bytes")
	}
	return nil
}
