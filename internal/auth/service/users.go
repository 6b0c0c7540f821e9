package service

import (
	"context"
	"errors"

	"shareregistry/internal/auth/models"
	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/sentinel"
	"shareregistry/pkg/requestcontext"
)

func (s *Service) ListUsers(ctx context.Context) ([]models.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, translate(err, "failed to list users")
	}
	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

// UpdateUser applies an admin edit. Admins cannot demote or deactivate
// themselves, so the system always keeps at least the caller as an admin.
func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, req *models.UpdateUserRequest) (*models.UserView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "failed to load user")
	}
	if userID == requestcontext.UserID(ctx) {
		if req.Role != nil && *req.Role != user.Role {
			return nil, dErrors.NewField(dErrors.CodeValidation, "role", "cannot change your own role")
		}
		if req.Status != nil && *req.Status != models.StatusActive {
			return nil, dErrors.NewField(dErrors.CodeValidation, "status", "cannot deactivate your own account")
		}
	}

	wasActive := user.IsActive()
	req.Apply(user)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	user.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, translate(err, "failed to update user")
	}

	event := audit.EventUserUpdated
	if wasActive && !user.IsActive() {
		event = audit.EventUserDeactivated
	}
	s.logAudit(ctx, event, user.ID,
		"username", user.Username,
		"role", string(user.Role),
		"status", string(user.Status),
	)
	view := user.View()
	return &view, nil
}

// ResetPassword sets a password chosen by an admin. The holder must change
// it at next login.
func (s *Service) ResetPassword(ctx context.Context, userID id.UserID, req *models.ResetPasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return translate(err, "failed to load user")
	}
	if err := s.setPassword(ctx, user, req.Password, true); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventPasswordReset, user.ID, "username", user.Username)
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no account with that
// username exists. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, emailAddr string) (*models.User, bool, error) {
	existing, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		if existing.Role != models.RoleAdmin {
			s.logger.WarnContext(ctx, "bootstrap admin username is held by a non-admin account",
				"username", existing.Username,
				"role", string(existing.Role),
			)
		}
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, translate(err, "failed to load user")
	}

	if len(password) < models.MinPasswordLength {
		return nil, false, dErrors.NewField(dErrors.CodeValidation, "password", "password must be at least 8 characters")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user, err := models.NewUser(username, hash, models.RoleAdmin, requestcontext.Now(ctx).UTC())
	if err != nil {
		return nil, false, err
	}
	user.Name = "Administrator"
	user.Email = emailAddr
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// another instance bootstrapped first
			existing, ferr := s.users.FindByUsername(ctx, user.Username)
			if ferr == nil {
				return existing, false, nil
			}
		}
		return nil, false, translate(err, "failed to create admin")
	}
	s.logAudit(ctx, audit.EventAdminBootstrapped, user.ID, "username", user.Username)
	return user, true, nil
}

// DeactivateByProfile marks every account linked to profileID inactive and
// returns how many changed. Accounts are never deleted.
func (s *Service) DeactivateByProfile(ctx context.Context, profileID id.ProfileID) (int, error) {
	users, err := s.users.ListByProfile(ctx, profileID)
	if err != nil {
		return 0, translate(err, "failed to list linked accounts")
	}
	changed := 0
	for _, u := range users {
		if !u.IsActive() {
			continue
		}
		u.Status = models.StatusInactive
		u.UpdatedAt = requestcontext.Now(ctx).UTC()
		if err := s.users.Update(ctx, u); err != nil {
			return changed, translate(err, "failed to deactivate account")
		}
		changed++
		s.logAudit(ctx, audit.EventUserDeactivated, u.ID,
			"username", u.Username,
			"profile_id", profileID,
			"reason", "profile_deleted",
		)
	}
	return changed, nil
}

// AfterDelete lets the service run as a profile delete hook.
func (s *Service) AfterDelete(ctx context.Context, profileID id.ProfileID) error {
	_, err := s.DeactivateByProfile(ctx, profileID)
	return err
}
