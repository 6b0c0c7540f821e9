// Package service implements account authentication and administration:
// login and logout, self-service password flows, and the admin user surface.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"shareregistry/internal/auth/lockout"
	"shareregistry/internal/auth/metrics"
	"shareregistry/internal/auth/models"
	jwttoken "shareregistry/internal/jwt_token"
	"shareregistry/pkg/attrs"
	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	"shareregistry/pkg/email"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/sentinel"
	"shareregistry/pkg/requestcontext"
)

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByProfile(ctx context.Context, profileID id.ProfileID) ([]*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

type TokenIssuer interface {
	GenerateAccessToken(sub jwttoken.Subject, now time.Time) (jwttoken.IssuedToken, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) error
}

type PasswordGenerator func(length int) (string, error)

// Dispatcher runs mail delivery off the request goroutine.
type Dispatcher interface {
	Go(ctx context.Context, fn func(ctx context.Context))
}

type inlineDispatcher struct{}

func (inlineDispatcher) Go(ctx context.Context, fn func(ctx context.Context)) { fn(ctx) }

// LoginThrottle counts failed logins per identifier and client IP.
type LoginThrottle interface {
	Check(ctx context.Context, identifier, ip string) (lockout.Decision, error)
	RecordFailure(ctx context.Context, identifier, ip string) (lockout.Record, error)
	Clear(ctx context.Context, identifier, ip string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const tempPasswordLength = 12

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

type Service struct {
	users          UserStore
	tokens         TokenIssuer
	trl            RevocationList
	hasher         PasswordHasher
	sender         email.Sender
	genPassword    PasswordGenerator
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	throttle       LoginThrottle
	dispatcher     Dispatcher
	loginURL       string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func WithMailer(sender email.Sender, loginURL string) Option {
	return func(s *Service) {
		s.sender = sender
		s.loginURL = loginURL
	}
}

// WithDispatcher sets where password-reset mails are sent from. Without it
// they are sent on the calling goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

func WithLoginThrottle(t LoginThrottle) Option {
	return func(s *Service) {
		s.throttle = t
	}
}

func WithPasswordGenerator(fn PasswordGenerator) Option {
	return func(s *Service) {
		if fn != nil {
			s.genPassword = fn
		}
	}
}

func New(users UserStore, tokens TokenIssuer, trl RevocationList, hasher PasswordHasher, genPassword PasswordGenerator, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if trl == nil {
		return nil, fmt.Errorf("revocation list is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	s := &Service{
		users:       users,
		tokens:      tokens,
		trl:         trl,
		hasher:      hasher,
		genPassword: genPassword,
		dispatcher:  inlineDispatcher{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.genPassword == nil {
		return nil, fmt.Errorf("password generator is required")
	}
	return s, nil
}

// Login checks credentials and returns a signed access token. The identifier
// is tried as a username first, then as an email address.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	start := time.Now()
	defer s.observe(func(m *metrics.Metrics) { m.ObserveLogin(start) })

	ip := requestcontext.ClientIP(ctx)
	if err := s.checkThrottle(ctx, req.Identifier, ip); err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.authFailure(ctx, "unknown_user", req.Identifier)
			s.recordThrottleFailure(ctx, req.Identifier, ip)
			return nil, errInvalidCredentials
		}
		return nil, translate(err, "failed to load user")
	}
	if err := s.hasher.Verify(req.Password, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			s.authFailure(ctx, "bad_password", user.Username)
			s.recordThrottleFailure(ctx, req.Identifier, ip)
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if !user.IsActive() {
		s.authFailure(ctx, "inactive", user.Username)
		return nil, dErrors.New(dErrors.CodeForbidden, "account is inactive")
	}

	now := requestcontext.Now(ctx).UTC()
	sub := jwttoken.Subject{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     string(user.Role),
	}
	if user.ProfileID != nil {
		sub.ProfileID = user.ProfileID.String()
	}
	issued, err := s.tokens.GenerateAccessToken(sub, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "username", user.Username, "error", err)
	}

	s.logAudit(ctx, audit.EventUserLoggedIn, user.ID,
		"username", user.Username,
		"role", string(user.Role),
		"ip", requestcontext.ClientIP(ctx),
		"device", requestcontext.Device(ctx),
	)
	s.observe(func(m *metrics.Metrics) { m.IncrementLogin() })
	if s.throttle != nil {
		if err := s.throttle.Clear(ctx, req.Identifier, ip); err != nil {
			s.logger.WarnContext(ctx, "failed to clear login failures", "error", err)
		}
	}

	return &models.LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: user.View()}, nil
}

// checkThrottle rejects attempts from a locked identifier+IP. A throttle
// backend outage lets the attempt through rather than locking everyone out.
func (s *Service) checkThrottle(ctx context.Context, identifier, ip string) error {
	if s.throttle == nil {
		return nil
	}
	d, err := s.throttle.Check(ctx, identifier, ip)
	if err != nil {
		s.logger.WarnContext(ctx, "login throttle unavailable", "error", err)
		return nil
	}
	if d.Allowed {
		return nil
	}
	s.authFailure(ctx, "locked_out", identifier)
	return dErrors.New(dErrors.CodeRateLimited,
		fmt.Sprintf("too many failed attempts, try again in %d seconds", int(math.Ceil(d.RetryAfter.Seconds()))))
}

func (s *Service) recordThrottleFailure(ctx context.Context, identifier, ip string) {
	if s.throttle == nil {
		return
	}
	rec, err := s.throttle.RecordFailure(ctx, identifier, ip)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record login failure", "error", err)
		return
	}
	if rec.LockedUntil != nil && rec.LockedUntil.After(requestcontext.Now(ctx)) {
		s.logAudit(ctx, audit.EventAuthLockout, id.UserID{},
			"username", identifier,
			"reason", "too_many_failures",
		)
	}
}

func (s *Service) lookup(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, identifier)
	if errors.Is(err, sentinel.ErrNotFound) && strings.Contains(identifier, "@") {
		return s.users.FindByEmail(ctx, identifier)
	}
	return user, err
}

// Logout revokes the caller's current token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context) error {
	principal, ok := requestcontext.PrincipalFrom(ctx)
	if !ok || principal.TokenID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	ttl := principal.ExpiresAt.Sub(requestcontext.Now(ctx))
	if ttl > 0 {
		if err := s.trl.RevokeToken(ctx, principal.TokenID, ttl); err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to revoke token")
		}
	}
	s.logAudit(ctx, audit.EventUserLoggedOut, principal.UserID, "username", principal.Username)
	return nil
}

// Me returns the caller's own account.
func (s *Service) Me(ctx context.Context) (*models.UserView, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

func (s *Service) ChangePassword(ctx context.Context, req *models.ChangePasswordRequest) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			s.authFailure(ctx, "bad_current_password", user.Username)
			return dErrors.NewField(dErrors.CodeValidation, "currentPassword", "current password is incorrect")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
	}
	if err := s.setPassword(ctx, user, req.NewPassword, false); err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventPasswordChanged, user.ID, "username", user.Username)
	return nil
}

// ForgotPassword mails a temporary password to the account holding email.
// Unknown and inactive addresses succeed silently so callers cannot probe
// which addresses have accounts. Delivery runs on the dispatcher and the
// stored password changes only after the mail is accepted.
func (s *Service) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return translate(err, "failed to load user")
	}
	if !user.IsActive() {
		s.logger.InfoContext(ctx, "password reset requested for inactive account", "username", user.Username)
		return nil
	}
	if s.sender == nil {
		return dErrors.New(dErrors.CodeUnavailable, "email delivery is not configured")
	}

	temp, err := s.genPassword(tempPasswordLength)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate password")
	}
	msg, err := email.PasswordResetMessage(user.Email, email.PasswordResetData{
		Name:     user.Name,
		Username: user.Username,
		Password: temp,
		LoginURL: s.loginURL,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render email")
	}
	userID, username := user.ID, user.Username
	s.dispatcher.Go(ctx, func(ctx context.Context) {
		s.deliverTemporaryPassword(ctx, userID, username, temp, msg)
	})
	s.logAudit(ctx, audit.EventPasswordResetEmail, user.ID, "username", user.Username)
	return nil
}

// deliverTemporaryPassword mails temp and only then stores it, so a failed
// send leaves the current password working.
func (s *Service) deliverTemporaryPassword(ctx context.Context, userID id.UserID, username, temp string, msg email.Message) {
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email", "username", username, "error", err)
		s.observe(func(m *metrics.Metrics) { m.IncrementEmailFailure("password_reset") })
		return
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to reload user after password reset email", "username", username, "error", err)
		return
	}
	if err := s.setPassword(ctx, user, temp, true); err != nil {
		s.logger.ErrorContext(ctx, "failed to store temporary password", "username", username, "error", err)
	}
}

func (s *Service) currentUser(ctx context.Context) (*models.User, error) {
	principal, ok := requestcontext.PrincipalFrom(ctx)
	if !ok || principal.UserID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return nil, translate(err, "failed to load user")
	}
	return user, nil
}

func (s *Service) setPassword(ctx context.Context, user *models.User, password string, mustChange bool) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	user.PasswordHash = hash
	user.MustChangePassword = mustChange
	user.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return translate(err, "failed to save password")
	}
	return nil
}

func translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.NewField(dErrors.CodeConflict, "username", "username is already taken")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "user store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// authFailure records a rejected credential check with where it came from.
func (s *Service) authFailure(ctx context.Context, reason, subject string) {
	s.logger.WarnContext(ctx, "authentication failed",
		"reason", reason,
		"subject", subject,
		"ip", requestcontext.ClientIP(ctx),
		"device", requestcontext.Device(ctx),
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "security",
	)
	s.observe(func(m *metrics.Metrics) { m.IncrementLoginFailure(reason) })
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject: subject,
		Action:  string(audit.EventAuthFailed),
		Actor:   subject,
		Reason:  reason,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event", "event", string(audit.EventAuthFailed), "error", err)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	subject := attrs.ExtractString(attributes, "username")
	actor := requestcontext.Username(ctx)
	if actor == "" {
		actor = subject
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:  userID,
		Subject: subject,
		Action:  string(event),
		Actor:   actor,
		Reason:  attrs.ExtractString(attributes, "reason"),
	}); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event", "event", string(event), "error", err)
	}
}

func (s *Service) observe(fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}
