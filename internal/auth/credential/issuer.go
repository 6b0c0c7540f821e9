// Package credential provisions client logins for newly created profiles and
// mails the generated credentials.
package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shareregistry/internal/auth/metrics"
	"shareregistry/internal/auth/models"
	"shareregistry/internal/auth/secrets"
	profilemodels "shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/email"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/sentinel"
	"shareregistry/pkg/requestcontext"
)

const (
	usernameAttempts = 10
	insertAttempts   = 3
)

// ErrUsernameExhausted is returned when no free username was found.
var ErrUsernameExhausted = errors.New("could not allocate a unique username")

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type PasswordHasher interface {
	Hash(secret string) (string, error)
}

// Issuer creates the companion client login for a profile.
type Issuer struct {
	users          UserStore
	hasher         PasswordHasher
	sender         email.Sender
	dispatcher     Dispatcher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	loginURL       string
	passwordLength int
}

type Option func(*Issuer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Issuer) {
		i.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Issuer) {
		i.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(i *Issuer) {
		i.auditPublisher = p
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(i *Issuer) {
		if d != nil {
			i.dispatcher = d
		}
	}
}

func WithLoginURL(url string) Option {
	return func(i *Issuer) {
		i.loginURL = url
	}
}

func WithPasswordLength(n int) Option {
	return func(i *Issuer) {
		if n >= models.MinPasswordLength {
			i.passwordLength = n
		}
	}
}

func New(users UserStore, hasher PasswordHasher, sender email.Sender, opts ...Option) (*Issuer, error) {
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	i := &Issuer{
		users:          users,
		hasher:         hasher,
		sender:         sender,
		dispatcher:     NewAsyncDispatcher(0),
		logger:         slog.Default(),
		passwordLength: secrets.DefaultPasswordLength,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// AfterCreate provisions the login for p and queues the credentials mail.
// Delivery problems are logged and counted; they never fail the call.
func (i *Issuer) AfterCreate(ctx context.Context, p *profilemodels.ClientProfile) error {
	user, password, err := i.Issue(ctx, p)
	if err != nil {
		return err
	}
	to := user.Email
	if to == "" {
		i.logger.InfoContext(ctx, "no email on profile, credentials not sent",
			"profile_id", p.ID.String(),
			"username", user.Username,
		)
		i.observe(func(m *metrics.Metrics) { m.IncrementEmailFailure("no_address") })
		return nil
	}
	msg, err := email.CredentialsMessage(to, email.CredentialsData{
		Name:     p.ShareholderName.Name1,
		Username: user.Username,
		Password: password,
		LoginURL: i.loginURL,
	})
	if err != nil {
		return fmt.Errorf("render credentials mail: %w", err)
	}
	username := user.Username
	profileID := p.ID.String()
	i.dispatcher.Go(ctx, func(ctx context.Context) {
		if err := i.sender.Send(ctx, msg); err != nil {
			reason := "send"
			if errors.Is(err, email.ErrCircuitOpen) {
				reason = "circuit_open"
			}
			i.logger.ErrorContext(ctx, "failed to deliver credentials mail",
				"profile_id", profileID,
				"username", username,
				"error", err,
			)
			i.observe(func(m *metrics.Metrics) { m.IncrementEmailFailure(reason) })
			i.emit(ctx, audit.EventCredentialDeliveryFailed, profileID, reason)
		}
	})
	return nil
}

// Issue creates the account and returns it with the plaintext password, which
// exists only in memory for the mail.
func (i *Issuer) Issue(ctx context.Context, p *profilemodels.ClientProfile) (*models.User, string, error) {
	password, err := secrets.GeneratePassword(i.passwordLength)
	if err != nil {
		return nil, "", err
	}
	hash, err := i.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	now := requestcontext.Now(ctx).UTC()
	profileID := p.ID
	for attempt := 0; ; attempt++ {
		username, err := i.uniqueUsername(ctx, p.ShareholderName.Name1)
		if err != nil {
			return nil, "", err
		}
		user := &models.User{
			ID:                 id.NewUserID(),
			Username:           username,
			Name:               p.ShareholderName.Name1,
			Email:              strings.ToLower(strings.TrimSpace(p.EmailID)),
			Phone:              p.MobileNumber,
			Role:               models.RoleClient,
			Status:             models.StatusActive,
			PasswordHash:       hash,
			ProfileID:          &profileID,
			MustChangePassword: true,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		err = i.users.Insert(ctx, user)
		if err == nil {
			i.logger.InfoContext(ctx, "client login issued",
				"profile_id", profileID.String(),
				"username", username,
				"log_type", "audit",
			)
			i.observe(func(m *metrics.Metrics) { m.IncrementIssued() })
			i.emit(ctx, audit.EventCredentialIssued, profileID.String(), "")
			return user, password, nil
		}
		// a concurrent issue may take the name between check and insert
		if !errors.Is(err, sentinel.ErrConflict) || attempt+1 >= insertAttempts {
			return nil, "", fmt.Errorf("create client login: %w", err)
		}
	}
}

// uniqueUsername tries ten 4-hex suffixes, then one 6-hex suffix.
func (i *Issuer) uniqueUsername(ctx context.Context, name string) (string, error) {
	for attempt := 0; attempt <= usernameAttempts; attempt++ {
		n := suffixLen
		if attempt == usernameAttempts {
			n = wideSuffixLen
		}
		candidate, err := GenerateUsername(name, n)
		if err != nil {
			return "", err
		}
		_, err = i.users.FindByUsername(ctx, candidate)
		if errors.Is(err, sentinel.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
	}
	return "", ErrUsernameExhausted
}

func (i *Issuer) emit(ctx context.Context, event audit.AuditEvent, subject, reason string) {
	if i.auditPublisher == nil {
		return
	}
	if err := i.auditPublisher.Emit(ctx, audit.Event{
		Subject: subject,
		Action:  string(event),
		Actor:   "system",
		Reason:  reason,
	}); err != nil {
		i.logger.WarnContext(ctx, "failed to publish audit event", "event", string(event), "error", err)
	}
}

func (i *Issuer) observe(fn func(*metrics.Metrics)) {
	if i.metrics != nil {
		fn(i.metrics)
	}
}
