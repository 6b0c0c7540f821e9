// Package service implements client profile management: the create, replace
// and delete lifecycle, the per-holding review workflow, listing and the
// tabular export projection.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shareregistry/internal/profile/metrics"
	"shareregistry/internal/profile/models"
	profilestore "shareregistry/internal/profile/store/profile"
	"shareregistry/pkg/attrs"
	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/sentinel"
	"shareregistry/pkg/requestcontext"
)

// Store persists profile documents.
type Store interface {
	Insert(ctx context.Context, p *models.ClientProfile) error
	FindByID(ctx context.Context, profileID id.ProfileID) (*models.ClientProfile, error)
	FindMany(ctx context.Context, filter profilestore.Filter, page profilestore.Page) (*profilestore.PageResult, error)
	Replace(ctx context.Context, p *models.ClientProfile) error
	DeleteByID(ctx context.Context, profileID id.ProfileID) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditLog reads back the recorded history of a profile.
type AuditLog interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

// CreateHook runs after a profile is stored. Its error is logged, never
// returned to the caller: the profile already exists.
type CreateHook interface {
	AfterCreate(ctx context.Context, p *models.ClientProfile) error
}

// DeleteHook runs after a profile is removed, with the same error policy as CreateHook.
type DeleteHook interface {
	AfterDelete(ctx context.Context, profileID id.ProfileID) error
}

const systemActor = "system"

var tracer = otel.Tracer("shareregistry/internal/profile/service")

type Service struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	auditLog       AuditLog
	metrics        *metrics.Metrics
	createHooks    []CreateHook
	deleteHooks    []DeleteHook
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithAuditLog(log AuditLog) Option {
	return func(s *Service) {
		s.auditLog = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCreateHook appends a post-create hook. Hooks run in registration order.
func WithCreateHook(h CreateHook) Option {
	return func(s *Service) {
		if h != nil {
			s.createHooks = append(s.createHooks, h)
		}
	}
}

func WithDeleteHook(h DeleteHook) Option {
	return func(s *Service) {
		if h != nil {
			s.deleteHooks = append(s.deleteHooks, h)
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create stores a new profile and then provisions through the create hooks.
func (s *Service) Create(ctx context.Context, req *models.ProfileRequest) (_ *models.ClientProfile, err error) {
	ctx, span := tracer.Start(ctx, "profile.Create")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer s.observe(func(m *metrics.Metrics) { m.ObserveCreate(start) })

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.Profile.Clone()
	p.ID = id.NewProfileID()
	p.ApplyDefaults()
	models.PrepareNewHoldings(p.Companies)
	now := requestcontext.Now(ctx).UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	span.SetAttributes(attribute.String("profile.id", p.ID.String()))

	if err := s.store.Insert(ctx, p); err != nil {
		return nil, translate(err, "failed to create profile")
	}

	s.logAudit(ctx, audit.EventProfileCreated,
		"profile_id", p.ID,
		"client_id", p.ClientID,
		"holdings", len(p.Companies),
	)
	s.observe(func(m *metrics.Metrics) { m.IncrementCreated() })

	for _, hook := range s.createHooks {
		if err := hook.AfterCreate(ctx, p.Clone()); err != nil {
			s.hookFailed(ctx, "create", p.ID, err)
		}
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, profileID id.ProfileID) (*models.ClientProfile, error) {
	p, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err, "failed to load profile")
	}
	return p, nil
}

// Update replaces the whole document. Holdings that already exist keep their
// id and their stored review; review changes go through SetReview only.
func (s *Service) Update(ctx context.Context, profileID id.ProfileID, req *models.ProfileRequest) (_ *models.ClientProfile, err error) {
	ctx, span := tracer.Start(ctx, "profile.Update",
		trace.WithAttributes(attribute.String("profile.id", profileID.String())))
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer s.observe(func(m *metrics.Metrics) { m.ObserveUpdate(start) })

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stored, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err, "failed to load profile")
	}

	p := req.Profile.Clone()
	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	p.ApplyDefaults()
	p.Companies = models.CarryForwardHoldings(stored.Companies, p.Companies)
	p.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.store.Replace(ctx, p); err != nil {
		return nil, translate(err, "failed to update profile")
	}

	s.logAudit(ctx, audit.EventProfileUpdated,
		"profile_id", p.ID,
		"client_id", p.ClientID,
	)
	return p, nil
}

// Delete removes the profile. Linked login accounts are left alone unless a
// delete hook handles them.
func (s *Service) Delete(ctx context.Context, profileID id.ProfileID) (err error) {
	ctx, span := tracer.Start(ctx, "profile.Delete",
		trace.WithAttributes(attribute.String("profile.id", profileID.String())))
	defer func() { endSpan(span, err) }()

	if err := s.store.DeleteByID(ctx, profileID); err != nil {
		return translate(err, "failed to delete profile")
	}

	s.logAudit(ctx, audit.EventProfileDeleted, "profile_id", profileID)
	s.observe(func(m *metrics.Metrics) { m.IncrementDeleted() })

	for _, hook := range s.deleteHooks {
		if err := hook.AfterDelete(ctx, profileID); err != nil {
			s.hookFailed(ctx, "delete", profileID, err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, q models.ListQuery) (_ *models.ProfileList, err error) {
	ctx, span := tracer.Start(ctx, "profile.List")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer s.observe(func(m *metrics.Metrics) { m.ObserveList(start) })

	if err := q.Validate(); err != nil {
		return nil, err
	}
	res, err := s.store.FindMany(ctx, toFilter(q), profilestore.Page{Number: q.Page, Size: q.Limit})
	if err != nil {
		return nil, translate(err, "failed to list profiles")
	}
	return &models.ProfileList{
		Data:  res.Items,
		Page:  res.Page.Number,
		Limit: res.Page.Size,
		Total: res.Total,
	}, nil
}

// History returns the audit trail recorded for a profile, oldest first.
func (s *Service) History(ctx context.Context, profileID id.ProfileID) ([]audit.Event, error) {
	if _, err := s.Get(ctx, profileID); err != nil {
		return nil, err
	}
	if s.auditLog == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditLog.List(ctx, profileID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile history")
	}
	return events, nil
}

func toFilter(q models.ListQuery) profilestore.Filter {
	return profilestore.Filter{
		Query:        q.Query,
		Status:       models.ProfileStatus(q.Status),
		ReviewStatus: models.ReviewStatus(q.ReviewStatus),
	}
}

// translate maps store sentinels onto the domain error taxonomy. Errors that
// already carry a domain code (store-side validation) pass through.
func translate(err error, msg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "profile not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.NewField(dErrors.CodeConflict, "clientId", "a profile with this client ID already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "profile store unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) hookFailed(ctx context.Context, stage string, profileID id.ProfileID, err error) {
	s.logger.ErrorContext(ctx, "profile hook failed",
		"stage", stage,
		"profile_id", profileID.String(),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	s.observe(func(m *metrics.Metrics) { m.IncrementHookFailure(stage) })
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
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
	actor := requestcontext.Username(ctx)
	if actor == "" {
		actor = systemActor
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:  requestcontext.UserID(ctx),
		Subject: attrs.ExtractString(attributes, "profile_id"),
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

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
