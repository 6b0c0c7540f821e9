package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shareregistry/internal/profile/metrics"
	"shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/requestcontext"
)

// SetReview records a review decision on exactly one holding. The reviewer is
// the authenticated username and the timestamp is the request time. Sibling
// holdings and the profile status are untouched.
func (s *Service) SetReview(ctx context.Context, profileID id.ProfileID, req *models.ReviewRequest) (_ *models.ClientProfile, err error) {
	ctx, span := tracer.Start(ctx, "profile.SetReview",
		trace.WithAttributes(attribute.String("profile.id", profileID.String())))
	defer func() { endSpan(span, err) }()

	req.Normalize()
	ref, status, err := req.Resolve()
	if err != nil {
		return nil, err
	}

	p, err := s.store.FindByID(ctx, profileID)
	if err != nil {
		return nil, translate(err, "failed to load profile")
	}
	idx, err := p.FindHolding(ref)
	if err != nil {
		return nil, err
	}

	reviewer := requestcontext.Username(ctx)
	if reviewer == "" {
		reviewer = systemActor
	}
	at := requestcontext.Now(ctx).UTC()
	p.Companies[idx].Review = models.Review{
		Status:     status,
		Notes:      req.Notes,
		ReviewedAt: &at,
		ReviewedBy: reviewer,
	}
	p.UpdatedAt = at

	if err := s.store.Replace(ctx, p); err != nil {
		return nil, translate(err, "failed to save review")
	}

	h := p.Companies[idx]
	s.logAudit(ctx, audit.EventHoldingReviewed,
		"profile_id", p.ID,
		"holding_id", h.ID,
		"isin", h.ISINNumber,
		"reason", string(status),
	)
	s.observe(func(m *metrics.Metrics) { m.IncrementReviewed(string(status)) })
	return p, nil
}

// ReviewStats counts the profile's holdings per review state.
func (s *Service) ReviewStats(ctx context.Context, profileID id.ProfileID) (models.ReviewStats, error) {
	p, err := s.Get(ctx, profileID)
	if err != nil {
		return models.ReviewStats{}, err
	}
	return models.ComputeReviewStats(p.Companies), nil
}
