package service

import (
	"context"
	"time"

	"shareregistry/internal/profile/metrics"
	"shareregistry/internal/profile/models"
	profilestore "shareregistry/internal/profile/store/profile"
	id "shareregistry/pkg/domain"
	audit "shareregistry/pkg/platform/audit"
)

// Export projects a single profile. It never writes to the store.
func (s *Service) Export(ctx context.Context, profileID id.ProfileID) (models.ExportRow, error) {
	p, err := s.Get(ctx, profileID)
	if err != nil {
		return models.ExportRow{}, err
	}
	s.logAudit(ctx, audit.EventProfileExported, "profile_id", p.ID)
	s.observe(func(m *metrics.Metrics) { m.AddExported(1) })
	return models.NewExportRow(p), nil
}

// ExportAll projects every profile matching q, newest first. Paging fields of
// q are ignored; the store is walked in MaxPageSize pages.
func (s *Service) ExportAll(ctx context.Context, q models.ListQuery) (_ []models.ExportRow, err error) {
	ctx, span := tracer.Start(ctx, "profile.ExportAll")
	defer func() { endSpan(span, err) }()
	start := time.Now()
	defer s.observe(func(m *metrics.Metrics) { m.ObserveExport(start) })

	if err := q.Validate(); err != nil {
		return nil, err
	}
	filter := toFilter(q)

	rows := []models.ExportRow{}
	for page := 1; ; page++ {
		res, err := s.store.FindMany(ctx, filter, profilestore.Page{Number: page, Size: profilestore.MaxPageSize})
		if err != nil {
			return nil, translate(err, "failed to export profiles")
		}
		for _, p := range res.Items {
			rows = append(rows, models.NewExportRow(p))
		}
		if len(res.Items) == 0 || len(rows) >= res.Total {
			break
		}
	}

	s.logAudit(ctx, audit.EventProfileExported, "count", len(rows))
	s.observe(func(m *metrics.Metrics) { m.AddExported(len(rows)) })
	return rows, nil
}
