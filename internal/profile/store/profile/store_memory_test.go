package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	"shareregistry/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	base  time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func newProfile(clientID, name string, created time.Time, holdings ...models.ShareHolding) *models.ClientProfile {
	p := &models.ClientProfile{
		ID:              id.NewProfileID(),
		ClientID:        clientID,
		ShareholderName: models.ShareholderName{Name1: name},
		PANNumber:       "PAN" + clientID,
		Companies:       holdings,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	p.ApplyDefaults()
	models.PrepareNewHoldings(p.Companies)
	return p
}

func holding(company, isin string) models.ShareHolding {
	return models.ShareHolding{CompanyName: company, ISINNumber: isin, Quantity: 1}
}

func (s *InMemoryStoreSuite) TestInsertAndFind() {
	s.Run("round trips a profile", func() {
		p := newProfile("C1", "Asha", s.base, holding("Infosys", "INE009A01021"))
		s.Require().NoError(s.store.Insert(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p, found)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewProfileID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate client id", func() {
		s.Require().NoError(s.store.Insert(s.ctx, newProfile("DUP", "A", s.base)))
		err := s.store.Insert(s.ctx, newProfile("DUP", "B", s.base))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("rejects invalid profile", func() {
		p := newProfile("C-INVALID", "", s.base)
		err := s.store.Insert(s.ctx, p)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("returned profiles are copies", func() {
		p := newProfile("C-COPY", "Asha", s.base, holding("TCS", "INE467B01029"))
		s.Require().NoError(s.store.Insert(s.ctx, p))
		p.Companies[0].CompanyName = "mutated"

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("TCS", found.Companies[0].CompanyName)

		found.Companies[0].CompanyName = "mutated again"
		again, _ := s.store.FindByID(s.ctx, p.ID)
		s.Equal("TCS", again.Companies[0].CompanyName)
	})
}

func (s *InMemoryStoreSuite) TestFindMany() {
	p1 := newProfile("C1", "Asha Rao", s.base, holding("Infosys", "INE009A01021"))
	p2 := newProfile("C2", "Ravi Kumar", s.base.Add(time.Hour), holding("Tata Steel", "INE081A01020"))
	p3 := newProfile("C3", "Meena", s.base.Add(2*time.Hour), holding("HDFC Bank", "INE040A01034"))
	p3.Status = models.ProfileStatusClosed
	p3.Companies[0].Review.Status = models.ReviewRejected
	for _, p := range []*models.ClientProfile{p1, p2, p3} {
		s.Require().NoError(s.store.Insert(s.ctx, p))
	}

	s.Run("newest first with total", func() {
		res, err := s.store.FindMany(s.ctx, Filter{}, Page{})
		s.Require().NoError(err)
		s.Equal(3, res.Total)
		s.Require().Len(res.Items, 3)
		s.Equal(p3.ID, res.Items[0].ID)
		s.Equal(p1.ID, res.Items[2].ID)
		s.Equal(Page{Number: 1, Size: DefaultPageSize}, res.Page)
	})

	s.Run("query matches name, pan and company case-insensitively", func() {
		for q, want := range map[string]id.ProfileID{
			"asha":   p1.ID,
			"panc2":  p2.ID,
			"hdfc b": p3.ID,
		} {
			res, err := s.store.FindMany(s.ctx, Filter{Query: q}, Page{})
			s.Require().NoError(err)
			s.Require().Equal(1, res.Total, q)
			s.Equal(want, res.Items[0].ID, q)
		}
	})

	s.Run("status and review status filters", func() {
		res, err := s.store.FindMany(s.ctx, Filter{Status: models.ProfileStatusClosed}, Page{})
		s.Require().NoError(err)
		s.Equal(1, res.Total)

		res, err = s.store.FindMany(s.ctx, Filter{ReviewStatus: models.ReviewPending}, Page{})
		s.Require().NoError(err)
		s.Equal(2, res.Total)
	})

	s.Run("pages past the end are empty but keep total", func() {
		res, err := s.store.FindMany(s.ctx, Filter{}, Page{Number: 2, Size: 2})
		s.Require().NoError(err)
		s.Equal(3, res.Total)
		s.Len(res.Items, 1)

		res, err = s.store.FindMany(s.ctx, Filter{}, Page{Number: 9, Size: 2})
		s.Require().NoError(err)
		s.Equal(3, res.Total)
		s.Empty(res.Items)
	})
}

func (s *InMemoryStoreSuite) TestReplace() {
	p := newProfile("C1", "Asha", s.base)
	other := newProfile("C2", "Ravi", s.base)
	s.Require().NoError(s.store.Insert(s.ctx, p))
	s.Require().NoError(s.store.Insert(s.ctx, other))

	s.Run("replaces the document and moves the client id", func() {
		updated := p.Clone()
		updated.ClientID = "C1-NEW"
		s.Require().NoError(s.store.Replace(s.ctx, updated))

		found, err := s.store.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("C1-NEW", found.ClientID)
		s.Require().NoError(s.store.Insert(s.ctx, newProfile("C1", "Reuse", s.base)))
	})

	s.Run("conflicts with another profile's client id", func() {
		updated := other.Clone()
		updated.ClientID = "C1-NEW"
		s.ErrorIs(s.store.Replace(s.ctx, updated), sentinel.ErrConflict)
	})

	s.Run("unknown id", func() {
		s.ErrorIs(s.store.Replace(s.ctx, newProfile("C9", "X", s.base)), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestDelete() {
	p := newProfile("C1", "Asha", s.base)
	s.Require().NoError(s.store.Insert(s.ctx, p))

	s.Require().NoError(s.store.DeleteByID(s.ctx, p.ID))
	_, err := s.store.FindByID(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.DeleteByID(s.ctx, p.ID), sentinel.ErrNotFound)
	s.NoError(s.store.Insert(s.ctx, newProfile("C1", "Again", s.base)), "client id is released")
}

func (s *InMemoryStoreSuite) TestPageNormalized() {
	cases := []struct{ in, want Page }{
		{Page{}, Page{1, DefaultPageSize}},
		{Page{Number: -3, Size: 500}, Page{1, MaxPageSize}},
		{Page{Number: 4, Size: 10}, Page{4, 10}},
	}
	for _, tc := range cases {
		s.Run(fmt.Sprintf("%+v", tc.in), func() {
			s.Equal(tc.want, tc.in.Normalized())
		})
	}
	s.Equal(30, Page{Number: 4, Size: 10}.Offset())
}
