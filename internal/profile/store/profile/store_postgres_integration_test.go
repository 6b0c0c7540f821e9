//go:build integration

package profile_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"shareregistry/internal/profile/models"
	"shareregistry/internal/profile/store/profile"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/platform/sentinel"
	"shareregistry/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *profile.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = profile.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "client_profiles"))
}

func newStoredProfile(clientID, name, company string, created time.Time) *models.ClientProfile {
	p := &models.ClientProfile{
		ID:              id.NewProfileID(),
		ClientID:        clientID,
		ShareholderName: models.ShareholderName{Name1: name},
		PANNumber:       "ABCDE1234F",
		Companies: []models.ShareHolding{{
			CompanyName: company,
			ISINNumber:  "INE000A00000",
			Quantity:    25,
			FaceValue:   decimal.RequireFromString("10.50"),
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
	p.ApplyDefaults()
	models.PrepareNewHoldings(p.Companies)
	return p
}

func (s *PostgresStoreSuite) TestRoundTripKeepsHoldingsAtomic() {
	ctx := context.Background()
	p := newStoredProfile("C-1", "Asha", "Infosys", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Insert(ctx, p))

	found, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().Len(found.Companies, 1)
	s.Equal(p.Companies[0].ID, found.Companies[0].ID)
	s.True(found.Companies[0].FaceValue.Equal(decimal.RequireFromString("10.5")))
	s.Equal(models.ReviewPending, found.Companies[0].Review.Status)

	found.Companies = append(found.Companies, models.ShareHolding{ID: id.NewHoldingID(), CompanyName: "TCS", ISINNumber: "INE467B01029", Review: models.PendingReview()})
	s.Require().NoError(s.store.Replace(ctx, found))

	again, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Len(again.Companies, 2)
}

// TestConcurrentClientIDUniqueness verifies exactly one insert wins per client id.
func (s *PostgresStoreSuite) TestConcurrentClientIDUniqueness() {
	ctx := context.Background()
	clientID := "C-" + uuid.NewString()
	const goroutines = 20

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, newStoredProfile(clientID, "Racer", "Infosys", time.Now()))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestFindManyFiltersAndOrders() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	older := newStoredProfile("C-1", "Asha Rao", "Infosys", base)
	newer := newStoredProfile("C-2", "Ravi", "Tata_Steel 100%", base.Add(time.Minute))
	newer.Companies[0].Review.Status = models.ReviewApproved
	s.Require().NoError(s.store.Insert(ctx, older))
	s.Require().NoError(s.store.Insert(ctx, newer))

	res, err := s.store.FindMany(ctx, profile.Filter{}, profile.Page{})
	s.Require().NoError(err)
	s.Equal(2, res.Total)
	s.Equal(newer.ID, res.Items[0].ID)

	res, err = s.store.FindMany(ctx, profile.Filter{Query: "ASHA"}, profile.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.Total)
	s.Equal(older.ID, res.Items[0].ID)

	res, err = s.store.FindMany(ctx, profile.Filter{Query: "l 100%"}, profile.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.Total, "wildcards in the query are literal")

	res, err = s.store.FindMany(ctx, profile.Filter{Query: "a_s"}, profile.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.Total)
	s.Equal(newer.ID, res.Items[0].ID)

	res, err = s.store.FindMany(ctx, profile.Filter{ReviewStatus: models.ReviewApproved}, profile.Page{})
	s.Require().NoError(err)
	s.Equal(1, res.Total)
	s.Equal(newer.ID, res.Items[0].ID)

	res, err = s.store.FindMany(ctx, profile.Filter{}, profile.Page{Number: 2, Size: 1})
	s.Require().NoError(err)
	s.Equal(2, res.Total)
	s.Equal(older.ID, res.Items[0].ID)
}

func (s *PostgresStoreSuite) TestDeleteMissing() {
	s.ErrorIs(s.store.DeleteByID(context.Background(), id.NewProfileID()), sentinel.ErrNotFound)
}
