package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "shareregistry/pkg/domain-errors"
)

func TestParseReviewStatus(t *testing.T) {
	for _, in := range []string{"pending", "APPROVED", " rejected ", "Needs_Attention"} {
		st, err := ParseReviewStatus(in)
		require.NoError(t, err, in)
		assert.True(t, st.IsValid())
	}

	_, err := ParseReviewStatus("done")
	require.Error(t, err)
	de, ok := dErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "status", de.Field)
}

func TestComputeReviewStats(t *testing.T) {
	holdings := []ShareHolding{
		{Review: Review{Status: ReviewApproved}},
		{Review: Review{Status: ReviewApproved}},
		{Review: Review{Status: ReviewRejected}},
		{Review: Review{Status: ReviewNeedsAttention}},
		{Review: Review{Status: ReviewPending}},
		{},
	}
	stats := ComputeReviewStats(holdings)

	assert.Equal(t, ReviewStats{Total: 6, Pending: 2, Approved: 2, Rejected: 1, NeedsAttention: 1}, stats)
	assert.Equal(t, stats.Total, stats.Pending+stats.Approved+stats.Rejected+stats.NeedsAttention)
	assert.Equal(t, ReviewStats{}, ComputeReviewStats(nil))
}

func TestReviewStatsSummary(t *testing.T) {
	assert.Equal(t, "approved: 2, needs_attention: 1", ReviewStats{Total: 3, Approved: 2, NeedsAttention: 1}.Summary())
	assert.Equal(t, "", ReviewStats{}.Summary())
}

func TestReviewDecodesBlankReviewedAt(t *testing.T) {
	body := `{
		"clientId": "C-1",
		"shareholderName": {"name1": "Asha"},
		"panNumber": "ABCDE1234F",
		"companies": [
			{"id": "", "companyName": "Acme", "isinNumber": "INE000A01", "review": {"status": "pending", "notes": "", "reviewedAt": "", "reviewedBy": ""}},
			{"companyName": "Beta", "isinNumber": "INE000B01", "review": {"status": "approved", "reviewedAt": null}},
			{"companyName": "Gamma", "isinNumber": "INE000C01", "review": {"status": "rejected", "reviewedAt": "2024-06-01T10:00:00Z", "reviewedBy": "lead"}}
		]
	}`

	var req ProfileRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	companies := req.Profile.Companies
	require.Len(t, companies, 3)

	assert.True(t, companies[0].ID.IsNil())
	assert.Equal(t, ReviewPending, companies[0].Review.Status)
	assert.Nil(t, companies[0].Review.ReviewedAt)
	assert.Nil(t, companies[1].Review.ReviewedAt)
	assert.Equal(t, ReviewApproved, companies[1].Review.Status)
	require.NotNil(t, companies[2].Review.ReviewedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), companies[2].Review.ReviewedAt.UTC())
	assert.Equal(t, "lead", companies[2].Review.ReviewedBy)

	var bad Review
	require.Error(t, json.Unmarshal([]byte(`{"reviewedAt": "yesterday"}`), &bad))
}
