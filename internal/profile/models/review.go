package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
)

// ReviewStatus is the per-holding review state. Every state may move to every
// other state through an explicit review save; none is terminal.
type ReviewStatus string

const (
	ReviewPending        ReviewStatus = "pending"
	ReviewApproved       ReviewStatus = "approved"
	ReviewRejected       ReviewStatus = "rejected"
	ReviewNeedsAttention ReviewStatus = "needs_attention"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewNeedsAttention:
		return true
	}
	return false
}

// ParseReviewStatus accepts the wire values case-insensitively.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	status := ReviewStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", dErrors.NewField(dErrors.CodeValidation, "status",
			"status must be one of pending, approved, rejected, needs_attention")
	}
	return status, nil
}

// Review is the approval sub-record embedded in each holding.
// ReviewedAt and ReviewedBy stay empty until the first explicit review save.
type Review struct {
	Status     ReviewStatus `json:"status"`
	Notes      string       `json:"notes"`
	ReviewedAt *time.Time   `json:"reviewedAt"`
	ReviewedBy string       `json:"reviewedBy"`
}

// UnmarshalJSON treats a blank or null reviewedAt as unset. Clients echo the
// review back on full-replace updates, and new rows carry reviewedAt "".
func (r *Review) UnmarshalJSON(b []byte) error {
	type plain Review
	var wire struct {
		plain
		ReviewedAt json.RawMessage `json:"reviewedAt"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*r = Review(wire.plain)
	r.ReviewedAt = nil
	raw := bytes.TrimSpace(wire.ReviewedAt)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte(`""`)) {
		return nil
	}
	var at time.Time
	if err := json.Unmarshal(raw, &at); err != nil {
		return err
	}
	r.ReviewedAt = &at
	return nil
}

// PendingReview is the review every new holding starts with.
func PendingReview() Review {
	return Review{Status: ReviewPending}
}

// ReviewStats counts holdings per review state. Counts always sum to Total.
type ReviewStats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Approved       int `json:"approved"`
	Rejected       int `json:"rejected"`
	NeedsAttention int `json:"needs_attention"`
}

// ComputeReviewStats tallies holdings by review status. A holding with a
// missing or unrecognised status is counted as pending.
func ComputeReviewStats(holdings []ShareHolding) ReviewStats {
	stats := ReviewStats{Total: len(holdings)}
	for _, h := range holdings {
		switch h.Review.Status {
		case ReviewApproved:
			stats.Approved++
		case ReviewRejected:
			stats.Rejected++
		case ReviewNeedsAttention:
			stats.NeedsAttention++
		default:
			stats.Pending++
		}
	}
	return stats
}

// HoldingRef identifies a holding for a review save. ID wins when set;
// otherwise the (CompanyName, ISINNumber) pair is matched after normalization.
type HoldingRef struct {
	ID          id.HoldingID
	CompanyName string
	ISINNumber  string
}
