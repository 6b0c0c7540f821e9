package models

import (
	"strings"

	"github.com/shopspring/decimal"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
)

// DistinctiveRange is the certificate serial range as printed. It is text;
// no arithmetic is done on it.
type DistinctiveRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ShareHolding is one security position held by the client.
type ShareHolding struct {
	ID                id.HoldingID     `json:"id"`
	CompanyName       string           `json:"companyName"`
	ISINNumber        string           `json:"isinNumber"`
	FolioNumber       string           `json:"folioNumber"`
	CertificateNumber string           `json:"certificateNumber"`
	DistinctiveNumber DistinctiveRange `json:"distinctiveNumber"`
	Quantity          int64            `json:"quantity"`
	FaceValue         decimal.Decimal  `json:"faceValue"`
	PurchaseDate      *Date            `json:"purchaseDate,omitempty"`
	Review            Review           `json:"review"`
}

func (h *ShareHolding) normalize() {
	h.CompanyName = strings.TrimSpace(h.CompanyName)
	h.ISINNumber = strings.ToUpper(strings.TrimSpace(h.ISINNumber))
	h.FolioNumber = strings.TrimSpace(h.FolioNumber)
	h.CertificateNumber = strings.TrimSpace(h.CertificateNumber)
	h.DistinctiveNumber.From = strings.TrimSpace(h.DistinctiveNumber.From)
	h.DistinctiveNumber.To = strings.TrimSpace(h.DistinctiveNumber.To)
	h.Review.Status = ReviewStatus(strings.ToLower(strings.TrimSpace(string(h.Review.Status))))
	h.Review.Notes = strings.TrimSpace(h.Review.Notes)
}

func (h *ShareHolding) validate(field string) error {
	if h.CompanyName == "" {
		return dErrors.NewField(dErrors.CodeValidation, field+".companyName", "company name is required")
	}
	if h.ISINNumber == "" {
		return dErrors.NewField(dErrors.CodeValidation, field+".isinNumber", "ISIN number is required")
	}
	if h.Quantity < 0 {
		return dErrors.NewField(dErrors.CodeValidation, field+".quantity", "quantity must not be negative")
	}
	if h.FaceValue.IsNegative() {
		return dErrors.NewField(dErrors.CodeValidation, field+".faceValue", "face value must not be negative")
	}
	if h.Review.Status != "" && !h.Review.Status.IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, field+".review.status",
			"review status must be one of pending, approved, rejected, needs_attention")
	}
	return nil
}

// matches reports whether h is the holding named by the normalized pair.
func (h *ShareHolding) matches(companyName, isin string) bool {
	return h.CompanyName == companyName && h.ISINNumber == isin
}

// PrepareNewHoldings gives every holding a fresh ID and a review that starts
// from the supplied status (pending when absent) with no reviewer stamp.
func PrepareNewHoldings(holdings []ShareHolding) {
	for i := range holdings {
		holdings[i].ID = id.NewHoldingID()
		holdings[i].Review = freshReview(holdings[i].Review)
	}
}

func freshReview(in Review) Review {
	status := in.Status
	if !status.IsValid() {
		status = ReviewPending
	}
	return Review{Status: status, Notes: in.Notes}
}

// CarryForwardHoldings applies a full-array replace on top of stored holdings.
// An incoming holding that names a stored one (by ID, or by a unique
// company/ISIN pair when it has no ID) keeps the stored ID and review. Any
// other holding is new and is prepared like PrepareNewHoldings.
func CarryForwardHoldings(stored, incoming []ShareHolding) []ShareHolding {
	byID := make(map[id.HoldingID]int, len(stored))
	for i, h := range stored {
		byID[h.ID] = i
	}
	claimed := make(map[int]bool, len(stored))

	out := make([]ShareHolding, len(incoming))
	for i, h := range incoming {
		idx := -1
		if !h.ID.IsNil() {
			if j, ok := byID[h.ID]; ok && !claimed[j] {
				idx = j
			}
		} else {
			idx = uniquePairMatch(stored, claimed, h.CompanyName, h.ISINNumber)
		}

		if idx >= 0 {
			claimed[idx] = true
			h.ID = stored[idx].ID
			h.Review = stored[idx].Review
		} else {
			h.ID = id.NewHoldingID()
			h.Review = freshReview(h.Review)
		}
		out[i] = h
	}
	return out
}

func uniquePairMatch(stored []ShareHolding, claimed map[int]bool, companyName, isin string) int {
	found := -1
	for j := range stored {
		if claimed[j] || !stored[j].matches(companyName, isin) {
			continue
		}
		if found >= 0 {
			return -1
		}
		found = j
	}
	return found
}
