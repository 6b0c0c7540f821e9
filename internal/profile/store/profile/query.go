package profile

import (
	"strings"

	"shareregistry/internal/profile/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter narrows a listing. Empty fields do not constrain.
type Filter struct {
	// Query is a case-insensitive substring matched against the primary
	// shareholder name, the PAN and every holding's company name.
	Query string
	// Status matches the profile status exactly.
	Status models.ProfileStatus
	// ReviewStatus keeps profiles with at least one holding in that state.
	ReviewStatus models.ReviewStatus
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalized clamps the page to [1, ∞) and the size to [1, MaxPageSize],
// substituting DefaultPageSize when unset.
func (p Page) Normalized() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageResult is one page of profiles, newest first, plus the filtered total.
type PageResult struct {
	Items []*models.ClientProfile
	Page  Page
	Total int
}

func (f Filter) matches(p *models.ClientProfile) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.ReviewStatus != "" && !hasReviewStatus(p, f.ReviewStatus) {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.ShareholderName.Name1), q) ||
		strings.Contains(strings.ToLower(p.PANNumber), q) {
		return true
	}
	for _, h := range p.Companies {
		if strings.Contains(strings.ToLower(h.CompanyName), q) {
			return true
		}
	}
	return false
}

func hasReviewStatus(p *models.ClientProfile, status models.ReviewStatus) bool {
	for _, h := range p.Companies {
		if h.Review.Status == status {
			return true
		}
	}
	return false
}
