package models

import (
	"encoding/json"
	"strconv"
	"strings"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
)

// ProfileRequest is the body of a create or a full-replace update. Server
// owned fields (id, timestamps) in the body are ignored. Holdings may be sent
// as "companies" or, for older clients, "shareHoldings".
type ProfileRequest struct {
	Profile ClientProfile
}

func (r *ProfileRequest) UnmarshalJSON(b []byte) error {
	var wire struct {
		ClientProfile
		ID        json.RawMessage `json:"id"`
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	p := wire.ClientProfile
	if p.Companies == nil {
		var alias struct {
			ShareHoldings []ShareHolding `json:"shareHoldings"`
		}
		if err := json.Unmarshal(b, &alias); err != nil {
			return err
		}
		p.Companies = alias.ShareHoldings
	}
	r.Profile = p
	return nil
}

func (r ProfileRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Profile)
}

func (r *ProfileRequest) Normalize() {
	r.Profile.Normalize()
}

func (r *ProfileRequest) Validate() error {
	return r.Profile.Validate()
}

// ReviewRequest saves the review of one holding. HoldingID wins when set;
// otherwise CompanyName and ISINNumber identify the holding.
type ReviewRequest struct {
	HoldingID   string `json:"holdingId"`
	CompanyName string `json:"companyName"`
	ISINNumber  string `json:"isinNumber"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

func (r *ReviewRequest) Normalize() {
	r.HoldingID = strings.TrimSpace(r.HoldingID)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.ISINNumber = strings.ToUpper(strings.TrimSpace(r.ISINNumber))
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *ReviewRequest) Validate() error {
	_, _, err := r.Resolve()
	return err
}

// Resolve parses the request into a holding reference and a target status.
func (r *ReviewRequest) Resolve() (HoldingRef, ReviewStatus, error) {
	status, err := ParseReviewStatus(r.Status)
	if err != nil {
		return HoldingRef{}, "", err
	}
	if r.HoldingID != "" {
		hid, err := id.ParseHoldingID(r.HoldingID)
		if err != nil {
			return HoldingRef{}, "", dErrors.NewField(dErrors.CodeValidation, "holdingId", "holdingId must be a valid id")
		}
		return HoldingRef{ID: hid}, status, nil
	}
	if r.CompanyName == "" || r.ISINNumber == "" {
		return HoldingRef{}, "", dErrors.NewField(dErrors.CodeValidation, "companyName",
			"companyName and isinNumber are required when holdingId is absent")
	}
	return HoldingRef{CompanyName: r.CompanyName, ISINNumber: r.ISINNumber}, status, nil
}

// ListQuery carries the list and export query string.
type ListQuery struct {
	Query        string
	Status       string
	ReviewStatus string
	Page         int
	Limit        int
}

// ParseListQuery reads q, status, reviewStatus, page and limit. Unparseable
// page and limit values fall back to their defaults.
func ParseListQuery(get func(string) string) ListQuery {
	atoi := func(s string) int {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0
		}
		return n
	}
	return ListQuery{
		Query:        strings.TrimSpace(get("q")),
		Status:       strings.TrimSpace(get("status")),
		ReviewStatus: strings.ToLower(strings.TrimSpace(get("reviewStatus"))),
		Page:         atoi(get("page")),
		Limit:        atoi(get("limit")),
	}
}

func (q ListQuery) Validate() error {
	if q.Status != "" && !ProfileStatus(q.Status).IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "status", "status has an unsupported value")
	}
	if q.ReviewStatus != "" && !ReviewStatus(q.ReviewStatus).IsValid() {
		return dErrors.NewField(dErrors.CodeValidation, "reviewStatus",
			"reviewStatus must be one of pending, approved, rejected, needs_attention")
	}
	return nil
}

// ProfileList is one page of a listing.
type ProfileList struct {
	Data  []*ClientProfile `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}
