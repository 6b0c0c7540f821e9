package models

import (
	"fmt"
	"strconv"
	"strings"

	pstrings "shareregistry/pkg/platform/strings"
)

// ExportColumns is the fixed header of the tabular projection, in order.
var ExportColumns = []string{
	"Profile ID",
	"Client ID",
	"Shareholder Name",
	"PAN Number",
	"Aadhaar Number",
	"Address",
	"Email",
	"Mobile",
	"Bank Name",
	"Bank Account",
	"IFSC Code",
	"DMAT Account",
	"Status",
	"Total Companies",
	"Companies",
	"ISINs",
	"Total Quantity",
	"Review Summary",
	"Remarks",
}

// ExportRow is one profile flattened for spreadsheet download. Holdings are
// summarised into a handful of columns, never one row per holding.
type ExportRow struct {
	ProfileID       string
	ClientID        string
	ShareholderName string
	PANNumber       string
	AadhaarNumber   string
	Address         string
	Email           string
	Mobile          string
	BankName        string
	BankAccount     string
	IFSCCode        string
	DematAccount    string
	Status          string
	TotalCompanies  int
	Companies       string
	ISINs           string
	TotalQuantity   int64
	ReviewSummary   string
	Remarks         string
}

// NewExportRow projects p. It does not modify p.
func NewExportRow(p *ClientProfile) ExportRow {
	names := make([]string, 0, len(p.Companies))
	isins := make([]string, 0, len(p.Companies))
	var qty int64
	for _, h := range p.Companies {
		names = append(names, h.CompanyName)
		isins = append(isins, h.ISINNumber)
		qty += h.Quantity
	}

	return ExportRow{
		ProfileID:       p.ID.String(),
		ClientID:        p.ClientID,
		ShareholderName: p.ShareholderName.Full(),
		PANNumber:       p.PANNumber,
		AadhaarNumber:   p.AadhaarNumber,
		Address:         p.Address.String(),
		Email:           p.EmailID,
		Mobile:          p.MobileNumber,
		BankName:        p.BankDetails.BankName,
		BankAccount:     p.BankDetails.AccountNumber,
		IFSCCode:        p.BankDetails.IFSCCode,
		DematAccount:    p.DematAccountNumber,
		Status:          string(p.Status),
		TotalCompanies:  len(p.Companies),
		Companies:       pstrings.JoinNonEmpty("; ", names...),
		ISINs:           pstrings.JoinNonEmpty("; ", isins...),
		TotalQuantity:   qty,
		ReviewSummary:   ComputeReviewStats(p.Companies).Summary(),
		Remarks:         p.Remarks,
	}
}

// Values returns the row's cells in ExportColumns order.
func (r ExportRow) Values() []string {
	return []string{
		r.ProfileID,
		r.ClientID,
		r.ShareholderName,
		r.PANNumber,
		r.AadhaarNumber,
		r.Address,
		r.Email,
		r.Mobile,
		r.BankName,
		r.BankAccount,
		r.IFSCCode,
		r.DematAccount,
		r.Status,
		strconv.Itoa(r.TotalCompanies),
		r.Companies,
		r.ISINs,
		strconv.FormatInt(r.TotalQuantity, 10),
		r.ReviewSummary,
		r.Remarks,
	}
}

// Summary renders the non-zero counts, e.g. "approved: 2, pending: 1".
func (s ReviewStats) Summary() string {
	parts := make([]string, 0, 4)
	for _, c := range []struct {
		label string
		n     int
	}{
		{string(ReviewApproved), s.Approved},
		{string(ReviewPending), s.Pending},
		{string(ReviewRejected), s.Rejected},
		{string(ReviewNeedsAttention), s.NeedsAttention},
	} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", c.label, c.n))
		}
	}
	return strings.Join(parts, ", ")
}
