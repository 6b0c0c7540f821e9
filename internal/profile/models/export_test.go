package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "shareregistry/pkg/domain"
)

func TestNewExportRow(t *testing.T) {
	p := &ClientProfile{
		ID:              id.NewProfileID(),
		ClientID:        "C-7",
		ShareholderName: ShareholderName{Name1: "Asha", Name3: "Rao"},
		PANNumber:       "ABCDE1234F",
		Address:         Address{Line1: "12 MG Road", City: "Pune", Country: "India"},
		BankDetails:     BankDetails{BankName: "HDFC", AccountNumber: "0012", IFSCCode: "HDFC0000001"},
		Status:          ProfileStatusActive,
		Companies: []ShareHolding{
			{CompanyName: "Infosys", ISINNumber: "INE009A01021", Quantity: 10, Review: Review{Status: ReviewApproved}},
			{CompanyName: "TCS", ISINNumber: "INE467B01029", Quantity: 5, Review: Review{Status: ReviewPending}},
		},
	}
	before := p.Clone()

	row := NewExportRow(p)

	assert.Equal(t, p, before, "projection must not mutate the profile")
	assert.Equal(t, "Asha Rao", row.ShareholderName)
	assert.Equal(t, "12 MG Road, Pune", row.Address)
	assert.Equal(t, 2, row.TotalCompanies)
	assert.Equal(t, "Infosys; TCS", row.Companies)
	assert.Equal(t, "INE009A01021; INE467B01029", row.ISINs)
	assert.Equal(t, int64(15), row.TotalQuantity)
	assert.Equal(t, "approved: 1, pending: 1", row.ReviewSummary)

	values := row.Values()
	require.Len(t, values, len(ExportColumns))
	assert.Equal(t, p.ID.String(), values[0])
	assert.Equal(t, "2", values[13])
	assert.Equal(t, "15", values[16])
}

func TestNewExportRowWithoutHoldings(t *testing.T) {
	row := NewExportRow(&ClientProfile{ClientID: "C-1"})
	assert.Equal(t, 0, row.TotalCompanies)
	assert.Empty(t, row.Companies)
	assert.Empty(t, row.ReviewSummary)
}
