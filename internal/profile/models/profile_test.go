package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
)

type ProfileSuite struct {
	suite.Suite
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}

func validProfile() *ClientProfile {
	return &ClientProfile{
		ClientID:        "C-1001",
		ShareholderName: ShareholderName{Name1: "Asha Rao"},
		PANNumber:       "ABCDE1234F",
		Companies: []ShareHolding{
			{CompanyName: "Infosys", ISINNumber: "INE009A01021", Quantity: 10, FaceValue: decimal.NewFromInt(5)},
		},
	}
}

func (s *ProfileSuite) TestNormalize() {
	p := &ClientProfile{
		ClientID:        "  C-1  ",
		ShareholderName: ShareholderName{Name1: "  Asha  "},
		PANNumber:       " abcde1234f ",
		AadhaarNumber:   "1234 5678 9012",
		BankDetails:     BankDetails{IFSCCode: "hdfc0001234"},
		Nominee:         Nominee{PAN: "pqrst9876z"},
		Companies:       []ShareHolding{{CompanyName: " TCS ", ISINNumber: " ine467b01029 ", Review: Review{Status: " Approved "}}},
	}
	p.Normalize()

	s.Equal("C-1", p.ClientID)
	s.Equal("Asha", p.ShareholderName.Name1)
	s.Equal("ABCDE1234F", p.PANNumber)
	s.Equal("123456789012", p.AadhaarNumber)
	s.Equal("HDFC0001234", p.BankDetails.IFSCCode)
	s.Equal("PQRST9876Z", p.Nominee.PAN)
	s.Equal("TCS", p.Companies[0].CompanyName)
	s.Equal("INE467B01029", p.Companies[0].ISINNumber)
	s.Equal(ReviewApproved, p.Companies[0].Review.Status)
}

func (s *ProfileSuite) TestApplyDefaults() {
	p := &ClientProfile{}
	p.ApplyDefaults()

	s.Equal(ClientTypeResident, p.ClientType)
	s.Equal(AccountCategoryBeneficiary, p.AccountCategory)
	s.Equal(SubTypeOrdinary, p.SubType)
	s.Equal(ProfileStatusActive, p.Status)
	s.Equal(DefaultCountry, p.Address.Country)
	s.Equal(AccountTypeSavings, p.BankDetails.AccountType)
	s.Equal(DefaultDPID, p.DPID)
	s.Equal(DefaultDPName, p.DPName)
	s.Equal(No, p.StandingInstruction)
	s.Equal(SMSAvailable, p.SMSFacility)
	s.NotNil(p.Companies)

	p = &ClientProfile{Status: ProfileStatusClosed, DPID: "IN999"}
	p.ApplyDefaults()
	s.Equal(ProfileStatusClosed, p.Status)
	s.Equal("IN999", p.DPID)
}

func (s *ProfileSuite) TestValidate() {
	s.Run("valid profile passes", func() {
		s.NoError(validProfile().Validate())
	})

	cases := []struct {
		name   string
		mutate func(*ClientProfile)
		field  string
	}{
		{"missing client id", func(p *ClientProfile) { p.ClientID = "" }, "clientId"},
		{"missing name1", func(p *ClientProfile) { p.ShareholderName.Name1 = "" }, "shareholderName.name1"},
		{"missing pan", func(p *ClientProfile) { p.PANNumber = "" }, "panNumber"},
		{"aadhaar too long", func(p *ClientProfile) { p.AadhaarNumber = "1234567890123" }, "aadhaarNumber"},
		{"aadhaar not digits", func(p *ClientProfile) { p.AadhaarNumber = "12ab" }, "aadhaarNumber"},
		{"unknown status", func(p *ClientProfile) { p.Status = "Dormant" }, "status"},
		{"unknown account type", func(p *ClientProfile) { p.BankDetails.AccountType = "Joint" }, "bankDetails.accountType"},
		{"holding without company", func(p *ClientProfile) { p.Companies[0].CompanyName = "" }, "companies[0].companyName"},
		{"holding without isin", func(p *ClientProfile) { p.Companies[0].ISINNumber = "" }, "companies[0].isinNumber"},
		{"negative quantity", func(p *ClientProfile) { p.Companies[0].Quantity = -1 }, "companies[0].quantity"},
		{"negative face value", func(p *ClientProfile) { p.Companies[0].FaceValue = decimal.NewFromInt(-1) }, "companies[0].faceValue"},
		{"bad review status", func(p *ClientProfile) { p.Companies[0].Review.Status = "done" }, "companies[0].review.status"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			p := validProfile()
			tc.mutate(p)
			err := p.Validate()
			s.Require().Error(err)
			de, ok := dErrors.As(err)
			s.Require().True(ok)
			s.Equal(dErrors.CodeValidation, de.Code)
			s.Equal(tc.field, de.Field)
		})
	}

	s.Run("zero holdings are allowed", func() {
		p := validProfile()
		p.Companies = nil
		s.NoError(p.Validate())
	})
}

func (s *ProfileSuite) TestFindHolding() {
	h1 := ShareHolding{ID: id.NewHoldingID(), CompanyName: "Infosys", ISINNumber: "INE009A01021"}
	h2 := ShareHolding{ID: id.NewHoldingID(), CompanyName: "TCS", ISINNumber: "INE467B01029"}
	p := &ClientProfile{Companies: []ShareHolding{h1, h2}}

	s.Run("by id", func() {
		idx, err := p.FindHolding(HoldingRef{ID: h2.ID})
		s.Require().NoError(err)
		s.Equal(1, idx)
	})

	s.Run("by normalized pair", func() {
		idx, err := p.FindHolding(HoldingRef{CompanyName: " TCS ", ISINNumber: "ine467b01029"})
		s.Require().NoError(err)
		s.Equal(1, idx)
	})

	s.Run("unknown pair is not found", func() {
		_, err := p.FindHolding(HoldingRef{CompanyName: "Wipro", ISINNumber: "INE075A01022"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "Company not found in the list")
	})

	s.Run("unknown id is not found", func() {
		_, err := p.FindHolding(HoldingRef{ID: id.NewHoldingID()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("duplicate pair is ambiguous", func() {
		dup := &ClientProfile{Companies: []ShareHolding{h1, h2, {ID: id.NewHoldingID(), CompanyName: "Infosys", ISINNumber: "INE009A01021"}}}
		_, err := dup.FindHolding(HoldingRef{CompanyName: "Infosys", ISINNumber: "INE009A01021"})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		idx, err := dup.FindHolding(HoldingRef{ID: dup.Companies[2].ID})
		s.Require().NoError(err)
		s.Equal(2, idx)
	})
}

func (s *ProfileSuite) TestCloneIsDeep() {
	p := validProfile()
	d := NewDate(mustParseTime(s.T(), "2024-03-01T10:00:00Z"))
	p.Companies[0].PurchaseDate = &d

	c := p.Clone()
	c.Companies[0].CompanyName = "Changed"
	c.Companies[0].PurchaseDate.Time = c.Companies[0].PurchaseDate.AddDate(1, 0, 0)

	s.Equal("Infosys", p.Companies[0].CompanyName)
	s.Equal("2024-03-01", p.Companies[0].PurchaseDate.String())
}

func TestProfileJSONShape(t *testing.T) {
	p := validProfile()
	p.ID = id.NewProfileID()
	p.ApplyDefaults()
	PrepareNewHoldings(p.Companies)

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "C-1001", doc["clientId"])
	assert.Equal(t, "ABCDE1234F", doc["panNumber"])

	companies := doc["companies"].([]any)
	require.Len(t, companies, 1)
	holding := companies[0].(map[string]any)
	assert.Equal(t, float64(5), holding["faceValue"], "face value is a JSON number")
	review := holding["review"].(map[string]any)
	assert.Equal(t, "pending", review["status"])
	assert.Nil(t, review["reviewedAt"])
	assert.Equal(t, "", review["reviewedBy"])

	var back ClientProfile
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Companies[0].FaceValue.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, p.Companies[0].ID, back.Companies[0].ID)
}
