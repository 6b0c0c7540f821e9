package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	id "shareregistry/pkg/domain"
	dErrors "shareregistry/pkg/domain-errors"
	pstrings "shareregistry/pkg/platform/strings"
)

func init() {
	// faceValue and dividend amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Defaults applied to fields the caller leaves empty.
const (
	DefaultCountry = "India"
	DefaultDPID    = "IN300095"
	DefaultDPName  = "ILAFS SECURITIES SERVICES LIMITED"
	DefaultPANFlag = "Not Verified"
)

// ShareholderName holds up to three name parts plus the father's or spouse's name.
type ShareholderName struct {
	Name1              string `json:"name1"`
	Name2              string `json:"name2"`
	Name3              string `json:"name3"`
	FatherOrSpouseName string `json:"fatherOrSpouseName"`
}

// Full joins the non-empty name parts with single spaces.
func (n ShareholderName) Full() string {
	return pstrings.JoinNonEmpty(" ", n.Name1, n.Name2, n.Name3)
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

func (a Address) String() string {
	return pstrings.JoinNonEmpty(", ", a.Line1, a.Line2, a.City, a.State, a.Pincode)
}

type BankDetails struct {
	AccountNumber string      `json:"accountNumber"`
	AccountType   AccountType `json:"accountType"`
	BankName      string      `json:"bankName"`
	BranchCode    string      `json:"branchCode"`
	IFSCCode      string      `json:"ifscCode"`
	MICRCode      string      `json:"micrCode"`
	BankAddress   string      `json:"bankAddress"`
	LEINumber     string      `json:"leiNumber"`
}

type Nominee struct {
	Name         string `json:"name"`
	PAN          string `json:"pan"`
	Address      string `json:"address"`
	Pincode      string `json:"pincode"`
	Aadhaar      string `json:"aadhaar"`
	EmailID      string `json:"emailId"`
	Relationship string `json:"relationship"`
}

type Dividend struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *Date           `json:"date,omitempty"`
}

// ClientProfile is the aggregate root: one client's KYC record and holdings.
//
// Invariants:
//   - ClientID, ShareholderName.Name1 and PANNumber are non-empty
//   - ClientID is unique across profiles (enforced by the store)
//   - every holding carries a review; a review's stamp fields change only
//     through an explicit review save
//   - the holdings array is stored and replaced atomically with the profile
type ClientProfile struct {
	ID       id.ProfileID `json:"id"`
	ClientID string       `json:"clientId"`

	ClientType      ClientType      `json:"clientType"`
	AccountCategory AccountCategory `json:"accountCategory"`
	SubType         SubType         `json:"subType"`
	Status          ProfileStatus   `json:"status"`

	ShareholderName ShareholderName `json:"shareholderName"`
	ShortName       string          `json:"shortName"`
	PANNumber       string          `json:"panNumber"`
	PANFlag         string          `json:"panFlag"`
	AadhaarNumber   string          `json:"aadhaarNumber"`
	Occupation      string          `json:"occupation"`
	Address         Address         `json:"address"`
	MobileNumber    string          `json:"mobileNumber"`
	EmailID         string          `json:"emailId"`

	BankDetails BankDetails `json:"bankDetails"`
	Nominee     Nominee     `json:"nominee"`

	DematAccountNumber    string `json:"dematAccountNumber"`
	DPID                  string `json:"dpId"`
	DPName                string `json:"dpName"`
	AccountActivationDate *Date  `json:"accountActivationDate,omitempty"`
	StatusChangeReason    string `json:"statusChangeReason"`
	StatusChangeDate      *Date  `json:"statusChangeDate,omitempty"`

	StandingInstruction YesNo       `json:"standingInstruction"`
	EDISFlag            YesNo       `json:"eDisFlag"`
	SMSFacility         SMSFacility `json:"smsFacility"`

	GrossAnnualIncomeRange string `json:"grossAnnualIncomeRange"`
	NetWorth               string `json:"netWorth"`
	NetWorthAsOnDate       *Date  `json:"netWorthAsOnDate,omitempty"`

	Companies []ShareHolding `json:"companies"`

	Remarks   string    `json:"remarks"`
	Dividend  Dividend  `json:"dividend"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims free text and upper-cases identifiers (PAN, IFSC, ISIN,
// nominee PAN) so stored values and search input compare consistently.
func (p *ClientProfile) Normalize() {
	p.ClientID = strings.TrimSpace(p.ClientID)
	p.ClientType = ClientType(strings.TrimSpace(string(p.ClientType)))
	p.AccountCategory = AccountCategory(strings.TrimSpace(string(p.AccountCategory)))
	p.SubType = SubType(strings.TrimSpace(string(p.SubType)))
	p.Status = ProfileStatus(strings.TrimSpace(string(p.Status)))

	n := &p.ShareholderName
	n.Name1 = strings.TrimSpace(n.Name1)
	n.Name2 = strings.TrimSpace(n.Name2)
	n.Name3 = strings.TrimSpace(n.Name3)
	n.FatherOrSpouseName = strings.TrimSpace(n.FatherOrSpouseName)
	p.ShortName = strings.TrimSpace(p.ShortName)

	p.PANNumber = strings.ToUpper(strings.TrimSpace(p.PANNumber))
	p.AadhaarNumber = strings.ReplaceAll(strings.TrimSpace(p.AadhaarNumber), " ", "")
	p.Occupation = strings.TrimSpace(p.Occupation)
	p.MobileNumber = strings.TrimSpace(p.MobileNumber)
	p.EmailID = strings.TrimSpace(p.EmailID)

	a := &p.Address
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Country = strings.TrimSpace(a.Country)

	b := &p.BankDetails
	b.AccountNumber = strings.TrimSpace(b.AccountNumber)
	b.AccountType = AccountType(strings.TrimSpace(string(b.AccountType)))
	b.BankName = strings.TrimSpace(b.BankName)
	b.BranchCode = strings.TrimSpace(b.BranchCode)
	b.IFSCCode = strings.ToUpper(strings.TrimSpace(b.IFSCCode))
	b.MICRCode = strings.TrimSpace(b.MICRCode)
	b.BankAddress = strings.TrimSpace(b.BankAddress)
	b.LEINumber = strings.TrimSpace(b.LEINumber)

	nm := &p.Nominee
	nm.Name = strings.TrimSpace(nm.Name)
	nm.PAN = strings.ToUpper(strings.TrimSpace(nm.PAN))
	nm.Address = strings.TrimSpace(nm.Address)
	nm.Pincode = strings.TrimSpace(nm.Pincode)
	nm.Aadhaar = strings.ReplaceAll(strings.TrimSpace(nm.Aadhaar), " ", "")
	nm.EmailID = strings.TrimSpace(nm.EmailID)
	nm.Relationship = strings.TrimSpace(nm.Relationship)

	p.DematAccountNumber = strings.TrimSpace(p.DematAccountNumber)
	p.DPID = strings.TrimSpace(p.DPID)
	p.DPName = strings.TrimSpace(p.DPName)
	p.StatusChangeReason = strings.TrimSpace(p.StatusChangeReason)
	p.StandingInstruction = YesNo(strings.ToUpper(strings.TrimSpace(string(p.StandingInstruction))))
	p.EDISFlag = YesNo(strings.ToUpper(strings.TrimSpace(string(p.EDISFlag))))
	p.SMSFacility = SMSFacility(strings.TrimSpace(string(p.SMSFacility)))
	p.GrossAnnualIncomeRange = strings.TrimSpace(p.GrossAnnualIncomeRange)
	p.NetWorth = strings.TrimSpace(p.NetWorth)
	p.PANFlag = strings.TrimSpace(p.PANFlag)
	p.Remarks = strings.TrimSpace(p.Remarks)

	for i := range p.Companies {
		p.Companies[i].normalize()
	}
}

// ApplyDefaults fills enum and depository fields the caller left empty.
func (p *ClientProfile) ApplyDefaults() {
	if p.ClientType == "" {
		p.ClientType = ClientTypeResident
	}
	if p.AccountCategory == "" {
		p.AccountCategory = AccountCategoryBeneficiary
	}
	if p.SubType == "" {
		p.SubType = SubTypeOrdinary
	}
	if p.Status == "" {
		p.Status = ProfileStatusActive
	}
	if p.Address.Country == "" {
		p.Address.Country = DefaultCountry
	}
	if p.BankDetails.AccountType == "" {
		p.BankDetails.AccountType = AccountTypeSavings
	}
	if p.DPID == "" {
		p.DPID = DefaultDPID
	}
	if p.DPName == "" {
		p.DPName = DefaultDPName
	}
	if p.StandingInstruction == "" {
		p.StandingInstruction = No
	}
	if p.EDISFlag == "" {
		p.EDISFlag = No
	}
	if p.SMSFacility == "" {
		p.SMSFacility = SMSAvailable
	}
	if p.PANFlag == "" {
		p.PANFlag = DefaultPANFlag
	}
	if p.Companies == nil {
		p.Companies = []ShareHolding{}
	}
}

// Validate checks required fields and enum membership. It returns the first
// violation as a CodeValidation error naming the offending field.
func (p *ClientProfile) Validate() error {
	if p.ClientID == "" {
		return dErrors.NewField(dErrors.CodeValidation, "clientId", "client ID is required")
	}
	if p.ShareholderName.Name1 == "" {
		return dErrors.NewField(dErrors.CodeValidation, "shareholderName.name1", "shareholder name is required")
	}
	if p.PANNumber == "" {
		return dErrors.NewField(dErrors.CodeValidation, "panNumber", "PAN number is required")
	}
	if p.AadhaarNumber != "" && !isDigits(p.AadhaarNumber, 12) {
		return dErrors.NewField(dErrors.CodeValidation, "aadhaarNumber", "Aadhaar number must be at most 12 digits")
	}
	if p.Nominee.Aadhaar != "" && !isDigits(p.Nominee.Aadhaar, 12) {
		return dErrors.NewField(dErrors.CodeValidation, "nominee.aadhaar", "nominee Aadhaar must be at most 12 digits")
	}

	enums := []struct {
		field string
		set   bool
		valid bool
	}{
		{"clientType", p.ClientType != "", p.ClientType.IsValid()},
		{"accountCategory", p.AccountCategory != "", p.AccountCategory.IsValid()},
		{"subType", p.SubType != "", p.SubType.IsValid()},
		{"status", p.Status != "", p.Status.IsValid()},
		{"bankDetails.accountType", p.BankDetails.AccountType != "", p.BankDetails.AccountType.IsValid()},
		{"standingInstruction", p.StandingInstruction != "", p.StandingInstruction.IsValid()},
		{"eDisFlag", p.EDISFlag != "", p.EDISFlag.IsValid()},
		{"smsFacility", p.SMSFacility != "", p.SMSFacility.IsValid()},
	}
	for _, e := range enums {
		if e.set && !e.valid {
			return dErrors.NewField(dErrors.CodeValidation, e.field, e.field+" has an unsupported value")
		}
	}

	if p.Dividend.Amount.IsNegative() {
		return dErrors.NewField(dErrors.CodeValidation, "dividend.amount", "dividend amount must not be negative")
	}

	for i := range p.Companies {
		if err := p.Companies[i].validate(fmt.Sprintf("companies[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func isDigits(s string, maxLen int) bool {
	if len(s) > maxLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FindHolding resolves ref against the current holdings and returns its index.
// No match is NotFound; a pair that matches several holdings is a Conflict.
func (p *ClientProfile) FindHolding(ref HoldingRef) (int, error) {
	if !ref.ID.IsNil() {
		for i := range p.Companies {
			if p.Companies[i].ID == ref.ID {
				return i, nil
			}
		}
		return -1, dErrors.New(dErrors.CodeNotFound, "Company not found in the list")
	}

	companyName := strings.TrimSpace(ref.CompanyName)
	isin := strings.ToUpper(strings.TrimSpace(ref.ISINNumber))
	found := -1
	for i := range p.Companies {
		if !p.Companies[i].matches(companyName, isin) {
			continue
		}
		if found >= 0 {
			return -1, dErrors.New(dErrors.CodeConflict,
				"several holdings share this company name and ISIN; identify the holding by id")
		}
		found = i
	}
	if found < 0 {
		return -1, dErrors.New(dErrors.CodeNotFound, "Company not found in the list")
	}
	return found, nil
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p *ClientProfile) Clone() *ClientProfile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Companies != nil {
		c.Companies = make([]ShareHolding, len(p.Companies))
		copy(c.Companies, p.Companies)
		for i := range c.Companies {
			c.Companies[i].PurchaseDate = cloneDate(p.Companies[i].PurchaseDate)
			if at := p.Companies[i].Review.ReviewedAt; at != nil {
				t := *at
				c.Companies[i].Review.ReviewedAt = &t
			}
		}
	}
	c.AccountActivationDate = cloneDate(p.AccountActivationDate)
	c.StatusChangeDate = cloneDate(p.StatusChangeDate)
	c.NetWorthAsOnDate = cloneDate(p.NetWorthAsOnDate)
	c.Dividend.Date = cloneDate(p.Dividend.Date)
	return &c
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
