package models

// ClientType distinguishes resident from non-resident account holders.
type ClientType string

const (
	ClientTypeResident    ClientType = "Resident"
	ClientTypeNonResident ClientType = "Non-Resident"
)

func (t ClientType) IsValid() bool {
	return t == ClientTypeResident || t == ClientTypeNonResident
}

type AccountCategory string

const (
	AccountCategoryBeneficiary AccountCategory = "Beneficiary"
	AccountCategoryOther       AccountCategory = "Other"
)

func (c AccountCategory) IsValid() bool {
	return c == AccountCategoryBeneficiary || c == AccountCategoryOther
}

type SubType string

const (
	SubTypeOrdinary SubType = "Ordinary"
	SubTypeOther    SubType = "Other"
)

func (s SubType) IsValid() bool {
	return s == SubTypeOrdinary || s == SubTypeOther
}

// ProfileStatus is the account-level status. It is independent of the
// per-holding review state.
type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "Active"
	ProfileStatusClosed    ProfileStatus = "Closed"
	ProfileStatusPending   ProfileStatus = "Pending"
	ProfileStatusSuspended ProfileStatus = "Suspended"
)

func (s ProfileStatus) IsValid() bool {
	switch s {
	case ProfileStatusActive, ProfileStatusClosed, ProfileStatusPending, ProfileStatusSuspended:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeSavings AccountType = "Savings"
	AccountTypeCurrent AccountType = "Current"
	AccountTypeOther   AccountType = "Other"
)

func (a AccountType) IsValid() bool {
	return a == AccountTypeSavings || a == AccountTypeCurrent || a == AccountTypeOther
}

// YesNo is a depository Y/N flag.
type YesNo string

const (
	Yes YesNo = "Y"
	No  YesNo = "N"
)

func (f YesNo) IsValid() bool {
	return f == Yes || f == No
}

type SMSFacility string

const (
	SMSAvailable    SMSFacility = "Available"
	SMSNotAvailable SMSFacility = "Not Available"
)

func (s SMSFacility) IsValid() bool {
	return s == SMSAvailable || s == SMSNotAvailable
}
