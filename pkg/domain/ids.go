// Package domain holds typed identifiers shared across bounded contexts.
//
// Each identifier wraps a UUID in its own named type so a ProfileID can never be
// passed where a UserID is expected. Parse* functions are the trust boundary:
// they reject empty, malformed and nil UUIDs with CodeInvalidInput.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "shareregistry/pkg/domain-errors"
)

type (
	// ProfileID identifies a client profile document.
	ProfileID uuid.UUID
	// HoldingID identifies one shareholding line inside a profile.
	HoldingID uuid.UUID
	// UserID identifies a login account.
	UserID uuid.UUID
)

func NewProfileID() ProfileID { return ProfileID(uuid.New()) }
func NewHoldingID() HoldingID { return HoldingID(uuid.New()) }
func NewUserID() UserID       { return UserID(uuid.New()) }

func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile ID")
	return ProfileID(u), err
}

func ParseHoldingID(s string) (HoldingID, error) {
	u, err := parseUUID(s, "holding ID")
	return HoldingID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user ID")
	return UserID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("invalid %s", label))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be nil")
	}
	return u, nil
}

func (id ProfileID) String() string { return uuid.UUID(id).String() }
func (id ProfileID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ProfileID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText accepts an empty string as the nil ID; request bodies may
// carry a blank server-owned id.
func (id *ProfileID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ProfileID(uuid.Nil)
		return nil
	}
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id HoldingID) String() string { return uuid.UUID(id).String() }
func (id HoldingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id HoldingID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText accepts an empty string as the nil ID so clients may omit
// holding ids when sending new rows.
func (id *HoldingID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = HoldingID(uuid.Nil)
		return nil
	}
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
