package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "shareregistry/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to client records and accounts that a
	// registrar must be able to reconstruct later.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication outcomes and credential changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// UserID is the login account involved, when there is one.
	UserID id.UserID
	// Subject is the record acted on: a profile ID or a username.
	Subject string
	Action  string
	// Actor is the username performing the action; "system" for hooks and workers.
	Actor     string
	Reason    string
	RequestID string
	IP        string
	Device    string
}

type AuditEvent string

const (
	// Profile events
	EventProfileCreated  AuditEvent = "profile_created"
	EventProfileUpdated  AuditEvent = "profile_updated"
	EventProfileDeleted  AuditEvent = "profile_deleted"
	EventHoldingReviewed AuditEvent = "holding_reviewed"
	EventProfileExported AuditEvent = "profile_exported"

	// Credential events
	EventCredentialIssued         AuditEvent = "credential_issued"
	EventCredentialDeliveryFailed AuditEvent = "credential_delivery_failed"

	// Account events
	EventUserLoggedIn       AuditEvent = "user_logged_in"
	EventUserLoggedOut      AuditEvent = "user_logged_out"
	EventAuthFailed         AuditEvent = "auth_failed"
	EventAuthLockout        AuditEvent = "auth_lockout_triggered"
	EventPasswordChanged    AuditEvent = "password_changed"
	EventPasswordReset      AuditEvent = "password_reset"
	EventPasswordResetEmail AuditEvent = "password_reset_requested"
	EventUserUpdated        AuditEvent = "user_updated"
	EventUserDeactivated    AuditEvent = "user_deactivated"
	EventAdminBootstrapped  AuditEvent = "admin_bootstrapped"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventProfileCreated:  CategoryCompliance,
	EventProfileUpdated:  CategoryCompliance,
	EventProfileDeleted:  CategoryCompliance,
	EventHoldingReviewed: CategoryCompliance,
	EventUserDeactivated: CategoryCompliance,
	EventUserUpdated:     CategoryCompliance,

	EventAuthFailed:         CategorySecurity,
	EventAuthLockout:        CategorySecurity,
	EventPasswordChanged:    CategorySecurity,
	EventPasswordReset:      CategorySecurity,
	EventPasswordResetEmail: CategorySecurity,
	EventCredentialIssued:   CategorySecurity,
	EventAdminBootstrapped:  CategorySecurity,

	EventUserLoggedIn:             CategoryOperations,
	EventUserLoggedOut:            CategoryOperations,
	EventProfileExported:          CategoryOperations,
	EventCredentialDeliveryFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives audit events. Kafka and database stores both implement it.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable Sink.
type Store interface {
	Sink
	ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
