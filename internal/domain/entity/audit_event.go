// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Audit event types recorded for identity and entitlement activity.
const (
	AuditIdentityRegistered = "identity.registered"
	AuditIdentityLoggedIn   = "identity.logged_in"
	AuditTelegramLogin      = "identity.telegram_login"
	AuditTierUpgraded       = "entitlement.tier_upgraded"
	AuditQuotaExceeded      = "entitlement.quota_exceeded"
)

// AuditRecord represents one persisted audit event. Records are written by the
// audit worker from Pub/Sub push deliveries; the message ID keeps redeliveries
// idempotent.
type AuditRecord struct {
	ID         uuid.UUID  `json:"id"`          // The Global Unique Identifier (GUID) for the record.
	MessageID  string     `json:"message_id"`  // Pub/Sub message ID, unique per delivery batch.
	EventType  string     `json:"event_type"`  // One of the Audit* event types.
	IdentityID *uuid.UUID `json:"identity_id"` // The account the event concerns, when known.
	RequestID  string     `json:"request_id"`  // Request ID propagated from the originating API call.
	Detail     string     `json:"detail"`      // Event detail payload as JSON.
	OccurredAt time.Time  `json:"occurred_at"` // When the event happened in the API.
	CreatedAt  time.Time  `json:"created_at"`  // Timestamp of when this record was persisted.
}
