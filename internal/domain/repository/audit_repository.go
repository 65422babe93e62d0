package repository

import (
	"context"

	"kiosk/internal/domain/entity"
)

// AuditRepository defines the operations for the persisted audit trail.
// It is written by the audit worker, not by the API.
type AuditRepository interface {
	// Create persists an audit record. Writing the same Pub/Sub message ID
	// twice is a no-op, which keeps push redeliveries idempotent.
	Create(ctx context.Context, record *entity.AuditRecord) error
}
