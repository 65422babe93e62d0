package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventModel mirrors the 'audit_events' table. The unique message_id
// column is what makes Pub/Sub push redeliveries idempotent.
type AuditEventModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	MessageID  string     `gorm:"type:varchar(255);unique;not null"`
	EventType  string     `gorm:"type:varchar(100);not null;index"`
	IdentityID *uuid.UUID `gorm:"type:uuid;index"`
	RequestID  string     `gorm:"type:varchar(100)"`
	Detail     string     `gorm:"type:jsonb"`
	OccurredAt time.Time  `gorm:"not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuditEventModel) TableName() string {
	return "audit_events"
}
