package service

import (
	"context"
	"time"
)

// AuditEvent represents an identity or entitlement event to be processed by the audit worker
type AuditEvent struct {
	RequestID  string         `json:"request_id,omitempty"` // For distributed tracing
	Type       string         `json:"type"`                 // One of the entity.Audit* event types
	IdentityID string         `json:"identity_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Detail     map[string]any `json:"detail,omitempty"` // Event-specific payload (tier, limits, provider)
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAuditEvent publishes an audit event for async processing
	PublishAuditEvent(ctx context.Context, event *AuditEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
