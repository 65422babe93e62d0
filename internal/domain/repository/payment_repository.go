package repository

import (
	"context"

	"kiosk/internal/domain/entity"

	"github.com/google/uuid"
)

// PaymentRepository defines the operations for payment history persistence.
// Payment rows are append-only.
type PaymentRepository interface {
	// Create persists a new payment record.
	Create(ctx context.Context, payment *entity.Payment) error

	// ListByIdentity retrieves the payment history for an identity, newest first.
	ListByIdentity(ctx context.Context, identityID uuid.UUID) ([]*entity.Payment, error)
}
