package model

import (
	"time"

	"github.com/google/uuid"
)

// EntitlementModel mirrors the 'entitlements' table. Each identity owns exactly
// one row, so identity_id doubles as the primary key. The usage columns are
// mutated through conditional UPDATEs only; see the entitlement repository.
type EntitlementModel struct {
	IdentityID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Tier           string    `gorm:"type:varchar(20);not null;default:'free';check:tier IN ('free','plus','premium')"`
	TierExpiresAt  *time.Time
	ArticlesRead   int       `gorm:"not null;default:0"`
	UsageResetAt   time.Time `gorm:"not null;default:now()"`
	LastActivityAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (EntitlementModel) TableName() string {
	return "entitlements"
}

// PaymentModel mirrors the 'payments' table. Rows are append-only.
type PaymentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;index"`
	Tier       string    `gorm:"type:varchar(20);not null"`
	AmountTWD  int       `gorm:"column:amount_twd;not null"`
	Reference  string    `gorm:"type:varchar(100)"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}
