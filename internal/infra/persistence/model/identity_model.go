package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityModel mirrors the 'identities' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// Email is nullable because widget-created accounts have no email address.
type IdentityModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email       *string   `gorm:"type:varchar(255);unique"`
	Username    string    `gorm:"type:varchar(100);unique;not null"`
	DisplayName string    `gorm:"type:varchar(100)"`
	PhotoURL    string    `gorm:"type:text"`
	Role        string    `gorm:"type:varchar(20);not null;default:'user'"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Entitlement *EntitlementModel `gorm:"foreignKey:IdentityID"`
	Credentials []CredentialModel `gorm:"foreignKey:IdentityID"`
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}
