// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the core entity in the system, representing a unique reader account.
// It carries identity data only; metered entitlement state lives in the Entitlement
// aggregate and is loaded alongside when a flow needs it.
type Identity struct {
	ID          uuid.UUID    // The Global Unique Identifier for the account.
	Email       string       // Login email for password accounts. Empty for widget-created accounts.
	Username    string       // Unique handle, also accepted as a login identifier.
	DisplayName string       // The reader's display name shown in the client.
	PhotoURL    string       // Avatar URL; a generated placeholder when the provider sends none.
	Role        Role         // Account role. Admin is granted only at creation time.
	Entitlement *Entitlement // Entitlement state for this account. Nil when not loaded.
	LastLoginAt *time.Time   // Timestamp of the most recent successful login; nil before the first one.
	CreatedAt   time.Time    // Timestamp of when this account was created.
	UpdatedAt   time.Time    // Timestamp of the last modification to this account's data.
}
