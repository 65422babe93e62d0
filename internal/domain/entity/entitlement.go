package entity

import (
	"time"

	"github.com/google/uuid"
)

// Entitlement represents the metered-access state of one account: the
// purchased tier, its expiry, and the daily usage counters. All tier and
// usage transitions are evaluated lazily at read time; nothing sweeps this
// state in the background.
type Entitlement struct {
	IdentityID     uuid.UUID  // Foreign Key that links this state to its Identity.
	Tier           Tier       // The purchased tier. The effective tier may differ once it expires.
	TierExpiresAt  *time.Time // When the purchased tier lapses back to free. Nil for the free tier.
	ArticlesRead   int        // Metered article reads consumed since the last daily reset.
	UsageResetAt   time.Time  // When the daily counters were last reset. Compared by UTC calendar date.
	LastActivityAt *time.Time // Timestamp of the most recent metered read; nil before the first one.
	CreatedAt      time.Time  // Timestamp of when this entitlement state was created.
	UpdatedAt      time.Time  // Timestamp of the last modification to this state.
}

// EffectiveTier resolves the tier that actually applies at the given instant.
// A purchased tier with an expiry in the past counts as free; the lapse takes
// effect the moment now passes TierExpiresAt, without any stored transition.
func (e *Entitlement) EffectiveTier(now time.Time) Tier {
	if e == nil {
		return TierFree
	}
	if e.TierExpiresAt != nil && now.After(*e.TierExpiresAt) {
		return TierFree
	}

	return e.Tier
}

// NeedsDailyReset reports whether the usage counters belong to an earlier UTC
// calendar day than now and must be zeroed before the next metered operation.
func (e *Entitlement) NeedsDailyReset(now time.Time) bool {
	if e == nil {
		return false
	}
	lastY, lastM, lastD := e.UsageResetAt.UTC().Date()
	nowY, nowM, nowD := now.UTC().Date()

	return lastY != nowY || lastM != nowM || lastD != nowD
}

// Payment records one completed tier purchase. Rows are append-only; the
// payment reference comes from the external payment provider.
type Payment struct {
	ID         uuid.UUID // The unique ID for this payment record.
	IdentityID uuid.UUID // The account the purchase belongs to.
	Tier       Tier      // The tier that was purchased.
	AmountTWD  int       // Amount charged, fixed by the tier catalog at purchase time.
	Reference  string    // External payment provider reference.
	CreatedAt  time.Time // Timestamp of when the payment was recorded.
}
