package entity

// UnlimitedLimit marks a numeric tier limit as unbounded.
const UnlimitedLimit = -1

// Tier identifies a subscription tier in the catalog.
type Tier string

const (
	// TierFree is the default tier every account starts on and falls back to.
	TierFree Tier = "free"
	// TierPlus is the entry paid tier.
	TierPlus Tier = "plus"
	// TierPremium is the top paid tier.
	TierPremium Tier = "premium"
)

// String returns the string representation of the Tier.
func (t Tier) String() string {
	return string(t)
}

// TierLimits holds the per-tier feature limits. Numeric limits use
// UnlimitedLimit (-1) to mean "no cap".
type TierLimits struct {
	ArticlesPerDay     int  `json:"articles_per_day"`     // Metered article reads per UTC day.
	SavedArticles      int  `json:"saved_articles"`       // Maximum entries in the saved-article list.
	HistoryDays        int  `json:"history_days"`         // How far back the reading history reaches.
	AISummaries        int  `json:"ai_summaries"`         // AI article summaries per UTC day.
	EarlyAccessMinutes int  `json:"early_access_minutes"` // Head start on embargoed articles.
	APIAccess          bool `json:"api_access"`           // Whether the public API may be used with this account.
}

// TierSpec is one catalog entry: a purchasable (or default) tier with its
// display name, monthly price and limits.
type TierSpec struct {
	ID         Tier       `json:"id"`          // Stable tier identifier used in upgrade requests and tokens.
	Name       string     `json:"name"`        // Display name shown to readers.
	PriceMonth int        `json:"price_month"` // Monthly price in TWD. Zero for the free tier.
	Limits     TierLimits `json:"limits"`      // Feature limits granted by this tier.
}

// DefaultTierCatalog returns the process-wide tier table, ordered from free
// to premium. It is built once at startup and passed into the entitlement
// service; nothing mutates it afterwards.
func DefaultTierCatalog() []TierSpec {
	return []TierSpec{
		{
			ID:         TierFree,
			Name:       "免費方案",
			PriceMonth: 0,
			Limits: TierLimits{
				ArticlesPerDay:     10,
				SavedArticles:      20,
				HistoryDays:        7,
				AISummaries:        0,
				EarlyAccessMinutes: 0,
				APIAccess:          false,
			},
		},
		{
			ID:         TierPlus,
			Name:       "進階方案",
			PriceMonth: 120,
			Limits: TierLimits{
				ArticlesPerDay:     50,
				SavedArticles:      200,
				HistoryDays:        30,
				AISummaries:        10,
				EarlyAccessMinutes: 0,
				APIAccess:          false,
			},
		},
		{
			ID:         TierPremium,
			Name:       "尊榮方案",
			PriceMonth: 300,
			Limits: TierLimits{
				ArticlesPerDay:     UnlimitedLimit,
				SavedArticles:      UnlimitedLimit,
				HistoryDays:        365,
				AISummaries:        UnlimitedLimit,
				EarlyAccessMinutes: 30,
				APIAccess:          true,
			},
		},
	}
}
