// Package constants defines shared constant values used across layers.
package constants

// Runtime environment names, matched against cfg.Env.Env.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider names, matched against cfg.PubSub.Provider.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
