// Package delivery defines the shared contract for serving surfaces.
// Both the API server and the audit worker implement it and are collected
// into the fx "deliveries" group.
package delivery

import "context"

// Delivery is a long-running serving surface started by the composition root.
type Delivery interface {
	// Serve blocks until the surface stops or fails.
	Serve(ctx context.Context) error
}
