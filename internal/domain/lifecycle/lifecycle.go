// Package lifecycle holds shared timeouts for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown work (pings, graceful drains)
// performed inside fx OnStart/OnStop hooks.
const DefaultTimeout = 10 * time.Second
