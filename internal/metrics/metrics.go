// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Guard decision labels.
const (
	DecisionAllowed    = "allowed"
	DecisionRedirected = "redirected"
	DecisionDenied     = "denied"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncLoginSuccess()
	IncLoginFailure()

	// Access guard metrics
	IncGuardDecision(decision string) // decision: "allowed", "redirected", "denied"
	ObserveGuardDuration(duration time.Duration)

	// Recipe management metrics
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()

	// External news provider metrics
	IncUpstreamError()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
