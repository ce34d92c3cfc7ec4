package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses       uint64
	LoginFailures        uint64
	GuardAllowed         uint64
	GuardRedirected      uint64
	GuardDenied          uint64
	GuardDurationCount   uint64
	GuardDurationTotalNs int64
	RecipesCreated       uint64
	RecipesUpdated       uint64
	RecipesDeleted       uint64
	UpstreamErrors       uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses       uint64
	loginFailures        uint64
	guardAllowed         uint64
	guardRedirected      uint64
	guardDenied          uint64
	guardDurationCount   uint64
	guardDurationTotalNs int64
	recipesCreated       uint64
	recipesUpdated       uint64
	recipesDeleted       uint64
	upstreamErrors       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:       atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:        atomic.LoadUint64(&m.loginFailures),
		GuardAllowed:         atomic.LoadUint64(&m.guardAllowed),
		GuardRedirected:      atomic.LoadUint64(&m.guardRedirected),
		GuardDenied:          atomic.LoadUint64(&m.guardDenied),
		GuardDurationCount:   atomic.LoadUint64(&m.guardDurationCount),
		GuardDurationTotalNs: atomic.LoadInt64(&m.guardDurationTotalNs),
		RecipesCreated:       atomic.LoadUint64(&m.recipesCreated),
		RecipesUpdated:       atomic.LoadUint64(&m.recipesUpdated),
		RecipesDeleted:       atomic.LoadUint64(&m.recipesDeleted),
		UpstreamErrors:       atomic.LoadUint64(&m.upstreamErrors),
	}
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncGuardDecision increments the counter for a guard decision.
func (m *InMemoryRecorder) IncGuardDecision(decision string) {
	switch decision {
	case DecisionAllowed:
		atomic.AddUint64(&m.guardAllowed, 1)
	case DecisionRedirected:
		atomic.AddUint64(&m.guardRedirected, 1)
	case DecisionDenied:
		atomic.AddUint64(&m.guardDenied, 1)
	}
}

// ObserveGuardDuration records guard processing latency.
func (m *InMemoryRecorder) ObserveGuardDuration(duration time.Duration) {
	atomic.AddUint64(&m.guardDurationCount, 1)
	atomic.AddInt64(&m.guardDurationTotalNs, duration.Nanoseconds())
}

// IncRecipeCreated increments the recipe created counter.
func (m *InMemoryRecorder) IncRecipeCreated() {
	atomic.AddUint64(&m.recipesCreated, 1)
}

// IncRecipeUpdated increments the recipe updated counter.
func (m *InMemoryRecorder) IncRecipeUpdated() {
	atomic.AddUint64(&m.recipesUpdated, 1)
}

// IncRecipeDeleted increments the recipe deleted counter.
func (m *InMemoryRecorder) IncRecipeDeleted() {
	atomic.AddUint64(&m.recipesDeleted, 1)
}

// IncUpstreamError increments the upstream failure counter.
func (m *InMemoryRecorder) IncUpstreamError() {
	atomic.AddUint64(&m.upstreamErrors, 1)
}
