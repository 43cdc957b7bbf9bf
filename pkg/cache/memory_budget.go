// pkg/cache/memory_budget.go
// Package cache accounts for the memory held by page caches.
package cache

import (
	"sync"
)

// DefaultMemoryLimit is the default memory budget (256MB)
const DefaultMemoryLimit = int64(256 * 1024 * 1024)

// DefaultPressureThreshold is the default threshold for memory pressure (80%)
const DefaultPressureThreshold = 0.8

// PageCacheComponent is the component name pagers report their cache under.
const PageCacheComponent = "page_cache"

// Stats contains a snapshot of memory usage
type Stats struct {
	Limit           int64
	TotalUsage      int64
	ComponentUsage  map[string]int64
	IsUnderPressure bool
	IsExceeded      bool
}

// PressureCallback is called when usage crosses the pressure threshold
type PressureCallback func(currentUsage, limit int64)

// Budget tracks memory usage across components against a limit. It only
// accounts and signals; it never frees anything itself. Several pagers may
// share one Budget, so it is safe for concurrent use.
type Budget struct {
	mu                sync.RWMutex
	limit             int64
	pressureThreshold float64
	totalUsage        int64
	componentUsage    map[string]int64
	pressureCallback  PressureCallback
	wasUnderPressure  bool
}

// NewBudget creates a budget with the given limit in bytes.
// If limit is 0 or negative, DefaultMemoryLimit is used.
func NewBudget(limit int64) *Budget {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &Budget{
		limit:             limit,
		pressureThreshold: DefaultPressureThreshold,
		componentUsage:    make(map[string]int64),
	}
}

// Limit returns the current memory limit
func (b *Budget) Limit() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.limit
}

// SetPressureThreshold sets the fraction (0.0 to 1.0) of the limit at which
// pressure is signaled
func (b *Budget) SetPressureThreshold(threshold float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	b.pressureThreshold = threshold
}

// Track adds bytes to a component's usage
func (b *Budget) Track(component string, bytes int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.componentUsage[component] += bytes
	b.totalUsage += bytes
	b.checkPressure()
}

// Release removes bytes from a component's usage. Usage never goes negative.
func (b *Budget) Release(component string, bytes int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	usage := b.componentUsage[component]
	if bytes > usage {
		bytes = usage
	}
	b.componentUsage[component] -= bytes
	b.totalUsage -= bytes
	b.checkPressure()
}

// TotalUsage returns the usage across all components
func (b *Budget) TotalUsage() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalUsage
}

// ComponentUsage returns the usage of one component
func (b *Budget) ComponentUsage(component string) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.componentUsage[component]
}

// IsUnderPressure reports whether usage is at or above the pressure threshold
func (b *Budget) IsUnderPressure() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.underPressure()
}

// IsExceeded reports whether usage is above the limit
func (b *Budget) IsExceeded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalUsage > b.limit
}

// OnPressure registers a callback fired on each transition into pressure.
// The callback runs on its own goroutine.
func (b *Budget) OnPressure(callback PressureCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pressureCallback = callback
}

func (b *Budget) underPressure() bool {
	return float64(b.totalUsage) >= float64(b.limit)*b.pressureThreshold
}

// checkPressure must be called with b.mu held.
func (b *Budget) checkPressure() {
	if !b.underPressure() {
		b.wasUnderPressure = false
		return
	}
	if b.wasUnderPressure {
		return
	}
	b.wasUnderPressure = true
	if cb := b.pressureCallback; cb != nil {
		go cb(b.totalUsage, b.limit)
	}
}

// Stats returns a snapshot of the budget
func (b *Budget) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	usage := make(map[string]int64, len(b.componentUsage))
	for k, v := range b.componentUsage {
		usage[k] = v
	}
	return Stats{
		Limit:           b.limit,
		TotalUsage:      b.totalUsage,
		ComponentUsage:  usage,
		IsUnderPressure: b.underPressure(),
		IsExceeded:      b.totalUsage > b.limit,
	}
}
