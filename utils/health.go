package utils

import (
	"context"
	"sort"
	"sync"
	"time"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Checks    map[string]bool `json:"checks"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// Checker checks one dependency.
type Checker func(ctx context.Context) error

// HealthMonitor keeps the latest snapshot of every registered check.
type HealthMonitor struct {
	checks  map[string]Checker
	timeout time.Duration

	mu      sync.RWMutex
	current HealthStatus
}

// NewHealthMonitor registers checks by name. Each check gets timeout.
func NewHealthMonitor(timeout time.Duration, checks map[string]Checker) *HealthMonitor {
	return &HealthMonitor{checks: checks, timeout: timeout}
}

// Refresh runs every check once and stores the result.
func (m *HealthMonitor) Refresh(ctx context.Context) HealthStatus {
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]bool, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		results[name] = m.checks[name](cctx) == nil
		cancel()
	}

	status := HealthStatus{Checks: results, CheckedAt: time.Now()}
	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Status returns latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Healthy reports whether every check passed on the last refresh.
func (m *HealthMonitor) Healthy() bool {
	st := m.Status()
	for _, ok := range st.Checks {
		if !ok {
			return false
		}
	}
	return true
}
