package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"officescheduler/utils"
)

// HealthJob refreshes the health snapshot served on /health.
func HealthJob(m *utils.HealthMonitor, spec string, logger *zap.Logger) Job {
	return Job{
		Name: "health",
		Spec: spec,
		Run: func(ctx context.Context) {
			if st := m.Refresh(ctx); !m.Healthy() {
				logger.Warn("dependency check failed", zap.Any("checks", st.Checks))
			}
		},
	}
}

// Sweeper is anything that can drop state older than a cutoff.
type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// SessionSweepJob drops in-memory sessions idle for longer than ttl.
func SessionSweepJob(s Sweeper, ttl time.Duration, spec string, logger *zap.Logger) Job {
	return Job{
		Name: "session-sweep",
		Spec: spec,
		Run: func(context.Context) {
			if n := s.Sweep(time.Now().Add(-ttl)); n > 0 {
				logger.Info("expired sessions removed", zap.Int("count", n))
			}
		},
	}
}

// IdleSweeper forgets entries idle for longer than a duration.
type IdleSweeper interface {
	Sweep(idle time.Duration) int
}

// LimiterSweepJob drops rate limiter buckets of clients gone quiet.
func LimiterSweepJob(s IdleSweeper, idle time.Duration, spec string) Job {
	return Job{
		Name: "limiter-sweep",
		Spec: spec,
		Run: func(context.Context) {
			s.Sweep(idle)
		},
	}
}
