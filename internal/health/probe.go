// Package health runs liveness and readiness probes against the service's
// backing dependencies.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

type CheckerFunc func(ctx context.Context) CheckResult

func (f CheckerFunc) Check(ctx context.Context) CheckResult { return f(ctx) }

// ProbeRunner evaluates a set of dependency checkers. A background refresh
// loop keeps a cached snapshot warm; Ready falls back to an on-demand
// evaluation when no fresh snapshot exists yet.
type ProbeRunner struct {
	interval time.Duration
	timeout  time.Duration
	checkers []Checker

	mu       sync.RWMutex
	snapshot []CheckResult
	taken    time.Time
}

func NewProbeRunner(interval, timeout time.Duration, checkers ...Checker) *ProbeRunner {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &ProbeRunner{interval: interval, timeout: timeout, checkers: checkers}
}

// Run refreshes the snapshot at the configured interval until ctx is done.
func (p *ProbeRunner) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

// Ready reports whether every dependency check passed, together with the
// per-check results.
func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	p.mu.RLock()
	snapshot := p.snapshot
	taken := p.taken
	p.mu.RUnlock()

	if snapshot == nil || time.Since(taken) > 2*p.interval {
		snapshot = p.evaluate(ctx)
	}

	for _, res := range snapshot {
		if !res.Healthy {
			return false, snapshot
		}
	}
	return true, snapshot
}

func (p *ProbeRunner) refresh(ctx context.Context) {
	results := p.evaluate(ctx)
	p.mu.Lock()
	p.snapshot = results
	p.taken = time.Now()
	p.mu.Unlock()
}

func (p *ProbeRunner) evaluate(ctx context.Context) []CheckResult {
	results := make([]CheckResult, 0, len(p.checkers))
	for _, checker := range p.checkers {
		checkCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			checkCtx, cancel = context.WithTimeout(ctx, p.timeout)
			results = append(results, checker.Check(checkCtx))
			cancel()
			continue
		}
		results = append(results, checker.Check(checkCtx))
	}
	return results
}

// NewGormChecker pings the underlying sql.DB of a gorm handle.
func NewGormChecker(name string, db *gorm.DB) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		sqlDB, err := db.DB()
		if err != nil {
			return CheckResult{Name: name, Healthy: false, Error: err.Error()}
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return CheckResult{Name: name, Healthy: false, Error: err.Error()}
		}
		return CheckResult{Name: name, Healthy: true}
	})
}

// NewRedisChecker pings the Redis backend used for token revocation and
// rate limiting.
func NewRedisChecker(name string, client redis.UniversalClient) Checker {
	return CheckerFunc(func(ctx context.Context) CheckResult {
		if err := client.Ping(ctx).Err(); err != nil {
			return CheckResult{Name: name, Healthy: false, Error: err.Error()}
		}
		return CheckResult{Name: name, Healthy: true}
	})
}
