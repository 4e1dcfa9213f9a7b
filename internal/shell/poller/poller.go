package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/buildvm/buildvm/internal/core/domain"
	"github.com/buildvm/buildvm/internal/shell/status"
)

// Checker reconciles one deployment's status. *status.Reconciler satisfies
// it; tests substitute fakes.
type Checker interface {
	Check(ctx context.Context, dep *domain.Deployment, opts status.Options) status.Result
}

// Update pairs a deployment with its refreshed status. Per-item errors ride
// inside the result so one bad row never aborts a whole refresh.
type Update struct {
	Deployment domain.Deployment
	Result     status.Result
}

// Config bounds the poller.
type Config struct {
	// Workers is the worker pool size. Default: 3.
	Workers int

	// CallsPerMinute is the shared API call budget. Default: 10.
	CallsPerMinute int

	// CacheTTL bounds how long a refreshed status is reused. Default:
	// DefaultCacheTTL.
	CacheTTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = 3
	}
	if c.CallsPerMinute == 0 {
		c.CallsPerMinute = 10
	}
}

// Poller refreshes several deployments' statuses concurrently.
type Poller struct {
	checker Checker
	limiter *RateLimiter
	cache   *Cache
	workers int
	logger  *slog.Logger
}

// New creates a poller.
func New(checker Checker, cfg Config, logger *slog.Logger) *Poller {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		checker: checker,
		limiter: NewRateLimiter(cfg.CallsPerMinute),
		cache:   NewCache(cfg.CacheTTL),
		workers: cfg.Workers,
		logger:  logger.With("component", "poller"),
	}
}

// Refresh reconciles every deployment's status through the worker pool and
// returns updates in input order. Cached results are served without spending
// rate-limit budget.
func (p *Poller) Refresh(ctx context.Context, deps []domain.Deployment, opts status.Options) []Update {
	updates := make([]Update, len(deps))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				updates[i] = Update{
					Deployment: deps[i],
					Result:     p.refreshOne(ctx, &deps[i], opts),
				}
			}
		}()
	}

	for i := range deps {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return updates
}

func (p *Poller) refreshOne(ctx context.Context, dep *domain.Deployment, opts status.Options) status.Result {
	key := "status:" + dep.ID
	if cached, ok := p.cache.Get(key); ok {
		return cached.(status.Result)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return status.Result{Status: domain.StatusUnknown, Detail: "refresh cancelled", Err: err}
	}

	result := p.checker.Check(ctx, dep, opts)
	if result.Err == nil {
		p.cache.Set(key, result)
	} else {
		p.logger.Debug("status refresh failed", "deployment_id", dep.ID, "error", result.Err)
	}
	return result
}
