// Package health probes partner endpoints without getting in the way of
// normal request traffic: the server polls in the background and callers
// read the cached snapshot.
package health

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/example/dinegate/internal/metrics"
	"github.com/example/dinegate/internal/partner"
)

// Result is one partner probe outcome.
type Result struct {
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"-"`
	LatencyMS int64         `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Snapshot maps each configured partner to its latest probe result.
type Snapshot map[partner.ServiceType]Result

type Checker struct {
	adapters []partner.Adapter
	timeout  time.Duration
}

func NewChecker(adapters []partner.Adapter, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{adapters: adapters, timeout: timeout}
}

// CheckAll probes every partner concurrently and returns the full snapshot.
func (c *Checker) CheckAll(ctx context.Context) Snapshot {
	snap := make(Snapshot, len(c.adapters))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ad := range c.adapters {
		ad := ad
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := c.check(ctx, ad)
			mu.Lock()
			snap[ad.Type()] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return snap
}

func (c *Checker) check(ctx context.Context, ad partner.Adapter) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := ad.Ping(ctx)
	latency := time.Since(start)

	res := Result{
		Healthy:   err == nil,
		Latency:   latency,
		LatencyMS: latency.Milliseconds(),
		CheckedAt: time.Now().UTC(),
	}
	if err != nil {
		res.Error = err.Error()
		metrics.PartnerHealthy.WithLabelValues(string(ad.Type())).Set(0)
	} else {
		metrics.PartnerHealthy.WithLabelValues(string(ad.Type())).Set(1)
	}
	return res
}

// Poller runs the checker on an interval and caches the last snapshot.
type Poller struct {
	checker  *Checker
	interval time.Duration

	mu   sync.RWMutex
	last Snapshot
}

func NewPoller(checker *Checker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{checker: checker, interval: interval, last: Snapshot{}}
}

// Run polls until ctx is cancelled. The first probe happens immediately.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	snap := p.checker.CheckAll(ctx)
	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	for t, r := range snap {
		if !r.Healthy {
			log.Printf("health: partner %s unhealthy: %s", t, r.Error)
		}
	}
}

// Snapshot returns the most recent poll result without probing.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(Snapshot, len(p.last))
	for k, v := range p.last {
		out[k] = v
	}
	return out
}
