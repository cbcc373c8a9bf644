// Package aggregator fans a listing request out to every configured partner
// and merges whatever came back. One partner being down shrinks the result
// set; it never fails the aggregate call.
package aggregator

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/dinegate/internal/metrics"
	"github.com/example/dinegate/internal/partner"
)

type Aggregator struct {
	adapters map[partner.ServiceType]partner.Adapter
	order    []partner.ServiceType
	timeout  time.Duration
}

func New(adapters []partner.Adapter, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = partner.DefaultTimeout
	}
	a := &Aggregator{
		adapters: make(map[partner.ServiceType]partner.Adapter, len(adapters)),
		timeout:  timeout,
	}
	for _, ad := range adapters {
		if _, dup := a.adapters[ad.Type()]; dup {
			continue
		}
		a.adapters[ad.Type()] = ad
		a.order = append(a.order, ad.Type())
	}
	return a
}

// Adapter returns the adapter for a partner type, if configured.
func (a *Aggregator) Adapter(t partner.ServiceType) (partner.Adapter, bool) {
	ad, ok := a.adapters[t]
	return ad, ok
}

// GetAllServices lists every partner concurrently and concatenates the
// successful results in configuration order, partner-native order preserved
// within each partner. Failed partners contribute nothing and are recorded
// through the metrics hook and a diagnostic log line.
func (a *Aggregator) GetAllServices(ctx context.Context, f partner.Filters) []partner.NormalizedService {
	results := make([][]partner.NormalizedService, len(a.order))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(a.order))
	for i, t := range a.order {
		i, ad := i, a.adapters[t]
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			services, err := ad.List(callCtx, f)
			if err != nil {
				a.drop(ad.Type(), err)
				return nil
			}
			results[i] = services
			return nil
		})
	}
	// Workers only ever return nil; errgroup is used for the bounded
	// fan-out and join, not for error propagation.
	_ = g.Wait()

	var out []partner.NormalizedService
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// GetServicesByType lists a single partner. Unlike GetAllServices the
// partner's failure is returned to the caller; an empty slice with a nil
// error means the partner really had nothing.
func (a *Aggregator) GetServicesByType(ctx context.Context, t partner.ServiceType, f partner.Filters) ([]partner.NormalizedService, error) {
	ad, ok := a.adapters[t]
	if !ok {
		return nil, partner.NewUnsupported(t, "list")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	services, err := ad.List(callCtx, f)
	if err != nil {
		a.drop(t, err)
		return nil, err
	}
	return services, nil
}

// GetServiceDetails fetches one item from one partner.
func (a *Aggregator) GetServiceDetails(ctx context.Context, t partner.ServiceType, id string) (*partner.Details, error) {
	ad, ok := a.adapters[t]
	if !ok {
		return nil, partner.NewUnsupported(t, "details")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return ad.Details(callCtx, id)
}

func (a *Aggregator) drop(t partner.ServiceType, err error) {
	metrics.AggregatorPartnersDropped.WithLabelValues(string(t), partner.KindOf(err).String()).Inc()
	log.Printf("aggregator: dropping %s partner: %v", t, err)
}
