package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dinegate/internal/partner"
)

type pingAdapter struct {
	typ     partner.ServiceType
	pingErr error
	delay   time.Duration
}

func (p *pingAdapter) Type() partner.ServiceType { return p.typ }
func (p *pingAdapter) List(context.Context, partner.Filters) ([]partner.NormalizedService, error) {
	return nil, nil
}
func (p *pingAdapter) Details(context.Context, string) (*partner.Details, error) { return nil, nil }
func (p *pingAdapter) Book(context.Context, partner.BookingRequest, partner.CustomerInfo) (*partner.BookingAck, error) {
	return nil, nil
}

func (p *pingAdapter) Ping(ctx context.Context) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.pingErr
}

func TestCheckAll(t *testing.T) {
	c := NewChecker([]partner.Adapter{
		&pingAdapter{typ: partner.ServiceTour},
		&pingAdapter{typ: partner.ServiceHotel, pingErr: errors.New("503 from partner")},
	}, time.Second)

	snap := c.CheckAll(context.Background())
	require.Len(t, snap, 2)

	assert.True(t, snap[partner.ServiceTour].Healthy)
	assert.Empty(t, snap[partner.ServiceTour].Error)
	assert.False(t, snap[partner.ServiceTour].CheckedAt.IsZero())

	assert.False(t, snap[partner.ServiceHotel].Healthy)
	assert.Contains(t, snap[partner.ServiceHotel].Error, "503")
}

func TestCheckTimeoutMarksUnhealthy(t *testing.T) {
	c := NewChecker([]partner.Adapter{
		&pingAdapter{typ: partner.ServiceTaxi, delay: 500 * time.Millisecond},
	}, 20*time.Millisecond)

	snap := c.CheckAll(context.Background())
	assert.False(t, snap[partner.ServiceTaxi].Healthy)
}

func TestPollerSnapshotIsCopy(t *testing.T) {
	c := NewChecker([]partner.Adapter{&pingAdapter{typ: partner.ServiceTour}}, time.Second)
	p := NewPoller(c, time.Minute)

	// Before the first poll the snapshot is empty, not nil.
	snap := p.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap)

	p.refresh(context.Background())

	snap = p.Snapshot()
	require.Len(t, snap, 1)
	snap[partner.ServiceTour] = Result{Healthy: false}

	// Mutating the returned map never touches the cached state.
	again := p.Snapshot()
	assert.True(t, again[partner.ServiceTour].Healthy)
}

func TestPollerRunStopsOnCancel(t *testing.T) {
	c := NewChecker([]partner.Adapter{&pingAdapter{typ: partner.ServiceTour}}, time.Second)
	p := NewPoller(c, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	assert.True(t, p.Snapshot()[partner.ServiceTour].Healthy)
}
