// Package booking orchestrates bookings against external partners while
// guaranteeing a local record exists regardless of partner outcome.
package booking

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/dinegate/internal/metrics"
	"github.com/example/dinegate/internal/partner"
)

// Policy controls whether a partner acknowledgment synchronously flips the
// local record to confirmed, or leaves confirmation to a reconciliation
// pass. The source system did both depending on call site; here it is one
// explicit switch.
type Policy struct {
	ConfirmOnAck bool
}

// Outcome reports one sub-booking: the durable local record plus what the
// partner said, if anything.
type Outcome struct {
	Record    Record              `json:"record"`
	Ack       *partner.BookingAck `json:"ack,omitempty"`
	Confirmed bool                `json:"confirmed"`
	Failure   string              `json:"failure,omitempty"`
}

// PackageItem is one partner sub-service inside a package booking.
type PackageItem struct {
	Type    partner.ServiceType
	Request partner.BookingRequest
}

// PackageResult ties independent sub-bookings together. PackageID is a
// correlation token for the caller, not a referential-integrity key.
type PackageResult struct {
	PackageID string              `json:"package_id"`
	Outcomes  map[string]*Outcome `json:"outcomes"`
	Success   bool                `json:"success"`
}

// AdapterSource resolves a partner adapter by type.
type AdapterSource interface {
	Adapter(t partner.ServiceType) (partner.Adapter, bool)
}

type Orchestrator struct {
	adapters AdapterSource
	store    Store
	policy   Policy
	timeout  time.Duration
}

func NewOrchestrator(adapters AdapterSource, store Store, policy Policy, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = partner.DefaultTimeout
	}
	return &Orchestrator{adapters: adapters, store: store, policy: policy, timeout: timeout}
}

// BookService books one partner service. The local pending record is created
// first and unconditionally, so a fully-down partner still yields an
// auditable, retryable record. The returned error covers store failures
// only; partner failures are folded into the outcome.
func (o *Orchestrator) BookService(ctx context.Context, t partner.ServiceType, req partner.BookingRequest, customer partner.CustomerInfo) (*Outcome, error) {
	rec := &Record{
		ID:              uuid.NewString(),
		ServiceType:     t,
		ServiceID:       req.ServiceID,
		CustomerID:      customer.ID,
		Date:            req.Date,
		Time:            req.Time,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
		Status:          StatusPending,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := o.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	out := &Outcome{Record: *rec}

	ad, ok := o.adapters.Adapter(t)
	if !ok {
		return o.fail(ctx, out, rec, "no adapter configured for "+string(t)), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ack, err := ad.Book(callCtx, req, customer)
	if err != nil {
		return o.fail(ctx, out, rec, err.Error()), nil
	}

	out.Ack = ack
	out.Confirmed = true
	metrics.BookingsTotal.WithLabelValues(string(t), "confirmed").Inc()

	if o.policy.ConfirmOnAck {
		if err := o.store.Confirm(ctx, rec.ID, ack.Reference); err != nil {
			log.Printf("booking: confirm update for %s failed: %v", rec.ID, err)
		} else {
			out.Record.Status = StatusConfirmed
			out.Record.PartnerRef = &ack.Reference
		}
	}
	return out, nil
}

// BookPackage books each sub-service independently; one failure never stops
// the others. Success is the AND of all sub-outcomes.
func (o *Orchestrator) BookPackage(ctx context.Context, items []PackageItem, customer partner.CustomerInfo) (*PackageResult, error) {
	res := &PackageResult{
		PackageID: uuid.NewString(),
		Outcomes:  make(map[string]*Outcome, len(items)),
		Success:   len(items) > 0,
	}

	for _, item := range items {
		out, err := o.bookPackageItem(ctx, res.PackageID, item, customer)
		if err != nil {
			// Store failure: no durable record exists for this sub-service.
			res.Outcomes[string(item.Type)] = &Outcome{Failure: err.Error()}
			res.Success = false
			continue
		}
		res.Outcomes[string(item.Type)] = out
		if !out.Confirmed {
			res.Success = false
		}
	}
	return res, nil
}

func (o *Orchestrator) bookPackageItem(ctx context.Context, packageID string, item PackageItem, customer partner.CustomerInfo) (*Outcome, error) {
	out, err := o.BookService(ctx, item.Type, item.Request, customer)
	if err != nil {
		return nil, err
	}
	out.Record.PackageID = &packageID
	if err := o.store.SetPackageID(ctx, out.Record.ID, packageID); err != nil {
		log.Printf("booking: package tag for %s failed: %v", out.Record.ID, err)
	}
	return out, nil
}

func (o *Orchestrator) fail(ctx context.Context, out *Outcome, rec *Record, reason string) *Outcome {
	out.Failure = reason
	out.Record.FailureReason = &reason
	metrics.BookingsTotal.WithLabelValues(string(rec.ServiceType), "pending").Inc()
	if err := o.store.AttachFailure(ctx, rec.ID, reason); err != nil {
		log.Printf("booking: attach failure for %s failed: %v", rec.ID, err)
	}
	return out
}
