package booking

import (
	"context"
	"time"

	"github.com/example/dinegate/internal/partner"
)

// Status is the local booking lifecycle. A record starts pending and is only
// advanced to confirmed after a partner acknowledgment; partner failures
// leave it pending for out-of-band reconciliation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Record is the persisted local booking. It exists whether or not the
// partner ever confirmed; that durability is the point.
type Record struct {
	ID              string
	ServiceType     partner.ServiceType
	ServiceID       string
	CustomerID      string
	Date            time.Time
	Time            string
	Guests          int
	SpecialRequests string
	Status          Status
	PartnerRef      *string
	FailureReason   *string
	PackageID       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store persists booking records. Implementations rely on the database's own
// transactional guarantees; the orchestrator holds no in-process locks.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Confirm(ctx context.Context, id, partnerRef string) error
	AttachFailure(ctx context.Context, id, reason string) error
	SetPackageID(ctx context.Context, id, packageID string) error
	GetByID(ctx context.Context, id string) (Record, error)
	ListPending(ctx context.Context, limit int) ([]Record, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Record, error)
}
