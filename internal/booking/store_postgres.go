package booking

import (
	"context"
	"time"

	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/partner"
)

type PostgresStore struct{ db *db.DB }

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

const recordColumns = `id, service_type, service_id, customer_id, booking_date, booking_time,
guests, special_requests, status, partner_ref, failure_reason, package_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	return s.db.Exec(ctx, `
INSERT INTO bookings(id, service_type, service_id, customer_id, booking_date, booking_time,
                     guests, special_requests, status, package_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, string(rec.ServiceType), rec.ServiceID, rec.CustomerID, rec.Date, rec.Time,
		rec.Guests, rec.SpecialRequests, string(rec.Status), rec.PackageID,
	)
}

func (s *PostgresStore) Confirm(ctx context.Context, id, partnerRef string) error {
	return s.db.Exec(ctx, `
UPDATE bookings SET status=$2, partner_ref=$3, failure_reason=NULL, updated_at=now()
WHERE id=$1`, id, string(StatusConfirmed), partnerRef)
}

func (s *PostgresStore) AttachFailure(ctx context.Context, id, reason string) error {
	return s.db.Exec(ctx, `
UPDATE bookings SET failure_reason=$2, updated_at=now() WHERE id=$1`, id, reason)
}

func (s *PostgresStore) SetPackageID(ctx context.Context, id, packageID string) error {
	return s.db.Exec(ctx, `
UPDATE bookings SET package_id=$2, updated_at=now() WHERE id=$1`, id, packageID)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM bookings WHERE id=$1`, id)
	return scanRecord(row)
}

func (s *PostgresStore) ListPending(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
SELECT `+recordColumns+` FROM bookings
WHERE status=$1
ORDER BY created_at ASC
LIMIT $2`, string(StatusPending), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
SELECT `+recordColumns+` FROM bookings
WHERE customer_id=$1
ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func scanRecord(row db.Row) (Record, error) {
	var rec Record
	var serviceType, status string
	var date time.Time
	if err := row.Scan(
		&rec.ID, &serviceType, &rec.ServiceID, &rec.CustomerID, &date, &rec.Time,
		&rec.Guests, &rec.SpecialRequests, &status, &rec.PartnerRef, &rec.FailureReason,
		&rec.PackageID, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return Record{}, db.WrapNotFound(err)
	}
	rec.ServiceType = partner.ServiceType(serviceType)
	rec.Status = Status(status)
	rec.Date = date
	return rec, nil
}

func collectRecords(rows db.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
