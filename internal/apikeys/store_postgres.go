package apikeys

import (
	"context"

	"github.com/example/dinegate/internal/db"
)

type PostgresStore struct{ db *db.DB }

func NewPostgresStore(d *db.DB) *PostgresStore { return &PostgresStore{db: d} }

func (s *PostgresStore) Insert(ctx context.Context, rec Record) error {
	return s.db.Exec(ctx, `
INSERT INTO api_keys(api_key, service_name, consumer_group, permissions, is_active)
VALUES ($1,$2,$3,$4,$5)`,
		rec.Key, rec.ServiceName, rec.ConsumerGroup, string(rec.Permissions), rec.Active,
	)
}

func (s *PostgresStore) GetByKey(ctx context.Context, key string) (Record, error) {
	row := s.db.QueryRow(ctx, `
SELECT api_key, service_name, consumer_group, permissions, is_active, usage_count, last_used, created_at
FROM api_keys WHERE api_key=$1`, key)

	var rec Record
	var perms string
	if err := row.Scan(&rec.Key, &rec.ServiceName, &rec.ConsumerGroup, &perms,
		&rec.Active, &rec.UsageCount, &rec.LastUsed, &rec.CreatedAt); err != nil {
		return Record{}, db.WrapNotFound(err)
	}
	rec.Permissions = Permissions(perms)
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
SELECT api_key, service_name, consumer_group, permissions, is_active, usage_count, last_used, created_at
FROM api_keys ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var perms string
		if err := rows.Scan(&rec.Key, &rec.ServiceName, &rec.ConsumerGroup, &perms,
			&rec.Active, &rec.UsageCount, &rec.LastUsed, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Permissions = Permissions(perms)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, key string) error {
	return s.db.Exec(ctx, `UPDATE api_keys SET is_active=false WHERE api_key=$1`, key)
}

// LogUsage relies on the database's atomic increment; concurrent validations
// never lose counts.
func (s *PostgresStore) LogUsage(ctx context.Context, key string) error {
	return s.db.Exec(ctx, `
UPDATE api_keys SET usage_count = usage_count + 1, last_used = now() WHERE api_key=$1`, key)
}
