// Package apikeys issues and validates the opaque bearer tokens external
// partners use against the inbound service-provider API.
package apikeys

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/example/dinegate/internal/db"
)

// Permissions is the access tier attached to a key.
type Permissions string

const (
	PermRead      Permissions = "read"
	PermReadWrite Permissions = "read_write"
)

func ParsePermissions(s string) (Permissions, error) {
	switch Permissions(s) {
	case PermRead, PermReadWrite:
		return Permissions(s), nil
	}
	return "", fmt.Errorf("unknown permissions %q", s)
}

// CanWrite reports whether the tier allows mutations.
func (p Permissions) CanWrite() bool { return p == PermReadWrite }

// Record is a persisted API key. The key itself is the only secret; it is
// returned exactly once at generation and never derivable afterwards.
type Record struct {
	Key           string      `json:"-"`
	ServiceName   string      `json:"service_name"`
	ConsumerGroup string      `json:"consumer_group"`
	Permissions   Permissions `json:"permissions"`
	Active        bool        `json:"is_active"`
	UsageCount    int64       `json:"usage_count"`
	LastUsed      *time.Time  `json:"last_used,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// Store persists key records. Usage counters must use the database's own
// atomic increment; no in-process locking.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	GetByKey(ctx context.Context, key string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Deactivate(ctx context.Context, key string) error
	LogUsage(ctx context.Context, key string) error
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry { return &Registry{store: store} }

const keyPrefix = "dg_"

// Generate creates and stores a new key, returning the secret exactly once.
func (r *Registry) Generate(ctx context.Context, serviceName, consumerGroup string, perms Permissions) (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	key := keyPrefix + base64.RawURLEncoding.EncodeToString(raw)

	rec := Record{
		Key:           key,
		ServiceName:   serviceName,
		ConsumerGroup: consumerGroup,
		Permissions:   perms,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.store.Insert(ctx, rec); err != nil {
		return "", err
	}
	return key, nil
}

// Validate returns the record only for known, active keys. Unknown and
// inactive keys are both "no record": callers treat them identically.
func (r *Registry) Validate(ctx context.Context, key string) (*Record, bool) {
	if key == "" {
		return nil, false
	}
	rec, err := r.store.GetByKey(ctx, key)
	if err != nil {
		if !db.IsNotFound(err) {
			log.Printf("apikeys: lookup failed: %v", err)
		}
		return nil, false
	}
	if !rec.Active {
		return nil, false
	}
	return &rec, true
}

// LogUsage is fire-and-forget: a failed counter update must never abort the
// caller's request.
func (r *Registry) LogUsage(ctx context.Context, key string) {
	if err := r.store.LogUsage(ctx, key); err != nil {
		log.Printf("apikeys: usage log failed: %v", err)
	}
}

func (r *Registry) List(ctx context.Context) ([]Record, error) {
	return r.store.List(ctx)
}

func (r *Registry) Revoke(ctx context.Context, key string) error {
	return r.store.Deactivate(ctx, key)
}
