package partner

import (
	"context"
	"fmt"
	"time"
)

// ServiceType identifies which external partner a service belongs to.
// Service IDs are partner-scoped, so (ServiceType, ID) is the only safe key.
type ServiceType string

const (
	ServiceTour  ServiceType = "tour"
	ServiceHotel ServiceType = "hotel"
	ServiceTaxi  ServiceType = "taxi"
)

// AllServiceTypes lists every known partner type in a stable order.
func AllServiceTypes() []ServiceType {
	return []ServiceType{ServiceTour, ServiceHotel, ServiceTaxi}
}

func ParseServiceType(s string) (ServiceType, error) {
	switch ServiceType(s) {
	case ServiceTour, ServiceHotel, ServiceTaxi:
		return ServiceType(s), nil
	}
	return "", fmt.Errorf("unknown service type %q", s)
}

const (
	// DefaultRating is used when a partner payload carries no rating.
	DefaultRating = 5.0

	// PlaceholderImage is served when a partner item has no image URL.
	PlaceholderImage = "/static/img/service-placeholder.png"
)

// NormalizedService is the canonical shape every partner response maps into.
// It is a read projection: rebuilt on every aggregation call, never persisted.
type NormalizedService struct {
	ID          string      `json:"id"`
	Type        ServiceType `json:"type"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Rating      float64     `json:"rating"`
	Available   bool        `json:"available"`
	Image       string      `json:"image"`
}

// Filters narrows a partner listing. Each adapter maps these onto its own
// query-parameter scheme; unsupported fields are ignored by that adapter.
type Filters struct {
	Search   string
	City     string
	CheckIn  time.Time
	CheckOut time.Time
}

// BookingRequest is the partner-agnostic booking payload. Adapters transcode
// it into whatever the partner expects (JSON, form fields, guest-mode email).
type BookingRequest struct {
	ServiceID       string
	Date            time.Time
	Time            string // HH:MM, restaurant-local
	Guests          int
	PickupLocation  string // taxi only
	Destination     string // taxi only
	SpecialRequests string
}

// CustomerInfo identifies the booking customer. Partners that run in guest
// mode use Name/Email; partners that know our users use ID.
type CustomerInfo struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// BookingAck is a partner's synchronous confirmation of a booking.
type BookingAck struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// Details is a single partner item with whatever extra fields the partner
// returns beyond the normalized projection.
type Details struct {
	Service NormalizedService `json:"service"`
	Extra   map[string]any    `json:"extra,omitempty"`
}

// Adapter translates between our canonical shapes and one partner's REST
// contract. Implementations never retry; retry policy belongs to callers.
type Adapter interface {
	Type() ServiceType
	List(ctx context.Context, f Filters) ([]NormalizedService, error)
	Details(ctx context.Context, id string) (*Details, error)
	Book(ctx context.Context, req BookingRequest, customer CustomerInfo) (*BookingAck, error)
	Ping(ctx context.Context) error
}
