// Package store holds the local restaurant, menu, and reservation data the
// inbound service-provider API serves to external callers.
package store

import (
	"context"
	"time"
)

type Restaurant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	CuisineType string    `json:"cuisine_type"`
	Description string    `json:"description"`
	Capacity    int       `json:"capacity"`
	OpensAt     string    `json:"opens_at"`
	ClosesAt    string    `json:"closes_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

type Reservation struct {
	ID              int64     `json:"id"`
	RestaurantID    int64     `json:"restaurant_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time"`
	Guests          int       `json:"guests"`
	Status          string    `json:"status"`
	SpecialRequests string    `json:"special_requests"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Reservation statuses mirror the booking lifecycle; only "cancelled" is
// excluded from availability arithmetic.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Page bounds a listing. Offset is derived, never passed by callers.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

type RestaurantStore interface {
	List(ctx context.Context, page Page) ([]Restaurant, int, error)
	GetByID(ctx context.Context, id int64) (Restaurant, error)
	Create(ctx context.Context, r *Restaurant) error
	Update(ctx context.Context, r *Restaurant) error
	Delete(ctx context.Context, id int64) error
}

type MenuFilter struct {
	RestaurantID int64
	Category     string
}

type MenuStore interface {
	List(ctx context.Context, f MenuFilter) ([]MenuItem, error)
	GetByID(ctx context.Context, id int64) (MenuItem, error)
	Create(ctx context.Context, m *MenuItem) error
	Update(ctx context.Context, m *MenuItem) error
	Delete(ctx context.Context, id int64) error
}

type ReservationFilter struct {
	RestaurantID int64
	Status       string
}

type ReservationStore interface {
	List(ctx context.Context, f ReservationFilter, page Page) ([]Reservation, int, error)
	GetByID(ctx context.Context, id int64) (Reservation, error)
	Create(ctx context.Context, r *Reservation) error
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id int64) error

	// GuestsForDate sums guests over all non-cancelled reservations for the
	// restaurant on the given date.
	GuestsForDate(ctx context.Context, restaurantID int64, date time.Time) (int, error)
}
