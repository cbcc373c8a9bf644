package store

import (
	"context"
	"time"

	"github.com/example/dinegate/internal/db"
)

type PostgresRestaurants struct{ db *db.DB }

func NewPostgresRestaurants(d *db.DB) *PostgresRestaurants { return &PostgresRestaurants{db: d} }

func (s *PostgresRestaurants) List(ctx context.Context, page Page) ([]Restaurant, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM restaurants`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
SELECT id, name, city, cuisine_type, description, capacity, opens_at, closes_at, created_at, updated_at
FROM restaurants
ORDER BY id ASC
LIMIT $1 OFFSET $2`, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var r Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.City, &r.CuisineType, &r.Description,
			&r.Capacity, &r.OpensAt, &r.ClosesAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *PostgresRestaurants) GetByID(ctx context.Context, id int64) (Restaurant, error) {
	var r Restaurant
	err := s.db.QueryRow(ctx, `
SELECT id, name, city, cuisine_type, description, capacity, opens_at, closes_at, created_at, updated_at
FROM restaurants WHERE id=$1`, id).
		Scan(&r.ID, &r.Name, &r.City, &r.CuisineType, &r.Description,
			&r.Capacity, &r.OpensAt, &r.ClosesAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Restaurant{}, db.WrapNotFound(err)
	}
	return r, nil
}

func (s *PostgresRestaurants) Create(ctx context.Context, r *Restaurant) error {
	return s.db.QueryRow(ctx, `
INSERT INTO restaurants(name, city, cuisine_type, description, capacity, opens_at, closes_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at, updated_at`,
		r.Name, r.City, r.CuisineType, r.Description, r.Capacity, r.OpensAt, r.ClosesAt,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (s *PostgresRestaurants) Update(ctx context.Context, r *Restaurant) error {
	return s.db.Exec(ctx, `
UPDATE restaurants
SET name=$2, city=$3, cuisine_type=$4, description=$5, capacity=$6, opens_at=$7, closes_at=$8, updated_at=now()
WHERE id=$1`,
		r.ID, r.Name, r.City, r.CuisineType, r.Description, r.Capacity, r.OpensAt, r.ClosesAt)
}

func (s *PostgresRestaurants) Delete(ctx context.Context, id int64) error {
	return s.db.Exec(ctx, `DELETE FROM restaurants WHERE id=$1`, id)
}

type PostgresMenu struct{ db *db.DB }

func NewPostgresMenu(d *db.DB) *PostgresMenu { return &PostgresMenu{db: d} }

func (s *PostgresMenu) List(ctx context.Context, f MenuFilter) ([]MenuItem, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, restaurant_id, name, description, category, price, available, created_at
FROM menu_items
WHERE ($1 = 0 OR restaurant_id = $1)
  AND ($2 = '' OR category = $2)
ORDER BY id ASC`, f.RestaurantID, f.Category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description,
			&m.Category, &m.Price, &m.Available, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresMenu) GetByID(ctx context.Context, id int64) (MenuItem, error) {
	var m MenuItem
	err := s.db.QueryRow(ctx, `
SELECT id, restaurant_id, name, description, category, price, available, created_at
FROM menu_items WHERE id=$1`, id).
		Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Available, &m.CreatedAt)
	if err != nil {
		return MenuItem{}, db.WrapNotFound(err)
	}
	return m, nil
}

func (s *PostgresMenu) Create(ctx context.Context, m *MenuItem) error {
	return s.db.QueryRow(ctx, `
INSERT INTO menu_items(restaurant_id, name, description, category, price, available)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at`,
		m.RestaurantID, m.Name, m.Description, m.Category, m.Price, m.Available,
	).Scan(&m.ID, &m.CreatedAt)
}

func (s *PostgresMenu) Update(ctx context.Context, m *MenuItem) error {
	return s.db.Exec(ctx, `
UPDATE menu_items
SET name=$2, description=$3, category=$4, price=$5, available=$6
WHERE id=$1`, m.ID, m.Name, m.Description, m.Category, m.Price, m.Available)
}

func (s *PostgresMenu) Delete(ctx context.Context, id int64) error {
	return s.db.Exec(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
}

type PostgresReservations struct{ db *db.DB }

func NewPostgresReservations(d *db.DB) *PostgresReservations { return &PostgresReservations{db: d} }

func (s *PostgresReservations) List(ctx context.Context, f ReservationFilter, page Page) ([]Reservation, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `
SELECT count(*) FROM reservations
WHERE ($1 = 0 OR restaurant_id = $1)
  AND ($2 = '' OR status = $2)`, f.RestaurantID, f.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
SELECT id, restaurant_id, customer_name, customer_email, reservation_date, reservation_time,
       guests, status, special_requests, created_at, updated_at
FROM reservations
WHERE ($1 = 0 OR restaurant_id = $1)
  AND ($2 = '' OR status = $2)
ORDER BY id ASC
LIMIT $3 OFFSET $4`, f.RestaurantID, f.Status, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var r Reservation
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.CustomerName, &r.CustomerEmail,
			&r.Date, &r.Time, &r.Guests, &r.Status, &r.SpecialRequests,
			&r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *PostgresReservations) GetByID(ctx context.Context, id int64) (Reservation, error) {
	var r Reservation
	err := s.db.QueryRow(ctx, `
SELECT id, restaurant_id, customer_name, customer_email, reservation_date, reservation_time,
       guests, status, special_requests, created_at, updated_at
FROM reservations WHERE id=$1`, id).
		Scan(&r.ID, &r.RestaurantID, &r.CustomerName, &r.CustomerEmail,
			&r.Date, &r.Time, &r.Guests, &r.Status, &r.SpecialRequests,
			&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return Reservation{}, db.WrapNotFound(err)
	}
	return r, nil
}

func (s *PostgresReservations) Create(ctx context.Context, r *Reservation) error {
	if r.Status == "" {
		r.Status = ReservationPending
	}
	return s.db.QueryRow(ctx, `
INSERT INTO reservations(restaurant_id, customer_name, customer_email, reservation_date,
                         reservation_time, guests, status, special_requests)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id, created_at, updated_at`,
		r.RestaurantID, r.CustomerName, r.CustomerEmail, r.Date, r.Time, r.Guests, r.Status, r.SpecialRequests,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func (s *PostgresReservations) Update(ctx context.Context, r *Reservation) error {
	return s.db.Exec(ctx, `
UPDATE reservations
SET customer_name=$2, customer_email=$3, reservation_date=$4, reservation_time=$5,
    guests=$6, status=$7, special_requests=$8, updated_at=now()
WHERE id=$1`,
		r.ID, r.CustomerName, r.CustomerEmail, r.Date, r.Time, r.Guests, r.Status, r.SpecialRequests)
}

func (s *PostgresReservations) Delete(ctx context.Context, id int64) error {
	return s.db.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, id)
}

func (s *PostgresReservations) GuestsForDate(ctx context.Context, restaurantID int64, date time.Time) (int, error) {
	var guests int
	err := s.db.QueryRow(ctx, `
SELECT coalesce(sum(guests), 0)
FROM reservations
WHERE restaurant_id=$1 AND reservation_date=$2 AND status <> $3`,
		restaurantID, date, ReservationCancelled).Scan(&guests)
	return guests, err
}
