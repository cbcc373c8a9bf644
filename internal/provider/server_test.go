package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/dinegate/internal/aggregator"
	"github.com/example/dinegate/internal/apikeys"
	"github.com/example/dinegate/internal/booking"
	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/health"
	"github.com/example/dinegate/internal/partner"
	"github.com/example/dinegate/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- fakes -----------------------------------------------------------------

type fakeRestaurants struct {
	items  map[int64]store.Restaurant
	nextID int64
}

func newFakeRestaurants(items ...store.Restaurant) *fakeRestaurants {
	f := &fakeRestaurants{items: map[int64]store.Restaurant{}, nextID: 1}
	for _, r := range items {
		r.ID = f.nextID
		f.items[r.ID] = r
		f.nextID++
	}
	return f
}

func (f *fakeRestaurants) List(_ context.Context, page store.Page) ([]store.Restaurant, int, error) {
	all := make([]store.Restaurant, 0, len(f.items))
	for id := int64(1); id < f.nextID; id++ {
		if r, ok := f.items[id]; ok {
			all = append(all, r)
		}
	}
	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeRestaurants) GetByID(_ context.Context, id int64) (store.Restaurant, error) {
	r, ok := f.items[id]
	if !ok {
		return store.Restaurant{}, db.ErrNotFound
	}
	return r, nil
}

func (f *fakeRestaurants) Create(_ context.Context, r *store.Restaurant) error {
	r.ID = f.nextID
	f.nextID++
	r.CreatedAt = time.Now().UTC()
	f.items[r.ID] = *r
	return nil
}

func (f *fakeRestaurants) Update(_ context.Context, r *store.Restaurant) error {
	if _, ok := f.items[r.ID]; !ok {
		return db.ErrNotFound
	}
	f.items[r.ID] = *r
	return nil
}

func (f *fakeRestaurants) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

type fakeReservations struct {
	items  map[int64]store.Reservation
	nextID int64
}

func newFakeReservations(items ...store.Reservation) *fakeReservations {
	f := &fakeReservations{items: map[int64]store.Reservation{}, nextID: 1}
	for _, r := range items {
		r.ID = f.nextID
		f.items[r.ID] = r
		f.nextID++
	}
	return f
}

func (f *fakeReservations) List(_ context.Context, flt store.ReservationFilter, page store.Page) ([]store.Reservation, int, error) {
	var all []store.Reservation
	for id := int64(1); id < f.nextID; id++ {
		r, ok := f.items[id]
		if !ok {
			continue
		}
		if flt.RestaurantID != 0 && r.RestaurantID != flt.RestaurantID {
			continue
		}
		if flt.Status != "" && r.Status != flt.Status {
			continue
		}
		all = append(all, r)
	}
	total := len(all)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (store.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return store.Reservation{}, db.ErrNotFound
	}
	return r, nil
}

func (f *fakeReservations) Create(_ context.Context, r *store.Reservation) error {
	r.ID = f.nextID
	f.nextID++
	f.items[r.ID] = *r
	return nil
}

func (f *fakeReservations) Update(_ context.Context, r *store.Reservation) error {
	if _, ok := f.items[r.ID]; !ok {
		return db.ErrNotFound
	}
	f.items[r.ID] = *r
	return nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeReservations) GuestsForDate(_ context.Context, restaurantID int64, date time.Time) (int, error) {
	sum := 0
	for _, r := range f.items {
		if r.RestaurantID == restaurantID && r.Date.Equal(date) && r.Status != store.ReservationCancelled {
			sum += r.Guests
		}
	}
	return sum, nil
}

type fakeMenu struct {
	items  map[int64]store.MenuItem
	nextID int64
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{items: map[int64]store.MenuItem{}, nextID: 1}
}

func (f *fakeMenu) List(_ context.Context, flt store.MenuFilter) ([]store.MenuItem, error) {
	var out []store.MenuItem
	for id := int64(1); id < f.nextID; id++ {
		m, ok := f.items[id]
		if !ok {
			continue
		}
		if flt.RestaurantID != 0 && m.RestaurantID != flt.RestaurantID {
			continue
		}
		if flt.Category != "" && m.Category != flt.Category {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMenu) GetByID(_ context.Context, id int64) (store.MenuItem, error) {
	m, ok := f.items[id]
	if !ok {
		return store.MenuItem{}, db.ErrNotFound
	}
	return m, nil
}

func (f *fakeMenu) Create(_ context.Context, m *store.MenuItem) error {
	m.ID = f.nextID
	f.nextID++
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMenu) Update(_ context.Context, m *store.MenuItem) error {
	if _, ok := f.items[m.ID]; !ok {
		return db.ErrNotFound
	}
	f.items[m.ID] = *m
	return nil
}

func (f *fakeMenu) Delete(_ context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

type fakeKeyStore struct {
	records map[string]apikeys.Record
}

func (f *fakeKeyStore) Insert(_ context.Context, rec apikeys.Record) error {
	f.records[rec.Key] = rec
	return nil
}

func (f *fakeKeyStore) GetByKey(_ context.Context, key string) (apikeys.Record, error) {
	rec, ok := f.records[key]
	if !ok {
		return apikeys.Record{}, db.ErrNotFound
	}
	return rec, nil
}

func (f *fakeKeyStore) List(context.Context) ([]apikeys.Record, error) { return nil, nil }
func (f *fakeKeyStore) Deactivate(context.Context, string) error       { return nil }
func (f *fakeKeyStore) LogUsage(context.Context, string) error         { return nil }

type fakeBookingStore struct {
	records map[string]*booking.Record
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{records: map[string]*booking.Record{}}
}

func (f *fakeBookingStore) Create(_ context.Context, rec *booking.Record) error {
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeBookingStore) Confirm(_ context.Context, id, ref string) error {
	if rec, ok := f.records[id]; ok {
		rec.Status = booking.StatusConfirmed
		rec.PartnerRef = &ref
	}
	return nil
}

func (f *fakeBookingStore) AttachFailure(_ context.Context, id, reason string) error {
	if rec, ok := f.records[id]; ok {
		rec.FailureReason = &reason
	}
	return nil
}

func (f *fakeBookingStore) SetPackageID(_ context.Context, id, pkg string) error {
	if rec, ok := f.records[id]; ok {
		rec.PackageID = &pkg
	}
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (booking.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return booking.Record{}, db.ErrNotFound
	}
	return *rec, nil
}

func (f *fakeBookingStore) ListPending(_ context.Context, limit int) ([]booking.Record, error) {
	var out []booking.Record
	for _, rec := range f.records {
		if rec.Status == booking.StatusPending && len(out) < limit {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListByCustomer(_ context.Context, customerID string) ([]booking.Record, error) {
	var out []booking.Record
	for _, rec := range f.records {
		if rec.CustomerID == customerID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakePartner struct {
	typ      partner.ServiceType
	services []partner.NormalizedService
	ack      *partner.BookingAck
	err      error
}

func (f *fakePartner) Type() partner.ServiceType { return f.typ }

func (f *fakePartner) List(context.Context, partner.Filters) ([]partner.NormalizedService, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.services, nil
}

func (f *fakePartner) Details(_ context.Context, id string) (*partner.Details, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, s := range f.services {
		if s.ID == id {
			return &partner.Details{Service: s}, nil
		}
	}
	return nil, partner.NewInvalidResponse(f.typ, "details", nil, nil)
}

func (f *fakePartner) Book(context.Context, partner.BookingRequest, partner.CustomerInfo) (*partner.BookingAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ack, nil
}

func (f *fakePartner) Ping(context.Context) error { return f.err }

// --- harness ---------------------------------------------------------------

type testEnv struct {
	router       http.Handler
	restaurants  *fakeRestaurants
	reservations *fakeReservations
	bookings     *fakeBookingStore
	readKey      string
	writeKey     string
}

func newTestEnv(t *testing.T, adapters ...partner.Adapter) *testEnv {
	t.Helper()

	keyStore := &fakeKeyStore{records: map[string]apikeys.Record{}}
	registry := apikeys.NewRegistry(keyStore)
	readKey, err := registry.Generate(context.Background(), "reader", "external", apikeys.PermRead)
	require.NoError(t, err)
	writeKey, err := registry.Generate(context.Background(), "writer", "external", apikeys.PermReadWrite)
	require.NoError(t, err)

	env := &testEnv{
		restaurants:  newFakeRestaurants(),
		reservations: newFakeReservations(),
		bookings:     newFakeBookingStore(),
		readKey:      readKey,
		writeKey:     writeKey,
	}

	agg := aggregator.New(adapters, time.Second)
	srv := &Server{
		Registry:     registry,
		Restaurants:  env.restaurants,
		Menu:         newFakeMenu(),
		Reservations: env.reservations,
		Bookings:     env.bookings,
		Aggregator:   agg,
		Orchestrator: booking.NewOrchestrator(agg, env.bookings, booking.Policy{ConfirmOnAck: true}, time.Second),
		HealthPoller: health.NewPoller(health.NewChecker(adapters, time.Second), time.Minute),
	}
	env.router = srv.Router()
	return env
}

func (e *testEnv) do(method, path, key, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// --- tests -----------------------------------------------------------------

func TestRestaurantsPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 23; i++ {
		r := store.Restaurant{Name: fmt.Sprintf("R%02d", i), Capacity: 10}
		require.NoError(t, env.restaurants.Create(context.Background(), &r))
	}

	w := env.do(http.MethodGet, "/api/v1/restaurants?page=2&per_page=10", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode(t, w)
	assert.True(t, res.Success)
	require.NotNil(t, res.Meta)
	assert.Equal(t, 23, res.Meta.Pagination.Total)
	assert.Equal(t, 2, res.Meta.Pagination.Page)
	assert.Equal(t, 10, res.Meta.Pagination.PerPage)
	assert.Equal(t, 3, res.Meta.Pagination.Pages)

	items, ok := res.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 10)
	first := items[0].(map[string]any)
	assert.Equal(t, "R11", first["name"])
}

func TestRestaurantsListEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/restaurants", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestRestaurantNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/restaurants/99", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	res := decode(t, w)
	assert.False(t, res.Success)
}

func TestCreateRestaurantRequiresWriteKey(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"Trattoria","city":"Rome","capacity":40}`

	// No key: 401.
	w := env.do(http.MethodPost, "/api/v1/restaurants", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Read-only key: 403, and nothing was created.
	w = env.do(http.MethodPost, "/api/v1/restaurants", env.readKey, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, total, err := env.restaurants.List(context.Background(), store.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	// Write key: created.
	w = env.do(http.MethodPost, "/api/v1/restaurants", env.writeKey, body)
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode(t, w)
	data := res.Data.(map[string]any)
	assert.Equal(t, "Trattoria", data["name"])
	assert.NotZero(t, data["id"])
}

func TestUnknownKeyRejected(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/restaurants", "dg_bogus", `{"name":"X"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRestaurantValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/restaurants", env.writeKey, `{"city":"Rome","capacity":-1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	res := decode(t, w)
	assert.False(t, res.Success)
	assert.Contains(t, res.Errors, "name")
	assert.Contains(t, res.Errors, "capacity")
}

func TestDeleteRestaurant(t *testing.T) {
	env := newTestEnv(t)
	r := store.Restaurant{Name: "Gone Soon"}
	require.NoError(t, env.restaurants.Create(context.Background(), &r))

	w := env.do(http.MethodDelete, fmt.Sprintf("/api/v1/restaurants/%d", r.ID), env.writeKey, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/v1/restaurants/%d", r.ID), env.writeKey, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t)
	r := store.Restaurant{Name: "Bistro", Capacity: 60}
	require.NoError(t, env.restaurants.Create(context.Background(), &r))

	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	for _, res := range []store.Reservation{
		{RestaurantID: r.ID, CustomerName: "A", Date: date, Guests: 20, Status: store.ReservationConfirmed},
		{RestaurantID: r.ID, CustomerName: "B", Date: date, Guests: 22, Status: store.ReservationPending},
		{RestaurantID: r.ID, CustomerName: "C", Date: date, Guests: 30, Status: store.ReservationCancelled},
	} {
		res := res
		require.NoError(t, env.reservations.Create(context.Background(), &res))
	}

	w := env.do(http.MethodGet, fmt.Sprintf("/api/v1/availability/%d?date=2026-09-10", r.ID), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	data := body.Data.(map[string]any)
	assert.Equal(t, 60.0, data["capacity"])
	assert.Equal(t, 42.0, data["reserved_guests"])
	assert.Equal(t, 18.0, data["available_seats"])
	assert.Equal(t, 30.0, data["availability_percentage"])
}

func TestAvailabilityRequiresDate(t *testing.T) {
	env := newTestEnv(t)
	r := store.Restaurant{Name: "Bistro", Capacity: 60}
	require.NoError(t, env.restaurants.Create(context.Background(), &r))

	w := env.do(http.MethodGet, fmt.Sprintf("/api/v1/availability/%d", r.ID), "", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	res := decode(t, w)
	assert.Contains(t, res.Errors, "date")
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPatch, "/api/v1/restaurants", env.writeKey, "{}")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	res := decode(t, w)
	assert.False(t, res.Success)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/nope", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	res := decode(t, w)
	assert.False(t, res.Success)
}

func TestListServicesMergesPartners(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceTour, services: []partner.NormalizedService{
			{ID: "1", Type: partner.ServiceTour, Name: "Wine Tour"},
		}},
		&fakePartner{typ: partner.ServiceHotel, err: partner.NewConnectionFailed(partner.ServiceHotel, "list", context.DeadlineExceeded)},
	)

	w := env.do(http.MethodGet, "/api/v1/services", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	res := decode(t, w)
	items := res.Data.([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Wine Tour", items[0].(map[string]any)["name"])
}

func TestListServicesByTypeCollapsesFailure(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceTour, err: partner.NewHTTPError(partner.ServiceTour, "list", 500, nil)},
	)

	w := env.do(http.MethodGet, "/api/v1/services/tour", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w = env.do(http.MethodGet, "/api/v1/services/cruise", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceDetailsUnsupported(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceTaxi, err: partner.NewUnsupported(partner.ServiceTaxi, "details")},
	)

	w := env.do(http.MethodGet, "/api/v1/services/taxi/3", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookServiceEndpoint(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceHotel, ack: &partner.BookingAck{Reference: "HB-1", Status: "reserved"}},
	)

	body := `{"service_type":"hotel","service_id":"15","date":"2026-10-01","guests":2,
		"customer":{"id":"77","name":"Amy","email":"amy@example.com"}}`
	w := env.do(http.MethodPost, "/api/v1/bookings", env.writeKey, body)
	require.Equal(t, http.StatusCreated, w.Code)

	res := decode(t, w)
	data := res.Data.(map[string]any)
	assert.Equal(t, true, data["confirmed"])

	// And the local record is durable.
	assert.Len(t, env.bookings.records, 1)
}

func TestBookServicePartnerDownStillCreated(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceHotel, err: partner.NewConnectionFailed(partner.ServiceHotel, "book", context.DeadlineExceeded)},
	)

	body := `{"service_type":"hotel","service_id":"15","customer":{"id":"77"}}`
	w := env.do(http.MethodPost, "/api/v1/bookings", env.writeKey, body)
	require.Equal(t, http.StatusCreated, w.Code)

	res := decode(t, w)
	data := res.Data.(map[string]any)
	assert.Equal(t, false, data["confirmed"])

	pending, err := env.bookings.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBookServiceValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/bookings", env.writeKey, `{"service_type":"cruise"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	res := decode(t, w)
	assert.Contains(t, res.Errors, "service_type")
}

func TestBookPackageEndpoint(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceHotel, ack: &partner.BookingAck{Reference: "HB-1"}},
		&fakePartner{typ: partner.ServiceTaxi, err: partner.NewHTTPError(partner.ServiceTaxi, "book", 503, nil)},
	)

	body := `{"services":[
		{"service_type":"hotel","service_id":"15"},
		{"service_type":"taxi","pickup_location":"A","destination":"B"}
	],"customer":{"id":"77"}}`
	w := env.do(http.MethodPost, "/api/v1/bookings/package", env.writeKey, body)
	require.Equal(t, http.StatusCreated, w.Code)

	res := decode(t, w)
	data := res.Data.(map[string]any)
	assert.Equal(t, false, data["success"])
	outcomes := data["outcomes"].(map[string]any)
	require.Len(t, outcomes, 2)
	assert.NotEmpty(t, data["package_id"])
}

func TestPendingBookingsEndpoint(t *testing.T) {
	env := newTestEnv(t,
		&fakePartner{typ: partner.ServiceTour, err: partner.NewConnectionFailed(partner.ServiceTour, "book", context.DeadlineExceeded)},
	)

	body := `{"service_type":"tour","service_id":"1","customer":{"id":"77"}}`
	w := env.do(http.MethodPost, "/api/v1/bookings", env.writeKey, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/v1/bookings/pending", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	items := res.Data.([]any)
	assert.Len(t, items, 1)
}

func TestPartnerHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &fakePartner{typ: partner.ServiceTour})

	w := env.do(http.MethodGet, "/api/v1/partners/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.True(t, res.Success)
}

func TestQueryParamKeyAccepted(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/restaurants?api_key="+env.writeKey, "", `{"name":"Via Query"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
