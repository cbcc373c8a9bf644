package provider

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/store"
)

type reservationsHandler struct {
	reservations store.ReservationStore
	restaurants  store.RestaurantStore
}

type reservationRequest struct {
	RestaurantID    int64  `json:"restaurant_id"`
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Guests          int    `json:"guests"`
	Status          string `json:"status"`
	SpecialRequests string `json:"special_requests"`
}

func (req reservationRequest) validate() (time.Time, map[string]string) {
	errs := map[string]string{}
	if req.RestaurantID == 0 {
		errs["restaurant_id"] = "required"
	}
	if req.CustomerName == "" {
		errs["customer_name"] = "required"
	}
	if req.Date == "" {
		errs["date"] = "required"
	}
	if req.Guests < 1 {
		errs["guests"] = "must be at least 1"
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			errs["date"] = "must be YYYY-MM-DD"
		}
	}
	if req.Status != "" {
		switch req.Status {
		case store.ReservationPending, store.ReservationConfirmed,
			store.ReservationCancelled, store.ReservationCompleted:
		default:
			errs["status"] = "unknown status"
		}
	}
	return date, errs
}

func (h *reservationsHandler) list(c *gin.Context) {
	var f store.ReservationFilter
	if v := c.Query("restaurant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid restaurant_id")
			return
		}
		f.RestaurantID = id
	}
	f.Status = c.Query("status")

	page := pageParams(c)
	items, total, err := h.reservations.List(c.Request.Context(), f, page)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if items == nil {
		items = []store.Reservation{}
	}
	okPaged(c, "reservations", items, NewPagination(total, page))
}

func (h *reservationsHandler) get(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	r, err := h.reservations.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "reservation not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch reservation")
		return
	}
	ok(c, "reservation", r)
}

func (h *reservationsHandler) create(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	date, errs := req.validate()
	if len(errs) > 0 {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", errs)
		return
	}

	if _, err := h.restaurants.GetByID(c.Request.Context(), req.RestaurantID); err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "restaurant not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}

	status := req.Status
	if status == "" {
		status = store.ReservationPending
	}

	r := store.Reservation{
		RestaurantID:    req.RestaurantID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		Date:            date,
		Time:            req.Time,
		Guests:          req.Guests,
		Status:          status,
		SpecialRequests: req.SpecialRequests,
	}
	if err := h.reservations.Create(c.Request.Context(), &r); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create reservation")
		return
	}
	created(c, "reservation created", r)
}

func (h *reservationsHandler) update(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}

	existing, err := h.reservations.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "reservation not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch reservation")
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.RestaurantID = existing.RestaurantID
	date, errs := req.validate()
	if len(errs) > 0 {
		failFields(c, http.StatusUnprocessableEntity, "validation failed", errs)
		return
	}

	existing.CustomerName = req.CustomerName
	existing.CustomerEmail = req.CustomerEmail
	existing.Date = date
	existing.Time = req.Time
	existing.Guests = req.Guests
	if req.Status != "" {
		existing.Status = req.Status
	}
	existing.SpecialRequests = req.SpecialRequests

	if err := h.reservations.Update(c.Request.Context(), &existing); err != nil {
		fail(c, http.StatusInternalServerError, "failed to update reservation")
		return
	}
	ok(c, "reservation updated", existing)
}

func (h *reservationsHandler) delete(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	if _, err := h.reservations.GetByID(c.Request.Context(), id); err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "reservation not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch reservation")
		return
	}
	if err := h.reservations.Delete(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, "failed to delete reservation")
		return
	}
	noContent(c)
}
