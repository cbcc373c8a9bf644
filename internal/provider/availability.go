package provider

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/store"
)

type availabilityHandler struct {
	restaurants  store.RestaurantStore
	reservations store.ReservationStore
}

type availabilityResponse struct {
	RestaurantID    int64   `json:"restaurant_id"`
	Date            string  `json:"date"`
	Time            string  `json:"time,omitempty"`
	Capacity        int     `json:"capacity"`
	ReservedGuests  int     `json:"reserved_guests"`
	AvailableSeats  int     `json:"available_seats"`
	AvailabilityPct float64 `json:"availability_percentage"`
}

// get computes advisory availability: capacity minus the guests of every
// non-cancelled reservation for the date. The read is not serialized with
// subsequent inserts, so concurrent bookers can both observe free seats and
// jointly overbook; callers must treat the value as an estimate.
func (h *availabilityHandler) get(c *gin.Context) {
	restaurantID, err := strconv.ParseInt(c.Param("restaurant_id"), 10, 64)
	if err != nil || restaurantID < 1 {
		fail(c, http.StatusBadRequest, "invalid restaurant_id")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", map[string]string{"date": "required"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", map[string]string{"date": "must be YYYY-MM-DD"})
		return
	}

	r, err := h.restaurants.GetByID(c.Request.Context(), restaurantID)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "restaurant not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}

	reserved, err := h.reservations.GuestsForDate(c.Request.Context(), restaurantID, date)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to compute availability")
		return
	}

	available := r.Capacity - reserved
	if available < 0 {
		available = 0
	}
	pct := 0.0
	if r.Capacity > 0 {
		pct = float64(available) / float64(r.Capacity) * 100
	}

	ok(c, "availability", availabilityResponse{
		RestaurantID:    restaurantID,
		Date:            dateStr,
		Time:            c.Query("time"),
		Capacity:        r.Capacity,
		ReservedGuests:  reserved,
		AvailableSeats:  available,
		AvailabilityPct: pct,
	})
}
