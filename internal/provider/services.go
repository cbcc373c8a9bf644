package provider

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/aggregator"
	"github.com/example/dinegate/internal/booking"
	"github.com/example/dinegate/internal/health"
	"github.com/example/dinegate/internal/partner"
)

type servicesHandler struct {
	agg          *aggregator.Aggregator
	orchestrator *booking.Orchestrator
	healthPoller *health.Poller
}

func parseFilters(c *gin.Context) partner.Filters {
	f := partner.Filters{
		Search: c.Query("search"),
		City:   c.Query("city"),
	}
	if v := c.Query("check_in"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.CheckIn = t
		}
	}
	if v := c.Query("check_out"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.CheckOut = t
		}
	}
	return f
}

func (h *servicesHandler) listAll(c *gin.Context) {
	services := h.agg.GetAllServices(c.Request.Context(), parseFilters(c))
	if services == nil {
		services = []partner.NormalizedService{}
	}
	ok(c, "services", services)
}

// listByType collapses a partner failure into an empty list: the caller sees
// the same shape whether the partner had nothing or was unreachable. The
// distinction is available to Go callers of the aggregator and in the logs.
func (h *servicesHandler) listByType(c *gin.Context) {
	t, err := partner.ParseServiceType(c.Param("type"))
	if err != nil {
		fail(c, http.StatusBadRequest, "unknown service type")
		return
	}

	services, err := h.agg.GetServicesByType(c.Request.Context(), t, parseFilters(c))
	if err != nil || services == nil {
		services = []partner.NormalizedService{}
	}
	ok(c, "services", services)
}

func (h *servicesHandler) details(c *gin.Context) {
	t, err := partner.ParseServiceType(c.Param("type"))
	if err != nil {
		fail(c, http.StatusBadRequest, "unknown service type")
		return
	}

	details, err := h.agg.GetServiceDetails(c.Request.Context(), t, c.Param("id"))
	if err != nil {
		if partner.IsUnsupported(err) {
			fail(c, http.StatusNotFound, "partner does not provide service details")
			return
		}
		fail(c, http.StatusInternalServerError, "partner unavailable")
		return
	}
	ok(c, "service details", details)
}

type customerPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p customerPayload) info() partner.CustomerInfo {
	return partner.CustomerInfo{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

type bookServiceRequest struct {
	ServiceType     string          `json:"service_type"`
	ServiceID       string          `json:"service_id"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Guests          int             `json:"guests"`
	PickupLocation  string          `json:"pickup_location"`
	Destination     string          `json:"destination"`
	SpecialRequests string          `json:"special_requests"`
	Customer        customerPayload `json:"customer"`
}

func (req bookServiceRequest) toPartnerRequest() (partner.ServiceType, partner.BookingRequest, map[string]string) {
	errs := map[string]string{}

	t, err := partner.ParseServiceType(req.ServiceType)
	if err != nil {
		errs["service_type"] = "must be one of tour, hotel, taxi"
	}
	if req.ServiceID == "" && t != partner.ServiceTaxi {
		errs["service_id"] = "required"
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			errs["date"] = "must be YYYY-MM-DD"
		}
	}

	return t, partner.BookingRequest{
		ServiceID:       req.ServiceID,
		Date:            date,
		Time:            req.Time,
		Guests:          req.Guests,
		PickupLocation:  req.PickupLocation,
		Destination:     req.Destination,
		SpecialRequests: req.SpecialRequests,
	}, errs
}

func (h *servicesHandler) book(c *gin.Context) {
	var req bookServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	t, preq, errs := req.toPartnerRequest()
	if len(errs) > 0 {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", errs)
		return
	}

	outcome, err := h.orchestrator.BookService(c.Request.Context(), t, preq, req.Customer.info())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to record booking")
		return
	}

	msg := "booking confirmed"
	if !outcome.Confirmed {
		msg = "booking recorded, awaiting partner confirmation"
	}
	created(c, msg, outcome)
}

type bookPackageRequest struct {
	Services []bookServiceRequest `json:"services"`
	Customer customerPayload      `json:"customer"`
}

func (h *servicesHandler) bookPackage(c *gin.Context) {
	var req bookPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Services) == 0 {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", map[string]string{"services": "required"})
		return
	}

	items := make([]booking.PackageItem, 0, len(req.Services))
	for _, s := range req.Services {
		t, preq, errs := s.toPartnerRequest()
		if len(errs) > 0 {
			failFields(c, http.StatusBadRequest, "missing or invalid fields", errs)
			return
		}
		items = append(items, booking.PackageItem{Type: t, Request: preq})
	}

	result, err := h.orchestrator.BookPackage(c.Request.Context(), items, req.Customer.info())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to record package booking")
		return
	}

	msg := "package booked"
	if !result.Success {
		msg = "package partially booked; some services await confirmation"
	}
	created(c, msg, result)
}

func (h *servicesHandler) partnerHealth(c *gin.Context) {
	ok(c, "partner health", h.healthPoller.Snapshot())
}

type bookingsHandler struct {
	store booking.Store
}

const defaultPendingLimit = 100

func (h *bookingsHandler) listPending(c *gin.Context) {
	limit := defaultPendingLimit
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}
	records, err := h.store.ListPending(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list pending bookings")
		return
	}
	if records == nil {
		records = []booking.Record{}
	}
	ok(c, "pending bookings", records)
}

func (h *bookingsHandler) listByCustomer(c *gin.Context) {
	records, err := h.store.ListByCustomer(c.Request.Context(), c.Param("customer_id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	if records == nil {
		records = []booking.Record{}
	}
	ok(c, "bookings", records)
}
