package provider

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/store"
)

type restaurantsHandler struct {
	restaurants store.RestaurantStore
}

type restaurantRequest struct {
	Name        string `json:"name"`
	City        string `json:"city"`
	CuisineType string `json:"cuisine_type"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	OpensAt     string `json:"opens_at"`
	ClosesAt    string `json:"closes_at"`
}

func (req restaurantRequest) validate() map[string]string {
	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "required"
	}
	if req.Capacity < 0 {
		errs["capacity"] = "must not be negative"
	}
	return errs
}

func (h *restaurantsHandler) list(c *gin.Context) {
	page := pageParams(c)
	items, total, err := h.restaurants.List(c.Request.Context(), page)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	if items == nil {
		items = []store.Restaurant{}
	}
	okPaged(c, "restaurants", items, NewPagination(total, page))
}

func (h *restaurantsHandler) get(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	r, err := h.restaurants.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "restaurant not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}
	ok(c, "restaurant", r)
}

func (h *restaurantsHandler) create(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failFields(c, http.StatusBadRequest, "missing or invalid fields", errs)
		return
	}

	r := store.Restaurant{
		Name:        req.Name,
		City:        req.City,
		CuisineType: req.CuisineType,
		Description: req.Description,
		Capacity:    req.Capacity,
		OpensAt:     req.OpensAt,
		ClosesAt:    req.ClosesAt,
	}
	if err := h.restaurants.Create(c.Request.Context(), &r); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create restaurant")
		return
	}
	created(c, "restaurant created", r)
}

func (h *restaurantsHandler) update(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}

	existing, err := h.restaurants.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "restaurant not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}

	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		failFields(c, http.StatusUnprocessableEntity, "validation failed", errs)
		return
	}

	existing.Name = req.Name
	existing.City = req.City
	existing.CuisineType = req.CuisineType
	existing.Description = req.Description
	existing.Capacity = req.Capacity
	existing.OpensAt = req.OpensAt
	existing.ClosesAt = req.ClosesAt

	if err := h.restaurants.Update(c.Request.Context(), &existing); err != nil {
		fail(c, http.StatusInternalServerError, "failed to update restaurant")
		return
	}
	ok(c, "restaurant updated", existing)
}

func (h *restaurantsHandler) delete(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	if _, err := h.restaurants.GetByID(c.Request.Context(), id); err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "restaurant not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch restaurant")
		return
	}
	if err := h.restaurants.Delete(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, "failed to delete restaurant")
		return
	}
	noContent(c)
}
