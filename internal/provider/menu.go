package provider

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/store"
)

type menuHandler struct {
	menu        store.MenuStore
	restaurants store.RestaurantStore
}

type menuItemRequest struct {
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Available    *bool   `json:"available"`
}

func (req menuItemRequest) validate() map[string]string {
	errs := map[string]string{}
	if req.RestaurantID == 0 {
		errs["restaurant_id"] = "required"
	}
	if req.Name == "" {
		errs["name"] = "required"
	}
	if req.Price < 0 {
		errs["price"] = "must not be negative"
	}
	return errs
}

func (h *menuHandler) list(c *gin.Context) {
	var f store.MenuFilter
	if v := c.Query("restaurant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid restaurant_id")
			return
		}
		f.RestaurantID = id
	}
	f.Category = c.Query("category")

	items, err := h.menu.List(c.Request.Context(), f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to list menu items")
		return
	}
	if items == nil {
		items = []store.MenuItem{}
	}
	ok(c, "menu items", items)
}

func (h *menuHandler) get(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	m, err := h.menu.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "menu item not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch menu item")
		return
	}
	ok(c, "menu item", m)
}

func (h *menuHandler) create(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
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

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	m := store.MenuItem{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Available:    available,
	}
	if err := h.menu.Create(c.Request.Context(), &m); err != nil {
		fail(c, http.StatusInternalServerError, "failed to create menu item")
		return
	}
	created(c, "menu item created", m)
}

func (h *menuHandler) update(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}

	existing, err := h.menu.GetByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "menu item not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch menu item")
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		failFields(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"name": "required"})
		return
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Category = req.Category
	existing.Price = req.Price
	if req.Available != nil {
		existing.Available = *req.Available
	}

	if err := h.menu.Update(c.Request.Context(), &existing); err != nil {
		fail(c, http.StatusInternalServerError, "failed to update menu item")
		return
	}
	ok(c, "menu item updated", existing)
}

func (h *menuHandler) delete(c *gin.Context) {
	id, ok2 := pathID(c)
	if !ok2 {
		return
	}
	if _, err := h.menu.GetByID(c.Request.Context(), id); err != nil {
		if db.IsNotFound(err) {
			fail(c, http.StatusNotFound, "menu item not found")
			return
		}
		fail(c, http.StatusInternalServerError, "failed to fetch menu item")
		return
	}
	if err := h.menu.Delete(c.Request.Context(), id); err != nil {
		fail(c, http.StatusInternalServerError, "failed to delete menu item")
		return
	}
	noContent(c)
}
