package provider

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/dinegate/internal/store"
)

// Envelope is the uniform response body for every inbound endpoint.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    *Meta             `json:"meta,omitempty"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

func NewPagination(total int, page store.Page) Pagination {
	pages := 0
	if page.PerPage > 0 {
		pages = (total + page.PerPage - 1) / page.PerPage
	}
	return Pagination{Total: total, Page: page.Number, PerPage: page.PerPage, Pages: pages}
}

func ok(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func okPaged(c *gin.Context, message string, data any, p Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: &Meta{Pagination: p}})
}

func created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

func failFields(c *gin.Context, status int, message string, errs map[string]string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Errors: errs})
}

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// pageParams parses page/per_page with the API's defaults and caps.
func pageParams(c *gin.Context) store.Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return store.Page{Number: page, PerPage: perPage}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
