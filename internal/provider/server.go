package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/dinegate/internal/aggregator"
	"github.com/example/dinegate/internal/apikeys"
	"github.com/example/dinegate/internal/booking"
	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/health"
	"github.com/example/dinegate/internal/store"
)

// Server wires the inbound API surface together. Every dependency is an
// interface or small struct so tests can assemble a Server around fakes.
type Server struct {
	DB           *db.DB
	Registry     *apikeys.Registry
	Restaurants  store.RestaurantStore
	Menu         store.MenuStore
	Reservations store.ReservationStore
	Bookings     booking.Store
	Aggregator   *aggregator.Aggregator
	Orchestrator *booking.Orchestrator
	HealthPoller *health.Poller

	CORSOrigins []string
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.HandleMethodNotAllowed = true

	if len(s.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = s.CORSOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-API-Key")
		r.Use(cors.New(cfg))
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "resource not found")
	})
	r.NoMethod(func(c *gin.Context) {
		fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	restaurants := &restaurantsHandler{restaurants: s.Restaurants}
	menu := &menuHandler{menu: s.Menu, restaurants: s.Restaurants}
	reservations := &reservationsHandler{reservations: s.Reservations, restaurants: s.Restaurants}
	availability := &availabilityHandler{restaurants: s.Restaurants, reservations: s.Reservations}
	services := &servicesHandler{agg: s.Aggregator, orchestrator: s.Orchestrator, healthPoller: s.HealthPoller}
	bookings := &bookingsHandler{store: s.Bookings}

	api := r.Group("/api/v1")

	// Reads are open; anything that mutates state sits behind an API key.
	api.GET("/restaurants", restaurants.list)
	api.GET("/restaurants/:id", restaurants.get)
	api.GET("/menu", menu.list)
	api.GET("/menu/:id", menu.get)
	api.GET("/reservations", reservations.list)
	api.GET("/reservations/:id", reservations.get)
	api.GET("/availability/:restaurant_id", availability.get)

	keyed := api.Group("", RequireAPIKey(s.Registry))
	keyed.POST("/restaurants", restaurants.create)
	keyed.PUT("/restaurants/:id", restaurants.update)
	keyed.DELETE("/restaurants/:id", restaurants.delete)
	keyed.POST("/menu", menu.create)
	keyed.PUT("/menu/:id", menu.update)
	keyed.DELETE("/menu/:id", menu.delete)
	keyed.POST("/reservations", reservations.create)
	keyed.PUT("/reservations/:id", reservations.update)
	keyed.DELETE("/reservations/:id", reservations.delete)

	api.GET("/services", services.listAll)
	api.GET("/services/:type", services.listByType)
	api.GET("/services/:type/:id", services.details)
	api.GET("/partners/health", services.partnerHealth)

	keyed.POST("/bookings", services.book)
	keyed.POST("/bookings/package", services.bookPackage)
	api.GET("/bookings/pending", bookings.listPending)
	api.GET("/bookings/customer/:customer_id", bookings.listByCustomer)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	if s.DB != nil {
		if err := s.DB.Ping(c.Request.Context()); err != nil {
			fail(c, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	ok(c, "ok", nil)
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("listening on %s\n", addr)
	return srv.ListenAndServe()
}
