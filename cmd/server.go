package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/dinegate/internal/aggregator"
	"github.com/example/dinegate/internal/apikeys"
	"github.com/example/dinegate/internal/booking"
	"github.com/example/dinegate/internal/config"
	"github.com/example/dinegate/internal/db"
	"github.com/example/dinegate/internal/health"
	"github.com/example/dinegate/internal/migrate"
	"github.com/example/dinegate/internal/partner"
	"github.com/example/dinegate/internal/partner/hotel"
	"github.com/example/dinegate/internal/partner/taxi"
	"github.com/example/dinegate/internal/partner/tour"
	"github.com/example/dinegate/internal/provider"
	"github.com/example/dinegate/internal/store"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the API server, partner aggregation and health polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			adapters := buildAdapters(cfg)
			if len(adapters) == 0 {
				log.Printf("no partner endpoints configured; service aggregation disabled")
			}

			agg := aggregator.New(adapters, cfg.PartnerTimeout)
			bookingStore := booking.NewPostgresStore(d)
			orchestrator := booking.NewOrchestrator(agg, bookingStore,
				booking.Policy{ConfirmOnAck: cfg.ConfirmOnAck}, cfg.PartnerTimeout)

			checker := health.NewChecker(adapters, cfg.PartnerTimeout)
			poller := health.NewPoller(checker, cfg.HealthInterval)
			go poller.Run(ctx)

			srv := &provider.Server{
				DB:           d,
				Registry:     apikeys.NewRegistry(apikeys.NewPostgresStore(d)),
				Restaurants:  store.NewPostgresRestaurants(d),
				Menu:         store.NewPostgresMenu(d),
				Reservations: store.NewPostgresReservations(d),
				Bookings:     bookingStore,
				Aggregator:   agg,
				Orchestrator: orchestrator,
				HealthPoller: poller,
				CORSOrigins:  cfg.CORSOrigins,
			}
			return provider.Start(ctx, cfg.ListenAddr, srv.Router())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func buildAdapters(cfg config.Config) []partner.Adapter {
	var adapters []partner.Adapter
	for _, ep := range cfg.Partners {
		var a partner.Adapter
		switch ep.Type {
		case partner.ServiceTour:
			a = tour.New(ep.BaseURL, ep.APIKey, cfg.ConsumerName, cfg.PartnerTimeout)
		case partner.ServiceHotel:
			a = hotel.New(ep.BaseURL, ep.APIKey, cfg.ConsumerName, cfg.PartnerTimeout)
		case partner.ServiceTaxi:
			a = taxi.New(ep.BaseURL, ep.APIKey, cfg.ConsumerName, cfg.PartnerTimeout)
		default:
			log.Printf("skipping unknown partner type %q", ep.Type)
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters
}
