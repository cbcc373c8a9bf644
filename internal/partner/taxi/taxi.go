// Package taxi adapts the taxi dispatch partner. Two quirks live here: list
// responses are a bare JSON array with no envelope, and bookings must be
// form-url-encoded because the endpoint rejects JSON content types.
package taxi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/example/dinegate/internal/partner"
)

type Adapter struct {
	c *partner.Client
}

func New(baseURL, apiKey, consumer string, timeout time.Duration) *Adapter {
	return &Adapter{c: partner.NewClient(partner.ServiceTaxi, baseURL, apiKey, consumer, timeout)}
}

func (a *Adapter) Type() partner.ServiceType { return partner.ServiceTaxi }

func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.c.Get(ctx, "ping", "/health", nil)
	return err
}

type taxiItem struct {
	ID          json.Number `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	BasePrice   json.Number `json:"base_price"`
	PricePerKM  json.Number `json:"price_per_km"`
}

func (a *Adapter) List(ctx context.Context, f partner.Filters) ([]partner.NormalizedService, error) {
	_, body, err := a.c.Get(ctx, "list", "/services.php", nil)
	if err != nil {
		return nil, err
	}

	var items []taxiItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTaxi, "list", body, err)
	}

	out := make([]partner.NormalizedService, 0, len(items))
	for _, it := range items {
		// Price carries the per-km rate; the flag-fall base price stays a
		// partner detail. Units are partner-specific and not normalized.
		price, _ := it.PricePerKM.Float64()
		out = append(out, partner.NormalizedService{
			ID:          it.ID.String(),
			Type:        partner.ServiceTaxi,
			Name:        it.Name,
			Description: it.Description,
			Price:       price,
			Rating:      partner.DefaultRating,
			Available:   true,
			Image:       partner.PlaceholderImage,
		})
	}
	return out, nil
}

// Details always fails fast: the taxi partner has no per-service detail
// concept, so no network call is made.
func (a *Adapter) Details(ctx context.Context, id string) (*partner.Details, error) {
	return nil, partner.NewUnsupported(partner.ServiceTaxi, "details")
}

type bookResponse struct {
	Message   string      `json:"message"`
	BookingID json.Number `json:"booking_id"`
}

func (a *Adapter) Book(ctx context.Context, req partner.BookingRequest, customer partner.CustomerInfo) (*partner.BookingAck, error) {
	pickupTime := req.Time
	if pickupTime == "" && !req.Date.IsZero() {
		pickupTime = req.Date.Format("2006-01-02 15:04")
	}

	form := url.Values{}
	form.Set("user_id", customer.ID)
	form.Set("pickup_location", req.PickupLocation)
	form.Set("destination", req.Destination)
	form.Set("pickup_time", pickupTime)
	form.Set("passengers", strconv.Itoa(req.Guests))
	if customer.Email != "" {
		form.Set("email", customer.Email)
	}
	if req.ServiceID != "" {
		form.Set("service_id", req.ServiceID)
	}

	_, body, err := a.c.PostForm(ctx, "book", "/bookings.php", form)
	if err != nil {
		return nil, err
	}

	var res bookResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTaxi, "book", body, err)
	}
	if res.BookingID.String() == "" {
		return nil, partner.NewInvalidResponse(partner.ServiceTaxi, "book", body,
			fmt.Errorf("missing booking_id field"))
	}

	return &partner.BookingAck{Reference: res.BookingID.String(), Status: "confirmed"}, nil
}
