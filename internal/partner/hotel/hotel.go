// Package hotel adapts the hotel booking partner's REST API, the most
// conventional of the three partners: resource paths, JSON both ways, and a
// dedicated bookings endpoint.
package hotel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/example/dinegate/internal/partner"
)

type Adapter struct {
	c *partner.Client
}

func New(baseURL, apiKey, consumer string, timeout time.Duration) *Adapter {
	return &Adapter{c: partner.NewClient(partner.ServiceHotel, baseURL, apiKey, consumer, timeout)}
}

func (a *Adapter) Type() partner.ServiceType { return partner.ServiceHotel }

func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.c.Get(ctx, "ping", "/health", nil)
	return err
}

type hotelItem struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	City          string      `json:"city"`
	PricePerNight json.Number `json:"price_per_night"`
	Rating        *float64    `json:"rating"`
	Available     *bool       `json:"available"`
	ImageURL      string      `json:"image_url"`
}

type listEnvelope struct {
	Hotels []hotelItem `json:"hotels"`
}

func (a *Adapter) List(ctx context.Context, f partner.Filters) ([]partner.NormalizedService, error) {
	q := url.Values{}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.Search != "" && f.City == "" {
		q.Set("city", f.Search)
	}
	if !f.CheckIn.IsZero() {
		q.Set("check_in", f.CheckIn.Format("2006-01-02"))
	}
	if !f.CheckOut.IsZero() {
		q.Set("check_out", f.CheckOut.Format("2006-01-02"))
	}

	_, body, err := a.c.Get(ctx, "list", "/hotels", q)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "list", body, err)
	}
	if env.Hotels == nil {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "list", body,
			fmt.Errorf("missing hotels field"))
	}

	out := make([]partner.NormalizedService, 0, len(env.Hotels))
	for _, it := range env.Hotels {
		out = append(out, normalize(it))
	}
	return out, nil
}

func (a *Adapter) Details(ctx context.Context, id string) (*partner.Details, error) {
	_, body, err := a.c.Get(ctx, "details", "/hotels/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var it hotelItem
	if err := json.Unmarshal(body, &it); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "details", body, err)
	}
	if it.ID.String() == "" {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "details", body,
			fmt.Errorf("missing id field"))
	}

	return &partner.Details{
		Service: normalize(it),
		Extra: map[string]any{
			"city": it.City,
		},
	}, nil
}

type bookResponse struct {
	BookingID json.Number `json:"booking_id"`
	Status    string      `json:"status"`
}

// Book merges customer, hotel, and correlation fields into one payload the
// way the partner's bookings endpoint expects.
func (a *Adapter) Book(ctx context.Context, req partner.BookingRequest, customer partner.CustomerInfo) (*partner.BookingAck, error) {
	checkIn := ""
	if !req.Date.IsZero() {
		checkIn = req.Date.Format("2006-01-02")
	}
	payload, err := json.Marshal(map[string]any{
		"hotel_id":       req.ServiceID,
		"check_in":       checkIn,
		"guests":         req.Guests,
		"customer_name":  customer.Name,
		"customer_email": customer.Email,
		"requests":       req.SpecialRequests,
	})
	if err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "book", nil, err)
	}

	_, body, err := a.c.PostJSON(ctx, "book", "/bookings", payload)
	if err != nil {
		return nil, err
	}

	var res bookResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "book", body, err)
	}
	if res.BookingID.String() == "" {
		return nil, partner.NewInvalidResponse(partner.ServiceHotel, "book", body,
			fmt.Errorf("missing booking_id field"))
	}

	status := res.Status
	if status == "" {
		status = "confirmed"
	}
	return &partner.BookingAck{Reference: res.BookingID.String(), Status: status}, nil
}

func normalize(it hotelItem) partner.NormalizedService {
	rating := partner.DefaultRating
	if it.Rating != nil {
		rating = *it.Rating
	}
	available := true
	if it.Available != nil {
		available = *it.Available
	}
	price, _ := it.PricePerNight.Float64()

	image := it.ImageURL
	if image == "" {
		image = partner.PlaceholderImage
	}

	desc := it.Description
	if desc == "" {
		desc = it.City
	}

	return partner.NormalizedService{
		ID:          it.ID.String(),
		Type:        partner.ServiceHotel,
		Name:        it.Name,
		Description: desc,
		Price:       price,
		Rating:      rating,
		Available:   available,
		Image:       image,
	}
}
