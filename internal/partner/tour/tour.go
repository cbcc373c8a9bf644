// Package tour adapts the tour operator's PHP API. The partner speaks JSON
// but signals booking success only through a free-text message field; that
// quirk stays inside this package.
package tour

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/dinegate/internal/partner"
)

type Adapter struct {
	c *partner.Client
}

func New(baseURL, apiKey, consumer string, timeout time.Duration) *Adapter {
	return &Adapter{c: partner.NewClient(partner.ServiceTour, baseURL, apiKey, consumer, timeout)}
}

func (a *Adapter) Type() partner.ServiceType { return partner.ServiceTour }

func (a *Adapter) Ping(ctx context.Context) error {
	_, _, err := a.c.Get(ctx, "ping", "/health", nil)
	return err
}

type tourItem struct {
	ID           json.Number `json:"id"`
	Title        string      `json:"title"`
	Location     string      `json:"location"`
	Price        json.Number `json:"price"`
	ScheduleDate string      `json:"schedule_date"`
	Image        string      `json:"image"`
}

type listEnvelope struct {
	Data []tourItem `json:"data"`
}

func (a *Adapter) List(ctx context.Context, f partner.Filters) ([]partner.NormalizedService, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	_, body, err := a.c.Get(ctx, "list", "/tours.php", q)
	if err != nil {
		return nil, err
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "list", body, err)
	}
	if env.Data == nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "list", body,
			fmt.Errorf("missing data field"))
	}

	out := make([]partner.NormalizedService, 0, len(env.Data))
	for _, it := range env.Data {
		out = append(out, normalize(it))
	}
	return out, nil
}

type detailsEnvelope struct {
	Data *tourItem `json:"data"`
}

func (a *Adapter) Details(ctx context.Context, id string) (*partner.Details, error) {
	q := url.Values{}
	q.Set("id", id)
	_, body, err := a.c.Get(ctx, "details", "/tours.php", q)
	if err != nil {
		return nil, err
	}

	var env detailsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "details", body, err)
	}
	if env.Data == nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "details", body,
			fmt.Errorf("missing data field"))
	}

	return &partner.Details{
		Service: normalize(*env.Data),
		Extra: map[string]any{
			"location":      env.Data.Location,
			"schedule_date": env.Data.ScheduleDate,
		},
	}, nil
}

type bookResponse struct {
	Message string `json:"message"`
	Data    struct {
		TourID json.Number `json:"tour_id"`
		UserID json.Number `json:"user_id"`
		Status string      `json:"status"`
	} `json:"data"`
}

// Book submits a guest-mode booking: the tour partner does not know our
// customer IDs, only an email and a name.
func (a *Adapter) Book(ctx context.Context, req partner.BookingRequest, customer partner.CustomerInfo) (*partner.BookingAck, error) {
	payload, err := json.Marshal(map[string]string{
		"tour_id": req.ServiceID,
		"email":   customer.Email,
		"name":    customer.Name,
	})
	if err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "book", nil, err)
	}

	_, body, err := a.c.PostJSON(ctx, "book", "/tours.php", payload)
	if err != nil {
		return nil, err
	}

	var res bookResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "book", body, err)
	}

	// The partner returns 200 for declined bookings too; the documented
	// contract is a substring match on the message field.
	msg := strings.ToLower(res.Message)
	if !strings.Contains(msg, "booking") && !strings.Contains(msg, "created") {
		return nil, partner.NewInvalidResponse(partner.ServiceTour, "book", body,
			fmt.Errorf("booking not acknowledged: %q", res.Message))
	}

	status := res.Data.Status
	if status == "" {
		status = "confirmed"
	}
	return &partner.BookingAck{Reference: res.Data.TourID.String(), Status: status}, nil
}

func normalize(it tourItem) partner.NormalizedService {
	desc := it.Location
	if it.ScheduleDate != "" {
		if desc != "" {
			desc += " · "
		}
		desc += it.ScheduleDate
	}

	price, _ := it.Price.Float64()

	image := it.Image
	if image == "" {
		image = partner.PlaceholderImage
	}

	return partner.NormalizedService{
		ID:          it.ID.String(),
		Type:        partner.ServiceTour,
		Name:        it.Title,
		Description: desc,
		Price:       price,
		Rating:      partner.DefaultRating,
		Available:   true,
		Image:       image,
	}
}
