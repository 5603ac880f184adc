package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/middleware"
	"github.com/ye-spencer/ACMWebsitePort-sub000/pkg/model"
)

// ReservationsClient is the typed client the site front end uses against the
// reservations service. Every call carries the caller's identity headers;
// when signingSecret is set the headers are HMAC-signed the same way the
// service verifies them.
type ReservationsClient struct {
	httpClient    *HttpClient
	signingSecret string
}

func NewReservationsClient(baseURL string, signingSecret string) *ReservationsClient {
	return &ReservationsClient{
		httpClient:    NewHttpClient(baseURL),
		signingSecret: signingSecret,
	}
}

func (c *ReservationsClient) identityHeaders(ownerID string, member bool) map[string]string {
	status := middleware.MemberStatusGuest
	if member {
		status = middleware.MemberStatusMember
	}

	headers := map[string]string{
		middleware.HeaderMemberID:     ownerID,
		middleware.HeaderMemberStatus: status,
	}
	if c.signingSecret != "" {
		headers[middleware.HeaderIdentitySignature] = middleware.SignIdentity(c.signingSecret, ownerID, status)
	}
	return headers
}

func (c *ReservationsClient) AttemptBooking(ctx context.Context, ownerID string, member bool, body any) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/reservations", body, c.identityHeaders(ownerID, member))
}

func (c *ReservationsClient) ListWeek(ctx context.Context, ownerID string, member bool) (*Response, error) {
	return c.httpClient.GETWithHeaders(ctx, "/api/v1/reservations", c.identityHeaders(ownerID, member))
}

func (c *ReservationsClient) Availability(ctx context.Context, ownerID string, member bool) (*Response, error) {
	return c.httpClient.GETWithHeaders(ctx, "/api/v1/reservations/availability", c.identityHeaders(ownerID, member))
}

func (c *ReservationsClient) Delete(ctx context.Context, ownerID string, member bool, bookingID string) (*Response, error) {
	path := "/api/v1/reservations/id/" + url.PathEscape(bookingID)
	return c.httpClient.DELETEWithHeaders(ctx, path, c.identityHeaders(ownerID, member))
}

func (c *ReservationsClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode reservation wrapper:\n%+v\n%s", resp.ToString(), err)
	}

	var booking model.Booking
	if err := json.Unmarshal(wrapper.Data, &booking); err != nil {
		return nil, fmt.Errorf("could not decode reservation json:\n%+v\n%s", resp.ToString(), err)
	}

	return &booking, nil
}

func (c *ReservationsClient) DecodeWeek(resp *Response) ([]*model.Booking, error) {
	var wrapper struct {
		Data struct {
			Reservations []*model.Booking `json:"reservations"`
		} `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode week listing:\n%+v\n%s", resp.ToString(), err)
	}

	return wrapper.Data.Reservations, nil
}

// WeekGrid mirrors the availability payload without importing the service
// internals.
type WeekGrid struct {
	WindowStart time.Time   `json:"window_start"`
	WindowEnd   time.Time   `json:"window_end"`
	Days        [7][48]bool `json:"days"`
}

func (c *ReservationsClient) DecodeAvailability(resp *Response) (*WeekGrid, error) {
	var wrapper struct {
		Data WeekGrid `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode availability grid:\n%+v\n%s", resp.ToString(), err)
	}

	return &wrapper.Data, nil
}
