package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"hostbook/pkg/model"
)

// ReservationClient calls the bookings HTTP API. Host and guest references
// may be ids or email addresses.
type ReservationClient struct {
	http *HttpClient
}

func NewReservationClient(baseURL string) *ReservationClient {
	return &ReservationClient{http: NewHttpClient(baseURL, nil)}
}

func (c *ReservationClient) ListByHost(ctx context.Context, host string) ([]model.ReservationView, error) {
	resp, err := c.http.Send(ctx, http.MethodGet, hostPath(host, "reservations"), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(resp)
}

func (c *ReservationClient) Make(ctx context.Context, host string, req model.ReservationRequest) (*model.ReservationView, error) {
	resp, err := c.http.Send(ctx, http.MethodPost, hostPath(host, "reservations"), req, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[model.ReservationView](resp, http.StatusCreated)
}

// MakeIdempotent retries safely: the server replays the first response for
// the same key.
func (c *ReservationClient) MakeIdempotent(ctx context.Context, host, key string, req model.ReservationRequest) (*model.ReservationView, bool, error) {
	resp, err := c.http.Send(ctx, http.MethodPost, hostPath(host, "reservations"), req, http.Header{
		"Idempotency-Key": {key},
	})
	if err != nil {
		return nil, false, err
	}
	view, err := decodeData[model.ReservationView](resp, http.StatusCreated)
	return view, resp.Header.Get("Idempotent-Replayed") == "true", err
}

func (c *ReservationClient) Edit(ctx context.Context, host string, id int, req model.ReservationRequest) (*model.ReservationView, error) {
	resp, err := c.http.Send(ctx, http.MethodPut, fmt.Sprintf("%s/%d", hostPath(host, "reservations"), id), req, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[model.ReservationView](resp, http.StatusOK)
}

func (c *ReservationClient) Cancel(ctx context.Context, host string, id int) error {
	resp, err := c.http.Send(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", hostPath(host, "reservations"), id), nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return resp.Err()
	}
	return nil
}

func (c *ReservationClient) Quote(ctx context.Context, host string, req model.ReservationRequest) (*model.QuoteView, error) {
	resp, err := c.http.Send(ctx, http.MethodPost, hostPath(host, "quote"), req, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[model.QuoteView](resp, http.StatusOK)
}

func (c *ReservationClient) ListByGuest(ctx context.Context, guest string) ([]model.ReservationView, error) {
	resp, err := c.http.Send(ctx, http.MethodGet, "/api/v1/guests/"+url.PathEscape(guest)+"/reservations", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(resp)
}

func (c *ReservationClient) Search(ctx context.Context, state, city, postalCode string) ([]model.ReservationView, error) {
	query := url.Values{}
	if state != "" {
		query.Set("state", state)
	}
	if city != "" {
		query.Set("city", city)
	}
	if postalCode != "" {
		query.Set("postal_code", postalCode)
	}

	resp, err := c.http.Send(ctx, http.MethodGet, "/api/v1/reservations?"+query.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(resp)
}

func (c *ReservationClient) NextID(ctx context.Context) (int, error) {
	resp, err := c.http.Send(ctx, http.MethodGet, "/api/v1/reservations/next-id", nil, nil)
	if err != nil {
		return 0, err
	}
	view, err := decodeData[model.NextIDView](resp, http.StatusOK)
	if err != nil {
		return 0, err
	}
	return view.NextID, nil
}

func hostPath(host, resource string) string {
	return "/api/v1/hosts/" + url.PathEscape(host) + "/" + resource
}

func decodeList(resp *Response) ([]model.ReservationView, error) {
	var views []model.ReservationView
	if err := resp.Data(http.StatusOK, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func decodeData[T any](resp *Response, wantStatus int) (*T, error) {
	var v T
	if err := resp.Data(wantStatus, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
