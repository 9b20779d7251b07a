package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "hostbook/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// HttpClient sends JSON requests to one bookings server.
type HttpClient struct {
	baseURL string
	http    *http.Client
}

func NewHttpClient(baseURL string, httpClient *http.Client) *HttpClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HttpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Send marshals body (if any) as JSON and reads the whole response.
func (c *HttpClient) Send(ctx context.Context, method, path string, body any, header http.Header) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Data decodes the {"data": ...} envelope into target when the status is
// wantStatus, and returns the server's error otherwise.
func (r *Response) Data(wantStatus int, target any) error {
	if r.StatusCode != wantStatus {
		return r.Err()
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := json.Unmarshal(r.Body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Err rebuilds the server's AppError from an error body. Handlers put the
// text under "error" and the middlewares under "message". Bodies that are not
// error envelopes become an internal error carrying the raw text.
func (r *Response) Err() error {
	var body struct {
		Error   string         `json:"error"`
		Message string         `json:"message"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil || body.Code == "" {
		message := strings.TrimSpace(string(r.Body))
		if message == "" {
			message = http.StatusText(r.StatusCode)
		}
		return apperrors.New(apperrors.CodeInternal, message, r.StatusCode)
	}
	if body.Error == "" {
		body.Error = body.Message
	}
	return apperrors.New(body.Code, body.Error, r.StatusCode).WithDetails(body.Details)
}
