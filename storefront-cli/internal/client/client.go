// Package client talks to the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"street-bites/pkg/domain"
)

const sessionCookie = "admin_token"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the storefront.
type APIError struct {
	Status     int
	Message    string
	Field      string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("storefront: %d %s (%s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("storefront: %d %s", e.Status, e.Message)
}

type LoginResponse struct {
	Status           string `json:"status"`
	RequiresApproval bool   `json:"requiresApproval"`
	RequestID        string `json:"requestId"`
}

type Client struct {
	baseURL string
	http    HTTPClient
	session string
}

func New(baseURL string, httpClient HTTPClient) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Session is the admin cookie value captured from the last login, if any.
func (c *Client) Session() string {
	return c.session
}

func (c *Client) SetSession(token string) {
	c.session = token
}

func (c *Client) Menu(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	return items, c.do(ctx, http.MethodGet, "/api/menu", nil, &items)
}

func (c *Client) Offers(ctx context.Context) ([]domain.SpecialOffer, error) {
	var offers []domain.SpecialOffer
	return offers, c.do(ctx, http.MethodGet, "/api/offers", nil, &offers)
}

// MenuBoard is the menu together with the offers running alongside it.
type MenuBoard struct {
	Items  []domain.MenuItem
	Offers []domain.SpecialOffer
}

// MenuBoard fetches the menu and the active offers in parallel, so a
// refreshed board never pairs new prices with stale offers.
func (c *Client) MenuBoard(ctx context.Context) (MenuBoard, error) {
	var board MenuBoard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.Menu(gctx)
		board.Items = items
		return err
	})
	g.Go(func() error {
		offers, err := c.Offers(gctx)
		board.Offers = offers
		return err
	})
	if err := g.Wait(); err != nil {
		return MenuBoard{}, err
	}
	return board, nil
}

func (c *Client) Location(ctx context.Context) (*domain.LocationData, error) {
	var loc domain.LocationData
	if err := c.do(ctx, http.MethodGet, "/api/location", nil, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// ActiveOrders lists orders the kitchen has not completed. A device id
// narrows the list on the server.
func (c *Client) ActiveOrders(ctx context.Context, deviceID string) ([]domain.Order, error) {
	path := "/api/orders"
	if deviceID != "" {
		path += "?" + url.Values{"deviceId": {deviceID}}.Encode()
	}
	var orders []domain.Order
	return orders, c.do(ctx, http.MethodGet, path, nil, &orders)
}

func (c *Client) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	body := map[string]domain.OrderStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id)+"/status", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Login(ctx context.Context, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/auth", map[string]string{"password": password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginStatus polls a pending login. An approved answer also carries the
// session cookie, which the client keeps.
func (c *Client) LoginStatus(ctx context.Context, requestID string) (domain.LoginStatus, error) {
	var resp LoginResponse
	path := "/api/admin/status?" + url.Values{"id": {requestID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return domain.LoginStatus(resp.Status), nil
}

func (c *Client) Verify(ctx context.Context, requestID, code string) error {
	body := map[string]string{"requestId": requestID, "code": code}
	return c.do(ctx, http.MethodPost, "/api/admin/verify", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.session})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			c.session = cookie.Value
		}
	}

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Field = body.Field
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}
