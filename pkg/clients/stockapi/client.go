package stockapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stock api error: status=%d, message=%s", e.StatusCode, e.Message)
}

type errorBody struct {
	Message string `json:"message"`
}

// Client is a resty-backed client for the /v1 stock and sales API.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a client for the server at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/") + "/v1").
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient}
}

// Sale describes a sale. Amount and Price are optional.
type Sale struct {
	Name   string
	Amount *int64
	Price  *float64
}

// ListStocks returns every item and its amount.
func (c *Client) ListStocks(ctx context.Context) (map[string]int64, error) {
	stocks := make(map[string]int64)
	if _, err := c.do(ctx, http.MethodGet, "/stocks", nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// GetStock returns the amount on hand for name.
func (c *Client) GetStock(ctx context.Context, name string) (int64, error) {
	stock := make(map[string]int64)
	if _, err := c.do(ctx, http.MethodGet, "/stocks/"+url.PathEscape(name), nil, &stock); err != nil {
		return 0, err
	}
	return stock[name], nil
}

// AddStock restocks name and returns the item location. A nil amount adds one.
func (c *Client) AddStock(ctx context.Context, name string, amount *int64) (string, error) {
	body := map[string]any{"name": name}
	if amount != nil {
		body["amount"] = *amount
	}
	resp, err := c.do(ctx, http.MethodPost, "/stocks", body, nil)
	if err != nil {
		return "", err
	}
	return resp.Header().Get("Location"), nil
}

// Sell records a sale and returns the item location.
func (c *Client) Sell(ctx context.Context, sale Sale) (string, error) {
	body := map[string]any{"name": sale.Name}
	if sale.Amount != nil {
		body["amount"] = *sale.Amount
	}
	if sale.Price != nil {
		body["price"] = *sale.Price
	}
	resp, err := c.do(ctx, http.MethodPost, "/sales", body, nil)
	if err != nil {
		return "", err
	}
	return resp.Header().Get("Location"), nil
}

// Sales returns the cumulative sales total.
func (c *Client) Sales(ctx context.Context) (float64, error) {
	var result struct {
		Sales float64 `json:"sales"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/sales", nil, &result); err != nil {
		return 0, err
	}
	return result.Sales, nil
}

// Clear deletes every item and the sales ledger.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/stocks", nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	apiErr := new(errorBody)
	req := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Message}
	}

	return resp, nil
}
