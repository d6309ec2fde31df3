package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alextreichler/embroiderystore/internal/models"
)

// ListOrders returns every order, or only the pending ones.
func (c *Client) ListOrders(ctx context.Context, pendingOnly bool) ([]models.Order, error) {
	endpoint := "/orders/all"
	if pendingOnly {
		endpoint = "/orders/pending"
	}
	return c.orders(ctx, endpoint)
}

// MyOrders returns the orders of the token's user.
func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	return c.orders(ctx, "/orders/mine")
}

func (c *Client) orders(ctx context.Context, endpoint string) ([]models.Order, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := decodeList(raw, &orders, "orders", "data"); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), "/orders/:id", nil, "", &raw); err != nil {
		return nil, err
	}
	var o models.Order
	if err := decodeObject(raw, &o, "order"); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	body := map[string]string{"status": status}
	return c.sendJSONLabel(ctx, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", "/orders/:id/status", body, nil)
}

// RetryEmail asks the backend to resend the design email of an order.
func (c *Client) RetryEmail(ctx context.Context, id string) (string, error) {
	var msg Message
	err := c.sendJSONLabel(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/retry-email", "/orders/:id/retry-email", nil, &msg)
	return msg.Message, err
}

// PlaceOrder checks out the given cart lines.
func (c *Client) PlaceOrder(ctx context.Context, items []models.CartItem) (*models.Order, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, "/orders", map[string]any{"items": items}, &raw); err != nil {
		return nil, err
	}
	var o models.Order
	if len(raw) > 0 {
		if err := decodeObject(raw, &o, "order"); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
	}
	return &o, nil
}

func (c *Client) sendJSONLabel(ctx context.Context, method, endpoint, label string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		contentType = "application/json"
	}
	return c.do(ctx, method, endpoint, label, body, contentType, out)
}
