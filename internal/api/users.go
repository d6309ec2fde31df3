package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alextreichler/embroiderystore/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.Customer, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/admin/users", &raw); err != nil {
		return nil, err
	}
	var users []models.Customer
	if err := decodeList(raw, &users, "users", "data"); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*models.Customer, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/admin/users/"+url.PathEscape(id), "/admin/users/:id", nil, "", &raw); err != nil {
		return nil, err
	}
	var u models.Customer
	if err := decodeObject(raw, &u, "user"); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// CustomerUpdate is what an admin may change on a customer.
type CustomerUpdate struct {
	Role     string `json:"role"`
	Status   string `json:"status"`
	Verified bool   `json:"isVerified"`
}

func (c *Client) UpdateUser(ctx context.Context, id string, in CustomerUpdate) error {
	return c.sendJSONLabel(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), "/admin/users/:id", in, nil)
}

func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/user/cart", &raw); err != nil {
		return nil, err
	}
	cart := &models.Cart{}
	if err := decodeList(raw, &cart.Items, "items", "cart"); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart, nil
}

// SaveCart replaces the cart contents.
func (c *Client) SaveCart(ctx context.Context, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return c.sendJSON(ctx, http.MethodPost, "/user/cart", map[string]any{"items": items}, nil)
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) (string, error) {
	var msg Message
	err := c.sendJSON(ctx, http.MethodPost, "/user/wishlist", map[string]string{"product_id": productID}, &msg)
	return msg.Message, err
}

func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/user/settings", &raw); err != nil {
		return nil, err
	}
	var s models.Settings
	if err := decodeObject(raw, &s, "settings"); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

func (c *Client) SaveSettings(ctx context.Context, s models.Settings) error {
	return c.sendJSON(ctx, http.MethodPost, "/user/settings", s, nil)
}
