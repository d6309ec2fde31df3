package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/alextreichler/embroiderystore/internal/models"
)

const categoriesKey = "valid-categories"

// ValidCategories returns the category list, cached for CategoryTTL.
func (c *Client) ValidCategories(ctx context.Context) ([]string, error) {
	var cats []string
	if c.Cache != nil && c.Cache.Get(ctx, categoriesKey, &cats) {
		return cats, nil
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, "/products/valid-categories", &raw); err != nil {
		return nil, err
	}
	if err := decodeList(raw, &cats, "categories", "validCategories"); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if c.Cache != nil && c.CategoryTTL > 0 {
		if err := c.Cache.Set(ctx, categoriesKey, cats, c.CategoryTTL); err != nil {
			slog.Warn("Failed to cache categories", "error", err)
		}
	}
	return cats, nil
}

// ListProducts lists all products, or one category's when category is set.
func (c *Client) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	endpoint := "/products"
	if category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, "/products", nil, "", &raw); err != nil {
		return nil, err
	}
	var products []models.Product
	if err := decodeList(raw, &products, "products", "data"); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "/products/:id", nil, "", &raw); err != nil {
		return nil, err
	}
	var p models.Product
	if err := decodeObject(raw, &p, "product"); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &p, nil
}

// DesignFile is one uploaded machine file.
type DesignFile struct {
	Format string
	Name   string
	Data   []byte
}

// ProductInput is the body of product create and update.
type ProductInput struct {
	Name        string
	Categories  []string
	Price       decimal.Decimal
	Image       string // data URL; empty keeps the current image on update
	Description string
	Files       []DesignFile
}

// Encode renders the multipart body once so retries can resend it.
func (in ProductInput) Encode() (body []byte, contentType string, err error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	cats, err := json.Marshal(in.Categories)
	if err != nil {
		return nil, "", err
	}
	fields := [][2]string{
		{"name", in.Name},
		{"categories", string(cats)},
		{"price", in.Price.StringFixed(2)},
		{"description", in.Description},
	}
	if in.Image != "" {
		fields = append(fields, [2]string{"image", in.Image})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range in.Files {
		if err := mw.WriteField("machine_types", f.Format); err != nil {
			return nil, "", err
		}
		w, err := mw.CreateFormFile("files_"+f.Format, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// CreateProduct posts a pre-encoded product body.
func (c *Client) CreateProduct(ctx context.Context, body []byte, contentType string) (*models.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/products", "/products", body, contentType, &raw); err != nil {
		return nil, err
	}
	var p models.Product
	if len(raw) > 0 {
		if err := decodeObject(raw, &p, "product"); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, body []byte, contentType string) error {
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), "/products/:id", body, contentType, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), "/products/:id", nil, "", nil)
}

// DeleteMachineType removes one machine format's files from a product.
func (c *Client) DeleteMachineType(ctx context.Context, id, format string) error {
	endpoint := "/products/" + url.PathEscape(id) + "/machine-type/" + url.PathEscape(format)
	return c.do(ctx, http.MethodDelete, endpoint, "/products/:id/machine-type/:type", nil, "", nil)
}
