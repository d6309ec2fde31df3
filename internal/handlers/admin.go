package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/models"
	"github.com/alextreichler/embroiderystore/internal/retry"
	"github.com/alextreichler/embroiderystore/internal/store"
)

type AdminHandler struct {
	*Base
	Store *store.Store
	// MaxPayload is the soft cap on a design submission in bytes.
	MaxPayload    int64
	UploadTimeout time.Duration
	Retry         retry.Policy
}

// DashboardStats is the summary at the top of the admin dashboard.
type DashboardStats struct {
	TotalOrders   int
	PendingOrders int
	EmailFailed   int
	Revenue       decimal.Decimal
	Products      int
	Customers     int
	RecentOrders  []models.Order
}

// Dashboard loads orders, products and users from the backend at the same
// time and waits for all of them.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)

	var (
		all      []models.Order
		pending  []models.Order
		products []models.Product
		users    []models.Customer
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		all, err = client.ListOrders(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		pending, err = client.ListOrders(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		products, err = client.ListProducts(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		users, err = client.ListUsers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("Failed to load dashboard stats", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching stats."))
	}

	stats := DashboardStats{
		TotalOrders:   len(all),
		PendingOrders: len(pending),
		Products:      len(products),
		Customers:     len(users),
		Revenue:       decimal.Zero,
	}
	for _, o := range all {
		if o.Status != models.OrderCancelled {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
		if o.EmailStatus == models.EmailFailed || o.Status == models.OrderEmailFailed {
			stats.EmailFailed++
		}
	}
	if len(all) > 5 {
		stats.RecentOrders = all[:5]
	} else {
		stats.RecentOrders = all
	}

	downloads, err := h.Store.GetDownloadStats()
	if err != nil {
		slog.Error("Failed to load download stats", "error", err)
	}
	recent, err := h.Store.RecentDownloads(10)
	if err != nil {
		slog.Error("Failed to load recent downloads", "error", err)
	}

	h.render(w, r, "admin.html", map[string]interface{}{
		"Stats":           stats,
		"Downloads":       downloads,
		"RecentDownloads": recent,
	})
}
