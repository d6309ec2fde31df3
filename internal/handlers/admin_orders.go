package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/models"
)

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	pageStr := r.URL.Query().Get("page")
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limitStr := r.URL.Query().Get("limit")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 10 // Default limit
	}

	pendingOnly := r.URL.Query().Get("filter") == "pending"
	orders, err := h.client(r).ListOrders(r.Context(), pendingOnly)
	if err != nil {
		slog.Error("Failed to fetch orders", "pending", pendingOnly, "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching orders."))
	}

	totalPages := (len(orders) + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(orders) {
		end = len(orders)
	}

	h.render(w, r, "admin_orders.html", map[string]interface{}{
		"Orders":      orders[start:end],
		"Total":       len(orders),
		"PendingOnly": pendingOnly,
		"Statuses":    models.OrderStatuses,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"Limit":       limit,
	})
}

func (h *AdminHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	order, err := h.client(r).GetOrder(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		h.redirectWith(w, r, "/admin/orders", "error", api.UserMessage(err, "Error fetching order."))
		return
	}
	h.render(w, r, "admin_order.html", map[string]interface{}{
		"Order":    order,
		"Statuses": models.OrderStatuses,
	})
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := r.FormValue("status")
	back := "/admin/orders/" + id

	if errs := forms.OrderStatus(status); errs.Any() {
		h.redirectWith(w, r, back, "error", errs["status"])
		return
	}
	if err := h.client(r).UpdateOrderStatus(r.Context(), id, status); err != nil {
		slog.Error("Failed to update order status", "id", id, "status", status, "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Error updating status."))
		return
	}
	slog.Info("Order status updated", "id", id, "status", status)
	h.redirectWith(w, r, back, "success", "Order updated!")
}

// RetryEmail asks the backend to send the design email of an order again.
func (h *AdminHandler) RetryEmail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := "/admin/orders/" + id
	msg, err := h.client(r).RetryEmail(r.Context(), id)
	if err != nil {
		slog.Error("Failed to retry order email", "id", id, "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Could not resend the email."))
		return
	}
	if msg == "" {
		msg = "Email queued for delivery."
	}
	h.redirectWith(w, r, back, "success", msg)
}
