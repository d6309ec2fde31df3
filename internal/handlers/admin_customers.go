package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/models"
)

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	users, err := h.client(r).ListUsers(r.Context())
	if err != nil {
		slog.Error("Failed to fetch customers", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching customers."))
	}
	h.render(w, r, "admin_customers.html", map[string]interface{}{
		"Customers": users,
	})
}

func (h *AdminHandler) EditCustomerForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := h.client(r).GetUser(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			http.Error(w, "Customer not found", http.StatusNotFound)
			return
		}
		h.redirectWith(w, r, "/admin/customers", "error", api.UserMessage(err, "Error fetching customer."))
		return
	}
	h.render(w, r, "admin_customer.html", map[string]interface{}{
		"Customer": user,
		"Roles":    []string{models.RoleUser, models.RoleAdmin},
		"Statuses": []string{models.StatusActive, models.StatusSuspended, models.StatusBanned},
	})
}

func (h *AdminHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	back := "/admin/customers/" + id
	in := api.CustomerUpdate{
		Role:     r.FormValue("role"),
		Status:   r.FormValue("status"),
		Verified: r.FormValue("verified") == "on",
	}
	if errs := forms.Customer(in.Role, in.Status); errs.Any() {
		for _, msg := range errs {
			h.flash(w, r, "error", msg)
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err := h.client(r).UpdateUser(r.Context(), id, in); err != nil {
		slog.Error("Failed to update customer", "id", id, "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Error updating customer."))
		return
	}
	slog.Info("Customer updated", "id", id, "role", in.Role, "status", in.Status)
	h.redirectWith(w, r, "/admin/customers", "success", "Customer updated!")
}
