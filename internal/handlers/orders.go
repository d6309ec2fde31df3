package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/models"
)

// AccountHandler serves the pages of a signed-in customer.
type AccountHandler struct {
	*Base
}

func (h *AccountHandler) Cart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.client(r).GetCart(r.Context())
	if err != nil {
		slog.Error("Failed to fetch cart", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching your cart."))
		cart = &models.Cart{}
	}
	h.render(w, r, "cart.html", map[string]interface{}{
		"Cart": cart,
	})
}

func (h *AccountHandler) CartAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := h.client(r)
	productID := r.FormValue("product_id")
	format := r.FormValue("machine_type")
	back := "/products/" + productID

	quantity := 1
	if q, err := strconv.Atoi(r.FormValue("quantity")); err == nil && q > 0 {
		quantity = q
	}

	product, err := h.API.GetProduct(ctx, productID)
	if err != nil {
		h.redirectWith(w, r, "/", "error", api.UserMessage(err, "Design not found."))
		return
	}
	if _, ok := product.Files[format]; !ok {
		h.redirectWith(w, r, back, "error", "Please choose a machine format.")
		return
	}

	cart, err := client.GetCart(ctx)
	if err != nil {
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Error fetching your cart."))
		return
	}
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].MachineType == format {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			MachineType: format,
			Quantity:    quantity,
			Price:       product.Price,
			Image:       product.Image,
		})
	}

	if err := client.SaveCart(ctx, cart.Items); err != nil {
		slog.Error("Failed to save cart", "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Could not add to cart."))
		return
	}
	h.redirectWith(w, r, "/cart", "success", product.Name+" ("+format+") added to your cart.")
}

func (h *AccountHandler) CartRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := h.client(r)
	productID := r.FormValue("product_id")
	format := r.FormValue("machine_type")

	cart, err := client.GetCart(ctx)
	if err != nil {
		h.redirectWith(w, r, "/cart", "error", api.UserMessage(err, "Error fetching your cart."))
		return
	}
	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID == productID && it.MachineType == format {
			continue
		}
		kept = append(kept, it)
	}
	if err := client.SaveCart(ctx, kept); err != nil {
		h.redirectWith(w, r, "/cart", "error", api.UserMessage(err, "Could not update your cart."))
		return
	}
	h.redirectWith(w, r, "/cart", "success", "Item removed.")
}

func (h *AccountHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := h.client(r)

	cart, err := client.GetCart(ctx)
	if err != nil {
		h.redirectWith(w, r, "/cart", "error", api.UserMessage(err, "Error fetching your cart."))
		return
	}
	if len(cart.Items) == 0 {
		h.redirectWith(w, r, "/cart", "error", "Your cart is empty.")
		return
	}

	order, err := client.PlaceOrder(ctx, cart.Items)
	if err != nil {
		slog.Error("Failed to place order", "error", err)
		h.redirectWith(w, r, "/cart", "error", api.UserMessage(err, "Failed to place order. Please try again."))
		return
	}
	if err := client.SaveCart(ctx, nil); err != nil {
		slog.Warn("Failed to empty cart after checkout", "order_id", order.ID, "error", err)
	}

	slog.Info("Order placed", "order_id", order.ID, "items", len(cart.Items))
	h.redirectWith(w, r, "/account/orders", "success", "Order placed successfully! Your designs will be emailed to you.")
}

func (h *AccountHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.client(r).MyOrders(r.Context())
	if err != nil {
		slog.Error("Failed to fetch orders", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching your orders."))
	}
	h.render(w, r, "my_orders.html", map[string]interface{}{
		"Orders": orders,
	})
}

func (h *AccountHandler) WishlistAdd(w http.ResponseWriter, r *http.Request) {
	productID := r.FormValue("product_id")
	msg, err := h.client(r).AddToWishlist(r.Context(), productID)
	if err != nil {
		h.redirectWith(w, r, "/products/"+productID, "error", api.UserMessage(err, "Could not add to wishlist."))
		return
	}
	if msg == "" {
		msg = "Added to your wishlist."
	}
	h.redirectWith(w, r, "/products/"+productID, "success", msg)
}

func (h *AccountHandler) Settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.client(r).GetSettings(r.Context())
	if err != nil {
		slog.Error("Failed to fetch settings", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching your settings."))
		settings = &models.Settings{}
	}
	h.render(w, r, "settings.html", map[string]interface{}{
		"Settings": settings,
		"Formats":  models.MachineFormats,
	})
}

func (h *AccountHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client := h.client(r)

	current, err := client.GetSettings(ctx)
	if err != nil {
		h.redirectWith(w, r, "/account/settings", "error", api.UserMessage(err, "Error fetching your settings."))
		return
	}
	// Two-factor is only switched on through the code flow.
	next := models.Settings{
		TwoFactorEnabled: current.TwoFactorEnabled && r.FormValue("two_factor") == "on",
		Newsletter:       r.FormValue("newsletter") == "on",
		PreferredFormat:  r.FormValue("preferred_format"),
		DisplayName:      strings.TrimSpace(r.FormValue("display_name")),
	}
	if err := client.SaveSettings(ctx, next); err != nil {
		h.redirectWith(w, r, "/account/settings", "error", api.UserMessage(err, "Could not save settings."))
		return
	}
	h.redirectWith(w, r, "/account/settings", "success", "Settings saved.")
}

func (h *AccountHandler) TwoFactorSend(w http.ResponseWriter, r *http.Request) {
	msg, err := h.client(r).Send2FACode(r.Context())
	if err != nil {
		h.redirectWith(w, r, "/account/settings", "error", api.UserMessage(err, "Could not send the code."))
		return
	}
	if msg == "" {
		msg = "We sent a 6-digit code to your email."
	}
	h.flash(w, r, "info", msg)
	h.render(w, r, "two_factor.html", nil)
}

func (h *AccountHandler) TwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.FormValue("otp"))
	if errs := forms.OTP(code); errs.Any() {
		h.render(w, r, "two_factor.html", map[string]interface{}{
			"Errors": errs,
		})
		return
	}
	msg, err := h.client(r).Verify2FACode(r.Context(), code)
	if err != nil {
		h.render(w, r, "two_factor.html", map[string]interface{}{
			"Errors": forms.Errors{"otp": api.UserMessage(err, "Invalid or expired code.")},
		})
		return
	}
	if msg == "" {
		msg = "Two-factor authentication is on."
	}
	h.redirectWith(w, r, "/account/settings", "success", msg)
}
