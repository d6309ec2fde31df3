package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a design as returned by the backend.
type Product struct {
	ID          string                    `json:"_id"`
	Name        string                    `json:"name"`
	Categories  []string                  `json:"categories"`
	Price       decimal.Decimal           `json:"price"`
	Image       string                    `json:"image"` // data URL or remote URL
	Description string                    `json:"description"`
	Files       map[string]FileDescriptor `json:"machine_files"` // machine format -> files
	CreatedAt   time.Time                 `json:"createdAt"`
}

// Formats returns the machine formats the product has files for.
func (p *Product) Formats() []string {
	formats := make([]string, 0, len(p.Files))
	for _, f := range MachineFormats {
		if _, ok := p.Files[f]; ok {
			formats = append(formats, f)
		}
	}
	for f := range p.Files {
		if !isKnownFormat(f) {
			formats = append(formats, f)
		}
	}
	return formats
}

// FileDescriptor holds the loosely typed file fields of one machine format.
type FileDescriptor struct {
	FileURL  FlexStrings `json:"file_url"`
	FileName FlexStrings `json:"file_name"`
	FileSize int64       `json:"file_size,omitempty"`
}

// MachineFormats are the embroidery machine formats offered in forms.
var MachineFormats = []string{"DST", "JEF", "PES", "EXP", "VP3", "XXX", "HUS", "VIP"}

func isKnownFormat(f string) bool {
	for _, k := range MachineFormats {
		if k == f {
			return true
		}
	}
	return false
}

// Order statuses shown in the admin.
const (
	OrderPending      = "Pending"
	OrderMailSent     = "Mail Sent"
	OrderCancelled    = "Cancelled"
	OrderEmailFailed  = "Email Failed"
	OrderSendingEmail = "Sending Email"
)

var OrderStatuses = []string{OrderPending, OrderMailSent, OrderCancelled, OrderEmailFailed, OrderSendingEmail}

// Email delivery states.
const (
	EmailSent     = "sent"
	EmailFailed   = "failed"
	EmailPending  = "pending"
	EmailRetrying = "retrying"
)

type Order struct {
	ID            string          `json:"_id"`
	Status        string          `json:"status"`
	EmailStatus   string          `json:"email_status"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	UserID        string          `json:"user_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	MachineType string          `json:"machine_type"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer roles and statuses.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
)

type Customer struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"isVerified"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type CartItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	MachineType string          `json:"machine_type"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// Total sums every line of the cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

type Settings struct {
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
	Newsletter       bool   `json:"newsletter"`
	PreferredFormat  string `json:"preferred_format"`
	DisplayName      string `json:"display_name"`
}

// ContentPage is a locally stored static document (terms, privacy).
type ContentPage struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FAQEntry struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Position int    `json:"position"`
}

// DownloadRecord is one dispatched download in the local log.
type DownloadRecord struct {
	ID        int       `json:"id"`
	ProductID string    `json:"product_id"`
	Format    string    `json:"format"`
	Mode      string    `json:"mode"`
	Files     int       `json:"files"`
	Skipped   int       `json:"skipped"`
	CreatedAt time.Time `json:"created_at"`
}
