// Package forms validates the data entered in storefront and admin forms.
// Every validator returns field name -> message; an empty map means valid.
package forms

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alextreichler/embroiderystore/internal/models"
)

// Errors maps a form field to its message.
type Errors map[string]string

func (e Errors) Any() bool { return len(e) > 0 }

const (
	MB = 1 << 20
	// DefaultMaxPayload is the soft cap on a design submission.
	DefaultMaxPayload = 80 * MB
	// base64 stores 3 bytes in 4 characters.
	base64Ratio = 0.75
)

// UploadedFile describes an attached design file without its content.
type UploadedFile struct {
	Format string
	Name   string
	Size   int64
}

// Design is the add/edit design form.
type Design struct {
	Name        string
	Categories  []string
	Price       string
	Description string
	Image       string // data URL of the new image, or "" when none was chosen
	Formats     []string
	Files       []UploadedFile
	// Editing relaxes the image and file rules: the product already has them.
	Editing bool
}

// EstimatePayload approximates the request size: the image data URL is
// counted at its decoded size plus the raw size of each file.
func EstimatePayload(image string, sizes ...int64) int64 {
	total := int64(float64(len(image)) * base64Ratio)
	for _, s := range sizes {
		total += s
	}
	return total
}

// Validate checks the form and returns the parsed price.
func (d *Design) Validate(maxPayload int64) (decimal.Decimal, Errors) {
	errs := Errors{}
	if strings.TrimSpace(d.Name) == "" {
		errs["name"] = "Design name is required."
	}
	if len(d.Categories) == 0 {
		errs["categories"] = "Select at least one category."
	}

	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	switch {
	case strings.TrimSpace(d.Price) == "":
		errs["price"] = "Price is required."
	case err != nil:
		errs["price"] = "Invalid price format."
	case !price.IsPositive():
		errs["price"] = "Price must be positive."
	}

	if !d.Editing && d.Image == "" {
		errs["image"] = "Product image is required."
	}
	if !d.Editing && len(d.Formats) == 0 {
		errs["formats"] = "Select a machine format."
	}
	for _, f := range d.Formats {
		if !validFormat(f) {
			errs["formats"] = fmt.Sprintf("Unknown machine format %q.", f)
		}
	}
	if !d.Editing && len(d.Files) == 0 {
		errs["files"] = "Attach at least one design file."
	}
	for _, f := range d.Files {
		if !contains(d.Formats, f.Format) {
			errs["files"] = fmt.Sprintf("File %s is attached to format %s, which is not selected.", f.Name, f.Format)
		}
	}

	sizes := make([]int64, len(d.Files))
	for i, f := range d.Files {
		sizes[i] = f.Size
	}
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	if total := EstimatePayload(d.Image, sizes...); total > maxPayload {
		errs["payload"] = fmt.Sprintf("Upload is too large (%d MB). The limit is %d MB; remove some files or use a smaller image.",
			(total+MB-1)/MB, maxPayload/MB)
	}
	return price, errs
}

// OrderStatus validates an admin status change.
func OrderStatus(status string) Errors {
	if !contains(models.OrderStatuses, status) {
		return Errors{"status": "Invalid status selected."}
	}
	return nil
}

// Customer validates an admin customer update.
func Customer(role, status string) Errors {
	errs := Errors{}
	if role != models.RoleAdmin && role != models.RoleUser {
		errs["role"] = "Role must be admin or user."
	}
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusBanned:
	default:
		errs["status"] = "Invalid account status."
	}
	return errs
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Signup validates the registration form.
func Signup(username, email, password, confirm string) Errors {
	errs := Errors{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "Username is required."
	}
	if email == "" {
		errs["email"] = "Email address is required."
	} else if !IsValidEmail(email) {
		errs["email"] = "Please enter a valid email address."
	}
	if len(password) < 8 {
		errs["password"] = "Password must be at least 8 characters."
	} else if password != confirm {
		errs["confirm"] = "Passwords do not match."
	}
	return errs
}

// PasswordChange validates the change-password form.
func PasswordChange(current, next, confirm string) Errors {
	errs := Errors{}
	if current == "" {
		errs["current"] = "Current password is required."
	}
	if len(next) < 8 {
		errs["new"] = "New password must be at least 8 characters."
	} else if next != confirm {
		errs["confirm"] = "Passwords do not match."
	} else if next == current {
		errs["new"] = "New password must differ from the current one."
	}
	return errs
}

var otpRegex = regexp.MustCompile(`^[0-9]{6}$`)

// OTP checks a six digit code.
func OTP(code string) Errors {
	if !otpRegex.MatchString(strings.TrimSpace(code)) {
		return Errors{"otp": "Enter the 6-digit code from your email."}
	}
	return nil
}

func validFormat(f string) bool {
	return contains(models.MachineFormats, f)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
