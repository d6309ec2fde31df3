package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/imaging"
	"github.com/alextreichler/embroiderystore/internal/models"
	"github.com/alextreichler/embroiderystore/internal/retry"
)

// Multipart parts above this stay on disk while the form is parsed.
const multipartMemory = 32 << 20

func (h *AdminHandler) ListDesigns(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	products, err := h.client(r).ListProducts(r.Context(), category)
	if err != nil {
		slog.Error("Failed to fetch designs", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching designs."))
	}
	h.render(w, r, "admin_designs.html", map[string]interface{}{
		"Products": products,
		"Category": category,
	})
}

func (h *AdminHandler) AddDesignForm(w http.ResponseWriter, r *http.Request) {
	h.renderDesignForm(w, r, "", &forms.Design{}, nil)
}

func (h *AdminHandler) CreateDesign(w http.ResponseWriter, r *http.Request) {
	design, input, errs := h.parseDesign(w, r, false)
	if errs.Any() {
		h.renderDesignForm(w, r, "", design, errs)
		return
	}

	body, contentType, err := input.Encode()
	if err != nil {
		slog.Error("Failed to encode design", "error", err)
		h.renderDesignForm(w, r, "", design, forms.Errors{"form": "Could not prepare the upload."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.UploadTimeout)
	defer cancel()
	client := h.client(r)
	var created *models.Product
	err = retry.Do(ctx, h.Retry, "create design", func(ctx context.Context) error {
		var err error
		created, err = client.CreateProduct(ctx, body, contentType)
		return err
	})
	if err != nil {
		h.renderDesignForm(w, r, "", design, forms.Errors{"form": api.UserMessage(err, "Failed to add design. Please try again.")})
		return
	}

	slog.Info("Design created", "id", created.ID, "name", input.Name, "files", len(input.Files), "bytes", len(body))
	h.redirectWith(w, r, "/admin/designs", "success", "Design added successfully!")
}

func (h *AdminHandler) EditDesignForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := h.client(r).GetProduct(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			http.Error(w, "Design not found", http.StatusNotFound)
			return
		}
		h.redirectWith(w, r, "/admin/designs", "error", api.UserMessage(err, "Error fetching design."))
		return
	}
	design := &forms.Design{
		Name:        product.Name,
		Categories:  product.Categories,
		Price:       product.Price.StringFixed(2),
		Description: product.Description,
		Formats:     product.Formats(),
		Editing:     true,
	}
	h.renderDesignForm(w, r, id, design, nil, product)
}

func (h *AdminHandler) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	design, input, errs := h.parseDesign(w, r, true)
	if errs.Any() {
		h.renderDesignForm(w, r, id, design, errs)
		return
	}

	body, contentType, err := input.Encode()
	if err != nil {
		slog.Error("Failed to encode design", "error", err)
		h.renderDesignForm(w, r, id, design, forms.Errors{"form": "Could not prepare the upload."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.UploadTimeout)
	defer cancel()
	client := h.client(r)
	err = retry.Do(ctx, h.Retry, "update design", func(ctx context.Context) error {
		return client.UpdateProduct(ctx, id, body, contentType)
	})
	if err != nil {
		h.renderDesignForm(w, r, id, design, forms.Errors{"form": api.UserMessage(err, "Failed to update design. Please try again.")})
		return
	}

	slog.Info("Design updated", "id", id, "files", len(input.Files))
	h.redirectWith(w, r, "/admin/designs", "success", "Design updated successfully!")
}

func (h *AdminHandler) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.client(r).DeleteProduct(r.Context(), id); err != nil {
		slog.Error("Failed to delete design", "id", id, "error", err)
		h.redirectWith(w, r, "/admin/designs", "error", api.UserMessage(err, "Error deleting design."))
		return
	}
	slog.Info("Design deleted", "id", id)
	h.redirectWith(w, r, "/admin/designs", "success", "Design deleted successfully!")
}

// DeleteFormat removes the files of one machine format from a design.
func (h *AdminHandler) DeleteFormat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format := r.PathValue("format")
	back := "/admin/designs/" + id + "/edit"
	if err := h.client(r).DeleteMachineType(r.Context(), id, format); err != nil {
		slog.Error("Failed to delete machine format", "id", id, "format", format, "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Error deleting "+format+" files."))
		return
	}
	h.redirectWith(w, r, back, "success", format+" files deleted.")
}

func (h *AdminHandler) renderDesignForm(w http.ResponseWriter, r *http.Request, id string, design *forms.Design, errs forms.Errors, product ...*models.Product) {
	data := map[string]interface{}{
		"ID":       id,
		"Design":   design,
		"Errors":   errs,
		"Formats":  models.MachineFormats,
		"MaxMB":    h.maxPayload() / forms.MB,
		"AllCats":  h.categories(r.Context()),
		"Editing":  design.Editing,
		"Existing": (*models.Product)(nil),
	}
	if len(product) > 0 {
		data["Existing"] = product[0]
	}
	h.render(w, r, "admin_design_form.html", data)
}

// parseDesign reads the multipart design form. The returned errors hold both
// validation problems and unreadable uploads.
func (h *AdminHandler) parseDesign(w http.ResponseWriter, r *http.Request, editing bool) (*forms.Design, *api.ProductInput, forms.Errors) {
	design := &forms.Design{Editing: editing}

	// Headroom over the soft cap so that Validate can report the size.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxPayload())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return design, nil, forms.Errors{"payload": fmt.Sprintf("Upload is too large. The limit is %d MB.", h.maxPayload()/forms.MB)}
		}
		return design, nil, forms.Errors{"form": "Invalid form data."}
	}

	design.Name = strings.TrimSpace(r.FormValue("name"))
	design.Categories = r.Form["categories"]
	design.Price = r.FormValue("price")
	design.Description = strings.TrimSpace(r.FormValue("description"))
	design.Formats = r.Form["machine_types"]

	errs := forms.Errors{}
	if file, header, err := r.FormFile("image"); err == nil {
		dataURL, err := imaging.FromUpload(file, header.Filename)
		file.Close()
		if err != nil {
			slog.Info("Rejected design image", "file", header.Filename, "error", err)
			if errors.Is(err, imaging.ErrUnsupported) {
				errs["image"] = "Unsupported image format. Only PNG, JPG, JPEG are allowed."
			} else {
				errs["image"] = "Failed to decode image."
			}
		}
		design.Image = dataURL
	}

	var headers []*multipart.FileHeader
	var formats []string
	for _, format := range design.Formats {
		for _, fh := range r.MultipartForm.File["files_"+format] {
			headers = append(headers, fh)
			formats = append(formats, format)
			design.Files = append(design.Files, forms.UploadedFile{Format: format, Name: fh.Filename, Size: fh.Size})
		}
	}

	price, verrs := design.Validate(h.maxPayload())
	for k, v := range verrs {
		if _, ok := errs[k]; !ok {
			errs[k] = v
		}
	}
	if errs.Any() {
		return design, nil, errs
	}

	input := &api.ProductInput{
		Name:        design.Name,
		Categories:  design.Categories,
		Price:       price,
		Image:       design.Image,
		Description: design.Description,
	}
	for i, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			slog.Error("Failed to read design file", "file", fh.Filename, "error", err)
			return design, nil, forms.Errors{"files": "Could not read " + fh.Filename + "."}
		}
		input.Files = append(input.Files, api.DesignFile{Format: formats[i], Name: fh.Filename, Data: data})
	}
	return design, input, nil
}

func (h *AdminHandler) maxPayload() int64 {
	if h.MaxPayload > 0 {
		return h.MaxPayload
	}
	return forms.DefaultMaxPayload
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
