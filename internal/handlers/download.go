package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/files"
	"github.com/alextreichler/embroiderystore/internal/metrics"
	"github.com/alextreichler/embroiderystore/internal/models"
	"github.com/alextreichler/embroiderystore/internal/store"
)

type DownloadHandler struct {
	*Base
	Store      *store.Store
	Fetcher    files.Fetcher
	Dispatcher *files.Dispatcher
	// Delay spaces the links of the fallback page when the browser
	// starts them.
	Delay time.Duration
}

// Download serves the files of one machine format, or every format when
// ?format= is empty.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	format := r.URL.Query().Get("format")
	back := "/products/" + id

	product, err := h.client(r).GetProduct(r.Context(), id)
	if err != nil {
		slog.Error("Failed to fetch product for download", "id", id, "error", err)
		h.redirectWith(w, r, back, "error", api.UserMessage(err, "Error fetching design."))
		return
	}

	var pairs []files.Pair
	if format == "" {
		pairs = files.ForProduct(product)
	} else {
		pairs = files.FromDescriptor(product.Files[format])
	}

	sink := &httpSink{w: w, r: r, base: h.Base, fetcher: h.Fetcher}
	out, err := h.Dispatcher.Dispatch(r.Context(), files.ArchiveName(product.Name, format), pairs, sink)
	h.record(product.ID, format, out)

	switch {
	case errors.Is(err, files.ErrNoFiles):
		h.redirectWith(w, r, back, "error", "No files available for download.")
		return
	case err != nil:
		slog.Error("Download failed", "id", id, "format", format, "mode", out.Mode, "error", err)
		if !sink.wrote {
			h.redirectWith(w, r, back, "error", api.UserMessage(err, "Download failed. Please try again."))
		}
		return
	}

	if out.Mode == files.ModeIndividual {
		h.render(w, r, "downloads.html", map[string]interface{}{
			"Product": product,
			"Format":  format,
			"Links":   sink.links,
			"DelayMS": h.Delay.Milliseconds(),
		})
	}
}

func (h *DownloadHandler) record(productID, format string, out files.Outcome) {
	metrics.Downloads.WithLabelValues(out.Mode).Inc()
	if out.Skipped > 0 {
		metrics.SkippedFiles.Add(float64(out.Skipped))
	}
	if h.Store == nil {
		return
	}
	rec := &models.DownloadRecord{
		ProductID: productID,
		Format:    format,
		Mode:      out.Mode,
		Files:     out.Files,
		Skipped:   out.Skipped,
	}
	if err := h.Store.LogDownload(rec); err != nil {
		slog.Warn("Failed to log download", "product_id", productID, "error", err)
	}
}

// httpSink answers the request with the dispatched files. Single files are
// proxied so the browser keeps their name; the individual fallback only
// collects links, which the handler renders as a page.
type httpSink struct {
	w       http.ResponseWriter
	r       *http.Request
	base    *Base
	fetcher files.Fetcher
	links   []files.Pair
	wrote   bool
}

func (s *httpSink) Single(ctx context.Context, p files.Pair) error {
	body, err := s.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	s.attachment(path.Base(p.Name), "application/octet-stream", -1)
	_, err = io.Copy(s.w, body)
	return err
}

func (s *httpSink) Archive(_ context.Context, name string, a *files.Archive) error {
	if len(a.Skipped) > 0 {
		// Flashed now: the cookie must go out with the zip's headers.
		s.base.flash(s.w, s.r, "warning", fmt.Sprintf("%d file(s) could not be fetched and were left out of %s.", len(a.Skipped), name))
	}
	s.attachment(name, "application/zip", len(a.Data))
	_, err := s.w.Write(a.Data)
	return err
}

func (s *httpSink) Individual(_ context.Context, p files.Pair) error {
	s.links = append(s.links, p)
	return nil
}

func (s *httpSink) attachment(name, contentType string, size int) {
	s.wrote = true
	h := s.w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if size >= 0 {
		h.Set("Content-Length", strconv.Itoa(size))
	}
}
