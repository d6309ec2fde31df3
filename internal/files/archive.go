package files

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoFiles means there was nothing to download.
	ErrNoFiles = errors.New("no files available")
	// ErrArchive means the zip could not be produced.
	ErrArchive = errors.New("archive creation failed")
)

// Fetcher opens the content behind a file url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches files with a plain GET.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// Skipped records a file left out of an archive.
type Skipped struct {
	Pair
	Err error
}

// Archive is a built zip and what went into it.
type Archive struct {
	Data     []byte
	Included []string
	Skipped  []Skipped
}

// BuildArchive fetches every pair one after the other into an in-memory zip.
// A failed fetch is logged and the file is left out; the archive is still
// produced from the rest. It fails with ErrArchive when no file could be
// added or the zip itself cannot be written.
func BuildArchive(ctx context.Context, fetcher Fetcher, pairs []Pair) (*Archive, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	result := &Archive{}
	used := make(map[string]int)

	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrArchive, err)
		}
		if err := addFile(ctx, zw, fetcher, p, uniqueName(used, p.Name)); err != nil {
			var werr *writeError
			if errors.As(err, &werr) {
				return nil, fmt.Errorf("%w: %w", ErrArchive, err)
			}
			slog.Warn("Skipping file in archive", "name", p.Name, "url", p.URL, "error", err)
			result.Skipped = append(result.Skipped, Skipped{Pair: p, Err: err})
			continue
		}
		result.Included = append(result.Included, p.Name)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	if len(result.Included) == 0 {
		return nil, fmt.Errorf("%w: all %d files failed", ErrArchive, len(pairs))
	}
	result.Data = buf.Bytes()
	return result, nil
}

type writeError struct{ err error }

func (e *writeError) Error() string { return "zip write: " + e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

func addFile(ctx context.Context, zw *zip.Writer, fetcher Fetcher, p Pair, name string) error {
	body, err := fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	// Read fully first so a broken download leaves no partial entry behind.
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", p.URL, err)
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
	if err != nil {
		return &writeError{err}
	}
	if _, err := w.Write(data); err != nil {
		return &writeError{err}
	}
	return nil
}

// uniqueName keeps zip entry names distinct: "a.dst", "a (2).dst", ...
func uniqueName(used map[string]int, name string) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 && !strings.Contains(name[i:], "/") {
		name, ext = name[:i], name[i:]
	}
	return name + " (" + strconv.Itoa(n) + ")" + ext
}
