package handlers

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/embroiderystore/internal/files"
	"github.com/alextreichler/embroiderystore/internal/models"
)

func serveProduct(app *testApp, id string, machineFiles map[string]any) {
	app.backend.HandleFunc("GET /products/"+id, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"_id":           id,
			"name":          "Rose Garden",
			"price":         "12.50",
			"categories":    []string{"Floral"},
			"machine_files": machineFiles,
		})
	})
}

func TestDownload_Modes(t *testing.T) {
	app := newTestApp(t)
	serveProduct(app, "p1", map[string]any{
		"DST": map[string]any{"file_url": app.fileURL("rose.dst"), "file_name": "rose.dst"},
		"PES": map[string]any{
			"file_url":  app.fileURL("a.pes") + "," + app.fileURL("b.pes") + "," + app.fileURL("missing.pes"),
			"file_name": "a.pes,b.pes,c.pes",
		},
		"JEF": map[string]any{"file_url": nil, "file_name": nil},
	})
	user := app.loginAs(models.RoleUser)

	t.Run("single file is sent directly", func(t *testing.T) {
		rec := app.get("/products/p1/download?format=DST", user...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename=rose.dst`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "stitches of rose.dst", rec.Body.String())
	})

	t.Run("several files are zipped and failures skipped", func(t *testing.T) {
		rec := app.get("/products/p1/download?format=PES", user...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "Rose_Garden_PES.zip")
		assert.Equal(t, []string{"a.pes", "b.pes"}, zipNames(t, rec.Body.Bytes()))
	})

	t.Run("no files redirects with a notice", func(t *testing.T) {
		rec := app.get("/products/p1/download?format=JEF", user...)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/products/p1", rec.Header().Get("Location"))
	})

	t.Run("all formats go into folders", func(t *testing.T) {
		rec := app.get("/products/p1/download", user...)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"DST/rose.dst", "PES/a.pes", "PES/b.pes"}, zipNames(t, rec.Body.Bytes()))
	})

	t.Run("anonymous visitors sign in first", func(t *testing.T) {
		rec := app.get("/products/p1/download?format=DST")
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	stats, err := app.store.GetDownloadStats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalDownloads)
	assert.Equal(t, 1, stats.ByMode[files.ModeSingle])
	assert.Equal(t, 2, stats.ByMode[files.ModeArchive])
	assert.Equal(t, 1, stats.ByMode[files.ModeNone])
	assert.Equal(t, 2, stats.FilesSkipped)
}

func TestDownload_FallbackRendersLinks(t *testing.T) {
	app := newTestApp(t)
	serveProduct(app, "p2", map[string]any{
		"PES": map[string]any{
			"file_url":  []string{app.fileURL("missing-1.pes"), app.fileURL("missing-2.pes")},
			"file_name": []string{"one.pes", "two.pes"},
		},
	})

	rec := app.get("/products/p2/download?format=PES", app.loginAs(models.RoleUser)...)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `download="one.pes"`)
	assert.Contains(t, body, `download="two.pes"`)
	assert.Contains(t, body, `data-delay="1000"`)

	recent, err := app.store.RecentDownloads(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, files.ModeIndividual, recent[0].Mode)
	assert.Equal(t, 2, recent[0].Files)
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		require.NoError(t, err)
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}
