package files

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapFetcher serves bodies from a map; urls listed in fail return an error.
type mapFetcher struct {
	bodies map[string]string
	fail   map[string]bool
	calls  []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return nil, errors.New("connection refused")
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type recordingSink struct {
	single     []Pair
	archives   []*Archive
	individual []Pair
}

func (s *recordingSink) Single(_ context.Context, p Pair) error {
	s.single = append(s.single, p)
	return nil
}

func (s *recordingSink) Archive(_ context.Context, _ string, a *Archive) error {
	s.archives = append(s.archives, a)
	return nil
}

func (s *recordingSink) Individual(_ context.Context, p Pair) error {
	s.individual = append(s.individual, p)
	return nil
}

func zipEntries(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestBuildArchive_SkipsFailedFetch(t *testing.T) {
	fetcher := &mapFetcher{
		bodies: map[string]string{"u1": "one", "u3": "three"},
		fail:   map[string]bool{"u2": true},
	}
	pairs := []Pair{{"u1", "a.dst"}, {"u2", "b.dst"}, {"u3", "c.dst"}}

	a, err := BuildArchive(context.Background(), fetcher, pairs)
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2", "u3"}, fetcher.calls, "fetches run in order")
	assert.Equal(t, []string{"a.dst", "c.dst"}, a.Included)
	require.Len(t, a.Skipped, 1)
	assert.Equal(t, "b.dst", a.Skipped[0].Name)
	assert.Equal(t, map[string]string{"a.dst": "one", "c.dst": "three"}, zipEntries(t, a.Data))
}

func TestBuildArchive_AllFailed(t *testing.T) {
	fetcher := &mapFetcher{fail: map[string]bool{"u1": true, "u2": true}}
	_, err := BuildArchive(context.Background(), fetcher, []Pair{{"u1", "a"}, {"u2", "b"}})
	assert.ErrorIs(t, err, ErrArchive)
}

func TestBuildArchive_DuplicateNames(t *testing.T) {
	fetcher := &mapFetcher{bodies: map[string]string{"u": "x"}}
	a, err := BuildArchive(context.Background(), fetcher, []Pair{{"u", "a.dst"}, {"u", "a.dst"}})
	require.NoError(t, err)
	entries := zipEntries(t, a.Data)
	assert.Contains(t, entries, "a.dst")
	assert.Contains(t, entries, "a (2).dst")
}

func TestDispatch_ZeroPairs(t *testing.T) {
	fetcher := &mapFetcher{}
	sink := &recordingSink{}
	out, err := NewDispatcher(fetcher, time.Second).Dispatch(context.Background(), "x.zip", nil, sink)

	assert.ErrorIs(t, err, ErrNoFiles)
	assert.Equal(t, ModeNone, out.Mode)
	assert.Empty(t, fetcher.calls)
	assert.Empty(t, sink.single)
	assert.Empty(t, sink.archives)
}

func TestDispatch_SinglePairIsDirect(t *testing.T) {
	fetcher := &mapFetcher{}
	sink := &recordingSink{}
	out, err := NewDispatcher(fetcher, time.Second).Dispatch(context.Background(), "x.zip", []Pair{{"u", "a.dst"}}, sink)

	require.NoError(t, err)
	assert.Equal(t, ModeSingle, out.Mode)
	assert.Equal(t, []Pair{{"u", "a.dst"}}, sink.single)
	assert.Empty(t, sink.archives)
	assert.Empty(t, fetcher.calls, "no archive is built")
}

func TestDispatch_ArchiveWithPartialFailure(t *testing.T) {
	fetcher := &mapFetcher{
		bodies: map[string]string{"u1": "1", "u3": "3"},
		fail:   map[string]bool{"u2": true},
	}
	sink := &recordingSink{}
	out, err := NewDispatcher(fetcher, time.Second).Dispatch(context.Background(), "x.zip",
		[]Pair{{"u1", "a"}, {"u2", "b"}, {"u3", "c"}}, sink)

	require.NoError(t, err)
	assert.Equal(t, Outcome{Mode: ModeArchive, Files: 2, Skipped: 1}, out)
	require.Len(t, sink.archives, 1)
	assert.Len(t, zipEntries(t, sink.archives[0].Data), 2)
}

func TestDispatch_FallbackSpacesIndividualDownloads(t *testing.T) {
	fetcher := &mapFetcher{fail: map[string]bool{"u1": true, "u2": true, "u3": true}}
	sink := &recordingSink{}
	var waits []time.Duration
	d := NewDispatcher(fetcher, time.Second)
	d.Sleep = func(_ context.Context, dur time.Duration) error {
		waits = append(waits, dur)
		return nil
	}

	pairs := []Pair{{"u1", "a"}, {"u2", "b"}, {"u3", "c"}}
	out, err := d.Dispatch(context.Background(), "x.zip", pairs, sink)

	require.NoError(t, err)
	assert.Equal(t, ModeIndividual, out.Mode)
	assert.Equal(t, 3, out.Files)
	assert.Equal(t, pairs, sink.individual)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, waits)
}

func TestDiskSink_WithHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.dst" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("stitches:" + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	fetcher := NewHTTPFetcher(5 * time.Second)
	sink := &DiskSink{Dir: dir, Fetcher: fetcher}
	pairs := []Pair{
		{srv.URL + "/a.dst", "DST/a.dst"},
		{srv.URL + "/missing.dst", "DST/missing.dst"},
	}

	out, err := NewDispatcher(fetcher, 0).Dispatch(context.Background(), "rose.zip", pairs, sink)
	require.NoError(t, err)
	assert.Equal(t, ModeArchive, out.Mode)
	assert.Equal(t, 1, out.Skipped)

	data, err := os.ReadFile(filepath.Join(dir, "rose.zip"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"DST/a.dst": "stitches:/a.dst"}, zipEntries(t, data))
}

func TestDiskSink_KeepsNamesInsideDir(t *testing.T) {
	sink := &DiskSink{Dir: t.TempDir()}
	target, err := sink.path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target, sink.Dir))
}
