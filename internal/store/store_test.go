package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/embroiderystore/internal/models"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Migrate(migrationFiles, "migrations"))

	versions, err := s.AppliedMigrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_content.sql", "002_download_log.sql"}, versions)
}

func TestPages(t *testing.T) {
	s := openTemp(t)

	p, err := s.GetPage("terms")
	require.NoError(t, err)
	require.NotNil(t, p, "seeded by migration")
	assert.Equal(t, "Terms & Conditions", p.Title)

	require.NoError(t, s.SavePage(&models.ContentPage{Slug: "terms", Title: "Terms", Body: "Be nice."}))
	p, err = s.GetPage("terms")
	require.NoError(t, err)
	assert.Equal(t, "Be nice.", p.Body)

	missing, err := s.GetPage("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFAQ_CRUD(t *testing.T) {
	s := openTemp(t)

	first := &models.FAQEntry{Question: "Which formats?", Answer: "DST, PES, JEF and more."}
	second := &models.FAQEntry{Question: "Refunds?", Answer: "Digital goods are final."}
	require.NoError(t, s.CreateFAQ(first))
	require.NoError(t, s.CreateFAQ(second))
	assert.NotZero(t, first.ID)

	entries, err := s.ListFAQ()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Which formats?", entries[0].Question)
	assert.Less(t, entries[0].Position, entries[1].Position)

	second.Position = 0
	require.NoError(t, s.UpdateFAQ(second))
	entries, err = s.ListFAQ()
	require.NoError(t, err)
	assert.Equal(t, "Refunds?", entries[0].Question)

	require.NoError(t, s.DeleteFAQ(first.ID))
	entries, err = s.ListFAQ()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadStats(t *testing.T) {
	s := openTemp(t)
	records := []models.DownloadRecord{
		{ProductID: "p1", Format: "DST", Mode: "archive", Files: 2, Skipped: 1},
		{ProductID: "p1", Format: "PES", Mode: "single", Files: 1},
		{ProductID: "p2", Format: "JEF", Mode: "none"},
	}
	for i := range records {
		require.NoError(t, s.LogDownload(&records[i]))
	}

	stats, err := s.GetDownloadStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDownloads)
	assert.Equal(t, 3, stats.FilesDelivered)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.Equal(t, 1, stats.ByMode["archive"])
	require.Len(t, stats.TopProducts, 1)
	assert.Equal(t, ProductDownloadCount{ProductID: "p1", Count: 2}, stats.TopProducts[0])

	recent, err := s.RecentDownloads(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "p2", recent[0].ProductID)
}
