package store

import (
	"github.com/alextreichler/embroiderystore/internal/models"
)

func (s *Store) LogDownload(r *models.DownloadRecord) error {
	query := `
		INSERT INTO download_log (product_id, format, mode, files, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	_, err := s.DB.Exec(query, r.ProductID, r.Format, r.Mode, r.Files, r.Skipped)
	return err
}

func (s *Store) RecentDownloads(limit int) ([]models.DownloadRecord, error) {
	query := `SELECT id, product_id, format, mode, files, skipped, created_at FROM download_log ORDER BY id DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.DownloadRecord
	for rows.Next() {
		var r models.DownloadRecord
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Format, &r.Mode, &r.Files, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
